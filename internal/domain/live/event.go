package live

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/wikid-app/feed/internal/model"
	"github.com/wikid-app/feed/pkg/errorx"
)

// Decode reads the push envelope {topic, message}. Numeric topics are
// accepted and message may be either a JSON string or an inline object.
func Decode(raw []byte) (model.LiveEvent, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var envelope map[string]any
	if err := decoder.Decode(&envelope); err != nil {
		return model.LiveEvent{}, errorx.New(errorx.BadResponse, "Invalid live event: %v", err)
	}

	var event model.LiveEvent
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       inlineJSON,
		Result:           &event,
	})
	if err != nil {
		return model.LiveEvent{}, err
	}

	if err := d.Decode(envelope); err != nil {
		return model.LiveEvent{}, errorx.New(errorx.BadResponse, "Invalid live event: %v", err)
	}

	if event.Topic == "" || event.Message == "" {
		return model.LiveEvent{}, errorx.New(errorx.BadResponse, "Live event without topic or message")
	}

	return event, nil
}

// Encode builds the push envelope for a message published on topic.
func Encode(topic string, message []byte) []byte {
	b, _ := json.Marshal(map[string]string{"topic": topic, "message": string(message)})
	return b
}

func inlineJSON(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}

	if from.Kind() == reflect.Map || from.Kind() == reflect.Slice {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}

	return data, nil
}
