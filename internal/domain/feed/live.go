package feed

import (
	"encoding/json"

	"github.com/wikid-app/feed/internal/domain/live"
	"github.com/wikid-app/feed/internal/model"
	"github.com/wikid-app/feed/pkg/errorx"
)

// DecodeEvent turns a raw push payload into a message. It fails on a
// malformed envelope or an undecodable message body.
func DecodeEvent(raw []byte) (string, model.Message, error) {
	event, err := live.Decode(raw)
	if err != nil {
		return "", model.Message{}, err
	}

	var msg model.Message
	if err := json.Unmarshal([]byte(event.Message), &msg); err != nil {
		return event.Topic, model.Message{}, errorx.New(errorx.BadResponse, "Invalid message body: %v", err)
	}

	if msg.ID.IsZero() {
		return event.Topic, model.Message{}, errorx.New(errorx.BadResponse, "Message without id")
	}

	return event.Topic, msg, nil
}
