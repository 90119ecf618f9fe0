package live

import (
	"context"
	"strings"
	"time"

	"github.com/wikid-app/feed/config"
	"github.com/wikid-app/feed/internal/model"
	"github.com/wikid-app/feed/pkg/kafka"
	"github.com/wikid-app/feed/pkg/pubsub"
)

type kafkaTransport struct {
	*stream
	subscriber pubsub.Subscriber
	cancel     context.CancelFunc
}

// KafkaDialer consumes the message topic of the backend. Each record is
// keyed by the channel topic and carries the JSON-encoded message.
func KafkaDialer(cfg config.KafkaConfigs, bufferSize int) Dialer {
	return func(ctx context.Context) (Transport, error) {
		ctx, cancel := context.WithCancel(ctx)
		t := &kafkaTransport{stream: newStream(bufferSize), cancel: cancel}

		subscriber, err := kafka.NewSubscriber(
			cfg.GroupID,
			strings.Split(cfg.Addr, ","),
			[]string{cfg.Topic},
			t.handle,
		)
		if err != nil {
			cancel()
			return nil, err
		}

		if err := subscriber.Subscribe(ctx); err != nil {
			cancel()
			subscriber.Stop(ctx)
			return nil, err
		}

		t.subscriber = subscriber
		return t, nil
	}
}

func (t *kafkaTransport) handle(ctx context.Context, pack *pubsub.Pack, _ time.Time) {
	t.push(ctx, Encode(string(pack.Key), pack.Msg))
}

// Send is a no-op, the consumer group already receives every topic.
func (t *kafkaTransport) Send(context.Context, model.Directive) error {
	return nil
}

func (t *kafkaTransport) Close() error {
	t.cancel()
	err := t.subscriber.Stop(context.Background())
	t.stream.close()
	return err
}
