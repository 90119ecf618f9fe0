package live

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/wikid-app/feed/internal/model"
)

type redisTransport struct {
	*stream
	pubsub *redis.PubSub
	prefix string
}

// RedisDialer listens on one redis channel per topic, named prefix+topic.
// Payloads are JSON-encoded messages.
func RedisDialer(client *redis.Client, prefix string, bufferSize int) Dialer {
	return func(ctx context.Context) (Transport, error) {
		ps := client.Subscribe(ctx)
		if err := ps.Ping(ctx); err != nil {
			ps.Close()
			return nil, err
		}

		t := &redisTransport{stream: newStream(bufferSize), pubsub: ps, prefix: prefix}
		go t.run(ctx)
		return t, nil
	}
}

func (t *redisTransport) run(ctx context.Context) {
	defer t.stream.close()

	for msg := range t.pubsub.Channel() {
		topic := strings.TrimPrefix(msg.Channel, t.prefix)
		t.push(ctx, Encode(topic, []byte(msg.Payload)))
	}
}

func (t *redisTransport) Send(ctx context.Context, d model.Directive) error {
	switch d.Type {
	case model.SubscribeDirective:
		return t.pubsub.Subscribe(ctx, t.prefix+d.Topic)
	case model.UnsubscribeDirective:
		return t.pubsub.Unsubscribe(ctx, t.prefix+d.Topic)
	default:
		return nil
	}
}

func (t *redisTransport) Close() error {
	return t.pubsub.Close()
}
