package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wikid-app/feed/pkg/pubsub"
)

func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	options := &redis.Options{
		Addr:            addr,
		MaxRetries:      5,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		PoolFIFO:        false,
		PoolSize:        5,
	}

	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

type publisher struct {
	client *redis.Client
	prefix string
}

// NewPublisher publishes packs on the redis channel prefix+topic. The key of
// the pack is ignored, redis routes by channel name.
func NewPublisher(client *redis.Client, prefix string) pubsub.Publisher {
	return &publisher{client: client, prefix: prefix}
}

func (p *publisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	return p.client.Publish(ctx, p.prefix+topic, pack.Msg).Err()
}

func (p *publisher) Stop(ctx context.Context) error {
	return p.client.Close()
}
