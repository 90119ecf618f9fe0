package pubsub

import (
	"context"
	"time"
)

// Pack is one broker message. Key carries the routing topic, Msg the raw
// payload.
type Pack struct {
	Key []byte
	Msg []byte
}

type SubscribeHandler func(context.Context, *Pack, time.Time)

type Publisher interface {
	Publish(ctx context.Context, topic string, pack *Pack) error
	Stop(ctx context.Context) error
}

type Subscriber interface {
	// Subscribe starts consuming in the background and returns once the
	// subscriber is ready.
	Subscribe(ctx context.Context) error
	Stop(ctx context.Context) error
}
