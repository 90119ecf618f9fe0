package live

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync"
	"github.com/wikid-app/feed/pkg/xcontext"
)

var subscriptionCounter atomic.Uint64

// Subscription receives the raw events of one topic on C until it is
// unsubscribed.
type Subscription struct {
	id     string
	topic  string
	c      chan []byte
	router *Router
	once   sync.Once
}

func (s *Subscription) Topic() string {
	return s.topic
}

func (s *Subscription) C() <-chan []byte {
	return s.c
}

func (s *Subscription) Unsubscribe(ctx context.Context) {
	s.once.Do(func() {
		s.router.release(ctx, s)
		close(s.c)
	})
}

// Hub fans the events of one topic out to its subscriptions.
type Hub struct {
	topic         string
	subscriptions *xsync.MapOf[string, *Subscription]
}

func NewHub(topic string) *Hub {
	return &Hub{
		topic:         topic,
		subscriptions: xsync.NewMapOf[*Subscription](),
	}
}

func (h *Hub) Register(router *Router, bufferSize int) *Subscription {
	s := &Subscription{
		id:     strconv.FormatUint(subscriptionCounter.Add(1), 10),
		topic:  h.topic,
		c:      make(chan []byte, bufferSize),
		router: router,
	}

	h.subscriptions.Store(s.id, s)
	return s
}

func (h *Hub) Unregister(s *Subscription) {
	h.subscriptions.Delete(s.id)
}

// Broadcast never blocks: a subscription whose buffer is full loses the
// event.
func (h *Hub) Broadcast(ctx context.Context, event []byte) {
	h.subscriptions.Range(func(id string, s *Subscription) bool {
		select {
		case s.c <- event:
		default:
			xcontext.Logger(ctx).Warnf("Subscription %s of topic %s is full, drop event", id, h.topic)
		}
		return true
	})
}

func (h *Hub) IsEmpty() bool {
	return h.subscriptions.Size() == 0
}
