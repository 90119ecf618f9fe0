package live

import (
	"context"
	"sync"
	"time"

	"github.com/wikid-app/feed/internal/common"
	"github.com/wikid-app/feed/internal/model"
	"github.com/wikid-app/feed/pkg/xcontext"
)

// Router keeps one transport connection alive and routes its events to the
// hubs of subscribed topics. After a reconnect every topic is subscribed
// again.
type Router struct {
	name      string
	dial      Dialer
	transport Transport
	hubs      map[string]*Hub

	reconnectDelay time.Duration
	bufferSize     int

	mutex sync.RWMutex
}

func NewRouter(ctx context.Context, name string, dial Dialer) *Router {
	cfg := xcontext.Configs(ctx).Live
	router := &Router{
		name:           name,
		dial:           dial,
		hubs:           make(map[string]*Hub),
		reconnectDelay: cfg.ReconnectDelay,
		bufferSize:     cfg.BufferSize,
	}

	if router.reconnectDelay <= 0 {
		router.reconnectDelay = 5 * time.Second
	}

	go router.run(ctx)
	return router
}

// Subscribe registers interest in topic. It succeeds while disconnected,
// the subscribe directive is sent once the connection is back.
func (r *Router) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	hub, ok := r.hubs[topic]
	if !ok {
		if r.transport != nil {
			directive := model.Directive{Type: model.SubscribeDirective, Topic: topic}
			if err := r.transport.Send(ctx, directive); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot subscribe to topic %s: %v", topic, err)
			}
		}

		hub = NewHub(topic)
		r.hubs[topic] = hub
		xcontext.Logger(ctx).Infof("Subscribed to topic %s", topic)
	}

	return hub.Register(r, r.bufferSize), nil
}

func (r *Router) release(ctx context.Context, s *Subscription) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	hub, ok := r.hubs[s.topic]
	if !ok {
		return
	}

	hub.Unregister(s)
	if !hub.IsEmpty() {
		return
	}

	delete(r.hubs, s.topic)
	if r.transport != nil {
		directive := model.Directive{Type: model.UnsubscribeDirective, Topic: s.topic}
		if err := r.transport.Send(ctx, directive); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot unsubscribe from topic %s: %v", s.topic, err)
		}
	}
}

func (r *Router) Topics() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	topics := make([]string, 0, len(r.hubs))
	for topic := range r.hubs {
		topics = append(topics, topic)
	}
	return topics
}

func (r *Router) Connected() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.transport != nil
}

func (r *Router) run(ctx context.Context) {
	for {
		r.checkConnection(ctx)

		select {
		case <-ctx.Done():
			r.mutex.Lock()
			if r.transport != nil {
				r.transport.Close()
				r.transport = nil
			}
			r.mutex.Unlock()
			return
		case <-time.After(r.reconnectDelay):
		}
	}
}

func (r *Router) checkConnection(ctx context.Context) {
	r.mutex.RLock()
	transport := r.transport
	r.mutex.RUnlock()

	if transport != nil {
		return
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	// Double check.
	if r.transport != nil {
		return
	}

	transport, err := r.dial(ctx)
	if err != nil {
		common.IncCounter(common.LiveTransportReconnects, r.name, "failure")
		xcontext.Logger(ctx).Warnf("Cannot establish connection with %s: %v", r.name, err)
		return
	}

	common.IncCounter(common.LiveTransportReconnects, r.name, "success")
	xcontext.Logger(ctx).Infof("Connected to %s successfully", r.name)

	for topic := range r.hubs {
		directive := model.Directive{Type: model.SubscribeDirective, Topic: topic}
		if err := transport.Send(ctx, directive); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot subscribe to topic %s: %v", topic, err)
		}
	}

	r.transport = transport
	go r.runReceive(ctx, transport)
}

func (r *Router) runReceive(ctx context.Context, transport Transport) {
	for raw := range transport.Events() {
		event, err := Decode(raw)
		if err != nil {
			common.IncCounter(common.FeedLiveEventsTotal, "malformed")
			xcontext.Logger(ctx).Errorf("Cannot decode live event: %v", err)
			continue
		}

		r.mutex.RLock()
		hub, ok := r.hubs[event.Topic]
		if ok {
			hub.Broadcast(ctx, raw)
		}
		r.mutex.RUnlock()

		if !ok {
			common.IncCounter(common.FeedLiveEventsTotal, "unrouted")
		}
	}

	r.mutex.Lock()
	if r.transport == transport {
		r.transport = nil
	}
	r.mutex.Unlock()

	xcontext.Logger(ctx).Warnf("Lost connection with %s", r.name)
}
