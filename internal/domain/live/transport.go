package live

import (
	"context"
	"sync"

	"github.com/wikid-app/feed/internal/model"
)

// Transport is one connection to a push source. Events is closed when the
// connection is lost.
type Transport interface {
	Send(context.Context, model.Directive) error
	Events() <-chan []byte
	Close() error
}

// Dialer opens a new Transport. The router calls it again after every
// connection loss.
type Dialer func(context.Context) (Transport, error)

// stream is the event side shared by broker transports, which receive the
// whole message stream and leave topic filtering to the router.
type stream struct {
	events chan []byte
	closed bool
	mutex  sync.Mutex
}

func newStream(size int) *stream {
	return &stream{events: make(chan []byte, size)}
}

func (s *stream) push(ctx context.Context, event []byte) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return
	}

	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *stream) Events() <-chan []byte {
	return s.events
}

func (s *stream) close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.closed {
		s.closed = true
		close(s.events)
	}
}
