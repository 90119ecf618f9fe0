package testutil

import (
	"context"
	"sync"

	"github.com/wikid-app/feed/internal/domain/live"
	"github.com/wikid-app/feed/internal/model"
)

// MockTransport is an in-memory live transport. Push delivers a raw event,
// Drop simulates a connection loss.
type MockTransport struct {
	events     chan []byte
	directives []model.Directive
	dropped    bool
	mutex      sync.Mutex
}

func NewMockTransport() *MockTransport {
	return &MockTransport{events: make(chan []byte, 64)}
}

func (t *MockTransport) Send(ctx context.Context, d model.Directive) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.directives = append(t.directives, d)
	return nil
}

func (t *MockTransport) Events() <-chan []byte {
	return t.events
}

func (t *MockTransport) Close() error {
	t.Drop()
	return nil
}

func (t *MockTransport) Push(event []byte) {
	t.events <- event
}

func (t *MockTransport) Drop() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if !t.dropped {
		t.dropped = true
		close(t.events)
	}
}

func (t *MockTransport) Directives() []model.Directive {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	return append([]model.Directive(nil), t.directives...)
}

// MockDialer hands out transports in order. Once they are exhausted every
// dial fails.
func MockDialer(transports ...*MockTransport) live.Dialer {
	var mutex sync.Mutex
	return func(ctx context.Context) (live.Transport, error) {
		mutex.Lock()
		defer mutex.Unlock()

		if len(transports) == 0 {
			return nil, context.DeadlineExceeded
		}

		t := transports[0]
		transports = transports[1:]
		return t, nil
	}
}
