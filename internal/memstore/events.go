package memstore

import (
	"context"
	"sync"

	"github.com/nekogravitycat/hotel-management-backend/internal/event"
)

// Events records published events.
type Events struct {
	mu    sync.Mutex
	items []event.Event
}

func (e *Events) Publish(_ context.Context, ev event.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.items = append(e.items, ev)
	return nil
}

// Types lists the event types in publish order.
func (e *Events) Types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.items))
	for i, ev := range e.items {
		out[i] = ev.Type
	}
	return out
}

func (e *Events) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.items = nil
}
