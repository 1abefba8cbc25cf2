package audit

import (
	"context"
	"sync"
	"time"
)

// MemoryRecorder collects events in memory. Used by tests to assert on the
// audit trail.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryRecorder creates an empty in-memory recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// Record appends the event.
func (r *MemoryRecorder) Record(_ context.Context, eventType string, eventContext map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, Event{
		Type:      eventType,
		Context:   eventContext,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

// Events returns a copy of all recorded events.
func (r *MemoryRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Event(nil), r.events...)
}

// EventsOfType returns all recorded events with the given type.
func (r *MemoryRecorder) EventsOfType(eventType string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Event
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
