// Package observertest provides an observer for tests that assert on the
// events a component emits.
package observertest

import (
	"context"
	"slices"
	"sync"

	"github.com/tailored-agentic-units/groqchat/observability"
)

// Recorder keeps every event it receives, in order.
type Recorder struct {
	mu     sync.Mutex
	events []observability.Event
}

func (r *Recorder) OnEvent(ctx context.Context, event observability.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []observability.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Types returns the type of each recorded event in order.
func (r *Recorder) Types() []observability.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]observability.EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}
