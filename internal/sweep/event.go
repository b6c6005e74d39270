package sweep

import (
	"context"
	"time"
)

// EventKind names a point in the life of a sweep.
type EventKind string

const (
	EventStarted   EventKind = "started"
	EventSubmitted EventKind = "submitted"
	EventFailed    EventKind = "failed"
	EventSkipped   EventKind = "skipped"
	EventFinished  EventKind = "finished"
)

// Event is delivered to every Observer of a Runner. Run is nil for started
// and finished events. Err is set on failed events and on a finished event
// that ended the sweep early.
type Event struct {
	Kind    EventKind
	SweepID string
	Sweep   string
	Index   int
	Total   int
	Run     *Run
	Err     error
	Time    time.Time
}

// Observer receives sweep events synchronously, in order. Observers must not
// block for long: the next submission waits for them.
type Observer interface {
	Observe(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, ev Event)

// Observe calls f(ctx, ev).
func (f ObserverFunc) Observe(ctx context.Context, ev Event) { f(ctx, ev) }
