package supervisor

import (
	"sync"
	"time"

	"go.trai.ch/hangar/internal/core/domain"
	"go.trai.ch/hangar/internal/core/ports"
)

const (
	// DefaultSpacing is the minimum delay between two displayed events.
	DefaultSpacing = time.Second
	// DefaultTTL is how long an event stays displayed when nothing replaces it.
	DefaultTTL = 10 * time.Second
)

var _ ports.Notifier = (*EventQueue)(nil)

// EventQueue is the single-slot display for user-visible events.
//
// A published event replaces the displayed one, but publications are spaced
// at least spacing apart: an event arriving too early waits in a FIFO queue
// and is never dropped. A displayed event is cleared after ttl unless a newer
// event replaced it first.
type EventQueue struct {
	mu      sync.Mutex
	spacing time.Duration
	ttl     time.Duration

	current     domain.Event
	shown       bool
	generation  uint64
	lastShown   time.Time
	pending     []domain.Event
	flushTimer  *time.Timer
	expireTimer *time.Timer
	stopped     bool

	listener func(ev domain.Event, shown bool)
}

// NewEventQueue creates a queue with the given spacing and display duration.
func NewEventQueue(spacing, ttl time.Duration) *EventQueue {
	return &EventQueue{spacing: spacing, ttl: ttl}
}

// OnChange registers fn to be called whenever the displayed event changes.
// fn is called with shown=false when the display is cleared. It runs with the
// queue locked and must not call back into the queue.
func (q *EventQueue) OnChange(fn func(ev domain.Event, shown bool)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.listener = fn
}

// Notify implements ports.Notifier.
func (q *EventQueue) Notify(ev domain.Event) {
	q.Publish(ev)
}

// Publish displays ev now, or queues it until the spacing window has passed.
func (q *EventQueue) Publish(ev domain.Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return
	}
	now := time.Now()
	if ev.Time.IsZero() {
		ev.Time = now
	}

	if len(q.pending) > 0 {
		q.pending = append(q.pending, ev)
		return
	}

	if q.lastShown.IsZero() || now.Sub(q.lastShown) >= q.spacing {
		q.display(ev, now)
		return
	}

	q.pending = append(q.pending, ev)
	q.flushTimer = time.AfterFunc(q.spacing-now.Sub(q.lastShown), q.flush)
}

// Current returns the displayed event, if any.
func (q *EventQueue) Current() (domain.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current, q.shown
}

// Pending returns the number of events waiting for the spacing window.
func (q *EventQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Stop cancels all timers. Later publications are ignored.
func (q *EventQueue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stopped = true
	q.pending = nil
	if q.flushTimer != nil {
		q.flushTimer.Stop()
	}
	if q.expireTimer != nil {
		q.expireTimer.Stop()
	}
}

// display must be called with mu held.
func (q *EventQueue) display(ev domain.Event, now time.Time) {
	q.current = ev
	q.shown = true
	q.generation++
	q.lastShown = now

	if q.expireTimer != nil {
		q.expireTimer.Stop()
	}
	gen := q.generation
	q.expireTimer = time.AfterFunc(q.ttl, func() { q.expire(gen) })

	if q.listener != nil {
		q.listener(ev, true)
	}
}

func (q *EventQueue) flush() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped || len(q.pending) == 0 {
		return
	}
	next := q.pending[0]
	q.pending = q.pending[1:]
	q.display(next, time.Now())

	if len(q.pending) > 0 {
		q.flushTimer = time.AfterFunc(q.spacing, q.flush)
	}
}

func (q *EventQueue) expire(gen uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped || gen != q.generation || !q.shown {
		return
	}
	q.shown = false
	q.current = domain.Event{}

	if q.listener != nil {
		q.listener(domain.Event{}, false)
	}
}
