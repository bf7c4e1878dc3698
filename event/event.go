// Package event dispatches lifecycle signals and timer ticks.
//
// All handlers run on the goroutine calling [Dispatcher.Run], one event at a
// time. Other goroutines only post events.
package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BeatGlow/compositor/internal/logging"
)

// Errors
var (
	ErrQueueFull = errors.New("event: queue is full")
	ErrClosed    = errors.New("event: dispatcher is closed")
)

// DefaultQueueSize is the number of events that can be pending.
const DefaultQueueSize = 16

// Type of event.
type Type uint8

// Event types.
const (
	Create Type = iota + 1 // Create the session and its resources
	Paint                  // Draw the first frame and start animating
	Quit                   // Tear down the session
	Tick                   // Timer expired
)

func (t Type) String() string {
	switch t {
	case Create:
		return "create"
	case Paint:
		return "paint"
	case Quit:
		return "quit"
	case Tick:
		return "tick"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// Event is a message for the dispatcher.
type Event struct {
	Type Type

	// Param is type specific, for ticks it's the timer handle.
	Param int

	// Time the event was generated.
	Time time.Time
}

func (ev Event) String() string {
	if ev.Param != 0 {
		return fmt.Sprintf("%s(%d)", ev.Type, ev.Param)
	}
	return ev.Type.String()
}

// Handler processes an event.
type Handler func(Event) error

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithQueueSize sets the number of pending events.
func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.size = n
		}
	}
}

// Dispatcher routes events to handlers.
type Dispatcher struct {
	size     int
	queue    chan Event
	done     chan struct{}
	handlers map[Type][]Handler
}

// New dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		size:     DefaultQueueSize,
		handlers: make(map[Type][]Handler),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.queue = make(chan Event, d.size)
	d.done = make(chan struct{})
	return d
}

// Handle registers h for events of type t. Handlers run in registration
// order. Register all handlers before calling Run.
func (d *Dispatcher) Handle(t Type, h Handler) {
	d.handlers[t] = append(d.handlers[t], h)
}

// Post queues ev without blocking.
func (d *Dispatcher) Post(ev Event) error {
	select {
	case <-d.done:
		return ErrClosed
	default:
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	select {
	case d.queue <- ev:
		return nil
	case <-d.done:
		return ErrClosed
	default:
		return fmt.Errorf("%w: dropped %s", ErrQueueFull, ev)
	}
}

// Dispatch runs the handlers for ev on the calling goroutine and returns the
// first error.
func (d *Dispatcher) Dispatch(ev Event) error {
	for _, h := range d.handlers[ev.Type] {
		if err := h(ev); err != nil {
			return fmt.Errorf("event: %s: %w", ev.Type, err)
		}
	}
	return nil
}

// Done is closed when Run returns.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

// Run dispatches queued events until a Quit event is handled, a lifecycle
// handler fails, or ctx is done. Tick handler errors are logged and dropped.
// Posting after Run returns fails with ErrClosed. Run may only be called
// once.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer close(d.done)

	log := logging.Logger()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-d.queue:
			err := d.Dispatch(ev)
			if ev.Type == Tick {
				if err != nil {
					log.Debug("event: tick handler failed", "event", ev.String(), "error", err)
				}
				continue
			}
			if err != nil {
				return err
			}
			if ev.Type == Quit {
				return nil
			}
		}
	}
}
