// Package clock provides repeating timers whose ticks are delivered through
// an event queue, so callbacks run on the dispatcher goroutine.
package clock

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/BeatGlow/compositor/event"
	"github.com/BeatGlow/compositor/internal/logging"
)

// Errors
var (
	ErrExhausted = errors.New("clock: no timer slots available")
	ErrPeriod    = errors.New("clock: period must be positive")
)

// DefaultSlots is the number of timers that can be armed at once.
const DefaultSlots = 1

// Handle identifies an armed timer. The zero Handle is never armed.
type Handle uint32

// Queue receives tick events.
type Queue interface {
	Post(event.Event) error
}

// Option configures a Clock.
type Option func(*Clock)

// WithClock sets the time source.
func WithClock(c clock.WithTicker) Option {
	return func(k *Clock) {
		if c != nil {
			k.clock = c
		}
	}
}

// WithSlots sets the number of timers that can be armed at once.
func WithSlots(n int) Option {
	return func(k *Clock) {
		if n > 0 {
			k.slots = n
		}
	}
}

type timer struct {
	handle Handle
	period time.Duration
	fn     func(time.Time)
	ticker clock.Ticker
	done   chan struct{}
}

// Clock arms repeating timers.
type Clock struct {
	mu     sync.Mutex
	clock  clock.WithTicker
	queue  Queue
	slots  int
	last   Handle
	timers map[Handle]*timer
	wg     sync.WaitGroup
}

// New clock posting ticks to q.
func New(q Queue, opts ...Option) *Clock {
	c := &Clock{
		clock:  clock.RealClock{},
		queue:  q,
		slots:  DefaultSlots,
		timers: make(map[Handle]*timer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start arms a timer that fires every period. Each expiry posts an
// event.Tick carrying the handle; fn runs when the tick is passed to Fire.
func (c *Clock) Start(period time.Duration, fn func(time.Time)) (Handle, error) {
	if period <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrPeriod, period)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.timers) >= c.slots {
		return 0, fmt.Errorf("%w: %d of %d in use", ErrExhausted, len(c.timers), c.slots)
	}

	c.last++
	if c.last == 0 {
		c.last++
	}
	t := &timer{
		handle: c.last,
		period: period,
		fn:     fn,
		ticker: c.clock.NewTicker(period),
		done:   make(chan struct{}),
	}
	c.timers[t.handle] = t

	c.wg.Add(1)
	go c.forward(t)

	logging.Logger().Debug("clock: timer armed", "handle", t.handle, "period", period)
	return t.handle, nil
}

// forward posts the ticks of t until it is stopped. Ticks that don't fit in
// the queue are dropped, so a slow consumer sees coalesced ticks.
func (c *Clock) forward(t *timer) {
	defer c.wg.Done()
	for {
		select {
		case <-t.done:
			return
		case now := <-t.ticker.C():
			if err := c.queue.Post(event.Event{
				Type:  event.Tick,
				Param: int(t.handle),
				Time:  now,
			}); err != nil {
				logging.Logger().Debug("clock: tick dropped", "handle", t.handle, "error", err)
			}
		}
	}
}

// Stop disarms the timer. Ticks for h that are still queued are ignored by
// Fire. Unknown handles are ignored.
func (c *Clock) Stop(h Handle) {
	c.mu.Lock()
	t, ok := c.timers[h]
	if ok {
		delete(c.timers, h)
	}
	c.mu.Unlock()

	if !ok {
		return
	}
	t.ticker.Stop()
	close(t.done)
	logging.Logger().Debug("clock: timer stopped", "handle", h)
}

// Fire runs the callback of h if it is still armed, and reports whether it
// did.
func (c *Clock) Fire(h Handle, now time.Time) bool {
	c.mu.Lock()
	t, ok := c.timers[h]
	c.mu.Unlock()

	if !ok {
		return false
	}
	if t.fn != nil {
		t.fn(now)
	}
	return true
}

// HandleTick is an event.Handler for tick events.
func (c *Clock) HandleTick(ev event.Event) error {
	if ev.Type == event.Tick {
		c.Fire(Handle(ev.Param), ev.Time)
	}
	return nil
}

// Active is the number of armed timers.
func (c *Clock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Close stops all timers and waits for their goroutines to finish.
func (c *Clock) Close() error {
	c.mu.Lock()
	handles := make([]Handle, 0, len(c.timers))
	for h := range c.timers {
		handles = append(handles, h)
	}
	c.mu.Unlock()

	for _, h := range handles {
		c.Stop(h)
	}
	c.wg.Wait()
	return nil
}
