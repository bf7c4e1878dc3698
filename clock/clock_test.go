package clock

import (
	"context"
	"errors"
	"testing"
	"time"

	testingclock "k8s.io/utils/clock/testing"

	"github.com/BeatGlow/compositor/event"
)

type testQueue chan event.Event

func (q testQueue) Post(ev event.Event) error {
	select {
	case q <- ev:
		return nil
	default:
		return event.ErrQueueFull
	}
}

func testNext(t *testing.T, q testQueue) event.Event {
	t.Helper()
	select {
	case ev := <-q:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for tick")
		return event.Event{}
	}
}

func testNone(t *testing.T, q testQueue) {
	t.Helper()
	select {
	case ev := <-q:
		t.Fatalf("expected no tick, got %s", ev)
	case <-time.After(20 * time.Millisecond):
	}
}

// testStep advances the fake clock once the ticker is registered.
func testStep(t *testing.T, fake *testingclock.FakeClock, d time.Duration) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !fake.HasWaiters() {
		if time.Now().After(deadline) {
			t.Fatal("timeout waiting for ticker")
		}
		time.Sleep(time.Millisecond)
	}
	fake.Step(d)
}

func TestStart(t *testing.T) {
	t.Run("period", func(it *testing.T) {
		c := New(make(testQueue, 1))
		for _, period := range []time.Duration{0, -time.Second} {
			if _, err := c.Start(period, nil); !errors.Is(err, ErrPeriod) {
				it.Errorf("%s: expected ErrPeriod, got %v", period, err)
			}
		}
		if v := c.Active(); v != 0 {
			it.Errorf("expected no armed timers, got %d", v)
		}
	})

	t.Run("exhausted", func(it *testing.T) {
		fake := testingclock.NewFakeClock(time.Unix(0, 0))
		c := New(make(testQueue, 1), WithClock(fake))
		defer c.Close()

		h, err := c.Start(100*time.Millisecond, nil)
		if err != nil {
			it.Fatal(err)
		}
		if h == 0 {
			it.Fatal("expected non-zero handle")
		}
		if _, err = c.Start(100*time.Millisecond, nil); !errors.Is(err, ErrExhausted) {
			it.Fatalf("expected ErrExhausted, got %v", err)
		}

		c.Stop(h)
		g, err := c.Start(100*time.Millisecond, nil)
		if err != nil {
			it.Fatalf("expected slot to be free after stop, got %v", err)
		}
		if g == h {
			it.Error("expected a fresh handle")
		}
	})

	t.Run("slots", func(it *testing.T) {
		fake := testingclock.NewFakeClock(time.Unix(0, 0))
		c := New(make(testQueue, 1), WithClock(fake), WithSlots(2))
		defer c.Close()
		for i := 0; i < 2; i++ {
			if _, err := c.Start(time.Second, nil); err != nil {
				it.Fatal(err)
			}
		}
		if v := c.Active(); v != 2 {
			it.Errorf("expected 2 armed timers, got %d", v)
		}
	})
}

func TestTicks(t *testing.T) {
	const (
		period = 100 * time.Millisecond
		total  = 1050 * time.Millisecond
	)

	fake := testingclock.NewFakeClock(time.Unix(0, 0))
	q := make(testQueue, 4)
	c := New(q, WithClock(fake))
	defer c.Close()

	var fired int
	h, err := c.Start(period, func(time.Time) { fired++ })
	if err != nil {
		t.Fatal(err)
	}

	for elapsed := time.Duration(0); elapsed+period <= total; elapsed += period {
		testStep(t, fake, period)
		ev := testNext(t, q)
		if ev.Type != event.Tick || Handle(ev.Param) != h {
			t.Fatalf("expected tick for handle %d, got %s", h, ev)
		}
		if err := c.HandleTick(ev); err != nil {
			t.Fatal(err)
		}
	}
	fake.Step(total % period)
	testNone(t, q)

	if want := int(total / period); fired != want {
		t.Errorf("expected %d ticks in %s, got %d", want, total, fired)
	}

	c.Stop(h)
	fake.Step(10 * period)
	testNone(t, q)
	if v := fired; v != int(total/period) {
		t.Errorf("expected no ticks after stop, got %d", v-int(total/period))
	}
}

func TestStop(t *testing.T) {
	fake := testingclock.NewFakeClock(time.Unix(0, 0))
	q := make(testQueue, 1)
	c := New(q, WithClock(fake))
	defer c.Close()

	var fired int
	h, err := c.Start(time.Second, func(time.Time) { fired++ })
	if err != nil {
		t.Fatal(err)
	}

	t.Run("queued", func(it *testing.T) {
		testStep(it, fake, time.Second)
		ev := testNext(it, q)

		c.Stop(h)
		if c.Fire(Handle(ev.Param), ev.Time) {
			it.Error("expected queued tick to be ignored after stop")
		}
		if fired != 0 {
			it.Errorf("expected no callbacks, got %d", fired)
		}
	})

	t.Run("twice", func(it *testing.T) {
		c.Stop(h)
		c.Stop(h)
		c.Stop(0)
		if v := c.Active(); v != 0 {
			it.Errorf("expected no armed timers, got %d", v)
		}
	})
}

func TestDispatcher(t *testing.T) {
	fake := testingclock.NewFakeClock(time.Unix(0, 0))
	d := event.New()
	c := New(d, WithClock(fake))
	defer c.Close()
	d.Handle(event.Tick, c.HandleTick)

	fired := make(chan time.Time, 1)
	if _, err := c.Start(time.Second, func(now time.Time) { fired <- now }); err != nil {
		t.Fatal(err)
	}

	errs := make(chan error, 1)
	go func() { errs <- d.Run(context.Background()) }()

	for i := 1; i <= 3; i++ {
		testStep(t, fake, time.Second)
		select {
		case now := <-fired:
			if want := time.Unix(int64(i), 0); !now.Equal(want) {
				t.Errorf("tick %d: expected time %s, got %s", i, want, now)
			}
		case <-time.After(time.Second):
			t.Fatalf("tick %d: timeout", i)
		}
	}

	if err := d.Post(event.Event{Type: event.Quit}); err != nil {
		t.Fatal(err)
	}
	if err := <-errs; err != nil {
		t.Fatal(err)
	}
}
