package event

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestType(t *testing.T) {
	tests := []struct {
		Type Type
		Want string
	}{
		{Create, "create"},
		{Paint, "paint"},
		{Quit, "quit"},
		{Tick, "tick"},
		{Type(42), "Type(42)"},
	}
	for _, test := range tests {
		t.Run(test.Want, func(it *testing.T) {
			if v := test.Type.String(); v != test.Want {
				it.Errorf("expected %q, got %q", test.Want, v)
			}
		})
	}
}

func TestDispatch(t *testing.T) {
	d := New()

	var order []int
	d.Handle(Paint, func(Event) error { order = append(order, 1); return nil })
	d.Handle(Paint, func(Event) error { order = append(order, 2); return nil })

	if err := d.Dispatch(Event{Type: Paint}); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("expected handlers in registration order, got %v", order)
	}

	fail := errors.New("no memory")
	d.Handle(Create, func(Event) error { return fail })
	if err := d.Dispatch(Event{Type: Create}); !errors.Is(err, fail) {
		t.Errorf("expected %v, got %v", fail, err)
	}

	if err := d.Dispatch(Event{Type: Quit}); err != nil {
		t.Errorf("expected unhandled event to be ignored, got %v", err)
	}
}

func TestPost(t *testing.T) {
	d := New(WithQueueSize(2))
	for i := 0; i < 2; i++ {
		if err := d.Post(Event{Type: Tick, Param: i + 1}); err != nil {
			t.Fatal(err)
		}
	}
	if err := d.Post(Event{Type: Tick}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
}

func TestRun(t *testing.T) {
	t.Run("quit", func(it *testing.T) {
		d := New()
		var seen []Type
		for _, typ := range []Type{Create, Paint, Tick, Quit} {
			d.Handle(typ, func(ev Event) error {
				seen = append(seen, ev.Type)
				return nil
			})
		}
		for _, typ := range []Type{Create, Paint, Tick, Quit, Tick} {
			if err := d.Post(Event{Type: typ}); err != nil {
				it.Fatal(err)
			}
		}
		if err := d.Run(context.Background()); err != nil {
			it.Fatal(err)
		}
		if len(seen) != 4 || seen[3] != Quit {
			it.Errorf("expected to stop after quit, handled %v", seen)
		}
		if err := d.Post(Event{Type: Tick}); !errors.Is(err, ErrClosed) {
			it.Errorf("expected ErrClosed after run, got %v", err)
		}
	})

	t.Run("lifecycle-error", func(it *testing.T) {
		d := New()
		fail := errors.New("decode failed")
		d.Handle(Paint, func(Event) error { return fail })
		_ = d.Post(Event{Type: Paint})
		if err := d.Run(context.Background()); !errors.Is(err, fail) {
			it.Errorf("expected %v, got %v", fail, err)
		}
	})

	t.Run("tick-error", func(it *testing.T) {
		d := New()
		d.Handle(Tick, func(Event) error { return errors.New("skipped") })
		_ = d.Post(Event{Type: Tick})
		_ = d.Post(Event{Type: Quit})
		if err := d.Run(context.Background()); err != nil {
			it.Errorf("expected tick errors to be dropped, got %v", err)
		}
	})

	t.Run("context", func(it *testing.T) {
		d := New()
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()
		if err := d.Run(ctx); !errors.Is(err, context.Canceled) {
			it.Errorf("expected context.Canceled, got %v", err)
		}
		select {
		case <-d.Done():
		default:
			it.Error("expected done to be closed")
		}
	})

	t.Run("concurrent-post", func(it *testing.T) {
		d := New()
		var ticks int
		d.Handle(Tick, func(Event) error { ticks++; return nil })
		go func() {
			for i := 0; i < 10; i++ {
				for d.Post(Event{Type: Tick, Param: 1}) != nil {
					time.Sleep(time.Millisecond)
				}
			}
			for d.Post(Event{Type: Quit}) != nil {
				time.Sleep(time.Millisecond)
			}
		}()
		if err := d.Run(context.Background()); err != nil {
			it.Fatal(err)
		}
		if ticks != 10 {
			it.Errorf("expected 10 ticks, got %d", ticks)
		}
	})
}
