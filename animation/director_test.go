package animation

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/BeatGlow/compositor"
	"github.com/BeatGlow/compositor/display"
	"github.com/BeatGlow/compositor/pixel"
)

func testDirector(t *testing.T, config Config) (*Director, *display.Virtual) {
	t.Helper()
	config = config.withDefaults()
	d, err := display.NewVirtual(&display.Config{Width: config.Width, Height: config.Height})
	if err != nil {
		t.Fatal(err)
	}
	bg, err := pixel.Allocate(nil, config.Width, config.Height, config.Format)
	if err != nil {
		t.Fatal(err)
	}
	fg, err := pixel.Allocate(nil, config.Width, config.Height, config.Format)
	if err != nil {
		t.Fatal(err)
	}
	return NewDirector(compositor.New(d, config.KeyColor), bg, fg, config), d
}

func TestDirectorTick(t *testing.T) {
	config := Config{Width: 64, Height: 64, LineLength: 20, TicksPerRevolution: 4}
	dir, d := testDirector(t, config)
	dir.Layers()[0].Frame.Fill(color.Black)
	cyan := pixel.FormatCRGB16.Encode(DefaultConfig.LineColor)

	tests := []struct {
		End  image.Point
		Name string
	}{
		{image.Pt(51, 32), "right"},
		{image.Pt(32, 51), "down"},
		{image.Pt(13, 32), "left"},
		{image.Pt(32, 13), "up"},
	}
	for i, test := range tests {
		t.Run(test.Name, func(it *testing.T) {
			if err := dir.Tick(); err != nil {
				it.Fatal(err)
			}
			fb := d.Frame()
			if v := fb.Value(32, 32); v != cyan {
				it.Errorf("expected spoke to start at the center, got %#04x", v)
			}
			if v := fb.Value(test.End.X, test.End.Y); v != cyan {
				it.Errorf("expected spoke to end at %s, got %#04x", test.End, v)
			}
			if v := dir.Ticks(); v != uint64(i+1) {
				it.Errorf("expected %d ticks, got %d", i+1, v)
			}
		})
	}

	if v := dir.Angle(); math.Abs(v) > 1e-9 && math.Abs(v-fullTurn) > 1e-9 {
		t.Errorf("expected angle to wrap after a revolution, got %f", v)
	}
	if v := d.Refreshes(); v != 4 {
		t.Errorf("expected 4 refreshes, got %d", v)
	}
}

func TestDirectorKey(t *testing.T) {
	dir, d := testDirector(t, Config{Width: 32, Height: 32, LineLength: 1})
	bg := dir.Layers()[0].Frame
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			bg.SetValue(x, y, uint16(y*32+x))
		}
	}
	if err := dir.Tick(); err != nil {
		t.Fatal(err)
	}

	fb := d.Frame()
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if x == 16 && y == 16 {
				continue
			}
			if v, want := fb.Value(x, y), bg.Value(x, y); v != want {
				t.Fatalf("pixel (%d,%d) is %#04x, expected background %#04x", x, y, v, want)
			}
		}
	}
}

func TestDirectorSkipped(t *testing.T) {
	dir, d := testDirector(t, Config{Width: 16, Height: 16})
	dir.Layers().Release()
	if err := dir.Tick(); !errors.Is(err, ErrSkipped) {
		t.Errorf("expected ErrSkipped, got %v", err)
	}
	if err := dir.Redraw(); !errors.Is(err, ErrSkipped) {
		t.Errorf("expected ErrSkipped on redraw, got %v", err)
	}
	if v := d.Refreshes(); v != 0 {
		t.Errorf("expected no refreshes, got %d", v)
	}
	if v := dir.Angle(); v != 0 {
		t.Errorf("expected angle to stay put, got %f", v)
	}
}
