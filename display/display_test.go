package display

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"

	"github.com/BeatGlow/compositor/pixel"
)

func init() {
	sleep = func(time.Duration) {}
}

type testConn struct {
	reset    []gpio.Level
	commands []byte
	data     []byte
	writes   int
	closed   bool
	fail     error
}

func (c *testConn) String() string { return "test" }

func (c *testConn) Close() error {
	c.closed = true
	return nil
}

func (c *testConn) Reset(l gpio.Level) error {
	c.reset = append(c.reset, l)
	return c.fail
}

func (c *testConn) Command(cmd byte, data ...byte) error {
	c.commands = append(c.commands, cmd)
	c.data = append(c.data, data...)
	return c.fail
}

func (c *testConn) Data(data ...byte) error {
	c.data = append(c.data, data...)
	c.writes++
	return c.fail
}

func TestRotation(t *testing.T) {
	tests := []struct {
		Rotation Rotation
		Want     string
	}{
		{NoRotation, "0°"},
		{Rotate90, "90°"},
		{Rotate180, "180°"},
		{Rotate270, "270°"},
		{Rotate270 + 1, "0°"},
	}
	for _, test := range tests {
		t.Run(test.Want, func(it *testing.T) {
			if v := test.Rotation.String(); v != test.Want {
				it.Errorf("expected %q, got %q", test.Want, v)
			}
		})
	}
}

func TestST7789(t *testing.T) {
	c := new(testConn)
	d, err := ST7789(c, nil)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("init", func(it *testing.T) {
		if v := d.Bounds(); v != image.Rect(0, 0, 240, 240) {
			it.Errorf("expected 240x240 display, got %s", v)
		}
		if v := d.Frame().Format; v != pixel.FormatCRGB16 {
			it.Errorf("expected CRGB16 frame, got %s", v)
		}
		if len(c.reset) != 3 || c.reset[1] != gpio.Low {
			it.Errorf("expected high-low-high reset, got %v", c.reset)
		}
		if len(c.commands) == 0 || c.commands[0] != st7789SLPOUT {
			it.Fatalf("expected sleep out first, got %x", c.commands)
		}
		if !bytes.Contains(c.commands, []byte{st7789DISPON}) {
			it.Error("expected display to be switched on")
		}
	})

	t.Run("refresh", func(it *testing.T) {
		c.commands, c.data, c.writes = nil, nil, 0
		d.Frame().Fill(color.RGBA{R: 0xff, A: 0xff})
		if err := d.Refresh(); err != nil {
			it.Fatal(err)
		}
		if want := []byte{st7789CASET, st7789RASET, st7789RAMWR}; !bytes.Equal(c.commands, want) {
			it.Errorf("expected window commands %x, got %x", want, c.commands)
		}
		window := []byte{0, 0, 0, 239, 0, 0, 0, 239}
		if !bytes.Equal(c.data[:8], window) {
			it.Errorf("expected window %v, got %v", window, c.data[:8])
		}
		pix := c.data[8:]
		if len(pix) != 240*240*2 {
			it.Fatalf("expected %d pixel bytes, got %d", 240*240*2, len(pix))
		}
		if pix[0] != 0xf8 || pix[1] != 0x00 {
			it.Errorf("expected big endian red 0xf800, got %#02x%02x", pix[0], pix[1])
		}
		// 8 window bytes sent one by one, then the 4 KiB batches.
		if want := 8 + (240*240*2+st7789BatchSize-1)/st7789BatchSize; c.writes != want {
			it.Errorf("expected %d data writes, got %d", want, c.writes)
		}
	})

	t.Run("close", func(it *testing.T) {
		if err := d.Close(); err != nil {
			it.Fatal(err)
		}
		if !c.closed {
			it.Error("expected connection to be closed")
		}
		if err := d.Refresh(); !errors.Is(err, ErrClosed) {
			it.Errorf("expected ErrClosed, got %v", err)
		}
	})
}

func TestST7789Errors(t *testing.T) {
	t.Run("size", func(it *testing.T) {
		if _, err := ST7789(new(testConn), &Config{Width: 400, Height: 240}); err == nil {
			it.Error("expected oversized panel to fail")
		}
	})

	t.Run("conn", func(it *testing.T) {
		fail := errors.New("bus error")
		if _, err := ST7789(&testConn{fail: fail}, nil); !errors.Is(err, fail) {
			it.Errorf("expected %v, got %v", fail, err)
		}
	})
}

func TestBacklight(t *testing.T) {
	if _, err := NewBacklight(nil, 0); !errors.Is(err, ErrBacklightPin) {
		t.Fatalf("expected ErrBacklightPin, got %v", err)
	}

	pin := &gpiotest.Pin{N: "GPIO19", Num: 19}
	b, err := NewBacklight(pin, 0)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		Percent uint8
		Level   gpio.Level
		Duty    gpio.Duty
	}{
		{0, gpio.Low, 0},
		{60, gpio.Low, gpio.Duty(uint64(gpio.DutyMax) * 60 / 100)},
		{100, gpio.High, 0},
		{200, gpio.High, 0},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d%%", test.Percent), func(it *testing.T) {
			if err := b.SetLevel(test.Percent); err != nil {
				it.Fatal(err)
			}
			if test.Duty != 0 {
				if pin.D != test.Duty {
					it.Errorf("%d%%: expected duty %s, got %s", test.Percent, test.Duty, pin.D)
				}
				if pin.F != DefaultBacklightFrequency {
					it.Errorf("%d%%: expected frequency %s, got %s", test.Percent, DefaultBacklightFrequency, pin.F)
				}
				return
			}
			if pin.L != test.Level {
				it.Errorf("%d%%: expected level %s, got %s", test.Percent, test.Level, pin.L)
			}
		})
	}

	if v := b.Level(); v != 100 {
		t.Errorf("expected level to be clamped to 100, got %d", v)
	}
}

func TestDuty(t *testing.T) {
	if v := Duty(0); v != 0 {
		t.Errorf("expected zero duty, got %s", v)
	}
	if v := Duty(100); v != gpio.DutyMax {
		t.Errorf("expected max duty, got %s", v)
	}
	if v := Duty(50); v != gpio.DutyHalf {
		t.Errorf("expected half duty, got %s", v)
	}
}

func TestVirtual(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO19", Num: 19}
	d, err := NewVirtual(&Config{
		Width:              32,
		Height:             16,
		Format:             pixel.FormatCBGR16,
		Backlight:          pin,
		BacklightFrequency: 2 * physic.KiloHertz,
	})
	if err != nil {
		t.Fatal(err)
	}
	blue := color.RGBA{B: 0xff, A: 0xff}

	t.Run("refresh", func(it *testing.T) {
		d.Frame().Fill(blue)
		if v := d.Screen().RGBAAt(3, 3); v.B != 0 {
			it.Error("expected screen to stay black before refresh")
		}
		if err := d.Refresh(); err != nil {
			it.Fatal(err)
		}
		if v := d.Screen().RGBAAt(3, 3); v != blue {
			it.Errorf("expected blue after refresh, got %v", v)
		}
		if v := d.Refreshes(); v != 1 {
			it.Errorf("expected 1 refresh, got %d", v)
		}
	})

	t.Run("snapshot", func(it *testing.T) {
		var buf bytes.Buffer
		if err := d.Snapshot(&buf); err != nil {
			it.Fatal(err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			it.Fatal(err)
		}
		if v := img.Bounds().Size(); v != image.Pt(32, 16) {
			it.Errorf("expected 32x16 snapshot, got %s", v)
		}
	})

	t.Run("contrast", func(it *testing.T) {
		if err := d.SetContrast(0x80); err != nil {
			it.Fatal(err)
		}
		if v := d.Backlight().Level(); v != 50 {
			it.Errorf("expected backlight at 50%%, got %d%%", v)
		}
		if pin.F != 2*physic.KiloHertz {
			it.Errorf("expected PWM at 2kHz, got %s", pin.F)
		}
	})

	t.Run("close", func(it *testing.T) {
		if err := d.Close(); err != nil {
			it.Fatal(err)
		}
		if pin.L != gpio.Low {
			it.Error("expected backlight to be switched off")
		}
		if err := d.Refresh(); !errors.Is(err, ErrClosed) {
			it.Errorf("expected ErrClosed, got %v", err)
		}
	})
}
