package display

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// ErrBacklightPin is returned for a missing backlight pin.
var ErrBacklightPin = errors.New("display: backlight GPIO pin is invalid")

// DefaultBacklightFrequency is the PWM frequency used when none is given.
const DefaultBacklightFrequency = 1 * physic.KiloHertz

// Backlight dims a display backlight by pulse width modulation of a GPIO pin.
type Backlight struct {
	mu    sync.Mutex
	pin   gpio.PinOut
	freq  physic.Frequency
	level uint8
}

// NewBacklight drives pin at freq; a zero freq uses DefaultBacklightFrequency.
// The backlight starts off.
func NewBacklight(pin gpio.PinOut, freq physic.Frequency) (*Backlight, error) {
	if pin == nil || pin == gpio.INVALID {
		return nil, ErrBacklightPin
	}
	if freq == 0 {
		freq = DefaultBacklightFrequency
	}
	return &Backlight{
		pin:  pin,
		freq: freq,
	}, nil
}

func (b *Backlight) String() string {
	return fmt.Sprintf("backlight %s %d%% at %s", b.pin, b.Level(), b.freq)
}

// SetLevel sets the brightness in percent. 0 drives the pin low, 100 and
// above drive it high, anything in between is a PWM duty cycle.
func (b *Backlight) SetLevel(percent uint8) (err error) {
	if percent > 100 {
		percent = 100
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch percent {
	case 0:
		err = b.pin.Out(gpio.Low)
	case 100:
		err = b.pin.Out(gpio.High)
	default:
		err = b.pin.PWM(Duty(percent), b.freq)
	}
	if err != nil {
		return fmt.Errorf("display: setting backlight to %d%%: %w", percent, err)
	}
	b.level = percent
	return
}

// Level is the brightness in percent.
func (b *Backlight) Level() uint8 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.level
}

// Off turns the backlight off.
func (b *Backlight) Off() error {
	return b.SetLevel(0)
}

// Duty converts a percentage to a PWM duty cycle.
func Duty(percent uint8) gpio.Duty {
	if percent >= 100 {
		return gpio.DutyMax
	}
	return gpio.Duty(uint64(gpio.DutyMax) * uint64(percent) / 100)
}
