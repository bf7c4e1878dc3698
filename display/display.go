// Package display contains drivers for hardware displays.
package display

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/BeatGlow/compositor/pixel"
)

// Errors
var (
	ErrBounds = errors.New("display: out of display bounds")
	ErrClosed = errors.New("display: display is closed")
)

// Rotation defines pixel rotation.
type Rotation uint8

// Supported rotations.
const (
	NoRotation Rotation = iota
	Rotate90            // Rotate 90° clock wise
	Rotate180           // Rotate 180°
	Rotate270           // Rotate 270° clock wise
)

func (r Rotation) String() string {
	switch r % 4 {
	case Rotate90:
		return "90°"
	case Rotate180:
		return "180°"
	case Rotate270:
		return "270°"
	default:
		return "0°"
	}
}

// Display is a pixel display backed by an in-memory frame buffer.
type Display interface {
	// Close the display driver.
	Close() error

	// Clear the display buffer.
	Clear()

	// At returns the color of the pixel at (x, y).
	At(x, y int) color.Color

	// Set the pixel color at (x, y).
	Set(x, y int, c color.Color)

	// Bounds is the display bounding box (dimensions).
	Bounds() image.Rectangle

	// ColorModel used by the display.
	ColorModel() color.Model

	// Frame is the display buffer; writes to it show up after Refresh.
	Frame() *pixel.Frame

	// Show toggles the display on or off.
	Show(bool) error

	// SetContrast adjusts the contrast level.
	SetContrast(level uint8) error

	// SetRotation adjusts the pixel rotation.
	SetRotation(Rotation) error

	// Refresh redraws the display.
	Refresh() error
}

// Config is the display configuration.
type Config struct {
	// Width of the display in pixels.
	Width int

	// Height of the display in pixels.
	Height int

	// Rotation of the display.
	Rotation Rotation

	// Format of the display buffer. Only drivers without a fixed native
	// format honour it.
	Format pixel.Format

	// Reset pin
	Reset gpio.PinOut

	// Backlight pin
	Backlight gpio.PinOut

	// BacklightFrequency is the PWM frequency for the backlight pin.
	BacklightFrequency physic.Frequency
}

type baseDisplay struct {
	fb        *pixel.Frame
	c         Conn
	width     int
	height    int
	colOffset int
	rowOffset int
	rotation  Rotation
	backlight *Backlight
}

func (d *baseDisplay) init(config *Config, format pixel.Format, order binary.ByteOrder) (err error) {
	if d.fb, err = pixel.Allocate(pixel.Heap, config.Width, config.Height, format); err != nil {
		return
	}
	d.fb.Order = order
	d.width, d.height = config.Width, config.Height

	if config.Backlight != nil && config.Backlight != gpio.INVALID {
		if d.backlight, err = NewBacklight(config.Backlight, config.BacklightFrequency); err != nil {
			d.fb.Release()
			return
		}
	}
	return
}

func (d *baseDisplay) data(data ...byte) error {
	return d.c.Data(data...)
}

func (d *baseDisplay) Frame() *pixel.Frame {
	return d.fb
}

// Backlight returns the backlight, if one is configured.
func (d *baseDisplay) Backlight() *Backlight {
	return d.backlight
}

func (d *baseDisplay) Clear() {
	d.fb.Clear()
}

func (d *baseDisplay) Fill(c color.Color) {
	d.fb.Fill(c)
}

func (d *baseDisplay) At(x, y int) color.Color {
	return d.fb.At(x, y)
}

func (d *baseDisplay) Set(x, y int, c color.Color) {
	d.fb.Set(x, y, c)
}

func (d *baseDisplay) Bounds() image.Rectangle {
	return d.fb.Bounds()
}

func (d *baseDisplay) ColorModel() color.Model {
	return d.fb.ColorModel()
}

// SetContrast maps the level to the backlight duty cycle, if there is a
// backlight. Level 0xff is fully on.
func (d *baseDisplay) SetContrast(level uint8) error {
	if d.backlight == nil {
		return nil
	}
	return d.backlight.SetLevel(uint8(uint(level) * 100 / 0xff))
}

func (d *baseDisplay) release() {
	if d.backlight != nil {
		_ = d.backlight.Off()
	}
	if d.fb != nil {
		d.fb.Release()
	}
}
