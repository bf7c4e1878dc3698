package display

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"io"
	"sync"

	"github.com/BeatGlow/compositor/draw"
	"github.com/BeatGlow/compositor/pixel"
)

const (
	virtualDefaultWidth  = 240
	virtualDefaultHeight = 240
)

// Virtual is an in-memory display. It keeps the last refreshed image so it can
// be inspected or saved.
type Virtual struct {
	baseDisplay
	mu        sync.Mutex
	shown     bool
	contrast  uint8
	refreshes int
	screen    *image.RGBA
}

// NewVirtual returns a virtual display, by default a 240x240 RGB565 one.
func NewVirtual(config *Config) (*Virtual, error) {
	if config == nil {
		config = new(Config)
	}
	if config.Width == 0 {
		config.Width = virtualDefaultWidth
	}
	if config.Height == 0 {
		config.Height = virtualDefaultHeight
	}
	format := config.Format
	if format == pixel.UnknownFormat {
		format = pixel.FormatCRGB16
	}

	d := new(Virtual)
	if err := d.init(config, format, binary.BigEndian); err != nil {
		return nil, err
	}
	d.rotation = config.Rotation & 3
	d.shown = true
	d.contrast = 0xff
	d.screen = image.NewRGBA(d.fb.Bounds())
	return d, nil
}

func (d *Virtual) String() string {
	bounds := d.Bounds()
	return fmt.Sprintf("virtual %dx%d %s", bounds.Dx(), bounds.Dy(), d.fb.Format)
}

func (d *Virtual) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.release()
	return nil
}

func (d *Virtual) Show(show bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shown = show
	return nil
}

func (d *Virtual) SetContrast(level uint8) error {
	d.mu.Lock()
	d.contrast = level
	d.mu.Unlock()
	return d.baseDisplay.SetContrast(level)
}

func (d *Virtual) SetRotation(rotation Rotation) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rotation = rotation & 3
	return nil
}

// Rotation is the current pixel rotation.
func (d *Virtual) Rotation() Rotation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rotation
}

// Refresh copies the frame buffer to the screen.
func (d *Virtual) Refresh() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fb.Released() {
		return ErrClosed
	}
	draw.Draw(d.screen, d.screen.Bounds(), d.fb, image.Point{}, draw.Src)
	d.refreshes++
	return nil
}

// Refreshes is the number of times the screen was refreshed.
func (d *Virtual) Refreshes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refreshes
}

// Screen returns a copy of what was last refreshed to the screen.
func (d *Virtual) Screen() *image.RGBA {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := image.NewRGBA(d.screen.Bounds())
	copy(out.Pix, d.screen.Pix)
	return out
}

// Snapshot writes the screen as PNG.
func (d *Virtual) Snapshot(w io.Writer) error {
	return png.Encode(w, d.Screen())
}
