// Package animation draws a spoke spinning around the center of the display
// over a static background, one step per clock tick.
package animation

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/BeatGlow/compositor"
	"github.com/BeatGlow/compositor/draw"
	"github.com/BeatGlow/compositor/pixel"
)

// ErrSkipped is returned for a tick that produced no frame.
var ErrSkipped = errors.New("animation: frame skipped")

const fullTurn = 2 * math.Pi

// Director produces a frame per tick.
type Director struct {
	comp   *compositor.Compositor
	layers compositor.LayerSet
	center image.Point
	length int
	key    color.Color
	line   color.Color
	angle  float64
	step   float64
	ticks  uint64
}

// NewDirector composes background and foreground with comp. The spoke is
// anchored at the center of the background.
func NewDirector(comp *compositor.Compositor, background, foreground *pixel.Frame, config Config) *Director {
	config = config.withDefaults()
	b := background.Bounds()
	return &Director{
		comp: comp,
		layers: compositor.LayerSet{
			{Frame: background},
			{Frame: foreground},
		},
		center: image.Pt(b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2),
		length: config.LineLength,
		key:    config.KeyColor,
		line:   config.LineColor,
		step:   fullTurn / float64(config.TicksPerRevolution),
	}
}

// Layers are the background and foreground.
func (d *Director) Layers() compositor.LayerSet {
	return d.layers
}

// Center of the spoke.
func (d *Director) Center() image.Point {
	return d.center
}

// Angle of the next spoke in radians, clockwise from the positive x axis.
func (d *Director) Angle() float64 {
	return d.angle
}

// Ticks is the number of frames produced.
func (d *Director) Ticks() uint64 {
	return d.ticks
}

func (d *Director) ready() bool {
	for _, l := range d.layers {
		if l.Frame == nil || l.Frame.Released() {
			return false
		}
	}
	return true
}

// Tick redraws the foreground with the spoke at the current angle, blits both
// layers and advances the angle.
func (d *Director) Tick() error {
	if !d.ready() {
		return ErrSkipped
	}

	fg := d.layers[1].Frame
	fg.Fill(d.key)
	draw.Spoke(fg, d.center, d.length, d.angle, d.line)
	if err := d.comp.Blit(d.layers); err != nil {
		return err
	}

	d.angle = math.Mod(d.angle+d.step, fullTurn)
	d.ticks++
	return nil
}

// Redraw blits the current layers without advancing.
func (d *Director) Redraw() error {
	if !d.ready() {
		return ErrSkipped
	}
	return d.comp.Blit(d.layers)
}
