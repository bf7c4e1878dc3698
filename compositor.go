// Package compositor merges layers of off-screen frames onto a display.
//
// The bottom layer is copied as is. Every layer above it is keyed: pixels
// holding the key color are left out, so whatever is below shows through.
package compositor

import (
	"image"
	"image/color"

	"github.com/BeatGlow/compositor/draw"
	"github.com/BeatGlow/compositor/pixel"
)

// Target is what layers are composed onto, usually a display.
type Target interface {
	draw.Image

	// Refresh pushes the image to the hardware.
	Refresh() error
}

// framer is implemented by targets that expose their backing frame.
type framer interface {
	Frame() *pixel.Frame
}

// Compositor blits layers onto a target.
type Compositor struct {
	dst Target
	key color.Color
}

// New compositor drawing on dst, using key as the transparent color.
func New(dst Target, key color.Color) *Compositor {
	return &Compositor{
		dst: dst,
		key: key,
	}
}

// Target the compositor draws on.
func (c *Compositor) Target() Target {
	return c.dst
}

// Key is the transparent color.
func (c *Compositor) Key() color.Color {
	return c.key
}

// Blit composes layers and refreshes the target.
func (c *Compositor) Blit(layers LayerSet) error {
	c.Compose(layers)
	return c.dst.Refresh()
}

// Compose layers onto the target without refreshing it. Nil and released
// frames are skipped. Anything outside the target is clipped.
func (c *Compositor) Compose(layers LayerSet) {
	var fb *pixel.Frame
	if f, ok := c.dst.(framer); ok {
		fb = f.Frame()
	}

	for i, layer := range layers {
		if !layer.ok() {
			continue
		}
		keyed := i > 0
		if fb != nil && !fb.Released() && fb.Format == layer.Frame.Format {
			c.composeFrame(fb, layer, keyed)
		} else {
			c.composeImage(layer, keyed)
		}
	}
}

// clip returns the part of the layer visible on dst in target coordinates.
func clip(dst image.Rectangle, layer Layer) image.Rectangle {
	return layer.Bounds().Intersect(dst)
}

// composeFrame works on raw pixel words, both frames share a format.
func (c *Compositor) composeFrame(dst *pixel.Frame, layer Layer, keyed bool) {
	src := layer.Frame
	r := clip(dst.Bounds(), layer)
	if r.Empty() {
		return
	}

	// Source coordinates of r.Min.
	sp := r.Min.Sub(layer.Offset)
	n := r.Dx() * 2

	if !keyed && dst.Order == src.Order {
		for y := 0; y < r.Dy(); y++ {
			i := dst.PixOffset(r.Min.X, r.Min.Y+y)
			j := src.PixOffset(sp.X, sp.Y+y)
			copy(dst.Pix[i:i+n], src.Pix[j:j+n])
		}
		return
	}

	key := src.Format.Encode(c.key)
	for y := 0; y < r.Dy(); y++ {
		i := dst.PixOffset(r.Min.X, r.Min.Y+y)
		j := src.PixOffset(sp.X, sp.Y+y)
		for x := 0; x < n; x, i, j = x+2, i+2, j+2 {
			v := src.Order.Uint16(src.Pix[j:])
			if keyed && v == key {
				continue
			}
			dst.Order.PutUint16(dst.Pix[i:], v)
		}
	}
}

// composeImage is the slow path for targets of any color model.
func (c *Compositor) composeImage(layer Layer, keyed bool) {
	src := layer.Frame
	r := clip(c.dst.Bounds(), layer)
	if r.Empty() {
		return
	}

	key := src.Format.Encode(c.key)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			sx, sy := x-layer.Offset.X, y-layer.Offset.Y
			v := src.Value(sx, sy)
			if keyed && v == key {
				continue
			}
			c.dst.Set(x, y, src.Format.Decode(v))
		}
	}
}
