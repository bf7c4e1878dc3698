package compositor

import (
	"image"

	"github.com/BeatGlow/compositor/pixel"
)

// Layer is a frame placed at an offset on the target.
type Layer struct {
	Frame  *pixel.Frame
	Offset image.Point
}

// Bounds of the layer in target coordinates.
func (l Layer) Bounds() image.Rectangle {
	if l.Frame == nil {
		return image.Rectangle{}
	}
	return l.Frame.Bounds().Add(l.Offset)
}

// ok reports if the layer has pixels to contribute.
func (l Layer) ok() bool {
	return l.Frame != nil && !l.Frame.Released()
}

// LayerSet is an ordered set of layers. Index 0 is the background, every
// following layer is painted over the previous ones.
type LayerSet []Layer

// Release the frames of all layers.
func (ls LayerSet) Release() {
	for _, l := range ls {
		if l.Frame != nil {
			l.Frame.Release()
		}
	}
}
