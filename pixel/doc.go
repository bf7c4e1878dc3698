// Package pixel implements the packed pixel formats and off-screen frames used by
// LCD pixel displays.
//
// The color models are compatible with Go's native [color.Color], and a [Frame]
// implements [image/draw.Image], so frames can be drawn on with the standard
// library as well as with the draw package of this module.
package pixel
