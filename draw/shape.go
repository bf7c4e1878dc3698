package draw

import (
	"image"
	"image/color"
	"math"
	"math/bits"
	"sort"
)

// Line draws a line between two points.
func Line(dst Image, a, b image.Point, c color.Color) {
	bresenham(dst, a.X, a.Y, b.X, b.Y, c)
}

// HorizontalLine draws a line between (x,y) and (x+w-1,y).
func HorizontalLine(dst Image, x, y, w int, c color.Color) {
	if w > 0 {
		bresenham(dst, x, y, x+w-1, y, c)
	}
}

// VerticalLine draws a line between (x,y) and (x,y+h-1).
func VerticalLine(dst Image, x, y, h int, c color.Color) {
	if h > 0 {
		bresenham(dst, x, y, x, y+h-1, c)
	}
}

// Rectangle draws the outline of rect.
func Rectangle(dst Image, rect image.Rectangle, c color.Color) {
	rect = rect.Canon()
	if rect.Empty() {
		return
	}
	w, h := rect.Dx(), rect.Dy()
	HorizontalLine(dst, rect.Min.X, rect.Min.Y, w, c)
	HorizontalLine(dst, rect.Min.X, rect.Max.Y-1, w, c)
	VerticalLine(dst, rect.Min.X, rect.Min.Y, h, c)
	VerticalLine(dst, rect.Max.X-1, rect.Min.Y, h, c)
}

// Box draws a filled rectangle, clipped to dst.
func Box(dst Image, rect image.Rectangle, c color.Color) {
	rect = rect.Canon().Intersect(dst.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dst.Set(x, y, c)
		}
	}
}

// Spoke draws a line of length pixels that starts at center and points angle
// radians clockwise from the positive x axis (y grows downwards).
func Spoke(dst Image, center image.Point, length int, angle float64, c color.Color) {
	if length <= 0 {
		return
	}
	end := SpokeEnd(center, length, angle)
	bresenham(dst, center.X, center.Y, end.X, end.Y, c)
}

// SpokeEnd returns the last pixel of a spoke.
func SpokeEnd(center image.Point, length int, angle float64) image.Point {
	r := float64(length - 1)
	return image.Point{
		X: center.X + int(math.Round(r*math.Cos(angle))),
		Y: center.Y + int(math.Round(r*math.Sin(angle))),
	}
}

// outside reports if the segment lies entirely on one side of r.
func outside(r image.Rectangle, x1, y1, x2, y2 int) bool {
	return (x1 < r.Min.X && x2 < r.Min.X) ||
		(x1 >= r.Max.X && x2 >= r.Max.X) ||
		(y1 < r.Min.Y && y2 < r.Min.Y) ||
		(y1 >= r.Max.Y && y2 >= r.Max.Y)
}

// bresenham draws the segment with the integer error term. Only the steps that
// land inside dst are visited, so far off endpoints cost no more than the
// visible part of the line.
func bresenham(dst Image, x1, y1, x2, y2 int, c color.Color) {
	r := dst.Bounds()
	if outside(r, x1, y1, x2, y2) {
		return
	}

	// Step in ascending x so a segment draws the same pixels in either direction.
	if x1 > x2 {
		x1, y1, x2, y2 = x2, y2, x1, y1
	}

	dx, dy, sy := x2-x1, y2-y1, 1
	if dy < 0 {
		dy, sy = -dy, -1
	}

	var (
		steps int
		at    func(k int) image.Point
	)
	if dx >= dy {
		steps = dx
		at = func(k int) image.Point {
			return image.Pt(x1+k, y1+sy*minorSteps(k, dx, dy))
		}
	} else {
		steps = dy
		at = func(k int) image.Point {
			return image.Pt(x1+minorSteps(k, dy, dx), y1+sy*k)
		}
	}

	// Both coordinates are monotonic in k, so the visible steps form a range.
	before := func(k int) bool {
		p := at(k)
		return p.X < r.Min.X || (sy > 0 && p.Y < r.Min.Y) || (sy < 0 && p.Y >= r.Max.Y)
	}
	after := func(k int) bool {
		p := at(k)
		return p.X >= r.Max.X || (sy > 0 && p.Y >= r.Max.Y) || (sy < 0 && p.Y < r.Min.Y)
	}
	first := sort.Search(steps+1, func(k int) bool { return !before(k) })
	last := sort.Search(steps+1, after) - 1
	for k := first; k <= last; k++ {
		p := at(k)
		dst.Set(p.X, p.Y, c)
	}
}

// minorSteps returns how often the minor axis advanced after k steps along the
// major axis. It is the closed form of the error term that starts at major,
// loses 2*minor per step and gains 2*major whenever it drops below zero:
// ceil((2*minor*k - major) / (2*major)), floored at zero.
func minorSteps(k, major, minor int) int {
	if minor == 0 || k == 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(minor)<<1, uint64(k))
	lo, borrow := bits.Sub64(lo, uint64(major), 0)
	hi -= borrow
	if int64(hi) < 0 || (hi == 0 && lo == 0) {
		return 0
	}
	d := uint64(major) << 1
	lo, carry := bits.Add64(lo, d-1, 0)
	hi += carry
	q, _ := bits.Div64(hi, lo, d)
	return int(q)
}
