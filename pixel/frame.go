package pixel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/BeatGlow/compositor/codec"
	"github.com/BeatGlow/compositor/draw"
)

// Errors
var (
	ErrInvalidSize = errors.New("pixel: invalid frame size")
	ErrFormat      = errors.New("pixel: unsupported pixel format")
	ErrReleased    = errors.New("pixel: frame is released")

	// ErrDecode is returned when image data can't be decoded into a frame.
	ErrDecode = codec.ErrDecode
)

// Image is a drawable image that can be filled with a single color.
type Image interface {
	draw.Image

	// Clear the image.
	Clear()

	// Fill the image with a single color.
	Fill(color.Color)
}

// Decoder turns encoded image data into an image.
type Decoder interface {
	Decode(data []byte) (image.Image, string, error)
}

// Buffer holds the pixel values.
type Buffer struct {
	// Rect is the image bounding box.
	Rect image.Rectangle

	// Pix are the image pixels.
	Pix []byte

	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
}

// Bounds returns the image bounding box.
func (p *Buffer) Bounds() image.Rectangle {
	return p.Rect
}

// Clear sets all pixel bytes to zero.
func (p *Buffer) Clear() {
	for i := range p.Pix {
		p.Pix[i] = 0x00
	}
}

// Frame is an off-screen pixel buffer of 16-bit words.
//
// A Frame is allocated once, written in place and released once; it is never
// resized. After Release the frame reads as transparent and ignores writes.
type Frame struct {
	Buffer

	// Format of the pixel words.
	Format Format

	// Order is the byte order of the pixel words.
	Order binary.ByteOrder

	alloc Allocator
}

// Allocate a w by h frame from a. The byte length is w*h*f.BytesPerPixel(). No
// memory is held when an error is returned.
func Allocate(a Allocator, w, h int, f Format) (*Frame, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	bpp := f.BytesPerPixel()
	if bpp != 2 {
		return nil, fmt.Errorf("%w: %s", ErrFormat, f)
	}
	if w > math.MaxInt/bpp/h {
		return nil, fmt.Errorf("%w: %dx%d overflows", ErrInvalidSize, w, h)
	}
	if a == nil {
		a = Heap
	}

	size := w * h * bpp
	pix, err := a.Alloc(size)
	if err != nil {
		return nil, fmt.Errorf("pixel: allocating %dx%d %s frame: %w", w, h, f, err)
	}
	if len(pix) != size {
		a.Free(pix)
		return nil, fmt.Errorf("%w: allocator returned %d bytes, expected %d", ErrOutOfMemory, len(pix), size)
	}

	return &Frame{
		Buffer: Buffer{
			Rect:   image.Rect(0, 0, w, h),
			Pix:    pix,
			Stride: w * bpp,
		},
		Format: f,
		Order:  binary.BigEndian,
		alloc:  a,
	}, nil
}

// Wrap returns a w by h frame over memory it does not own, such as a memory
// mapped video buffer. Rows are stride bytes apart. Release only detaches the
// frame from pix.
func Wrap(pix []byte, w, h, stride int, f Format, order binary.ByteOrder) (*Frame, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	bpp := f.BytesPerPixel()
	if bpp != 2 {
		return nil, fmt.Errorf("%w: %s", ErrFormat, f)
	}
	if w > math.MaxInt/bpp/h {
		return nil, fmt.Errorf("%w: %dx%d overflows", ErrInvalidSize, w, h)
	}
	if stride < w*bpp {
		return nil, fmt.Errorf("%w: stride %d for %d pixels", ErrInvalidSize, stride, w)
	}
	if h > 1 && stride > (math.MaxInt-w*bpp)/(h-1) {
		return nil, fmt.Errorf("%w: stride %d overflows", ErrInvalidSize, stride)
	}
	size := stride*(h-1) + w*bpp
	if len(pix) < size {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", ErrInvalidSize, len(pix), w, h)
	}
	if order == nil {
		order = binary.BigEndian
	}
	return &Frame{
		Buffer: Buffer{
			Rect:   image.Rect(0, 0, w, h),
			Pix:    pix[:size:size],
			Stride: stride,
		},
		Format: f,
		Order:  order,
	}, nil
}

// Len is the size of the pixel storage in bytes, 0 once released.
func (p *Frame) Len() int {
	return len(p.Pix)
}

// Released reports if the pixel storage has been returned.
func (p *Frame) Released() bool {
	return p.Pix == nil
}

// Release returns the pixel storage to its allocator. Calling Release more than
// once is a no-op.
func (p *Frame) Release() {
	if p.Pix == nil {
		return
	}
	if p.alloc != nil {
		p.alloc.Free(p.Pix)
	}
	p.Pix = nil
}

func (p *Frame) ColorModel() color.Model {
	return p.Format.Model()
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (p *Frame) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}

func (p *Frame) in(x, y int) bool {
	return p.Pix != nil && (image.Point{X: x, Y: y}).In(p.Rect)
}

// Value returns the pixel word at (x, y), or 0 outside the frame.
func (p *Frame) Value(x, y int) uint16 {
	if !p.in(x, y) {
		return 0
	}
	return p.Order.Uint16(p.Pix[p.PixOffset(x, y):])
}

// SetValue stores a pixel word at (x, y).
func (p *Frame) SetValue(x, y int, v uint16) {
	if !p.in(x, y) {
		return
	}
	p.Order.PutUint16(p.Pix[p.PixOffset(x, y):], v)
}

func (p *Frame) At(x, y int) color.Color {
	if !p.in(x, y) {
		return color.Transparent
	}
	return p.Format.Decode(p.Order.Uint16(p.Pix[p.PixOffset(x, y):]))
}

func (p *Frame) Set(x, y int, c color.Color) {
	if !p.in(x, y) {
		return
	}
	p.Order.PutUint16(p.Pix[p.PixOffset(x, y):], p.Format.Encode(c))
}

// Fill the whole frame with c.
func (p *Frame) Fill(c color.Color) {
	if len(p.Pix) < 2 {
		return
	}
	p.Order.PutUint16(p.Pix, p.Format.Encode(c))
	for n := 2; n < len(p.Pix); n *= 2 {
		copy(p.Pix[n:], p.Pix[:n])
	}
}

// Line draws a line between (x0, y0) and (x1, y1); pixels outside the frame
// are clipped.
func (p *Frame) Line(x0, y0, x1, y1 int, c color.Color) {
	if p.Pix == nil {
		return
	}
	draw.Line(p, image.Pt(x0, y0), image.Pt(x1, y1), c)
}

// LoadImage decodes data with dec and draws the result with its top-left corner
// at. If widthHint is positive and differs from the decoded width, the image is
// scaled to that width first, keeping its aspect ratio.
func (p *Frame) LoadImage(dec Decoder, data []byte, at image.Point, widthHint int) error {
	if p.Pix == nil {
		return ErrReleased
	}
	if dec == nil {
		dec = codec.Standard
	}

	src, _, err := dec.Decode(data)
	if err != nil {
		if errors.Is(err, ErrDecode) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if src.Bounds().Empty() {
		return fmt.Errorf("%w: empty image", ErrDecode)
	}

	if widthHint > 0 && src.Bounds().Dx() != widthHint {
		src = draw.ScaleToWidth(src, widthHint)
	}

	r := image.Rectangle{Min: at, Max: at.Add(src.Bounds().Size())}
	draw.Draw(p, r, src, src.Bounds().Min, draw.Src)
	return nil
}

// Interface checks.
var (
	_ Image = (*Frame)(nil)
)
