package framebuffer

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"os"
	"syscall"

	"github.com/BeatGlow/compositor/display"
	"github.com/BeatGlow/compositor/internal/ioctl"
	"github.com/BeatGlow/compositor/internal/logging"
	"github.com/BeatGlow/compositor/pixel"
)

const (
	// From <linux/fb.h>
	fbioGetVScreenInfo = 0x4600
	fbioGetFScreenInfo = 0x4602
	fbioBlank          = 0x4611

	fbBlankUnblank   = 0
	fbBlankPowerdown = 4
)

type linuxFrameBuffer struct {
	f          *os.File
	fd         uintptr
	info       linuxFrameBufferInfo
	screenInfo linuxVarScreenInfo
	mem        []byte
	fb         *pixel.Frame
}

// Open a Linux FrameBuffer device (fbdev) by name, typically /dev/fb[0..x].
func Open(name string) (display.Display, error) {
	f, err := os.OpenFile(name, os.O_RDWR, os.ModeDevice)
	if err != nil {
		return nil, err
	}

	fb := &linuxFrameBuffer{
		f:  f,
		fd: f.Fd(),
	}
	if err = ioctl.Do(fb.fd, fbioGetFScreenInfo, &fb.info); err != nil {
		_ = f.Close()
		return nil, err
	}

	// Request virtual screen info.
	if err = ioctl.Do(fb.fd, fbioGetVScreenInfo, &fb.screenInfo); err != nil {
		_ = f.Close()
		return nil, err
	}
	format, err := linuxParseFormat(&fb.screenInfo)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	// Map pixel buffer.
	if fb.mem, err = syscall.Mmap(int(fb.fd), 0, int(fb.info.SmemLen), syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED); err != nil {
		_ = f.Close()
		return nil, err
	}

	if fb.fb, err = linuxFrame(fb.mem, &fb.info, &fb.screenInfo, format); err != nil {
		_ = syscall.Munmap(fb.mem)
		_ = f.Close()
		return nil, err
	}

	logging.Logger().Info("framebuffer: opened",
		"device", name,
		"id", fb.String(),
		"size", fb.fb.Bounds().Size().String(),
		"format", format.String())
	return fb, nil
}

// linuxFrame returns the visible part of the mapped memory as a frame.
func linuxFrame(mem []byte, info *linuxFrameBufferInfo, screenInfo *linuxVarScreenInfo, format pixel.Format) (*pixel.Frame, error) {
	var (
		stride = int(info.LineLength)
		offset = int(screenInfo.Yoffset)*stride + int(screenInfo.Xoffset)*format.BytesPerPixel()
	)
	if offset > len(mem) {
		return nil, fmt.Errorf("framebuffer: offset %d beyond %d bytes of video memory", offset, len(mem))
	}
	// Framebuffer memory is in host byte order.
	return pixel.Wrap(mem[offset:], int(screenInfo.Xres), int(screenInfo.Yres), stride, format, binary.LittleEndian)
}

func (fb *linuxFrameBuffer) String() string {
	id := fb.info.ID[:]
	for i, c := range id {
		if c == 0 {
			id = id[:i]
			break
		}
	}
	return string(id)
}

// Close the framebuffer device
func (fb *linuxFrameBuffer) Close() error {
	fb.fb.Release()
	if err := syscall.Munmap(fb.mem); err != nil {
		return err
	}
	return fb.f.Close()
}

func (fb *linuxFrameBuffer) Frame() *pixel.Frame {
	return fb.fb
}

func (fb *linuxFrameBuffer) Clear() {
	fb.fb.Clear()
}

func (fb *linuxFrameBuffer) Fill(c color.Color) {
	fb.fb.Fill(c)
}

func (fb *linuxFrameBuffer) At(x, y int) color.Color {
	return fb.fb.At(x, y)
}

func (fb *linuxFrameBuffer) Set(x, y int, c color.Color) {
	fb.fb.Set(x, y, c)
}

func (fb *linuxFrameBuffer) Bounds() image.Rectangle {
	return fb.fb.Bounds()
}

func (fb *linuxFrameBuffer) ColorModel() color.Model {
	return fb.fb.ColorModel()
}

// Show blanks or unblanks the screen.
func (fb *linuxFrameBuffer) Show(show bool) error {
	var blank uintptr = fbBlankPowerdown
	if show {
		blank = fbBlankUnblank
	}
	return ioctl.Call(fb.fd, fbioBlank, blank)
}

// SetContrast adjusts the contrast level.
func (fb *linuxFrameBuffer) SetContrast(level uint8) error {
	return nil
}

// SetRotation adjusts the pixel rotation.
func (fb *linuxFrameBuffer) SetRotation(_ display.Rotation) error {
	return nil
}

// Refresh redraws the display.
func (fb *linuxFrameBuffer) Refresh() error {
	if fb.fb.Released() {
		return display.ErrClosed
	}
	return nil
}

type linuxFrameBufferInfo struct {
	ID         [16]byte  // Identification string eg "TT Builtin"
	SmemStart  uintptr   // Start of frame buffer mem
	SmemLen    uint32    // Length of frame buffer mem
	Type       uint32    // FB_TYPE_
	TypeAux    uint32    // Interleave for interleaved Planes
	Visual     uint32    // FB_VISUAL_
	Xpanstep   uint16    // Zero if no hardware panning
	Ypanstep   uint16    // Zero if no hardware panning
	Ywrapstep  uint16    // Zero if no hardware ywrap
	LineLength uint32    // Length of a line in bytes
	MmioStart  uintptr   // Start of Memory Mapped I/O (physical address)
	MmioLen    uint32    // Length of Memory Mapped I/O
	Accel      uint32    // Type of acceleration available
	Reserved   [3]uint16 // Reserved for future compatibility
}

// linuxBitField for the color
type linuxBitField struct {
	Offset   uint32 // Beginning of bitfield
	Length   uint32 // Length of bitfield
	MsbRight uint32 // != 0 : Most significant bit is right
}

// linuxVarScreenInfo contains device independent changeable information about a frame buffer device and a specific video mode.
type linuxVarScreenInfo struct {
	Xres                    uint32
	Yres                    uint32
	XresVirtual             uint32
	YresVirtual             uint32
	Xoffset                 uint32
	Yoffset                 uint32
	BitsPerPixel            uint32
	Grayscale               uint32
	Red, Green, Blue, Alpha linuxBitField
	Nonstd                  uint32
	Activate                uint32
	Height                  uint32
	Width                   uint32
	AccelFlags              uint32
	Pixclock                uint32
	LeftMargin              uint32
	RightMargin             uint32
	UpperMargin             uint32
	LowerMargin             uint32
	HsyncLen                uint32
	VsyncLen                uint32
	Sync                    uint32
	Vmode                   uint32
	Rotate                  uint32
	Colorspace              uint32
	Reserved                [4]uint32
}

// linuxParseFormat maps the screen bit fields to a pixel format. Only the 15
// and 16-bit packed layouts are supported.
func linuxParseFormat(info *linuxVarScreenInfo) (pixel.Format, error) {
	if info == nil {
		return pixel.UnknownFormat, fmt.Errorf("%w: no screen info", ErrColorModel)
	}

	if (info.BitsPerPixel == 15 || info.BitsPerPixel == 16) &&
		info.Red.Length == 5 &&
		info.Blue.Length == 5 &&
		info.Alpha.Length == 0 {
		switch {
		case info.Green.Length == 5 && info.Green.Offset == 5 && info.Red.Offset == 10 && info.Blue.Offset == 0:
			return pixel.FormatCRGB15, nil
		case info.Green.Length == 5 && info.Green.Offset == 5 && info.Blue.Offset == 10 && info.Red.Offset == 0:
			return pixel.FormatCBGR15, nil
		case info.Green.Length == 6 && info.Green.Offset == 5 && info.Red.Offset == 11 && info.Blue.Offset == 0:
			return pixel.FormatCRGB16, nil
		case info.Green.Length == 6 && info.Green.Offset == 5 && info.Blue.Offset == 11 && info.Red.Offset == 0:
			return pixel.FormatCBGR16, nil
		}
	}

	return pixel.UnknownFormat, fmt.Errorf("%w: %d bits per pixel, red %d/%d green %d/%d blue %d/%d",
		ErrColorModel, info.BitsPerPixel,
		info.Red.Offset, info.Red.Length,
		info.Green.Offset, info.Green.Length,
		info.Blue.Offset, info.Blue.Length)
}
