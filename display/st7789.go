package display

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/compositor/conn"
	"github.com/BeatGlow/compositor/pixel"
)

const (
	st7789DefaultWidth  = 240
	st7789DefaultHeight = 240
	st7789BatchSize     = 4096
)

// Registers (from st7789.pdf).
const (
	st7789SWRESET   = 0x01 // Software Reset
	st7789SLPIN     = 0x10 // Sleep In
	st7789SLPOUT    = 0x11 // Sleep Out
	st7789NORON     = 0x13 // Normal Display Mode On
	st7789INVON     = 0x21 // Display Inversion On
	st7789DISPOFF   = 0x28 // Display Off
	st7789DISPON    = 0x29 // Display On
	st7789CASET     = 0x2A // Column Address Set
	st7789RASET     = 0x2B // Row Address Set
	st7789RAMWR     = 0x2C // Memory Write
	st7789MADCTL    = 0x36 // Memory Data Access Control
	st7789COLMOD    = 0x3A // Interface Pixel Format
	st7789PORCTRL   = 0xB2 // Porch Setting
	st7789GCTRL     = 0xB7 // Gate Control
	st7789VCOMS     = 0xBB // VCOM Setting
	st7789LCMCTRL   = 0xC0 // LCM Control
	st7789VDVVRHEN  = 0xC2 // VDV and VRH Command Enable
	st7789VRHS      = 0xC3 // VRH Set
	st7789VDVSET    = 0xC4 // VDV Set
	st7789VCMOFSET  = 0xC5 // VCOM Offset Set
	st7789FRCTR2    = 0xC6 // Frame Rate Control in Normal Mode
	st7789PWCTRL1   = 0xD0 // Power Control 1
	st7789PVGAMCTRL = 0xE0 // Positive Voltage Gamma Control
	st7789NVGAMCTRL = 0xE1 // Negative Voltage Gamma Control
)

// Memory Data Access Control (MADCTL) bit fields.
const (
	_                           byte = 1 << iota // D0: reserved
	_                                            // D1: reserved
	st7789DisplayDataLatchOrder                  // D2: MH
	st7789RGBOrder                               // D3: RGB
	st7789LineAddressOrder                       // D4: ML
	st7789PageColumnOrder                        // D5: MV
	st7789ColumnAddressOrder                     // D6: MX
	st7789PageAddressOrder                       // D7: MY
)

// sleep is replaced in tests.
var sleep = time.Sleep

type st7789 struct {
	baseDisplay
}

// ST7789 initializes a Sitronix ST7789 RGB565 panel on c.
func ST7789(c Conn, config *Config) (Display, error) {
	if config == nil {
		config = new(Config)
	}

	// Update mode and speed
	if spi, ok := c.(SPI); ok {
		spi.SetDataLow(false)
		if err := spi.SetMode(conn.SPIMode3); err != nil {
			return nil, err
		}
		if err := spi.SetMaxSpeed(40_000_000); err != nil {
			return nil, err
		}
	}

	d := &st7789{
		baseDisplay: baseDisplay{c: c},
	}

	// Common initialization
	if err := d.init(config); err != nil {
		d.release()
		return nil, err
	}

	return d, nil
}

func (d *st7789) Close() error {
	err := d.Show(false)
	d.release()
	return errors.Join(err, d.c.Close())
}

func (d *st7789) String() string {
	bounds := d.Bounds()
	return fmt.Sprintf("ST7789 %dx%d", bounds.Dx(), bounds.Dy())
}

// command shadows baseDisplay.command
func (d *st7789) command(command byte, data ...byte) (err error) {
	if err = d.c.Command(command); err != nil {
		return
	}
	for _, data := range data {
		if err = d.c.Data(data); err != nil {
			return
		}
	}
	return
}

func (d *st7789) commands(commands [][]byte) (err error) {
	for _, command := range commands {
		if err = d.command(command[0], command[1:]...); err != nil {
			return
		}
	}
	return
}

func (d *st7789) init(config *Config) (err error) {
	if config.Width == 0 {
		config.Width = st7789DefaultWidth
	}
	if config.Height == 0 {
		config.Height = st7789DefaultHeight
	}

	if (config.Rotation == NoRotation || config.Rotation == Rotate180) && (config.Width > 240 || config.Height > 320) {
		return fmt.Errorf("st7789: invalid size %dx%d, maximum size is 240x320 at %s rotation", config.Width, config.Height, config.Rotation)
	} else if (config.Rotation == Rotate90 || config.Rotation == Rotate270) && (config.Width > 320 || config.Height > 240) {
		return fmt.Errorf("st7789: invalid size %dx%d, maximum size is 320x240 at %s rotation", config.Width, config.Height, config.Rotation)
	}

	// The panel only takes RGB565 over the 8-bit bus, high byte first.
	if err = d.baseDisplay.init(config, pixel.FormatCRGB16, binary.BigEndian); err != nil {
		return
	}

	// reset the device.
	if err = d.c.Reset(gpio.High); err != nil {
		return
	}
	sleep(100 * time.Millisecond)
	if err = d.c.Reset(gpio.Low); err != nil {
		return
	}
	sleep(100 * time.Millisecond)
	if err = d.c.Reset(gpio.High); err != nil {
		return
	}

	// init display
	sleep(10 * time.Millisecond)
	if err = d.command(st7789SLPOUT); err != nil { // Sleep Out
		return
	}
	sleep(150 * time.Millisecond)

	if err = d.commands([][]byte{
		{st7789MADCTL, 0x00},        // Memory Data Access Control, updated by SetRotation
		{st7789COLMOD, 0x05},        // Interface Pixel Format: 8-bit data bus for 16-bit/pixel (RGB 5-6-5-bit input)
		{st7789PORCTRL, 0x0C, 0x0C}, // Porch Setting: default
		{st7789GCTRL, 0x35},         // Gate Control: 13.26V / -10.43V (default)
		{st7789VCOMS, 0x1A},         // VCOM Setting: 0.75V (default is 0x20 / 0.9V)
		{st7789LCMCTRL, 0x2C},       // LCM Control: default
		{st7789VDVVRHEN, 0x01},      // VDV and VRH Command Enable: default
		{st7789VRHS, 0x0B},          // VRH Set: default (4.1V+( vcom+vcom offset+vdv))
		{st7789VDVSET, 0x20},        // VDV Set: default (0V)
		{st7789VCMOFSET, 0x20},      // VCOM Offset Set: default (0V)
		{st7789FRCTR2, 0x0F},        // Frame Rate Control in Normal Mode: 60Hz (default)
		{st7789PWCTRL1, 0xA4, 0xA1}, // Power Control 1: default
		{st7789INVON},               // Display Inversion On
		{st7789PVGAMCTRL, 0x00, 0x19, 0x1E, 0x0A, 0x09, 0x15, 0x3D, 0x44, 0x51, 0x12, 0x03, 0x00, 0x3F, 0x3F}, // Positive Voltage Gamma Control: default
		{st7789NVGAMCTRL, 0x00, 0x18, 0x1E, 0x0A, 0x09, 0x25, 0x3F, 0x43, 0x52, 0x33, 0x03, 0x00, 0x3F, 0x3F}, // Negative Voltage Gamma Control: default
		{st7789NORON},  // Normal Display Mode On
		{st7789DISPON}, // Display On
	}); err != nil {
		return
	}
	sleep(100 * time.Millisecond)

	return d.SetRotation(config.Rotation)
}

func (d *st7789) Show(show bool) error {
	var command = byte(st7789DISPOFF)
	if show {
		command = byte(st7789DISPON)
	}
	return d.command(command)
}

// Sleep puts the panel controller in or out of sleep mode.
func (d *st7789) Sleep(sleeping bool) error {
	if sleeping {
		return d.command(st7789SLPIN)
	}
	if err := d.command(st7789SLPOUT); err != nil {
		return err
	}
	sleep(120 * time.Millisecond)
	return nil
}

func (d *st7789) SetRotation(rotation Rotation) error {
	rotation &= 3

	var madctl byte
	switch rotation {
	case NoRotation:
		madctl = 0
	case Rotate90:
		madctl = st7789ColumnAddressOrder | st7789PageColumnOrder
	case Rotate180:
		madctl = st7789ColumnAddressOrder | st7789PageAddressOrder
	case Rotate270:
		madctl = st7789PageAddressOrder | st7789PageColumnOrder
	}

	d.rotation = rotation
	return d.command(st7789MADCTL, madctl)
}

func (d *st7789) SetWindow(x0, y0, x1, y1 int) error {
	if x1 == 0 {
		x1 = d.width - 1
	}
	if y1 == 0 {
		y1 = d.height - 1
	}
	if d.rotation == Rotate90 || d.rotation == Rotate270 {
		x0 += d.rowOffset
		y0 += d.colOffset
		x1 += d.rowOffset
		y1 += d.colOffset
	} else {
		x0 += d.colOffset
		y0 += d.rowOffset
		x1 += d.colOffset
		y1 += d.rowOffset
	}
	return d.commands([][]byte{
		{st7789CASET, byte(x0 >> 8), byte(x0), byte(x1 >> 8), byte(x1)}, // Column address
		{st7789RASET, byte(y0 >> 8), byte(y0), byte(y1 >> 8), byte(y1)}, // Row address
		{st7789RAMWR}, // Write to RAM
	})
}

// Refresh sets the window to full screen and redraws using the internal frame buffer.
func (d *st7789) Refresh() error {
	if d.fb.Released() {
		return ErrClosed
	}
	if err := d.SetWindow(0, 0, 0, 0); err != nil {
		return err
	}

	pix := d.fb.Pix
	for i, l := 0, len(pix); i < l; i += st7789BatchSize {
		j := min(i+st7789BatchSize, l)
		if err := d.data(pix[i:j]...); err != nil {
			return err
		}
	}
	return nil
}
