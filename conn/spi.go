// Package conn implements the Linux spidev transport used by the display drivers.
package conn

import (
	"fmt"
	"os"

	"github.com/BeatGlow/compositor/internal/ioctl"
)

// Clock phase and polarity bits from <spi/spidev.h>
const (
	spiCPHA = 0x01
	spiCPOL = 0x02
)

// SPIMode selects clock polarity and phase.
type SPIMode uint8

const (
	SPIMode0 SPIMode = 0
	SPIMode1 SPIMode = spiCPHA
	SPIMode2 SPIMode = spiCPOL
	SPIMode3 SPIMode = spiCPOL | spiCPHA
)

// spiDevPath is the prefix of the spidev device nodes, /dev/spidevB.D.
const spiDevPath = "/dev/spidev"

// spidev ioctl numbers, the size and direction are added by ioctl.Pointer.
const (
	spiIOCMode       = 0x6b01
	spiIOCMaxSpeedHz = 0x6b04
)

// SPI is an opened spidev node. Writes are sent as a single transfer each.
type SPI struct {
	f     *os.File
	fd    uintptr
	mode  SPIMode
	speed uint32
}

// OpenSPI opens /dev/spidev<bus>.<device>. The device usually is the chip
// select line of that bus.
func OpenSPI(bus, device int) (*SPI, error) {
	f, err := os.OpenFile(DevicePath(bus, device), os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	c := &SPI{f: f, fd: f.Fd()}
	if err = c.get(spiIOCMode, &c.mode); err == nil {
		err = c.get(spiIOCMaxSpeedHz, &c.speed)
	}
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("conn: %s: %w", f.Name(), err)
	}
	return c, nil
}

// DevicePath is the spidev node for the bus and device.
func DevicePath(bus, device int) string {
	return fmt.Sprintf("%s%d.%d", spiDevPath, bus, device)
}

func (c *SPI) get(cmd uintptr, v interface{}) error {
	return ioctl.Do(c.fd, ioctl.Pointer(ioctl.Read, v, cmd), v)
}

func (c *SPI) set(cmd uintptr, v interface{}) error {
	return ioctl.Do(c.fd, ioctl.Pointer(ioctl.Write, v, cmd), v)
}

func (c *SPI) Close() error {
	return c.f.Close()
}

func (c *SPI) String() string {
	return fmt.Sprintf("%s mode=%d speed=%dHz", c.f.Name(), c.mode, c.speed)
}

// SetMode switches the bus mode and reads it back, some controllers silently
// refuse modes they don't support.
func (c *SPI) SetMode(mode SPIMode) error {
	mode &= SPIMode3
	if mode == c.mode {
		return nil
	}
	if err := c.set(spiIOCMode, &mode); err != nil {
		return err
	}

	var got SPIMode
	if err := c.get(spiIOCMode, &got); err != nil {
		return err
	}
	if got != mode {
		return fmt.Errorf("conn: %s refused mode %d, using mode %d", c.f.Name(), mode, got)
	}
	c.mode = mode
	return nil
}

// SetMaxSpeed sets the transfer clock. Non-positive values keep the current speed.
func (c *SPI) SetMaxSpeed(hz int) error {
	if hz <= 0 || uint32(hz) == c.speed {
		return nil
	}
	u := uint32(hz)
	if err := c.set(spiIOCMaxSpeedHz, &u); err != nil {
		return err
	}
	c.speed = u
	return nil
}

func (c *SPI) Write(b []byte) (int, error) {
	return c.f.Write(b)
}
