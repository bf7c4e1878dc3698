package display

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/BeatGlow/compositor/conn"
	"github.com/BeatGlow/compositor/internal/logging"
)

// Conn errors.
var (
	ErrResetPin = errors.New("display: reset GPIO pin is invalid")
	ErrDCPin    = errors.New("display: data/command (DC) GPIO pin is invalid")
)

// Conn is the connection interface for communicating with hardware.
type Conn interface {
	String() string

	// Close the connection.
	Close() error

	// Reset sets the reset pin to the provided level.
	Reset(gpio.Level) error

	// Command sends a command byte with optional arguments.
	Command(byte, ...byte) error

	// Data sends data bytes.
	Data(...byte) error
}

type SPI interface {
	Conn

	// SetDataLow changes the data/command direction behaviour.
	SetDataLow(bool)

	// SetMode requests a SPI mode.
	SetMode(mode conn.SPIMode) error

	// SetMaxSpeed requests a SPI speed.
	SetMaxSpeed(hz int) error
}

// Bus is the raw SPI transfer interface, implemented by [conn.SPI].
type Bus interface {
	fmt.Stringer
	Write([]byte) (int, error)
	Close() error
	SetMode(conn.SPIMode) error
	SetMaxSpeed(int) error
}

// SPIConfig describes the SPI bus configuration.
type SPIConfig struct {
	Bus       int
	Device    int
	SpeedHz   uint32
	DataLow   bool
	BatchSize uint
	Reset     gpio.PinOut
	DC        gpio.PinOut
	CE        gpio.PinOut
}

// DefaultSPIConfig are the default configuration values.
var DefaultSPIConfig = SPIConfig{
	Bus:       0,
	Device:    0,
	SpeedHz:   8_000_000,
	BatchSize: 4096,
	Reset:     gpioreg.ByName("GPIO25"),
	DC:        gpioreg.ByName("GPIO24"),
}

// ValidSPISpeeds are common valid SPI bus speeds.
var ValidSPISpeeds = []uint32{
	500_000,
	1_000_000,
	2_000_000,
	4_000_000,
	8_000_000,
	16_000_000,
	20_000_000,
	24_000_000,
	28_000_000,
	32_000_000,
	36_000_000,
	40_000_000,
	48_000_000,
	50_000_000,
	52_000_000,
}

type spiConn struct {
	bus       Bus
	reset     gpio.PinOut
	dc        gpio.PinOut
	dcLevel   gpio.Level
	cs        gpio.PinOut
	dataLow   bool
	batchSize uint
}

// OpenSPI opens the spidev device described by config.
func OpenSPI(config *SPIConfig) (SPI, error) {
	if config == nil {
		config = new(SPIConfig)
		*config = DefaultSPIConfig
	}

	if err := checkSPIConfig(config); err != nil {
		return nil, err
	}

	c, err := conn.OpenSPI(config.Bus, config.Device)
	if err != nil {
		return nil, err
	}

	s, err := NewSPI(c, config)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return s, nil
}

// NewSPI wraps an opened bus, driving the reset, DC and optional CE pins.
func NewSPI(bus Bus, config *SPIConfig) (SPI, error) {
	if err := checkSPIConfig(config); err != nil {
		return nil, err
	}

	if config.SpeedHz > 0 {
		if err := bus.SetMaxSpeed(int(config.SpeedHz)); err != nil {
			return nil, err
		}
	}

	return &spiConn{
		bus:       bus,
		batchSize: config.BatchSize,
		dataLow:   config.DataLow,
		reset:     config.Reset,
		dc:        config.DC,
		cs:        config.CE,
	}, nil
}

func checkSPIConfig(config *SPIConfig) error {
	if config.Reset == nil || config.Reset == gpio.INVALID {
		return ErrResetPin
	}
	if config.DC == nil || config.DC == gpio.INVALID {
		return ErrDCPin
	}

	if config.SpeedHz == 0 {
		config.SpeedHz = DefaultSPIConfig.SpeedHz
	}
	if config.BatchSize == 0 {
		config.BatchSize = DefaultSPIConfig.BatchSize
	}

	for _, speed := range ValidSPISpeeds {
		if speed == config.SpeedHz {
			return nil
		}
	}
	return fmt.Errorf("display: invalid SPI speed %dHz", config.SpeedHz)
}

func (c *spiConn) String() string {
	return fmt.Sprintf("SPI bus %s", c.bus)
}

func (c *spiConn) Close() error {
	return c.bus.Close()
}

func (c *spiConn) Reset(level gpio.Level) error {
	return c.reset.Out(level)
}

func (c *spiConn) updateDC(level gpio.Level) error {
	if c.dcLevel != level {
		if err := c.dc.Out(level); err != nil {
			return err
		}
		c.dcLevel = level
	}
	return nil
}

func (c *spiConn) updateCS(level gpio.Level) error {
	if c.cs == nil || c.cs == gpio.INVALID {
		return nil
	}
	return c.cs.Out(level)
}

func (c *spiConn) Command(cmnd byte, data ...byte) (err error) {
	if err = c.updateCS(gpio.Low); err != nil {
		return
	}
	if err = c.updateDC(gpio.Level(c.dataLow)); err != nil {
		return
	}
	if _, err = c.bus.Write([]byte{cmnd}); err != nil {
		return
	}
	if len(data) > 0 {
		if err = c.updateDC(gpio.Level(!c.dataLow)); err != nil {
			return
		}
		if err = c.writeChunked(data); err != nil {
			return
		}
	}
	return c.updateCS(gpio.High)
}

func (c *spiConn) Data(data ...byte) (err error) {
	if len(data) == 0 {
		return
	}
	if err = c.updateDC(gpio.Level(!c.dataLow)); err != nil {
		return
	}
	if err = c.updateCS(gpio.Low); err != nil {
		return
	}
	if err = c.writeChunked(data); err != nil {
		return
	}
	return c.updateCS(gpio.High)
}

func (c *spiConn) writeChunked(data []byte) (err error) {
	size := int(c.batchSize)
	if len(data) <= size {
		_, err = c.bus.Write(data)
		return
	}

	logging.Logger().Debug("spi: chunked write",
		"bytes", len(data),
		"chunks", (len(data)+size-1)/size)
	for len(data) > 0 {
		n := min(len(data), size)
		if _, err = c.bus.Write(data[:n]); err != nil {
			return
		}
		data = data[n:]
	}
	return
}

func (c *spiConn) SetDataLow(v bool) {
	c.dataLow = v
}

func (c *spiConn) SetMode(mode conn.SPIMode) error {
	return c.bus.SetMode(mode)
}

func (c *spiConn) SetMaxSpeed(hz int) error {
	return c.bus.SetMaxSpeed(hz)
}
