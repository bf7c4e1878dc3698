package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v2"
	"periph.io/x/conn/v3/physic"

	"github.com/BeatGlow/compositor/animation"
	"github.com/BeatGlow/compositor/display"
	"github.com/BeatGlow/compositor/resource"
)

// Config is the spinner configuration, read from an optional YAML file and
// overridden by command line flags.
type Config struct {
	Driver             string          `yaml:"driver"`
	Framebuffer        string          `yaml:"framebuffer"`
	Width              int             `yaml:"width"`
	Height             int             `yaml:"height"`
	Rotation           string          `yaml:"rotation"`
	Period             time.Duration   `yaml:"period"`
	Duration           time.Duration   `yaml:"duration"`
	LineLength         int             `yaml:"line_length"`
	TicksPerRevolution int             `yaml:"ticks_per_revolution"`
	KeyColor           string          `yaml:"key_color"`
	LineColor          string          `yaml:"line_color"`
	BackgroundColor    string          `yaml:"background_color"`
	Assets             string          `yaml:"assets"`
	Background         string          `yaml:"background"`
	FitBackground      bool            `yaml:"fit_background"`
	Caption            string          `yaml:"caption"`
	CaptionColor       string          `yaml:"caption_color"`
	PoolBytes          int             `yaml:"pool_bytes"`
	Snapshot           string          `yaml:"snapshot"`
	Backlight          BacklightConfig `yaml:"backlight"`
	SPI                SPIConfig       `yaml:"spi"`
}

// BacklightConfig is the backlight section.
type BacklightConfig struct {
	Pin       string `yaml:"pin"`
	Level     uint   `yaml:"level"`
	Frequency string `yaml:"frequency"`
}

// SPIConfig is the SPI section.
type SPIConfig struct {
	Bus    int    `yaml:"bus"`
	Device int    `yaml:"device"`
	Speed  uint   `yaml:"speed"`
	Reset  string `yaml:"reset"`
	DC     string `yaml:"dc"`
	CE     string `yaml:"ce"`
}

// DefaultConfig drives a 240x240 ST7789 on SPI0 with the backlight at 60%.
var DefaultConfig = Config{
	Driver:             "st7789",
	Framebuffer:        "/dev/fb0",
	Width:              animation.DefaultConfig.Width,
	Height:             animation.DefaultConfig.Height,
	Period:             animation.DefaultConfig.Period,
	LineLength:         animation.DefaultConfig.LineLength,
	TicksPerRevolution: animation.DefaultConfig.TicksPerRevolution,
	KeyColor:           "#0000ff",
	LineColor:          "#00ffff",
	BackgroundColor:    "#000000",
	Background:         resource.Background,
	CaptionColor:       "#ffffff",
	Backlight: BacklightConfig{
		Pin:       "GPIO19",
		Level:     60,
		Frequency: "1kHz",
	},
	SPI: SPIConfig{
		Bus:    display.DefaultSPIConfig.Bus,
		Device: display.DefaultSPIConfig.Device,
		Speed:  40_000_000,
		Reset:  "GPIO25",
		DC:     "GPIO24",
		CE:     "GPIO8",
	},
}

// parseConfig parses the command line. Flags given on the command line take
// precedence over the configuration file.
func parseConfig(name string, args []string) (*Config, error) {
	var (
		config = new(Config)
		fs     = flag.NewFlagSet(name, flag.ContinueOnError)
	)
	*config = DefaultConfig

	configFlag := fs.String("config", "", "YAML configuration file")
	fs.StringVar(&config.Driver, "driver", config.Driver, "Display driver (st7789, framebuffer, virtual)")
	fs.StringVar(&config.Framebuffer, "fb", config.Framebuffer, "Framebuffer device")
	fs.IntVar(&config.Width, "width", config.Width, "Display width")
	fs.IntVar(&config.Height, "height", config.Height, "Display height")
	fs.StringVar(&config.Rotation, "rotate", config.Rotation, "Display rotation")
	fs.DurationVar(&config.Period, "period", config.Period, "Animation period")
	fs.DurationVar(&config.Duration, "duration", config.Duration, "Stop after this long (0 runs until interrupted)")
	fs.IntVar(&config.LineLength, "line", config.LineLength, "Spoke length in pixels")
	fs.IntVar(&config.TicksPerRevolution, "ticks", config.TicksPerRevolution, "Ticks per revolution")
	fs.StringVar(&config.KeyColor, "key", config.KeyColor, "Transparent key color")
	fs.StringVar(&config.LineColor, "color", config.LineColor, "Spoke color")
	fs.StringVar(&config.Assets, "assets", config.Assets, "Image directory (default: embedded images)")
	fs.StringVar(&config.Background, "background", config.Background, "Background image id")
	fs.BoolVar(&config.FitBackground, "fit", config.FitBackground, "Scale the background image to the display width")
	fs.StringVar(&config.Caption, "caption", config.Caption, "Caption drawn on the background")
	fs.IntVar(&config.PoolBytes, "pool", config.PoolBytes, "Limit frame memory to this many bytes (0 is unlimited)")
	fs.StringVar(&config.Snapshot, "snapshot", config.Snapshot, "Save the last virtual display frame as PNG")
	fs.StringVar(&config.Backlight.Pin, "bl", config.Backlight.Pin, "Backlight GPIO pin")
	fs.UintVar(&config.Backlight.Level, "backlight", config.Backlight.Level, "Backlight level in percent")
	fs.IntVar(&config.SPI.Bus, "spi-bus", config.SPI.Bus, "SPI bus")
	fs.IntVar(&config.SPI.Device, "spi-dev", config.SPI.Device, "SPI device")
	fs.UintVar(&config.SPI.Speed, "spi-speed", config.SPI.Speed, "SPI speed in Hz")
	fs.StringVar(&config.SPI.Reset, "reset", config.SPI.Reset, "Reset GPIO pin")
	fs.StringVar(&config.SPI.DC, "dc", config.SPI.DC, "Data/Command GPIO pin (DC)")
	fs.StringVar(&config.SPI.CE, "ce", config.SPI.CE, "Chip enable GPIO pin")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *configFlag == "" {
		return config, nil
	}

	// Remember the flags that were set, load the file, then set them again.
	set := make(map[string]string)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = f.Value.String()
	})

	*config = DefaultConfig
	if err := loadConfig(*configFlag, config); err != nil {
		return nil, err
	}
	for flagName, value := range set {
		if err := fs.Set(flagName, value); err != nil {
			return nil, fmt.Errorf("flag -%s: %w", flagName, err)
		}
	}
	return config, nil
}

func loadConfig(name string, config *Config) error {
	b, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	if err = yaml.UnmarshalStrict(b, config); err != nil {
		return fmt.Errorf("config %s: %w", name, err)
	}
	return nil
}

// Animation returns the session configuration.
func (c *Config) Animation() (config animation.Config, err error) {
	config = animation.DefaultConfig
	config.Width = c.Width
	config.Height = c.Height
	config.Period = c.Period
	config.LineLength = c.LineLength
	config.TicksPerRevolution = c.TicksPerRevolution
	config.Background = c.Background
	config.FitBackground = c.FitBackground
	config.Caption = c.Caption

	for _, field := range []struct {
		name  string
		value string
		color *color.Color
	}{
		{"key", c.KeyColor, &config.KeyColor},
		{"line", c.LineColor, &config.LineColor},
		{"background", c.BackgroundColor, &config.BackgroundColor},
		{"caption", c.CaptionColor, &config.CaptionColor},
	} {
		if *field.color, err = parseColor(field.value); err != nil {
			return config, fmt.Errorf("%s color: %w", field.name, err)
		}
	}
	return config, nil
}

// BacklightFrequency is the parsed backlight PWM frequency.
func (c *Config) BacklightFrequency() (physic.Frequency, error) {
	var f physic.Frequency
	if c.Backlight.Frequency == "" {
		return display.DefaultBacklightFrequency, nil
	}
	if err := f.Set(c.Backlight.Frequency); err != nil {
		return 0, fmt.Errorf("backlight frequency: %w", err)
	}
	return f, nil
}

// DisplayRotation is the parsed rotation.
func (c *Config) DisplayRotation() (display.Rotation, error) {
	switch strings.ToLower(c.Rotation) {
	case "", "no", "0":
		return display.NoRotation, nil
	case "90", "right", "cw":
		return display.Rotate90, nil
	case "180", "flip":
		return display.Rotate180, nil
	case "270", "left", "ccw":
		return display.Rotate270, nil
	default:
		return 0, fmt.Errorf("invalid rotation %q specified", c.Rotation)
	}
}

func parseColor(s string) (color.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
