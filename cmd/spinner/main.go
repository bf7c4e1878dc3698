// Command spinner spins a line around the center of a display, over a static
// background image.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/compositor"
	"github.com/BeatGlow/compositor/animation"
	"github.com/BeatGlow/compositor/clock"
	"github.com/BeatGlow/compositor/display"
	"github.com/BeatGlow/compositor/event"
	"github.com/BeatGlow/compositor/framebuffer"
	"github.com/BeatGlow/compositor/pixel"
	"github.com/BeatGlow/compositor/resource"
)

func main() {
	config, err := parseConfig(os.Args[0], os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		fatal(err)
	}

	level := slog.LevelInfo
	if os.Getenv("DISPLAY_DEBUG") != "" {
		level = slog.LevelDebug
	}
	compositor.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if config.Duration > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, config.Duration)
		defer cancelTimeout()
	}

	if err = run(ctx, config); err != nil {
		fatal(err)
	}
}

func run(ctx context.Context, config *Config) (err error) {
	output, err := openDisplay(config)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := output.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	fmt.Printf("using driver: %s\n", output)

	if b, ok := output.(interface{ Backlight() *display.Backlight }); ok && b.Backlight() != nil {
		if err = b.Backlight().SetLevel(uint8(min(config.Backlight.Level, 100))); err != nil {
			return err
		}
	}

	anim, err := config.Animation()
	if err != nil {
		return err
	}

	var allocator pixel.Allocator = pixel.Heap
	if config.PoolBytes > 0 {
		allocator = pixel.NewPool(config.PoolBytes)
	}

	resources := resource.Default()
	if config.Assets != "" {
		resources = resource.Dir(config.Assets)
	}

	var (
		dispatcher = event.New()
		timer      = clock.New(dispatcher)
		session    = animation.NewSession(anim, animation.Deps{
			Allocator: allocator,
			Resources: resources,
			Target:    output,
			Clock:     timer,
		})
	)
	defer timer.Close()
	defer session.Close()

	session.Register(dispatcher)
	dispatcher.Handle(event.Tick, timer.HandleTick)
	for _, t := range []event.Type{event.Create, event.Paint} {
		if err = dispatcher.Post(event.Event{Type: t}); err != nil {
			return err
		}
	}

	// Ask the session to quit when interrupted; give up on the queue if
	// the quit event can't be posted.
	runCtx, stop := context.WithCancel(context.Background())
	defer stop()
	go func() {
		select {
		case <-ctx.Done():
			if err := dispatcher.Post(event.Event{Type: event.Quit}); err != nil {
				stop()
			}
		case <-dispatcher.Done():
		}
	}()

	fmt.Println("hit control-c to stop...")
	if err = dispatcher.Run(runCtx); errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		return err
	}

	if v, ok := output.(*display.Virtual); ok && config.Snapshot != "" {
		return saveSnapshot(v, config.Snapshot)
	}
	return nil
}

func openDisplay(config *Config) (display.Display, error) {
	rotation, err := config.DisplayRotation()
	if err != nil {
		return nil, err
	}
	freq, err := config.BacklightFrequency()
	if err != nil {
		return nil, err
	}
	dc := &display.Config{
		Width:              config.Width,
		Height:             config.Height,
		Rotation:           rotation,
		BacklightFrequency: freq,
	}

	switch driver := strings.ToLower(config.Driver); driver {
	case "virtual":
		return display.NewVirtual(dc)

	case "fb", "framebuffer":
		return framebuffer.Open(config.Framebuffer)

	case "st7789":
		if _, err = host.Init(); err != nil {
			return nil, err
		}
		dc.Backlight = gpioreg.ByName(config.Backlight.Pin)

		conn, err := display.OpenSPI(&display.SPIConfig{
			Bus:     config.SPI.Bus,
			Device:  config.SPI.Device,
			SpeedHz: uint32(config.SPI.Speed),
			Reset:   gpioreg.ByName(config.SPI.Reset),
			DC:      gpioreg.ByName(config.SPI.DC),
			CE:      gpioreg.ByName(config.SPI.CE),
		})
		if err != nil {
			return nil, err
		}
		fmt.Printf("using connection: %s\n", conn)

		output, err := display.ST7789(conn, dc)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return output, nil

	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

func saveSnapshot(v *display.Virtual, name string) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err = v.Snapshot(f); err != nil {
		_ = f.Close()
		return err
	}
	fmt.Printf("saved snapshot to %s\n", name)
	return f.Close()
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
