package animation

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/golang/freetype/truetype"

	"github.com/BeatGlow/compositor"
	"github.com/BeatGlow/compositor/clock"
	"github.com/BeatGlow/compositor/codec"
	"github.com/BeatGlow/compositor/draw"
	"github.com/BeatGlow/compositor/event"
	"github.com/BeatGlow/compositor/internal/logging"
	"github.com/BeatGlow/compositor/pixel"
	"github.com/BeatGlow/compositor/resource"
)

// Errors
var (
	ErrSessionActive = errors.New("animation: session already created")
	ErrNotCreated    = errors.New("animation: session not created")
	ErrNoTarget      = errors.New("animation: no display target")
	ErrNoClock       = errors.New("animation: no clock")
)

// State of a session.
type State uint8

// Session states.
const (
	Idle State = iota
	Created
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Created:
		return "created"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Timer arms repeating callbacks, implemented by [clock.Clock].
type Timer interface {
	Start(period time.Duration, fn func(time.Time)) (clock.Handle, error)
	Stop(clock.Handle)
}

// Deps are the collaborators of a session.
type Deps struct {
	// Allocator for the layer frames, defaults to pixel.Heap.
	Allocator pixel.Allocator

	// Resources provides the background image, defaults to resource.Default().
	Resources resource.Provider

	// Decoder for resource images, defaults to codec.Standard.
	Decoder pixel.Decoder

	// Target the layers are composed onto.
	Target compositor.Target

	// Clock drives the ticks.
	Clock Timer

	// Font for the caption, defaults to draw.DefaultFont().
	Font *truetype.Font
}

// Session owns the layers, the timer and the resources of one animation.
//
// All methods must be called from the dispatcher goroutine.
type Session struct {
	config   Config
	deps     Deps
	state    State
	layers   compositor.LayerSet
	director *Director
	timer    clock.Handle
	opened   bool
}

// NewSession prepares a session; nothing is allocated until Create.
func NewSession(config Config, deps Deps) *Session {
	if deps.Allocator == nil {
		deps.Allocator = pixel.Heap
	}
	if deps.Resources == nil {
		deps.Resources = resource.Default()
	}
	if deps.Decoder == nil {
		deps.Decoder = codec.Standard
	}
	return &Session{
		config: config.withDefaults(),
		deps:   deps,
	}
}

// Register the lifecycle handlers of the session with d.
func (s *Session) Register(d *event.Dispatcher) {
	d.Handle(event.Create, s.HandleEvent)
	d.Handle(event.Paint, s.HandleEvent)
	d.Handle(event.Quit, s.HandleEvent)
}

// State of the session.
func (s *Session) State() State {
	return s.state
}

// Config is the effective configuration.
func (s *Session) Config() Config {
	return s.config
}

// Director is the frame director, nil while idle.
func (s *Session) Director() *Director {
	return s.director
}

// Layers are the background and foreground, nil while idle.
func (s *Session) Layers() compositor.LayerSet {
	return s.layers
}

// HandleEvent handles the lifecycle events.
func (s *Session) HandleEvent(ev event.Event) error {
	switch ev.Type {
	case event.Create:
		return s.create()
	case event.Paint:
		return s.paint()
	case event.Quit:
		return s.Close()
	default:
		return nil
	}
}

// create opens the resources and allocates both layers.
func (s *Session) create() (err error) {
	if s.state != Idle {
		return ErrSessionActive
	}
	if s.deps.Target == nil {
		return ErrNoTarget
	}

	defer func() {
		if err != nil {
			s.rollback(err)
		}
	}()

	if err = s.deps.Resources.Open(); err != nil {
		return fmt.Errorf("animation: opening resources: %w", err)
	}
	s.opened = true

	var background, foreground *pixel.Frame
	if background, err = s.allocate(); err != nil {
		return
	}
	s.layers = compositor.LayerSet{{Frame: background}}
	if foreground, err = s.allocate(); err != nil {
		return
	}
	s.layers = append(s.layers, compositor.Layer{Frame: foreground})

	comp := compositor.New(s.deps.Target, s.config.KeyColor)
	s.director = NewDirector(comp, background, foreground, s.config)
	s.state = Created
	s.logger().Info("session created",
		"size", image.Pt(s.config.Width, s.config.Height).String(),
		"format", s.config.Format.String())
	return nil
}

func (s *Session) allocate() (*pixel.Frame, error) {
	f, err := pixel.Allocate(s.deps.Allocator, s.config.Width, s.config.Height, s.config.Format)
	if err != nil {
		return nil, fmt.Errorf("animation: allocating layer: %w", err)
	}
	return f, nil
}

// paint draws the background, arms the clock and draws the first frame.
func (s *Session) paint() (err error) {
	switch s.state {
	case Idle:
		return ErrNotCreated
	case Running:
		return s.director.Redraw()
	}

	defer func() {
		if err != nil {
			s.rollback(err)
		}
	}()

	if err = s.drawBackground(s.layers[0].Frame); err != nil {
		return
	}

	if s.deps.Clock == nil {
		return ErrNoClock
	}
	if s.timer, err = s.deps.Clock.Start(s.config.Period, s.onTick); err != nil {
		return fmt.Errorf("animation: starting clock: %w", err)
	}
	s.state = Running
	s.logger().Info("session running", "period", s.config.Period)

	return s.director.Tick()
}

func (s *Session) drawBackground(bg *pixel.Frame) error {
	bg.Fill(s.config.BackgroundColor)

	if id := s.config.Background; id != "" {
		data, err := s.deps.Resources.Image(id)
		if err != nil {
			return fmt.Errorf("animation: loading background: %w", err)
		}
		var widthHint int
		if s.config.FitBackground {
			widthHint = s.config.Width
		}
		if err = bg.LoadImage(s.deps.Decoder, data, image.Point{}, widthHint); err != nil {
			return fmt.Errorf("animation: background %q: %w", id, err)
		}
	}

	if s.config.Caption != "" {
		f := s.deps.Font
		if f == nil {
			var err error
			if f, err = draw.DefaultFont(); err != nil {
				return fmt.Errorf("animation: loading font: %w", err)
			}
		}
		y := s.config.Height - int(s.config.CaptionSize)/2
		if err := draw.Caption(bg, f, s.config.CaptionSize, y, s.config.CaptionColor, s.config.Caption); err != nil {
			return fmt.Errorf("animation: drawing caption: %w", err)
		}
	}
	return nil
}

func (s *Session) onTick(time.Time) {
	if s.state != Running {
		s.logger().Debug("tick skipped", "state", s.state.String())
		return
	}
	if err := s.director.Tick(); err != nil {
		s.logger().Debug("tick skipped", "error", err)
	}
}

// Close stops the clock, releases the layers and closes the resources.
// Closing an idle session is a no-op.
func (s *Session) Close() error {
	if s.state == Idle && !s.opened && s.layers == nil {
		return nil
	}
	err := s.teardown()
	s.logger().Info("session closed")
	return err
}

// teardown stops the clock before any frame is released.
func (s *Session) teardown() (err error) {
	if s.timer != 0 {
		s.deps.Clock.Stop(s.timer)
		s.timer = 0
	}
	s.layers.Release()
	s.layers = nil
	s.director = nil
	if s.opened {
		err = s.deps.Resources.Close()
		s.opened = false
	}
	s.state = Idle
	return
}

func (s *Session) logger() *slog.Logger {
	return logging.Logger().With("component", "animation")
}

func (s *Session) rollback(cause error) {
	if err := s.teardown(); err != nil {
		s.logger().Warn("rollback failed", "cause", cause, "error", err)
	}
}
