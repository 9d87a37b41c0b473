// Package engine turns face landmark frames into pointer-control commands.
//
// The engine is single-threaded and tick driven: the control loop calls Tick
// once per captured frame with a monotonic timestamp. All calibration and
// debounce state lives in the Engine value, so a session owns exactly one.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/abhinaya/internal/calibration"
	"github.com/ayusman/abhinaya/internal/gesture"
	"github.com/ayusman/abhinaya/internal/landmark"
	"github.com/ayusman/abhinaya/internal/pointer"
)

// ErrInvalidFrame is returned by Tick for a frame missing a required landmark.
var ErrInvalidFrame = errors.New("invalid landmark frame")

// Engine maps landmark frames to commands.
type Engine struct {
	config  Config
	tracker calibration.Tracker
	blink   *gesture.BlinkDebouncer
	mouth   *gesture.MouthDebouncer
}

// New validates config and creates an engine with empty state.
func New(config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	tracker, err := calibration.New(config.Policy, config.Region)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return &Engine{
		config:  config,
		tracker: tracker,
		blink:   gesture.NewBlinkDebouncer(config.Blink),
		mouth:   gesture.NewMouthDebouncer(config.Mouth),
	}, nil
}

// Tick processes one frame captured at now and returns the commands to inject,
// in the order MoveTo, LeftClick, RightClick.
//
// A nil frame means no face was detected: nothing is emitted and no state
// changes. A frame missing a slot is rejected before any state is touched.
func (e *Engine) Tick(frame landmark.Frame, now time.Duration) ([]Command, error) {
	if frame == nil {
		return nil, nil
	}
	if err := frame.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFrame, err)
	}

	var commands []Command

	if rel, ok := e.tracker.Observe(frame[landmark.Nose]); ok {
		commands = append(commands, Move(pointer.Map(rel, e.config.Screen)))
	}
	if e.blink.Update(frame.EyeAperture(), now) {
		commands = append(commands, Command{Kind: LeftClick})
	}
	if e.mouth.Update(frame.MouthOpening(), now) {
		commands = append(commands, Command{Kind: RightClick})
	}

	return commands, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.config
}

// Reset discards calibration and debounce state.
func (e *Engine) Reset() {
	e.tracker.Reset()
	e.blink.Reset()
	e.mouth.Reset()
}

// Snapshot is a read-only view of the engine state.
type Snapshot struct {
	Policy         calibration.Policy `json:"policy"`
	Bounds         calibration.Bounds `json:"bounds"`
	Calibrated     bool               `json:"calibrated"`
	EyeState       string             `json:"eye_state"`
	PendingBlinks  []time.Duration    `json:"pending_blinks"`
	LastRightClick *time.Duration     `json:"last_right_click,omitempty"`
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	bounds := e.tracker.Bounds()
	spanX, spanY := bounds.Span()

	s := Snapshot{
		Policy:        e.config.Policy,
		Bounds:        bounds,
		Calibrated:    spanX > calibration.MinSpan && spanY > calibration.MinSpan,
		EyeState:      e.blink.State().String(),
		PendingBlinks: e.blink.Pending(),
	}
	if last, ok := e.mouth.LastFired(); ok {
		s.LastRightClick = &last
	}
	return s
}
