// Package gesture provides the temporal detectors that turn eye and mouth
// apertures into discrete click gestures.
package gesture

import "time"

// EyeState is the state of the blink state machine.
type EyeState int

const (
	// EyeOpen means the eyelid distance is at or above the closed threshold.
	EyeOpen EyeState = iota
	// EyeClosed means the eye closed and the closure has already been counted.
	EyeClosed
)

// String returns a human-readable name for the state.
func (s EyeState) String() string {
	if s == EyeClosed {
		return "closed"
	}
	return "open"
}

// BlinkConfig holds the blink detector thresholds.
type BlinkConfig struct {
	ClosedThreshold float64       // Eyelid distance below which the eye is closed
	Window          time.Duration // How far back blinks are counted
	CountToClick    int           // Blinks inside Window that fire a click
}

// DefaultBlinkConfig returns the double-blink configuration.
func DefaultBlinkConfig() BlinkConfig {
	return BlinkConfig{
		ClosedThreshold: 0.01,
		Window:          2 * time.Second,
		CountToClick:    2,
	}
}

// BlinkDebouncer counts Open->Closed edges of the eye and fires once
// CountToClick of them fall inside the trailing window.
//
// A sustained closure is a single edge: while the machine is in EyeClosed no
// further blinks are recorded until the eye opens again.
type BlinkDebouncer struct {
	config     BlinkConfig
	state      EyeState
	timestamps []time.Duration
}

// NewBlinkDebouncer creates a debouncer in the EyeOpen state.
func NewBlinkDebouncer(config BlinkConfig) *BlinkDebouncer {
	return &BlinkDebouncer{
		config:     config,
		state:      EyeOpen,
		timestamps: make([]time.Duration, 0, config.CountToClick),
	}
}

// Update processes one eyelid distance sample taken at now and reports
// whether a click gesture completed on this sample.
func (b *BlinkDebouncer) Update(aperture float64, now time.Duration) bool {
	closed := aperture < b.config.ClosedThreshold

	switch b.state {
	case EyeOpen:
		if closed {
			b.state = EyeClosed
			b.timestamps = append(b.timestamps, now)
			b.prune(now)
		}
	case EyeClosed:
		if !closed {
			b.state = EyeOpen
		}
	}

	if len(b.timestamps) >= b.config.CountToClick {
		b.timestamps = b.timestamps[:0]
		return true
	}
	return false
}

// prune drops blinks older than the window, measured back from now.
func (b *BlinkDebouncer) prune(now time.Duration) {
	kept := b.timestamps[:0]
	for _, ts := range b.timestamps {
		if now-ts <= b.config.Window {
			kept = append(kept, ts)
		}
	}
	b.timestamps = kept
}

// State returns the current eye state.
func (b *BlinkDebouncer) State() EyeState {
	return b.state
}

// Pending returns the blinks counted toward the next click.
func (b *BlinkDebouncer) Pending() []time.Duration {
	out := make([]time.Duration, len(b.timestamps))
	copy(out, b.timestamps)
	return out
}

// Reset returns the machine to EyeOpen with no pending blinks.
func (b *BlinkDebouncer) Reset() {
	b.state = EyeOpen
	b.timestamps = b.timestamps[:0]
}
