package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/abhinaya/internal/calibration"
	"github.com/ayusman/abhinaya/internal/gesture"
	"github.com/ayusman/abhinaya/internal/pointer"
)

// ErrInvalidConfig is returned when an engine is built from a bad configuration.
var ErrInvalidConfig = errors.New("invalid engine config")

// Config holds every tunable of the gesture engine.
type Config struct {
	// Calibration
	Policy calibration.Policy
	Region calibration.Bounds // Only used by calibration.PolicyFixedRegion

	// Detectors
	Blink gesture.BlinkConfig
	Mouth gesture.MouthConfig

	// Output
	Screen pointer.Screen
}

// DefaultConfig returns the self-calibrating configuration.
func DefaultConfig() Config {
	return Config{
		Policy: calibration.PolicyAdaptive,
		Region: calibration.DefaultRegion(),
		Blink:  gesture.DefaultBlinkConfig(),
		Mouth:  gesture.DefaultMouthConfig(),
		Screen: pointer.Screen{
			Width:  1920,
			Height: 1080,
			Margin: pointer.DefaultMargin,
		},
	}
}

// FixedRegionConfig returns a configuration that only tracks the nose
// inside the central 60% of the frame and lets the cursor reach the edges.
func FixedRegionConfig() Config {
	cfg := DefaultConfig()
	cfg.Policy = calibration.PolicyFixedRegion
	cfg.Screen.Margin = 0
	cfg.Mouth.Cooldown = 500 * time.Millisecond
	return cfg
}

// Validate reports the first problem with the configuration.
func (c Config) Validate() error {
	switch c.Policy {
	case calibration.PolicyAdaptive:
	case calibration.PolicyFixedRegion:
		if err := calibration.ValidateRegion(c.Region); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	default:
		return fmt.Errorf("%w: unknown calibration policy %q", ErrInvalidConfig, c.Policy)
	}

	if c.Blink.ClosedThreshold <= 0 {
		return fmt.Errorf("%w: blink closed threshold must be positive, got %v", ErrInvalidConfig, c.Blink.ClosedThreshold)
	}
	if c.Blink.Window <= 0 {
		return fmt.Errorf("%w: blink window must be positive, got %v", ErrInvalidConfig, c.Blink.Window)
	}
	if c.Blink.CountToClick < 1 {
		return fmt.Errorf("%w: blink count to click must be at least 1, got %d", ErrInvalidConfig, c.Blink.CountToClick)
	}
	if c.Mouth.OpenThreshold <= 0 {
		return fmt.Errorf("%w: mouth open threshold must be positive, got %v", ErrInvalidConfig, c.Mouth.OpenThreshold)
	}
	if c.Mouth.Cooldown <= 0 {
		return fmt.Errorf("%w: mouth cooldown must be positive, got %v", ErrInvalidConfig, c.Mouth.Cooldown)
	}

	s := c.Screen
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: screen size must be positive, got %dx%d", ErrInvalidConfig, s.Width, s.Height)
	}
	if s.Margin < 0 {
		return fmt.Errorf("%w: screen margin must not be negative, got %d", ErrInvalidConfig, s.Margin)
	}
	if 2*s.Margin >= s.Width || 2*s.Margin >= s.Height {
		return fmt.Errorf("%w: screen margin %d leaves no room on a %dx%d screen", ErrInvalidConfig, s.Margin, s.Width, s.Height)
	}

	return nil
}
