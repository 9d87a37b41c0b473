// Package calibration maps raw nose positions into a relative [0,1] range.
//
// Two policies are supported: an adaptive tracker whose bounds widen as the
// user moves, and a fixed region that only reacts inside a configured rectangle.
package calibration

import (
	"errors"
	"fmt"

	"github.com/ayusman/abhinaya/internal/landmark"
	"github.com/ayusman/abhinaya/internal/pointer"
)

// Policy selects the calibration strategy.
type Policy string

const (
	// PolicyAdaptive widens the bounds to every observed nose position.
	PolicyAdaptive Policy = "adaptive"
	// PolicyFixedRegion restricts control to a configured rectangle.
	PolicyFixedRegion Policy = "fixed-region"
)

// MinSpan is the smallest observed range, per axis, before the adaptive
// tracker emits positions.
const MinSpan = 0.01

var (
	// ErrUnknownPolicy is returned for a policy name that is not supported.
	ErrUnknownPolicy = errors.New("unknown calibration policy")
	// ErrInvalidRegion is returned for a fixed region that is empty or outside [0,1].
	ErrInvalidRegion = errors.New("invalid calibration region")
)

// Bounds is the calibrated nose range in normalized image coordinates.
type Bounds struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

// EmptyBounds returns the inverted range used before any observation.
func EmptyBounds() Bounds {
	return Bounds{XMin: 1, XMax: 0, YMin: 1, YMax: 0}
}

// DefaultRegion is the central 60% of the frame.
func DefaultRegion() Bounds {
	return Bounds{XMin: 0.2, XMax: 0.8, YMin: 0.2, YMax: 0.8}
}

// Meaningful reports whether the bounds describe a real, non-inverted range.
func (b Bounds) Meaningful() bool {
	return b.XMin <= b.XMax && b.YMin <= b.YMax
}

// Span returns the width and height of the range.
func (b Bounds) Span() (float64, float64) {
	return b.XMax - b.XMin, b.YMax - b.YMin
}

// relative maps p into the range. Callers guarantee a non-zero span.
func (b Bounds) relative(p landmark.Point2D) pointer.RelativePosition {
	return pointer.RelativePosition{
		X: (p.X - b.XMin) / (b.XMax - b.XMin),
		Y: (p.Y - b.YMin) / (b.YMax - b.YMin),
	}
}

// Tracker converts nose positions into relative positions.
type Tracker interface {
	// Observe feeds one nose position. The boolean is false when no
	// position can be produced for this tick.
	Observe(nose landmark.Point2D) (pointer.RelativePosition, bool)

	// Bounds returns the current calibration range.
	Bounds() Bounds

	// Reset discards any learned calibration.
	Reset()
}

// New returns the tracker for policy. The region is only used by PolicyFixedRegion.
func New(policy Policy, region Bounds) (Tracker, error) {
	switch policy {
	case PolicyAdaptive, "":
		return NewAdaptive(), nil
	case PolicyFixedRegion:
		return NewFixedRegion(region)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}
}

// ValidateRegion checks that region is a non-empty rectangle inside [0,1]x[0,1].
func ValidateRegion(region Bounds) error {
	inUnit := func(v float64) bool { return v >= 0 && v <= 1 }
	if !inUnit(region.XMin) || !inUnit(region.XMax) || !inUnit(region.YMin) || !inUnit(region.YMax) {
		return fmt.Errorf("%w: %+v outside [0,1]", ErrInvalidRegion, region)
	}
	if region.XMin >= region.XMax || region.YMin >= region.YMax {
		return fmt.Errorf("%w: %+v is empty", ErrInvalidRegion, region)
	}
	return nil
}
