package calibration

import (
	"github.com/ayusman/abhinaya/internal/landmark"
	"github.com/ayusman/abhinaya/internal/pointer"
)

// Adaptive widens its bounds to include every observed nose position.
// XMin and YMin never increase; XMax and YMax never decrease.
type Adaptive struct {
	bounds Bounds
}

// NewAdaptive creates an adaptive tracker with no observations.
func NewAdaptive() *Adaptive {
	return &Adaptive{bounds: EmptyBounds()}
}

// Observe widens the bounds and, once both spans exceed MinSpan, returns
// the nose position relative to the bounds.
func (a *Adaptive) Observe(nose landmark.Point2D) (pointer.RelativePosition, bool) {
	a.bounds.XMin = min(a.bounds.XMin, nose.X)
	a.bounds.XMax = max(a.bounds.XMax, nose.X)
	a.bounds.YMin = min(a.bounds.YMin, nose.Y)
	a.bounds.YMax = max(a.bounds.YMax, nose.Y)

	spanX, spanY := a.bounds.Span()
	if spanX <= MinSpan || spanY <= MinSpan {
		return pointer.RelativePosition{}, false
	}

	return a.bounds.relative(nose), true
}

// Bounds returns the observed range.
func (a *Adaptive) Bounds() Bounds {
	return a.bounds
}

// Reset forgets all observations.
func (a *Adaptive) Reset() {
	a.bounds = EmptyBounds()
}
