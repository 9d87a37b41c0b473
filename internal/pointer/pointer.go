// Package pointer maps calibrated head positions onto screen pixels.
package pointer

import "math"

// DefaultMargin keeps the cursor this many pixels away from every screen edge.
const DefaultMargin = 5

// RelativePosition is a position inside the calibrated range, both axes in [0,1].
type RelativePosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ScreenPoint is a pixel coordinate on the target display.
type ScreenPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Screen describes the target display and the edge margin to respect.
type Screen struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Margin int `json:"margin"`
}

// Map converts a relative position into a screen point clamped to
// [margin, dimension-margin] on both axes, so the literal screen edge is never hit.
func Map(rel RelativePosition, screen Screen) ScreenPoint {
	x := int(math.Round(rel.X * float64(screen.Width)))
	y := int(math.Round(rel.Y * float64(screen.Height)))

	return ScreenPoint{
		X: clamp(x, screen.Margin, screen.Width-screen.Margin),
		Y: clamp(y, screen.Margin, screen.Height-screen.Margin),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
