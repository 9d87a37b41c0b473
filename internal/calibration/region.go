package calibration

import (
	"github.com/ayusman/abhinaya/internal/landmark"
	"github.com/ayusman/abhinaya/internal/pointer"
)

// FixedRegion only produces positions while the nose is strictly inside a
// configured rectangle. Outside it the cursor holds still.
type FixedRegion struct {
	region Bounds
}

// NewFixedRegion creates a tracker for region.
func NewFixedRegion(region Bounds) (*FixedRegion, error) {
	if err := ValidateRegion(region); err != nil {
		return nil, err
	}
	return &FixedRegion{region: region}, nil
}

// Observe returns the nose position relative to the region when inside it.
func (f *FixedRegion) Observe(nose landmark.Point2D) (pointer.RelativePosition, bool) {
	r := f.region
	if nose.X <= r.XMin || nose.X >= r.XMax || nose.Y <= r.YMin || nose.Y >= r.YMax {
		return pointer.RelativePosition{}, false
	}
	return r.relative(nose), true
}

// Bounds returns the configured region.
func (f *FixedRegion) Bounds() Bounds {
	return f.region
}

// Reset is a no-op; the region is configuration.
func (f *FixedRegion) Reset() {}
