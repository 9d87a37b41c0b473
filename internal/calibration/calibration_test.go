package calibration

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/abhinaya/internal/landmark"
)

func pt(x, y float64) landmark.Point2D {
	return landmark.Point2D{X: x, Y: y}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		region  Bounds
		wantErr error
	}{
		{name: "adaptive", policy: PolicyAdaptive},
		{name: "empty policy defaults to adaptive", policy: ""},
		{name: "fixed region", policy: PolicyFixedRegion, region: DefaultRegion()},
		{name: "fixed region inverted", policy: PolicyFixedRegion, region: EmptyBounds(), wantErr: ErrInvalidRegion},
		{name: "fixed region outside unit square", policy: PolicyFixedRegion, region: Bounds{XMin: -0.1, XMax: 0.5, YMin: 0, YMax: 1}, wantErr: ErrInvalidRegion},
		{name: "unknown", policy: "gyro", wantErr: ErrUnknownPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker, err := New(tt.policy, tt.region)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, tracker)
		})
	}
}

func TestAdaptive_NeedsSpanBeforeOutput(t *testing.T) {
	a := NewAdaptive()

	assert.False(t, a.Bounds().Meaningful())

	_, ok := a.Observe(pt(0.5, 0.5))
	assert.False(t, ok, "single observation has zero span")
	assert.True(t, a.Bounds().Meaningful())

	// X span grows but Y span is still zero.
	_, ok = a.Observe(pt(0.6, 0.5))
	assert.False(t, ok)

	// Y span below MinSpan is not enough.
	_, ok = a.Observe(pt(0.6, 0.505))
	assert.False(t, ok)

	rel, ok := a.Observe(pt(0.55, 0.6))
	require.True(t, ok)
	assert.InDelta(t, 0.5, rel.X, 1e-9)
	assert.InDelta(t, 1.0, rel.Y, 1e-9)
}

func TestAdaptive_Monotonic(t *testing.T) {
	a := NewAdaptive()
	rng := rand.New(rand.NewSource(7))

	prev := a.Bounds()
	for i := 0; i < 500; i++ {
		nose := pt(0.3+rng.Float64()*0.4, 0.25+rng.Float64()*0.5)
		rel, ok := a.Observe(nose)

		b := a.Bounds()
		if i > 0 {
			require.LessOrEqual(t, b.XMin, prev.XMin)
			require.GreaterOrEqual(t, b.XMax, prev.XMax)
			require.LessOrEqual(t, b.YMin, prev.YMin)
			require.GreaterOrEqual(t, b.YMax, prev.YMax)
		}
		prev = b

		if ok {
			require.GreaterOrEqual(t, rel.X, 0.0)
			require.LessOrEqual(t, rel.X, 1.0)
			require.GreaterOrEqual(t, rel.Y, 0.0)
			require.LessOrEqual(t, rel.Y, 1.0)
		}
	}
}

func TestAdaptive_Reset(t *testing.T) {
	a := NewAdaptive()
	a.Observe(pt(0.2, 0.2))
	a.Observe(pt(0.8, 0.8))

	a.Reset()

	assert.Equal(t, EmptyBounds(), a.Bounds())
}

func TestFixedRegion_Observe(t *testing.T) {
	f, err := NewFixedRegion(DefaultRegion())
	require.NoError(t, err)

	tests := []struct {
		name  string
		nose  landmark.Point2D
		ok    bool
		wantX float64
		wantY float64
	}{
		{name: "center", nose: pt(0.5, 0.5), ok: true, wantX: 0.5, wantY: 0.5},
		{name: "inside corner", nose: pt(0.35, 0.65), ok: true, wantX: 0.25, wantY: 0.75},
		{name: "on left edge", nose: pt(0.2, 0.5), ok: false},
		{name: "on bottom edge", nose: pt(0.5, 0.8), ok: false},
		{name: "outside", nose: pt(0.9, 0.1), ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel, ok := f.Observe(tt.nose)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, tt.wantX, rel.X, 1e-9)
				assert.InDelta(t, tt.wantY, rel.Y, 1e-9)
			}
		})
	}

	assert.Equal(t, DefaultRegion(), f.Bounds())
}
