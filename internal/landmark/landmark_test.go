package landmark

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func validFrame() Frame {
	return Frame{
		Nose:        {X: 0.5, Y: 0.5},
		EyeTop:      {X: 0.4, Y: 0.40},
		EyeBottom:   {X: 0.4, Y: 0.42},
		MouthTop:    {X: 0.5, Y: 0.70},
		MouthBottom: {X: 0.5, Y: 0.76},
	}
}

func TestDistance(t *testing.T) {
	d := Distance(Point2D{X: 0, Y: 0}, Point2D{X: 0.3, Y: 0.4})
	if math.Abs(d-0.5) > epsilon {
		t.Errorf("expected distance 0.5, got %f", d)
	}
}

func TestFrame_Validate(t *testing.T) {
	t.Run("complete frame", func(t *testing.T) {
		if err := validFrame().Validate(); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
	})

	t.Run("missing slot", func(t *testing.T) {
		f := validFrame()
		delete(f, MouthBottom)

		err := f.Validate()
		if !errors.Is(err, ErrMissingSlot) {
			t.Fatalf("expected ErrMissingSlot, got %v", err)
		}
	})

	t.Run("NaN coordinate", func(t *testing.T) {
		f := validFrame()
		f[Nose] = Point2D{X: math.NaN(), Y: 0.5}

		err := f.Validate()
		if !errors.Is(err, ErrInvalidPoint) {
			t.Fatalf("expected ErrInvalidPoint, got %v", err)
		}
	})
}

func TestFrame_Apertures(t *testing.T) {
	f := validFrame()

	if got := f.EyeAperture(); math.Abs(got-0.02) > epsilon {
		t.Errorf("EyeAperture() = %f, want 0.02", got)
	}
	if got := f.MouthOpening(); math.Abs(got-0.06) > epsilon {
		t.Errorf("MouthOpening() = %f, want 0.06", got)
	}
}

func TestFromMesh(t *testing.T) {
	t.Run("picks face mesh indices", func(t *testing.T) {
		mesh := make([]Point2D, 468)
		for i := range mesh {
			mesh[i] = Point2D{X: float64(i) / 1000, Y: float64(i) / 2000}
		}

		f, err := FromMesh(mesh)
		if err != nil {
			t.Fatalf("FromMesh() error = %v", err)
		}

		want := map[Slot]int{Nose: 1, EyeTop: 159, EyeBottom: 145, MouthTop: 13, MouthBottom: 14}
		for slot, idx := range want {
			if f[slot] != mesh[idx] {
				t.Errorf("slot %s = %+v, want mesh[%d] = %+v", slot, f[slot], idx, mesh[idx])
			}
		}
	})

	t.Run("short mesh", func(t *testing.T) {
		_, err := FromMesh(make([]Point2D, 20))
		if !errors.Is(err, ErrMissingSlot) {
			t.Fatalf("expected ErrMissingSlot, got %v", err)
		}
	})
}
