package detector

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/ayusman/abhinaya/internal/landmark"
)

const epsilon = 1e-9

func meshJSON(t *testing.T, n int) []byte {
	t.Helper()

	points := make([]landmark.Point2D, n)
	for i := range points {
		points[i] = landmark.Point2D{X: float64(i) / 1000, Y: 0.5}
	}

	data, err := json.Marshal(map[string]any{
		"faces": []map[string]any{{"points": points, "score": 0.9}},
	})
	if err != nil {
		t.Fatalf("marshal mesh: %v", err)
	}
	return data
}

func TestParseResponse(t *testing.T) {
	t.Run("first face mapped to slots", func(t *testing.T) {
		f, err := parseResponse(meshJSON(t, 478))
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if math.Abs(f[landmark.Nose].X-0.001) > epsilon {
			t.Errorf("nose x = %f, want 0.001", f[landmark.Nose].X)
		}
		if math.Abs(f[landmark.EyeTop].X-0.159) > epsilon {
			t.Errorf("eye top x = %f, want 0.159", f[landmark.EyeTop].X)
		}
	})

	t.Run("no face", func(t *testing.T) {
		f, err := parseResponse([]byte(`{"faces":[]}` + "\n"))
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if f != nil {
			t.Errorf("expected nil frame, got %v", f)
		}
	})

	t.Run("truncated mesh", func(t *testing.T) {
		_, err := parseResponse(meshJSON(t, 100))
		if !errors.Is(err, landmark.ErrMissingSlot) {
			t.Errorf("expected ErrMissingSlot, got %v", err)
		}
	})

	t.Run("service error", func(t *testing.T) {
		_, err := parseResponse([]byte(`{"faces":[],"error":"decode failed"}`))
		if err == nil {
			t.Error("expected error")
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := parseResponse([]byte("not json")); err == nil {
			t.Error("expected error")
		}
	})
}

func TestMockDetector_Script(t *testing.T) {
	m := NewMockDetector()

	if f, err := m.Detect(nil); f != nil || err != nil {
		t.Fatalf("empty script: got %v, %v", f, err)
	}

	first := Face(0.4, 0.4, 0.02, 0)
	m.SetFrames(first, nil, NeutralFace())

	got := []landmark.Frame{}
	for i := 0; i < 4; i++ {
		f, err := m.Detect(nil)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		got = append(got, f)
	}

	if got[0][landmark.Nose] != first[landmark.Nose] {
		t.Errorf("first frame mismatch")
	}
	if got[1] != nil {
		t.Errorf("second frame should be no face")
	}
	if got[3] == nil {
		t.Errorf("script should hold its last frame")
	}
	if m.Calls() != 5 {
		t.Errorf("Calls() = %d, want 5", m.Calls())
	}
}

func TestMockDetector_Error(t *testing.T) {
	m := NewMockDetector()
	want := errors.New("boom")
	m.SetError(want)

	if _, err := m.Detect(nil); !errors.Is(err, want) {
		t.Errorf("expected configured error, got %v", err)
	}
}

func TestFace_Apertures(t *testing.T) {
	f := Face(0.5, 0.5, 0.005, 0.08)
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if math.Abs(f.EyeAperture()-0.005) > 1e-6 {
		t.Errorf("EyeAperture() = %f, want 0.005", f.EyeAperture())
	}
	if math.Abs(f.MouthOpening()-0.08) > 1e-6 {
		t.Errorf("MouthOpening() = %f, want 0.08", f.MouthOpening())
	}
}

func TestNewMediaPipeDetector_MissingScript(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	if _, err := NewMediaPipeDetector(DefaultConfig()); err == nil {
		t.Skip("face mesh service installed next to the test binary")
	}
}
