package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/abhinaya/internal/landmark"
)

// MockDetector is a test implementation of the Detector interface.
// It replays a script of frames, one per Detect call, and then keeps
// returning the last entry. A nil entry means "no face".
type MockDetector struct {
	mu     sync.Mutex
	script []landmark.Frame
	index  int
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector that never sees a face.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFrames replaces the detection script and restarts it.
func (m *MockDetector) SetFrames(frames ...landmark.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = frames
	m.index = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect was called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next scripted frame or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat) (landmark.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.script) == 0 {
		return nil, nil
	}

	f := m.script[m.index]
	if m.index < len(m.script)-1 {
		m.index++
	}
	return f, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// NeutralFace returns a face looking at the camera with eyes open and mouth closed.
func NeutralFace() landmark.Frame {
	return Face(0.5, 0.5, 0.025, 0.01)
}

// Face returns a frame with the nose tip at (x, y), the given eyelid
// distance and lip distance.
func Face(x, y, eye, mouth float64) landmark.Frame {
	return landmark.Frame{
		landmark.Nose:        {X: x, Y: y},
		landmark.EyeTop:      {X: x - 0.08, Y: y - 0.10},
		landmark.EyeBottom:   {X: x - 0.08, Y: y - 0.10 + eye},
		landmark.MouthTop:    {X: x, Y: y + 0.12},
		landmark.MouthBottom: {X: x, Y: y + 0.12 + mouth},
	}
}
