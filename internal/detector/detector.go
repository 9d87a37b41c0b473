// Package detector provides face landmark detection for the gesture engine.
package detector

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/abhinaya/internal/landmark"
)

// Detector defines the interface for face landmark implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the landmarks of the first
	// face. Returns a nil frame if no face is detected.
	Detect(frame *gocv.Mat) (landmark.Frame, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for face detection.
type Config struct {
	// RefineLandmarks enables the iris/lip refinement model.
	RefineLandmarks bool

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// IdleTimeoutSec stops the inference process after this many idle seconds.
	IdleTimeoutSec int
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		RefineLandmarks: true,
		MinConfidence:   0.5,
		IdleTimeoutSec:  30,
	}
}
