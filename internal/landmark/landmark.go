// Package landmark defines the per-frame face landmark data consumed by the gesture engine.
package landmark

import (
	"errors"
	"fmt"
	"math"
)

// Face mesh landmark indices following the MediaPipe FaceMesh convention.
// Only the right eye is tracked; the frame is mirrored before inference.
const (
	MeshNoseTip      = 1
	MeshUpperLipTop  = 13
	MeshLowerLipTop  = 14
	MeshRightEyeLow  = 145
	MeshRightEyeHigh = 159

	// MinMeshPoints is the smallest mesh that contains every index above.
	MinMeshPoints = MeshRightEyeHigh + 1
)

var (
	// ErrMissingSlot is returned when a frame lacks one of the required slots.
	ErrMissingSlot = errors.New("landmark slot missing")
	// ErrInvalidPoint is returned when a landmark coordinate is NaN or infinite.
	ErrInvalidPoint = errors.New("landmark point invalid")
)

// Slot names one of the landmarks the engine consumes.
type Slot string

const (
	Nose        Slot = "nose"
	EyeTop      Slot = "eyeTop"
	EyeBottom   Slot = "eyeBottom"
	MouthTop    Slot = "mouthTop"
	MouthBottom Slot = "mouthBottom"
)

// Slots lists every slot a valid frame must carry.
var Slots = []Slot{Nose, EyeTop, EyeBottom, MouthTop, MouthBottom}

// meshIndex maps each slot to its face mesh index.
var meshIndex = map[Slot]int{
	Nose:        MeshNoseTip,
	EyeTop:      MeshRightEyeHigh,
	EyeBottom:   MeshRightEyeLow,
	MouthTop:    MeshUpperLipTop,
	MouthBottom: MeshLowerLipTop,
}

// Point2D is a normalized image-space coordinate with the origin at the top left.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Valid reports whether both coordinates are finite numbers.
func (p Point2D) Valid() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point2D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Frame holds the landmarks of a single face for one tick.
type Frame map[Slot]Point2D

// Get returns the point stored in slot.
func (f Frame) Get(slot Slot) (Point2D, error) {
	p, ok := f[slot]
	if !ok {
		return Point2D{}, fmt.Errorf("%w: %s", ErrMissingSlot, slot)
	}
	if !p.Valid() {
		return Point2D{}, fmt.Errorf("%w: %s (%v, %v)", ErrInvalidPoint, slot, p.X, p.Y)
	}
	return p, nil
}

// Validate checks that every required slot is present and finite.
func (f Frame) Validate() error {
	for _, slot := range Slots {
		if _, err := f.Get(slot); err != nil {
			return err
		}
	}
	return nil
}

// EyeAperture returns the distance between the upper and lower eyelid.
// The frame must have been validated.
func (f Frame) EyeAperture() float64 {
	return Distance(f[EyeTop], f[EyeBottom])
}

// MouthOpening returns the distance between the upper and lower lip.
// The frame must have been validated.
func (f Frame) MouthOpening() float64 {
	return Distance(f[MouthTop], f[MouthBottom])
}

// FromMesh extracts the tracked slots from a full face mesh.
func FromMesh(mesh []Point2D) (Frame, error) {
	if len(mesh) < MinMeshPoints {
		return nil, fmt.Errorf("%w: mesh has %d points, need %d", ErrMissingSlot, len(mesh), MinMeshPoints)
	}

	f := make(Frame, len(Slots))
	for _, slot := range Slots {
		f[slot] = mesh[meshIndex[slot]]
	}
	return f, f.Validate()
}
