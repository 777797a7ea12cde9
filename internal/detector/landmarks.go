// Package detector provides hand-landmark extraction interfaces and types
// for the mudra touchless input system.
package detector

import "errors"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness labels reported by landmark sources.
const (
	HandednessLeft  = "Left"
	HandednessRight = "Right"
)

// ErrMalformedFrame is returned when an upstream source delivers a hand
// record with a point count other than 21. This is a contract violation of
// the source, not a user error.
var ErrMalformedFrame = errors.New("landmark frame must contain exactly 21 points")

// Point3D represents a landmark position in pixel/camera space.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// BoundingBox is the axis-aligned pixel rectangle enclosing a detected hand.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// HandLandmarks is one detected hand for one frame: 21 ordered points plus
// a handedness label. Frames are produced and consumed within a single tick
// and never retained across ticks.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
	Bounds     BoundingBox           `json:"bounds"`
}

// FrameFromPoints validates a variable-length point slice from an upstream
// source and converts it into a HandLandmarks value. The fixed-size array in
// HandLandmarks makes the 21-point invariant unrepresentable everywhere past
// this boundary, so the count is checked here and nowhere else.
func FrameFromPoints(points []Point3D, handedness string) (*HandLandmarks, error) {
	if len(points) != NumLandmarks {
		return nil, ErrMalformedFrame
	}

	h := &HandLandmarks{Handedness: handedness}
	copy(h.Points[:], points)
	return h, nil
}
