package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// SyntheticHand builds a geometrically plausible right hand in pixel space
// with controlled measurements: span is the thumb-MCP to pinky-MCP distance,
// clickGap the thumb-tip to index-tip distance, and exitGap the thumb-tip to
// middle-tip distance. All three are exact planar distances, so tests can
// drive the gesture thresholds deterministically.
func SyntheticHand(span, clickGap, exitGap float64) HandLandmarks {
	h := HandLandmarks{
		Handedness: HandednessRight,
		Score:      0.95,
	}

	// Palm base
	h.Points[Wrist] = Point3D{X: 300, Y: 420, Z: 0}
	h.Points[ThumbCMC] = Point3D{X: 270, Y: 390, Z: 0}
	h.Points[ThumbMCP] = Point3D{X: 240, Y: 340, Z: 0}
	h.Points[PinkyMCP] = Point3D{X: 240 + span, Y: 340, Z: 0}

	// Remaining MCP row spread between thumb and pinky
	h.Points[IndexMCP] = Point3D{X: 240 + span*0.33, Y: 330, Z: 0}
	h.Points[MiddleMCP] = Point3D{X: 240 + span*0.55, Y: 328, Z: 0}
	h.Points[RingMCP] = Point3D{X: 240 + span*0.78, Y: 332, Z: 0}

	// Thumb chain ending at the tip the gesture measurements hang off
	h.Points[ThumbIP] = Point3D{X: 230, Y: 290, Z: 0}
	h.Points[ThumbTip] = Point3D{X: 250, Y: 230, Z: 0}

	// Index finger: tip exactly clickGap from the thumb tip
	h.Points[IndexPIP] = Point3D{X: 260, Y: 280, Z: 0}
	h.Points[IndexDIP] = Point3D{X: 258, Y: 250, Z: 0}
	h.Points[IndexTip] = Point3D{X: 250 + clickGap, Y: 230, Z: 0}

	// Middle finger: tip exactly exitGap from the thumb tip
	h.Points[MiddlePIP] = Point3D{X: 255, Y: 285, Z: 0}
	h.Points[MiddleDIP] = Point3D{X: 252, Y: 260, Z: 0}
	h.Points[MiddleTip] = Point3D{X: 250, Y: 230 + exitGap, Z: 0}

	// Ring and pinky curled away from the measurements
	h.Points[RingPIP] = Point3D{X: 240 + span*0.78, Y: 300, Z: -0.02}
	h.Points[RingDIP] = Point3D{X: 240 + span*0.80, Y: 310, Z: -0.04}
	h.Points[RingTip] = Point3D{X: 240 + span*0.82, Y: 322, Z: -0.02}
	h.Points[PinkyPIP] = Point3D{X: 240 + span, Y: 310, Z: -0.02}
	h.Points[PinkyDIP] = Point3D{X: 242 + span, Y: 320, Z: -0.04}
	h.Points[PinkyTip] = Point3D{X: 244 + span, Y: 330, Z: -0.02}

	h.Bounds = boundsOf(&h)
	return h
}

// OpenHand returns a hand with the given span and all fingertips spread far
// apart, so neither the click nor the exit condition holds.
func OpenHand(span float64) HandLandmarks {
	return SyntheticHand(span, 150, 160)
}

// PinchedHand returns a hand with the given span holding a thumb-index
// pinch at the given gap, with the middle finger well clear.
func PinchedHand(span, gap float64) HandLandmarks {
	return SyntheticHand(span, gap, 160)
}

// ExitPinchHand returns a hand with the given span holding a thumb-middle
// pinch at the given gap, with the index finger well clear.
func ExitPinchHand(span, gap float64) HandLandmarks {
	return SyntheticHand(span, 150, gap)
}

func boundsOf(h *HandLandmarks) BoundingBox {
	minX, minY := h.Points[0].X, h.Points[0].Y
	maxX, maxY := minX, minY
	for _, p := range h.Points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return BoundingBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
