package detector

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func planar(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func TestFrameFromPoints(t *testing.T) {
	t.Run("accepts exactly 21 points", func(t *testing.T) {
		points := make([]Point3D, NumLandmarks)
		for i := range points {
			points[i] = Point3D{X: float64(i), Y: float64(i) * 2}
		}

		h, err := FrameFromPoints(points, HandednessLeft)
		if err != nil {
			t.Fatalf("FrameFromPoints() error = %v", err)
		}
		if h.Handedness != HandednessLeft {
			t.Errorf("handedness = %q, want %q", h.Handedness, HandednessLeft)
		}
		if h.Points[PinkyTip].X != 20 {
			t.Errorf("point order not preserved: PinkyTip.X = %f, want 20", h.Points[PinkyTip].X)
		}
	})

	t.Run("rejects short frames", func(t *testing.T) {
		_, err := FrameFromPoints(make([]Point3D, 20), HandednessRight)
		if !errors.Is(err, ErrMalformedFrame) {
			t.Errorf("error = %v, want ErrMalformedFrame", err)
		}
	})

	t.Run("rejects long frames", func(t *testing.T) {
		_, err := FrameFromPoints(make([]Point3D, 22), HandednessRight)
		if !errors.Is(err, ErrMalformedFrame) {
			t.Errorf("error = %v, want ErrMalformedFrame", err)
		}
	})

	t.Run("rejects nil", func(t *testing.T) {
		_, err := FrameFromPoints(nil, HandednessRight)
		if !errors.Is(err, ErrMalformedFrame) {
			t.Errorf("error = %v, want ErrMalformedFrame", err)
		}
	})
}

func TestSyntheticHand_Measurements(t *testing.T) {
	hand := SyntheticHand(230, 42, 95)

	span := planar(hand.Points[ThumbMCP], hand.Points[PinkyMCP])
	if math.Abs(span-230) > epsilon {
		t.Errorf("span = %f, want 230", span)
	}

	clickGap := planar(hand.Points[ThumbTip], hand.Points[IndexTip])
	if math.Abs(clickGap-42) > epsilon {
		t.Errorf("click gap = %f, want 42", clickGap)
	}

	exitGap := planar(hand.Points[ThumbTip], hand.Points[MiddleTip])
	if math.Abs(exitGap-95) > epsilon {
		t.Errorf("exit gap = %f, want 95", exitGap)
	}

	bounds := hand.Bounds
	if bounds.Width <= 0 || bounds.Height <= 0 {
		t.Errorf("bounds = %+v, want positive extent", bounds)
	}
	for i, p := range hand.Points {
		if p.X < bounds.X || p.X > bounds.X+bounds.Width ||
			p.Y < bounds.Y || p.Y > bounds.Y+bounds.Height {
			t.Errorf("point %d (%f, %f) outside bounds %+v", i, p.X, p.Y, bounds)
		}
	}
}

func TestMockDetector(t *testing.T) {
	mock := NewMockDetector()

	hands, err := mock.Detect(nil)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(hands) != 0 {
		t.Errorf("expected no hands by default, got %d", len(hands))
	}

	mock.SetHands([]HandLandmarks{OpenHand(220)})
	hands, err = mock.Detect(nil)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(hands) != 1 {
		t.Fatalf("expected 1 hand, got %d", len(hands))
	}

	wantErr := errors.New("camera unplugged")
	mock.SetError(wantErr)
	if _, err := mock.Detect(nil); !errors.Is(err, wantErr) {
		t.Errorf("Detect() error = %v, want %v", err, wantErr)
	}
}

func TestServiceHand_Conversion(t *testing.T) {
	points := make([]Point3D, NumLandmarks)
	points[ThumbTip] = Point3D{X: 120, Y: 80, Z: 0.01}

	sh := serviceHand{
		Points:     points,
		Handedness: HandednessRight,
		Score:      0.87,
		Bounds:     BoundingBox{X: 10, Y: 20, Width: 200, Height: 240},
	}

	lm, err := sh.toHandLandmarks()
	if err != nil {
		t.Fatalf("toHandLandmarks() error = %v", err)
	}
	if lm.Score != 0.87 {
		t.Errorf("score = %f, want 0.87", lm.Score)
	}
	if lm.Bounds.Width != 200 {
		t.Errorf("bounds width = %f, want 200", lm.Bounds.Width)
	}
	if lm.Points[ThumbTip].X != 120 {
		t.Errorf("thumb tip X = %f, want 120", lm.Points[ThumbTip].X)
	}

	sh.Points = points[:10]
	if _, err := sh.toHandLandmarks(); !errors.Is(err, ErrMalformedFrame) {
		t.Errorf("truncated hand error = %v, want ErrMalformedFrame", err)
	}
}
