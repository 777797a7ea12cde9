package gesture

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestSmoother_ConstantInput(t *testing.T) {
	s := NewSmoother(5)

	// Every output of a constant input equals that constant, including
	// during the partial-window warm-up.
	for i := 0; i < 12; i++ {
		if got := s.Push(42.5); math.Abs(got-42.5) > epsilon {
			t.Fatalf("push %d: mean = %f, want 42.5", i, got)
		}
	}
}

func TestSmoother_SlidingWindow(t *testing.T) {
	s := NewSmoother(3)

	inputs := []float64{10, 20, 30, 40, 50}
	want := []float64{10, 15, 20, 30, 40} // mean of the last 3 once full

	for i, v := range inputs {
		if got := s.Push(v); math.Abs(got-want[i]) > epsilon {
			t.Errorf("push %d (%f): mean = %f, want %f", i, v, got, want[i])
		}
	}
}

func TestSmoother_PartialWindowNoZeroPadding(t *testing.T) {
	s := NewSmoother(5)

	// First push must return exactly the pushed value, not value/window.
	if got := s.Push(100); math.Abs(got-100) > epsilon {
		t.Errorf("first push mean = %f, want 100", got)
	}
	if got := s.Push(50); math.Abs(got-75) > epsilon {
		t.Errorf("second push mean = %f, want 75", got)
	}
}

func TestSmoother_Reset(t *testing.T) {
	s := NewSmoother(5)
	for i := 0; i < 5; i++ {
		s.Push(200)
	}

	s.Reset()

	if got := s.Push(7); math.Abs(got-7) > epsilon {
		t.Errorf("push after reset = %f, want exactly 7", got)
	}
}

func TestSmoother_Ready(t *testing.T) {
	s := NewSmoother(3)
	if s.Ready() {
		t.Error("fresh smoother should not be ready")
	}
	s.Push(1)
	s.Push(2)
	if s.Ready() {
		t.Error("partial window should not be ready")
	}
	s.Push(3)
	if !s.Ready() {
		t.Error("full window should be ready")
	}
	s.Reset()
	if s.Ready() {
		t.Error("reset smoother should not be ready")
	}
}

func TestSmoother_DefaultWindow(t *testing.T) {
	s := NewSmoother(0)
	if s.window != DefaultSmoothingWindow {
		t.Errorf("window = %d, want %d", s.window, DefaultSmoothingWindow)
	}
}
