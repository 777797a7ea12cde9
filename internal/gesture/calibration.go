package gesture

import (
	"fmt"
	"math"

	"github.com/ayusman/mudra/internal/detector"
)

// Default thresholds used until a calibration session has run.
const (
	DefaultClickThreshold = 50
	DefaultExitThreshold  = 40
)

// Plausible hand-span range in pixel space. Samples and derived spans
// outside it indicate a false hand detection, not a real hand.
const (
	MinHandSpan = 50
	MaxHandSpan = 500
)

// Threshold derivation constants. The ratios are fractions of the measured
// hand span; the clamp bounds keep thresholds usable at extreme camera
// distances. These are fixed product constants, not caller-configurable.
const (
	clickRatio    = 0.12
	exitRatio     = 0.10
	clickMin      = 30
	clickMax      = 70
	exitThreshMin = 25
	exitThreshMax = 60
)

// Calibration holds per-user adaptive thresholds derived from hand span.
// Thresholds are derived by SampleSet.Calibrate, never set directly.
// The zero value is not useful; use DefaultCalibration.
type Calibration struct {
	HandSpan       float64 `json:"hand_span"`
	ClickThreshold int     `json:"click_threshold"`
	ExitThreshold  int     `json:"exit_threshold"`
	Calibrated     bool    `json:"calibrated"`
}

// DefaultCalibration returns the fixed fallback thresholds used when no
// calibration has been performed or persisted calibration cannot be read.
func DefaultCalibration() *Calibration {
	return &Calibration{
		ClickThreshold: DefaultClickThreshold,
		ExitThreshold:  DefaultExitThreshold,
	}
}

// Distance is the planar Euclidean distance between two landmarks. The z
// component is ignored: depth from a monocular model is too noisy to gate
// pixel-space thresholds on.
func Distance(a, b detector.Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// SampleSet accumulates per-frame hand-span measurements for one
// calibration session. It is ephemeral: discarded when the session
// resolves, never persisted.
type SampleSet struct {
	spans []float64
}

// Add measures the hand span of one frame (thumb MCP to pinky MCP) and
// appends it if plausible. Implausible spans are rejected with
// ErrImplausibleHandSize and do not advance the collected count, so a
// momentary false detection cannot silently degrade the calibration.
// The measured span is returned either way.
func (s *SampleSet) Add(hand *detector.HandLandmarks) (float64, error) {
	span := Distance(hand.Points[detector.ThumbMCP], hand.Points[detector.PinkyMCP])
	if span < MinHandSpan || span > MaxHandSpan {
		return span, fmt.Errorf("span %.1fpx: %w", span, ErrImplausibleHandSize)
	}
	s.spans = append(s.spans, span)
	return span, nil
}

// Count returns the number of valid samples collected so far.
func (s *SampleSet) Count() int {
	return len(s.spans)
}

// Calibrate derives adaptive thresholds from the collected samples.
// It fails with ErrInsufficientSamples when fewer than required valid
// samples were collected, and with ErrImplausibleHandSize when the mean
// span falls outside [MinHandSpan, MaxHandSpan]. Both bounds are inclusive.
// On success it returns a fresh Calibration; it never mutates one that is
// already installed.
func (s *SampleSet) Calibrate(required int) (*Calibration, error) {
	if len(s.spans) < required {
		return nil, fmt.Errorf("%d/%d collected: %w", len(s.spans), required, ErrInsufficientSamples)
	}

	var sum float64
	for _, span := range s.spans {
		sum += span
	}
	mean := sum / float64(len(s.spans))

	if mean < MinHandSpan || mean > MaxHandSpan {
		return nil, fmt.Errorf("mean span %.1fpx: %w", mean, ErrImplausibleHandSize)
	}

	return &Calibration{
		HandSpan:       mean,
		ClickThreshold: clampInt(int(math.Round(mean*clickRatio)), clickMin, clickMax),
		ExitThreshold:  clampInt(int(math.Round(mean*exitRatio)), exitThreshMin, exitThreshMax),
		Calibrated:     true,
	}, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
