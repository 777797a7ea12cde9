package gesture

import (
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

// DefaultClickDelay is the minimum interval between click firings.
const DefaultClickDelay = 500 * time.Millisecond

// PinchConfig holds construction options for a PinchDetector.
type PinchConfig struct {
	// ClickDelay is the debounce interval between clicks (default 500ms).
	ClickDelay time.Duration

	// Smoothing enables moving-average smoothing of raw distances.
	Smoothing bool

	// SmoothingWindow is the filter window size (default 5).
	SmoothingWindow int
}

// DefaultPinchConfig returns the detector options used in production.
func DefaultPinchConfig() PinchConfig {
	return PinchConfig{
		ClickDelay:      DefaultClickDelay,
		Smoothing:       true,
		SmoothingWindow: DefaultSmoothingWindow,
	}
}

// PinchDetector classifies one hand's landmark stream into click and exit
// pinch events. One instance tracks one active hand across ticks; it is
// owned by a single control-flow context and never shared between
// goroutines.
//
// Click detection is level-triggered and time-gated: a pinch held
// continuously under threshold re-fires every ClickDelay for as long as the
// condition holds. This is deliberate (it gives key-repeat semantics to a
// held pinch); do not change it to release-to-rearm edge triggering.
type PinchDetector struct {
	clickDelay    time.Duration
	lastClickTime time.Time

	smoothing     bool
	clickSmoother *Smoother
	exitSmoother  *Smoother

	// cal is a replaceable reference, not owned data. A completed
	// calibration session swaps it via SetCalibration at a tick boundary.
	cal *Calibration

	lastClickDist float64
	lastExitDist  float64
}

// NewPinchDetector creates a detector using the given calibration.
// A nil calibration means the fixed default thresholds.
func NewPinchDetector(cfg PinchConfig, cal *Calibration) *PinchDetector {
	if cfg.ClickDelay <= 0 {
		cfg.ClickDelay = DefaultClickDelay
	}
	if cal == nil {
		cal = DefaultCalibration()
	}

	d := &PinchDetector{
		clickDelay: cfg.ClickDelay,
		smoothing:  cfg.Smoothing,
		cal:        cal,
	}
	if cfg.Smoothing {
		d.clickSmoother = NewSmoother(cfg.SmoothingWindow)
		d.exitSmoother = NewSmoother(cfg.SmoothingWindow)
	}
	return d
}

// DetectClick classifies the thumb-index pinch for one tick. It returns
// whether a click fired and the (possibly smoothed) fingertip distance.
// A click fires when the distance is under the calibrated threshold and at
// least ClickDelay has passed since the previous click.
func (d *PinchDetector) DetectClick(hand *detector.HandLandmarks, now time.Time) (bool, float64) {
	dist := Distance(hand.Points[detector.ThumbTip], hand.Points[detector.IndexTip])
	if d.smoothing {
		dist = d.clickSmoother.Push(dist)
	}
	d.lastClickDist = dist

	if dist < float64(d.cal.ClickThreshold) && now.Sub(d.lastClickTime) > d.clickDelay {
		d.lastClickTime = now
		return true, dist
	}
	return false, dist
}

// DetectExit classifies the thumb-middle pinch for one tick. No debounce is
// applied: any hold-to-confirm behavior belongs to the caller, which must
// require the condition to hold continuously and re-arm the moment it drops
// for even one tick.
func (d *PinchDetector) DetectExit(hand *detector.HandLandmarks) (bool, float64) {
	dist := Distance(hand.Points[detector.ThumbTip], hand.Points[detector.MiddleTip])
	if d.smoothing {
		dist = d.exitSmoother.Push(dist)
	}
	d.lastExitDist = dist

	return dist < float64(d.cal.ExitThreshold), dist
}

// ResetSmoothing clears both distance buffers. Call it whenever the tracked
// hand disappears so a reappearing hand does not average against stale
// distances.
func (d *PinchDetector) ResetSmoothing() {
	if d.clickSmoother != nil {
		d.clickSmoother.Reset()
	}
	if d.exitSmoother != nil {
		d.exitSmoother.Reset()
	}
}

// TimeUntilNextClick reports how long until the debounce gate reopens.
// It is a pure read for UI feedback and does not gate anything itself.
func (d *PinchDetector) TimeUntilNextClick(now time.Time) time.Duration {
	remaining := d.clickDelay - now.Sub(d.lastClickTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SetCalibration swaps the calibration reference. This is the only mutation
// allowed from outside the tick loop; the caller must perform it between
// ticks, never concurrently with a Detect call.
func (d *PinchDetector) SetCalibration(cal *Calibration) {
	if cal == nil {
		cal = DefaultCalibration()
	}
	d.cal = cal
}

// Calibration returns the currently installed calibration reference.
func (d *PinchDetector) Calibration() *Calibration {
	return d.cal
}

// IsCalibrated reports whether adaptive thresholds are installed.
func (d *PinchDetector) IsCalibrated() bool {
	return d.cal.Calibrated
}

// CurrentClickDistance returns the click distance from the latest tick.
func (d *PinchDetector) CurrentClickDistance() float64 {
	return d.lastClickDist
}

// CurrentExitDistance returns the exit distance from the latest tick.
func (d *PinchDetector) CurrentExitDistance() float64 {
	return d.lastExitDist
}
