package gesture

import "errors"

// Calibration failure conditions. Both abort only the in-progress session;
// a previously installed calibration is never touched by a failed session.
var (
	// ErrInsufficientSamples is returned when Calibrate is invoked with
	// fewer valid samples than the session requires.
	ErrInsufficientSamples = errors.New("not enough valid calibration samples")

	// ErrImplausibleHandSize is returned when a span measurement, or the
	// mean of the collected samples, falls outside the plausible range of
	// hand sizes in pixel space.
	ErrImplausibleHandSize = errors.New("hand span outside plausible range")
)
