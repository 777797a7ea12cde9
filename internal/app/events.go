package app

import (
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// EventType identifies a discrete gesture event.
type EventType string

const (
	// EventClick is a thumb-index pinch click.
	EventClick EventType = "click"
	// EventExit is a thumb-middle pinch held for the configured duration.
	EventExit EventType = "exit"
	// EventCalibrated reports that a calibration session completed and
	// its result was installed.
	EventCalibrated EventType = "calibrated"
)

// Event is one discrete occurrence delivered to the consuming application.
// Distance carries the fingertip distance that triggered a click or exit;
// Calibration is set only on EventCalibrated.
type Event struct {
	Type        EventType            `json:"type"`
	Handedness  string               `json:"handedness,omitempty"`
	Distance    float64              `json:"distance,omitempty"`
	At          time.Time            `json:"at"`
	Calibration *gesture.Calibration `json:"calibration,omitempty"`
}
