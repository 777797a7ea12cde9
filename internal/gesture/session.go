package gesture

import (
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

// SessionState identifies where a calibration session is in its flow.
type SessionState string

const (
	// StateCountdown is the warm-up phase: the user positions their hand.
	StateCountdown SessionState = "countdown"
	// StateCollecting gathers hand-span samples, one per tick.
	StateCollecting SessionState = "collecting"
	// StateComplete means thresholds were derived successfully.
	StateComplete SessionState = "complete"
	// StateCancelled means the user aborted the session.
	StateCancelled SessionState = "cancelled"
	// StateTimedOut means the session ran past its wall-clock limit.
	StateTimedOut SessionState = "timed_out"
	// StateError means threshold derivation failed.
	StateError SessionState = "error"
)

// Terminal reports whether a session in this state has resolved.
func (s SessionState) Terminal() bool {
	switch s {
	case StateComplete, StateCancelled, StateTimedOut, StateError:
		return true
	}
	return false
}

// Session flow defaults.
const (
	DefaultRequiredSamples = 30
	DefaultCountdown       = 3 * time.Second
	DefaultSessionTimeout  = 60 * time.Second
)

// User-facing hints reported through Status.
const (
	hintHoldSteady   = "hold steady"
	hintHandLost     = "hand lost, keep it visible"
	hintPositionHand = "position your hand in view"
)

// SessionConfig holds tuning for a calibration session.
type SessionConfig struct {
	RequiredSamples int
	Countdown       time.Duration
	Timeout         time.Duration
}

// DefaultSessionConfig returns the production session flow parameters.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		RequiredSamples: DefaultRequiredSamples,
		Countdown:       DefaultCountdown,
		Timeout:         DefaultSessionTimeout,
	}
}

// Status is the per-tick snapshot a session reports for UI feedback.
type Status struct {
	State              SessionState  `json:"state"`
	Samples            int           `json:"samples"`
	Required           int           `json:"required"`
	CountdownRemaining time.Duration `json:"countdown_remaining"`
	Hint               string        `json:"hint,omitempty"`
}

// Session drives the interactive calibration flow as a tick-synchronous
// state machine: Countdown, then Collecting, then Complete, with Cancelled,
// TimedOut, and Error as side exits. It builds a replacement Calibration
// without ever touching the one currently installed; the caller installs
// the result only after an explicit successful outcome.
//
// A Session is owned by exactly one control-flow context. Cancellation is
// cooperative: Cancel only raises a flag, observed on the next Tick.
type Session struct {
	cfg            SessionConfig
	state          SessionState
	samples        SampleSet
	start          time.Time
	countdownStart time.Time
	cancelled      bool
	result         *Calibration
	err            error
}

// NewSession starts a calibration session at the given time.
func NewSession(cfg SessionConfig, now time.Time) *Session {
	if cfg.RequiredSamples <= 0 {
		cfg.RequiredSamples = DefaultRequiredSamples
	}
	if cfg.Countdown <= 0 {
		cfg.Countdown = DefaultCountdown
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSessionTimeout
	}
	return &Session{
		cfg:            cfg,
		state:          StateCountdown,
		start:          now,
		countdownStart: now,
	}
}

// Cancel requests a user-initiated abort. It takes effect on the next Tick
// and leaves zero observable effect on any installed calibration.
func (s *Session) Cancel() {
	s.cancelled = true
}

// Tick advances the session by one frame. hand is nil when no hand is
// visible this tick. Once the session reaches a terminal state, further
// ticks return the same status unchanged.
func (s *Session) Tick(hand *detector.HandLandmarks, now time.Time) Status {
	if s.state.Terminal() {
		return s.status(now)
	}

	if s.cancelled {
		s.state = StateCancelled
		return s.status(now)
	}
	if now.Sub(s.start) > s.cfg.Timeout {
		s.state = StateTimedOut
		return s.status(now)
	}

	switch s.state {
	case StateCountdown:
		s.tickCountdown(hand, now)
	case StateCollecting:
		return s.tickCollecting(hand, now)
	}
	return s.status(now)
}

func (s *Session) tickCountdown(hand *detector.HandLandmarks, now time.Time) {
	if now.Sub(s.countdownStart) < s.cfg.Countdown {
		return
	}
	if hand == nil {
		// Countdown elapsed with no hand visible: restart it.
		s.countdownStart = now
		return
	}
	s.state = StateCollecting
}

func (s *Session) tickCollecting(hand *detector.HandLandmarks, now time.Time) Status {
	if hand == nil {
		st := s.status(now)
		st.Hint = hintHandLost
		return st
	}

	if _, err := s.samples.Add(hand); err != nil {
		// Implausible sample: surface it, do not count it.
		st := s.status(now)
		st.Hint = hintHoldSteady
		return st
	}

	if s.samples.Count() >= s.cfg.RequiredSamples {
		s.result, s.err = s.samples.Calibrate(s.cfg.RequiredSamples)
		if s.err != nil {
			s.state = StateError
		} else {
			s.state = StateComplete
		}
	}
	return s.status(now)
}

// Result returns the new calibration after a successful session, or the
// failure that ended it. Before a terminal state, both are nil.
func (s *Session) Result() (*Calibration, error) {
	return s.result, s.err
}

// Done reports whether the session has reached a terminal state.
func (s *Session) Done() bool {
	return s.state.Terminal()
}

// State returns the current session state.
func (s *Session) State() SessionState {
	return s.state
}

func (s *Session) status(now time.Time) Status {
	st := Status{
		State:    s.state,
		Samples:  s.samples.Count(),
		Required: s.cfg.RequiredSamples,
	}
	if s.state == StateCountdown {
		remaining := s.cfg.Countdown - now.Sub(s.countdownStart)
		if remaining < 0 {
			remaining = 0
		}
		st.CountdownRemaining = remaining
		st.Hint = hintPositionHand
	}
	return st
}
