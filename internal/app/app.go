// Package app wires the mudra pipeline together: camera frames in, discrete
// pinch-gesture events out, with an interactive calibration mode.
package app

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// idleTimeout is how long without motion before dropping back to idle.
	idleTimeout = 2 * time.Second
	// eventBuffer bounds the outgoing event channel; a stalled consumer
	// loses events rather than stalling the tick loop.
	eventBuffer = 32
)

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	CameraID     int
	MotionThresh float64
	Settings     store.Settings
}

// App owns the frame-synchronous gesture pipeline. All per-tick state (the
// per-hand pinch detectors, the calibration session, the installed
// calibration) is owned by the single pipeline goroutine; the mutex exists
// only so control-surface calls (toggle, start/cancel calibration,
// diagnostics) observe consistent snapshots between ticks.
type App struct {
	config   Config
	settings store.Settings

	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector

	calibration *gesture.Calibration
	pinch       map[string]*gesture.PinchDetector
	holdStart   map[string]time.Time
	exitLatched map[string]bool
	session     *gesture.Session
	status      gesture.Status

	events  chan Event
	perf    *PerfMonitor
	enabled bool
	mu      sync.RWMutex
	stopCh  chan struct{}
}

// New creates an App with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // 1% pixel change
	}

	settings := config.Settings
	if settings == (store.Settings{}) {
		settings = store.DefaultSettings()
	}

	a := &App{
		config:      config,
		settings:    settings,
		camera:      capture.NewCamera(config.CameraID),
		motion:      capture.NewMotionDetector(motionThreshold),
		calibration: gesture.DefaultCalibration(),
		pinch:       make(map[string]*gesture.PinchDetector),
		holdStart:   make(map[string]time.Time),
		exitLatched: make(map[string]bool),
		events:      make(chan Event, eventBuffer),
		perf:        NewPerfMonitor(),
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// LoadCalibration installs the most recently persisted calibration, or the
// fixed defaults when none exists or the store cannot be read. Persistence
// failures are logged and degrade to the uncalibrated defaults; they are
// never fatal.
func (a *App) LoadCalibration() {
	if a.config.Store == nil {
		return
	}

	rec, err := a.config.Store.Calibrations().Latest()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Println("No persisted calibration, using default thresholds")
		} else {
			log.Printf("Failed to load calibration (%v), using default thresholds", err)
		}
		return
	}

	a.installCalibration(rec.Calibration())
	log.Printf("Loaded calibration: span %.1fpx, click %dpx, exit %dpx",
		rec.HandSpan, rec.ClickThreshold, rec.ExitThreshold)
}

// SetEnabled enables or disables gesture detection.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand landmark source to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand landmark source.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Events returns the channel of emitted gesture events.
func (a *App) Events() <-chan Event {
	return a.events
}

// Perf returns the frame-time monitor.
func (a *App) Perf() *PerfMonitor {
	return a.perf
}

// Settings returns the settings the pipeline was built with.
func (a *App) Settings() store.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

// ApplySettings installs new user settings. Existing per-hand detectors are
// dropped so the next tick rebuilds them with the new delays; this is safe
// because it happens under the same lock the tick loop holds.
func (a *App) ApplySettings(settings store.Settings) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settings = settings
	a.pinch = make(map[string]*gesture.PinchDetector)
	a.holdStart = make(map[string]time.Time)
	a.exitLatched = make(map[string]bool)
}

// Calibration returns a copy of the currently installed calibration.
func (a *App) Calibration() gesture.Calibration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return *a.calibration
}

// StartCalibration begins an interactive calibration session. Only one
// session may run at a time.
func (a *App) StartCalibration() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != nil && !a.session.Done() {
		return errors.New("calibration already in progress")
	}

	a.session = gesture.NewSession(gesture.DefaultSessionConfig(), time.Now())
	a.status = gesture.Status{State: gesture.StateCountdown, Required: gesture.DefaultRequiredSamples}
	log.Println("Calibration session started")
	return nil
}

// CancelCalibration requests a cooperative abort of the running session.
// It has no effect when no session is running, and no effect ever on the
// installed calibration.
func (a *App) CancelCalibration() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != nil {
		a.session.Cancel()
	}
}

// SessionStatus returns the latest calibration session snapshot and whether
// a session is currently running.
func (a *App) SessionStatus() (gesture.Status, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status, a.session != nil
}

// HandDiagnostics is the per-hand live readout for UI feedback.
type HandDiagnostics struct {
	ClickDistance      float64 `json:"click_distance"`
	ExitDistance       float64 `json:"exit_distance"`
	TimeUntilNextClick float64 `json:"time_until_next_click"` // seconds
}

// Diagnostics is the continuously queryable pipeline state.
type Diagnostics struct {
	Calibrated bool                       `json:"calibrated"`
	Hands      map[string]HandDiagnostics `json:"hands"`
	FPS        float64                    `json:"fps"`
}

// Diagnostics returns the live per-hand distances and debounce state.
func (a *App) Diagnostics() Diagnostics {
	a.mu.RLock()
	defer a.mu.RUnlock()

	now := time.Now()
	d := Diagnostics{
		Calibrated: a.calibration.Calibrated,
		Hands:      make(map[string]HandDiagnostics, len(a.pinch)),
		FPS:        a.perf.FPS(),
	}
	for handedness, det := range a.pinch {
		d.Hands[handedness] = HandDiagnostics{
			ClickDistance:      det.CurrentClickDistance(),
			ExitDistance:       det.CurrentExitDistance(),
			TimeUntilNextClick: det.TimeUntilNextClick(now).Seconds(),
		}
	}
	return d
}

// Start begins the detection pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	a.camera.SetFPS(IdleFPS)

	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the detection pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Detection pipeline stopped")
}

// installCalibration swaps the calibration reference and pushes it into
// every live pinch detector. Callers must hold a.mu or be the tick loop.
func (a *App) installCalibration(cal *gesture.Calibration) {
	a.calibration = cal
	for _, det := range a.pinch {
		det.SetCalibration(cal)
	}
}

// emit delivers an event without ever blocking the tick loop.
func (a *App) emit(ev Event) {
	select {
	case a.events <- ev:
	default:
		log.Printf("Event buffer full, dropping %s event", ev.Type)
	}
}
