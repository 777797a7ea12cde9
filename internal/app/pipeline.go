package app

import (
	"log"
	"time"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// runPipeline is the main detection loop. One tick reads one frame, and all
// gesture computation for that frame runs to completion before the next
// tick. Frame rate is motion-gated: idle at IdleFPS, the configured target
// rate while the scene is moving or a calibration session is running.
func (a *App) runPipeline(stopCh chan struct{}) {
	activeMode := false
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			tickStart := time.Now()

			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			motionDetected, _ := a.motion.Detect(frame)
			_, calibrating := a.SessionStatus()

			if motionDetected || calibrating {
				lastMotionTime = time.Now()

				if !activeMode {
					activeMode = true
					// Re-read on every switch so a settings change to the
					// target rate takes effect without a restart.
					fps, interval := a.activeRate()
					a.camera.SetFPS(fps)
					frameInterval = interval
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode && time.Since(lastMotionTime) > idleTimeout {
				activeMode = false
				a.camera.SetFPS(IdleFPS)
				frameInterval = time.Second / time.Duration(IdleFPS)
				ticker.Reset(frameInterval)
				log.Println("Switched to idle mode")
			}

			if !activeMode {
				frame.Close()
				continue
			}

			hands, err := a.Detector().Detect(frame)
			frame.Close()

			if err != nil {
				log.Printf("Error detecting hands: %v", err)
				continue
			}

			a.processTick(hands, time.Now())
			a.perf.Record(time.Since(tickStart))
		}
	}
}

// activeRate returns the current active-mode frame rate and tick interval,
// read fresh from settings.
func (a *App) activeRate() (int, time.Duration) {
	fps := a.Settings().TargetFPS
	return fps, time.Second / time.Duration(fps)
}

// ProcessFrame runs one tick of gesture computation against already
// detected landmarks. The camera pipeline calls this internally; it is
// exported for headless use where frames come from elsewhere.
func (a *App) ProcessFrame(hands []detector.HandLandmarks, now time.Time) {
	a.processTick(hands, now)
}

// processTick runs all gesture computation for one frame: either advancing
// the calibration session or classifying pinches per hand. It owns the only
// mutations of per-hand detector state; the lock it holds is what makes the
// calibration swap on session completion a tick-boundary operation.
func (a *App) processTick(hands []detector.HandLandmarks, now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != nil {
		a.tickSession(hands, now)
		return
	}

	seen := make(map[string]bool, len(hands))
	for i := range hands {
		hand := &hands[i]
		seen[hand.Handedness] = true
		a.processHand(hand, now)
	}

	// Hands that vanished this tick: clear their smoothing buffers and
	// exit-hold timers so a reappearance starts fresh.
	for handedness, det := range a.pinch {
		if !seen[handedness] {
			det.ResetSmoothing()
			delete(a.holdStart, handedness)
			a.exitLatched[handedness] = false
		}
	}
}

// tickSession advances the calibration session with the primary (first)
// detected hand. On completion the result is installed and persisted; on
// any other terminal outcome the installed calibration is untouched.
func (a *App) tickSession(hands []detector.HandLandmarks, now time.Time) {
	var hand *detector.HandLandmarks
	if len(hands) > 0 {
		hand = &hands[0]
	}

	a.status = a.session.Tick(hand, now)
	if !a.session.Done() {
		return
	}

	state := a.session.State()
	switch state {
	case gesture.StateComplete:
		cal, _ := a.session.Result()
		a.installCalibration(cal)
		a.persistCalibration(cal)
		log.Printf("Calibration complete: span %.1fpx, click %dpx, exit %dpx",
			cal.HandSpan, cal.ClickThreshold, cal.ExitThreshold)
		a.emit(Event{Type: EventCalibrated, At: now, Calibration: cal})
	case gesture.StateError:
		_, err := a.session.Result()
		log.Printf("Calibration failed: %v", err)
	default:
		log.Printf("Calibration session ended: %s", state)
	}

	a.session = nil
}

// persistCalibration writes the new calibration to the store. A write
// failure loses only durability, never the in-memory installation.
func (a *App) persistCalibration(cal *gesture.Calibration) {
	if a.config.Store == nil {
		return
	}
	if _, err := a.config.Store.Calibrations().Save(cal); err != nil {
		log.Printf("Failed to persist calibration: %v", err)
	}
}

// processHand classifies one hand's pinches for this tick.
func (a *App) processHand(hand *detector.HandLandmarks, now time.Time) {
	det := a.pinch[hand.Handedness]
	if det == nil {
		det = gesture.NewPinchDetector(gesture.PinchConfig{
			ClickDelay:      time.Duration(a.settings.ClickDelay * float64(time.Second)),
			Smoothing:       a.settings.Smoothing,
			SmoothingWindow: gesture.DefaultSmoothingWindow,
		}, a.calibration)
		a.pinch[hand.Handedness] = det
	}

	if clicked, dist := det.DetectClick(hand, now); clicked {
		a.emit(Event{Type: EventClick, Handedness: hand.Handedness, Distance: dist, At: now})
	}

	holding, dist := det.DetectExit(hand)
	a.trackExitHold(hand.Handedness, holding, dist, now)
}

// trackExitHold implements hold-to-confirm on top of the level-triggered
// exit condition: the pinch must hold continuously for ExitHoldTime, and
// the timer re-arms the instant the condition drops for even one tick.
// After firing, the pinch must be released before it can fire again.
func (a *App) trackExitHold(handedness string, holding bool, dist float64, now time.Time) {
	if !holding {
		delete(a.holdStart, handedness)
		a.exitLatched[handedness] = false
		return
	}

	if a.exitLatched[handedness] {
		return
	}

	start, ok := a.holdStart[handedness]
	if !ok {
		a.holdStart[handedness] = now
		return
	}

	holdFor := time.Duration(a.settings.ExitHoldTime * float64(time.Second))
	if now.Sub(start) >= holdFor {
		a.emit(Event{Type: EventExit, Handedness: handedness, Distance: dist, At: now})
		a.exitLatched[handedness] = true
		delete(a.holdStart, handedness)
	}
}
