package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// fakeCalibrator is a minimal Calibrator for handler tests.
type fakeCalibrator struct {
	cal       gesture.Calibration
	status    gesture.Status
	running   bool
	startErr  error
	started   int
	cancelled int
}

func (f *fakeCalibrator) Calibration() gesture.Calibration { return f.cal }

func (f *fakeCalibrator) StartCalibration() error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started++
	f.running = true
	f.status = gesture.Status{State: gesture.StateCountdown, Required: gesture.DefaultRequiredSamples}
	return nil
}

func (f *fakeCalibrator) CancelCalibration() { f.cancelled++ }

func (f *fakeCalibrator) SessionStatus() (gesture.Status, bool) { return f.status, f.running }

func TestCalibrationHandler_Get(t *testing.T) {
	t.Run("uncalibrated defaults with no session", func(t *testing.T) {
		fake := &fakeCalibrator{cal: *gesture.DefaultCalibration()}
		h := NewCalibrationHandler(fake, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/calibration", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var resp calibrationResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Calibrated {
			t.Error("expected calibrated=false")
		}
		if resp.ClickThreshold != gesture.DefaultClickThreshold {
			t.Errorf("click_threshold = %d, want %d", resp.ClickThreshold, gesture.DefaultClickThreshold)
		}
		if resp.Session != nil {
			t.Errorf("expected no session, got %+v", resp.Session)
		}
	})

	t.Run("includes running session", func(t *testing.T) {
		fake := &fakeCalibrator{
			cal:     *gesture.DefaultCalibration(),
			running: true,
			status: gesture.Status{
				State:              gesture.StateCollecting,
				Samples:            12,
				Required:           30,
				CountdownRemaining: 0,
				Hint:               "",
			},
		}
		h := NewCalibrationHandler(fake, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/calibration", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		var resp calibrationResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Session == nil {
			t.Fatal("expected session in response")
		}
		if resp.Session.State != "collecting" || resp.Session.Samples != 12 {
			t.Errorf("session = %+v, want collecting with 12 samples", resp.Session)
		}
	})
}

func TestCalibrationHandler_Start(t *testing.T) {
	t.Run("starts a session", func(t *testing.T) {
		fake := &fakeCalibrator{cal: *gesture.DefaultCalibration()}
		h := NewCalibrationHandler(fake, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/calibration/start", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusAccepted {
			t.Errorf("expected status %d, got %d", http.StatusAccepted, rec.Code)
		}
		if fake.started != 1 {
			t.Errorf("StartCalibration called %d times, want 1", fake.started)
		}

		var resp sessionResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.State != "countdown" {
			t.Errorf("state = %q, want countdown", resp.State)
		}
	})

	t.Run("conflicts when already running", func(t *testing.T) {
		fake := &fakeCalibrator{startErr: errors.New("calibration already in progress")}
		h := NewCalibrationHandler(fake, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/calibration/start", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Errorf("expected status %d, got %d", http.StatusConflict, rec.Code)
		}
	})

	t.Run("rejects GET", func(t *testing.T) {
		h := NewCalibrationHandler(&fakeCalibrator{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/calibration/start", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})
}

func TestCalibrationHandler_Cancel(t *testing.T) {
	fake := &fakeCalibrator{}
	h := NewCalibrationHandler(fake, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/calibration/cancel", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if fake.cancelled != 1 {
		t.Errorf("CancelCalibration called %d times, want 1", fake.cancelled)
	}
}

func TestCalibrationHandler_History(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	h := NewCalibrationHandler(&fakeCalibrator{}, s)

	t.Run("empty history", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/calibration/history", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var resp historyResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Calibrations) != 0 {
			t.Errorf("expected empty history, got %d entries", len(resp.Calibrations))
		}
	})

	t.Run("returns persisted calibrations newest first", func(t *testing.T) {
		for _, span := range []float64{200, 300} {
			cal := &gesture.Calibration{
				HandSpan:       span,
				ClickThreshold: int(span * 0.12),
				ExitThreshold:  int(span * 0.10),
				Calibrated:     true,
			}
			if _, err := s.Calibrations().Save(cal); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			time.Sleep(5 * time.Millisecond)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/calibration/history", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		var resp historyResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Calibrations) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(resp.Calibrations))
		}
		if resp.Calibrations[0].HandSpan != 300 {
			t.Errorf("first entry span = %f, want 300 (newest first)", resp.Calibrations[0].HandSpan)
		}
	})
}

func TestCalibrationHandler_UnknownPath(t *testing.T) {
	h := NewCalibrationHandler(&fakeCalibrator{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/calibration/bogus", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
