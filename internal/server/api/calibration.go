// Package api provides HTTP API handlers for the mudra gesture detection system.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// Calibrator is the calibration control surface of the running pipeline.
type Calibrator interface {
	Calibration() gesture.Calibration
	StartCalibration() error
	CancelCalibration()
	SessionStatus() (gesture.Status, bool)
}

// CalibrationHandler handles HTTP requests for the calibration resource.
type CalibrationHandler struct {
	app   Calibrator
	store *store.Store
}

// NewCalibrationHandler creates a new CalibrationHandler. store may be nil
// when persistence is unavailable; the history endpoint then returns an
// empty list.
func NewCalibrationHandler(app Calibrator, s *store.Store) *CalibrationHandler {
	return &CalibrationHandler{app: app, store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *CalibrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/calibration, /api/calibration/start,
	// /api/calibration/cancel, /api/calibration/history
	path := strings.TrimPrefix(r.URL.Path, "/api/calibration")
	path = strings.TrimPrefix(path, "/")

	switch path {
	case "":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.get(w, r)
	case "start":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.start(w, r)
	case "cancel":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.cancel(w, r)
	case "history":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.history(w, r)
	default:
		http.NotFound(w, r)
	}
}

// Request and response types

type sessionResponse struct {
	State              string  `json:"state"`
	Samples            int     `json:"samples"`
	Required           int     `json:"required"`
	CountdownRemaining float64 `json:"countdown_remaining"`
	Hint               string  `json:"hint,omitempty"`
}

type calibrationResponse struct {
	Calibrated     bool             `json:"calibrated"`
	HandSpan       float64          `json:"hand_span"`
	ClickThreshold int              `json:"click_threshold"`
	ExitThreshold  int              `json:"exit_threshold"`
	Session        *sessionResponse `json:"session,omitempty"`
}

type historyEntry struct {
	ID             string  `json:"id"`
	HandSpan       float64 `json:"hand_span"`
	ClickThreshold int     `json:"click_threshold"`
	ExitThreshold  int     `json:"exit_threshold"`
	CreatedAt      string  `json:"created_at"`
}

type historyResponse struct {
	Calibrations []historyEntry `json:"calibrations"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func sessionToResponse(st gesture.Status) *sessionResponse {
	return &sessionResponse{
		State:              string(st.State),
		Samples:            st.Samples,
		Required:           st.Required,
		CountdownRemaining: st.CountdownRemaining.Seconds(),
		Hint:               st.Hint,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// get handles GET /api/calibration and returns the installed calibration
// together with the running session, if any.
func (h *CalibrationHandler) get(w http.ResponseWriter, r *http.Request) {
	cal := h.app.Calibration()
	response := calibrationResponse{
		Calibrated:     cal.Calibrated,
		HandSpan:       cal.HandSpan,
		ClickThreshold: cal.ClickThreshold,
		ExitThreshold:  cal.ExitThreshold,
	}

	if st, running := h.app.SessionStatus(); running {
		response.Session = sessionToResponse(st)
	}

	writeJSON(w, http.StatusOK, response)
}

// start handles POST /api/calibration/start and begins a new session.
func (h *CalibrationHandler) start(w http.ResponseWriter, r *http.Request) {
	if err := h.app.StartCalibration(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	st, _ := h.app.SessionStatus()
	writeJSON(w, http.StatusAccepted, sessionToResponse(st))
}

// cancel handles POST /api/calibration/cancel. Cancelling when no session
// is running is a no-op, not an error.
func (h *CalibrationHandler) cancel(w http.ResponseWriter, r *http.Request) {
	h.app.CancelCalibration()
	w.WriteHeader(http.StatusNoContent)
}

// history handles GET /api/calibration/history and returns persisted
// calibrations, newest first.
func (h *CalibrationHandler) history(w http.ResponseWriter, r *http.Request) {
	response := historyResponse{Calibrations: []historyEntry{}}

	if h.store == nil {
		writeJSON(w, http.StatusOK, response)
		return
	}

	records, err := h.store.Calibrations().List()
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Failed to list calibrations")
		return
	}

	for _, rec := range records {
		response.Calibrations = append(response.Calibrations, historyEntry{
			ID:             rec.ID,
			HandSpan:       rec.HandSpan,
			ClickThreshold: rec.ClickThreshold,
			ExitThreshold:  rec.ExitThreshold,
			CreatedAt:      rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	writeJSON(w, http.StatusOK, response)
}
