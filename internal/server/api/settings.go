package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/store"
)

// SettingsApplier pushes new settings into the running pipeline.
type SettingsApplier interface {
	Settings() store.Settings
	ApplySettings(store.Settings)
}

// SettingsHandler handles HTTP requests for the settings resource.
type SettingsHandler struct {
	app   SettingsApplier
	store *store.Store
}

// NewSettingsHandler creates a new SettingsHandler. store may be nil; new
// settings then apply to the running pipeline but do not survive a restart.
func NewSettingsHandler(app SettingsApplier, s *store.Store) *SettingsHandler {
	return &SettingsHandler{app: app, store: s}
}

// ServeHTTP implements the http.Handler interface.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// get handles GET /api/settings.
func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Settings())
}

// update handles PUT /api/settings. The full settings document is replaced;
// fields omitted from the request body keep their current values because
// decoding starts from the current settings.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	settings := h.app.Settings()
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := validateSettings(settings); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.store != nil {
		if err := h.store.Settings().Save(settings); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}
	}

	h.app.ApplySettings(settings)
	writeJSON(w, http.StatusOK, settings)
}

func validateSettings(s store.Settings) error {
	switch {
	case s.ClickDelay <= 0 || s.ClickDelay > 5:
		return errInvalidField("click_delay must be between 0 and 5 seconds")
	case s.ExitHoldTime < 0 || s.ExitHoldTime > 10:
		return errInvalidField("exit_hold_time must be between 0 and 10 seconds")
	case s.TargetFPS < 1 || s.TargetFPS > 60:
		return errInvalidField("target_fps must be between 1 and 60")
	}
	return nil
}

type errInvalidField string

func (e errInvalidField) Error() string { return string(e) }
