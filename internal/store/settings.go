package store

import (
	"database/sql"
	"errors"
	"strconv"
)

// Settings are the persisted user preferences. They travel as an explicit
// value through the application rather than as process-wide state.
type Settings struct {
	Theme        string  `json:"theme"`
	ClickDelay   float64 `json:"click_delay"`    // seconds between clicks
	ExitHoldTime float64 `json:"exit_hold_time"` // seconds the exit pinch must hold
	Smoothing    bool    `json:"smoothing"`
	ShowFPS      bool    `json:"show_fps"`
	TargetFPS    int     `json:"target_fps"`
}

// DefaultSettings returns the out-of-the-box preferences.
func DefaultSettings() Settings {
	return Settings{
		Theme:        "dark",
		ClickDelay:   0.5,
		ExitHoldTime: 1.5,
		Smoothing:    true,
		ShowFPS:      true,
		TargetFPS:    30,
	}
}

// Settings table keys.
const (
	keyTheme        = "theme"
	keyClickDelay   = "click_delay"
	keyExitHoldTime = "exit_hold_time"
	keySmoothing    = "smoothing"
	keyShowFPS      = "show_fps"
	keyTargetFPS    = "target_fps"
)

// SettingsRepository provides persistence for user settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Load reads the persisted settings, filling defaults for any key that is
// missing or unparsable. A partially written settings table therefore
// degrades per-field rather than failing the load.
func (r *SettingsRepository) Load() (Settings, error) {
	settings := DefaultSettings()

	rows, err := r.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return settings, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, err
		}

		switch key {
		case keyTheme:
			settings.Theme = value
		case keyClickDelay:
			if v, err := strconv.ParseFloat(value, 64); err == nil && v > 0 {
				settings.ClickDelay = v
			}
		case keyExitHoldTime:
			if v, err := strconv.ParseFloat(value, 64); err == nil && v > 0 {
				settings.ExitHoldTime = v
			}
		case keySmoothing:
			if v, err := strconv.ParseBool(value); err == nil {
				settings.Smoothing = v
			}
		case keyShowFPS:
			if v, err := strconv.ParseBool(value); err == nil {
				settings.ShowFPS = v
			}
		case keyTargetFPS:
			if v, err := strconv.Atoi(value); err == nil && v > 0 {
				settings.TargetFPS = v
			}
		}
	}

	return settings, rows.Err()
}

// Save writes all settings, replacing any existing values.
func (r *SettingsRepository) Save(settings Settings) error {
	pairs := map[string]string{
		keyTheme:        settings.Theme,
		keyClickDelay:   strconv.FormatFloat(settings.ClickDelay, 'f', -1, 64),
		keyExitHoldTime: strconv.FormatFloat(settings.ExitHoldTime, 'f', -1, 64),
		keySmoothing:    strconv.FormatBool(settings.Smoothing),
		keyShowFPS:      strconv.FormatBool(settings.ShowFPS),
		keyTargetFPS:    strconv.Itoa(settings.TargetFPS),
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for key, value := range pairs {
		if _, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Get reads a single raw setting value. Returns ErrNotFound for a missing key.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}
