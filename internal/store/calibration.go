package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/gesture"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// CalibrationRecord is one persisted calibration with its row metadata.
// The numeric fields round-trip the gesture.Calibration value losslessly.
type CalibrationRecord struct {
	ID             string
	HandSpan       float64
	ClickThreshold int
	ExitThreshold  int
	CreatedAt      time.Time
}

// Calibration converts the record back into a gesture value. A record only
// exists because a session succeeded, so it is always calibrated.
func (r *CalibrationRecord) Calibration() *gesture.Calibration {
	return &gesture.Calibration{
		HandSpan:       r.HandSpan,
		ClickThreshold: r.ClickThreshold,
		ExitThreshold:  r.ExitThreshold,
		Calibrated:     true,
	}
}

// CalibrationRepository provides persistence for calibration records.
type CalibrationRepository struct {
	db *sql.DB
}

// Calibrations returns the calibration repository for this store.
func (s *Store) Calibrations() *CalibrationRepository {
	return &CalibrationRepository{db: s.db}
}

// Save persists a successful calibration as a new history row and returns
// the stored record. Uncalibrated values are a programming error and are
// rejected rather than written.
func (r *CalibrationRepository) Save(cal *gesture.Calibration) (*CalibrationRecord, error) {
	if cal == nil || !cal.Calibrated {
		return nil, errors.New("refusing to persist an uncalibrated value")
	}

	rec := &CalibrationRecord{
		ID:             uuid.New().String(),
		HandSpan:       cal.HandSpan,
		ClickThreshold: cal.ClickThreshold,
		ExitThreshold:  cal.ExitThreshold,
		CreatedAt:      time.Now(),
	}

	_, err := r.db.Exec(
		`INSERT INTO calibrations (id, hand_span, click_threshold, exit_threshold, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.HandSpan, rec.ClickThreshold, rec.ExitThreshold, rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// Latest retrieves the most recently saved calibration.
// Returns ErrNotFound when no calibration has ever been persisted.
func (r *CalibrationRepository) Latest() (*CalibrationRecord, error) {
	rec := &CalibrationRecord{}

	err := r.db.QueryRow(
		`SELECT id, hand_span, click_threshold, exit_threshold, created_at
		 FROM calibrations ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&rec.ID, &rec.HandSpan, &rec.ClickThreshold, &rec.ExitThreshold, &rec.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return rec, nil
}

// List retrieves the calibration history, newest first.
func (r *CalibrationRepository) List() ([]*CalibrationRecord, error) {
	rows, err := r.db.Query(
		`SELECT id, hand_span, click_threshold, exit_threshold, created_at
		 FROM calibrations ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*CalibrationRecord
	for rows.Next() {
		rec := &CalibrationRecord{}
		if err := rows.Scan(&rec.ID, &rec.HandSpan, &rec.ClickThreshold, &rec.ExitThreshold, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
