package repository

import (
	"database/sql"
	"fmt"

	"github.com/gaitlab/gait-backend-go/internal/models"
)

// EventRepository handles database operations for detected gait events and
// per-plate results.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// ReplaceForTrial atomically replaces all stored events and plate results for
// a trial. Re-running the analysis must not accumulate duplicates.
func (r *EventRepository) ReplaceForTrial(trialID int64, events []models.GaitEvent, plates []models.PlateResult) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM gait_events WHERE trial_id = ?", trialID); err != nil {
		return fmt.Errorf("failed to clear events for trial %d: %w", trialID, err)
	}
	if _, err := tx.Exec("DELETE FROM plate_results WHERE trial_id = ?", trialID); err != nil {
		return fmt.Errorf("failed to clear plate results for trial %d: %w", trialID, err)
	}

	for _, ev := range events {
		if _, err := tx.Exec(`
			INSERT INTO gait_events (trial_id, side, kind, frame) VALUES (?, ?, ?, ?)
		`, trialID, ev.Side, ev.Kind, ev.Frame); err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
	}
	for _, pr := range plates {
		var side interface{}
		if pr.Side != "" {
			side = string(pr.Side)
		}
		if _, err := tx.Exec(`
			INSERT INTO plate_results (trial_id, plate_index, outcome, side, strike_frame, toeoff_frame)
			VALUES (?, ?, ?, ?, ?, ?)
		`, trialID, pr.PlateIndex, pr.Outcome, side, pr.StrikeFrame, pr.ToeoffFrame); err != nil {
			return fmt.Errorf("failed to insert plate result: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events for trial %d: %w", trialID, err)
	}
	return nil
}

// GetByTrial returns the stored events for a trial, rebuilt into the per-side
// form produced by the detector.
func (r *EventRepository) GetByTrial(trialID int64) (*models.GaitEvents, error) {
	rows, err := r.db.Query(`
		SELECT side, kind, frame FROM gait_events WHERE trial_id = ? ORDER BY id
	`, trialID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for trial %d: %w", trialID, err)
	}
	defer rows.Close()

	events := models.NewGaitEvents()
	for rows.Next() {
		var side models.Side
		var kind models.EventKind
		var frame int
		if err := rows.Scan(&side, &kind, &frame); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		switch kind {
		case models.EventStrike:
			events.Strikes[side] = append(events.Strikes[side], frame)
			events.Valid[side] = true
		case models.EventToeoff:
			events.Toeoffs[side] = append(events.Toeoffs[side], frame)
			events.Valid[side] = true
		}
	}
	return events, nil
}

// GetPlateResults returns the stored per-plate outcomes for a trial.
func (r *EventRepository) GetPlateResults(trialID int64) ([]models.PlateResult, error) {
	rows, err := r.db.Query(`
		SELECT plate_index, outcome, side, strike_frame, toeoff_frame
		FROM plate_results WHERE trial_id = ? ORDER BY plate_index
	`, trialID)
	if err != nil {
		return nil, fmt.Errorf("failed to query plate results for trial %d: %w", trialID, err)
	}
	defer rows.Close()

	var results []models.PlateResult
	for rows.Next() {
		var pr models.PlateResult
		var side sql.NullString
		if err := rows.Scan(&pr.PlateIndex, &pr.Outcome, &side, &pr.StrikeFrame, &pr.ToeoffFrame); err != nil {
			return nil, fmt.Errorf("failed to scan plate result: %w", err)
		}
		if side.Valid {
			pr.Side = models.Side(side.String)
		}
		results = append(results, pr)
	}
	return results, nil
}
