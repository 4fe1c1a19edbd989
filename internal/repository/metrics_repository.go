package repository

import (
	"database/sql"
	"fmt"

	"github.com/gaitlab/gait-backend-go/internal/models"
)

// MetricsRepository handles database operations for derived gait metrics.
type MetricsRepository struct {
	db *sql.DB
}

// NewMetricsRepository creates a new metrics repository.
func NewMetricsRepository(db *sql.DB) *MetricsRepository {
	return &MetricsRepository{db: db}
}

// UpsertStepWidth stores or replaces the step width values for a trial.
func (r *MetricsRepository) UpsertStepWidth(trialID int64, sw models.StepWidth) error {
	_, err := r.db.Exec(`
		INSERT INTO step_widths (trial_id, left_mm, right_mm, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(trial_id) DO UPDATE SET
			left_mm = excluded.left_mm,
			right_mm = excluded.right_mm,
			updated_at = CURRENT_TIMESTAMP
	`, trialID, sw.Left, sw.Right)
	if err != nil {
		return fmt.Errorf("failed to upsert step width for trial %d: %w", trialID, err)
	}
	return nil
}

// GetStepWidth retrieves stored step width values. Returns sql.ErrNoRows
// wrapped if the trial has not been analyzed.
func (r *MetricsRepository) GetStepWidth(trialID int64) (*models.StepWidth, error) {
	var sw models.StepWidth
	var left, right sql.NullFloat64
	err := r.db.QueryRow(`
		SELECT left_mm, right_mm FROM step_widths WHERE trial_id = ?
	`, trialID).Scan(&left, &right)
	if err != nil {
		return nil, fmt.Errorf("failed to get step width for trial %d: %w", trialID, err)
	}
	if left.Valid {
		sw.Left = &left.Float64
	}
	if right.Valid {
		sw.Right = &right.Float64
	}
	return &sw, nil
}
