package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gaitlab/gait-backend-go/internal/models"
)

// TrialRepository handles database operations for trials.
type TrialRepository struct {
	db *sql.DB
}

// NewTrialRepository creates a new trial repository.
func NewTrialRepository(db *sql.DB) *TrialRepository {
	return &TrialRepository{db: db}
}

// Create persists a trial together with its raw payload, so analysis can
// be re-run later.
func (r *TrialRepository) Create(payload *models.TrialPayload) (*models.Trial, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trial payload: %w", err)
	}

	res, err := r.db.Exec(`
		INSERT INTO trials (name, frame_rate, analog_rate, frame_count, body_mass, forceplate_count, payload_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, payload.Name, payload.FrameRate, payload.AnalogRate, payload.FrameCount,
		payload.BodyMass, len(payload.Forceplates), string(payloadJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to insert trial: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get trial id: %w", err)
	}
	return r.GetByID(id)
}

// GetByID retrieves a trial by its id.
func (r *TrialRepository) GetByID(id int64) (*models.Trial, error) {
	var t models.Trial
	var mass sql.NullFloat64
	err := r.db.QueryRow(`
		SELECT id, name, frame_rate, analog_rate, frame_count, body_mass, forceplate_count, created_at, updated_at
		FROM trials WHERE id = ?
	`, id).Scan(&t.ID, &t.Name, &t.FrameRate, &t.AnalogRate, &t.FrameCount,
		&mass, &t.ForceplateCount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get trial %d: %w", id, err)
	}
	if mass.Valid {
		t.BodyMass = &mass.Float64
	}
	return &t, nil
}

// GetPayload retrieves the stored raw payload for a trial.
func (r *TrialRepository) GetPayload(id int64) (*models.TrialPayload, error) {
	var raw string
	err := r.db.QueryRow("SELECT payload_json FROM trials WHERE id = ?", id).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("failed to get payload for trial %d: %w", id, err)
	}
	var p models.TrialPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload for trial %d: %w", id, err)
	}
	return &p, nil
}

// List retrieves trials with filtering and pagination.
func (r *TrialRepository) List(filter models.TrialFilter) ([]models.Trial, int64, error) {
	query := `SELECT id, name, frame_rate, analog_rate, frame_count, body_mass, forceplate_count, created_at, updated_at FROM trials`
	countQuery := "SELECT COUNT(*) FROM trials"

	var conditions []string
	var args []interface{}
	if filter.Name != "" {
		conditions = append(conditions, "name LIKE ?")
		args = append(args, "%"+filter.Name+"%")
	}
	if len(conditions) > 0 {
		where := " WHERE " + strings.Join(conditions, " AND ")
		query += where
		countQuery += where
	}

	var total int64
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count trials: %w", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 100
	}
	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query trials: %w", err)
	}
	defer rows.Close()

	var trials []models.Trial
	for rows.Next() {
		var t models.Trial
		var mass sql.NullFloat64
		if err := rows.Scan(&t.ID, &t.Name, &t.FrameRate, &t.AnalogRate, &t.FrameCount,
			&mass, &t.ForceplateCount, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan trial: %w", err)
		}
		if mass.Valid {
			t.BodyMass = &mass.Float64
		}
		trials = append(trials, t)
	}
	return trials, total, nil
}

// Delete removes a trial and, via cascade, its events and metrics.
func (r *TrialRepository) Delete(id int64) error {
	if _, err := r.db.Exec("DELETE FROM trials WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete trial %d: %w", id, err)
	}
	return nil
}
