package service

import (
	"fmt"
	"math"

	"github.com/gaitlab/gait-backend-go/internal/models"
	"github.com/gaitlab/gait-backend-go/internal/repository"
)

// TrialService handles trial ingestion and retrieval business logic
type TrialService struct {
	repo *repository.TrialRepository
}

// NewTrialService creates a new trial service
func NewTrialService(repo *repository.TrialRepository) *TrialService {
	return &TrialService{repo: repo}
}

// Ingest validates and stores a trial payload.
func (s *TrialService) Ingest(payload *models.TrialPayload) (*models.Trial, error) {
	if err := validatePayload(payload); err != nil {
		return nil, err
	}
	trial, err := s.repo.Create(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to store trial: %w", err)
	}
	return trial, nil
}

func validatePayload(p *models.TrialPayload) error {
	if p.FrameRate <= 0 || p.AnalogRate <= 0 {
		return fmt.Errorf("frame_rate and analog_rate must be positive")
	}
	ratio := p.AnalogRate / p.FrameRate
	if math.Abs(ratio-math.Round(ratio)) > 1e-9 || ratio < 1 {
		return fmt.Errorf("analog_rate %.1f is not an integer multiple of frame_rate %.1f", p.AnalogRate, p.FrameRate)
	}
	if p.FrameCount <= 0 {
		return fmt.Errorf("frame_count must be positive")
	}
	if p.BodyMass != nil && *p.BodyMass <= 0 {
		return fmt.Errorf("body_mass must be positive when given")
	}
	for name, series := range p.Markers {
		if len(series) != p.FrameCount {
			return fmt.Errorf("marker %s has %d frames, expected %d", name, len(series), p.FrameCount)
		}
	}
	for i, fp := range p.Forceplates {
		if len(fp.ForceTotal) == 0 {
			return fmt.Errorf("forceplate %d has no total force channel", i)
		}
		if fp.LowerBounds[0] >= fp.UpperBounds[0] || fp.LowerBounds[1] >= fp.UpperBounds[1] {
			return fmt.Errorf("forceplate %d has degenerate bounds", i)
		}
	}
	return nil
}

// GetTrial retrieves a trial by id.
func (s *TrialService) GetTrial(id int64) (*models.Trial, error) {
	return s.repo.GetByID(id)
}

// ListTrials retrieves trials with filtering.
func (s *TrialService) ListTrials(filter models.TrialFilter) ([]models.Trial, int64, error) {
	return s.repo.List(filter)
}

// DeleteTrial removes a trial and all derived data.
func (s *TrialService) DeleteTrial(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}
