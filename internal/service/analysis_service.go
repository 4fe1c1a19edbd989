package service

import (
	"fmt"
	"log"

	"github.com/gaitlab/gait-backend-go/internal/config"
	"github.com/gaitlab/gait-backend-go/internal/detect"
	"github.com/gaitlab/gait-backend-go/internal/emg"
	"github.com/gaitlab/gait-backend-go/internal/marker"
	"github.com/gaitlab/gait-backend-go/internal/metrics"
	"github.com/gaitlab/gait-backend-go/internal/models"
	"github.com/gaitlab/gait-backend-go/internal/repository"
	"github.com/gaitlab/gait-backend-go/internal/source"
)

// AnalysisService runs event detection and derived metrics over stored
// trials and persists the results.
type AnalysisService struct {
	trials  *repository.TrialRepository
	events  *repository.EventRepository
	metrics *repository.MetricsRepository
	cfg     *config.Config
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	trials *repository.TrialRepository,
	events *repository.EventRepository,
	metricsRepo *repository.MetricsRepository,
	cfg *config.Config,
) *AnalysisService {
	return &AnalysisService{
		trials:  trials,
		events:  events,
		metrics: metricsRepo,
		cfg:     cfg,
	}
}

// AnalyzeTrial runs forceplate event detection on a stored trial, computes
// derived metrics, and replaces any previously stored results. Running it
// twice on the same trial yields the same stored state.
func (s *AnalysisService) AnalyzeTrial(trialID int64, assign map[int]models.SideAssignment) (*models.AnalysisResult, error) {
	trial, err := s.trials.GetByID(trialID)
	if err != nil {
		return nil, err
	}
	payload, err := s.trials.GetPayload(trialID)
	if err != nil {
		return nil, err
	}

	src := source.FromPayload(payload)
	markerData, err := src.MarkerData(src.MarkerNames(), true)
	if err != nil {
		return nil, fmt.Errorf("failed to read markers: %w", err)
	}
	markers := marker.NewSet(markerData)
	plates, err := src.ForceplateData()
	if err != nil {
		return nil, fmt.Errorf("failed to read forceplates: %w", err)
	}

	detector := detect.New(s.cfg.Proc)
	events, plateResults, err := detector.Run(trial, markers, plates, assign)
	if err != nil {
		return nil, err
	}
	trial.Events = events

	stepWidth, err := metrics.StepWidth(markers, events)
	if err != nil {
		log.Printf("[Analysis] step width unavailable for trial %d: %v", trialID, err)
		stepWidth = &models.StepWidth{}
	}

	if err := s.events.ReplaceForTrial(trialID, events.Flatten(trialID), plateResults); err != nil {
		return nil, err
	}
	if err := s.metrics.UpsertStepWidth(trialID, *stepWidth); err != nil {
		return nil, err
	}

	log.Printf("[Analysis] trial %d: %d left / %d right strikes, %d plates",
		trialID, len(events.Strikes[models.SideLeft]), len(events.Strikes[models.SideRight]), len(plateResults))

	return &models.AnalysisResult{
		TrialID:   trialID,
		Events:    events,
		Plates:    plateResults,
		StepWidth: stepWidth,
	}, nil
}

// GetEvents returns the stored detection results for a trial.
func (s *AnalysisService) GetEvents(trialID int64) (*models.AnalysisResult, error) {
	if _, err := s.trials.GetByID(trialID); err != nil {
		return nil, err
	}
	events, err := s.events.GetByTrial(trialID)
	if err != nil {
		return nil, err
	}
	plates, err := s.events.GetPlateResults(trialID)
	if err != nil {
		return nil, err
	}
	return &models.AnalysisResult{TrialID: trialID, Events: events, Plates: plates}, nil
}

// GetMetrics returns stored step width plus contact velocity recomputed
// from the payload and stored events.
func (s *AnalysisService) GetMetrics(trialID int64) (*models.StepWidth, *models.ContactVelocity, error) {
	sw, err := s.metrics.GetStepWidth(trialID)
	if err != nil {
		return nil, nil, err
	}
	events, err := s.events.GetByTrial(trialID)
	if err != nil {
		return nil, nil, err
	}
	payload, err := s.trials.GetPayload(trialID)
	if err != nil {
		return nil, nil, err
	}
	src := source.FromPayload(payload)
	markerData, err := src.MarkerData(src.MarkerNames(), true)
	if err != nil {
		return nil, nil, err
	}
	markers := marker.NewSet(markerData)

	cv, err := metrics.FootContactVelocity(markers, events,
		s.cfg.Proc.RightFootMarkers, s.cfg.Proc.LeftFootMarkers)
	if err != nil {
		log.Printf("[Analysis] contact velocity unavailable for trial %d: %v", trialID, err)
		cv = nil
	}
	return sw, cv, nil
}

// EMGChannelData returns one EMG channel from a trial's analog data,
// band-pass filtered, and optionally as a moving RMS envelope.
func (s *AnalysisService) EMGChannelData(trialID int64, channel string, rms bool) ([]float64, error) {
	payload, err := s.trials.GetPayload(trialID)
	if err != nil {
		return nil, err
	}
	channels := map[string][]float64{}
	for _, a := range payload.Analog {
		for name, data := range a.Channels {
			channels[name] = data
		}
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("trial %d has no analog data", trialID)
	}
	e := emg.New(channels, payload.AnalogRate, s.cfg.EMG, 1.0)
	return e.ChannelData(channel, rms)
}
