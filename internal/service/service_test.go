package service

import (
	"database/sql"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/gaitlab/gait-backend-go/internal/config"
	"github.com/gaitlab/gait-backend-go/internal/database"
	"github.com/gaitlab/gait-backend-go/internal/emg"
	"github.com/gaitlab/gait-backend-go/internal/models"
	"github.com/gaitlab/gait-backend-go/internal/repository"
)

const (
	frameRate  = 100.0
	analogRate = 1000.0
	frameCount = 200
	nSamples   = 2000
)

func newServices(t *testing.T) (*TrialService, *AnalysisService) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA foreign_keys=ON")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{Proc: config.DefaultProc(), EMG: config.DefaultEMG()}
	trialRepo := repository.NewTrialRepository(db)
	eventRepo := repository.NewEventRepository(db)
	metricsRepo := repository.NewMetricsRepository(db)
	return NewTrialService(trialRepo),
		NewAnalysisService(trialRepo, eventRepo, metricsRepo, cfg)
}

func constSeries(x, y, z float64) [][3]float64 {
	out := make([][3]float64, frameCount)
	for i := range out {
		out[i] = [3]float64{x, y, z}
	}
	return out
}

// stepForce rises to amp at frame riseFr and falls at frame fallFr,
// sampled at analog rate.
func stepForce(amp float64, riseFr, fallFr int) []float64 {
	out := make([]float64, nSamples)
	spf := int(analogRate / frameRate)
	for i := riseFr * spf; i < fallFr*spf; i++ {
		out[i] = amp
	}
	return out
}

func constCoP(x, y float64) [][3]float64 {
	out := make([][3]float64, nSamples)
	for i := range out {
		out[i] = [3]float64{x, y, 0}
	}
	return out
}

// walkPayload is a single right-foot contact on one plate: 800 N between
// frames 50 and 120, 70 kg subject, right foot over the plate.
func walkPayload() *models.TrialPayload {
	mass := 70.0
	return &models.TrialPayload{
		Name:       "walk01",
		FrameRate:  frameRate,
		AnalogRate: analogRate,
		FrameCount: frameCount,
		BodyMass:   &mass,
		Markers: map[string][][3]float64{
			"RHEE": constSeries(300, 100, 30),
			"RTOE": constSeries(300, 290, 30),
			"RANK": constSeries(330, 140, 80),
			"LHEE": constSeries(1300, 100, 30),
			"LTOE": constSeries(1300, 290, 30),
			"LANK": constSeries(1330, 140, 80),
		},
		Forceplates: []models.ForceplatePayload{
			{
				ForceTotal:  stepForce(800, 50, 120),
				CoP:         constCoP(300, 200),
				LowerBounds: [2]float64{0, 0},
				UpperBounds: [2]float64{600, 900},
			},
		},
	}
}

func TestIngestRejectsNonIntegerRateRatio(t *testing.T) {
	trials, _ := newServices(t)

	p := walkPayload()
	p.AnalogRate = 150
	_, err := trials.Ingest(p)
	assert.ErrorContains(t, err, "integer multiple")
}

func TestIngestRejectsMarkerLengthMismatch(t *testing.T) {
	trials, _ := newServices(t)

	p := walkPayload()
	p.Markers["RHEE"] = p.Markers["RHEE"][:10]
	_, err := trials.Ingest(p)
	assert.ErrorContains(t, err, "RHEE")
}

func TestIngestRejectsDegeneratePlateBounds(t *testing.T) {
	trials, _ := newServices(t)

	p := walkPayload()
	p.Forceplates[0].UpperBounds = p.Forceplates[0].LowerBounds
	_, err := trials.Ingest(p)
	assert.ErrorContains(t, err, "bounds")
}

func TestAnalyzeDetectsRightContact(t *testing.T) {
	trials, analysis := newServices(t)

	trial, err := trials.Ingest(walkPayload())
	require.NoError(t, err)

	result, err := analysis.AnalyzeTrial(trial.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{50}, result.Events.Strikes[models.SideRight])
	assert.Equal(t, []int{120}, result.Events.Toeoffs[models.SideRight])
	assert.Empty(t, result.Events.Strikes[models.SideLeft])
	require.Len(t, result.Plates, 1)
	assert.Equal(t, models.PlateAccepted, result.Plates[0].Outcome)
}

func TestAnalyzePersistsAndIsIdempotent(t *testing.T) {
	trials, analysis := newServices(t)

	trial, err := trials.Ingest(walkPayload())
	require.NoError(t, err)

	first, err := analysis.AnalyzeTrial(trial.ID, nil)
	require.NoError(t, err)
	second, err := analysis.AnalyzeTrial(trial.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, first.Events, second.Events)

	stored, err := analysis.GetEvents(trial.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Events.Strikes, stored.Events.Strikes)
	assert.Equal(t, first.Events.Toeoffs, stored.Events.Toeoffs)
	require.Len(t, stored.Plates, 1)
	assert.Equal(t, models.PlateAccepted, stored.Plates[0].Outcome)
}

func TestAnalyzeHonorsExternalAssignment(t *testing.T) {
	trials, analysis := newServices(t)

	trial, err := trials.Ingest(walkPayload())
	require.NoError(t, err)

	result, err := analysis.AnalyzeTrial(trial.ID, map[int]models.SideAssignment{0: models.AssignLeft})
	require.NoError(t, err)
	assert.Equal(t, []int{50}, result.Events.Strikes[models.SideLeft])
	assert.Empty(t, result.Events.Strikes[models.SideRight])
}

func TestAnalyzeMissingTrial(t *testing.T) {
	_, analysis := newServices(t)

	_, err := analysis.AnalyzeTrial(42, nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMetricsAfterAnalyze(t *testing.T) {
	trials, analysis := newServices(t)

	trial, err := trials.Ingest(walkPayload())
	require.NoError(t, err)
	_, err = analysis.AnalyzeTrial(trial.ID, nil)
	require.NoError(t, err)

	sw, cv, err := analysis.GetMetrics(trial.ID)
	require.NoError(t, err)
	// One strike per side at most, so step width is undefined.
	assert.Nil(t, sw.Left)
	assert.Nil(t, sw.Right)
	require.NotNil(t, cv)
	// Static markers: zero contact velocity on the accepted side.
	require.NotNil(t, cv.StrikeMedian[models.SideRight])
	assert.InDelta(t, 0.0, *cv.StrikeMedian[models.SideRight], 1e-9)
}

func TestMetricsBeforeAnalyze(t *testing.T) {
	trials, analysis := newServices(t)

	trial, err := trials.Ingest(walkPayload())
	require.NoError(t, err)

	_, _, err = analysis.GetMetrics(trial.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEMGChannelData(t *testing.T) {
	trials, analysis := newServices(t)

	sine := make([]float64, nSamples)
	for i := range sine {
		sine[i] = math.Sin(2 * math.Pi * 60 * float64(i) / analogRate)
	}
	p := walkPayload()
	p.Analog = map[string]models.AnalogPayload{
		"EMG": {Channels: map[string][]float64{"Voltage.RGas8": sine}},
	}

	trial, err := trials.Ingest(p)
	require.NoError(t, err)

	data, err := analysis.EMGChannelData(trial.ID, "RGas", false)
	require.NoError(t, err)
	assert.Len(t, data, nSamples)

	_, err = analysis.EMGChannelData(trial.ID, "NoSuch", false)
	assert.ErrorIs(t, err, emg.ErrNoMatchingChannel)
}

func TestEMGWithoutAnalogData(t *testing.T) {
	trials, analysis := newServices(t)

	trial, err := trials.Ingest(walkPayload())
	require.NoError(t, err)

	_, err = analysis.EMGChannelData(trial.ID, "RGas", false)
	assert.ErrorContains(t, err, "no analog data")
}
