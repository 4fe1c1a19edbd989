package repository

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/gaitlab/gait-backend-go/internal/database"
	"github.com/gaitlab/gait-backend-go/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// In-memory sqlite gives each connection its own database.
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA foreign_keys=ON")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func samplePayload() *models.TrialPayload {
	mass := 70.0
	return &models.TrialPayload{
		Name:       "walk01",
		FrameRate:  100,
		AnalogRate: 1000,
		FrameCount: 200,
		BodyMass:   &mass,
		Forceplates: []models.ForceplatePayload{
			{
				ForceTotal:  make([]float64, 2000),
				CoP:         make([][3]float64, 2000),
				LowerBounds: [2]float64{0, 0},
				UpperBounds: [2]float64{600, 900},
			},
		},
	}
}

func TestTrialCreateAndGet(t *testing.T) {
	repo := NewTrialRepository(newTestDB(t))

	trial, err := repo.Create(samplePayload())
	require.NoError(t, err)
	assert.Equal(t, "walk01", trial.Name)
	assert.Equal(t, 100.0, trial.FrameRate)
	assert.Equal(t, 1, trial.ForceplateCount)
	require.NotNil(t, trial.BodyMass)
	assert.Equal(t, 70.0, *trial.BodyMass)

	got, err := repo.GetByID(trial.ID)
	require.NoError(t, err)
	assert.Equal(t, trial.ID, got.ID)
}

func TestTrialPayloadRoundTrip(t *testing.T) {
	repo := NewTrialRepository(newTestDB(t))

	trial, err := repo.Create(samplePayload())
	require.NoError(t, err)

	p, err := repo.GetPayload(trial.ID)
	require.NoError(t, err)
	assert.Equal(t, "walk01", p.Name)
	assert.Len(t, p.Forceplates, 1)
	assert.Len(t, p.Forceplates[0].ForceTotal, 2000)
	assert.Equal(t, [2]float64{600, 900}, p.Forceplates[0].UpperBounds)
}

func TestTrialListFilterAndPagination(t *testing.T) {
	repo := NewTrialRepository(newTestDB(t))

	for _, name := range []string{"walk01", "walk02", "run01"} {
		p := samplePayload()
		p.Name = name
		_, err := repo.Create(p)
		require.NoError(t, err)
	}

	trials, total, err := repo.List(models.TrialFilter{Name: "walk"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, trials, 2)

	trials, total, err = repo.List(models.TrialFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, trials, 2)
}

func TestTrialGetMissing(t *testing.T) {
	repo := NewTrialRepository(newTestDB(t))

	_, err := repo.GetByID(42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEventReplaceForTrial(t *testing.T) {
	db := newTestDB(t)
	trials := NewTrialRepository(db)
	events := NewEventRepository(db)

	trial, err := trials.Create(samplePayload())
	require.NoError(t, err)

	evs := models.NewGaitEvents()
	evs.Add(models.SideRight, 50, 120)
	plates := []models.PlateResult{
		{PlateIndex: 0, Outcome: models.PlateAccepted, Side: models.SideRight, StrikeFrame: 50, ToeoffFrame: 120},
	}
	require.NoError(t, events.ReplaceForTrial(trial.ID, evs.Flatten(trial.ID), plates))

	// A second replace must not accumulate duplicates.
	require.NoError(t, events.ReplaceForTrial(trial.ID, evs.Flatten(trial.ID), plates))

	got, err := events.GetByTrial(trial.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{50}, got.Strikes[models.SideRight])
	assert.Equal(t, []int{120}, got.Toeoffs[models.SideRight])
	assert.Empty(t, got.Strikes[models.SideLeft])
	assert.True(t, got.Valid[models.SideRight])
	assert.False(t, got.Valid[models.SideLeft])

	gotPlates, err := events.GetPlateResults(trial.ID)
	require.NoError(t, err)
	require.Len(t, gotPlates, 1)
	assert.Equal(t, models.PlateAccepted, gotPlates[0].Outcome)
	assert.Equal(t, models.SideRight, gotPlates[0].Side)
}

func TestEventsEmptyForUnanalyzedTrial(t *testing.T) {
	db := newTestDB(t)
	trials := NewTrialRepository(db)
	events := NewEventRepository(db)

	trial, err := trials.Create(samplePayload())
	require.NoError(t, err)

	got, err := events.GetByTrial(trial.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Strikes[models.SideLeft])
	assert.Empty(t, got.Strikes[models.SideRight])
	assert.Empty(t, got.Valid)
}

func TestStepWidthUpsert(t *testing.T) {
	db := newTestDB(t)
	trials := NewTrialRepository(db)
	metricsRepo := NewMetricsRepository(db)

	trial, err := trials.Create(samplePayload())
	require.NoError(t, err)

	right := 95.0
	require.NoError(t, metricsRepo.UpsertStepWidth(trial.ID, models.StepWidth{Right: &right}))

	sw, err := metricsRepo.GetStepWidth(trial.ID)
	require.NoError(t, err)
	require.NotNil(t, sw.Right)
	assert.Equal(t, 95.0, *sw.Right)
	assert.Nil(t, sw.Left)

	// Upsert replaces, including clearing a side.
	left := 88.0
	require.NoError(t, metricsRepo.UpsertStepWidth(trial.ID, models.StepWidth{Left: &left}))
	sw, err = metricsRepo.GetStepWidth(trial.ID)
	require.NoError(t, err)
	require.NotNil(t, sw.Left)
	assert.Nil(t, sw.Right)
}

func TestDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	trials := NewTrialRepository(db)
	events := NewEventRepository(db)
	metricsRepo := NewMetricsRepository(db)

	trial, err := trials.Create(samplePayload())
	require.NoError(t, err)

	evs := models.NewGaitEvents()
	evs.Add(models.SideLeft, 10, 60)
	require.NoError(t, events.ReplaceForTrial(trial.ID, evs.Flatten(trial.ID), nil))
	w := 100.0
	require.NoError(t, metricsRepo.UpsertStepWidth(trial.ID, models.StepWidth{Left: &w}))

	require.NoError(t, trials.Delete(trial.ID))

	_, err = trials.GetByID(trial.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM gait_events").Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM step_widths").Scan(&n))
	assert.Zero(t, n)
}
