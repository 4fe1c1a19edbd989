package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaitlab/gait-backend-go/internal/models"
)

func testPayload() *models.TrialPayload {
	mass := 70.0
	return &models.TrialPayload{
		Name:       "walk01",
		FrameRate:  100,
		AnalogRate: 1000,
		FrameCount: 2,
		BodyMass:   &mass,
		Markers: map[string][][3]float64{
			"RHEE": {{1, 2, 3}, {4, 5, 6}},
		},
		Forceplates: []models.ForceplatePayload{
			{
				ForceTotal:  []float64{0, 100},
				CoP:         [][3]float64{{10, 20, 0}, {11, 21, 0}},
				LowerBounds: [2]float64{0, 0},
				UpperBounds: [2]float64{600, 900},
			},
		},
		Analog: map[string]models.AnalogPayload{
			"Myon": {Channels: map[string][]float64{"Voltage.LGas8": {0.1, 0.2}}},
		},
	}
}

func TestMemorySourceMetadata(t *testing.T) {
	src := FromPayload(testPayload())
	meta, err := src.Metadata()
	require.NoError(t, err)
	assert.Equal(t, 100.0, meta.FrameRate)
	assert.Equal(t, 10.0, meta.SamplesPerFrame)
	assert.Equal(t, 1, meta.ForceplateCount)
	require.NotNil(t, meta.BodyMass)
	assert.Equal(t, 70.0, *meta.BodyMass)
}

func TestMemorySourceMarkerData(t *testing.T) {
	src := FromPayload(testPayload())

	data, err := src.MarkerData([]string{"RHEE"}, false)
	require.NoError(t, err)
	assert.Equal(t, 2.0, data["RHEE"][0].Y)

	_, err = src.MarkerData([]string{"RHEE", "LHEE"}, false)
	assert.ErrorIs(t, err, ErrMarkerNotFound)

	// partial results omit missing names instead of failing
	data, err = src.MarkerData([]string{"RHEE", "LHEE"}, true)
	require.NoError(t, err)
	assert.Contains(t, data, "RHEE")
	assert.NotContains(t, data, "LHEE")
}

func TestMemorySourceForceplatesAndAnalog(t *testing.T) {
	src := FromPayload(testPayload())

	plates, err := src.ForceplateData()
	require.NoError(t, err)
	require.Len(t, plates, 1)
	assert.Equal(t, [2]float64{600, 900}, plates[0].UpperBounds)
	assert.Equal(t, 20.0, plates[0].CoP[0].Y)

	a, err := src.AnalogData("Myon")
	require.NoError(t, err)
	assert.Contains(t, a.Channels, "Voltage.LGas8")

	_, err = src.AnalogData("nope")
	assert.Error(t, err)
}
