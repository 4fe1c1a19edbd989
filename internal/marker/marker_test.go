package marker

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverage(t *testing.T) {
	s := NewSet(map[string][]r3.Vector{
		"LHEE": {{X: 0, Y: 0, Z: 0}, {X: 2, Y: 2, Z: 2}},
		"LTOE": {{X: 4, Y: 0, Z: 0}, {X: 6, Y: 2, Z: 2}},
	})
	avg, err := s.Average("LHEE", "LTOE")
	require.NoError(t, err)
	assert.InDelta(t, 2, avg[0].X, 1e-12)
	assert.InDelta(t, 0, avg[0].Y, 1e-12)
	assert.InDelta(t, 4, avg[1].X, 1e-12)
}

func TestAverageMissingMarker(t *testing.T) {
	s := NewSet(map[string][]r3.Vector{"LHEE": {{}}})
	_, err := s.Average("LHEE", "LTOE")
	assert.ErrorIs(t, err, ErrMissingMarker)
}

func TestTrajectoryValiditySentinel(t *testing.T) {
	tr := NewTrajectory("RTOE", []r3.Vector{
		{X: 1, Y: 1, Z: 1}, {}, {X: 2, Y: 2, Z: 2},
	})
	assert.True(t, tr.Valid(0))
	assert.False(t, tr.Valid(1)) // dropped sample
	assert.False(t, tr.Valid(5)) // out of range
}

func TestNormalizeRows(t *testing.T) {
	out := NormalizeRows([]r3.Vector{
		{X: 3, Y: 4, Z: 0},
		{},
	})
	assert.InDelta(t, 0.6, out[0].X, 1e-12)
	assert.InDelta(t, 0.8, out[0].Y, 1e-12)
	// zero-norm rows are NaN, not an error
	assert.True(t, math.IsNaN(out[1].X))
	assert.True(t, math.IsNaN(out[1].Y))
	assert.True(t, math.IsNaN(out[1].Z))
}

func TestPrincipalDirection(t *testing.T) {
	// walking along y
	pos := make([]r3.Vector, 100)
	for i := range pos {
		pos[i] = r3.Vector{X: 50 + 2*math.Sin(float64(i)), Y: float64(i) * 30, Z: 90}
	}
	assert.Equal(t, 1, PrincipalDirection(pos))
}

func TestEstimateFootprintEnclosesMarkers(t *testing.T) {
	// foot flat on the ground, pointing along +y
	n := 10
	heel := make([]r3.Vector, n)
	toe := make([]r3.Vector, n)
	ankle := make([]r3.Vector, n)
	for i := 0; i < n; i++ {
		heel[i] = r3.Vector{X: 100, Y: 100, Z: 30}
		toe[i] = r3.Vector{X: 100, Y: 290, Z: 30}
		ankle[i] = r3.Vector{X: 130, Y: 140, Z: 80}
	}
	bounds := EstimateFootprint(heel, toe, ankle, 3.0, 14)
	require.Len(t, bounds, n)

	b := bounds[5]
	// extends past the toe marker along y
	assert.Greater(t, b.Max[1], toe[5].Y)
	// heel edge is pushed forward by half the marker diameter
	assert.InDelta(t, heel[5].Y+7, b.Min[1], 1e-9)
	// lateral extent straddles the heel-toe line symmetrically
	assert.InDelta(t, 100-30, b.Min[0], 1e-9)
	assert.InDelta(t, 100+30, b.Max[0], 1e-9)
}

func TestEstimateFootprintDegenerateFrame(t *testing.T) {
	heel := []r3.Vector{{X: 1, Y: 1, Z: 1}}
	toe := []r3.Vector{{X: 1, Y: 1, Z: 1}} // coincident: no direction
	ankle := []r3.Vector{{X: 2, Y: 1, Z: 2}}
	bounds := EstimateFootprint(heel, toe, ankle, 0.25, 14)
	assert.True(t, math.IsNaN(bounds[0].Min[0]))
	assert.True(t, math.IsNaN(bounds[0].Max[1]))
}

func TestBoundsContains(t *testing.T) {
	b := Bounds{Min: [2]float64{10, 10}, Max: [2]float64{20, 20}}
	assert.True(t, b.Contains([2]float64{0, 0}, [2]float64{100, 100}))
	assert.False(t, b.Contains([2]float64{15, 0}, [2]float64{100, 100}))
	// NaN bounds never count as inside
	nan := Bounds{Min: [2]float64{math.NaN(), math.NaN()}, Max: [2]float64{math.NaN(), math.NaN()}}
	assert.False(t, nan.Contains([2]float64{0, 0}, [2]float64{100, 100}))
}

func TestCrossingFrames(t *testing.T) {
	n := 60
	pos := make([]r3.Vector, n)
	for i := range pos {
		// crosses level 100 upward around frame 30
		pos[i] = r3.Vector{X: 1, Y: float64(i-30)*10 + 105, Z: 1}
	}
	frames := CrossingFrames(NewTrajectory("LHEE", pos), 1, 100)
	require.Len(t, frames, 1)
	assert.InDelta(t, 30, float64(frames[0]), 1.0)
}

func TestIsPlugInGaitSet(t *testing.T) {
	positions := map[string][]r3.Vector{}
	for _, name := range plugInGaitRequired {
		positions[name] = []r3.Vector{{}}
	}
	positions["SACR"] = []r3.Vector{{}}
	s := NewSet(positions)
	assert.True(t, s.IsPlugInGaitSet())

	delete(s, "LHEE")
	assert.False(t, s.IsPlugInGaitSet())
}
