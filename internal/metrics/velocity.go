package metrics

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/gaitlab/gait-backend-go/internal/marker"
	"github.com/gaitlab/gait-backend-go/internal/models"
)

// FootContactVelocity summarises foot center velocity at the detected
// strike and toe-off frames: the median over events per side, in mm/frame.
// Sides without events get no value.
func FootContactVelocity(
	markers marker.Set,
	events *models.GaitEvents,
	rightFootMarkers, leftFootMarkers []string,
) (*models.ContactVelocity, error) {
	out := &models.ContactVelocity{
		StrikeMedian: map[models.Side]*float64{},
		ToeoffMedian: map[models.Side]*float64{},
	}
	for side, names := range map[models.Side][]string{
		models.SideRight: rightFootMarkers,
		models.SideLeft:  leftFootMarkers,
	} {
		vel, err := markers.AverageVelocity(names...)
		if err != nil {
			return nil, err
		}
		speed := make([]float64, len(vel))
		for i, v := range vel {
			speed[i] = v.Norm()
		}
		if m, ok := medianAt(speed, events.Strikes[side]); ok {
			out.StrikeMedian[side] = &m
		}
		if m, ok := medianAt(speed, events.Toeoffs[side]); ok {
			out.ToeoffMedian[side] = &m
		}
	}
	return out, nil
}

func medianAt(series []float64, frames []int) (float64, bool) {
	var vals []float64
	for _, fr := range frames {
		if fr >= 0 && fr < len(series) {
			vals = append(vals, series[fr])
		}
	}
	if len(vals) == 0 {
		return 0, false
	}
	sort.Float64s(vals)
	return stat.Quantile(0.5, stat.Empirical, vals, nil), true
}
