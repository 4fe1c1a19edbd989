// Package metrics computes spatial gait metrics from detected events and
// marker trajectories.
package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/gaitlab/gait-backend-go/internal/marker"
	"github.com/gaitlab/gait-backend-go/internal/models"
)

// StepWidth computes the trial-level step width per side, in millimeters,
// averaged over all gait cycles. For every consecutive ipsilateral strike
// pair the contralateral toe position is projected onto the step line and
// the perpendicular residual is one step-width sample. A side with fewer
// than two strikes has no defined step width.
func StepWidth(markers marker.Set, events *models.GaitEvents) (*models.StepWidth, error) {
	out := &models.StepWidth{}
	for _, side := range []models.Side{models.SideLeft, models.SideRight} {
		samples, err := stepWidthSamples(markers, events, side)
		if err != nil {
			return nil, err
		}
		if len(samples) == 0 {
			continue
		}
		mean := stat.Mean(samples, nil)
		switch side {
		case models.SideLeft:
			out.Left = &mean
		case models.SideRight:
			out.Right = &mean
		}
	}
	return out, nil
}

func stepWidthSamples(markers marker.Set, events *models.GaitEvents, side models.Side) ([]float64, error) {
	strikes := events.Strikes[side]
	if len(strikes) < 2 {
		return nil, nil
	}
	coStrikes := events.Strikes[side.Opposite()]

	toe, err := markers.Get(string(side) + "TOE")
	if err != nil {
		return nil, fmt.Errorf("step width for side %s: %w", side, err)
	}
	coToe, err := markers.Get(string(side.Opposite()) + "TOE")
	if err != nil {
		return nil, fmt.Errorf("step width for side %s: %w", side, err)
	}

	var samples []float64
	for j := 0; j+1 < len(strikes); j++ {
		strike, next := strikes[j], strikes[j+1]
		if strike >= len(toe.Positions) || next >= len(toe.Positions) {
			continue
		}
		// first contralateral strike after this one
		coNext := -1
		for _, k := range coStrikes {
			if k > strike {
				coNext = k
				break
			}
		}
		if coNext < 0 || coNext >= len(coToe.Positions) {
			break
		}

		posThis := toe.Positions[strike]
		posNext := toe.Positions[next]
		posCo := coToe.Positions[coNext]

		// step line direction
		v1 := posNext.Sub(posThis)
		n := v1.Norm()
		if n == 0 {
			continue
		}
		v1 = v1.Mul(1 / n)

		// perpendicular residual of the contralateral toe position
		vc := posCo.Sub(posThis)
		vcp := v1.Mul(vc.Dot(v1))
		samples = append(samples, vcp.Sub(vc).Norm())
	}
	return samples, nil
}
