// Package detect implements forceplate gait event detection: given a
// trial's force/CoP series, marker geometry and subject mass, it emits
// validated foot-strike and toe-off frames per side.
package detect

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/gaitlab/gait-backend-go/internal/config"
	"github.com/gaitlab/gait-backend-go/internal/marker"
	"github.com/gaitlab/gait-backend-go/internal/models"
	"github.com/gaitlab/gait-backend-go/internal/signal"
)

// ErrAmbiguousContact is returned when both feet pass the on-plate check
// for the same contact. This is a data inconsistency that must be surfaced
// to the caller, never silently resolved by picking one side.
var ErrAmbiguousContact = errors.New("valid contact for both feet on one plate")

const gravity = 9.81 // m/s^2

// Detector runs forceplate event detection with a fixed threshold
// configuration. Plates are evaluated independently, so the result does
// not depend on plate order, and repeated runs over the same inputs give
// identical results.
type Detector struct {
	cfg config.Proc
}

// New returns a detector using the given thresholds.
func New(cfg config.Proc) *Detector {
	return &Detector{cfg: cfg}
}

// Run detects forceplate events for a trial.
//
// assign supplies optional externally decided per-plate side assignments,
// keyed by plate index. A known side is treated as ground truth and skips
// force/geometry validation (strike and toe-off frames are still extracted
// from the force signal); Invalid skips the plate; Auto (or no entry) runs
// full detection.
//
// Per-plate rejections are normal outcomes reported in the plate results;
// the only fatal condition is an ambiguous contact.
func (d *Detector) Run(
	trial *models.Trial,
	markers marker.Set,
	plates []models.ForceplateRecord,
	assign map[int]models.SideAssignment,
) (*models.GaitEvents, []models.PlateResult, error) {
	events := models.NewGaitEvents()
	results := make([]models.PlateResult, 0, len(plates))

	footMarkers := append(append([]string{}, d.cfg.RightFootMarkers...), d.cfg.LeftFootMarkers...)
	footPos, err := markers.Average(footMarkers...)
	if err != nil {
		return nil, nil, fmt.Errorf("walking direction: %w", err)
	}
	fwd := marker.PrincipalDirection(footPos)
	log.Printf("[Detector] gait forward direction seems to be %s", [3]string{"x", "y", "z"}[fwd])

	// Per-side foot footprints, shared by all plates.
	footprints := map[models.Side][]marker.Bounds{}
	for side, names := range map[models.Side][]string{
		models.SideRight: d.cfg.RightFootMarkers,
		models.SideLeft:  d.cfg.LeftFootMarkers,
	} {
		fp, err := d.footprint(markers, names)
		if err != nil {
			return nil, nil, fmt.Errorf("foot footprint for side %s: %w", side, err)
		}
		footprints[side] = fp
	}

	for i, plate := range plates {
		res, err := d.analyzePlate(trial, plate, i, assign[i], fwd, footprints)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, res)
		if res.Outcome == models.PlateAccepted {
			events.Add(res.Side, res.StrikeFrame, res.ToeoffFrame)
		}
	}
	return events, results, nil
}

// footprint builds the per-frame foot bounding boxes for one side's
// heel/toe/ankle marker triple.
func (d *Detector) footprint(markers marker.Set, names []string) ([]marker.Bounds, error) {
	if len(names) != 3 {
		return nil, fmt.Errorf("%w: expected heel/toe/ankle, got %v", marker.ErrMissingMarker, names)
	}
	heel, err := markers.Get(names[0])
	if err != nil {
		return nil, err
	}
	toe, err := markers.Get(names[1])
	if err != nil {
		return nil, err
	}
	ankle, err := markers.Get(names[2])
	if err != nil {
		return nil, err
	}
	return marker.EstimateFootprint(
		heel.Positions, toe.Positions, ankle.Positions,
		d.cfg.FootRelativeLen, d.cfg.MarkerDiameter,
	), nil
}

// analyzePlate evaluates a single plate. Each plate reaches exactly one
// terminal outcome; there is no retry.
func (d *Detector) analyzePlate(
	trial *models.Trial,
	plate models.ForceplateRecord,
	plateIdx int,
	assigned models.SideAssignment,
	fwd int,
	footprints map[models.Side][]marker.Bounds,
) (models.PlateResult, error) {
	res := models.PlateResult{PlateIndex: plateIdx}

	autoDetect := true
	var side models.Side
	switch assigned {
	case models.AssignLeft:
		side, autoDetect = models.SideLeft, false
	case models.AssignRight:
		side, autoDetect = models.SideRight, false
	case models.AssignInvalid:
		log.Printf("[Detector] plate %d: externally marked invalid, skipping", plateIdx)
		res.Outcome = models.PlateSkippedInvalid
		return res, nil
	}

	forcetot := signal.Baseline(signal.MedianFilter(plate.ForceTotal, d.cfg.MedianKernel))
	if len(forcetot) == 0 {
		res.Outcome = models.PlateForceRejected
		return res, nil
	}
	fmax := forcetot[0]
	for _, v := range forcetot {
		if v > fmax {
			fmax = v
		}
	}
	log.Printf("[Detector] plate %d: max force %.2f N", plateIdx, fmax)

	var threshold float64
	if trial.BodyMass == nil {
		threshold = d.cfg.RelContactFraction * fmax
		log.Printf("[Detector] plate %d: body mass unknown, thresholding force at %.2f N (degraded confidence)",
			plateIdx, threshold)
	} else {
		mass := *trial.BodyMass
		threshold = d.cfg.RelContactFraction * mass * gravity
		if autoDetect && fmax < d.cfg.MinWeightFraction*mass*gravity {
			log.Printf("[Detector] plate %d: insufficient max force for a full-weight strike", plateIdx)
			res.Outcome = models.PlateWeightRejected
			return res, nil
		}
	}

	shifted := make([]float64, len(forcetot))
	for i, v := range forcetot {
		shifted[i] = v - threshold
	}
	rises := signal.RisingZeroCross(shifted)
	falls := signal.FallingZeroCross(shifted)
	if len(rises) == 0 || len(falls) == 0 {
		log.Printf("[Detector] plate %d: cannot detect force rise/fall", plateIdx)
		res.Outcome = models.PlateForceRejected
		return res, nil
	}
	frise := rises[0]
	ffall := falls[len(falls)-1]

	spf := trial.SamplesPerFrame()
	strikeFrame := frameIndex(frise, spf, trial.FrameCount)
	toeoffFrame := frameIndex(ffall, spf, trial.FrameCount)
	if toeoffFrame <= strikeFrame {
		log.Printf("[Detector] plate %d: degenerate contact interval", plateIdx)
		res.Outcome = models.PlateForceRejected
		return res, nil
	}
	log.Printf("[Detector] plate %d: strike @ frame %d, toeoff @ %d", plateIdx, strikeFrame, toeoffFrame)

	if autoDetect {
		// CoP must stay put during contact; a large excursion along the
		// walking direction is the signature of a double contact.
		if frise >= len(plate.CoP) || ffall > len(plate.CoP) || frise >= ffall {
			log.Printf("[Detector] plate %d: no CoP for contact range", plateIdx)
			res.Outcome = models.PlateCoPRejected
			return res, nil
		}
		copMin, copMax := math.Inf(1), math.Inf(-1)
		for _, p := range plate.CoP[frise:ffall] {
			c := axisComponent(p.X, p.Y, p.Z, fwd)
			if c < copMin {
				copMin = c
			}
			if c > copMax {
				copMax = c
			}
		}
		if shift := copMax - copMin; shift > d.cfg.CoPShiftMax {
			log.Printf("[Detector] plate %d: CoP shifts %.2f mm (double contact?)", plateIdx, shift)
			res.Outcome = models.PlateCoPRejected
			return res, nil
		}

		// Let the foot settle after the strike, then require the estimated
		// footprint to lie entirely within the plate. Exactly one side may
		// pass; both passing is a fatal data inconsistency.
		settle := int(d.cfg.SettleMs / 1000 * trial.FrameRate)
		fr0 := strikeFrame + settle
		if fr0 >= trial.FrameCount {
			fr0 = trial.FrameCount - 1
		}
		var valid models.Side
		for _, s := range []models.Side{models.SideRight, models.SideLeft} {
			fp := footprints[s]
			if fr0 >= len(fp) {
				continue
			}
			if fp[fr0].Contains(plate.LowerBounds, plate.UpperBounds) {
				if valid != "" {
					return res, fmt.Errorf("plate %d: %w", plateIdx, ErrAmbiguousContact)
				}
				valid = s
				log.Printf("[Detector] plate %d: on-plate check ok for side %s", plateIdx, s)
			}
		}
		if valid == "" {
			log.Printf("[Detector] plate %d: no foot fully on plate", plateIdx)
			res.Outcome = models.PlateGeometryRejected
			return res, nil
		}
		side = valid
	}

	res.Outcome = models.PlateAccepted
	res.Side = side
	res.StrikeFrame = strikeFrame
	res.ToeoffFrame = toeoffFrame
	log.Printf("[Detector] plate %d: valid foot strike on %s at frame %d", plateIdx, side, strikeFrame)
	return res, nil
}

// frameIndex converts an analog sample index to a 0-based frame index.
func frameIndex(analogIdx int, samplesPerFrame float64, frameCount int) int {
	if samplesPerFrame <= 0 {
		return 0
	}
	fr := int(math.Round(float64(analogIdx) / samplesPerFrame))
	if fr < 0 {
		fr = 0
	}
	if frameCount > 0 && fr >= frameCount {
		fr = frameCount - 1
	}
	return fr
}

func axisComponent(x, y, z float64, dim int) float64 {
	switch dim {
	case 0:
		return x
	case 1:
		return y
	default:
		return z
	}
}
