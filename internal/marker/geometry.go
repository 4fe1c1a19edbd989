package marker

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/stat"
)

var nanVector = r3.Vector{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}

// NormalizeRows normalizes each vector to unit length. Rows with zero norm
// become all-NaN vectors: the direction is undefined, and callers must
// treat NaN as "no direction" rather than an error.
func NormalizeRows(v []r3.Vector) []r3.Vector {
	out := make([]r3.Vector, len(v))
	for i, p := range v {
		n := p.Norm()
		if n == 0 {
			out[i] = nanVector
			continue
		}
		out[i] = p.Mul(1 / n)
	}
	return out
}

// PrincipalDirection returns the axis (0=x, 1=y, 2=z) of maximum variance
// of the position series. Used to auto-detect the walking direction
// without lab-frame calibration.
func PrincipalDirection(pos []r3.Vector) int {
	var sums [3][]float64
	for d := 0; d < 3; d++ {
		sums[d] = make([]float64, len(pos))
	}
	for i, p := range pos {
		sums[0][i], sums[1][i], sums[2][i] = p.X, p.Y, p.Z
	}
	best, bestVar := 0, -1.0
	for d := 0; d < 3; d++ {
		if v := stat.Variance(sums[d], nil); v > bestVar {
			best, bestVar = d, v
		}
	}
	return best
}

func component(v r3.Vector, dim int) float64 {
	switch dim {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Bounds is a per-frame 2-D bounding box in the lab xy plane.
type Bounds struct {
	Min [2]float64
	Max [2]float64
}

// Contains reports whether b lies strictly inside the outer box given by
// lower and upper corners, on both axes.
func (b Bounds) Contains(lower, upper [2]float64) bool {
	for d := 0; d < 2; d++ {
		if !(lower[d] < b.Min[d] && b.Min[d] < upper[d]) {
			return false
		}
		if !(lower[d] < b.Max[d] && b.Max[d] < upper[d]) {
			return false
		}
	}
	return true
}

// EstimateFootprint models the foot as a triangle and returns a per-frame
// conservative 2-D bounding box of its extent.
//
// The raw toe and heel markers sit on the shoe surface, not the true foot
// extremity, so the toe end is extrapolated beyond the toe marker by
// relLen times the median heel-ankle distance along the heel-toe
// direction. The lateral edges come from the ankle's perpendicular offset
// from the heel-toe line, and the heel edge is pushed forward by half the
// physical marker diameter. Frames with a degenerate heel-toe direction
// produce NaN bounds.
func EstimateFootprint(heel, toe, ankle []r3.Vector, relLen, markerDiam float64) []Bounds {
	n := len(heel)
	out := make([]Bounds, n)

	// median heel-ankle distance over the trial
	haLens := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		haLens = append(haLens, ankle[i].Sub(heel[i]).Norm())
	}
	sort.Float64s(haLens)
	medHA := stat.Quantile(0.5, stat.Empirical, haLens, nil)

	for i := 0; i < n; i++ {
		htV := toe[i].Sub(heel[i])
		htn := htV.Norm()
		if htn == 0 {
			out[i] = Bounds{
				Min: [2]float64{math.NaN(), math.NaN()},
				Max: [2]float64{math.NaN(), math.NaN()},
			}
			continue
		}
		htVn := htV.Mul(1 / htn)

		haV := ankle[i].Sub(heel[i])
		// lateral ankle vector: heel-ankle minus its projection on heel-toe
		lank := haV.Sub(htVn.Mul(haV.Dot(htVn)))

		footEnd := heel[i].Add(htVn.Mul(medHA * relLen))
		latEdge := footEnd.Add(lank)
		medEdge := footEnd.Sub(lank)
		heelEdge := heel[i].Add(htVn.Mul(markerDiam / 2))

		out[i] = Bounds{
			Min: [2]float64{
				math.Min(heelEdge.X, math.Min(latEdge.X, medEdge.X)),
				math.Min(heelEdge.Y, math.Min(latEdge.Y, medEdge.Y)),
			},
			Max: [2]float64{
				math.Max(heelEdge.X, math.Max(latEdge.X, medEdge.X)),
				math.Max(heelEdge.Y, math.Max(latEdge.Y, medEdge.Y)),
			},
		}
	}
	return out
}
