// Package marker holds marker trajectory storage and the geometric
// reasoning used by event detection: marker averaging, walking-direction
// estimation and the foot footprint model.
package marker

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r3"
)

// ErrMissingMarker is returned when a required marker name is absent.
var ErrMissingMarker = errors.New("missing marker")

// Trajectory is a named 3-D position series with a derived velocity series.
// Zero-valued position samples are the "no data" sentinel of the capture
// system and are retained as-is.
type Trajectory struct {
	Name       string      `json:"name"`
	Positions  []r3.Vector `json:"positions"`
	Velocities []r3.Vector `json:"-"`
}

// NewTrajectory builds a trajectory and derives frame-to-frame velocities
// (central differences, one-sided at the edges; units are mm/frame).
func NewTrajectory(name string, positions []r3.Vector) Trajectory {
	return Trajectory{
		Name:       name,
		Positions:  positions,
		Velocities: gradient(positions),
	}
}

// Valid reports whether the marker has data at the given frame.
func (tr Trajectory) Valid(frame int) bool {
	if frame < 0 || frame >= len(tr.Positions) {
		return false
	}
	return tr.Positions[frame] != (r3.Vector{})
}

func gradient(p []r3.Vector) []r3.Vector {
	v := make([]r3.Vector, len(p))
	if len(p) < 2 {
		return v
	}
	v[0] = p[1].Sub(p[0])
	v[len(p)-1] = p[len(p)-1].Sub(p[len(p)-2])
	for i := 1; i < len(p)-1; i++ {
		v[i] = p[i+1].Sub(p[i-1]).Mul(0.5)
	}
	return v
}

// Set is a collection of marker trajectories for one trial, keyed by name.
type Set map[string]Trajectory

// NewSet builds a Set from raw position series.
func NewSet(positions map[string][]r3.Vector) Set {
	s := make(Set, len(positions))
	for name, p := range positions {
		s[name] = NewTrajectory(name, p)
	}
	return s
}

// Get returns the named trajectory or ErrMissingMarker.
func (s Set) Get(name string) (Trajectory, error) {
	tr, ok := s[name]
	if !ok {
		return Trajectory{}, fmt.Errorf("%w: %s", ErrMissingMarker, name)
	}
	return tr, nil
}

// Average returns the elementwise mean of the named markers' positions.
func (s Set) Average(names ...string) ([]r3.Vector, error) {
	return s.average(names, false)
}

// AverageVelocity returns the elementwise mean of the named markers'
// velocity series.
func (s Set) AverageVelocity(names ...string) ([]r3.Vector, error) {
	return s.average(names, true)
}

func (s Set) average(names []string, velocity bool) ([]r3.Vector, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no names given", ErrMissingMarker)
	}
	var out []r3.Vector
	for _, name := range names {
		tr, err := s.Get(name)
		if err != nil {
			return nil, err
		}
		series := tr.Positions
		if velocity {
			series = tr.Velocities
		}
		if out == nil {
			out = make([]r3.Vector, len(series))
		}
		for i := range series {
			out[i] = out[i].Add(series[i].Mul(1 / float64(len(names))))
		}
	}
	return out, nil
}

// CrossingFrames returns the frames where the marker's position along
// dimension dim crosses the given level. Frames near data gaps (zero
// sentinel within 10 frames of the crossing) or without a sign change
// across the crossing are discarded.
func CrossingFrames(tr Trajectory, dim int, level float64) []int {
	y := make([]float64, len(tr.Positions))
	for i, p := range tr.Positions {
		c := component(p, dim)
		if c != 0 {
			c -= level
		}
		y[i] = c
	}
	var frames []int
	for i := 0; i+1 < len(y); i++ {
		rising := y[i] <= 0 && y[i+1] > 0
		falling := y[i] >= 0 && y[i+1] < 0
		if !rising && !falling {
			continue
		}
		if i-10 <= 0 || i+10 >= len(y) {
			continue
		}
		if y[i-10] == 0 || y[i+10] == 0 {
			continue
		}
		if (y[i-10] > 0) == (y[i+10] > 0) {
			continue
		}
		frames = append(frames, i)
	}
	return frames
}

// plugInGaitRequired is the lower-body Plug-in Gait marker set.
var plugInGaitRequired = []string{
	"RASI", "LASI", "LTHI", "LKNE", "LTIB", "LANK", "LHEE", "LTOE",
	"RTHI", "RKNE", "RTIB", "RANK", "RHEE", "RTOE",
}

// IsPlugInGaitSet reports whether the set contains the Plug-in Gait
// markers (full or lower body). Either RPSI/LPSI or SACR is accepted for
// the pelvis.
func (s Set) IsPlugInGaitSet() bool {
	for _, name := range plugInGaitRequired {
		if _, ok := s[name]; !ok {
			return false
		}
	}
	_, rpsi := s["RPSI"]
	_, lpsi := s["LPSI"]
	_, sacr := s["SACR"]
	return (rpsi && lpsi) || sacr
}
