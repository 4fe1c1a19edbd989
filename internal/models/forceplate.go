package models

import "github.com/golang/geo/r3"

// ForceplateRecord holds one physical plate's time series at analog rate,
// in world/lab coordinates (mm, N). Read-only after construction.
type ForceplateRecord struct {
	// Total vertical force per analog sample.
	ForceTotal []float64 `json:"force_total"`

	// Force and moment vectors per analog sample.
	Force  []r3.Vector `json:"force,omitempty"`
	Moment []r3.Vector `json:"moment,omitempty"`

	// Center of pressure trajectory per analog sample.
	CoP []r3.Vector `json:"cop"`

	// Plate footprint corners in the lab frame (x, y).
	LowerBounds [2]float64 `json:"lower_bounds"`
	UpperBounds [2]float64 `json:"upper_bounds"`
}

// Metadata describes a trial as reported by the motion-capture source.
type Metadata struct {
	Name            string   `json:"name"`
	FrameRate       float64  `json:"frame_rate"`
	AnalogRate      float64  `json:"analog_rate"`
	FrameCount      int      `json:"frame_count"`
	SamplesPerFrame float64  `json:"samples_per_frame"`
	BodyMass        *float64 `json:"body_mass,omitempty"`
	ForceplateCount int      `json:"forceplate_count"`
}
