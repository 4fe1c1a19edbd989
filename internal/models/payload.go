package models

// TrialPayload is the wire format for ingesting one trial's materialized
// recording data. Vector series use [x, y, z] triples in lab coordinates
// (mm); forceplate series are at analog rate.
type TrialPayload struct {
	Name       string   `json:"name" binding:"required"`
	FrameRate  float64  `json:"frame_rate" binding:"required"`
	AnalogRate float64  `json:"analog_rate" binding:"required"`
	FrameCount int      `json:"frame_count" binding:"required"`
	BodyMass   *float64 `json:"body_mass,omitempty"`

	Markers     map[string][][3]float64  `json:"markers"`
	Forceplates []ForceplatePayload      `json:"forceplates"`
	Analog      map[string]AnalogPayload `json:"analog,omitempty"`
}

// ForceplatePayload is one plate's series in the ingestion wire format.
type ForceplatePayload struct {
	ForceTotal  []float64    `json:"force_total"`
	Force       [][3]float64 `json:"force,omitempty"`
	Moment      [][3]float64 `json:"moment,omitempty"`
	CoP         [][3]float64 `json:"cop"`
	LowerBounds [2]float64   `json:"lower_bounds"`
	UpperBounds [2]float64   `json:"upper_bounds"`
}

// AnalogPayload is one analog device's channels in the wire format.
type AnalogPayload struct {
	Time     []float64            `json:"time,omitempty"`
	Channels map[string][]float64 `json:"channels"`
}

// AnalyzeRequest carries optional per-plate side assignments for an
// analysis run, keyed by plate index.
type AnalyzeRequest struct {
	SideAssignments map[int]SideAssignment `json:"side_assignments,omitempty"`
}
