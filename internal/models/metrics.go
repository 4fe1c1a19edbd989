package models

// StepWidth holds the trial-level step width per side, in millimeters.
// A nil value means the metric is undefined for that side (fewer than two
// strikes detected).
type StepWidth struct {
	Left  *float64 `json:"left,omitempty"`
	Right *float64 `json:"right,omitempty"`
}

// ContactVelocity summarises foot marker speed at detected events, one
// median value per event type and side (mm/frame).
type ContactVelocity struct {
	StrikeMedian map[Side]*float64 `json:"strike_median"`
	ToeoffMedian map[Side]*float64 `json:"toeoff_median"`
}

// AnalysisResult is the full output of one analysis pass over a trial.
type AnalysisResult struct {
	TrialID   int64         `json:"trial_id"`
	Events    *GaitEvents   `json:"events"`
	Plates    []PlateResult `json:"plates"`
	StepWidth *StepWidth    `json:"step_width,omitempty"`
}
