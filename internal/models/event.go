package models

// EventKind distinguishes the two gait events a forceplate can yield.
type EventKind string

const (
	EventStrike EventKind = "strike"
	EventToeoff EventKind = "toeoff"
)

// GaitEvent is a single detected event. Produced exclusively by the
// forceplate event detector; never mutated afterwards.
type GaitEvent struct {
	ID      int64     `json:"id,omitempty" db:"id"`
	TrialID int64     `json:"trial_id,omitempty" db:"trial_id"`
	Side    Side      `json:"side" db:"side"`
	Kind    EventKind `json:"kind" db:"kind"`
	Frame   int       `json:"frame" db:"frame"`
}

// GaitEvents collects the detector output for one trial: per-side strike and
// toe-off frame lists plus the set of sides with at least one valid plate
// contact. Frame lists are 0-based and ordered by plate acceptance.
type GaitEvents struct {
	Strikes map[Side][]int `json:"strikes"`
	Toeoffs map[Side][]int `json:"toeoffs"`
	Valid   map[Side]bool  `json:"valid"`
}

// NewGaitEvents returns an empty event set with both sides present, so that
// "no events for side X" is representable as an empty list rather than a
// missing key.
func NewGaitEvents() *GaitEvents {
	return &GaitEvents{
		Strikes: map[Side][]int{SideLeft: {}, SideRight: {}},
		Toeoffs: map[Side][]int{SideLeft: {}, SideRight: {}},
		Valid:   map[Side]bool{},
	}
}

// Add records an accepted plate contact for the given side.
func (e *GaitEvents) Add(side Side, strikeFrame, toeoffFrame int) {
	e.Strikes[side] = append(e.Strikes[side], strikeFrame)
	e.Toeoffs[side] = append(e.Toeoffs[side], toeoffFrame)
	e.Valid[side] = true
}

// Flatten converts the per-side lists into a flat event slice for storage.
func (e *GaitEvents) Flatten(trialID int64) []GaitEvent {
	var out []GaitEvent
	for _, side := range []Side{SideLeft, SideRight} {
		for _, fr := range e.Strikes[side] {
			out = append(out, GaitEvent{TrialID: trialID, Side: side, Kind: EventStrike, Frame: fr})
		}
		for _, fr := range e.Toeoffs[side] {
			out = append(out, GaitEvent{TrialID: trialID, Side: side, Kind: EventToeoff, Frame: fr})
		}
	}
	return out
}

// SideAssignment is an externally supplied per-plate hint. Known sides are
// treated as ground truth and skip force/geometry validation; Invalid skips
// the plate entirely; Auto runs the full detection.
type SideAssignment string

const (
	AssignAuto    SideAssignment = "auto"
	AssignLeft    SideAssignment = "left"
	AssignRight   SideAssignment = "right"
	AssignInvalid SideAssignment = "invalid"
)

// PlateOutcome is the terminal state of one plate's evaluation. Every plate
// is evaluated exactly once per detector invocation; rejections are normal
// outcomes, not errors.
type PlateOutcome string

const (
	PlateAccepted         PlateOutcome = "accepted"
	PlateForceRejected    PlateOutcome = "force_rejected"
	PlateWeightRejected   PlateOutcome = "weight_rejected"
	PlateCoPRejected      PlateOutcome = "cop_rejected"
	PlateGeometryRejected PlateOutcome = "geometry_rejected"
	PlateSkippedInvalid   PlateOutcome = "skipped_invalid"
)

// PlateResult reports how a single plate was resolved.
type PlateResult struct {
	PlateIndex  int          `json:"plate_index"`
	Outcome     PlateOutcome `json:"outcome"`
	Side        Side         `json:"side,omitempty"`
	StrikeFrame int          `json:"strike_frame,omitempty"`
	ToeoffFrame int          `json:"toeoff_frame,omitempty"`
}
