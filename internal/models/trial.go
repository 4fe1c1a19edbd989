package models

import "time"

// Side identifies the anatomical side of a gait event or EMG channel.
type Side string

const (
	SideLeft  Side = "L"
	SideRight Side = "R"
)

// Opposite returns the contralateral side.
func (s Side) Opposite() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// Trial represents one recording session segment. It is constructed from a
// motion-capture source at analysis start and is immutable afterwards, except
// for the event fields populated by the detector.
type Trial struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	// Acquisition rates. AnalogRate is an integer multiple of FrameRate.
	FrameRate  float64 `json:"frame_rate" db:"frame_rate"`
	AnalogRate float64 `json:"analog_rate" db:"analog_rate"`
	FrameCount int     `json:"frame_count" db:"frame_count"`

	// Subject body mass in kg; nil when unknown.
	BodyMass *float64 `json:"body_mass,omitempty" db:"body_mass"`

	ForceplateCount int `json:"forceplate_count" db:"forceplate_count"`

	// Populated by the detector.
	Events *GaitEvents `json:"events,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SamplesPerFrame returns the number of analog samples per capture frame.
func (t *Trial) SamplesPerFrame() float64 {
	if t.FrameRate == 0 {
		return 0
	}
	return t.AnalogRate / t.FrameRate
}

// TrialFilter holds query parameters for listing trials.
type TrialFilter struct {
	Name     string `form:"name"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}
