// Package source defines the read-only motion-capture source contract the
// analysis core consumes. Acquisition-system communication lives behind
// this interface; the core never performs I/O of its own.
package source

import (
	"errors"

	"github.com/golang/geo/r3"

	"github.com/gaitlab/gait-backend-go/internal/models"
)

// ErrMarkerNotFound is returned for each requested marker absent from the
// source, unless the caller opts into partial results.
var ErrMarkerNotFound = errors.New("marker not found in source")

// AnalogData is one analog device's sample series, keyed by channel name.
type AnalogData struct {
	Time     []float64            `json:"time"`
	Channels map[string][]float64 `json:"channels"`
}

// Source yields marker and analog arrays plus per-trial metadata for one
// recording. Implementations must be safe for read-only concurrent use.
type Source interface {
	// Metadata returns the trial metadata.
	Metadata() (models.Metadata, error)

	// MarkerData returns position series for the named markers. When
	// partial is false, any missing name fails with ErrMarkerNotFound;
	// when true, missing names are simply omitted.
	MarkerData(names []string, partial bool) (map[string][]r3.Vector, error)

	// ForceplateData returns one record per physical plate; empty if the
	// trial has no plates.
	ForceplateData() ([]models.ForceplateRecord, error)

	// AnalogData returns the named device's channel data (e.g. EMG).
	AnalogData(device string) (AnalogData, error)
}
