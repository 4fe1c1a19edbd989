package source

import (
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/gaitlab/gait-backend-go/internal/models"
)

// MemorySource serves already-materialized trial data. It backs both the
// ingestion path (payloads received over the API) and tests.
type MemorySource struct {
	meta    models.Metadata
	markers map[string][]r3.Vector
	plates  []models.ForceplateRecord
	analog  map[string]AnalogData
}

// FromPayload builds a MemorySource from an ingested trial payload.
func FromPayload(p *models.TrialPayload) *MemorySource {
	markers := make(map[string][]r3.Vector, len(p.Markers))
	for name, series := range p.Markers {
		markers[name] = toVectors(series)
	}

	plates := make([]models.ForceplateRecord, 0, len(p.Forceplates))
	for _, fp := range p.Forceplates {
		plates = append(plates, models.ForceplateRecord{
			ForceTotal:  fp.ForceTotal,
			Force:       toVectors(fp.Force),
			Moment:      toVectors(fp.Moment),
			CoP:         toVectors(fp.CoP),
			LowerBounds: fp.LowerBounds,
			UpperBounds: fp.UpperBounds,
		})
	}

	analog := make(map[string]AnalogData, len(p.Analog))
	for device, a := range p.Analog {
		analog[device] = AnalogData{Time: a.Time, Channels: a.Channels}
	}

	spf := 0.0
	if p.FrameRate > 0 {
		spf = p.AnalogRate / p.FrameRate
	}
	return &MemorySource{
		meta: models.Metadata{
			Name:            p.Name,
			FrameRate:       p.FrameRate,
			AnalogRate:      p.AnalogRate,
			FrameCount:      p.FrameCount,
			SamplesPerFrame: spf,
			BodyMass:        p.BodyMass,
			ForceplateCount: len(p.Forceplates),
		},
		markers: markers,
		plates:  plates,
		analog:  analog,
	}
}

func toVectors(series [][3]float64) []r3.Vector {
	if series == nil {
		return nil
	}
	out := make([]r3.Vector, len(series))
	for i, v := range series {
		out[i] = r3.Vector{X: v[0], Y: v[1], Z: v[2]}
	}
	return out
}

// Metadata implements Source.
func (m *MemorySource) Metadata() (models.Metadata, error) {
	return m.meta, nil
}

// MarkerData implements Source.
func (m *MemorySource) MarkerData(names []string, partial bool) (map[string][]r3.Vector, error) {
	out := make(map[string][]r3.Vector, len(names))
	for _, name := range names {
		series, ok := m.markers[name]
		if !ok {
			if partial {
				continue
			}
			return nil, fmt.Errorf("%w: %s", ErrMarkerNotFound, name)
		}
		out[name] = series
	}
	return out, nil
}

// MarkerNames returns all marker names present in the source.
func (m *MemorySource) MarkerNames() []string {
	names := make([]string, 0, len(m.markers))
	for name := range m.markers {
		names = append(names, name)
	}
	return names
}

// ForceplateData implements Source.
func (m *MemorySource) ForceplateData() ([]models.ForceplateRecord, error) {
	return m.plates, nil
}

// AnalogData implements Source.
func (m *MemorySource) AnalogData(device string) (AnalogData, error) {
	a, ok := m.analog[device]
	if !ok {
		return AnalogData{}, fmt.Errorf("no analog device %q", device)
	}
	return a, nil
}
