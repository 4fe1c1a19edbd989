package emg

// AvgEMG stores precomputed, cycle-averaged RMS data. It supports only the
// RMS read path: averaged data has no meaningful raw waveform, so raw or
// filtered reads and variance screening fail explicitly instead of
// silently returning wrong data.
type AvgEMG struct {
	data map[string][]float64
}

// NewAvg builds a container over precomputed RMS data.
func NewAvg(data map[string][]float64) *AvgEMG {
	return &AvgEMG{data: data}
}

// ChannelData returns the precomputed RMS data for the channel. Requests
// for raw/filtered data (rms == false) return ErrUnsupportedOperation.
func (a *AvgEMG) ChannelData(name string, rms bool) ([]float64, error) {
	if !rms {
		return nil, ErrUnsupportedOperation
	}
	ch, err := matchName(a.data, name)
	if err != nil {
		return nil, err
	}
	return a.data[ch], nil
}

// HasChannel reports whether a channel resolves.
func (a *AvgEMG) HasChannel(name string) bool {
	_, err := matchName(a.data, name)
	return err == nil
}

// StatusOK reports channel presence. No variance screening is possible on
// averaged data.
func (a *AvgEMG) StatusOK(name string) bool {
	return a.HasChannel(name)
}
