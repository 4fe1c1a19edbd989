// Package emg models per-trial EMG data: fuzzy channel name resolution,
// band-pass filtering, moving-window RMS and channel validity screening.
package emg

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/gaitlab/gait-backend-go/internal/config"
	"github.com/gaitlab/gait-backend-go/internal/models"
	"github.com/gaitlab/gait-backend-go/internal/signal"
)

var (
	// ErrNoMatchingChannel is returned when no channel name contains the
	// requested short name.
	ErrNoMatchingChannel = errors.New("no matching channel")

	// ErrUnsupportedOperation is returned by the averaged-RMS variant for
	// read paths that have no meaning on precomputed RMS data.
	ErrUnsupportedOperation = errors.New("unsupported operation for averaged EMG")
)

// EMG holds raw EMG channel data for one trial. Filtered and RMS views are
// derived on demand and not cached: recomputation is cheap and correctness
// matters more than caching.
type EMG struct {
	channels   map[string][]float64
	sampleRate float64
	cfg        config.EMG
	correction float64
}

// New builds an EMG container. correction is a per-instance multiplicative
// factor applied to all returned data; pass 1 for none.
func New(channels map[string][]float64, sampleRate float64, cfg config.EMG, correction float64) *EMG {
	if correction == 0 {
		correction = 1
	}
	return &EMG{
		channels:   channels,
		sampleRate: sampleRate,
		cfg:        cfg,
		correction: correction,
	}
}

// matchName resolves a short channel name against the available channels
// by substring match, picking the shortest match among all hits. This
// disambiguates a name from its derived variants ("Voltage.LGas8" wins
// over "Voltage.LGas8_filtered"). Multiple hits are logged, not fatal.
func matchName(channels map[string][]float64, name string) (string, error) {
	if len(name) < 2 {
		return "", fmt.Errorf("%w: invalid channel name %q", ErrNoMatchingChannel, name)
	}
	var matches []string
	for ch := range channels {
		if strings.Contains(ch, name) {
			matches = append(matches, ch)
		}
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoMatchingChannel, name)
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if len(m) < len(best) {
			best = m
		}
	}
	if len(matches) > 1 {
		log.Printf("[EMG] multiple channel matches for %s: %v -> %s", name, matches, best)
	}
	return best, nil
}

// ChannelData returns the channel's data, band-pass filtered per the
// configured passband. When rms is true a moving-window RMS is returned
// instead and no band-pass is applied, since RMS is already a smoothing
// operator. The correction factor is applied as the final step.
func (e *EMG) ChannelData(name string, rms bool) ([]float64, error) {
	ch, err := matchName(e.channels, name)
	if err != nil {
		return nil, err
	}
	data := e.channels[ch]
	if rms {
		data = signal.MovingRMS(data, e.cfg.RMSWindow)
	} else {
		data, err = signal.FiltFilt(data, e.cfg.Passband, e.sampleRate, 0)
		if err != nil {
			return nil, fmt.Errorf("filtering channel %s: %w", ch, err)
		}
	}
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = v * e.correction
	}
	return out, nil
}

// HasChannel reports whether a channel resolves.
func (e *EMG) HasChannel(name string) bool {
	_, err := matchName(e.channels, name)
	return err == nil
}

// StatusOK reports whether the channel exists and carries a valid EMG
// signal: not on the disabled list, and raw-data variance within the
// configured band. Out-of-band variance indicates a disconnected or
// saturated lead.
func (e *EMG) StatusOK(name string) bool {
	ch, err := matchName(e.channels, name)
	if err != nil {
		return false
	}
	for _, d := range e.cfg.DisabledChannels {
		if d == name || d == ch {
			return false
		}
	}
	v := stat.Variance(e.channels[ch], nil)
	return e.cfg.VarianceMin < v && v < e.cfg.VarianceMax
}

// ContextOK reports whether a configured channel name matches the given
// side. Channels without a configured side match any side; the comparison
// is case-insensitive.
func (e *EMG) ContextOK(name string, side models.Side) bool {
	ctx, ok := e.cfg.ChannelContext[name]
	if !ok {
		return true
	}
	return strings.EqualFold(ctx, string(side))
}
