package signal

import (
	"errors"
	"math"
	"math/cmplx"
)

// ErrInvalidPassband is returned when a filter passband spec is malformed.
var ErrInvalidPassband = errors.New("passband must be a vector of length 2")

// DefaultFilterOrder is the Butterworth order used when callers pass 0.
const DefaultFilterOrder = 5

// biquad is a single second-order section in z^-1 form, a0 normalized to 1.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// FiltFilt designs a Butterworth filter for the given passband (Hz) and
// applies it to data forward and backward, for zero phase distortion.
//
// passband == nil is the identity. passband[0] == 0 gives a pure low-pass
// at passband[1]; passband[1] == 0 a pure high-pass at passband[0];
// otherwise a band-pass. A spec that is not length 2, or whose corner
// frequencies fall outside (0, Nyquist), returns ErrInvalidPassband.
func FiltFilt(data []float64, passband []float64, sampleRate float64, order int) ([]float64, error) {
	if passband == nil {
		out := make([]float64, len(data))
		copy(out, data)
		return out, nil
	}
	if len(passband) != 2 {
		return nil, ErrInvalidPassband
	}
	if order <= 0 {
		order = DefaultFilterOrder
	}
	sections, err := butterworth(passband[0], passband[1], sampleRate, order)
	if err != nil {
		return nil, err
	}
	return filtfilt(sections, data), nil
}

// butterworth designs the filter as cascaded second-order sections via the
// analog prototype and bilinear transform. low == 0 selects low-pass at
// high, high == 0 selects high-pass at low.
func butterworth(low, high, sampleRate float64, order int) ([]biquad, error) {
	nyq := sampleRate / 2
	if low < 0 || high < 0 || (low == 0 && high == 0) {
		return nil, ErrInvalidPassband
	}
	if low >= nyq || high >= nyq || (low != 0 && high != 0 && low >= high) {
		return nil, ErrInvalidPassband
	}

	fs2 := 2 * sampleRate
	// Bilinear prewarp of a corner frequency in Hz.
	warp := func(f float64) float64 {
		return fs2 * math.Tan(math.Pi*f/sampleRate)
	}

	// Analog Butterworth prototype poles on the unit circle, left half plane.
	proto := make([]complex128, order)
	for k := 0; k < order; k++ {
		theta := math.Pi * float64(2*k+order+1) / float64(2*order)
		proto[k] = cmplx.Exp(complex(0, theta))
	}

	var apoles []complex128 // analog poles after frequency transform
	var nzHigh, nzLow int   // digital zeros at z=+1 (from s=0) and z=-1 (pole deficit)
	var zref complex128     // unit-circle point where gain is normalized to 1

	switch {
	case low == 0: // low-pass at high
		wc := warp(high)
		for _, p := range proto {
			apoles = append(apoles, complex(wc, 0)*p)
		}
		nzLow = order
		zref = 1
	case high == 0: // high-pass at low
		wc := warp(low)
		for _, p := range proto {
			apoles = append(apoles, complex(wc, 0)/p)
		}
		nzHigh = order
		zref = -1
	default: // band-pass
		w1, w2 := warp(low), warp(high)
		w0 := math.Sqrt(w1 * w2)
		bw := w2 - w1
		for _, p := range proto {
			pb := p * complex(bw/2, 0)
			d := cmplx.Sqrt(pb*pb - complex(w0*w0, 0))
			apoles = append(apoles, pb+d, pb-d)
		}
		nzHigh = order
		nzLow = order
		// normalize at the mapped center frequency
		wd := 2 * math.Atan(w0/fs2)
		zref = cmplx.Exp(complex(0, wd))
	}

	// Bilinear transform of the poles.
	dpoles := make([]complex128, len(apoles))
	for i, p := range apoles {
		dpoles[i] = (complex(fs2, 0) + p) / (complex(fs2, 0) - p)
	}

	sections := pairSections(dpoles, nzHigh, nzLow)

	// Normalize overall gain to 1 at the reference frequency.
	g := complex(1, 0)
	zi := 1 / zref
	for _, s := range sections {
		num := complex(s.b0, 0) + complex(s.b1, 0)*zi + complex(s.b2, 0)*zi*zi
		den := complex(1, 0) + complex(s.a1, 0)*zi + complex(s.a2, 0)*zi*zi
		g *= num / den
	}
	k := 1 / cmplx.Abs(g)
	sections[0].b0 *= k
	sections[0].b1 *= k
	sections[0].b2 *= k
	return sections, nil
}

// pairSections groups digital poles into second-order sections and
// distributes the real zeros (nzHigh at z=+1, nzLow at z=-1) across them.
func pairSections(poles []complex128, nzHigh, nzLow int) []biquad {
	const tol = 1e-10

	// Complex poles arrive in conjugate pairs: keep one of each. Real
	// poles are paired among themselves, a possible leftover makes a
	// first-order section.
	var pairs [][2]complex128 // second-order pole pairs
	var reals []float64
	for _, p := range poles {
		if imag(p) > tol {
			pairs = append(pairs, [2]complex128{p, cmplx.Conj(p)})
		} else if imag(p) >= -tol {
			reals = append(reals, real(p))
		}
	}
	for len(reals) >= 2 {
		pairs = append(pairs, [2]complex128{complex(reals[0], 0), complex(reals[1], 0)})
		reals = reals[2:]
	}

	// Zero picker: hand out one zero at a time, alternating so band-pass
	// sections get one of each sign.
	nextZero := func() (float64, bool) {
		if nzHigh >= nzLow && nzHigh > 0 {
			nzHigh--
			return 1, true
		}
		if nzLow > 0 {
			nzLow--
			return -1, true
		}
		return 0, false
	}

	var sections []biquad
	for _, pp := range pairs {
		s := biquad{
			a1: -real(pp[0] + pp[1]),
			a2: real(pp[0] * pp[1]),
		}
		z1, ok1 := nextZero()
		z2, ok2 := nextZero()
		switch {
		case ok1 && ok2:
			s.b0, s.b1, s.b2 = 1, -(z1 + z2), z1*z2
		case ok1:
			s.b0, s.b1 = 1, -z1
		default:
			s.b0 = 1
		}
		sections = append(sections, s)
	}
	if len(reals) == 1 {
		s := biquad{a1: -reals[0]}
		if z, ok := nextZero(); ok {
			s.b0, s.b1 = 1, -z
		} else {
			s.b0 = 1
		}
		sections = append(sections, s)
	}
	return sections
}

// sectionZi returns the per-section steady-state filter state for a unit
// constant input, so that a pass can start without a settling transient
// (Gustafsson-style initialization, scaled by the first sample of each pass).
func sectionZi(sections []biquad) [][2]float64 {
	zi := make([][2]float64, len(sections))
	x := 1.0
	for i, s := range sections {
		den := 1 + s.a1 + s.a2
		var y float64
		if den != 0 {
			y = x * (s.b0 + s.b1 + s.b2) / den
		}
		z2 := s.b2*x - s.a2*y
		z1 := s.b1*x - s.a1*y + z2
		zi[i] = [2]float64{z1, z2}
		x = y
	}
	return zi
}

// runCascade filters data in place through the section cascade (direct
// form II transposed), with initial state zi scaled by scale.
func runCascade(sections []biquad, zi [][2]float64, scale float64, data []float64) {
	state := make([][2]float64, len(sections))
	for i := range zi {
		state[i][0] = zi[i][0] * scale
		state[i][1] = zi[i][1] * scale
	}
	for n, x := range data {
		for i := range sections {
			s := &sections[i]
			y := s.b0*x + state[i][0]
			state[i][0] = s.b1*x - s.a1*y + state[i][1]
			state[i][1] = s.b2*x - s.a2*y
			x = y
		}
		data[n] = x
	}
}

// filtfilt applies the section cascade forward and backward over an
// odd-reflection extension of the data, removing phase distortion and
// suppressing edge transients.
func filtfilt(sections []biquad, data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return []float64{}
	}
	pad := 3 * (2*len(sections) + 1)
	if pad >= n {
		pad = n - 1
	}

	ext := make([]float64, 0, n+2*pad)
	for i := pad; i >= 1; i-- {
		ext = append(ext, 2*data[0]-data[i])
	}
	ext = append(ext, data...)
	for i := 1; i <= pad; i++ {
		ext = append(ext, 2*data[n-1]-data[n-1-i])
	}

	zi := sectionZi(sections)
	runCascade(sections, zi, ext[0], ext)

	// Backward pass over the reversed signal.
	for i, j := 0, len(ext)-1; i < j; i, j = i+1, j-1 {
		ext[i], ext[j] = ext[j], ext[i]
	}
	runCascade(sections, zi, ext[0], ext)
	for i, j := 0, len(ext)-1; i < j; i, j = i+1, j-1 {
		ext[i], ext[j] = ext[j], ext[i]
	}

	out := make([]float64, n)
	copy(out, ext[pad:pad+n])
	return out
}
