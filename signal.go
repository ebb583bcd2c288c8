package dasbf

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// AnalyticSignal computes the discrete Hilbert transform of one
// time-domain trace along its fast (time) axis, returning the analytic
// signal x + j*H{x}, built directly on top of gonum's FFT since gonum does
// not ship a canned Hilbert transform.
//
// trace is a single real trace (one channel/angle column); it is left
// unmodified and the result is a new complex128 slice of the same length.
func AnalyticSignal(trace []float64) []complex128 {
	n := len(trace)
	rfft := fourier.NewFFT(n)
	half := rfft.Coefficients(nil, trace)

	// Hilbert transform via the standard frequency-domain construction:
	// zero the negative frequencies, double the positive frequencies,
	// leave DC and Nyquist (if present) untouched.
	last := len(half) - 1
	for i := range half {
		switch {
		case i == 0:
			// DC: unchanged.
		case n%2 == 0 && i == last:
			// Nyquist: unchanged.
		default:
			half[i] *= 2
		}
	}

	full := make([]complex128, n)
	copy(full[:len(half)], half)
	// Negative-frequency bins are left zero: the whole point of the
	// analytic signal is a one-sided spectrum.

	cfft := fourier.NewCmplxFFT(n)
	inv := cfft.Sequence(nil, full)
	scale := complex(1/float64(n), 0)
	out := make([]complex128, n)
	for i, v := range inv {
		out[i] = v * scale
	}
	return out
}

// Envelope returns the magnitude of each analytic-signal sample.
func Envelope(analytic []complex128) []float64 {
	out := make([]float64, len(analytic))
	for i, c := range analytic {
		out[i] = math.Hypot(real(c), imag(c))
	}
	return out
}

// LogCompress applies 20*log10 compression relative to the frame's own
// peak, clamps to [-dbRange,0], and rescales to [0,255]. NaN/zero envelope
// samples are treated as -inf and clamp to the floor.
func LogCompress(envelope []float64, dbRange float64) []float64 {
	peak := math.Inf(-1)
	logs := make([]float64, len(envelope))
	for i, v := range envelope {
		l := 20 * math.Log10(v)
		logs[i] = l
		if !math.IsNaN(l) && l > peak {
			peak = l
		}
	}

	out := make([]float64, len(envelope))
	for i, l := range logs {
		rel := l - peak
		if math.IsNaN(rel) || rel < -dbRange {
			rel = -dbRange
		}
		out[i] = math.Round((255 * (rel + dbRange)) / dbRange)
	}
	return out
}
