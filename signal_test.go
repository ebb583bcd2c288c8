package dasbf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyticSignal_PreservesRealPart(t *testing.T) {
	n := 32
	trace := make([]float64, n)
	for i := range trace {
		trace[i] = math.Sin(2 * math.Pi * 3 * float64(i) / float64(n))
	}

	analytic := AnalyticSignal(trace)
	for i, c := range analytic {
		assert.InDelta(t, trace[i], real(c), 1e-9, "sample %d", i)
	}
}

func TestAnalyticSignal_ConstantEnvelopeForPureSinusoid(t *testing.T) {
	// The analytic signal of a pure sinusoid has (near) constant envelope
	// away from the wraparound edges introduced by the FFT's implicit
	// periodicity.
	n := 64
	trace := make([]float64, n)
	for i := range trace {
		trace[i] = math.Sin(2 * math.Pi * 5 * float64(i) / float64(n))
	}

	env := Envelope(AnalyticSignal(trace))
	for i := 8; i < n-8; i++ {
		assert.InDelta(t, 1.0, env[i], 0.2, "sample %d", i)
	}
}

func TestEnvelope_MagnitudeOfComplex(t *testing.T) {
	analytic := []complex128{complex(3, 4), complex(0, 0), complex(-5, 0)}
	env := Envelope(analytic)
	assert.InDelta(t, 5, env[0], 1e-12)
	assert.InDelta(t, 0, env[1], 1e-12)
	assert.InDelta(t, 5, env[2], 1e-12)
}

func TestLogCompress_PeakMapsToMax(t *testing.T) {
	envelope := []float64{1, 10, 100, 1}
	out := LogCompress(envelope, 40)
	assert.Equal(t, 255.0, out[2])
}

func TestLogCompress_ClampsAtFloor(t *testing.T) {
	envelope := []float64{1e-6, 1}
	out := LogCompress(envelope, 20)
	assert.Equal(t, 0.0, out[0])
}

func TestLogCompress_ZeroEnvelopeClampsToFloor(t *testing.T) {
	envelope := []float64{0, 1}
	out := LogCompress(envelope, 40)
	assert.Equal(t, 0.0, out[0])
}
