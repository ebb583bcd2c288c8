package dasbf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindowKind_Unknown(t *testing.T) {
	_, err := ParseWindowKind("triangular")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedOption)
}

func TestParseWindowKind_Known(t *testing.T) {
	for _, name := range []string{"rect", "hann", "blackman"} {
		kind, err := ParseWindowKind(name)
		require.NoError(t, err)
		assert.Equal(t, name, kind.String())
	}
}

func TestWindowKind_RectIsAllOnes(t *testing.T) {
	samples := WindowRect.Samples(8)
	for _, v := range samples {
		assert.Equal(t, 1.0, v)
	}
}

func TestWindowKind_HannSymmetric(t *testing.T) {
	n := 9
	samples := WindowHann.Samples(n)
	for i := 0; i < n/2; i++ {
		assert.InDelta(t, samples[i], samples[n-1-i], 1e-12)
	}
}

func TestWindowKind_BlackmanPeakAtCenter(t *testing.T) {
	n := 15
	samples := WindowBlackman.Samples(n)
	center := samples[n/2]
	for i, v := range samples {
		if i != n/2 {
			assert.LessOrEqual(t, v, center+1e-9)
		}
	}
}

func TestWindowKind_BlackmanMatchesStandardCoefficients(t *testing.T) {
	// The standard (non-"Harris") Blackman window uses the classic
	// 0.42/0.5/0.08 coefficients; this discriminates it from
	// Blackman-Harris, whose coefficients and sidelobe behavior differ.
	n := 11
	samples := WindowBlackman.Samples(n)
	for i, v := range samples {
		theta := 2 * math.Pi * float64(i) / float64(n-1)
		want := 0.42 - 0.5*math.Cos(theta) + 0.08*math.Cos(2*theta)
		assert.InDelta(t, want, v, 1e-9, "sample %d", i)
	}
}
