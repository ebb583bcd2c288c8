package dasbf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlPointCurve_ClampsBeforeFirstAndAfterLast(t *testing.T) {
	c := ControlPointCurve{Depths: []float64{10, 20, 30}, Gains: []float64{1, 2, 4}}
	out := c.Interpolate(40)
	assert.Equal(t, 1.0, out[0])
	assert.Equal(t, 4.0, out[39])
}

func TestControlPointCurve_InterpolatesLinearly(t *testing.T) {
	c := ControlPointCurve{Depths: []float64{0, 10}, Gains: []float64{0, 10}}
	out := c.Interpolate(11)
	for t := 0; t <= 10; t++ {
		assert.InDelta(t, float64(t), out[t], 1e-9)
	}
}

func TestControlPointCurve_SinglePointIsConstant(t *testing.T) {
	c := ControlPointCurve{Depths: []float64{5}, Gains: []float64{3}}
	out := c.Interpolate(10)
	for _, v := range out {
		assert.Equal(t, 3.0, v)
	}
}

func TestControlPointCurve_EmptyIsUnityGain(t *testing.T) {
	c := ControlPointCurve{}
	out := c.Interpolate(5)
	for _, v := range out {
		assert.Equal(t, 1.0, v)
	}
}

func TestAttenuationGainCurve_MonotonicIncreaseWithDepth(t *testing.T) {
	curve := AttenuationGainCurve(100, 5e6, 0.5, 1.0, 1540, 40e6)
	for t := 1; t < len(curve); t++ {
		assert.GreaterOrEqual(t, curve[t], curve[t-1])
	}
	assert.Equal(t, 1.0, curve[0])
}

func TestAttenuationGainCurve_ZeroAlphaIsUnity(t *testing.T) {
	curve := AttenuationGainCurve(10, 5e6, 0, 1.0, 1540, 40e6)
	for _, v := range curve {
		assert.InDelta(t, 1.0, v, 1e-12)
	}
}

func TestApplyTGC_ScalesEveryColumn(t *testing.T) {
	T, e, a := 4, 2, 1
	s := &SignalCubeReal{T: T, E: e, A: a, Data: make([]float64, T*e*a)}
	for el := 0; el < e; el++ {
		col := s.column(el, 0)
		for tIdx := range col {
			col[tIdx] = 1
		}
	}

	gain := []float64{1, 2, 3, 4}
	require.NoError(t, ApplyTGC(s, gain))

	for el := 0; el < e; el++ {
		col := s.column(el, 0)
		for tIdx, v := range col {
			assert.InDelta(t, gain[tIdx], v, 1e-12)
		}
	}
}

func TestApplyTGC_RejectsLengthMismatch(t *testing.T) {
	s := &SignalCubeReal{T: 4, E: 1, A: 1, Data: make([]float64, 4)}
	err := ApplyTGC(s, []float64{1, 2, 3})
	require.Error(t, err)
}
