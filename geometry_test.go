package dasbf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseParams() GeometryParams {
	return GeometryParams{
		CenterFrequency:        5e6,
		AdcRatio:                4,
		Elements:                64,
		ElementPitch:            3e-4,
		FocusNumber:             2,
		Angles:                  1,
		AngleIntervalDeg:        [2]float64{0, 0},
		AxialCutoffWavelengths:  5,
		SpeedOfSound:            1540,
		MaxDepthWavelengths:     4000,
	}
}

func TestNewGeometryConfig_Valid(t *testing.T) {
	cfg, err := NewGeometryConfig(baseParams())
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Transducer.E)
	assert.Equal(t, 1, cfg.Transducer.A)
	assert.Greater(t, cfg.Medium.Z, 0)
	assert.Equal(t, cfg.Medium.Z, len(cfg.Medium.Zk))
	assert.InDelta(t, 1540.0/5e6, cfg.Transducer.Lambda, 1e-12)
}

func TestNewGeometryConfig_RejectsBadInputs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*GeometryParams)
	}{
		{"zero fc", func(p *GeometryParams) { p.CenterFrequency = 0 }},
		{"zero elements", func(p *GeometryParams) { p.Elements = 0 }},
		{"zero pitch", func(p *GeometryParams) { p.ElementPitch = 0 }},
		{"zero angles", func(p *GeometryParams) { p.Angles = 0 }},
		{"inverted angle interval", func(p *GeometryParams) { p.AngleIntervalDeg = [2]float64{10, -10} }},
		{"zero sound speed", func(p *GeometryParams) { p.SpeedOfSound = 0 }},
		{"depth below cutoff", func(p *GeometryParams) { p.MaxDepthWavelengths = 1; p.AxialCutoffWavelengths = 5 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := baseParams()
			tc.mutate(&p)
			_, err := NewGeometryConfig(p)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrGeometryInvalid)
		})
	}
}

func TestResolveFNumber_ExplicitWins(t *testing.T) {
	assert.Equal(t, 3.0, ResolveFNumber(3, 10, 2))
}

func TestResolveFNumber_FromElevationFocus(t *testing.T) {
	assert.Equal(t, 5.0, ResolveFNumber(0, 10, 2))
}

func TestResolveFNumber_Default(t *testing.T) {
	assert.Equal(t, defaultFNumber, ResolveFNumber(0, 0, 2))
}

func TestPlanewaveAngles_SingleAngleUsesLowEdge(t *testing.T) {
	angles := planewaveAngles(1, -10, 10)
	require.Len(t, angles, 1)
	assert.InDelta(t, -10*math.Pi/180, angles[0], 1e-12)
}

func TestPlanewaveAngles_SymmetricAboutZero(t *testing.T) {
	angles := planewaveAngles(3, -10, 10)
	require.Len(t, angles, 3)
	assert.InDelta(t, 0, angles[1], 1e-12)
	assert.InDelta(t, -angles[0], angles[2], 1e-12)
}

func TestLateralPositions_CenteredOnArray(t *testing.T) {
	x := lateralPositions(4, 1.0)
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	assert.InDelta(t, 0, sum, 1e-12)
}

func TestResolvePinmap_IdentityWhenNil(t *testing.T) {
	pm := resolvePinmap(nil, 0, 4)
	assert.Equal(t, []int{0, 1, 2, 3}, pm)
}

func TestResolvePinmap_SubtractsBase(t *testing.T) {
	pm := resolvePinmap([]int{1, 2, 3, 4}, 1, 4)
	assert.Equal(t, []int{0, 1, 2, 3}, pm)
}
