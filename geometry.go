// Package dasbf reconstructs 2-D B-mode ultrasound images from raw RF
// channel data acquired by a linear-array transducer driven by one or more
// plane-wave transmissions. It implements the receive delay-and-sum (DAS)
// beamforming pipeline: delay-table and apodization-table precomputation,
// and the DAS reconstruction kernel.
package dasbf

import "math"

// defaultFNumber is used when neither FocusNumber nor ElevationFocus is
// supplied.
const defaultFNumber = 1.7

// GeometryParams are the raw, caller-supplied acquisition parameters. All
// frequencies are in Hz, distances in metres, angles in degrees, speed of
// sound in m/s.
type GeometryParams struct {
	CenterFrequency float64 // fc
	BandwidthLow    float64
	BandwidthHigh   float64
	AdcRatio        float64 // R, samples per wavelength
	Elements        int     // E
	ElementPitch    float64 // p

	// Pinmap permutes physical channel order to element order. Nil means
	// the identity permutation. PinmapBase is 0 or 1 and is subtracted
	// once at load time so Pinmap is always zero-based afterwards.
	Pinmap     []int
	PinmapBase int

	// F-number resolution: ElevationFocus and FocusNumber are mutually
	// informative; FocusNumber wins if both are set (see ResolveFNumber).
	ElevationFocus float64
	FocusNumber    float64

	Angles                 int     // A, number of plane-wave transmissions
	AngleIntervalDeg       [2]float64
	AxialCutoffWavelengths float64
	SpeedOfSound           float64 // c

	MaxDepthWavelengths    float64 // D
	AttenuationCoefficient float64
	AttenuationPower       float64
}

// Transducer holds the immutable, derived per-element geometry of the
// linear array.
type Transducer struct {
	Fc             float64
	BandwidthLow   float64
	BandwidthHigh  float64
	SamplesPerWave float64 // R
	Fs             float64 // R * fc
	Lambda         float64 // c / fc

	E        int
	Pitch    float64
	Pinmap   []int
	X        []float64 // lateral element positions, x_e
	Aperture float64   // E * p

	FNumber float64

	A      int
	Angles []float64 // radians, length A

	S0 int // start-depth samples
	C  float64
}

// Medium holds the immutable, derived imaging-volume geometry.
type Medium struct {
	D                      float64 // wavelengths
	RxEchoSamples          int     // T
	Z                      int     // axial pixel count
	Zk                     []float64
	AttenuationCoefficient float64
	AttenuationPower       float64
}

// GeometryConfig is the single immutable value both Transducer and Medium
// derive from: no component holds a pointer back to another.
type GeometryConfig struct {
	Transducer Transducer
	Medium     Medium
}

// X returns the lateral pixel grid, which is co-located with the element
// positions (X = E lateral samples at x_e).
func (g *GeometryConfig) X() []float64 { return g.Transducer.X }

// ResolveFNumber implements the f-number resolution order: an explicit
// focus number wins; otherwise derive from elevation focus and aperture;
// otherwise fall back to the default.
func ResolveFNumber(focusNumber, elevationFocus, aperture float64) float64 {
	if focusNumber > 0 {
		return focusNumber
	}
	if elevationFocus > 0 && aperture > 0 {
		return elevationFocus / aperture
	}
	return defaultFNumber
}

// planewaveAngles builds A equally spaced angles (radians), endpoint
// inclusive, from the degree interval. A=1 yields a single angle at the
// interval's low end.
func planewaveAngles(a int, lowDeg, highDeg float64) []float64 {
	angles := make([]float64, a)
	if a == 1 {
		angles[0] = lowDeg * math.Pi / 180
		return angles
	}
	step := (highDeg - lowDeg) / float64(a-1)
	for i := 0; i < a; i++ {
		angles[i] = (lowDeg + step*float64(i)) * math.Pi / 180
	}
	return angles
}

// lateralPositions returns x_e = (e - (E-1)/2) * p for e in [0,E).
func lateralPositions(e int, pitch float64) []float64 {
	x := make([]float64, e)
	center := float64(e-1) / 2
	for i := 0; i < e; i++ {
		x[i] = (float64(i) - center) * pitch
	}
	return x
}

// resolvePinmap normalises the caller-supplied pinmap to zero-based
// indices, or returns the identity permutation when none is supplied.
func resolvePinmap(pinmap []int, base, elements int) []int {
	if pinmap == nil {
		identity := make([]int, elements)
		for i := range identity {
			identity[i] = i
		}
		return identity
	}
	out := make([]int, len(pinmap))
	for i, v := range pinmap {
		out[i] = v - base
	}
	return out
}

// NewGeometryConfig validates p and computes every derived constant once:
// sampling frequency, wavelength, start-depth samples, axial/lateral
// grids, and the plane-wave angle vector. It is a pure function of its
// input; no I/O is performed.
func NewGeometryConfig(p GeometryParams) (GeometryConfig, error) {
	var cfg GeometryConfig

	if p.CenterFrequency <= 0 {
		return cfg, geometryErrorf("center frequency fc must be > 0, got %v", p.CenterFrequency)
	}
	if p.Elements <= 0 {
		return cfg, geometryErrorf("element count E must be > 0, got %v", p.Elements)
	}
	if p.ElementPitch <= 0 {
		return cfg, geometryErrorf("element pitch p must be > 0, got %v", p.ElementPitch)
	}
	if p.Angles < 1 {
		return cfg, geometryErrorf("angle count A must be >= 1, got %v", p.Angles)
	}
	if p.AngleIntervalDeg[1] < p.AngleIntervalDeg[0] {
		return cfg, geometryErrorf(
			"angle_interval[1] (%v) must be >= angle_interval[0] (%v)",
			p.AngleIntervalDeg[1], p.AngleIntervalDeg[0],
		)
	}
	if p.SpeedOfSound <= 0 {
		return cfg, geometryErrorf("speed of sound c must be > 0, got %v", p.SpeedOfSound)
	}
	if p.MaxDepthWavelengths <= p.AxialCutoffWavelengths {
		return cfg, geometryErrorf(
			"max_depth_wavelengths (%v) must exceed axial_cutoff_wavelengths (%v)",
			p.MaxDepthWavelengths, p.AxialCutoffWavelengths,
		)
	}

	aperture := float64(p.Elements) * p.ElementPitch
	fnumber := ResolveFNumber(p.FocusNumber, p.ElevationFocus, aperture)
	if fnumber <= 0 {
		return cfg, geometryErrorf("resolved f-number must be > 0, got %v", fnumber)
	}

	samplesPerWave := p.AdcRatio
	if samplesPerWave <= 0 {
		samplesPerWave = 1
	}
	fs := samplesPerWave * p.CenterFrequency
	lambda := p.SpeedOfSound / p.CenterFrequency

	s0 := int(math.Round(2 * p.AxialCutoffWavelengths * lambda / p.SpeedOfSound * fs))

	rxEchoSamples := int(math.Round(2 * p.MaxDepthWavelengths * lambda / p.SpeedOfSound * fs))
	z := int(math.Round(float64(rxEchoSamples) / 2))
	zk := make([]float64, z)
	step := (lambda * p.MaxDepthWavelengths) / float64(z)
	for k := 0; k < z; k++ {
		zk[k] = float64(k) * step
	}

	td := Transducer{
		Fc:             p.CenterFrequency,
		BandwidthLow:   p.BandwidthLow,
		BandwidthHigh:  p.BandwidthHigh,
		SamplesPerWave: samplesPerWave,
		Fs:             fs,
		Lambda:         lambda,
		E:              p.Elements,
		Pitch:          p.ElementPitch,
		Pinmap:         resolvePinmap(p.Pinmap, p.PinmapBase, p.Elements),
		X:              lateralPositions(p.Elements, p.ElementPitch),
		Aperture:       aperture,
		FNumber:        fnumber,
		A:              p.Angles,
		Angles:         planewaveAngles(p.Angles, p.AngleIntervalDeg[0], p.AngleIntervalDeg[1]),
		S0:             s0,
		C:              p.SpeedOfSound,
	}

	md := Medium{
		D:                      p.MaxDepthWavelengths,
		RxEchoSamples:          rxEchoSamples,
		Z:                      z,
		Zk:                     zk,
		AttenuationCoefficient: p.AttenuationCoefficient,
		AttenuationPower:       p.AttenuationPower,
	}

	cfg.Transducer = td
	cfg.Medium = md
	return cfg, nil
}
