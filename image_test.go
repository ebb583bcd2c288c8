package dasbf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeExtent_DerivesFromGeometry(t *testing.T) {
	cfg := smallGeometry(t, 1, 0, 0)
	ext := ComputeExtent(cfg)

	zk := cfg.Medium.Zk
	assert.Equal(t, zk[0], ext.MinAxial)
	assert.Equal(t, zk[len(zk)-1], ext.MaxAxial)
	assert.Less(t, ext.MinLateral, ext.MaxLateral)
}

func TestAxialClip_DropsLeadingRows(t *testing.T) {
	z, x := 10, 3
	frame := &FrameReal{Z: z, X: x, Data: make([]float64, z*x)}
	for k := 0; k < z; k++ {
		for i := 0; i < x; i++ {
			frame.Data[k*x+i] = float64(k)
		}
	}

	clipped := AxialClip(frame, 4, 0)
	assert.Equal(t, z-4, clipped.Z)
	assert.Equal(t, x, clipped.X)
	assert.Equal(t, 4.0, clipped.At(0, 0))
}

func TestAxialClip_DropsTrailingRows(t *testing.T) {
	z, x := 10, 3
	frame := &FrameReal{Z: z, X: x, Data: make([]float64, z*x)}
	for k := 0; k < z; k++ {
		for i := 0; i < x; i++ {
			frame.Data[k*x+i] = float64(k)
		}
	}

	clipped := AxialClip(frame, 0, 3)
	assert.Equal(t, z-3, clipped.Z)
	assert.Equal(t, 0.0, clipped.At(0, 0))
	assert.Equal(t, float64(z-4), clipped.At(clipped.Z-1, 0))
}

func TestAxialClip_BothBoundsCombine(t *testing.T) {
	z, x := 10, 1
	frame := &FrameReal{Z: z, X: x, Data: make([]float64, z*x)}
	for k := 0; k < z; k++ {
		frame.Data[k] = float64(k)
	}

	clipped := AxialClip(frame, 2, 3)
	assert.Equal(t, z-2-3, clipped.Z)
	assert.Equal(t, 2.0, clipped.At(0, 0))
	assert.Equal(t, float64(z-3-1), clipped.At(clipped.Z-1, 0))
}

func TestAxialClip_ClampsOutOfRange(t *testing.T) {
	frame := &FrameReal{Z: 5, X: 2, Data: make([]float64, 10)}
	assert.Equal(t, 5, AxialClip(frame, -3, 0).Z)
	assert.Equal(t, 0, AxialClip(frame, 99, 0).Z)
	assert.Equal(t, 0, AxialClip(frame, 3, 99).Z)
}

func TestBicubicResample_PreservesUniformValue(t *testing.T) {
	z, x := 8, 8
	frame := &FrameReal{Z: z, X: x, Data: make([]float64, z*x)}
	for i := range frame.Data {
		frame.Data[i] = 128
	}

	out := BicubicResample(frame, 16, 16)
	assert.Equal(t, 16, out.X)
	assert.Equal(t, 16, out.Z)
	for _, v := range out.Data {
		assert.InDelta(t, 128, v, 2)
	}
}

func TestBicubicResample_SameSizeIsNearIdentity(t *testing.T) {
	z, x := 4, 4
	frame := &FrameReal{Z: z, X: x, Data: []float64{
		0, 0, 0, 0,
		0, 255, 255, 0,
		0, 255, 255, 0,
		0, 0, 0, 0,
	}}

	out := BicubicResample(frame, x, z)
	assert.Equal(t, z, out.Z)
	assert.Equal(t, x, out.X)
	for i := range frame.Data {
		assert.InDelta(t, frame.Data[i], out.Data[i], 1, "pixel %d", i)
	}
}
