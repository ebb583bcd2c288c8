package dasbf

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ImageExtent is the physical (axial, lateral) bounding box of a frame, in
// metres.
type ImageExtent struct {
	MinAxial, MaxAxial     float64
	MinLateral, MaxLateral float64
}

// ComputeExtent derives the physical extent of a beamformed frame directly
// from its geometry: axial range spans the depth grid Zk, lateral range
// spans the element position grid X.
func ComputeExtent(cfg GeometryConfig) ImageExtent {
	zk := cfg.Medium.Zk
	x := cfg.Transducer.X
	ext := ImageExtent{}
	if len(zk) > 0 {
		ext.MinAxial, ext.MaxAxial = zk[0], zk[len(zk)-1]
	}
	if len(x) > 0 {
		ext.MinLateral, ext.MaxLateral = x[0], x[len(x)-1]
	}
	return ext
}

// AxialClip drops the first s0 axial rows (near-field blanking before the
// transmit pulse has fully decayed) and the last s1 axial rows (far-field
// rows beyond the depth of interest) of a frame. Both bounds are in rows
// and independently clamped so their combined effect never removes more
// than the whole frame.
func AxialClip(frame *FrameReal, s0, s1 int) *FrameReal {
	if s0 < 0 {
		s0 = 0
	}
	if s1 < 0 {
		s1 = 0
	}
	if s0 > frame.Z {
		s0 = frame.Z
	}
	if s1 > frame.Z-s0 {
		s1 = frame.Z - s0
	}
	rows := frame.Z - s0 - s1
	out := &FrameReal{Z: rows, X: frame.X, Data: make([]float64, rows*frame.X)}
	copy(out.Data, frame.Data[s0*frame.X:(s0+rows)*frame.X])
	return out
}

// toGray converts a log-compressed frame (values expected in [0,255]) to
// an 8-bit grayscale image for resampling.
func toGray(frame *FrameReal) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, frame.X, frame.Z))
	for k := 0; k < frame.Z; k++ {
		for i := 0; i < frame.X; i++ {
			v := frame.At(k, i)
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			img.SetGray(i, k, color.Gray{Y: uint8(v)})
		}
	}
	return img
}

// fromGray reads an 8-bit grayscale image back into a FrameReal of matching
// dimensions.
func fromGray(img *image.Gray, z, x int) *FrameReal {
	out := &FrameReal{Z: z, X: x, Data: make([]float64, z*x)}
	for k := 0; k < z; k++ {
		for i := 0; i < x; i++ {
			out.Data[k*x+i] = float64(img.GrayAt(i, k).Y)
		}
	}
	return out
}

// BicubicResample upsamples (or downsamples) a log-compressed frame to
// outWidth x outHeight pixels using a Catmull-Rom kernel.
func BicubicResample(frame *FrameReal, outWidth, outHeight int) *FrameReal {
	src := toGray(frame)
	dst := image.NewGray(image.Rect(0, 0, outWidth, outHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return fromGray(dst, outHeight, outWidth)
}
