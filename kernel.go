package dasbf

import (
	"runtime"

	"github.com/alitto/pond"
)

// SignalCubeReal is S[t,e,a] for real (RF) channel data. Data is stored
// with t innermost so that, for a fixed (e,a), samples are contiguous —
// the gather in Beamform targets exactly this column via column(e,a).
type SignalCubeReal struct {
	T, E, A int
	Data    []float64
}

func (s *SignalCubeReal) column(e, a int) []float64 {
	start := (e*s.A + a) * s.T
	return s.Data[start : start+s.T]
}

// SignalCubeComplex is S[t,e,a] for analytic-signal (complex) channel
// data, same layout convention as SignalCubeReal.
type SignalCubeComplex struct {
	T, E, A int
	Data    []complex128
}

func (s *SignalCubeComplex) column(e, a int) []complex128 {
	start := (e*s.A + a) * s.T
	return s.Data[start : start+s.T]
}

// FrameReal and FrameComplex are the beamformed output B[k,i], matching
// the numeric domain of the input signal cube.
type FrameReal struct {
	Z, X int
	Data []float64
}

type FrameComplex struct {
	Z, X int
	Data []complex128
}

func (f *FrameReal) At(k, i int) float64       { return f.Data[k*f.X+i] }
func (f *FrameComplex) At(k, i int) complex128 { return f.Data[k*f.X+i] }

// checkShapes enforces the shape contract: S, Δ, W must agree on (E,A);
// Δ and W must agree on (Z,X,E,A).
func checkShapes(sT, sE, sA int, delta *DelayTable, w *ApodizationTable) error {
	if delta.Z != w.Z || delta.X != w.X || delta.E != w.E || delta.A != w.A {
		return shapeErrorf(
			"delay table shape (%d,%d,%d,%d) disagrees with apodization table shape (%d,%d,%d,%d)",
			delta.Z, delta.X, delta.E, delta.A, w.Z, w.X, w.E, w.A,
		)
	}
	if sE != delta.E || sA != delta.A {
		return shapeErrorf(
			"signal cube (E=%d,A=%d) disagrees with table (E=%d,A=%d)",
			sE, sA, delta.E, delta.A,
		)
	}
	_ = sT
	return nil
}

// workerCount picks a worker count bounded by the number of axial rows,
// mirroring BuildDelayTable's sizing.
func workerCount(rows int) int {
	n := runtime.NumCPU()
	if n > rows {
		n = rows
	}
	if n < 1 {
		n = 1
	}
	return n
}

// BeamformReal implements the delay-and-sum receive beamforming kernel
// for real (RF) signal cubes:
//
//	B[k,i] = Σ_a Σ_e S[Δ[k,i,e,a], e, a] · W[k,i,e,a]
//
// Data-parallel over axial rows k via a worker pool; rows are disjoint
// writes so no lock is required.
func BeamformReal(s *SignalCubeReal, delta *DelayTable, w *ApodizationTable) (*FrameReal, error) {
	if err := checkShapes(s.T, s.E, s.A, delta, w); err != nil {
		return nil, err
	}

	frame := &FrameReal{Z: delta.Z, X: delta.X, Data: make([]float64, delta.Z*delta.X)}
	pool := pond.New(workerCount(delta.Z), 0, pond.MinWorkers(workerCount(delta.Z)))

	for k := 0; k < delta.Z; k++ {
		k := k
		pool.Submit(func() {
			beamformRowReal(frame, s, delta, w, k)
		})
	}
	pool.StopAndWait()

	return frame, nil
}

func beamformRowReal(frame *FrameReal, s *SignalCubeReal, delta *DelayTable, w *ApodizationTable, k int) {
	for i := 0; i < delta.X; i++ {
		var sum float64
		for a := 0; a < delta.A; a++ {
			for e := 0; e < delta.E; e++ {
				idx := delta.At(k, i, e, a)
				weight := w.At(k, i, e, a)
				if weight == 0 {
					continue
				}
				assertInRange(idx, s.T, k, i, e, a)
				sum += s.column(e, a)[idx] * weight
			}
		}
		frame.Data[k*delta.X+i] = sum
	}
}

// BeamformComplex is BeamformReal's complex-domain counterpart, used when
// S carries the analytic signal (envelope/log-compression then read the
// magnitude of the result).
func BeamformComplex(s *SignalCubeComplex, delta *DelayTable, w *ApodizationTable) (*FrameComplex, error) {
	if err := checkShapes(s.T, s.E, s.A, delta, w); err != nil {
		return nil, err
	}

	frame := &FrameComplex{Z: delta.Z, X: delta.X, Data: make([]complex128, delta.Z*delta.X)}
	pool := pond.New(workerCount(delta.Z), 0, pond.MinWorkers(workerCount(delta.Z)))

	for k := 0; k < delta.Z; k++ {
		k := k
		pool.Submit(func() {
			beamformRowComplex(frame, s, delta, w, k)
		})
	}
	pool.StopAndWait()

	return frame, nil
}

func beamformRowComplex(frame *FrameComplex, s *SignalCubeComplex, delta *DelayTable, w *ApodizationTable, k int) {
	for i := 0; i < delta.X; i++ {
		var sum complex128
		for a := 0; a < delta.A; a++ {
			for e := 0; e < delta.E; e++ {
				idx := delta.At(k, i, e, a)
				weight := w.At(k, i, e, a)
				if weight == 0 {
					continue
				}
				assertInRange(idx, s.T, k, i, e, a)
				sum += s.column(e, a)[idx] * complex(weight, 0)
			}
		}
		frame.Data[k*delta.X+i] = sum
	}
}
