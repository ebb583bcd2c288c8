package dasbf

import (
	"math"
	"runtime"

	"github.com/alitto/pond"
)

// DelayTable is the 4-D table Δ[k,i,e,a] of integer sample indices,
// dimensions Z×X×E×A, stored row-major with k outermost and a innermost
// (a varies fastest, e next), matching the per-(k,i) gather-then-sum-over-(e,a)
// access pattern of the DAS kernel.
type DelayTable struct {
	Z, X, E, A int
	Data       []int32
}

// At returns Δ[k,i,e,a].
func (d *DelayTable) At(k, i, e, a int) int32 {
	return d.Data[d.index(k, i, e, a)]
}

func (d *DelayTable) index(k, i, e, a int) int {
	return ((k*d.X+i)*d.E+e)*d.A + a
}

// newDelayTable allocates a zeroed table of the given shape.
func newDelayTable(z, x, e, a int) *DelayTable {
	return &DelayTable{Z: z, X: x, E: e, A: a, Data: make([]int32, z*x*e*a)}
}

// txAnchor returns x_tx0(a) = sign(angle) * max(x_e); sign(0) = 0, so the
// anchor term vanishes for a plane wave parallel to the array.
func txAnchor(angle float64, maxX float64) float64 {
	switch {
	case angle > 0:
		return maxX
	case angle < 0:
		return -maxX
	default:
		return 0
	}
}

func maxAbsX(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		if av := math.Abs(v); av > m {
			m = av
		}
	}
	return m
}

// delaySample computes Δ[k,i,e,a] for a single pixel/element/angle: the
// transmit distance to the pixel plus the receive distance back to the
// element, converted to a sample index and clamped to the valid trace
// range. maxSample (T-1) is the clamp ceiling.
func delaySample(zk, xi, xe, angle, c, fs, maxX float64, maxSample int32) int32 {
	anchor := txAnchor(angle, maxX)
	dTx := zk*math.Cos(angle) + (xi-anchor)*math.Sin(angle)
	dx := xi - xe
	dRx := math.Sqrt(zk*zk + dx*dx)
	sample := math.Round((dTx + dRx) / c * fs)
	if sample > float64(maxSample) || sample < 0 {
		return 0
	}
	return int32(sample)
}

// buildDelayRows fills rows [kStart,kEnd) of table in place.
func buildDelayRows(table *DelayTable, cfg GeometryConfig, kStart, kEnd int) {
	td := cfg.Transducer
	md := cfg.Medium
	maxX := maxAbsX(td.X)
	maxSample := int32(md.RxEchoSamples - 1)

	for k := kStart; k < kEnd; k++ {
		zk := md.Zk[k]
		for i, xi := range td.X {
			for a, angle := range td.Angles {
				for e, xe := range td.X {
					table.Data[table.index(k, i, e, a)] = delaySample(zk, xi, xe, angle, td.C, td.Fs, maxX, maxSample)
				}
			}
		}
	}
}

// BuildDelayTable computes the full Z×X×E×A delay table for a geometry,
// distributing axial rows across a worker pool. No lock is required since
// each worker owns a disjoint range of rows.
func BuildDelayTable(cfg GeometryConfig) *DelayTable {
	td := cfg.Transducer
	md := cfg.Medium
	table := newDelayTable(md.Z, td.E, td.E, td.A)

	workers := runtime.NumCPU()
	if workers > md.Z {
		workers = md.Z
	}
	if workers < 1 {
		workers = 1
	}
	pool := pond.New(workers, 0, pond.MinWorkers(workers))

	rowsPerWorker := (md.Z + workers - 1) / workers
	for start := 0; start < md.Z; start += rowsPerWorker {
		end := start + rowsPerWorker
		if end > md.Z {
			end = md.Z
		}
		s, e := start, end
		pool.Submit(func() {
			buildDelayRows(table, cfg, s, e)
		})
	}
	pool.StopAndWait()

	return table
}

// BuildDelaySlab computes Δ for the contiguous axial-row range
// [kStart,kEnd) only, without allocating the full table, trading recompute
// for memory when only a window of rows is needed. It shares
// buildDelayRows with BuildDelayTable so the two cannot diverge.
func BuildDelaySlab(cfg GeometryConfig, kStart, kEnd int) *DelayTable {
	td := cfg.Transducer
	rows := kEnd - kStart
	table := newDelayTable(rows, td.E, td.E, td.A)

	// buildDelayRows indexes by absolute k (it reads cfg.Medium.Zk[k]), so
	// build into a view whose row 0 corresponds to kStart by offsetting
	// the Zk lookup via a scoped geometry slice.
	scoped := cfg
	scoped.Medium.Zk = cfg.Medium.Zk[kStart:kEnd]
	buildDelayRows(table, scoped, 0, rows)

	return table
}
