package dasbf

import "math"

// ApodizationTable is W[k,i,e,a], same shape and indexing convention as
// DelayTable.
type ApodizationTable struct {
	Z, X, E, A int
	Data       []float64
}

func (w *ApodizationTable) At(k, i, e, a int) float64 {
	return w.Data[w.index(k, i, e, a)]
}

func (w *ApodizationTable) index(k, i, e, a int) int {
	return ((k*w.X+i)*w.E+e)*w.A + a
}

func newApodizationTable(z, x, e, a int) *ApodizationTable {
	return &ApodizationTable{Z: z, X: x, E: e, A: a, Data: make([]float64, z*x*e*a)}
}

// RoundParity is a tagged variant for aperture-width rounding, per Design
// Notes ("not string compares").
type RoundParity int

const (
	RoundOdd RoundParity = iota
	RoundEven
)

// roundAperture implements round_odd(x) = 2*ceil(x)//2 + 1 (always odd,
// >=1) and round_even(x) = 2*ceil(x)//2, minimum 2.
func roundAperture(x float64, parity RoundParity) int {
	n := 2 * (int(math.Ceil(x)) / 2)
	switch parity {
	case RoundOdd:
		return n + 1
	case RoundEven:
		if n < 2 {
			return 2
		}
		return n
	default:
		return n + 1
	}
}

// AperturePolicy selects whether the receive aperture slides laterally
// with the pixel column (default) or stays centered on the array median for
// every column, giving every column the same support. Under both policies
// the aperture width follows depth.
type AperturePolicy int

const (
	ApertureSliding AperturePolicy = iota
	ApertureFixedCenter
)

// ApodizationOptions configures BuildApodizationTable.
type ApodizationOptions struct {
	Window WindowKind
	Parity RoundParity
	Policy AperturePolicy
}

// DefaultApodizationOptions returns the default mode: depth-adaptive,
// sliding, odd-width, windowed aperture.
func DefaultApodizationOptions() ApodizationOptions {
	return ApodizationOptions{Window: WindowHann, Parity: RoundOdd, Policy: ApertureSliding}
}

// activeWidth returns N(z_k) = round_{parity}(z_k / (2*F*p)), clamped to
// at least 1 and at most E.
func activeWidth(zk, fnumber, pitch float64, elements int, parity RoundParity) int {
	n := roundAperture(zk/(2*fnumber*pitch), parity)
	if n < 1 {
		n = 1
	}
	if n > elements {
		n = elements
	}
	return n
}

// BuildApodizationTable computes W: for each depth z_k, an
// active-aperture width N(z_k); for each lateral pixel column i, a
// contiguous, i-centered (or array-centered, under ApertureFixedCenter)
// window of that width, clipped (not wrapped) at the array edges. W is
// angle-invariant by construction (broadcast across a).
func BuildApodizationTable(cfg GeometryConfig, opts ApodizationOptions) *ApodizationTable {
	td := cfg.Transducer
	md := cfg.Medium
	table := newApodizationTable(md.Z, td.E, td.E, td.A)

	for k := 0; k < md.Z; k++ {
		n := activeWidth(md.Zk[k], td.FNumber, td.Pitch, td.E, opts.Parity)
		samples := opts.Window.Samples(n)
		half := n / 2

		for i := 0; i < td.E; i++ {
			center := i
			if opts.Policy == ApertureFixedCenter {
				center = (td.E - 1) / 2
			}
			start := center - half

			for pos := 0; pos < n; pos++ {
				e := start + pos
				if e < 0 || e >= td.E {
					continue
				}
				val := samples[pos]
				for a := 0; a < td.A; a++ {
					table.Data[table.index(k, i, e, a)] = val
				}
			}
		}
	}

	return table
}

// ActiveCount returns the number of nonzero-weight elements at (k,i,a),
// i.e. Σ_e 1[W[k,i,e,a] > 0].
func (w *ApodizationTable) ActiveCount(k, i, a int) int {
	count := 0
	for e := 0; e < w.E; e++ {
		if w.At(k, i, e, a) > 0 {
			count++
		}
	}
	return count
}
