package dasbf

import "github.com/samber/lo"

// ApodizationDiagnostics reports structural sanity checks over a built
// apodization table: is the active aperture width consistent and
// contiguous across the image.
type ApodizationDiagnostics struct {
	MinActiveWidth    int
	MaxActiveWidth    int
	ConsistentWidth   bool
	ContiguousSupport bool
}

// isContiguous reports whether the set of e indices with W[k,i,e,a] > 0
// forms one unbroken run, i.e. no interior zero between the first and
// last active element.
func isContiguous(w *ApodizationTable, k, i, a int) bool {
	first, last := -1, -1
	for e := 0; e < w.E; e++ {
		if w.At(k, i, e, a) > 0 {
			if first == -1 {
				first = e
			}
			last = e
		}
	}
	if first == -1 {
		return true
	}
	for e := first; e <= last; e++ {
		if w.At(k, i, e, a) <= 0 {
			return false
		}
	}
	return true
}

// Diagnose scans every (k,i,a) gather of w and summarises its active-width
// statistics.
func Diagnose(w *ApodizationTable) ApodizationDiagnostics {
	widths := make([]int, 0, w.Z*w.X*w.A)
	contiguous := true

	for k := 0; k < w.Z; k++ {
		for i := 0; i < w.X; i++ {
			for a := 0; a < w.A; a++ {
				widths = append(widths, w.ActiveCount(k, i, a))
				if contiguous && !isContiguous(w, k, i, a) {
					contiguous = false
				}
			}
		}
	}

	if len(widths) == 0 {
		return ApodizationDiagnostics{ContiguousSupport: true}
	}

	min := lo.Min(widths)
	max := lo.Max(widths)

	return ApodizationDiagnostics{
		MinActiveWidth:    min,
		MaxActiveWidth:    max,
		ConsistentWidth:   min == max,
		ContiguousSupport: contiguous,
	}
}
