//go:build debug

package dasbf

// assertInRange enforces 0 <= Δ < T for every gather read. Compiled in
// only with -tags debug; the release build (kernel_release.go) omits the
// check entirely.
func assertInRange(idx int32, t, k, i, e, a int) {
	if idx < 0 || int(idx) >= t {
		panic(rangeErrorf(
			"delay index %d out of range [0,%d) at (k=%d,i=%d,e=%d,a=%d)",
			idx, t, k, i, e, a,
		))
	}
}
