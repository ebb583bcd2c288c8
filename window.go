package dasbf

import "gonum.org/v1/gonum/dsp/window"

// WindowKind is a tagged variant for the supported apodization windows.
type WindowKind int

const (
	WindowRect WindowKind = iota
	WindowHann
	WindowBlackman
)

// String implements fmt.Stringer for diagnostics and error messages.
func (w WindowKind) String() string {
	switch w {
	case WindowRect:
		return "rect"
	case WindowHann:
		return "hann"
	case WindowBlackman:
		return "blackman"
	default:
		return "unknown"
	}
}

// ParseWindowKind maps a window name to its WindowKind, returning
// ErrUnsupportedOption for anything else.
func ParseWindowKind(name string) (WindowKind, error) {
	switch name {
	case "rect":
		return WindowRect, nil
	case "hann":
		return WindowHann, nil
	case "blackman":
		return WindowBlackman, nil
	default:
		return 0, unsupportedErrorf("unknown window %q", name)
	}
}

// Samples computes n window samples for kind. rect emits all-ones; hann
// and blackman are generated via gonum's dsp/window package, which applies
// its window in place as a multiplicative scale — so we seed a slice of
// ones and let it produce the pure window shape.
func (w WindowKind) Samples(n int) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 1
	}
	if n == 1 {
		// A one-point window is the single sample 1; the hann and blackman
		// formulas divide by n-1, which is zero here.
		return samples
	}
	switch w {
	case WindowHann:
		return window.Hann(samples)
	case WindowBlackman:
		return window.Blackman(samples)
	default:
		return samples
	}
}
