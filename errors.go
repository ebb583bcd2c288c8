package dasbf

import (
	"errors"
	"fmt"
)

// Sentinel errors for the four error kinds defined by the beamforming core.
// Callers should use errors.Is against these; the wrapping error carries the
// offending field or dimension in its message.
var (
	ErrGeometryInvalid   = errors.New("geometry invalid")
	ErrShapeMismatch     = errors.New("shape mismatch")
	ErrRangeViolation    = errors.New("delay index out of range")
	ErrUnsupportedOption = errors.New("unsupported option")
)

// geometryErrorf wraps ErrGeometryInvalid with a message identifying the
// offending field.
func geometryErrorf(format string, args ...any) error {
	return errors.Join(ErrGeometryInvalid, fmt.Errorf(format, args...))
}

// shapeErrorf wraps ErrShapeMismatch with a message identifying the
// offending array and its expected/actual dimensions.
func shapeErrorf(format string, args ...any) error {
	return errors.Join(ErrShapeMismatch, fmt.Errorf(format, args...))
}

// rangeErrorf wraps ErrRangeViolation with the offending index and table
// position; only constructed from debug-build assertions.
func rangeErrorf(format string, args ...any) error {
	return errors.Join(ErrRangeViolation, fmt.Errorf(format, args...))
}

// unsupportedErrorf wraps ErrUnsupportedOption with the offending option
// name and value.
func unsupportedErrorf(format string, args ...any) error {
	return errors.Join(ErrUnsupportedOption, fmt.Errorf(format, args...))
}
