package dasbf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsContiguous_TrueForUnbrokenRun(t *testing.T) {
	z, x, e, a := 1, 1, 5, 1
	w := newApodizationTable(z, x, e, a)
	for el := 1; el <= 3; el++ {
		w.Data[w.index(0, 0, el, 0)] = 1
	}
	assert.True(t, isContiguous(w, 0, 0, 0))
}

func TestIsContiguous_FalseForInteriorGap(t *testing.T) {
	z, x, e, a := 1, 1, 5, 1
	w := newApodizationTable(z, x, e, a)
	w.Data[w.index(0, 0, 0, 0)] = 1
	w.Data[w.index(0, 0, 2, 0)] = 1
	w.Data[w.index(0, 0, 4, 0)] = 1
	assert.False(t, isContiguous(w, 0, 0, 0))
}

func TestIsContiguous_TrueWhenNoActiveElements(t *testing.T) {
	w := newApodizationTable(1, 1, 4, 1)
	assert.True(t, isContiguous(w, 0, 0, 0))
}

func TestDiagnose_ConsistentWidthWhenUniform(t *testing.T) {
	z, x, e, a := 2, 3, 4, 1
	w := uniformWeights(z, x, e, a)
	diag := Diagnose(w)
	assert.True(t, diag.ConsistentWidth)
	assert.True(t, diag.ContiguousSupport)
	assert.Equal(t, e, diag.MinActiveWidth)
	assert.Equal(t, e, diag.MaxActiveWidth)
}

func TestDiagnose_DetectsInconsistentWidth(t *testing.T) {
	z, x, e, a := 1, 2, 4, 1
	w := newApodizationTable(z, x, e, a)
	// Column 0: all four active. Column 1: only two active.
	for el := 0; el < 4; el++ {
		w.Data[w.index(0, 0, el, 0)] = 1
	}
	w.Data[w.index(0, 1, 0, 0)] = 1
	w.Data[w.index(0, 1, 1, 0)] = 1

	diag := Diagnose(w)
	assert.False(t, diag.ConsistentWidth)
	assert.Equal(t, 2, diag.MinActiveWidth)
	assert.Equal(t, 4, diag.MaxActiveWidth)
}

func TestDiagnose_DetectsNonContiguousSupport(t *testing.T) {
	z, x, e, a := 1, 1, 5, 1
	w := newApodizationTable(z, x, e, a)
	w.Data[w.index(0, 0, 0, 0)] = 1
	w.Data[w.index(0, 0, 4, 0)] = 1

	diag := Diagnose(w)
	assert.False(t, diag.ContiguousSupport)
}
