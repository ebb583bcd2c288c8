package dasbf

import (
	"encoding/csv"
	"io"
	"strconv"
)

// LoadPinmapCSV reads a single-column CSV of physical channel numbers (one
// per row, in element order) for GeometryParams.Pinmap.
func LoadPinmapCSV(r io.Reader) ([]int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	pinmap := make([]int, len(records))
	for i, rec := range records {
		v, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, shapeErrorf("pinmap row %d: %w", i, err)
		}
		pinmap[i] = v
	}
	return pinmap, nil
}

// LoadTGCControlPointsCSV reads a single-row CSV of TGC control-point gain
// values.
func LoadTGCControlPointsCSV(r io.Reader) ([]float64, error) {
	reader := csv.NewReader(r)

	record, err := reader.Read()
	if err != nil {
		return nil, err
	}

	gains := make([]float64, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, shapeErrorf("tgc control point column %d: %w", i, err)
		}
		gains[i] = v
	}
	return gains, nil
}
