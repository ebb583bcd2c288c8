package dasbf

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	stgpsr "github.com/yuin/stagparser"
)

var ErrCreateTableTdb = errors.New("error creating table TileDB array")
var ErrWriteTableTdb = errors.New("error writing table TileDB array")
var ErrReadTableTdb = errors.New("error reading table TileDB array")

// ArrayOpen is a helper for opening a tiledb array in the given mode.
func ArrayOpen(ctx *tiledb.Context, uri string, mode tiledb.QueryType) (*tiledb.Array, error) {
	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return nil, err
	}
	if err := array.Open(mode); err != nil {
		array.Free()
		return nil, err
	}
	return array, nil
}

// AddFilters sequentially appends compression filters to a filter list.
func AddFilters(filterList *tiledb.FilterList, filters ...*tiledb.Filter) error {
	for _, f := range filters {
		if err := filterList.AddFilter(f); err != nil {
			return err
		}
	}
	return nil
}

// ZstdFilter initialises the Zstandard compression filter at the given
// level.
func ZstdFilter(ctx *tiledb.Context, level int32) (*tiledb.Filter, error) {
	filt, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_ZSTD)
	if err != nil {
		return nil, err
	}
	if err := filt.SetOption(tiledb.TILEDB_COMPRESSION_LEVEL, level); err != nil {
		filt.Free()
		return nil, err
	}
	return filt, nil
}

// tableCell is the single-attribute record tagged for CreateAttr's
// struct-tag reflection, one instance per cached table kind.
type tableCell struct {
	Value float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
}

// tableCellInt is tableCell's integer-valued counterpart, used for the
// delay table's int32 sample indices.
type tableCellInt struct {
	Value int32 `tiledb:"dtype=int32,ftype=attr" filters:"zstd(level=16)"`
}

// CreateAttr creates a tiledb attribute with its compression filter
// pipeline from the tags attached to a struct field.
func CreateAttr(fieldName string, filterDefs []stgpsr.Definition, tiledbDefs map[string]stgpsr.Definition, schema *tiledb.ArraySchema, ctx *tiledb.Context) error {
	def, ok := tiledbDefs["dtype"]
	if !ok {
		return errors.Join(ErrCreateTableTdb, errors.New("dtype tag not found"))
	}
	dtypeName, _ := def.Attribute("dtype")

	var dtype tiledb.Datatype
	switch dtypeName {
	case "float64":
		dtype = tiledb.TILEDB_FLOAT64
	case "float32":
		dtype = tiledb.TILEDB_FLOAT32
	case "int32":
		dtype = tiledb.TILEDB_INT32
	default:
		return errors.Join(ErrCreateTableTdb, fmt.Errorf("unsupported dtype tag %q", dtypeName))
	}

	filterList, err := tiledb.NewFilterList(ctx)
	if err != nil {
		return errors.Join(ErrCreateTableTdb, err)
	}
	defer filterList.Free()

	for _, filt := range filterDefs {
		if filt.Name() != "zstd" {
			continue
		}
		level, ok := filt.Attribute("level")
		if !ok {
			return errors.Join(ErrCreateTableTdb, errors.New("zstd level not defined"))
		}
		zf, err := ZstdFilter(ctx, int32(level.(int64)))
		if err != nil {
			return errors.Join(ErrCreateTableTdb, err)
		}
		defer zf.Free()
		if err := filterList.AddFilter(zf); err != nil {
			return errors.Join(ErrCreateTableTdb, err)
		}
	}

	attr, err := tiledb.NewAttribute(ctx, fieldName, dtype)
	if err != nil {
		return errors.Join(ErrCreateTableTdb, err)
	}
	defer attr.Free()

	if err := attr.SetFilterList(filterList); err != nil {
		return errors.Join(ErrCreateTableTdb, err)
	}
	if err := schema.AddAttributes(attr); err != nil {
		return errors.Join(ErrCreateTableTdb, err)
	}
	return nil
}

// GeometryHash derives a stable cache key from the geometry's own fields,
// so that two GeometryConfig values built from identical GeometryParams
// resolve to the same cached table. It is not cryptographically
// significant, only collision-resistant enough for a cache key.
func GeometryHash(cfg GeometryConfig) string {
	h := sha256.New()
	td := cfg.Transducer
	md := cfg.Medium
	for _, v := range []float64{
		td.Fc, td.Fs, td.Lambda, td.Pitch, td.Aperture, td.FNumber, td.C,
		md.D, float64(md.RxEchoSamples), float64(md.Z),
	} {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(v*1e9)))
		h.Write(buf[:])
	}
	binary.Write(h, binary.LittleEndian, int64(td.E))
	binary.Write(h, binary.LittleEndian, int64(td.A))
	binary.Write(h, binary.LittleEndian, td.Angles)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// tableSchema builds the 4-D dense array schema shared by delay and
// apodization table caches: four int32 dimensions (k,i,e,a) and a single
// filtered attribute carrying the table's values.
func tableSchema(ctx *tiledb.Context, z, x, e, a int, integer bool) (*tiledb.ArraySchema, error) {
	domain, err := tiledb.NewDomain(ctx)
	if err != nil {
		return nil, errors.Join(ErrCreateTableTdb, err)
	}
	defer domain.Free()

	dims := []struct {
		name string
		n    int
	}{
		{"k", z}, {"i", x}, {"e", e}, {"a", a},
	}
	for _, d := range dims {
		dim, err := tiledb.NewDimension(ctx, d.name, tiledb.TILEDB_INT32, []int32{0, int32(d.n - 1)}, int32(d.n))
		if err != nil {
			return nil, errors.Join(ErrCreateTableTdb, err)
		}
		if err := domain.AddDimensions(dim); err != nil {
			dim.Free()
			return nil, errors.Join(ErrCreateTableTdb, err)
		}
		dim.Free()
	}

	schema, err := tiledb.NewArraySchema(ctx, tiledb.TILEDB_DENSE)
	if err != nil {
		return nil, errors.Join(ErrCreateTableTdb, err)
	}
	if err := schema.SetDomain(domain); err != nil {
		return nil, errors.Join(ErrCreateTableTdb, err)
	}
	if err := schema.SetCellOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return nil, errors.Join(ErrCreateTableTdb, err)
	}
	if err := schema.SetTileOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return nil, errors.Join(ErrCreateTableTdb, err)
	}

	var cell any = &tableCell{}
	if integer {
		cell = &tableCellInt{}
	}
	filtDefs, _ := stgpsr.ParseStruct(cell, "filters")
	tdbDefs, _ := stgpsr.ParseStruct(cell, "tiledb")
	tdbDefMap := make(map[string]stgpsr.Definition)
	for _, v := range tdbDefs["Value"] {
		tdbDefMap[v.Name()] = v
	}
	if err := CreateAttr("value", filtDefs["Value"], tdbDefMap, schema, ctx); err != nil {
		return nil, err
	}

	return schema, nil
}

// CacheApodizationTable creates a dense TileDB array at uri and writes an
// apodization table to it. An array already present at uri makes the call
// fail with ErrCreateTableTdb; it is not overwritten or reused.
func CacheApodizationTable(ctx *tiledb.Context, uri string, w *ApodizationTable) error {
	schema, err := tableSchema(ctx, w.Z, w.X, w.E, w.A, false)
	if err != nil {
		return err
	}
	defer schema.Free()

	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return errors.Join(ErrCreateTableTdb, err)
	}
	defer array.Free()
	if err := array.Create(schema); err != nil {
		return errors.Join(ErrCreateTableTdb, err)
	}

	wArray, err := ArrayOpen(ctx, uri, tiledb.TILEDB_WRITE)
	if err != nil {
		return errors.Join(ErrWriteTableTdb, err)
	}
	defer wArray.Free()
	defer wArray.Close()

	query, err := tiledb.NewQuery(ctx, wArray)
	if err != nil {
		return errors.Join(ErrWriteTableTdb, err)
	}
	defer query.Free()

	if err := query.SetLayout(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return errors.Join(ErrWriteTableTdb, err)
	}
	data := append([]float64(nil), w.Data...)
	if _, err := query.SetDataBuffer("value", data); err != nil {
		return errors.Join(ErrWriteTableTdb, err)
	}
	if err := query.Submit(); err != nil {
		return errors.Join(ErrWriteTableTdb, err)
	}
	return nil
}

// LoadCachedApodizationTable reads a previously cached apodization table
// back from a dense TileDB array.
func LoadCachedApodizationTable(ctx *tiledb.Context, uri string, z, x, e, a int) (*ApodizationTable, error) {
	array, err := ArrayOpen(ctx, uri, tiledb.TILEDB_READ)
	if err != nil {
		return nil, errors.Join(ErrReadTableTdb, err)
	}
	defer array.Free()
	defer array.Close()

	query, err := tiledb.NewQuery(ctx, array)
	if err != nil {
		return nil, errors.Join(ErrReadTableTdb, err)
	}
	defer query.Free()

	subarray, err := array.NewSubarray()
	if err != nil {
		return nil, errors.Join(ErrReadTableTdb, err)
	}
	defer subarray.Free()
	if err := subarray.SetSubArray([]int32{0, int32(z - 1), 0, int32(x - 1), 0, int32(e - 1), 0, int32(a - 1)}); err != nil {
		return nil, errors.Join(ErrReadTableTdb, err)
	}
	if err := query.SetSubarray(subarray); err != nil {
		return nil, errors.Join(ErrReadTableTdb, err)
	}

	table := newApodizationTable(z, x, e, a)
	if _, err := query.SetDataBuffer("value", table.Data); err != nil {
		return nil, errors.Join(ErrReadTableTdb, err)
	}
	if err := query.Submit(); err != nil {
		return nil, errors.Join(ErrReadTableTdb, err)
	}
	return table, nil
}

// CacheDelayTable writes a delay table to a dense TileDB array at uri,
// int32-valued geometry sample indices being the array's sole attribute.
func CacheDelayTable(ctx *tiledb.Context, uri string, d *DelayTable) error {
	schema, err := tableSchema(ctx, d.Z, d.X, d.E, d.A, true)
	if err != nil {
		return err
	}
	defer schema.Free()

	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return errors.Join(ErrCreateTableTdb, err)
	}
	defer array.Free()
	if err := array.Create(schema); err != nil {
		return errors.Join(ErrCreateTableTdb, err)
	}

	wArray, err := ArrayOpen(ctx, uri, tiledb.TILEDB_WRITE)
	if err != nil {
		return errors.Join(ErrWriteTableTdb, err)
	}
	defer wArray.Free()
	defer wArray.Close()

	query, err := tiledb.NewQuery(ctx, wArray)
	if err != nil {
		return errors.Join(ErrWriteTableTdb, err)
	}
	defer query.Free()

	if err := query.SetLayout(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return errors.Join(ErrWriteTableTdb, err)
	}
	data := append([]int32(nil), d.Data...)
	if _, err := query.SetDataBuffer("value", data); err != nil {
		return errors.Join(ErrWriteTableTdb, err)
	}
	if err := query.Submit(); err != nil {
		return errors.Join(ErrWriteTableTdb, err)
	}
	return nil
}

// LoadCachedDelayTable reads a previously cached delay table back from a
// dense TileDB array.
func LoadCachedDelayTable(ctx *tiledb.Context, uri string, z, x, e, a int) (*DelayTable, error) {
	array, err := ArrayOpen(ctx, uri, tiledb.TILEDB_READ)
	if err != nil {
		return nil, errors.Join(ErrReadTableTdb, err)
	}
	defer array.Free()
	defer array.Close()

	query, err := tiledb.NewQuery(ctx, array)
	if err != nil {
		return nil, errors.Join(ErrReadTableTdb, err)
	}
	defer query.Free()

	subarray, err := array.NewSubarray()
	if err != nil {
		return nil, errors.Join(ErrReadTableTdb, err)
	}
	defer subarray.Free()
	if err := subarray.SetSubArray([]int32{0, int32(z - 1), 0, int32(x - 1), 0, int32(e - 1), 0, int32(a - 1)}); err != nil {
		return nil, errors.Join(ErrReadTableTdb, err)
	}
	if err := query.SetSubarray(subarray); err != nil {
		return nil, errors.Join(ErrReadTableTdb, err)
	}

	table := newDelayTable(z, x, e, a)
	if _, err := query.SetDataBuffer("value", table.Data); err != nil {
		return nil, errors.Join(ErrReadTableTdb, err)
	}
	if err := query.Submit(); err != nil {
		return nil, errors.Join(ErrReadTableTdb, err)
	}
	return table, nil
}
