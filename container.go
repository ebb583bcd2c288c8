package dasbf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

var ErrOpenContainer = errors.New("error opening signal container")

// Stream caters for a generic reader so callers can handle both a
// tiledb.VFSfh-backed stream and an in-memory byte stream through one
// interface (uniform Read/Seek over disk- or object-store-backed handles).
type Stream interface {
	Read(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
}

// GenericStream wraps a tiledb.VFSfh, optionally buffering the whole file
// into memory first.
func GenericStream(handle *tiledb.VFSfh, size uint64, inMemory bool) (Stream, error) {
	if !inMemory {
		return handle, nil
	}
	buffer := make([]byte, size)
	if err := binary.Read(handle, binary.BigEndian, &buffer); err != nil {
		return nil, err
	}
	return bytes.NewReader(buffer), nil
}

// SignalContainer is a hierarchical store of raw RF acquisitions, one
// dense TileDB array per (frame, shot) pair at
// "<root>/frame%04d/shot%04d", each array holding a [T,E] real-valued
// channel matrix for one plane-wave transmission. Alongside the shot
// arrays, a container root may carry plain sidecar files (pinmap or TGC
// control-point CSVs) read through the VFS via OpenSidecar.
type SignalContainer struct {
	ctx  *tiledb.Context
	root string
	vfs  *tiledb.VFS
}

// OpenSignalContainer opens a container rooted at root (a URI tiledb's VFS
// can resolve: local path, s3://, etc.) using config (nil for the
// default config).
func OpenSignalContainer(root string, config *tiledb.Config) (*SignalContainer, error) {
	var (
		ctx *tiledb.Context
		err error
	)
	if config == nil {
		config, err = tiledb.NewConfig()
		if err != nil {
			return nil, errors.Join(ErrOpenContainer, err)
		}
	}
	ctx, err = tiledb.NewContext(config)
	if err != nil {
		return nil, errors.Join(ErrOpenContainer, err)
	}
	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		return nil, errors.Join(ErrOpenContainer, err)
	}
	return &SignalContainer{ctx: ctx, root: root, vfs: vfs}, nil
}

// OpenSidecar opens a plain file at "<root>/relPath" through the
// container's VFS, returning it as a Stream. inMemory buffers the whole
// file up front, which is cheap for the small pinmap/TGC sidecar files
// this is meant for; set it false to stream larger files lazily.
func (c *SignalContainer) OpenSidecar(relPath string, inMemory bool) (Stream, error) {
	uri := fmt.Sprintf("%s/%s", c.root, relPath)
	size, err := c.vfs.FileSize(uri)
	if err != nil {
		return nil, errors.Join(ErrOpenContainer, err)
	}
	handle, err := c.vfs.Open(uri, tiledb.TILEDB_VFS_READ)
	if err != nil {
		return nil, errors.Join(ErrOpenContainer, err)
	}
	return GenericStream(handle, size, inMemory)
}

// shotURI builds the array URI for a given frame/shot pair.
func (c *SignalContainer) shotURI(frame, shot int) string {
	return fmt.Sprintf("%s/frame%04d/shot%04d", c.root, frame, shot)
}

// WriteShot creates a dense TileDB array for one [T,E] real channel matrix
// and writes the matrix to it. An array already present for that
// frame/shot makes the call fail; it is not overwritten.
func (c *SignalContainer) WriteShot(frame, shot, t, e int, data []float64) error {
	if len(data) != t*e {
		return shapeErrorf("shot data length %d disagrees with T*E=%d", len(data), t*e)
	}
	uri := c.shotURI(frame, shot)

	domain, err := tiledb.NewDomain(c.ctx)
	if err != nil {
		return errors.Join(ErrOpenContainer, err)
	}
	defer domain.Free()

	dimT, err := tiledb.NewDimension(c.ctx, "t", tiledb.TILEDB_INT32, []int32{0, int32(t - 1)}, int32(t))
	if err != nil {
		return errors.Join(ErrOpenContainer, err)
	}
	dimE, err := tiledb.NewDimension(c.ctx, "e", tiledb.TILEDB_INT32, []int32{0, int32(e - 1)}, int32(e))
	if err != nil {
		return errors.Join(ErrOpenContainer, err)
	}
	if err := domain.AddDimensions(dimT, dimE); err != nil {
		return errors.Join(ErrOpenContainer, err)
	}

	schema, err := tiledb.NewArraySchema(c.ctx, tiledb.TILEDB_DENSE)
	if err != nil {
		return errors.Join(ErrOpenContainer, err)
	}
	defer schema.Free()
	if err := schema.SetDomain(domain); err != nil {
		return errors.Join(ErrOpenContainer, err)
	}
	attr, err := tiledb.NewAttribute(c.ctx, "value", tiledb.TILEDB_FLOAT64)
	if err != nil {
		return errors.Join(ErrOpenContainer, err)
	}
	defer attr.Free()
	if err := schema.AddAttributes(attr); err != nil {
		return errors.Join(ErrOpenContainer, err)
	}

	array, err := tiledb.NewArray(c.ctx, uri)
	if err != nil {
		return errors.Join(ErrOpenContainer, err)
	}
	defer array.Free()
	if err := array.Create(schema); err != nil {
		return errors.Join(ErrOpenContainer, err)
	}

	wArray, err := ArrayOpen(c.ctx, uri, tiledb.TILEDB_WRITE)
	if err != nil {
		return errors.Join(ErrOpenContainer, err)
	}
	defer wArray.Free()
	defer wArray.Close()

	query, err := tiledb.NewQuery(c.ctx, wArray)
	if err != nil {
		return errors.Join(ErrOpenContainer, err)
	}
	defer query.Free()
	if err := query.SetLayout(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return errors.Join(ErrOpenContainer, err)
	}
	if _, err := query.SetDataBuffer("value", data); err != nil {
		return errors.Join(ErrOpenContainer, err)
	}
	return query.Submit()
}

// ReadShot reads back one [T,E] shot matrix.
func (c *SignalContainer) ReadShot(frame, shot, t, e int) ([]float64, error) {
	uri := c.shotURI(frame, shot)
	array, err := ArrayOpen(c.ctx, uri, tiledb.TILEDB_READ)
	if err != nil {
		return nil, errors.Join(ErrOpenContainer, err)
	}
	defer array.Free()
	defer array.Close()

	query, err := tiledb.NewQuery(c.ctx, array)
	if err != nil {
		return nil, errors.Join(ErrOpenContainer, err)
	}
	defer query.Free()

	data := make([]float64, t*e)
	if _, err := query.SetDataBuffer("value", data); err != nil {
		return nil, errors.Join(ErrOpenContainer, err)
	}
	if err := query.Submit(); err != nil {
		return nil, errors.Join(ErrOpenContainer, err)
	}
	return data, nil
}

// LoadCube assembles a SignalCubeReal of shape [T,E,A] from the
// container's frame hierarchy, one frame per plane-wave angle a,
// optionally averaging over nShots repeated transmissions per angle
// (coherent compounding before beamforming), mirroring RFDataloader's
// frame/shot stacking.
func (c *SignalContainer) LoadCube(nFrames, nShots, t, e int, averageShots bool) (*SignalCubeReal, error) {
	cube := &SignalCubeReal{T: t, E: e, A: nFrames, Data: make([]float64, t*e*nFrames)}

	for f := 0; f < nFrames; f++ {
		accum := make([]float64, t*e)
		shotsUsed := 0
		for s := 0; s < nShots; s++ {
			shot, err := c.ReadShot(f, s, t, e)
			if err != nil {
				return nil, err
			}
			for i, v := range shot {
				accum[i] += v
			}
			shotsUsed++
			if !averageShots {
				break
			}
		}
		if shotsUsed == 0 {
			return nil, errors.Join(ErrOpenContainer, fmt.Errorf("frame %d has no shots", f))
		}
		scale := 1.0
		if averageShots {
			scale = 1.0 / float64(shotsUsed)
		}
		for ei := 0; ei < e; ei++ {
			for ti := 0; ti < t; ti++ {
				cube.Data[(ei*nFrames+f)*t+ti] = accum[ti*e+ei] * scale
			}
		}
	}

	return cube, nil
}

// Close releases the container's TileDB context and VFS handle.
func (c *SignalContainer) Close() {
	c.vfs.Free()
	c.ctx.Free()
}
