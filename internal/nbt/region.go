package nbt

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Tnze/go-mc/save/region"
)

// RegionChunks opens an Anvil region file and invokes fn once per present
// chunk with that chunk's decompressed NBT payload. A zero-length file is
// treated as holding no chunks rather than as an error, since a freshly
// allocated but never-written region file is a normal occurrence.
func RegionChunks(path string, fn func(raw []byte) error) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("statting region file %s: %w", path, err)
	}
	if fi.Size() == 0 {
		return nil
	}

	r, err := region.Open(path)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("opening region file %s: %w", path, err)
	}
	defer r.Close()

	for x := 0; x < 32; x++ {
		for z := 0; z < 32; z++ {
			if !r.ExistSector(x, z) {
				continue
			}

			sector, err := r.ReadSector(x, z)
			if err != nil {
				return fmt.Errorf("reading chunk %d,%d in %s: %w", x, z, path, err)
			}
			data, err := inflateChunk(sector)
			if err != nil {
				return fmt.Errorf("decompressing chunk %d,%d in %s: %w", x, z, path, err)
			}
			if err := fn(data); err != nil {
				return err
			}
		}
	}
	return nil
}

// inflateChunk strips the one-byte compression scheme off a raw chunk
// sector and inflates the rest: 1 is gzip, 2 is zlib (the vanilla
// default), 3 is uncompressed.
func inflateChunk(sector []byte) ([]byte, error) {
	if len(sector) == 0 {
		return nil, errors.New("empty chunk sector")
	}

	body := bytes.NewReader(sector[1:])
	var r io.Reader
	switch sector[0] {
	case 1:
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	case 2:
		zr, err := zlib.NewReader(body)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	case 3:
		r = body
	default:
		return nil, fmt.Errorf("unknown chunk compression scheme %d", sector[0])
	}
	return io.ReadAll(r)
}
