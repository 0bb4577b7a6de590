// Package cache persists, across runs, which map ids were found in which
// source file category (player, entities region, block region). A single
// run-level modification-time watermark gates staleness: any source file
// older than the cache is trusted as already scanned, any newer file is
// re-decoded. This trades fine-grained per-entry invalidation for a much
// simpler, provably-correct (if occasionally over-eager) scheme.
package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Version must match exactly for a persisted cache to be trusted; bumping
// it invalidates every cache file written by a previous tool version.
const Version = "littleamap-cache-v1"

// RegionKey addresses one region file by its region-grid coordinates, as
// parsed from an r.<x>.<z>.mca filename.
type RegionKey struct {
	X, Z int32
}

// payload is the part of Cache that gets persisted. Modified is derived
// from the cache file's own mtime on load and deliberately excluded.
type payload struct {
	Version                string
	MapIDsByBlockRegion    map[RegionKey]map[uint32]struct{}
	MapIDsByEntitiesRegion map[RegionKey]map[uint32]struct{}
	MapIDsByPlayer         map[int]map[uint32]struct{}
}

// Cache is the in-memory working copy search reads and extends.
type Cache struct {
	payload
	Modified time.Time
}

// New returns an empty cache, as used when no cache file exists yet or an
// existing one failed to load.
func New() *Cache {
	return &Cache{payload: payload{
		Version:                Version,
		MapIDsByBlockRegion:    map[RegionKey]map[uint32]struct{}{},
		MapIDsByEntitiesRegion: map[RegionKey]map[uint32]struct{}{},
		MapIDsByPlayer:         map[int]map[uint32]struct{}{},
	}}
}

// Load reads a zstd-compressed gob cache file. Any problem reading it —
// missing file, corrupt stream, or a version tag that doesn't match the
// current tool version — silently yields a fresh, empty cache rather than
// an error; a cache is an optimization, never a source of truth.
func Load(path string) *Cache {
	fi, err := os.Stat(path)
	if err != nil {
		return New()
	}

	f, err := os.Open(path)
	if err != nil {
		return New()
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return New()
	}
	defer zr.Close()

	var p payload
	if err := gob.NewDecoder(zr).Decode(&p); err != nil || p.Version != Version {
		return New()
	}

	c := &Cache{payload: p, Modified: fi.ModTime()}
	if c.MapIDsByBlockRegion == nil {
		c.MapIDsByBlockRegion = map[RegionKey]map[uint32]struct{}{}
	}
	if c.MapIDsByEntitiesRegion == nil {
		c.MapIDsByEntitiesRegion = map[RegionKey]map[uint32]struct{}{}
	}
	if c.MapIDsByPlayer == nil {
		c.MapIDsByPlayer = map[int]map[uint32]struct{}{}
	}
	return c
}

// IsExpiredFor reports whether sourcePath must be re-scanned: true when the
// cache has no watermark yet, when sourcePath cannot be statted, or when
// sourcePath was modified strictly after that watermark. This is the cache's only staleness predicate — there is
// no per-entry timestamp.
func (c *Cache) IsExpiredFor(sourcePath string) bool {
	if c.Modified.IsZero() {
		return true
	}
	fi, err := os.Stat(sourcePath)
	if err != nil {
		return true
	}
	return c.Modified.Before(fi.ModTime())
}

// SetPlayer records the map ids found in the playerdata file at the given
// stable dense index.
func (c *Cache) SetPlayer(index int, ids map[uint32]struct{}) {
	c.MapIDsByPlayer[index] = ids
}

// SetBlockRegion records the map ids found across a region/r.<x>.<z>.mca
// file's chunks.
func (c *Cache) SetBlockRegion(key RegionKey, ids map[uint32]struct{}) {
	c.MapIDsByBlockRegion[key] = ids
}

// SetEntitiesRegion records the map ids found across an
// entities/r.<x>.<z>.mca file's chunks.
func (c *Cache) SetEntitiesRegion(key RegionKey, ids map[uint32]struct{}) {
	c.MapIDsByEntitiesRegion[key] = ids
}

// AllMapIDs returns the union of every id recorded across all three
// categories — the driving input to map scan.
func (c *Cache) AllMapIDs() map[uint32]struct{} {
	all := make(map[uint32]struct{})
	merge := func(sets map[uint32]struct{}) {
		for id := range sets {
			all[id] = struct{}{}
		}
	}
	for _, ids := range c.MapIDsByPlayer {
		merge(ids)
	}
	for _, ids := range c.MapIDsByBlockRegion {
		merge(ids)
	}
	for _, ids := range c.MapIDsByEntitiesRegion {
		merge(ids)
	}
	return all
}

// WriteTo zstd-compresses and gob-encodes the cache's persisted payload to
// path, creating its parent directory if needed.
func (c *Cache) WriteTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	if err := gob.NewEncoder(zw).Encode(c.payload); err != nil {
		_ = zw.Close()
		return fmt.Errorf("encoding cache: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flushing cache compressor: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing cache file %s: %w", path, err)
	}
	return nil
}
