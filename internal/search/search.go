// Package search implements the parallel, cache-gated sweep over a
// world's three map-referencing input sources: player files, entity
// region files, and block region files.
package search

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kvalheim/littleamap/internal/cache"
	"github.com/kvalheim/littleamap/internal/nbt"
	"github.com/kvalheim/littleamap/internal/progressbar"
)

var uuidFilePattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\.dat$`)

var regionFilePattern = regexp.MustCompile(`^r\.(-?\d+)\.(-?\d+)\.mca$`)

// Bounds restricts region-file scanning to region coordinates inside the
// inclusive box (X0,Z0)-(X1,Z1).
type Bounds struct {
	X0, Z0, X1, Z1 int32
}

func (b *Bounds) contains(x, z int32) bool {
	if b == nil {
		return true
	}
	return x >= b.X0 && x <= b.X1 && z >= b.Z0 && z <= b.Z1
}

// Config configures one search run.
type Config struct {
	WorldDir    string
	CachePath   string
	Concurrency int
	Quiet       bool
	Bounds      *Bounds
}

// Run sweeps playerdata, entities and region files, extending c with
// whatever changed since c's watermark, persists c to cfg.CachePath, and
// returns the union of every map id now known across the whole cache —
// the driving input to map scan.
func Run(ctx context.Context, cfg Config, c *cache.Cache) (map[uint32]struct{}, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}

	if err := searchPlayers(ctx, cfg, c); err != nil {
		return nil, err
	}
	if err := searchRegions(ctx, cfg, c, "entities", c.SetEntitiesRegion, nbt.DecodeEntitiesChunkMapIDs); err != nil {
		return nil, err
	}
	if err := searchRegions(ctx, cfg, c, "region", c.SetBlockRegion, nbt.DecodeBlockChunkMapIDs); err != nil {
		return nil, err
	}

	if err := c.WriteTo(cfg.CachePath); err != nil {
		return nil, err
	}

	return c.AllMapIDs(), nil
}

type playerResult struct {
	index int
	ids   map[uint32]struct{}
}

// searchPlayers globs playerdata/*.dat, keeps only well-formed UUID names,
// and assigns each surviving path a stable dense index by sorting paths
// first — the cache keys player entries by this index, so it must be
// reproducible across runs.
func searchPlayers(ctx context.Context, cfg Config, c *cache.Cache) error {
	matches, err := filepath.Glob(filepath.Join(cfg.WorldDir, "playerdata", "*.dat"))
	if err != nil {
		return fmt.Errorf("globbing player files: %w", err)
	}

	var paths []string
	for _, m := range matches {
		if uuidFilePattern.MatchString(filepath.Base(m)) {
			paths = append(paths, m)
		}
	}
	sort.Strings(paths)

	type indexedPath struct {
		index int
		path  string
	}
	var expired []indexedPath
	for i, path := range paths {
		if c.IsExpiredFor(path) {
			expired = append(expired, indexedPath{index: i, path: path})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	bar := progressbar.New("players", int64(len(expired)), cfg.Quiet)

	var mu sync.Mutex
	var results []playerResult

	for _, ip := range expired {
		ip := ip
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			raw, err := nbt.ReadGzipFile(ip.path)
			if err != nil {
				return err
			}
			ids, err := nbt.DecodePlayerMapIDs(raw)
			if err != nil {
				return fmt.Errorf("decoding player file %s: %w", ip.path, err)
			}

			mu.Lock()
			results = append(results, playerResult{index: ip.index, ids: ids})
			mu.Unlock()
			bar.Increment()
			return nil
		})
	}
	err = g.Wait()
	bar.Finish()
	if err != nil {
		return err
	}

	for _, r := range results {
		c.SetPlayer(r.index, r.ids)
	}
	return nil
}

type regionResult struct {
	key cache.RegionKey
	ids map[uint32]struct{}
}

// searchRegions globs <subdir>/r.*.*.mca, keeps files within bounds and
// expired per the cache, decodes each with decode, and records the
// per-region id sets via set.
func searchRegions(
	ctx context.Context,
	cfg Config,
	c *cache.Cache,
	subdir string,
	set func(cache.RegionKey, map[uint32]struct{}),
	decode func([]byte) (map[uint32]struct{}, error),
) error {
	matches, err := filepath.Glob(filepath.Join(cfg.WorldDir, subdir, "r.*.*.mca"))
	if err != nil {
		return fmt.Errorf("globbing %s region files: %w", subdir, err)
	}

	type keyedPath struct {
		key  cache.RegionKey
		path string
	}
	var expired []keyedPath
	for _, path := range matches {
		m := regionFilePattern.FindStringSubmatch(filepath.Base(path))
		if m == nil {
			continue
		}
		x, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		z, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		key := cache.RegionKey{X: int32(x), Z: int32(z)}
		if !cfg.Bounds.contains(key.X, key.Z) {
			continue
		}
		if !c.IsExpiredFor(path) {
			continue
		}
		expired = append(expired, keyedPath{key: key, path: path})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	bar := progressbar.New(subdir, int64(len(expired)), cfg.Quiet)

	var mu sync.Mutex
	var results []regionResult

	for _, kp := range expired {
		key, path := kp.key, kp.path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			ids := make(map[uint32]struct{})
			err := nbt.RegionChunks(path, func(raw []byte) error {
				chunkIDs, err := decode(raw)
				if err != nil {
					return fmt.Errorf("decoding chunk in %s: %w", path, err)
				}
				for id := range chunkIDs {
					ids[id] = struct{}{}
				}
				return nil
			})
			if err != nil {
				return err
			}

			mu.Lock()
			results = append(results, regionResult{key: key, ids: ids})
			mu.Unlock()
			bar.Increment()
			return nil
		})
	}
	err = g.Wait()
	bar.Finish()
	if err != nil {
		return err
	}

	for _, r := range results {
		set(r.key, r.ids)
	}
	return nil
}
