// Package mapscan reads every map id search has found and reduces the
// results into the tile groupings, banner set, and root tiles render
// needs.
package mapscan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kvalheim/littleamap/internal/mcmap"
	"github.com/kvalheim/littleamap/internal/nbt"
	"github.com/kvalheim/littleamap/internal/progressbar"
)

// Config configures one scan pass.
type Config struct {
	WorldDir    string
	Concurrency int
	Quiet       bool
}

// Result is the parallel reduction of every data/map_<id>.dat read.
type Result struct {
	Banners                []mcmap.Banner
	BannersModified        time.Time
	MapsByTile             map[mcmap.Tile][]mcmap.Map
	MapsModified           time.Time
	MapIDsByBannerPosition map[[2]int32][]uint32
	RootTiles              map[mcmap.Tile]struct{}
}

func newResult() *Result {
	return &Result{
		MapsByTile:             map[mcmap.Tile][]mcmap.Map{},
		MapIDsByBannerPosition: map[[2]int32][]uint32{},
		RootTiles:              map[mcmap.Tile]struct{}{},
	}
}

type perMapResult struct {
	m        mcmap.Map
	banners  []mcmap.Banner
	modified time.Time
}

// Scan reads data/map_<id>.dat for every id in ids, classifies and
// geolocates each, and reduces the results into one Result. The reduction
// is run after every goroutine completes (errgroup's natural fail-fast
// collection), so the merge itself only ever runs on the calling
// goroutine — no locking needed beyond collecting the raw per-map results.
func Scan(ctx context.Context, cfg Config, ids map[uint32]struct{}) (*Result, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	bar := progressbar.New("scan", int64(len(ids)), cfg.Quiet)

	var mu sync.Mutex
	perMaps := make([]perMapResult, 0, len(ids))

	for id := range ids {
		id := id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer bar.Increment()

			path := filepath.Join(cfg.WorldDir, "data", fmt.Sprintf("map_%d.dat", id))
			fi, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("statting %s: %w", path, err)
			}

			raw, err := nbt.ReadGzipFile(path)
			if err != nil {
				return err
			}
			class, err := nbt.DecodeMapMeta(raw)
			if err != nil {
				return fmt.Errorf("decoding %s: %w", path, err)
			}
			if !class.Normal {
				return nil
			}

			mu.Lock()
			perMaps = append(perMaps, perMapResult{
				m:        mcmap.Map{ID: id, Modified: fi.ModTime(), Tile: class.Tile},
				banners:  class.Banners,
				modified: fi.ModTime(),
			})
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	bar.Finish()
	if err != nil {
		return nil, err
	}

	return reduce(perMaps), nil
}

// reduce merges per-map results deterministically: processed oldest to
// newest so that, at a shared banner position, the newest sighting's
// label and color are the ones that survive (§3: "label and color are
// metadata the newer sighting may refresh").
func reduce(perMaps []perMapResult) *Result {
	sort.Slice(perMaps, func(i, j int) bool { return perMaps[i].m.Less(perMaps[j].m) })

	result := newResult()
	for _, pm := range perMaps {
		root := pm.m.Tile.Root()
		result.RootTiles[root] = struct{}{}
		result.MapsByTile[pm.m.Tile] = append(result.MapsByTile[pm.m.Tile], pm.m)

		if result.MapsModified.Before(pm.modified) {
			result.MapsModified = pm.modified
		}

		if len(pm.banners) == 0 {
			continue
		}
		if result.BannersModified.Before(pm.modified) {
			result.BannersModified = pm.modified
		}
		for _, b := range pm.banners {
			key := [2]int32{b.X, b.Z}
			result.MapIDsByBannerPosition[key] = append(result.MapIDsByBannerPosition[key], pm.m.ID)
			result.Banners = mergeBanner(result.Banners, b)
		}
	}

	for tile, maps := range result.MapsByTile {
		sort.Slice(maps, func(i, j int) bool { return maps[i].Less(maps[j]) })
		result.MapsByTile[tile] = maps
	}
	sort.Slice(result.Banners, func(i, j int) bool { return result.Banners[i].Less(result.Banners[j]) })
	for k := range result.MapIDsByBannerPosition {
		ids := result.MapIDsByBannerPosition[k]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}

	return result
}

// mergeBanner inserts b into an ordered banner slice, replacing an
// existing sighting at the same position rather than duplicating it.
func mergeBanner(banners []mcmap.Banner, b mcmap.Banner) []mcmap.Banner {
	for i, existing := range banners {
		if existing.Equal(b) {
			banners[i] = b
			return banners
		}
	}
	return append(banners, b)
}
