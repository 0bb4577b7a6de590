package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kvalheim/littleamap/internal/mcmap"
)

// PruneResult reports how much orphaned output render's pruning pass
// removed.
type PruneResult struct {
	TilesPruned int
	MapsPruned  int
}

// Pruned reports whether anything was removed; a nonzero count here forces
// the banner GeoJSON to be re-emitted regardless of its own mtime.
func (p PruneResult) Pruned() bool {
	return p.TilesPruned > 0 || p.MapsPruned > 0
}

// Prune walks <output>/tiles and <output>/maps and deletes any image (plus
// its tile's .meta.json sidecar) whose address isn't in this run's
// rendered set. It runs serially, after all rendering, since by then every
// writer goroutine has already finished touching the filesystem.
func Prune(cfg Config, tiles map[mcmap.Tile]struct{}, keepMapIDs map[uint32]struct{}) (PruneResult, error) {
	var result PruneResult

	tilesDir := filepath.Join(cfg.OutputDir, "tiles")
	ext := cfg.imageExtension()

	err := filepath.WalkDir(tilesDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ext {
			return nil
		}

		tile, ok := parseTilePath(tilesDir, path)
		if !ok {
			return nil
		}
		if _, keep := tiles[tile]; keep {
			return nil
		}

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("pruning tile image %s: %w", path, err)
		}
		metaPath := strings.TrimSuffix(path, ext) + ".meta.json"
		if err := os.Remove(metaPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("pruning tile metadata %s: %w", metaPath, err)
		}
		result.TilesPruned++
		return nil
	})
	if err != nil {
		return PruneResult{}, err
	}

	mapsDir := filepath.Join(cfg.OutputDir, "maps")
	err = filepath.WalkDir(mapsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ext {
			return nil
		}

		id, ok := parseMapID(mapsDir, path, ext)
		if !ok {
			return nil
		}
		if _, keep := keepMapIDs[id]; keep {
			return nil
		}

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("pruning map thumbnail %s: %w", path, err)
		}
		result.MapsPruned++
		return nil
	})
	if err != nil {
		return PruneResult{}, err
	}

	return result, nil
}

// parseTilePath recovers (zoom,x,y) from <tilesDir>/<zoom>/<x>/<y>.<ext>.
func parseTilePath(tilesDir, path string) (mcmap.Tile, bool) {
	rel, err := filepath.Rel(tilesDir, path)
	if err != nil {
		return mcmap.Tile{}, false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 3 {
		return mcmap.Tile{}, false
	}

	zoom, err := strconv.Atoi(parts[0])
	if err != nil {
		return mcmap.Tile{}, false
	}
	x, err := strconv.Atoi(parts[1])
	if err != nil {
		return mcmap.Tile{}, false
	}
	y, err := strconv.Atoi(strings.TrimSuffix(parts[2], filepath.Ext(parts[2])))
	if err != nil {
		return mcmap.Tile{}, false
	}

	return mcmap.Tile{Zoom: uint8(zoom), X: int32(x), Y: int32(y)}, true
}

// parseMapID recovers the map id from <mapsDir>/<id>.<ext>.
func parseMapID(mapsDir, path, ext string) (uint32, bool) {
	rel, err := filepath.Rel(mapsDir, path)
	if err != nil {
		return 0, false
	}
	id, err := strconv.ParseUint(strings.TrimSuffix(rel, ext), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(id), true
}
