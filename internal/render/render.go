// Package render composites a world's scanned maps into a zoomable tile
// pyramid, one subtree per root tile, and writes per-map thumbnails and
// the metadata needed by a static viewer page.
package render

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/kvalheim/littleamap/internal/mcmap"
	"github.com/kvalheim/littleamap/internal/nbt"
	"github.com/kvalheim/littleamap/internal/progressbar"
)

// Config configures one render run.
type Config struct {
	WorldDir    string
	OutputDir   string
	Concurrency int
	Force       bool
	Quiet       bool
	PaletteNew  bool   // true selects the post-1.17 62-entry base color table
	Format      string // "png" or "webp"
}

func (c Config) imageExtension() string {
	if c.Format == "webp" {
		return ".webp"
	}
	return ".png"
}

// Report accumulates the outcome of rendering every root tile. Reports
// combine by set union, summation, and max — see combine.
//
// MapIDs is every map id still backing a currently valid tile this run,
// fresh or freshly drawn — the keep set Prune and thumbnail emission use.
// renderedMapIDs is the narrower set actually drawn into a tile this run;
// MapsRendered is derived from its size once every root has combined, so a
// no-op rerun (every leaf already fresh) reports zero.
type Report struct {
	Tiles          map[mcmap.Tile]struct{}
	MapIDs         map[uint32]struct{}
	renderedMapIDs map[uint32]struct{}
	MapsRendered   int
	TilesRendered  int
	MapsStacked    int
}

func newReport() Report {
	return Report{
		Tiles:          map[mcmap.Tile]struct{}{},
		MapIDs:         map[uint32]struct{}{},
		renderedMapIDs: map[uint32]struct{}{},
	}
}

// combine merges b into a, associatively and commutatively: set union for
// Tiles/MapIDs/renderedMapIDs, summation for TilesRendered, max for
// MapsStacked.
func (a *Report) combine(b Report) {
	for t := range b.Tiles {
		a.Tiles[t] = struct{}{}
	}
	for id := range b.MapIDs {
		a.MapIDs[id] = struct{}{}
	}
	for id := range b.renderedMapIDs {
		a.renderedMapIDs[id] = struct{}{}
	}
	a.TilesRendered += b.TilesRendered
	if b.MapsStacked > a.MapsStacked {
		a.MapsStacked = b.MapsStacked
	}
}

// Scan is the subset of mapscan.Result render needs; kept as a local
// interface-free struct so this package doesn't import mapscan's full
// surface (banners are consumed separately by geojson.go).
type Scan struct {
	MapsByTile map[mcmap.Tile][]mcmap.Map
	RootTiles  map[mcmap.Tile]struct{}
}

// Run renders every root tile in scan in parallel and returns the combined
// report. pixelCacheSize bounds the shared decoded-pixel LRU; a sensible
// default is cfg.Concurrency * 64.
func Run(ctx context.Context, cfg Config, scan Scan, pixelCacheSize int) (Report, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if pixelCacheSize <= 0 {
		pixelCacheSize = 256
	}

	pixels, err := lru.New[uint32, *mcmap.MapData](pixelCacheSize)
	if err != nil {
		return Report{}, fmt.Errorf("creating pixel cache: %w", err)
	}
	palette := mcmap.NewPalette(cfg.PaletteNew)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	var mu sync.Mutex
	total := newReport()

	roots := make([]mcmap.Tile, 0, len(scan.RootTiles))
	for t := range scan.RootTiles {
		roots = append(roots, t)
	}
	sort.Slice(roots, func(i, j int) bool {
		if roots[i].X != roots[j].X {
			return roots[i].X < roots[j].X
		}
		return roots[i].Y < roots[j].Y
	})

	r := &renderer{cfg: cfg, scan: scan, pixels: pixels, palette: palette}

	bar := progressbar.New("render", int64(len(roots)), cfg.Quiet)

	for _, root := range roots {
		root := root
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := r.renderRoot(root)
			if err != nil {
				return err
			}
			mu.Lock()
			total.combine(report)
			mu.Unlock()
			bar.Increment()
			return nil
		})
	}
	err = g.Wait()
	bar.Finish()
	if err != nil {
		return Report{}, err
	}

	total.MapsRendered = len(total.renderedMapIDs)

	if _, err := r.renderThumbnails(total.MapIDs); err != nil {
		return Report{}, err
	}

	return total, nil
}

type renderer struct {
	cfg     Config
	scan    Scan
	pixels  *lru.Cache[uint32, *mcmap.MapData]
	palette mcmap.Palette
}

// renderRoot walks one root tile's 4^4 leaves depth-first, maintaining a
// fixed 5-slot stack (indexed by zoom) of the maps owned by each ancestor
// on the current path. The stack is overwritten per level on descent, so
// a sibling subtree never sees a previous sibling's entries.
func (r *renderer) renderRoot(root mcmap.Tile) (Report, error) {
	report := newReport()
	var stack [5][]mcmap.Map
	if err := r.descend(root, &stack, &report); err != nil {
		return Report{}, err
	}
	return report, nil
}

func (r *renderer) descend(tile mcmap.Tile, stack *[5][]mcmap.Map, report *Report) error {
	stack[tile.Zoom] = r.scan.MapsByTile[tile]

	if tile.Zoom == 4 {
		return r.renderLeaf(tile, stack, report)
	}
	for _, child := range tile.Quadrants() {
		if err := r.descend(child, stack, report); err != nil {
			return err
		}
	}
	return nil
}

// flattenReversed concatenates the stack root-first, each level ascending
// by Map.Less as mapscan already stored it, then reverses the whole
// sequence. Under Canvas's first-draw-wins rule, drawing in this reversed
// order gives the leaf tile's own newest map top priority, its older maps
// next, then each ancestor newest-to-oldest — finer and newer data always
// beats coarser and older data.
func flattenReversed(stack *[5][]mcmap.Map) []mcmap.Map {
	var flat []mcmap.Map
	for z := 0; z < 5; z++ {
		flat = append(flat, stack[z]...)
	}
	for i, j := 0, len(flat)-1; i < j; i, j = i+1, j-1 {
		flat[i], flat[j] = flat[j], flat[i]
	}
	return flat
}

func (r *renderer) renderLeaf(tile mcmap.Tile, stack *[5][]mcmap.Map, report *Report) error {
	drawOrder := flattenReversed(stack)
	if len(drawOrder) == 0 {
		return nil
	}
	if len(drawOrder) > report.MapsStacked {
		report.MapsStacked = len(drawOrder)
	}

	var mapModified time.Time
	for _, m := range drawOrder {
		if m.Modified.After(mapModified) {
			mapModified = m.Modified
		}
	}

	tileDir := filepath.Join(r.cfg.OutputDir, "tiles", fmtInt(int(tile.Zoom)), fmtInt(int(tile.X)))
	metaPath := filepath.Join(tileDir, fmtInt(int(tile.Y))+".meta.json")

	if !r.cfg.Force {
		if fi, err := os.Stat(metaPath); err == nil && !fi.ModTime().Before(mapModified) {
			report.Tiles[tile] = struct{}{}
			for _, m := range drawOrder {
				report.MapIDs[m.ID] = struct{}{}
			}
			return nil
		}
	}

	canvas := mcmap.NewCanvas()
	for _, m := range drawOrder {
		data, err := r.loadPixels(m.ID)
		if err != nil {
			return err
		}
		canvas.Draw(tile, m, data)
		report.MapIDs[m.ID] = struct{}{}
		report.renderedMapIDs[m.ID] = struct{}{}
	}

	if err := os.MkdirAll(tileDir, 0o755); err != nil {
		return fmt.Errorf("creating tile directory %s: %w", tileDir, err)
	}

	ids := make([]uint32, len(drawOrder))
	for i, m := range drawOrder {
		ids[i] = m.ID
	}
	meta, err := json.Marshal(struct {
		Maps []uint32 `json:"maps"`
	}{Maps: ids})
	if err != nil {
		return fmt.Errorf("encoding tile metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, meta, 0o644); err != nil {
		return fmt.Errorf("writing tile metadata %s: %w", metaPath, err)
	}
	if err := os.Chtimes(metaPath, mapModified, mapModified); err != nil {
		return fmt.Errorf("stamping tile metadata mtime %s: %w", metaPath, err)
	}

	report.Tiles[tile] = struct{}{}

	if !canvas.IsDirty {
		return nil
	}

	imgPath := filepath.Join(tileDir, fmtInt(int(tile.Y))+r.cfg.imageExtension())
	if err := r.writeImage(imgPath, canvas, mapModified); err != nil {
		return err
	}
	report.TilesRendered++

	return nil
}

// loadPixels returns a map's decoded pixel grid, populating the shared LRU
// on miss.
func (r *renderer) loadPixels(id uint32) (*mcmap.MapData, error) {
	if data, ok := r.pixels.Get(id); ok {
		return data, nil
	}

	path := filepath.Join(r.cfg.WorldDir, "data", "map_"+fmtInt(int(id))+".dat")
	raw, err := nbt.ReadGzipFile(path)
	if err != nil {
		return nil, err
	}
	data, err := nbt.DecodeMapPixels(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding pixels for %s: %w", path, err)
	}

	r.pixels.Add(id, data)
	return data, nil
}

// renderThumbnails emits maps/<id>.{png,webp} for every map id in ids,
// gated by the map file's own modification time, and returns how many
// were actually (re)written.
func (r *renderer) renderThumbnails(ids map[uint32]struct{}) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	dir := filepath.Join(r.cfg.OutputDir, "maps")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating maps directory: %w", err)
	}

	written := 0
	for id := range ids {
		path := filepath.Join(r.cfg.WorldDir, "data", "map_"+fmtInt(int(id))+".dat")
		fi, err := os.Stat(path)
		if err != nil {
			return 0, fmt.Errorf("statting %s: %w", path, err)
		}

		outPath := filepath.Join(dir, fmtInt(int(id))+r.cfg.imageExtension())
		if !r.cfg.Force {
			if outFi, err := os.Stat(outPath); err == nil && !outFi.ModTime().Before(fi.ModTime()) {
				continue
			}
		}

		data, err := r.loadPixels(id)
		if err != nil {
			return 0, err
		}
		tile := mcmap.Tile{Zoom: 4}
		m := mcmap.Map{ID: id, Modified: fi.ModTime(), Tile: tile}
		canvas := mcmap.NewCanvas()
		canvas.Draw(tile, m, data)

		if err := r.writeImage(outPath, canvas, fi.ModTime()); err != nil {
			return 0, err
		}
		written++
	}
	return written, nil
}

func fmtInt(i int) string {
	return fmt.Sprintf("%d", i)
}
