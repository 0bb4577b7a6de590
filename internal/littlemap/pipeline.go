// Package littlemap wires the three core subsystems (search, map scan,
// render) into the load -> search -> scan -> render -> emit pipeline the
// CLI drives, and owns the concerns that sit above all three: the
// version-compatibility gate, the banners GeoJSON, and index.html.
package littlemap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/kvalheim/littleamap/internal/cache"
	"github.com/kvalheim/littleamap/internal/mapscan"
	"github.com/kvalheim/littleamap/internal/nbt"
	"github.com/kvalheim/littleamap/internal/render"
	"github.com/kvalheim/littleamap/internal/search"
)

// Name and Version identify this tool in index.html's "generator" field.
// The level.dat version gate is CompatibleVersions, not Version.
const (
	Name    = "littleamap"
	Version = "0.1.0"
)

// CompatibleVersions is the build-time default range of level.dat game
// versions this tool knows how to decode; a world outside it aborts the
// run. Overridable per run via Config.VersionConstraint.
const CompatibleVersions = ">=1.16.2, <1.22.0"

// Config configures one pipeline run; it's the union of everything
// search.Config and render.Config need plus the handful of knobs that
// apply to the whole run.
type Config struct {
	WorldDir          string
	OutputDir         string
	Concurrency       int
	Force             bool
	Quiet             bool
	Format            string // "png" or "webp"
	VersionConstraint string // e.g. ">=1.18.0, <1.22.0"; empty uses CompatibleVersions
	Bounds            *search.Bounds
}

func (c Config) cachePath() string {
	return filepath.Join(c.OutputDir, ".cache", Name+".dat")
}

// Summary is the human-readable outcome of one Run, printed by the CLI.
type Summary struct {
	TilesRendered int
	MapsRendered  int
	TilesPruned   int
	MapsPruned    int
	Elapsed       time.Duration
}

// UpToDate reports whether the run found nothing to do, in which case the
// CLI should print "already up-to-date" rather than the tile/map counts.
func (s Summary) UpToDate() bool {
	return s.TilesRendered == 0 && s.MapsRendered == 0 && s.TilesPruned == 0 && s.MapsPruned == 0
}

// LoadLevel reads and decodes <world>/level.dat and checks its version
// against cfg.VersionConstraint, or against CompatibleVersions when no
// override was given. The gate is always on.
func LoadLevel(cfg Config) (nbt.Level, error) {
	path := filepath.Join(cfg.WorldDir, "level.dat")
	raw, err := nbt.ReadGzipFile(path)
	if err != nil {
		return nbt.Level{}, fmt.Errorf("reading %s: %w", path, err)
	}

	level, err := nbt.DecodeLevel(raw)
	if err != nil {
		return nbt.Level{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	required := cfg.VersionConstraint
	if required == "" {
		required = CompatibleVersions
	}
	constraint, err := semver.NewConstraint(required)
	if err != nil {
		return nbt.Level{}, fmt.Errorf("parsing version constraint %q: %w", required, err)
	}
	if !constraint.Check(level.Version) {
		return nbt.Level{}, fmt.Errorf("world version %s does not satisfy required %s", level.Version, required)
	}
	return level, nil
}

// Search runs the search phase: sweep player/entity/block sources,
// extending the on-disk cache, and returns the union of every map id now
// known. This is one of the two verbs independently exposed so each can be
// driven (and benchmarked) on its own.
func Search(ctx context.Context, cfg Config) (map[uint32]struct{}, error) {
	c := cache.Load(cfg.cachePath())
	return search.Run(ctx, search.Config{
		WorldDir:    cfg.WorldDir,
		CachePath:   cfg.cachePath(),
		Concurrency: cfg.Concurrency,
		Quiet:       cfg.Quiet,
		Bounds:      cfg.Bounds,
	}, c)
}

// CachedMapIDs returns the union of every map id already recorded in the
// on-disk cache, without running a new search sweep — the input render's
// standalone verb needs when it's invoked without first calling Search.
func CachedMapIDs(cfg Config) (map[uint32]struct{}, error) {
	return cache.Load(cfg.cachePath()).AllMapIDs(), nil
}

// Render runs the map-scan and render phases against a set of map ids
// already known (typically Search's return value), then prunes orphaned
// output and refreshes banners.json/index.html. This is the second of the
// two independently exposed verbs.
func Render(ctx context.Context, cfg Config, ids map[uint32]struct{}) (Summary, error) {
	start := time.Now()

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("creating output directory: %w", err)
	}

	scan, err := mapscan.Scan(ctx, mapscan.Config{
		WorldDir:    cfg.WorldDir,
		Concurrency: effectiveConcurrency(cfg.Concurrency),
		Quiet:       cfg.Quiet,
	}, ids)
	if err != nil {
		return Summary{}, fmt.Errorf("scanning maps: %w", err)
	}

	renderCfg := render.Config{
		WorldDir:    cfg.WorldDir,
		OutputDir:   cfg.OutputDir,
		Concurrency: cfg.Concurrency,
		Force:       cfg.Force,
		Quiet:       cfg.Quiet,
		PaletteNew:  true,
		Format:      cfg.Format,
	}

	report, err := render.Run(ctx, renderCfg, toRenderScan(scan), effectiveConcurrency(cfg.Concurrency)*64)
	if err != nil {
		return Summary{}, fmt.Errorf("rendering tiles: %w", err)
	}

	pruned, err := render.Prune(renderCfg, report.Tiles, report.MapIDs)
	if err != nil {
		return Summary{}, fmt.Errorf("pruning stale output: %w", err)
	}

	if bannersNeedRewrite(cfg.OutputDir, scan, cfg.Force, pruned.Pruned()) {
		if err := writeBanners(cfg.OutputDir, scan); err != nil {
			return Summary{}, err
		}
	}

	level, err := LoadLevel(cfg)
	if err != nil {
		return Summary{}, err
	}
	latest := scan.MapsModified
	if scan.BannersModified.After(latest) {
		latest = scan.BannersModified
	}
	if err := writeIndex(cfg.OutputDir, Name, Version, level.SpawnX, level.SpawnZ, latest, report.MapsStacked); err != nil {
		return Summary{}, err
	}

	return Summary{
		TilesRendered: report.TilesRendered,
		MapsRendered:  report.MapsRendered,
		TilesPruned:   pruned.TilesPruned,
		MapsPruned:    pruned.MapsPruned,
		Elapsed:       time.Since(start),
	}, nil
}

// Run performs the whole pipeline: load level.dat, check the version gate,
// search, then render.
func Run(ctx context.Context, cfg Config) (Summary, error) {
	if _, err := LoadLevel(cfg); err != nil {
		return Summary{}, err
	}
	ids, err := Search(ctx, cfg)
	if err != nil {
		return Summary{}, err
	}
	return Render(ctx, cfg, ids)
}

func effectiveConcurrency(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

// toRenderScan adapts a mapscan.Result to the narrower Scan shape render
// needs, so render doesn't have to import mapscan's full result type
// (which also carries banners, consumed separately here).
func toRenderScan(scan *mapscan.Result) render.Scan {
	return render.Scan{
		MapsByTile: scan.MapsByTile,
		RootTiles:  scan.RootTiles,
	}
}
