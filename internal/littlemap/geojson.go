package littlemap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/kvalheim/littleamap/internal/mapscan"
)

// writeBanners builds a GeoJSON FeatureCollection from scan's banner set,
// one Point feature per banner, and writes it to <output>/banners.json
// with its mtime stamped to scan.BannersModified.
//
// A banner's label counts as unique when it's non-empty and no other
// banner in the whole set shares it — computed once up front so each
// feature's "unique" property is a simple lookup.
func writeBanners(outputDir string, scan *mapscan.Result) error {
	labelCounts := make(map[string]int, len(scan.Banners))
	for _, b := range scan.Banners {
		if b.Label != nil && *b.Label != "" {
			labelCounts[*b.Label]++
		}
	}

	fc := geojson.NewFeatureCollection()
	for _, b := range scan.Banners {
		feature := geojson.NewFeature(orb.Point{float64(b.X), float64(b.Z)})

		var name interface{}
		unique := false
		if b.Label != nil && *b.Label != "" {
			name = *b.Label
			unique = labelCounts[*b.Label] == 1
		}

		ids := scan.MapIDsByBannerPosition[[2]int32{b.X, b.Z}]
		sortedIDs := append([]uint32(nil), ids...)
		sort.Slice(sortedIDs, func(i, j int) bool { return sortedIDs[i] < sortedIDs[j] })

		feature.Properties = map[string]interface{}{
			"color":  b.Color,
			"name":   name,
			"unique": unique,
			"maps":   sortedIDs,
		}
		fc.Append(feature)
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("encoding banners GeoJSON: %w", err)
	}

	path := filepath.Join(outputDir, "banners.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return os.Chtimes(path, scan.BannersModified, scan.BannersModified)
}

// bannersNeedRewrite reports whether the banner GeoJSON must be
// (re)written this run: there's at least one banner, and either the run
// is forced, pruning touched the tile tree, or the existing file predates
// the newest banner sighting.
func bannersNeedRewrite(outputDir string, scan *mapscan.Result, force, pruned bool) bool {
	if scan.BannersModified.IsZero() {
		return false
	}
	if force || pruned {
		return true
	}

	fi, err := os.Stat(filepath.Join(outputDir, "banners.json"))
	if err != nil {
		return true
	}
	return fi.ModTime().Before(scan.BannersModified)
}
