package littlemap

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"
)

// indexTemplateSource is the fixed static-viewer page; the pipeline only ever
// fills the handful of scalar fields below. The actual tile-viewing
// JavaScript is an external, versioned asset the page loads by convention
// ("viewer.js" alongside index.html) — generating it is out of scope here.
const indexTemplateSource = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Generator}}</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<link rel="stylesheet" href="viewer.css?v={{.CacheVersion}}">
</head>
<body>
<div id="map"></div>
<script>
window.LITTLEAMAP = {
  center: [{{index .Center 0}}, {{index .Center 1}}],
  generator: {{.Generator}},
  cacheVersion: {{.CacheVersion}},
  mapsStacked: {{.MapsStacked}}
};
</script>
<script src="viewer.js?v={{.CacheVersion}}"></script>
</body>
</html>
`

var indexTemplate = template.Must(template.New("index.html").Parse(indexTemplateSource))

type indexPage struct {
	Center       [2]int32
	Generator    string
	CacheVersion string
	MapsStacked  int
}

// writeIndex always overwrites <output>/index.html with the fixed viewer
// template, centered on the world's spawn point.
func writeIndex(outputDir, toolName, toolVersion string, spawnX, spawnZ int32, latestModified time.Time, mapsStacked int) error {
	page := indexPage{
		Center:       [2]int32{spawnZ, spawnX},
		Generator:    fmt.Sprintf("%s %s", toolName, toolVersion),
		CacheVersion: cacheVersionHex(latestModified),
		MapsStacked:  mapsStacked,
	}

	path := filepath.Join(outputDir, "index.html")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := indexTemplate.Execute(f, page); err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	return nil
}

// cacheVersionHex is the hex seconds-since-epoch of the latest of
// banners_modified/maps_modified, used as a cache-busting query string for
// the static assets the page references.
func cacheVersionHex(t time.Time) string {
	if t.IsZero() {
		return "0"
	}
	return fmt.Sprintf("%x", t.Unix())
}
