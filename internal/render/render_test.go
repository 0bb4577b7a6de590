package render

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	gonbt "github.com/Tnze/go-mc/nbt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvalheim/littleamap/internal/mcmap"
)

type testMapFile struct {
	Data struct {
		Dimension int32  `nbt:"dimension"`
		Scale     uint8  `nbt:"scale"`
		XCenter   int32  `nbt:"xCenter"`
		ZCenter   int32  `nbt:"zCenter"`
		Colors    []byte `nbt:"colors"`
	} `nbt:"data"`
}

func writeMapFile(t *testing.T, worldDir string, id uint32, fill byte, modTime time.Time) {
	t.Helper()

	var m testMapFile
	m.Data.Colors = make([]byte, 128*128)
	for i := range m.Data.Colors {
		m.Data.Colors[i] = fill
	}

	raw, err := gonbt.Marshal(m)
	require.NoError(t, err)

	path := filepath.Join(worldDir, "data", fmt.Sprintf("map_%d.dat", id))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write(raw)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func pixelAt(t *testing.T, path string, x, y int) color.RGBA {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestFlattenReversed_NewestFinestFirst(t *testing.T) {
	t0 := time.Unix(1000, 0)
	var stack [5][]mcmap.Map
	stack[0] = []mcmap.Map{{ID: 1, Modified: t0}}
	stack[3] = []mcmap.Map{{ID: 2, Modified: t0}, {ID: 3, Modified: t0.Add(time.Hour)}}
	stack[4] = []mcmap.Map{{ID: 4, Modified: t0}}

	flat := flattenReversed(&stack)
	ids := make([]uint32, len(flat))
	for i, m := range flat {
		ids[i] = m.ID
	}
	assert.Equal(t, []uint32{4, 3, 2, 1}, ids)
}

func TestRun_RendersSingleLeafTile(t *testing.T) {
	world := t.TempDir()
	out := t.TempDir()

	modified := time.Now().Add(-time.Minute).Truncate(time.Second)
	writeMapFile(t, world, 0, 4, modified)

	tile := mcmap.Tile{Zoom: 4, X: 0, Y: 0}
	scan := Scan{
		MapsByTile: map[mcmap.Tile][]mcmap.Map{tile: {{ID: 0, Modified: modified, Tile: tile}}},
		RootTiles:  map[mcmap.Tile]struct{}{tile.Root(): {}},
	}
	cfg := Config{WorldDir: world, OutputDir: out, Concurrency: 1, Quiet: true, PaletteNew: true, Format: "png"}

	report, err := Run(context.Background(), cfg, scan, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TilesRendered)
	assert.Equal(t, 1, report.MapsRendered)
	assert.Equal(t, 1, report.MapsStacked)

	imgPath := filepath.Join(out, "tiles", "4", "0", "0.png")
	assert.FileExists(t, imgPath)
	assert.Equal(t, mcmap.NewPalette(true).RGBA(4), pixelAt(t, imgPath, 0, 0))

	metaData, err := os.ReadFile(filepath.Join(out, "tiles", "4", "0", "0.meta.json"))
	require.NoError(t, err)
	var meta struct {
		Maps []uint32 `json:"maps"`
	}
	require.NoError(t, json.Unmarshal(metaData, &meta))
	assert.Equal(t, []uint32{0}, meta.Maps)

	assert.FileExists(t, filepath.Join(out, "maps", "0.png"))

	// A rerun with no source changes renders nothing, but still reports
	// every fresh tile and map as kept so pruning leaves them alone.
	rerun, err := Run(context.Background(), cfg, scan, 0)
	require.NoError(t, err)
	assert.Zero(t, rerun.TilesRendered)
	assert.Zero(t, rerun.MapsRendered)
	assert.Contains(t, rerun.Tiles, tile)
	assert.Contains(t, rerun.MapIDs, uint32(0))
}

func TestRun_StackedMapsFinerWins(t *testing.T) {
	world := t.TempDir()
	out := t.TempDir()

	modified := time.Now().Add(-time.Minute).Truncate(time.Second)
	writeMapFile(t, world, 0, 4, modified) // scale 0: covers only the leaf tile
	writeMapFile(t, world, 1, 8, modified) // scale 1: covers the whole zoom-3 parent

	leaf := mcmap.Tile{Zoom: 4, X: 0, Y: 0}
	parent := mcmap.Tile{Zoom: 3, X: 0, Y: 0}
	scan := Scan{
		MapsByTile: map[mcmap.Tile][]mcmap.Map{
			leaf:   {{ID: 0, Modified: modified, Tile: leaf}},
			parent: {{ID: 1, Modified: modified, Tile: parent}},
		},
		RootTiles: map[mcmap.Tile]struct{}{leaf.Root(): {}},
	}
	cfg := Config{WorldDir: world, OutputDir: out, Concurrency: 1, Quiet: true, PaletteNew: true, Format: "png"}

	report, err := Run(context.Background(), cfg, scan, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, report.TilesRendered, "the shared leaf plus the parent's three other quadrants")
	assert.Equal(t, 2, report.MapsStacked)

	palette := mcmap.NewPalette(true)

	// On the shared leaf, map 0 (finer) paints over map 1.
	shared := filepath.Join(out, "tiles", "4", "0", "0.png")
	assert.Equal(t, palette.RGBA(4), pixelAt(t, shared, 0, 0))

	metaData, err := os.ReadFile(filepath.Join(out, "tiles", "4", "0", "0.meta.json"))
	require.NoError(t, err)
	var meta struct {
		Maps []uint32 `json:"maps"`
	}
	require.NoError(t, json.Unmarshal(metaData, &meta))
	assert.Equal(t, []uint32{0, 1}, meta.Maps, "draw order: finest and newest first")

	// A sibling leaf only map 1 covers shows map 1's pixels.
	sibling := filepath.Join(out, "tiles", "4", "1", "1.png")
	assert.Equal(t, palette.RGBA(8), pixelAt(t, sibling, 0, 0))
}

func TestRun_TransparentMapEmitsMetadataButNoImage(t *testing.T) {
	world := t.TempDir()
	out := t.TempDir()

	modified := time.Now().Add(-time.Minute).Truncate(time.Second)
	writeMapFile(t, world, 0, 0, modified) // all pixels transparent

	tile := mcmap.Tile{Zoom: 4, X: 0, Y: 0}
	scan := Scan{
		MapsByTile: map[mcmap.Tile][]mcmap.Map{tile: {{ID: 0, Modified: modified, Tile: tile}}},
		RootTiles:  map[mcmap.Tile]struct{}{tile.Root(): {}},
	}
	cfg := Config{WorldDir: world, OutputDir: out, Concurrency: 1, Quiet: true, PaletteNew: true, Format: "png"}

	report, err := Run(context.Background(), cfg, scan, 0)
	require.NoError(t, err)
	assert.Zero(t, report.TilesRendered)
	assert.NoFileExists(t, filepath.Join(out, "tiles", "4", "0", "0.png"))
	assert.FileExists(t, filepath.Join(out, "tiles", "4", "0", "0.meta.json"))
}
