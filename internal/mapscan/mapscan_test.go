package mapscan

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gonbt "github.com/Tnze/go-mc/nbt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testBanner struct {
	Color string           `nbt:"Color"`
	Pos   gonbt.RawMessage `nbt:"Pos"`
}

type testBannerPos struct {
	X int32 `nbt:"X"`
	Z int32 `nbt:"Z"`
}

type testMapData struct {
	Data struct {
		Banners   []testBanner `nbt:"banners"`
		Dimension int32        `nbt:"dimension"`
		Scale     uint8        `nbt:"scale"`
		XCenter   int32        `nbt:"xCenter"`
		ZCenter   int32        `nbt:"zCenter"`
		Colors    []byte       `nbt:"colors"`
	} `nbt:"data"`
}

func rawCompound(t *testing.T, v any) gonbt.RawMessage {
	t.Helper()
	data, err := gonbt.Marshal(v)
	require.NoError(t, err)
	var m gonbt.RawMessage
	require.NoError(t, gonbt.Unmarshal(data, &m))
	return m
}

func writeGzippedMap(t *testing.T, worldDir string, id uint32, m testMapData, modTime time.Time) {
	t.Helper()

	raw, err := gonbt.Marshal(m)
	require.NoError(t, err)

	path := filepath.Join(worldDir, "data", "map_"+itoa(id)+".dat")
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

func itoa(id uint32) string {
	if id == 0 {
		return "0"
	}
	digits := make([]byte, 0, 10)
	for id > 0 {
		digits = append([]byte{byte('0' + id%10)}, digits...)
		id /= 10
	}
	return string(digits)
}

func TestScan_ClassifiesAndGroupsByTile(t *testing.T) {
	world := t.TempDir()

	older := time.Now().Add(-time.Hour)
	newer := time.Now()

	m1 := testMapData{}
	m1.Data.Dimension = 0
	m1.Data.Scale = 4
	m1.Data.XCenter = 0
	m1.Data.ZCenter = 0
	writeGzippedMap(t, world, 1, m1, older)

	m2 := testMapData{}
	m2.Data.Dimension = 0
	m2.Data.Scale = 4
	m2.Data.XCenter = 0
	m2.Data.ZCenter = 0
	writeGzippedMap(t, world, 2, m2, newer)

	// Nether map: excluded entirely.
	m3 := testMapData{}
	m3.Data.Dimension = -1
	writeGzippedMap(t, world, 3, m3, newer)

	ids := map[uint32]struct{}{1: {}, 2: {}, 3: {}}

	result, err := Scan(context.Background(), Config{WorldDir: world, Concurrency: 2, Quiet: true}, ids)
	require.NoError(t, err)

	require.Len(t, result.MapsByTile, 1)
	for _, maps := range result.MapsByTile {
		require.Len(t, maps, 2)
		// Sorted oldest-to-newest within a tile.
		assert.Equal(t, uint32(1), maps[0].ID)
		assert.Equal(t, uint32(2), maps[1].ID)
	}
	assert.Len(t, result.RootTiles, 1)
}

func TestScan_MergesBannerSightingsAtSharedPosition(t *testing.T) {
	world := t.TempDir()

	older := time.Now().Add(-time.Hour)
	newer := time.Now()

	m1 := testMapData{}
	m1.Data.Dimension = 0
	m1.Data.Banners = []testBanner{{Color: "red", Pos: rawCompound(t, testBannerPos{X: 10, Z: 20})}}
	writeGzippedMap(t, world, 1, m1, older)

	m2 := testMapData{}
	m2.Data.Dimension = 0
	m2.Data.Banners = []testBanner{{Color: "blue", Pos: rawCompound(t, testBannerPos{X: 10, Z: 20})}}
	writeGzippedMap(t, world, 2, m2, newer)

	ids := map[uint32]struct{}{1: {}, 2: {}}
	result, err := Scan(context.Background(), Config{WorldDir: world, Concurrency: 2, Quiet: true}, ids)
	require.NoError(t, err)

	require.Len(t, result.Banners, 1)
	assert.Equal(t, "blue", result.Banners[0].Color, "the newer sighting's color must win")

	key := [2]int32{10, 20}
	assert.ElementsMatch(t, []uint32{1, 2}, result.MapIDsByBannerPosition[key])
}
