package nbt

import (
	"testing"

	gonbt "github.com/Tnze/go-mc/nbt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawMapMeta(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := gonbt.Marshal(v)
	require.NoError(t, err)
	return raw
}

type testMapData struct {
	Data struct {
		Banners   []bannerRaw `nbt:"banners"`
		Dimension int32       `nbt:"dimension"`
		Scale     uint8       `nbt:"scale"`
		XCenter   int32       `nbt:"xCenter"`
		ZCenter   int32       `nbt:"zCenter"`
		Colors    []byte      `nbt:"colors"`
	} `nbt:"data"`
}

func TestDecodeMapMeta_OverworldIntegerDimension(t *testing.T) {
	m := testMapData{}
	m.Data.Dimension = 0
	m.Data.Scale = 2
	m.Data.XCenter = 512
	m.Data.ZCenter = -512

	class, err := DecodeMapMeta(rawMapMeta(t, m))
	require.NoError(t, err)
	assert.True(t, class.Normal)
	assert.Equal(t, uint8(2), class.Tile.Zoom)
}

func TestDecodeMapMeta_OverworldStringDimension(t *testing.T) {
	m := struct {
		Data struct {
			Dimension string `nbt:"dimension"`
			Scale     uint8  `nbt:"scale"`
		} `nbt:"data"`
	}{}
	m.Data.Dimension = "minecraft:overworld"
	m.Data.Scale = 4

	class, err := DecodeMapMeta(rawMapMeta(t, m))
	require.NoError(t, err)
	assert.True(t, class.Normal)
}

func TestDecodeMapMeta_NetherIsExcluded(t *testing.T) {
	m := struct {
		Data struct {
			Dimension string `nbt:"dimension"`
		} `nbt:"data"`
	}{}
	m.Data.Dimension = "minecraft:the_nether"

	class, err := DecodeMapMeta(rawMapMeta(t, m))
	require.NoError(t, err)
	assert.False(t, class.Normal)
}

func TestDecodeMapMeta_UnlimitedTrackingIsExcluded(t *testing.T) {
	m := struct {
		Data struct {
			Dimension         int32 `nbt:"dimension"`
			UnlimitedTracking bool  `nbt:"unlimitedTracking"`
		} `nbt:"data"`
	}{}
	m.Data.Dimension = 0
	m.Data.UnlimitedTracking = true

	class, err := DecodeMapMeta(rawMapMeta(t, m))
	require.NoError(t, err)
	assert.False(t, class.Normal)
}

func TestDecodeMapMeta_CarriesBanners(t *testing.T) {
	m := testMapData{}
	m.Data.Dimension = 0
	m.Data.Banners = []bannerRaw{{Color: "red", Pos: rawCompound(t, struct {
		X int32 `nbt:"X"`
		Z int32 `nbt:"Z"`
	}{X: 5, Z: -7})}}

	class, err := DecodeMapMeta(rawMapMeta(t, m))
	require.NoError(t, err)
	require.Len(t, class.Banners, 1)
	assert.Equal(t, "red", class.Banners[0].Color)
	assert.Equal(t, int32(5), class.Banners[0].X)
}

func TestDecodeMapPixels_ValidatesLength(t *testing.T) {
	m := testMapData{}
	m.Data.Colors = make([]byte, 10)

	_, err := DecodeMapPixels(rawMapMeta(t, m))
	assert.Error(t, err)
}

func TestDecodeMapPixels_ExactLengthSucceeds(t *testing.T) {
	m := testMapData{}
	m.Data.Colors = make([]byte, 128*128)
	m.Data.Colors[0] = 9

	data, err := DecodeMapPixels(rawMapMeta(t, m))
	require.NoError(t, err)
	assert.Equal(t, byte(9), data[0])
}
