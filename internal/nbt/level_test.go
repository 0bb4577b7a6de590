package nbt

import (
	"testing"

	gonbt "github.com/Tnze/go-mc/nbt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLevelVersion struct {
	Name string `nbt:"Name"`
}

type testSpawnPos struct {
	Pos [3]int32 `nbt:"pos"`
}

func TestDecodeLevel_OlderSpawnXZ(t *testing.T) {
	var h struct {
		Data struct {
			SpawnX  int32            `nbt:"SpawnX"`
			SpawnZ  int32            `nbt:"SpawnZ"`
			Version testLevelVersion `nbt:"Version"`
		} `nbt:"Data"`
	}
	h.Data.SpawnX = 100
	h.Data.SpawnZ = -50
	h.Data.Version.Name = "1.18.2"

	raw, err := gonbt.Marshal(h)
	require.NoError(t, err)

	level, err := DecodeLevel(raw)
	require.NoError(t, err)
	assert.Equal(t, int32(100), level.SpawnX)
	assert.Equal(t, int32(-50), level.SpawnZ)
	assert.Equal(t, "1.18.2", level.Version.String())
}

func TestDecodeLevel_NewerSpawnPos(t *testing.T) {
	var h struct {
		Data struct {
			Spawn   testSpawnPos     `nbt:"spawn"`
			Version testLevelVersion `nbt:"Version"`
		} `nbt:"Data"`
	}
	h.Data.Spawn.Pos = [3]int32{200, 64, -300}
	h.Data.Version.Name = "1.21.0"

	raw, err := gonbt.Marshal(h)
	require.NoError(t, err)

	level, err := DecodeLevel(raw)
	require.NoError(t, err)
	assert.Equal(t, int32(200), level.SpawnX)
	assert.Equal(t, int32(-300), level.SpawnZ)
}

func TestDecodeLevel_SpawnXZWinsWhenBothShapesPresent(t *testing.T) {
	var h struct {
		Data struct {
			SpawnX  int32            `nbt:"SpawnX"`
			SpawnZ  int32            `nbt:"SpawnZ"`
			Spawn   testSpawnPos     `nbt:"spawn"`
			Version testLevelVersion `nbt:"Version"`
		} `nbt:"Data"`
	}
	h.Data.SpawnX = 7
	h.Data.SpawnZ = 8
	h.Data.Spawn.Pos = [3]int32{999, 64, 999}
	h.Data.Version.Name = "1.20.4"

	raw, err := gonbt.Marshal(h)
	require.NoError(t, err)

	level, err := DecodeLevel(raw)
	require.NoError(t, err)
	assert.Equal(t, int32(7), level.SpawnX)
	assert.Equal(t, int32(8), level.SpawnZ)
}

func TestParseGameVersion_PadsMissingComponents(t *testing.T) {
	v, err := parseGameVersion("1.20")
	require.NoError(t, err)
	assert.Equal(t, "1.20.0", v.String())
}
