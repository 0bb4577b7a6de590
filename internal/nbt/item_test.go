package nbt

import (
	"testing"

	gonbt "github.com/Tnze/go-mc/nbt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawCompound marshals v and re-decodes it as a RawMessage, the same shape
// the NBT library itself produces when decoding a nested compound field
// into a gonbt.RawMessage.
func rawCompound(t *testing.T, v any) gonbt.RawMessage {
	t.Helper()
	data, err := gonbt.Marshal(v)
	require.NoError(t, err)
	var m gonbt.RawMessage
	require.NoError(t, gonbt.Unmarshal(data, &m))
	return m
}

func TestAppendItemMapIDs_OlderFilledMap(t *testing.T) {
	item := itemRaw{
		ID: "minecraft:filled_map",
		Tag: rawCompound(t, struct {
			Map int32 `nbt:"map"`
		}{Map: 7}),
	}

	ids := make(map[uint32]struct{})
	require.NoError(t, appendItemMapIDs(item, ids))
	assert.Equal(t, map[uint32]struct{}{7: {}}, ids)
}

func TestAppendItemMapIDs_RenamedOlderMapIsSkipped(t *testing.T) {
	item := itemRaw{
		ID: "minecraft:filled_map",
		Tag: rawCompound(t, struct {
			Map     int32 `nbt:"map"`
			Display struct {
				Name string `nbt:"Name"`
			} `nbt:"display"`
		}{Map: 7}),
	}

	ids := make(map[uint32]struct{})
	require.NoError(t, appendItemMapIDs(item, ids))
	assert.Empty(t, ids)
}

func TestAppendItemMapIDs_NewerFilledMap(t *testing.T) {
	item := itemRaw{
		ID: "minecraft:filled_map",
		Components: rawCompound(t, struct {
			MapID int32 `nbt:"minecraft:map_id"`
		}{MapID: 42}),
	}

	ids := make(map[uint32]struct{})
	require.NoError(t, appendItemMapIDs(item, ids))
	assert.Equal(t, map[uint32]struct{}{42: {}}, ids)
}

func TestAppendItemMapIDs_RenamedNewerMapIsSkipped(t *testing.T) {
	item := itemRaw{
		ID: "minecraft:filled_map",
		Components: rawCompound(t, struct {
			MapID    int32  `nbt:"minecraft:map_id"`
			ItemName string `nbt:"minecraft:item_name"`
		}{MapID: 42, ItemName: "My special map"}),
	}

	ids := make(map[uint32]struct{})
	require.NoError(t, appendItemMapIDs(item, ids))
	assert.Empty(t, ids)
}

func TestAppendItemMapIDs_ShulkerBoxOlderRecursesIntoBlockEntity(t *testing.T) {
	inner := struct {
		Items []struct {
			ID  string `nbt:"id"`
			Tag struct {
				Map int32 `nbt:"map"`
			} `nbt:"tag"`
		} `nbt:"Items"`
	}{}
	inner.Items = append(inner.Items, struct {
		ID  string `nbt:"id"`
		Tag struct {
			Map int32 `nbt:"map"`
		} `nbt:"tag"`
	}{ID: "minecraft:filled_map", Tag: struct {
		Map int32 `nbt:"map"`
	}{Map: 3}})

	item := itemRaw{
		ID: "minecraft:red_shulker_box",
		Tag: rawCompound(t, struct {
			BlockEntityTag any `nbt:"BlockEntityTag"`
		}{BlockEntityTag: inner}),
	}

	ids := make(map[uint32]struct{})
	require.NoError(t, appendItemMapIDs(item, ids))
	assert.Equal(t, map[uint32]struct{}{3: {}}, ids)
}

func TestAppendItemMapIDs_BundleNewerRecursesIntoContents(t *testing.T) {
	item := itemRaw{
		ID: "minecraft:blue_bundle",
		Components: rawCompound(t, struct {
			BundleContents []struct {
				ID         string `nbt:"id"`
				Components struct {
					MapID int32 `nbt:"minecraft:map_id"`
				} `nbt:"components"`
			} `nbt:"minecraft:bundle_contents"`
		}{BundleContents: []struct {
			ID         string `nbt:"id"`
			Components struct {
				MapID int32 `nbt:"minecraft:map_id"`
			} `nbt:"components"`
		}{{ID: "minecraft:filled_map", Components: struct {
			MapID int32 `nbt:"minecraft:map_id"`
		}{MapID: 9}}}}),
	}

	ids := make(map[uint32]struct{})
	require.NoError(t, appendItemMapIDs(item, ids))
	assert.Equal(t, map[uint32]struct{}{9: {}}, ids)
}

func TestAppendItemMapIDs_UnrecognizedItemYieldsNothing(t *testing.T) {
	item := itemRaw{ID: "minecraft:diamond_sword"}

	ids := make(map[uint32]struct{})
	require.NoError(t, appendItemMapIDs(item, ids))
	assert.Empty(t, ids)
}
