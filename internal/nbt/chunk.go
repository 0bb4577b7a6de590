package nbt

import (
	"fmt"

	gonbt "github.com/Tnze/go-mc/nbt"
)

type entityRaw struct {
	Item  gonbt.RawMessage `nbt:"Item"`
	Items []itemRaw        `nbt:"Items"`
}

type entitiesChunkRaw struct {
	Entities []entityRaw `nbt:"Entities"`
}

// DecodeEntitiesChunkMapIDs decodes one chunk blob from an entities/*.mca
// region file to the set of filled_map ids carried by item frames (a
// single Item tag) and inventory-bearing entities like minecarts, boats and
// llamas (an Items list) anywhere in the chunk.
func DecodeEntitiesChunkMapIDs(raw []byte) (map[uint32]struct{}, error) {
	var chunk entitiesChunkRaw
	if err := gonbt.Unmarshal(raw, &chunk); err != nil {
		return nil, fmt.Errorf("decoding entities chunk: %w", err)
	}

	ids := make(map[uint32]struct{})
	for _, e := range chunk.Entities {
		if len(e.Item.Data) > 0 {
			if err := decodeItemMapIDs(e.Item, ids); err != nil {
				return nil, err
			}
		}
		if err := collectItemsMapIDs(e.Items, ids); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

type levelChunkRaw struct {
	Level *struct {
		TileEntities []blockEntityItems `nbt:"TileEntities"`
	} `nbt:"Level"`
	BlockEntities []blockEntityItems `nbt:"block_entities"`
}

// DecodeBlockChunkMapIDs decodes one chunk blob from a region/*.mca file to
// the set of filled_map ids carried by its block entities (chests,
// shulker boxes, barrels, ...). Block entities live at Level.TileEntities
// in saves up to 1.17 and at top-level block_entities from 1.18 on.
func DecodeBlockChunkMapIDs(raw []byte) (map[uint32]struct{}, error) {
	var chunk levelChunkRaw
	if err := gonbt.Unmarshal(raw, &chunk); err != nil {
		return nil, fmt.Errorf("decoding block chunk: %w", err)
	}

	blockEntities := chunk.BlockEntities
	if chunk.Level != nil {
		blockEntities = chunk.Level.TileEntities
	}

	ids := make(map[uint32]struct{})
	for _, be := range blockEntities {
		if err := collectItemsMapIDs(be.Items, ids); err != nil {
			return nil, err
		}
	}
	return ids, nil
}
