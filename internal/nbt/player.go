package nbt

import (
	"fmt"

	gonbt "github.com/Tnze/go-mc/nbt"
)

type playerRaw struct {
	Inventory  []itemRaw `nbt:"Inventory"`
	EnderItems []itemRaw `nbt:"EnderItems"`
	Equipment  struct {
		Offhand gonbt.RawMessage `nbt:"offhand"`
	} `nbt:"equipment"`
}

// DecodePlayerMapIDs decodes a playerdata/<uuid>.dat payload (already
// gzip-decompressed) to the set of filled_map ids reachable from the
// player's main inventory, ender chest, and (1.20.5+) offhand slot.
func DecodePlayerMapIDs(raw []byte) (map[uint32]struct{}, error) {
	var p playerRaw
	if err := gonbt.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decoding player data: %w", err)
	}

	ids := make(map[uint32]struct{})
	if err := collectItemsMapIDs(p.Inventory, ids); err != nil {
		return nil, err
	}
	if err := collectItemsMapIDs(p.EnderItems, ids); err != nil {
		return nil, err
	}
	if len(p.Equipment.Offhand.Data) > 0 {
		if err := decodeItemMapIDs(p.Equipment.Offhand, ids); err != nil {
			return nil, err
		}
	}
	return ids, nil
}
