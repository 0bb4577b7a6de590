package nbt

import (
	"fmt"

	gonbt "github.com/Tnze/go-mc/nbt"
)

// dyeColors lists the sixteen dye-color name prefixes shulker boxes and
// bundles come in, on top of each family's uncolored base variant.
var dyeColors = []string{
	"white", "orange", "magenta", "light_blue", "yellow", "lime", "pink",
	"gray", "light_gray", "cyan", "purple", "blue", "brown", "green", "red", "black",
}

func withColorVariants(base string) map[string]bool {
	ids := map[string]bool{"minecraft:" + base: true}
	for _, c := range dyeColors {
		ids["minecraft:"+c+"_"+base] = true
	}
	return ids
}

var (
	shulkerBoxItemIDs = withColorVariants("shulker_box")
	bundleItemIDs     = withColorVariants("bundle")
)

// itemRaw is one entry in an inventory, ender chest, bundle or shulker box:
// an id plus either the older tag compound or the newer components
// compound, whichever the save's game version actually wrote.
type itemRaw struct {
	ID         string           `nbt:"id"`
	Tag        gonbt.RawMessage `nbt:"tag"`
	Components gonbt.RawMessage `nbt:"components"`
}

type itemTagOlder struct {
	Map            *int32           `nbt:"map"`
	Display        gonbt.RawMessage `nbt:"display"`
	BlockEntityTag gonbt.RawMessage `nbt:"BlockEntityTag"`
	Items          []itemRaw        `nbt:"Items"`
}

type containerSlot struct {
	Slot int32   `nbt:"slot"`
	Item itemRaw `nbt:"item"`
}

type itemComponentsNewer struct {
	MapID          *int32           `nbt:"minecraft:map_id"`
	ItemName       gonbt.RawMessage `nbt:"minecraft:item_name"`
	Container      []containerSlot  `nbt:"minecraft:container"`
	BundleContents []itemRaw        `nbt:"minecraft:bundle_contents"`
}

type blockEntityItems struct {
	Items []itemRaw `nbt:"Items"`
}

// decodeItemMapIDs decodes a single item carried as a raw tag (an item
// frame's Item field, a player's offhand slot) and adds any filled_map ids
// it or its contents reference to ids.
func decodeItemMapIDs(raw gonbt.RawMessage, ids map[uint32]struct{}) error {
	var item itemRaw
	if err := raw.Unmarshal(&item); err != nil {
		return fmt.Errorf("decoding item: %w", err)
	}
	return appendItemMapIDs(item, ids)
}

// collectItemsMapIDs decodes a list of items (an inventory, EnderItems, a
// chest's Items list) and adds every contained filled_map id to ids.
func collectItemsMapIDs(items []itemRaw, ids map[uint32]struct{}) error {
	for _, it := range items {
		if err := appendItemMapIDs(it, ids); err != nil {
			return err
		}
	}
	return nil
}

// appendItemMapIDs recurses through one already-decoded item: a filled map
// yields its id (unless renamed), a shulker box or bundle yields whatever
// its contents yield, anything else yields nothing.
func appendItemMapIDs(item itemRaw, ids map[uint32]struct{}) error {
	switch {
	case item.ID == "minecraft:filled_map":
		return appendFilledMapID(item, ids)
	case shulkerBoxItemIDs[item.ID]:
		return appendShulkerBoxContents(item, ids)
	case bundleItemIDs[item.ID]:
		return appendBundleContents(item, ids)
	default:
		return nil
	}
}

// appendFilledMapID records the map id carried by a filled_map item, unless
// the player has renamed it — a renamed map is "enlarged" and kept as a
// distinct artifact rather than folded into the tile pyramid.
func appendFilledMapID(item itemRaw, ids map[uint32]struct{}) error {
	if len(item.Components.Data) > 0 {
		var comp itemComponentsNewer
		if err := item.Components.Unmarshal(&comp); err == nil {
			if len(comp.ItemName.Data) > 0 {
				return nil
			}
			if comp.MapID != nil {
				ids[uint32(*comp.MapID)] = struct{}{}
			}
			return nil
		}
	}

	if len(item.Tag.Data) > 0 {
		var tag itemTagOlder
		if err := item.Tag.Unmarshal(&tag); err != nil {
			return nil
		}
		if len(tag.Display.Data) > 0 {
			return nil
		}
		if tag.Map != nil {
			ids[uint32(*tag.Map)] = struct{}{}
		}
	}
	return nil
}

func appendShulkerBoxContents(item itemRaw, ids map[uint32]struct{}) error {
	if len(item.Components.Data) > 0 {
		var comp itemComponentsNewer
		if err := item.Components.Unmarshal(&comp); err == nil {
			for _, slot := range comp.Container {
				if err := appendItemMapIDs(slot.Item, ids); err != nil {
					return err
				}
			}
			return nil
		}
	}

	if len(item.Tag.Data) > 0 {
		var tag itemTagOlder
		if err := item.Tag.Unmarshal(&tag); err != nil {
			return nil
		}
		if len(tag.BlockEntityTag.Data) == 0 {
			return nil
		}
		var be blockEntityItems
		if err := tag.BlockEntityTag.Unmarshal(&be); err != nil {
			return nil
		}
		return collectItemsMapIDs(be.Items, ids)
	}
	return nil
}

// appendBundleContents recurses into a bundle's contents, which newer
// saves carry as a flat components list and older saves as a bare tag.Items
// list (bundles predate the 1.20.5 components rewrite).
func appendBundleContents(item itemRaw, ids map[uint32]struct{}) error {
	if len(item.Components.Data) > 0 {
		var comp itemComponentsNewer
		if err := item.Components.Unmarshal(&comp); err == nil {
			return collectItemsMapIDs(comp.BundleContents, ids)
		}
	}

	if len(item.Tag.Data) > 0 {
		var tag itemTagOlder
		if err := item.Tag.Unmarshal(&tag); err == nil {
			return collectItemsMapIDs(tag.Items, ids)
		}
	}
	return nil
}
