package nbt

import (
	"fmt"

	gonbt "github.com/Tnze/go-mc/nbt"

	"github.com/kvalheim/littleamap/internal/mcmap"
)

// MapClass classifies a decoded map as a candidate for the overworld
// pyramid or something this tool never renders.
type MapClass struct {
	Normal  bool
	Banners []mcmap.Banner
	Tile    mcmap.Tile
}

type mapMetaRaw struct {
	Data struct {
		Banners           []bannerRaw      `nbt:"banners"`
		Dimension         gonbt.RawMessage `nbt:"dimension"`
		Scale             uint8            `nbt:"scale"`
		XCenter           int32            `nbt:"xCenter"`
		ZCenter           int32            `nbt:"zCenter"`
		UnlimitedTracking *bool            `nbt:"unlimitedTracking"`
		Colors            []byte           `nbt:"colors"`
	} `nbt:"data"`
}

// DecodeMapMeta decodes a data/map_<id>.dat payload (already gzip
// decompressed) into a classification plus, when the map is a render
// candidate, its banners and locating tile.
func DecodeMapMeta(raw []byte) (MapClass, error) {
	var m mapMetaRaw
	if err := gonbt.Unmarshal(raw, &m); err != nil {
		return MapClass{}, fmt.Errorf("decoding map meta: %w", err)
	}

	if m.Data.UnlimitedTracking != nil && *m.Data.UnlimitedTracking {
		return MapClass{}, nil
	}

	if !isOverworld(m.Data.Dimension) {
		return MapClass{}, nil
	}

	banners := make([]mcmap.Banner, 0, len(m.Data.Banners))
	for _, raw := range m.Data.Banners {
		b, err := decodeBannerCompound(raw)
		if err != nil {
			continue
		}
		banners = append(banners, b)
	}

	return MapClass{
		Normal:  true,
		Banners: banners,
		Tile:    mcmap.FromPosition(m.Data.Scale, m.Data.XCenter, m.Data.ZCenter),
	}, nil
}

// DecodeMapPixels extracts and validates the 128x128 pixel grid from a
// decoded map payload.
func DecodeMapPixels(raw []byte) (*mcmap.MapData, error) {
	var m mapMetaRaw
	if err := gonbt.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decoding map pixels: %w", err)
	}
	if len(m.Data.Colors) != 128*128 {
		return nil, fmt.Errorf("map data.colors has %d bytes, want %d", len(m.Data.Colors), 128*128)
	}

	var data mcmap.MapData
	copy(data[:], m.Data.Colors)
	return &data, nil
}

// isOverworld decodes the dimension tag, accepting either the integer
// form (-1 Nether, 0 Overworld, 1 End) or the string resource-location
// form introduced alongside custom dimensions.
func isOverworld(raw gonbt.RawMessage) bool {
	var asInt int32
	if err := raw.Unmarshal(&asInt); err == nil {
		return asInt == 0
	}

	var asString string
	if err := raw.Unmarshal(&asString); err == nil {
		return asString == "minecraft:overworld"
	}

	return false
}

// decodeBannerCompound assembles one banners-list entry into a Banner,
// via the shape-tolerant label and position decoders.
func decodeBannerCompound(b bannerRaw) (mcmap.Banner, error) {
	color := b.Color
	if color == "" {
		color = "white"
	}

	label := decodeBannerLabel(b.Name)
	x, z := decodeBannerPosition(b.Pos, b.PosArray)

	return mcmap.Banner{Label: label, Color: color, X: x, Z: z}, nil
}
