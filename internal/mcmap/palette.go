package mcmap

import "image/color"

// baseColors59 is the historical (pre-1.17) base map color table. Index 0
// is the reserved "no color" entry; every other index names a block
// category (grass, sand, wool, ...). Values are RGB as stored by the game.
var baseColors59 = [][3]uint8{
	{0, 0, 0},       // NONE
	{127, 178, 56},  // GRASS
	{247, 233, 163}, // SAND
	{199, 199, 199}, // WOOL
	{255, 0, 0},     // FIRE
	{160, 160, 255}, // ICE
	{167, 167, 167}, // METAL
	{0, 124, 0},     // PLANT
	{255, 255, 255}, // SNOW
	{164, 168, 184}, // CLAY
	{151, 109, 77},  // DIRT
	{112, 112, 112}, // STONE
	{64, 64, 255},   // WATER
	{143, 119, 72},  // WOOD
	{255, 252, 245}, // QUARTZ
	{216, 127, 51},  // COLOR_ORANGE
	{178, 76, 216},  // COLOR_MAGENTA
	{102, 153, 216}, // COLOR_LIGHT_BLUE
	{229, 229, 51},  // COLOR_YELLOW
	{127, 204, 25},  // COLOR_LIGHT_GREEN
	{242, 127, 165}, // COLOR_PINK
	{76, 76, 76},    // COLOR_GRAY
	{153, 153, 153}, // COLOR_LIGHT_GRAY
	{76, 127, 153},  // COLOR_CYAN
	{127, 63, 178},  // COLOR_PURPLE
	{51, 76, 178},   // COLOR_BLUE
	{102, 76, 51},   // COLOR_BROWN
	{102, 127, 51},  // COLOR_GREEN
	{153, 51, 51},   // COLOR_RED
	{25, 25, 25},    // COLOR_BLACK
	{250, 238, 77},  // GOLD
	{92, 219, 213},  // DIAMOND
	{74, 128, 255},  // LAPIS
	{0, 217, 58},    // EMERALD
	{129, 86, 49},   // PODZOL
	{112, 2, 0},     // NETHER
	{209, 177, 161}, // TERRACOTTA_WHITE
	{159, 82, 36},   // TERRACOTTA_ORANGE
	{149, 87, 108},  // TERRACOTTA_MAGENTA
	{112, 108, 138}, // TERRACOTTA_LIGHT_BLUE
	{186, 133, 36},  // TERRACOTTA_YELLOW
	{103, 117, 53},  // TERRACOTTA_LIGHT_GREEN
	{160, 77, 78},   // TERRACOTTA_PINK
	{57, 41, 35},    // TERRACOTTA_GRAY
	{135, 107, 98},  // TERRACOTTA_LIGHT_GRAY
	{87, 92, 92},    // TERRACOTTA_CYAN
	{122, 73, 88},   // TERRACOTTA_PURPLE
	{76, 62, 92},    // TERRACOTTA_BLUE
	{76, 50, 35},    // TERRACOTTA_BROWN
	{76, 82, 42},    // TERRACOTTA_GREEN
	{142, 60, 46},   // TERRACOTTA_RED
	{37, 22, 16},    // TERRACOTTA_BLACK
	{189, 48, 49},   // CRIMSON_NYLIUM
	{148, 63, 97},   // CRIMSON_STEM
	{92, 25, 29},    // CRIMSON_HYPHAE
	{22, 126, 134},  // WARPED_NYLIUM
	{58, 142, 140},  // WARPED_STEM
	{86, 44, 62},    // WARPED_HYPHAE
	{20, 180, 133},  // WARPED_WART_BLOCK
}

// baseColors62 extends the table with the three base colors added for
// deepslate-era versions. Used whenever the newer (post-1.17) palette is
// requested.
var baseColors62 = append(append([][3]uint8{}, baseColors59...),
	[3]uint8{100, 100, 100}, // DEEPSLATE
	[3]uint8{216, 175, 147}, // RAW_IRON
	[3]uint8{127, 167, 150}, // GLOW_LICHEN
)

// shadeNumerators are the four shading multipliers (out of 255) applied to
// each base color, in palette order: dark, darker-normal, full brightness,
// deep shadow.
var shadeNumerators = [4]int{180, 220, 255, 135}

// Palette is a flattened RGB(A) table: base color i, shade s lands at
// index i*4+s. Indices 0..3 (base color 0, "no color") are always fully
// transparent and must never appear in an opaque output pixel.
type Palette []color.RGBA

// NewPalette builds the flattened palette. newer selects the 62-entry
// (post-1.17) base table; otherwise the 59-entry table is used.
func NewPalette(newer bool) Palette {
	base := baseColors59
	if newer {
		base = baseColors62
	}

	p := make(Palette, 0, len(base)*4)
	for i, c := range base {
		for _, shade := range shadeNumerators {
			if i == 0 {
				p = append(p, color.RGBA{})
				continue
			}
			r := uint8(int(c[0]) * shade / 255)
			g := uint8(int(c[1]) * shade / 255)
			b := uint8(int(c[2]) * shade / 255)
			p = append(p, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return p
}

// RGBA returns the color for a palette index, or transparent for an
// out-of-range index.
func (p Palette) RGBA(index uint8) color.RGBA {
	if int(index) >= len(p) {
		return color.RGBA{}
	}
	return p[index]
}
