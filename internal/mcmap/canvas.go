package mcmap

// Canvas is the 128x128 indexed-color buffer a leaf tile renders into.
// Index values 0..3 mean "transparent/unwritten"; index >= 4 is an opaque
// paletted color. IsDirty is set the first time any pixel is written, so
// render can skip emitting an image for a tile that ended up entirely
// transparent.
type Canvas struct {
	IsDirty bool
	Pixels  [128 * 128]byte
}

// NewCanvas returns an empty (all-transparent) canvas.
func NewCanvas() *Canvas {
	return &Canvas{}
}

// Draw composites one map's pixel data onto the canvas, painting only the
// canvas pixels that are still transparent (index < 4). tile is the
// canvas's own address; m and data describe the source map. Whichever map
// is drawn first keeps its opaque pixels, so the caller draws maps in
// reverse stack order (newest/finest first) so that newer, finer maps end
// up on top.
//
// The map's 128x128 grid covers tile.Zoom-map.Tile.Zoom doublings more
// world space than the canvas; factor is that ratio, and the index
// arithmetic below selects the 1/factor-scaled sub-block of the map's
// pixels that corresponds to this tile.
func (c *Canvas) Draw(tile Tile, m Map, data *MapData) {
	tx, ty := tile.Position()
	mx, my := m.Tile.Position()

	factor := 1 << (tile.Zoom - m.Tile.Zoom)
	a := int(tx-mx)/factor + int(ty-my)/factor*128
	b := 128 - 128/factor

	for i := range c.Pixels {
		if c.Pixels[i] >= 4 {
			continue
		}
		j := i / factor
		k := i / 128
		mapPixel := data[a+j+b*k-(k-j/128)*128]
		if mapPixel >= 4 {
			c.IsDirty = true
			c.Pixels[i] = mapPixel
		}
	}
}
