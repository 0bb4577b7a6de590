// Package mcmap holds the geometric and entity types shared by search,
// scanning and rendering: tile addressing, the in-memory Map and Banner
// records, and the indexed-color Canvas used to composite map pixels.
package mcmap

// Tile addresses one node of the zoom 0..4 pyramid. Zoom 4 is the finest
// granularity (one tile per in-game map at scale 0); zoom 0 is a root
// covering a 2048x2048-block region of the overworld.
type Tile struct {
	Zoom uint8
	X    int32
	Y    int32
}

// FromPosition maps a map item's center (x, z) and scale (0..=4, 0 finest)
// to the tile that contains it. Division is Euclidean (floors toward
// negative infinity), so negative coordinates address the tile to their
// west/north rather than rounding toward zero.
func FromPosition(scale uint8, x, z int32) Tile {
	size := int32(128) << scale

	return Tile{
		Zoom: 4 - scale,
		X:    divEuclid(x, size),
		Y:    divEuclid(z, size),
	}
}

// Position returns the tile's world-space origin (its northwest corner).
func (t Tile) Position() (x, z int32) {
	size := int32(128) << (4 - t.Zoom)
	return size * t.X, size * t.Y
}

// Quadrants returns the four child tiles at Zoom+1, in the fixed order
// (2x,2y), (2x,2y+1), (2x+1,2y), (2x+1,2y+1).
func (t Tile) Quadrants() [4]Tile {
	zoom := t.Zoom + 1
	x := t.X * 2
	y := t.Y * 2

	return [4]Tile{
		{Zoom: zoom, X: x, Y: y},
		{Zoom: zoom, X: x, Y: y + 1},
		{Zoom: zoom, X: x + 1, Y: y},
		{Zoom: zoom, X: x + 1, Y: y + 1},
	}
}

// Root returns the zoom-0 tile containing this tile's origin. One root's
// subtree is the unit of render parallelism.
func (t Tile) Root() Tile {
	x, y := t.Position()
	return Tile{Zoom: 0, X: divEuclid(x, 2048), Y: divEuclid(y, 2048)}
}

// divEuclid performs Euclidean (floor) division: the remainder is always
// in [0, |b|), so divEuclid(-1, 128) is -1, not 0.
func divEuclid(a, b int32) int32 {
	q := a / b
	if r := a % b; r < 0 {
		if b > 0 {
			q--
		} else {
			q++
		}
	}
	return q
}
