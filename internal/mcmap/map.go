package mcmap

import "time"

// Map is the in-memory record for one collected map item: its id, the
// modification time of the map file it was parsed from, and the tile it
// locates to. Ordering intentionally ignores Tile so that a set of maps
// sharing a physical tile sorts purely by recency, which is exactly the
// priority render wants when compositing a stack.
type Map struct {
	ID       uint32
	Modified time.Time
	Tile     Tile
}

// Less implements the (modified, id) total ordering used to sort maps
// within a tile's stack and across the Map set as a whole.
func (m Map) Less(other Map) bool {
	if !m.Modified.Equal(other.Modified) {
		return m.Modified.Before(other.Modified)
	}
	return m.ID < other.ID
}

// Equal reports whether two maps are interchangeable for ordering
// purposes: same modification time and id, regardless of Tile.
func (m Map) Equal(other Map) bool {
	return m.Modified.Equal(other.Modified) && m.ID == other.ID
}

// MapData is a map item's raw 128x128 indexed-color pixel grid, copied out
// of the decoded map_<id>.dat's data.colors byte array.
type MapData [128 * 128]byte
