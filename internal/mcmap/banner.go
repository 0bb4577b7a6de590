package mcmap

// Banner is an in-world marker sighted on a map. Equality and ordering are
// on position alone: a banner is the same banner across sightings even if
// a later scan observes a different label or color, and the later
// sighting's metadata simply replaces the earlier one's.
type Banner struct {
	Label *string
	Color string
	X     int32
	Z     int32
}

// Less orders banners by position, X then Z, ignoring label and color.
func (b Banner) Less(other Banner) bool {
	if b.X != other.X {
		return b.X < other.X
	}
	return b.Z < other.Z
}

// Equal reports whether two banners occupy the same position.
func (b Banner) Equal(other Banner) bool {
	return b.X == other.X && b.Z == other.Z
}
