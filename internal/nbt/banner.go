package nbt

import (
	"encoding/json"

	gonbt "github.com/Tnze/go-mc/nbt"
)

type bannerPosCompound struct {
	X int32 `nbt:"X"`
	Z int32 `nbt:"Z"`
}

// bannerRaw carries one banner entry from a map's banners list, across its
// historical shapes: Color defaults to "white" when absent, Name may be a
// bare JSON string or a JSON-encoded {"text":...} object, and position is
// either a Pos:{X,Z} compound (older) or a pos:[x,y,z] int array (newer,
// lowercase tag).
type bannerRaw struct {
	Color    string           `nbt:"Color"`
	Name     gonbt.RawMessage `nbt:"Name"`
	Pos      gonbt.RawMessage `nbt:"Pos"`
	PosArray gonbt.RawMessage `nbt:"pos"`
}

func decodeBannerPosition(compoundRaw, arrayRaw gonbt.RawMessage) (x, z int32) {
	if len(compoundRaw.Data) > 0 {
		var compound bannerPosCompound
		if err := compoundRaw.Unmarshal(&compound); err == nil {
			return compound.X, compound.Z
		}
	}

	if len(arrayRaw.Data) > 0 {
		var arr []int32
		if err := arrayRaw.Unmarshal(&arr); err == nil && len(arr) >= 3 {
			return arr[0], arr[2]
		}
	}

	return 0, 0
}

func decodeBannerLabel(name gonbt.RawMessage) *string {
	if len(name.Data) == 0 {
		return nil
	}

	var raw string
	if err := name.Unmarshal(&raw); err != nil {
		return nil
	}
	if raw == "" {
		return nil
	}

	// Try the wrapped {"text": "..."} shape first, then fall back to
	// treating the JSON string itself as the label (a bare JSON string
	// "\"Label\"" fails the object decode and is taken by the plain one).
	// A Name that is neither is used verbatim.
	var withText struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(raw), &withText); err == nil && withText.Text != "" {
		return &withText.Text
	}

	var plain string
	if err := json.Unmarshal([]byte(raw), &plain); err == nil && plain != "" {
		return &plain
	}

	return &raw
}
