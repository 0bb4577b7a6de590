package nbt

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	gonbt "github.com/Tnze/go-mc/nbt"
)

// Level is the handful of level.dat fields this tool cares about: the
// world spawn (used to center index.html) and the game version (checked
// against a compatibility gate before anything else runs).
type Level struct {
	SpawnX  int32
	SpawnZ  int32
	Version *semver.Version
}

// levelHeaderRaw declares both historical spawn shapes side by side, as
// pointers, so presence can be told apart from a zero value: older saves
// store Data.SpawnX/SpawnZ directly, newer ones a Data.spawn.pos triple.
type levelHeaderRaw struct {
	Data struct {
		SpawnX *int32 `nbt:"SpawnX"`
		SpawnZ *int32 `nbt:"SpawnZ"`
		Spawn  *struct {
			Pos [3]int32 `nbt:"pos"`
		} `nbt:"spawn"`
		Version struct {
			Name string `nbt:"Name"`
		} `nbt:"Version"`
	} `nbt:"Data"`
}

// DecodeLevel decodes a level.dat payload (already gzip-decompressed),
// taking the spawn from whichever shape the save actually carries —
// SpawnX/SpawnZ when present, Data.spawn.pos otherwise.
func DecodeLevel(raw []byte) (Level, error) {
	var h levelHeaderRaw
	if err := gonbt.Unmarshal(raw, &h); err != nil {
		return Level{}, fmt.Errorf("decoding level.dat: %w", err)
	}

	v, err := parseGameVersion(h.Data.Version.Name)
	if err != nil {
		return Level{}, err
	}

	level := Level{Version: v}
	switch {
	case h.Data.SpawnX != nil && h.Data.SpawnZ != nil:
		level.SpawnX = *h.Data.SpawnX
		level.SpawnZ = *h.Data.SpawnZ
	case h.Data.Spawn != nil:
		level.SpawnX = h.Data.Spawn.Pos[0]
		level.SpawnZ = h.Data.Spawn.Pos[2]
	}
	return level, nil
}

// parseGameVersion normalizes a version string to three dotted components
// (e.g. "1.20" -> "1.20.0") before parsing, since level.dat's Version.Name
// may omit trailing ".0" segments that semver requires.
func parseGameVersion(name string) (*semver.Version, error) {
	dots := strings.Count(name, ".")
	for ; dots < 2; dots++ {
		name += ".0"
	}
	v, err := semver.NewVersion(name)
	if err != nil {
		return nil, fmt.Errorf("parsing game version %q: %w", name, err)
	}
	return v, nil
}
