// Package osu holds the osu!-domain constants shared across nogu: play
// modes, ranked statuses, score servers, and the mods bitmask.
package osu

import "fmt"

// Mode is an osu! play mode.
type Mode int

const (
	ModeOsu Mode = iota
	ModeTaiko
	ModeCatch
	ModeMania
)

func (m Mode) String() string {
	switch m {
	case ModeOsu:
		return "osu"
	case ModeTaiko:
		return "taiko"
	case ModeCatch:
		return "catch"
	case ModeMania:
		return "mania"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Valid reports whether the mode is one of the four play modes.
func (m Mode) Valid() bool { return m >= ModeOsu && m <= ModeMania }

// RankedStatus mirrors the "approved" field of the osu! API v1.
type RankedStatus int

const (
	StatusGraveyard RankedStatus = iota - 2
	StatusWIP
	StatusPending
	StatusRanked
	StatusApproved
	StatusQualified
	StatusLoved
)

func (s RankedStatus) String() string {
	switch s {
	case StatusGraveyard:
		return "graveyard"
	case StatusWIP:
		return "wip"
	case StatusPending:
		return "pending"
	case StatusRanked:
		return "ranked"
	case StatusApproved:
		return "approved"
	case StatusQualified:
		return "qualified"
	case StatusLoved:
		return "loved"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Server identifies where a beatmap or score originates.
type Server int

const (
	ServerBancho Server = iota
	ServerLocal
)

func (s Server) String() string {
	if s == ServerLocal {
		return "local"
	}
	return "bancho"
}

// Mods is the osu! mods bitmask.
type Mods int64

const (
	ModNoFail Mods = 1 << iota
	ModEasy
	ModTouchDevice
	ModHidden
	ModHardRock
	ModSuddenDeath
	ModDoubleTime
	ModRelax
	ModHalfTime
	ModNightcore
	ModFlashlight
	ModAutoplay
	ModSpunOut
	ModAutopilot
	ModPerfect
)

// Has reports whether every bit of flag is set.
func (m Mods) Has(flag Mods) bool { return m&flag == flag }

var modAcronyms = []struct {
	flag Mods
	name string
}{
	{ModNoFail, "NF"},
	{ModEasy, "EZ"},
	{ModTouchDevice, "TD"},
	{ModHidden, "HD"},
	{ModHardRock, "HR"},
	{ModSuddenDeath, "SD"},
	{ModDoubleTime, "DT"},
	{ModRelax, "RX"},
	{ModHalfTime, "HT"},
	{ModNightcore, "NC"},
	{ModFlashlight, "FL"},
	{ModAutoplay, "AT"},
	{ModSpunOut, "SO"},
	{ModAutopilot, "AP"},
	{ModPerfect, "PF"},
}

// String renders the enabled mods as concatenated acronyms ("HDDT"), or "NM"
// for nomod. Nightcore and Perfect subsume their base mods.
func (m Mods) String() string {
	if m == 0 {
		return "NM"
	}
	v := m
	if v.Has(ModNightcore) {
		v &^= ModDoubleTime
	}
	if v.Has(ModPerfect) {
		v &^= ModSuddenDeath
	}
	out := ""
	for _, a := range modAcronyms {
		if v.Has(a.flag) {
			out += a.name
		}
	}
	return out
}
