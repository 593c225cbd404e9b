// Package mods describes gameplay modifiers and how they change a beatmap.
package mods

import (
	"fmt"
	"strings"
)

// ModSet is a bit set using the game's own mod bit values.
type ModSet uint32

const (
	NoFail      ModSet = 1 << 0
	Easy        ModSet = 1 << 1
	TouchDevice ModSet = 1 << 2
	Hidden      ModSet = 1 << 3
	HardRock    ModSet = 1 << 4
	SuddenDeath ModSet = 1 << 5
	DoubleTime  ModSet = 1 << 6
	Relax       ModSet = 1 << 7
	HalfTime    ModSet = 1 << 8
	Nightcore   ModSet = 1 << 9
	Flashlight  ModSet = 1 << 10
	SpunOut     ModSet = 1 << 12

	NoMod ModSet = 0

	// MapAltering mods change settings or timing of the beatmap itself.
	MapAltering = Easy | HardRock | DoubleTime | HalfTime | Nightcore
	// SpeedChanging mods rescale time.
	SpeedChanging = DoubleTime | HalfTime | Nightcore

	known = NoFail | Easy | TouchDevice | Hidden | HardRock | SuddenDeath |
		DoubleTime | Relax | HalfTime | Nightcore | Flashlight | SpunOut
)

var acronyms = []struct {
	mod  ModSet
	name string
}{
	{NoFail, "NF"},
	{Easy, "EZ"},
	{TouchDevice, "TD"},
	{Hidden, "HD"},
	{HardRock, "HR"},
	{SuddenDeath, "SD"},
	{DoubleTime, "DT"},
	{Relax, "RX"},
	{HalfTime, "HT"},
	{Nightcore, "NC"},
	{Flashlight, "FL"},
	{SpunOut, "SO"},
}

// ModError reports a mod set or acronym string that cannot be used.
type ModError struct {
	Mods    ModSet
	Acronym string
}

func (e *ModError) Error() string {
	if e.Acronym != "" {
		return fmt.Sprintf("mods: unknown mod %q", e.Acronym)
	}
	return fmt.Sprintf("mods: unknown mod bits %#x", uint32(e.Mods))
}

func (m ModSet) Has(o ModSet) bool { return m&o == o }

func (m ModSet) Any(o ModSet) bool { return m&o != 0 }

// Altering returns the map-altering subset of m.
func (m ModSet) Altering() ModSet { return m & MapAltering }

// Valid returns a *ModError when m carries bits outside the supported set.
func (m ModSet) Valid() error {
	if unknown := m &^ known; unknown != 0 {
		return &ModError{Mods: unknown}
	}
	return nil
}

// String renders m as concatenated acronyms, "NM" for no mods.
func (m ModSet) String() string {
	if m == NoMod {
		return "NM"
	}
	var sb strings.Builder
	for _, a := range acronyms {
		if m&a.mod != 0 {
			sb.WriteString(a.name)
		}
	}
	if rest := m &^ known; rest != 0 {
		fmt.Fprintf(&sb, "+%#x", uint32(rest))
	}
	return sb.String()
}

// Parse reads a string such as "HDDT", "+HD,HR" or "NM".
func Parse(s string) (ModSet, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "+")
	s = strings.NewReplacer(",", "", " ", "", "|", "").Replace(s)

	var m ModSet
	if s == "" || s == "NM" {
		return m, nil
	}
	if len(s)%2 != 0 {
		return 0, &ModError{Acronym: s}
	}
outer:
	for i := 0; i < len(s); i += 2 {
		part := s[i : i+2]
		if part == "NM" {
			continue
		}
		for _, a := range acronyms {
			if a.name == part {
				m |= a.mod
				continue outer
			}
		}
		return 0, &ModError{Acronym: part}
	}
	return m, nil
}

// FromAcronyms builds a set from a list of acronyms as returned by the osu!
// API.
func FromAcronyms(names []string) (ModSet, error) {
	var m ModSet
	for _, n := range names {
		v, err := Parse(n)
		if err != nil {
			return 0, err
		}
		m |= v
	}
	return m, nil
}
