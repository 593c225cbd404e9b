package mods

import (
	"errors"
	"testing"
)

func TestString(t *testing.T) {
	tests := []struct {
		m    ModSet
		want string
	}{
		{NoMod, "NM"},
		{Hidden | DoubleTime, "HDDT"},
		{HardRock | Hidden | Flashlight, "HDHRFL"},
		{SpunOut | NoFail, "NFSO"},
		{Nightcore, "NC"},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", uint32(tt.m), got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want ModSet
	}{
		{"", NoMod},
		{"NM", NoMod},
		{"hddt", Hidden | DoubleTime},
		{"+HD,HR", Hidden | HardRock},
		{"EZ HT SD", Easy | HalfTime | SuddenDeath},
		{"NCFL", Nightcore | Flashlight},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, m := range []ModSet{Hidden | DoubleTime, Easy | Flashlight | SpunOut, known} {
		back, err := Parse(m.String())
		if err != nil || back != m {
			t.Errorf("round trip of %v gave %v, %v", m, back, err)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"HDX", "XX", "HDZZ"} {
		_, err := Parse(in)
		var me *ModError
		if !errors.As(err, &me) {
			t.Errorf("Parse(%q) error = %v, want *ModError", in, err)
		}
	}
}

func TestValid(t *testing.T) {
	if err := (Hidden | HardRock).Valid(); err != nil {
		t.Errorf("valid set rejected: %v", err)
	}
	err := (Hidden | 1<<11).Valid()
	var me *ModError
	if !errors.As(err, &me) || me.Mods != 1<<11 {
		t.Errorf("expected *ModError for bit 11, got %v", err)
	}
}

func TestFromAcronyms(t *testing.T) {
	m, err := FromAcronyms([]string{"HD", "DT"})
	if err != nil || m != Hidden|DoubleTime {
		t.Errorf("FromAcronyms = %v, %v", m, err)
	}
	if _, err := FromAcronyms([]string{"HD", "??"}); err == nil {
		t.Error("expected error for unknown acronym")
	}
}

func TestAltering(t *testing.T) {
	m := Hidden | HardRock | DoubleTime | Flashlight
	if got := m.Altering(); got != HardRock|DoubleTime {
		t.Errorf("Altering() = %v", got)
	}
	if (Hidden | NoFail | SuddenDeath).Altering() != NoMod {
		t.Error("score-only mods reported as map altering")
	}
}
