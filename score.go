package main

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"ppcalc/mods"
	"ppcalc/performance"
)

// Score is the part of an osu! API score needed to recalculate its pp.
type Score struct {
	BeatmapID int64
	Play      performance.Play
	Mods      mods.ModSet
	PP        float64
}

func LoadScore(path string) (Score, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Score{}, fmt.Errorf("score: %w", err)
	}
	score, err := ParseScore(string(data))
	if err != nil {
		return Score{}, fmt.Errorf("score %s: %w", path, err)
	}
	return score, nil
}

// ParseScore reads both the legacy statistics (count_300, ...) and the
// lazer ones (great, ok, meh, miss). Mods may be acronym strings or objects
// with an acronym field.
func ParseScore(json string) (Score, error) {
	if !gjson.Valid(json) {
		return Score{}, fmt.Errorf("invalid json")
	}
	root := gjson.Parse(json)
	stats := root.Get("statistics")
	if !stats.Exists() {
		return Score{}, fmt.Errorf("no statistics")
	}

	count := func(legacy, lazer string) int {
		if v := stats.Get(legacy); v.Exists() {
			return int(v.Int())
		}
		return int(stats.Get(lazer).Int())
	}

	var acronyms []string
	root.Get("mods").ForEach(func(_, v gjson.Result) bool {
		if v.IsObject() {
			acronyms = append(acronyms, v.Get("acronym").String())
		} else {
			acronyms = append(acronyms, v.String())
		}
		return true
	})
	m, err := mods.FromAcronyms(acronyms)
	if err != nil {
		return Score{}, err
	}

	return Score{
		BeatmapID: root.Get("beatmap.id").Int(),
		Play: performance.Play{
			Combo:    int(root.Get("max_combo").Int()),
			Count300: count("count_300", "great"),
			Count100: count("count_100", "ok"),
			Count50:  count("count_50", "meh"),
			Misses:   count("count_miss", "miss"),
		},
		Mods: m,
		PP:   root.Get("pp").Float(),
	}, nil
}
