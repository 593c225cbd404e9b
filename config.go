package main

import (
	"fmt"
	"strconv"

	"gopkg.in/alecthomas/kingpin.v2"

	"ppcalc/difficulty"
	"ppcalc/dotosu"
	"ppcalc/mods"
	"ppcalc/performance"
)

var (
	Paths        = kingpin.Arg("beatmap", ".osu files or directories containing them").Required().Strings()
	modString    = kingpin.Flag("mods", "Mods, e.g. HDDT").Default("NM").Short('m').String()
	Accuracy     = kingpin.Flag("acc", "Accuracy percentage, replaces the judgment counts").Default("-1").Short('a').Float64()
	Combo        = kingpin.Flag("combo", "Max combo, -1 for full combo").Default("-1").Short('c').Int()
	Count300     = kingpin.Flag("n300", "300s, -1 for the remaining objects").Default("-1").Int()
	Count100     = kingpin.Flag("n100", "100s").Default("0").Int()
	Count50      = kingpin.Flag("n50", "50s").Default("0").Int()
	Misses       = kingpin.Flag("misses", "Misses").Default("0").Short('x').Int()
	ScoreVersion = kingpin.Flag("score-version", "Score version, 1 or 2").Default("1").Short('v').Int()
	csFlag       = kingpin.Flag("cs", "Circle size override").String()
	odFlag       = kingpin.Flag("od", "Overall difficulty override").String()
	arFlag       = kingpin.Flag("ar", "Approach rate override").String()
	Awkwardness  = kingpin.Flag("awkwardness", "Calculate rhythm awkwardness").Bool()
	Singles      = kingpin.Flag("singles", "Count aim, timing and threshold singles").Bool()
	Threshold    = kingpin.Flag("threshold", "Singletap threshold in ms").Default("125").Float64()
	ScorePath    = kingpin.Flag("score", "osu! API score JSON to take judgments and mods from").String()
	CachePath    = kingpin.Flag("cache", "sqlite file to cache parsed beatmaps in").String()
	PruneCache   = kingpin.Flag("prune", "Drop cache entries of deleted files").Bool()
	Watch        = kingpin.Flag("watch", "Recalculate when a beatmap changes").Short('w').Bool()
	Plain        = kingpin.Flag("plain", "Plain output even on a terminal").Bool()
	Jobs         = kingpin.Flag("jobs", "Beatmaps calculated in parallel").Default("4").Short('j').Int()
	FailDir      = kingpin.Flag("failures", "Directory to write failure reports to").String()
)

// Config is the parsed command line.
type Config struct {
	Mods      mods.ModSet
	Overrides dotosu.Options
	Play      performance.Play
	// Accuracy in percent, negative when judgments are given instead.
	Accuracy   float64
	Difficulty difficulty.Options
	// pp the loaded score was awarded.
	Reference float64
}

func loadConfig() (Config, error) {
	m, err := mods.Parse(*modString)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Mods:     m,
		Accuracy: *Accuracy,
		Play: performance.Play{
			Combo:        *Combo,
			Count300:     *Count300,
			Count100:     *Count100,
			Count50:      *Count50,
			Misses:       *Misses,
			ScoreVersion: *ScoreVersion,
		},
		Difficulty: difficulty.Options{
			Awkwardness:        *Awkwardness,
			AimSingles:         *Singles,
			TimingSingles:      *Singles,
			ThresholdSingles:   *Singles,
			SingletapThreshold: *Threshold,
		},
	}

	for _, o := range []struct {
		name string
		flag string
		dst  **float64
	}{
		{"cs", *csFlag, &cfg.Overrides.CS},
		{"od", *odFlag, &cfg.Overrides.OD},
		{"ar", *arFlag, &cfg.Overrides.AR},
	} {
		if o.flag == "" {
			continue
		}
		v, err := strconv.ParseFloat(o.flag, 64)
		if err != nil {
			return Config{}, fmt.Errorf("--%s: %w", o.name, err)
		}
		*o.dst = &v
	}

	if *ScorePath != "" {
		score, err := LoadScore(*ScorePath)
		if err != nil {
			return Config{}, err
		}
		cfg.Play = score.Play
		cfg.Play.ScoreVersion = *ScoreVersion
		cfg.Mods = score.Mods
		cfg.Accuracy = -1
		cfg.Reference = score.PP
	}
	return cfg, nil
}
