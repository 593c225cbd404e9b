// Package difficulty computes aim and speed star ratings from a hit object
// sequence.
package difficulty

import (
	"errors"
	"fmt"
	"math"

	"ppcalc/dotosu"
	"ppcalc/mods"
)

const (
	// StarScalingFactor is a global stars multiplier
	StarScalingFactor float64 = 0.0675
	// ExtremeScalingFactor rewards maps where one skill dominates.
	ExtremeScalingFactor float64 = 0.5
)

var ErrBadSettings = errors.New("settings out of range")

type Options struct {
	Awkwardness      bool
	AimSingles       bool
	TimingSingles    bool
	ThresholdSingles bool

	// SingletapThreshold in ms, DefaultSingletapThreshold when zero.
	SingletapThreshold float64
}

type Attributes struct {
	// Total star rating
	Stars float64

	// Aim stars, needed for pp calculations
	Aim float64

	// Speed stars, needed for pp calculations
	Speed float64

	RhythmAwkwardness float64

	AimSingles       int
	TimingSingles    int
	ThresholdSingles int

	Mods mods.ModSet

	// Settings after mods, pp needs them.
	ApproachRate      float64
	OverallDifficulty float64
	CircleSize        float64
	HPDrainRate       float64
	ClockRate         float64

	ObjectCount int
	Circles     int
	Sliders     int
	Spinners    int
	MaxCombo    int
}

// Calculate applies m to a copy of b and analyzes the result. b is left
// untouched and must not have mods baked in.
func Calculate(b *dotosu.Beatmap, m mods.ModSet, opts Options) (Attributes, error) {
	if err := m.Valid(); err != nil {
		return Attributes{}, err
	}
	working := b
	if m.Altering() != mods.NoMod {
		working = b.Clone()
		if err := mods.Apply(working, m); err != nil {
			return Attributes{}, err
		}
	}
	return Analyze(working, m, opts)
}

// Analyze computes the attributes of b, which must already carry the map
// altering part of m.
func Analyze(b *dotosu.Beatmap, m mods.ModSet, opts Options) (Attributes, error) {
	if err := m.Valid(); err != nil {
		return Attributes{}, err
	}

	attr := Attributes{
		Mods:              m,
		ApproachRate:      b.Difficulty.ApproachRate,
		OverallDifficulty: b.Difficulty.OverallDifficulty,
		CircleSize:        b.Difficulty.CircleSize,
		HPDrainRate:       b.Difficulty.HPDrainRate,
		ClockRate:         mods.Speed(m),
		ObjectCount:       b.Stats.Objects,
		Circles:           b.Stats.Circles,
		Sliders:           b.Stats.Sliders,
		Spinners:          b.Stats.Spinners,
		MaxCombo:          b.Stats.MaxCombo,
	}

	if len(b.HitObjects) < 2 {
		return attr, nil
	}

	cs := b.Difficulty.CircleSize
	if radius := CircleRadius(cs); radius <= 0 || math.IsNaN(radius) {
		return Attributes{}, fmt.Errorf("circle size %v: %w", cs, ErrBadSettings)
	}

	diffObjects := CreateDifficultyObjects(b.HitObjects, cs)

	aim := NewAimSkill()
	speed := NewSpeedSkill()
	for _, o := range diffObjects {
		aim.Process(o)
		speed.Process(o)
	}

	attr.Aim = math.Sqrt(aim.DifficultyValue()) * StarScalingFactor
	attr.Speed = math.Sqrt(speed.DifficultyValue()) * StarScalingFactor
	attr.Stars = attr.Aim + attr.Speed + math.Abs(attr.Speed-attr.Aim)*ExtremeScalingFactor

	if opts.Awkwardness {
		attr.RhythmAwkwardness = RhythmAwkwardness(diffObjects)
	}

	if opts.AimSingles || opts.TimingSingles || opts.ThresholdSingles {
		threshold := opts.SingletapThreshold
		if threshold <= 0 {
			threshold = DefaultSingletapThreshold
		}
		singles := CountSingles(diffObjects, threshold)
		if opts.AimSingles {
			attr.AimSingles = singles.Aim
		}
		if opts.TimingSingles {
			attr.TimingSingles = singles.Timing
		}
		if opts.ThresholdSingles {
			attr.ThresholdSingles = singles.Threshold
		}
	}

	if math.IsNaN(attr.Stars) || math.IsInf(attr.Stars, 0) {
		return Attributes{}, fmt.Errorf("non-finite star rating: %w", ErrBadSettings)
	}
	return attr, nil
}
