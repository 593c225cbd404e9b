package mods

import (
	"math"

	"ppcalc/dotosu"
	"ppcalc/mutils"
)

const (
	DoubleTimeSpeed = 1.5
	HalfTimeSpeed   = 0.75

	od0ms  = 80.0
	od10ms = 20.0
	odStep = 6

	ar0ms   = 1800.0
	ar5ms   = 1200.0
	ar10ms  = 450.0
	arStep1 = (ar0ms - ar5ms) / 5
	arStep2 = (ar5ms - ar10ms) / 5
)

// Speed is the clock rate implied by m.
func Speed(m ModSet) float64 {
	switch {
	case m.Any(DoubleTime | Nightcore):
		return DoubleTimeSpeed
	case m.Any(HalfTime):
		return HalfTimeSpeed
	}
	return 1
}

func ApproachRateToPreempt(ar float64) float64 {
	if ar < 5 {
		return ar5ms + arStep1*(5-ar)
	} else if ar == 5 {
		return ar5ms
	} else {
		return ar5ms - arStep2*(ar-5)
	}
}

func PreemptToAR(preempt float64) float64 {
	if preempt > ar5ms {
		return 5 - (preempt-ar5ms)/arStep1
	} else if preempt == ar5ms {
		return 5
	} else {
		return 5 + (ar5ms-preempt)/arStep2
	}
}

// HitWindows returns the +- windows in ms for 300s, 100s and 50s.
func HitWindows(od float64) (w300, w100, w50 float64) {
	return od0ms - odStep*od, 140 - 8*od, 200 - 10*od
}

// ApplyDifficulty adjusts d for the map-altering mods of m and returns the
// clock rate. Object times are left alone.
func ApplyDifficulty(d *dotosu.Difficulty, m ModSet) float64 {
	speed := Speed(m)

	scale := 1.0
	csScale := 1.0
	if m.Any(HardRock) {
		scale *= 1.4
		csScale *= 1.3
	}
	if m.Any(Easy) {
		scale *= 0.5
		csScale *= 0.5
	}

	if m.Any(HardRock) {
		d.CircleSize = min(d.CircleSize*csScale, 10)
		d.OverallDifficulty = min(d.OverallDifficulty*scale, 10)
		d.ApproachRate = min(d.ApproachRate*scale, 10)
		d.HPDrainRate = min(d.HPDrainRate*scale, 10)
	} else {
		d.CircleSize *= csScale
		d.OverallDifficulty *= scale
		d.ApproachRate *= scale
		d.HPDrainRate *= scale
	}

	if speed != 1 {
		odms := od0ms - math.Ceil(odStep*d.OverallDifficulty)
		odms = mutils.Clamp(odms, od10ms, od0ms) / speed
		d.OverallDifficulty = (od0ms - odms) / odStep

		preempt := mutils.Clamp(ApproachRateToPreempt(d.ApproachRate), ar10ms, ar0ms) / speed
		d.ApproachRate = PreemptToAR(preempt)
	}
	return speed
}

// Apply bakes the map-altering part of m into b in place. Applying on top of
// an already modded beatmap compounds; callers switching mod sets must start
// again from an unmodded copy.
func Apply(b *dotosu.Beatmap, m ModSet) error {
	if err := m.Valid(); err != nil {
		return err
	}
	alter := m.Altering()
	if alter == NoMod {
		return nil
	}

	speed := ApplyDifficulty(&b.Difficulty, alter)
	if speed == 1 {
		return nil
	}
	for _, o := range b.HitObjects {
		o.ScaleTime(speed)
	}
	for i := range b.TimingPoints {
		tp := &b.TimingPoints[i]
		tp.Time /= speed
		if tp.Uninherited {
			tp.BeatLength /= speed
		}
	}
	return nil
}
