// Package performance turns star ratings and a play result into performance
// points.
package performance

import (
	"fmt"
	"log"
	"math"

	"ppcalc/difficulty"
	"ppcalc/dotosu"
	"ppcalc/mods"
	"ppcalc/mutils"
)

const (
	ScoreV1 = 1
	ScoreV2 = 2

	PerformanceBaseMultiplier float64 = 1.12
)

// Play is the outcome of a play. A negative Combo means full combo, a
// negative Count300 means every object not otherwise accounted for. A zero
// ScoreVersion is read as ScoreV1.
type Play struct {
	Combo        int
	Count300     int
	Count100     int
	Count50      int
	Misses       int
	ScoreVersion int
}

// Result holds the pp values and the accuracy (0..1) they were computed with.
type Result struct {
	Total    float64
	Aim      float64
	Speed    float64
	Acc      float64
	Accuracy float64

	// Play with defaults resolved.
	Play Play
}

// Accuracy from judgment counts, 0..1.
func Accuracy(n300, n100, n50, misses int) float64 {
	total := n300 + n100 + n50 + misses
	if total <= 0 {
		return 0
	}
	acc := float64(50*n50+100*n100+300*n300) / float64(300*total)
	return mutils.Clamp(acc, 0, 1)
}

// ppv2 holds the state of a single calculation.
type ppv2 struct {
	attribs difficulty.Attributes
	mods    mods.ModSet

	scoreMaxCombo int
	countGreat    int
	countOk       int
	countMeh      int
	countMiss     int
	scoreVersion  int

	totalHits int
	accuracy  float64
}

// Calculate computes pp for play on a beatmap with the given attributes.
// attr must come from the same beatmap with the same map-altering mods as m.
// b only provides counts, so it may be either the modded or the unmodded
// beatmap.
func Calculate(attr difficulty.Attributes, b *dotosu.Beatmap, m mods.ModSet, play Play) (Result, error) {
	pp, err := newPPv2(attr, b, m, play)
	if err != nil {
		return Result{}, &CalcError{Op: "performance", Err: err}
	}
	res := pp.calculate()
	if math.IsNaN(res.Total) || math.IsInf(res.Total, 0) {
		return Result{}, &CalcError{Op: "performance", Err: ErrNonFiniteValue}
	}
	return res, nil
}

// CalculateFromAccuracy estimates judgment counts from an accuracy
// percentage, assuming no 50s, and computes pp for them.
func CalculateFromAccuracy(attr difficulty.Attributes, b *dotosu.Beatmap, m mods.ModSet, accPercent float64, combo, misses, scoreVersion int) (Result, error) {
	if math.IsNaN(accPercent) || accPercent < 0 || accPercent > 100 {
		return Result{}, &CalcError{Op: "accuracy", Err: fmt.Errorf("%v%%: %w", accPercent, ErrAccuracyRange)}
	}
	if misses < 0 {
		return Result{}, &CalcError{Op: "accuracy", Err: ErrNegativeCount}
	}
	objects := b.Stats.Objects
	if objects == 0 {
		return Result{}, &CalcError{Op: "accuracy", Err: ErrNoObjects}
	}
	if misses > objects {
		return Result{}, &CalcError{Op: "accuracy", Err: ErrTooManyHits}
	}

	n300, n100 := CountsFromAccuracy(objects, accPercent, misses)
	return Calculate(attr, b, m, Play{
		Combo:        combo,
		Count300:     n300,
		Count100:     n100,
		Misses:       misses,
		ScoreVersion: scoreVersion,
	})
}

// CountsFromAccuracy returns the 300 and 100 counts closest to accPercent for
// the given object and miss counts. Accuracy above what the misses allow is
// capped.
func CountsFromAccuracy(objects int, accPercent float64, misses int) (n300, n100 int) {
	max300 := objects - misses
	acc := min(Accuracy(max300, 0, 0, misses), accPercent/100)

	n100 = mutils.Round(-1.5 * ((acc-1)*float64(objects) + float64(misses)))
	n100 = mutils.Clamp(n100, 0, max300)
	return max300 - n100, n100
}

func newPPv2(attr difficulty.Attributes, b *dotosu.Beatmap, m mods.ModSet, play Play) (*ppv2, error) {
	if err := m.Valid(); err != nil {
		return nil, err
	}
	if m.Altering() != attr.Mods.Altering() {
		return nil, fmt.Errorf("%v vs %v: %w", attr.Mods.Altering(), m.Altering(), ErrModMismatch)
	}

	objects := b.Stats.Objects
	if objects == 0 || attr.ObjectCount == 0 {
		return nil, ErrNoObjects
	}

	switch play.ScoreVersion {
	case 0:
		play.ScoreVersion = ScoreV1
	case ScoreV1, ScoreV2:
	default:
		return nil, fmt.Errorf("%d: %w", play.ScoreVersion, ErrScoreVersion)
	}

	if play.Count100 < 0 || play.Count50 < 0 || play.Misses < 0 {
		return nil, ErrNegativeCount
	}
	if play.Count300 < 0 {
		play.Count300 = objects - play.Count100 - play.Count50 - play.Misses
		if play.Count300 < 0 {
			return nil, ErrTooManyHits
		}
	}
	if play.Combo < 0 {
		play.Combo = b.Stats.MaxCombo
	}

	pp := &ppv2{
		attribs:       attr,
		mods:          m,
		scoreMaxCombo: play.Combo,
		countGreat:    play.Count300,
		countOk:       play.Count100,
		countMeh:      play.Count50,
		countMiss:     play.Misses,
		scoreVersion:  play.ScoreVersion,
	}
	pp.attribs.MaxCombo = b.Stats.MaxCombo
	pp.attribs.Circles = b.Stats.Circles
	pp.attribs.ObjectCount = objects

	pp.totalHits = play.Count300 + play.Count100 + play.Count50 + play.Misses
	if pp.totalHits > objects {
		return nil, fmt.Errorf("%d hits for %d objects: %w", pp.totalHits, objects, ErrTooManyHits)
	}
	if pp.totalHits != objects {
		log.Printf("performance: %d judgments for %d objects", pp.totalHits, objects)
	}
	pp.accuracy = Accuracy(play.Count300, play.Count100, play.Count50, play.Misses)
	return pp, nil
}

func (pp *ppv2) calculate() Result {
	aimValue := pp.computeAimValue()
	speedValue := pp.computeSpeedValue()
	accValue := pp.computeAccuracyValue()

	multiplier := PerformanceBaseMultiplier
	if pp.mods.Any(mods.NoFail) {
		multiplier *= 0.90
	}
	if pp.mods.Any(mods.SpunOut) {
		multiplier *= 0.95
	}

	total := mutils.PowSum(1.1, aimValue, speedValue, accValue) * multiplier

	return Result{
		Total:    total,
		Aim:      aimValue,
		Speed:    speedValue,
		Acc:      accValue,
		Accuracy: pp.accuracy,
		Play: Play{
			Combo:        pp.scoreMaxCombo,
			Count300:     pp.countGreat,
			Count100:     pp.countOk,
			Count50:      pp.countMeh,
			Misses:       pp.countMiss,
			ScoreVersion: pp.scoreVersion,
		},
	}
}

// DifficultyToPerformance is the base pp of a skill with the given stars.
func DifficultyToPerformance(stars float64) float64 {
	return math.Pow(5*max(1, stars/difficulty.StarScalingFactor)-4, 3) / 100000
}

func (pp *ppv2) lengthBonus() float64 {
	x := float64(pp.totalHits) / 2000
	bonus := 0.95 + 0.4*min(1.0, x)
	if pp.totalHits > 2000 {
		bonus += math.Log10(x) * 0.5
	}
	return bonus
}

// missPenalty and comboScaling apply to both aim and speed.
func (pp *ppv2) missPenalty() float64 {
	return math.Pow(0.97, float64(pp.countMiss))
}

func (pp *ppv2) comboScaling() float64 {
	if pp.attribs.MaxCombo <= 0 {
		return 1
	}
	return min(1, math.Pow(float64(pp.scoreMaxCombo), 0.8)/math.Pow(float64(pp.attribs.MaxCombo), 0.8))
}

func (pp *ppv2) accuracyScaling() float64 {
	od := pp.attribs.OverallDifficulty
	return (0.5 + pp.accuracy/2) * (0.98 + od*od/2500)
}

func (pp *ppv2) computeAimValue() float64 {
	aimValue := DifficultyToPerformance(pp.attribs.Aim)

	lengthBonus := pp.lengthBonus()
	aimValue *= lengthBonus
	aimValue *= pp.missPenalty()
	aimValue *= pp.comboScaling()

	ar := pp.attribs.ApproachRate
	arBonus := 1.0
	if ar > 10.33 {
		arBonus += 0.45 * (ar - 10.33)
	} else if ar < 8 {
		lowARBonus := 0.01 * (8 - ar)
		if pp.mods.Any(mods.Hidden) {
			lowARBonus *= 2
		}
		arBonus += lowARBonus
	}
	aimValue *= arBonus

	if pp.mods.Any(mods.Hidden) {
		aimValue *= 1.18
	}
	if pp.mods.Any(mods.Flashlight) {
		aimValue *= 1.45 * lengthBonus
	}

	return aimValue * pp.accuracyScaling()
}

func (pp *ppv2) computeSpeedValue() float64 {
	speedValue := DifficultyToPerformance(pp.attribs.Speed)

	speedValue *= pp.lengthBonus()
	speedValue *= pp.missPenalty()
	speedValue *= pp.comboScaling()

	return speedValue * pp.accuracyScaling()
}

func (pp *ppv2) computeAccuracyValue() float64 {
	var betterAccuracyPercentage float64
	amountHitObjectsWithAccuracy := pp.attribs.Circles

	switch pp.scoreVersion {
	case ScoreV2:
		amountHitObjectsWithAccuracy = pp.attribs.ObjectCount
		betterAccuracyPercentage = pp.accuracy
	default:
		// only circles are judged on timing in score v1
		n300 := max(0, pp.countGreat-(pp.attribs.ObjectCount-pp.attribs.Circles))
		if amountHitObjectsWithAccuracy > 0 {
			betterAccuracyPercentage = Accuracy(n300, pp.countOk, pp.countMeh, pp.countMiss)
		}
	}

	accValue := math.Pow(1.52163, pp.attribs.OverallDifficulty) * math.Pow(betterAccuracyPercentage, 24) * 2.83
	accValue *= min(1.15, math.Pow(float64(amountHitObjectsWithAccuracy)/1000, 0.3))

	if pp.mods.Any(mods.Hidden) {
		accValue *= 1.02
	}
	if pp.mods.Any(mods.Flashlight) {
		accValue *= 1.02
	}
	return accValue
}
