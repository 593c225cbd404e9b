package difficulty

import (
	"math"
	"sort"
)

// maxRhythmRatio separates rhythm changes from breaks: a gap longer than this
// many primary beats is not judged.
const maxRhythmRatio = 4.0

var simpleRatios = []float64{1.0 / 4, 1.0 / 3, 1.0 / 2, 2.0 / 3, 3.0 / 4, 1, 4.0 / 3, 3.0 / 2, 2, 3, 4}

// PrimaryBeat is the most common gap between object starts, rounded to whole
// milliseconds. Ties go to the shorter gap.
func PrimaryBeat(objects []*DifficultyObject) float64 {
	counts := make(map[int64]int)
	for _, o := range objects[1:] {
		if o.DeltaTime <= 0 {
			continue
		}
		counts[int64(math.Round(o.DeltaTime))]++
	}
	if len(counts) == 0 {
		return 0
	}

	keys := make([]int64, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	best := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	if best == 0 {
		return 1
	}
	return float64(best)
}

// RhythmAwkwardness is the root mean square of how far, in octaves, every gap
// sits from the nearest simple fraction of the primary beat.
func RhythmAwkwardness(objects []*DifficultyObject) float64 {
	if len(objects) < 2 {
		return 0
	}
	primary := PrimaryBeat(objects)
	if primary <= 0 {
		return 0
	}

	sum := 0.0
	n := 0
	for _, o := range objects[1:] {
		if o.DeltaTime <= 0 {
			continue
		}
		ratio := o.DeltaTime / primary
		if ratio > maxRhythmRatio {
			continue
		}
		dev := nearestRatioDeviation(ratio)
		sum += dev * dev
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(n))
}

func nearestRatioDeviation(ratio float64) float64 {
	l := math.Log2(ratio)
	best := math.Inf(1)
	for _, r := range simpleRatios {
		best = min(best, math.Abs(l-math.Log2(r)))
	}
	return best
}
