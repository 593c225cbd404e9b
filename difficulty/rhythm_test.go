package difficulty

import (
	"math"
	"testing"
)

func objectsAt(times ...float64) []*DifficultyObject {
	out := make([]*DifficultyObject, len(times))
	for i, t := range times {
		o := &DifficultyObject{Index: i, StartTime: t}
		if i > 0 {
			o.DeltaTime = t - times[i-1]
		}
		out[i] = o
	}
	return out
}

func TestPrimaryBeat(t *testing.T) {
	if got := PrimaryBeat(objectsAt(0, 100, 200, 300, 500, 700)); got != 100 {
		t.Errorf("PrimaryBeat = %v, want 100", got)
	}
	// tie between 100 and 200 goes to the shorter gap
	if got := PrimaryBeat(objectsAt(0, 100, 300, 400, 600)); got != 100 {
		t.Errorf("PrimaryBeat = %v, want 100", got)
	}
}

func TestRhythmAwkwardness(t *testing.T) {
	if got := RhythmAwkwardness(objectsAt(0, 100, 200, 300, 400)); got != 0 {
		t.Errorf("even stream awkwardness = %v", got)
	}
	if got := RhythmAwkwardness(objectsAt(0, 100, 200, 250, 300, 450, 550)); got > 1e-12 {
		t.Errorf("simple ratios awkwardness = %v", got)
	}
	// long breaks are ignored
	if got := RhythmAwkwardness(objectsAt(0, 100, 200, 300, 5000)); got != 0 {
		t.Errorf("break counted, awkwardness = %v", got)
	}

	got := RhythmAwkwardness(objectsAt(0, 100, 200, 300, 437))
	dev := math.Log2(1.37 / (4.0 / 3))
	want := math.Sqrt(dev * dev / 4)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("awkwardness = %v, want %v", got, want)
	}

	if RhythmAwkwardness(objectsAt(0)) != 0 {
		t.Error("single object has awkwardness")
	}
}
