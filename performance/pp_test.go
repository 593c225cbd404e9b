package performance

import (
	"errors"
	"math"
	"strings"
	"testing"

	"ppcalc/difficulty"
	"ppcalc/dotosu"
	"ppcalc/fixtures"
	"ppcalc/mods"
)

func prepare(t *testing.T, src string, m mods.ModSet) (difficulty.Attributes, *dotosu.Beatmap) {
	t.Helper()
	b, err := dotosu.Decode(strings.NewReader(src), dotosu.Options{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	attr, err := difficulty.Calculate(b, m, difficulty.Options{})
	if err != nil {
		t.Fatalf("difficulty: %v", err)
	}
	return attr, b
}

func fullCombo(version int) Play {
	return Play{Combo: -1, Count300: -1, ScoreVersion: version}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		n300, n100, n50, miss int
		want                  float64
	}{
		{100, 0, 0, 0, 1},
		{0, 0, 0, 10, 0},
		{1, 1, 1, 1, 0.375},
		{0, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		if got := Accuracy(tt.n300, tt.n100, tt.n50, tt.miss); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Accuracy(%d,%d,%d,%d) = %v, want %v", tt.n300, tt.n100, tt.n50, tt.miss, got, tt.want)
		}
	}
}

func TestMaxAccuracyValue(t *testing.T) {
	attr, b := prepare(t, fixtures.Basic, mods.NoMod)

	v1, err := Calculate(attr, b, mods.NoMod, fullCombo(ScoreV1))
	if err != nil {
		t.Fatal(err)
	}
	want := math.Pow(1.52163, 8) * 2.83 * min(1.15, math.Pow(2.0/1000, 0.3))
	if math.Abs(v1.Acc-want) > 1e-9 {
		t.Errorf("v1 acc pp = %v, want %v", v1.Acc, want)
	}
	if v1.Accuracy != 1 {
		t.Errorf("Accuracy = %v", v1.Accuracy)
	}

	v2, err := Calculate(attr, b, mods.NoMod, fullCombo(ScoreV2))
	if err != nil {
		t.Fatal(err)
	}
	want = math.Pow(1.52163, 8) * 2.83 * min(1.15, math.Pow(5.0/1000, 0.3))
	if math.Abs(v2.Acc-want) > 1e-9 {
		t.Errorf("v2 acc pp = %v, want %v", v2.Acc, want)
	}

	if v1.Play.Combo != 8 || v1.Play.Count300 != 5 || v1.Play.ScoreVersion != ScoreV1 {
		t.Errorf("defaults not resolved: %+v", v1.Play)
	}
}

func TestTotalCombination(t *testing.T) {
	attr, b := prepare(t, fixtures.Stream(fixtures.Default, 300, 110, 90), mods.NoMod)
	res, err := Calculate(attr, b, mods.NoMod, fullCombo(ScoreV1))
	if err != nil {
		t.Fatal(err)
	}
	sum := math.Pow(res.Aim, 1.1) + math.Pow(res.Speed, 1.1) + math.Pow(res.Acc, 1.1)
	want := math.Pow(sum, 1/1.1) * 1.12
	if math.Abs(res.Total-want) > 1e-9 {
		t.Errorf("Total = %v, want %v", res.Total, want)
	}
}

func TestFromAccuracyMatchesCounts(t *testing.T) {
	for _, m := range []mods.ModSet{mods.NoMod, mods.Hidden | mods.DoubleTime, mods.HardRock} {
		attr, b := prepare(t, fixtures.Basic, m)
		for _, v := range []int{ScoreV1, ScoreV2} {
			exact, err := Calculate(attr, b, m, fullCombo(v))
			if err != nil {
				t.Fatal(err)
			}
			approx, err := CalculateFromAccuracy(attr, b, m, 100, -1, 0, v)
			if err != nil {
				t.Fatal(err)
			}
			if exact != approx {
				t.Errorf("%v v%d: %+v != %+v", m, v, exact, approx)
			}
		}
	}
}

func TestCountsFromAccuracy(t *testing.T) {
	tests := []struct {
		objects int
		acc     float64
		misses  int
		n300    int
		n100    int
	}{
		{100, 100, 0, 100, 0},
		{100, 95, 0, 92, 8},
		{100, 99, 1, 99, 0},
		{100, 100, 1, 99, 0},
		{10, 0, 0, 0, 10},
	}
	for _, tt := range tests {
		n300, n100 := CountsFromAccuracy(tt.objects, tt.acc, tt.misses)
		if n300 != tt.n300 || n100 != tt.n100 {
			t.Errorf("CountsFromAccuracy(%d, %v, %d) = %d, %d; want %d, %d",
				tt.objects, tt.acc, tt.misses, n300, n100, tt.n300, tt.n100)
		}
	}
}

func TestMissesDecreasePP(t *testing.T) {
	attr, b := prepare(t, fixtures.Stream(fixtures.Default, 200, 120, 110), mods.NoMod)
	last := math.Inf(1)
	for misses := 0; misses <= 20; misses++ {
		res, err := Calculate(attr, b, mods.NoMod, Play{Combo: -1, Count300: -1, Misses: misses})
		if err != nil {
			t.Fatal(err)
		}
		if res.Total >= last {
			t.Fatalf("%d misses: %v >= %v", misses, res.Total, last)
		}
		last = res.Total
	}
}

func TestComboScaling(t *testing.T) {
	attr, b := prepare(t, fixtures.Stream(fixtures.Default, 200, 120, 110), mods.NoMod)
	full, err := Calculate(attr, b, mods.NoMod, fullCombo(ScoreV1))
	if err != nil {
		t.Fatal(err)
	}
	half, err := Calculate(attr, b, mods.NoMod, Play{Combo: 100, Count300: -1})
	if err != nil {
		t.Fatal(err)
	}
	ratio := half.Aim / full.Aim
	if math.Abs(ratio-math.Pow(0.5, 0.8)) > 1e-9 {
		t.Errorf("aim ratio = %v, want %v", ratio, math.Pow(0.5, 0.8))
	}
	if half.Acc != full.Acc {
		t.Error("combo changed acc pp")
	}
}

func TestScoreMods(t *testing.T) {
	attr, b := prepare(t, fixtures.Basic, mods.NoMod)
	base, err := Calculate(attr, b, mods.NoMod, fullCombo(ScoreV1))
	if err != nil {
		t.Fatal(err)
	}

	nf, err := Calculate(attr, b, mods.NoFail, fullCombo(ScoreV1))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(nf.Total/base.Total-0.9) > 1e-12 {
		t.Errorf("NF ratio = %v", nf.Total/base.Total)
	}

	so, err := Calculate(attr, b, mods.SpunOut, fullCombo(ScoreV1))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(so.Total/base.Total-0.95) > 1e-12 {
		t.Errorf("SO ratio = %v", so.Total/base.Total)
	}

	sd, err := Calculate(attr, b, mods.SuddenDeath, fullCombo(ScoreV1))
	if err != nil {
		t.Fatal(err)
	}
	if sd.Total != base.Total {
		t.Errorf("SD changed pp: %v vs %v", sd.Total, base.Total)
	}

	hd, err := Calculate(attr, b, mods.Hidden, fullCombo(ScoreV1))
	if err != nil {
		t.Fatal(err)
	}
	if hd.Aim <= base.Aim || hd.Acc <= base.Acc || hd.Speed != base.Speed {
		t.Errorf("HD result %+v vs %+v", hd, base)
	}

	fl, err := Calculate(attr, b, mods.Flashlight, fullCombo(ScoreV1))
	if err != nil {
		t.Fatal(err)
	}
	if fl.Aim <= base.Aim {
		t.Errorf("FL aim %v <= %v", fl.Aim, base.Aim)
	}
}

func TestErrors(t *testing.T) {
	attr, b := prepare(t, fixtures.Basic, mods.NoMod)
	empty, err := dotosu.Decode(strings.NewReader("osu file format v14\n[HitObjects]\n"), dotosu.Options{})
	if err != nil {
		t.Fatal(err)
	}
	emptyAttr, err := difficulty.Calculate(empty, mods.NoMod, difficulty.Options{})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		run  func() error
		is   error
	}{
		{"negative 100s", func() error {
			_, err := Calculate(attr, b, mods.NoMod, Play{Combo: -1, Count300: -1, Count100: -1})
			return err
		}, ErrNegativeCount},
		{"too many hits", func() error {
			_, err := Calculate(attr, b, mods.NoMod, Play{Combo: -1, Count300: 5, Count100: 1})
			return err
		}, ErrTooManyHits},
		{"too many misses", func() error {
			_, err := Calculate(attr, b, mods.NoMod, Play{Combo: -1, Count300: -1, Misses: 6})
			return err
		}, ErrTooManyHits},
		{"score version", func() error {
			_, err := Calculate(attr, b, mods.NoMod, Play{Combo: -1, Count300: -1, ScoreVersion: 3})
			return err
		}, ErrScoreVersion},
		{"mod mismatch", func() error {
			_, err := Calculate(attr, b, mods.DoubleTime, fullCombo(ScoreV1))
			return err
		}, ErrModMismatch},
		{"empty map", func() error {
			_, err := Calculate(emptyAttr, empty, mods.NoMod, fullCombo(ScoreV1))
			return err
		}, ErrNoObjects},
		{"accuracy above 100", func() error {
			_, err := CalculateFromAccuracy(attr, b, mods.NoMod, 101, -1, 0, ScoreV1)
			return err
		}, ErrAccuracyRange},
		{"negative misses", func() error {
			_, err := CalculateFromAccuracy(attr, b, mods.NoMod, 90, -1, -2, ScoreV1)
			return err
		}, ErrNegativeCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			var ce *CalcError
			if !errors.As(err, &ce) {
				t.Fatalf("error %v is not a *CalcError", err)
			}
			if !errors.Is(err, tt.is) {
				t.Errorf("error %v does not wrap %v", err, tt.is)
			}
		})
	}
}

func TestDifficultyToPerformance(t *testing.T) {
	if got := DifficultyToPerformance(0); got != 1.0/100000 {
		t.Errorf("floor value = %v", got)
	}
	stars := 2.0
	want := math.Pow(5*stars/0.0675-4, 3) / 100000
	if got := DifficultyToPerformance(stars); math.Abs(got-want) > 1e-9 {
		t.Errorf("DifficultyToPerformance(2) = %v, want %v", got, want)
	}
}
