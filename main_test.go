package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ppcalc/calc"
	"ppcalc/difficulty"
	"ppcalc/dotosu"
	"ppcalc/fixtures"
	"ppcalc/mods"
	"ppcalc/performance"
)

func TestParseScoreLegacy(t *testing.T) {
	s, err := ParseScore(`{
		"max_combo": 412,
		"mods": ["HD", "DT"],
		"pp": 231.5,
		"statistics": {"count_300": 300, "count_100": 12, "count_50": 1, "count_miss": 2},
		"beatmap": {"id": 129891}
	}`)
	if err != nil {
		t.Fatal(err)
	}
	want := performance.Play{Combo: 412, Count300: 300, Count100: 12, Count50: 1, Misses: 2}
	if s.Play != want {
		t.Errorf("play = %+v, want %+v", s.Play, want)
	}
	if s.Mods != mods.Hidden|mods.DoubleTime {
		t.Errorf("mods = %v", s.Mods)
	}
	if s.BeatmapID != 129891 || s.PP != 231.5 {
		t.Errorf("id = %d, pp = %v", s.BeatmapID, s.PP)
	}
}

func TestParseScoreLazer(t *testing.T) {
	s, err := ParseScore(`{
		"max_combo": 99,
		"mods": [{"acronym": "HR"}, {"acronym": "NF"}],
		"statistics": {"great": 90, "ok": 5, "meh": 0, "miss": 1}
	}`)
	if err != nil {
		t.Fatal(err)
	}
	want := performance.Play{Combo: 99, Count300: 90, Count100: 5, Misses: 1}
	if s.Play != want {
		t.Errorf("play = %+v, want %+v", s.Play, want)
	}
	if s.Mods != mods.HardRock|mods.NoFail {
		t.Errorf("mods = %v", s.Mods)
	}
}

func TestParseScoreErrors(t *testing.T) {
	for _, in := range []string{
		`{"statistics":`,
		`{"max_combo": 1}`,
		`{"statistics": {}, "mods": ["ZZ"]}`,
	} {
		if _, err := ParseScore(in); err == nil {
			t.Errorf("ParseScore(%q) succeeded", in)
		}
	}
}

func TestLoadScore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "score.json")
	if err := os.WriteFile(path, []byte(`{"statistics": {"count_300": 5}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadScore(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Play.Count300 != 5 {
		t.Errorf("count300 = %d", s.Play.Count300)
	}
	if _, err := LoadScore(path + ".missing"); err == nil {
		t.Error("missing score file loaded")
	}
}

func writeMap(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCollectPaths(t *testing.T) {
	dir := t.TempDir()
	b := writeMap(t, dir, "set/b.osu", fixtures.Basic)
	a := writeMap(t, dir, "set/a.OSU", fixtures.Basic)
	writeMap(t, dir, "set/audio.mp3", "")
	c := writeMap(t, dir, "set/sub/c.osu", fixtures.Basic)
	loose := writeMap(t, dir, "loose.txt", fixtures.Basic)

	got, err := collectPaths([]string{filepath.Join(dir, "set"), loose, b})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{a, b, c, loose}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("paths = %v, want %v", got, want)
	}

	if _, err := collectPaths([]string{filepath.Join(dir, "nope")}); err == nil {
		t.Error("missing path accepted")
	}
	empty := filepath.Join(dir, "empty")
	if err := os.Mkdir(empty, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := collectPaths([]string{empty}); err == nil {
		t.Error("directory without beatmaps accepted")
	}
}

func defaultConfig() Config {
	return Config{
		Accuracy:   -1,
		Play:       performance.Play{Combo: -1, Count300: -1, ScoreVersion: performance.ScoreV1},
		Difficulty: difficulty.Options{SingletapThreshold: difficulty.DefaultSingletapThreshold},
	}
}

func TestEvaluate(t *testing.T) {
	path := writeMap(t, t.TempDir(), "basic.osu", fixtures.Basic)

	row := evaluate(path, defaultConfig(), calc.DecodeFile)
	if row.Err != nil {
		t.Fatal(row.Err)
	}
	if row.Reference != 0 {
		t.Errorf("reference = %v without a score", row.Reference)
	}
	if row.Name != "Test Artist - Test Song [Insane] (Mapper)" {
		t.Errorf("name = %q", row.Name)
	}
	if row.Result.Accuracy != 1 || row.Result.Play.Combo != 8 {
		t.Errorf("result = %+v", row.Result)
	}
	if row.Result.Total <= 0 || row.Attributes.Stars <= 0 {
		t.Errorf("total = %v, stars = %v", row.Result.Total, row.Attributes.Stars)
	}

	cfg := defaultConfig()
	cfg.Accuracy = 90
	cfg.Mods = mods.HardRock
	cfg.Reference = 120
	row = evaluate(path, cfg, calc.DecodeFile)
	if row.Err != nil {
		t.Fatal(row.Err)
	}
	if row.Reference != 120 {
		t.Errorf("reference = %v, want 120", row.Reference)
	}
	if row.Attributes.Mods != mods.HardRock || row.Result.Accuracy >= 1 {
		t.Errorf("mods = %v, accuracy = %v", row.Attributes.Mods, row.Result.Accuracy)
	}
}

func TestEvaluateErrors(t *testing.T) {
	dir := t.TempDir()
	broken := writeMap(t, dir, "broken.osu", "not a beatmap")

	row := evaluate(broken, defaultConfig(), calc.DecodeFile)
	var pe *dotosu.ParseError
	if !errors.As(row.Err, &pe) {
		t.Errorf("err = %v, want ParseError", row.Err)
	}

	panicky := func(string) (*dotosu.Beatmap, error) { panic("boom") }
	row = evaluate(broken, defaultConfig(), panicky)
	if row.Err == nil || !strings.Contains(row.Err.Error(), "boom") {
		t.Errorf("err = %v, want recovered panic", row.Err)
	}
}

func TestEvaluateAllKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, n := range []int{20, 5, 40, 12} {
		paths = append(paths, writeMap(t, dir, strings.Repeat("m", n)+".osu",
			fixtures.Stream(fixtures.Default, n, 150, 100)))
	}
	rows := evaluateAll(paths, defaultConfig(), calc.DecodeFile, 2)
	for i, row := range rows {
		if row.Err != nil {
			t.Fatal(row.Err)
		}
		if row.Path != paths[i] {
			t.Errorf("row %d path = %s, want %s", i, row.Path, paths[i])
		}
	}
	if rows[0].Attributes.ObjectCount != 20 || rows[2].Attributes.ObjectCount != 40 {
		t.Errorf("object counts = %d, %d", rows[0].Attributes.ObjectCount, rows[2].Attributes.ObjectCount)
	}
}

func TestPrintRows(t *testing.T) {
	path := writeMap(t, t.TempDir(), "basic.osu", fixtures.Basic)
	rows := []Row{
		evaluate(path, defaultConfig(), calc.DecodeFile),
		{Path: "missing.osu", Err: errors.New("gone")},
	}

	var plain bytes.Buffer
	printRows(&plain, rows, false)
	for _, want := range []string{"Test Artist - Test Song [Insane] (Mapper) +NM", "5 objects", "8x/8x", "100.00%", "hit windows ±32.00/±76.00/±120.00ms", "missing.osu\nerror: gone"} {
		if !strings.Contains(plain.String(), want) {
			t.Errorf("plain output missing %q:\n%s", want, plain.String())
		}
	}

	if strings.Contains(plain.String(), "(score:") {
		t.Errorf("reference pp printed without a score:\n%s", plain.String())
	}
	scored := rows[0]
	scored.Reference = 231.5
	plain.Reset()
	printRows(&plain, []Row{scored}, false)
	if want := "(score: 231.50pp)"; !strings.Contains(plain.String(), want) {
		t.Errorf("plain output missing %q:\n%s", want, plain.String())
	}

	var table bytes.Buffer
	printRows(&table, rows, true)
	for _, want := range []string{"BEATMAP", "STARS", "8/8", "error: gone"} {
		if !strings.Contains(table.String(), want) {
			t.Errorf("table output missing %q:\n%s", want, table.String())
		}
	}
}

func TestLimiter(t *testing.T) {
	l := newLimiter(2)
	release := l.GetToken()
	l.GetToken()

	got := make(chan struct{})
	go func() {
		l.GetToken()()
		close(got)
	}()

	select {
	case <-got:
		t.Fatal("third token handed out while two are held")
	case <-time.After(20 * time.Millisecond):
	}
	release()
	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("token not handed out after release")
	}

	if cap(newLimiter(0)) != 1 {
		t.Error("limiter without slots")
	}
}

func TestFail(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "failures")
	Fail(dir, "/maps/x.osu", errors.New("bad map"))
	data, err := os.ReadFile(filepath.Join(dir, "x.osu.err"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "bad map\n" {
		t.Errorf("report = %q", data)
	}

	Fail("", "/maps/y.osu", errors.New("only logged"))
}

func TestCatch(t *testing.T) {
	f := func() (err error) {
		defer Catch(&err)
		panic("oops")
	}
	if err := f(); err == nil || err.Error() != "panic: oops" {
		t.Errorf("err = %v", err)
	}
}
