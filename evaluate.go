package main

import (
	"sync"

	"ppcalc/calc"
	"ppcalc/difficulty"
	"ppcalc/performance"
)

// Row is the outcome for one beatmap.
type Row struct {
	Path       string
	Name       string
	Attributes difficulty.Attributes
	Result     performance.Result
	Truncated  bool
	// pp recorded with the score, 0 without one.
	Reference float64
	Err       error
}

func evaluate(path string, cfg Config, load calc.Loader) (row Row) {
	row.Path = path
	row.Reference = cfg.Reference
	defer Catch(&row.Err)

	ctx, err := calc.NewWithLoader(path, cfg.Overrides, load)
	if err != nil {
		row.Err = err
		return row
	}
	row.Name = ctx.String()
	row.Truncated = ctx.Beatmap().Truncated

	row.Attributes, err = ctx.Difficulty(cfg.Mods, cfg.Difficulty)
	if err != nil {
		row.Err = err
		return row
	}

	if cfg.Accuracy >= 0 {
		row.Result, err = ctx.PerformanceFromAccuracy(cfg.Accuracy, cfg.Play.Combo, cfg.Play.Misses, cfg.Play.ScoreVersion)
	} else {
		row.Result, err = ctx.Performance(cfg.Play)
	}
	row.Err = err
	return row
}

// evaluateAll calculates every path with at most jobs running at once. Rows
// come back in the order of paths.
func evaluateAll(paths []string, cfg Config, load calc.Loader, jobs int) []Row {
	rows := make([]Row, len(paths))
	slots := newLimiter(jobs)

	wg := sync.WaitGroup{}
	for i, p := range paths {
		i, p := i, p
		wg.Add(1)
		done := slots.GetToken()
		Run("evaluate "+p, func() {
			defer wg.Done()
			defer done()
			rows[i] = evaluate(p, cfg, load)
		})
	}
	wg.Wait()
	return rows
}
