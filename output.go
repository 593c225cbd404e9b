package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"

	"ppcalc/mods"
)

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func printRows(w io.Writer, rows []Row, table bool) {
	if table {
		printTable(w, rows)
		return
	}
	for _, row := range rows {
		printPlain(w, row)
	}
}

func printTable(w io.Writer, rows []Row) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Beatmap", "Mods", "Stars", "Aim", "Speed", "Acc", "Combo", "pp"})
	for _, row := range rows {
		if row.Err != nil {
			tw.Append([]string{row.Path, "", "", "", "", "", "", "error: " + row.Err.Error()})
			continue
		}
		a, r := row.Attributes, row.Result
		tw.Append([]string{
			row.Name,
			a.Mods.String(),
			fmt.Sprintf("%.2f", a.Stars),
			fmt.Sprintf("%.2f", a.Aim),
			fmt.Sprintf("%.2f", a.Speed),
			fmt.Sprintf("%.2f%%", r.Accuracy*100),
			fmt.Sprintf("%d/%d", r.Play.Combo, a.MaxCombo),
			fmt.Sprintf("%.2f", r.Total),
		})
	}
	tw.Render()
}

func printPlain(w io.Writer, row Row) {
	if row.Err != nil {
		fmt.Fprintf(w, "%s\nerror: %v\n\n", row.Path, row.Err)
		return
	}
	a, r := row.Attributes, row.Result
	fmt.Fprintf(w, "%s +%s\n", row.Name, a.Mods)
	if row.Truncated {
		fmt.Fprintln(w, "warning: file truncated")
	}
	fmt.Fprintf(w, "OD%.2f AR%.2f CS%.2f HP%.2f\n", a.OverallDifficulty, a.ApproachRate, a.CircleSize, a.HPDrainRate)
	w300, w100, w50 := mods.HitWindows(a.OverallDifficulty)
	fmt.Fprintf(w, "hit windows ±%.2f/±%.2f/±%.2fms\n", w300, w100, w50)
	fmt.Fprintf(w, "%s objects (%d circles, %d sliders, %d spinners)\n",
		humanize.Comma(int64(a.ObjectCount)), a.Circles, a.Sliders, a.Spinners)
	fmt.Fprintf(w, "%.2f stars (%.2f aim, %.2f speed)\n", a.Stars, a.Aim, a.Speed)
	if a.RhythmAwkwardness != 0 {
		fmt.Fprintf(w, "%.4f rhythm awkwardness\n", a.RhythmAwkwardness)
	}
	if a.AimSingles+a.TimingSingles+a.ThresholdSingles > 0 {
		fmt.Fprintf(w, "%d aim singles, %d timing singles, %d threshold singles\n",
			a.AimSingles, a.TimingSingles, a.ThresholdSingles)
	}
	p := r.Play
	fmt.Fprintf(w, "%d x 300s\n%d x 100s\n%d x 50s\n%d x misses\n%dx/%dx\n%.2f%%\n",
		p.Count300, p.Count100, p.Count50, p.Misses, p.Combo, a.MaxCombo, r.Accuracy*100)
	fmt.Fprintf(w, "%.2f aim pp, %.2f speed pp, %.2f acc pp\n", r.Aim, r.Speed, r.Acc)
	if row.Reference > 0 {
		fmt.Fprintf(w, "%.2fpp (score: %.2fpp)\n\n", r.Total, row.Reference)
	} else {
		fmt.Fprintf(w, "%.2fpp\n\n", r.Total)
	}
}
