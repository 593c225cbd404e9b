package calc

import (
	"errors"

	"ppcalc/dotosu"
	"ppcalc/mods"
	"ppcalc/performance"
)

type (
	ParseError = dotosu.ParseError
	ModError   = mods.ModError
	CalcError  = performance.CalcError
)

// ErrNoDifficulty is returned when results are asked for before anything was
// calculated.
var ErrNoDifficulty = errors.New("difficulty has not been calculated")

var ErrBadOverride = errors.New("override is not a number")
