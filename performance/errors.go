package performance

import "errors"

var (
	ErrNegativeCount  = errors.New("negative judgment count")
	ErrTooManyHits    = errors.New("judgment counts exceed object count")
	ErrScoreVersion   = errors.New("unknown score version")
	ErrNoObjects      = errors.New("beatmap has no objects")
	ErrModMismatch    = errors.New("attributes were computed for different map-altering mods")
	ErrAccuracyRange  = errors.New("accuracy out of range")
	ErrNonFiniteValue = errors.New("calculation produced a non-finite value")
)

// CalcError is returned for every failed calculation step.
type CalcError struct {
	Op  string
	Err error
}

func (e *CalcError) Error() string {
	return "calc: " + e.Op + ": " + e.Err.Error()
}

func (e *CalcError) Unwrap() error { return e.Err }
