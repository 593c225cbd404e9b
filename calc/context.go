// Package calc keeps a beatmap and the results calculated on it across
// repeated difficulty and pp requests with different mods.
package calc

import (
	"bytes"
	"errors"
	"math"

	"ppcalc/difficulty"
	"ppcalc/dotosu"
	"ppcalc/mods"
	"ppcalc/performance"
)

// Loader decodes a beatmap file without applying overrides.
type Loader func(path string) (*dotosu.Beatmap, error)

// DecodeFile is the default Loader.
func DecodeFile(path string) (*dotosu.Beatmap, error) {
	return dotosu.DecodeFile(path, dotosu.Options{})
}

// Context is not safe for concurrent use.
type Context struct {
	path string

	// baseline is the beatmap as decoded, without overrides or mods.
	baseline *dotosu.Beatmap
	beatmap  *dotosu.Beatmap

	overrides dotosu.Options

	// applied is the map-altering subset baked into beatmap.
	applied mods.ModSet
	mods    mods.ModSet

	attr   *difficulty.Attributes
	result *performance.Result
	err    error
}

// New decodes path and applies the CS/OD/AR overrides in opts.
func New(path string, opts dotosu.Options) (*Context, error) {
	return NewWithLoader(path, opts, DecodeFile)
}

func NewWithLoader(path string, opts dotosu.Options, load Loader) (*Context, error) {
	b, err := load(path)
	if err != nil {
		return nil, err
	}
	return newContext(path, b, opts), nil
}

// NewFromBytes decodes an in-memory .osu file. name is only used in errors.
func NewFromBytes(name string, data []byte, opts dotosu.Options) (*Context, error) {
	b, err := dotosu.Decode(bytes.NewReader(data), dotosu.Options{})
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = name
		}
		return nil, err
	}
	return newContext(name, b, opts), nil
}

func newContext(path string, b *dotosu.Beatmap, opts dotosu.Options) *Context {
	c := &Context{
		path:      path,
		baseline:  b,
		overrides: opts,
	}
	c.reset()
	return c
}

// reset rebuilds the working beatmap from the baseline and the overrides.
func (c *Context) reset() {
	c.beatmap = c.baseline.Clone()
	c.overrides.Apply(&c.beatmap.Difficulty)
	c.applied = mods.NoMod
	c.attr = nil
	c.result = nil
}

func (c *Context) fail(err error) error {
	c.err = err
	return err
}

// Override replaces the non-nil settings and returns the beatmap to its
// unmodded state. Mods are applied again by the next Difficulty call.
// A non-finite value keeps the previous overrides but still resets.
func (c *Context) Override(cs, od, ar *float64) error {
	for _, v := range []*float64{cs, od, ar} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			c.reset()
			c.mods = mods.NoMod
			return c.fail(&CalcError{Op: "override", Err: ErrBadOverride})
		}
	}
	if cs != nil {
		c.overrides.CS = cs
	}
	if od != nil {
		c.overrides.OD = od
	}
	if ar != nil {
		c.overrides.AR = ar
	}
	c.reset()
	c.mods = mods.NoMod
	c.err = nil
	return nil
}

// Difficulty calculates star ratings under m. Switching to a different set
// of map-altering mods starts again from the baseline beatmap.
func (c *Context) Difficulty(m mods.ModSet, opts difficulty.Options) (difficulty.Attributes, error) {
	if err := m.Valid(); err != nil {
		return difficulty.Attributes{}, c.fail(err)
	}

	if m.Altering() != c.applied {
		c.reset()
		if err := mods.Apply(c.beatmap, m); err != nil {
			return difficulty.Attributes{}, c.fail(err)
		}
		c.applied = m.Altering()
	}

	attr, err := difficulty.Analyze(c.beatmap, m, opts)
	if err != nil {
		return difficulty.Attributes{}, c.fail(&CalcError{Op: "difficulty", Err: err})
	}

	c.mods = m
	c.attr = &attr
	c.result = nil
	c.err = nil
	return attr, nil
}

func (c *Context) ensureDifficulty() error {
	if c.attr != nil {
		return nil
	}
	_, err := c.Difficulty(c.mods, difficulty.Options{})
	return err
}

// Performance calculates pp for play with the mods of the last Difficulty
// call. Difficulty is calculated first if needed.
func (c *Context) Performance(play performance.Play) (performance.Result, error) {
	if err := c.ensureDifficulty(); err != nil {
		return performance.Result{}, err
	}
	res, err := performance.Calculate(*c.attr, c.beatmap, c.mods, play)
	if err != nil {
		return performance.Result{}, c.fail(err)
	}
	c.result = &res
	c.err = nil
	return res, nil
}

// PerformanceFromAccuracy is Performance with judgments estimated from an
// accuracy percentage. The estimate never includes 50s.
func (c *Context) PerformanceFromAccuracy(accPercent float64, combo, misses, scoreVersion int) (performance.Result, error) {
	if err := c.ensureDifficulty(); err != nil {
		return performance.Result{}, err
	}
	res, err := performance.CalculateFromAccuracy(*c.attr, c.beatmap, c.mods, accPercent, combo, misses, scoreVersion)
	if err != nil {
		return performance.Result{}, c.fail(err)
	}
	c.result = &res
	c.err = nil
	return res, nil
}

// Attributes returns the result of the last Difficulty call.
func (c *Context) Attributes() (difficulty.Attributes, error) {
	if c.attr == nil {
		return difficulty.Attributes{}, &CalcError{Op: "attributes", Err: ErrNoDifficulty}
	}
	return *c.attr, nil
}

// Result returns the result of the last pp calculation.
func (c *Context) Result() (performance.Result, error) {
	if c.result == nil {
		return performance.Result{}, &CalcError{Op: "result", Err: ErrNoDifficulty}
	}
	return *c.result, nil
}

// Beatmap is the working beatmap with overrides and the current map-altering
// mods applied. Callers must not modify it.
func (c *Context) Beatmap() *dotosu.Beatmap { return c.beatmap }

func (c *Context) Mods() mods.ModSet { return c.mods }

func (c *Context) Path() string { return c.path }

// Err returns the error of the last failed operation, nil after a success.
func (c *Context) Err() error { return c.err }

func (c *Context) String() string { return c.beatmap.String() }
