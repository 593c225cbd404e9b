package dotosu

import "math"

const (
	// EarlyVersionOffset is added to every timestamp of files older than v5.
	EarlyVersionOffset  = 24
	LatestFormatVersion = 14

	// MaxFileSize bounds how much of a .osu file is read. Anything past it is
	// dropped and the beatmap is flagged as truncated.
	MaxFileSize = 2_000_000
)

type Beatmap struct {
	FormatVersion int
	General       General
	Metadata      Metadata
	Difficulty    Difficulty

	TimingPoints []TimingPoint
	HitObjects   []HitObject

	Stats Stats

	// Truncated is set when the source exceeded MaxFileSize.
	Truncated bool
}

type General struct {
	AudioFilename string
	StackLeniency float64
	Mode          int
}

type Metadata struct {
	Title, TitleUnicode            string
	Artist, ArtistUnicode          string
	Creator, Version, Source, Tags string
	BeatmapID, BeatmapSetID        int
}

type Difficulty struct {
	HPDrainRate, CircleSize, OverallDifficulty, ApproachRate float64
	SliderMultiplier, SliderTickRate                         float64
}

// Stats are counted once at decode time and never change afterwards.
type Stats struct {
	Objects  int
	Circles  int
	Sliders  int
	Spinners int
	MaxCombo int
}

type TimingPoint struct {
	Time        float64
	BeatLength  float64
	Meter       int
	Uninherited bool
	Kiai        bool
	// SliderVelocity is 1 on uninherited points.
	SliderVelocity float64
}

type ObjectKind uint8

const (
	KindCircle ObjectKind = iota
	KindSlider
	KindSpinner
)

func (k ObjectKind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindSlider:
		return "slider"
	case KindSpinner:
		return "spinner"
	}
	return "unknown"
}

// TypeFlags is the type field of a hit object line.
type TypeFlags int

const (
	TypeCircle TypeFlags = 1 << iota
	TypeSlider
	TypeNewCombo
	TypeSpinner

	// TypeComboSkip masks the number of combo colours to skip.
	TypeComboSkip TypeFlags = 0x70
)

type Vec struct{ X, Y float64 }

func (v Vec) Sub(o Vec) Vec       { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scl(f float64) Vec   { return Vec{v.X * f, v.Y * f} }
func (v Vec) Dot(o Vec) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec) Dst(o Vec) float64   { return math.Hypot(v.X-o.X, v.Y-o.Y) }
func (v Vec) Len() float64        { return math.Hypot(v.X, v.Y) }
func (v Vec) Equal(o Vec) bool    { return v.X == o.X && v.Y == o.Y }
func (v Vec) Cross(o Vec) float64 { return v.X*o.Y - v.Y*o.X }
func (v Vec) Add(o Vec) Vec       { return Vec{v.X + o.X, v.Y + o.Y} }

// CenterPos is the middle of the 512x384 playfield.
var CenterPos = Vec{X: 256, Y: 192}

type SliderPathType uint8

const (
	PathBezier SliderPathType = iota
	PathLinear
	PathCatmull
	PathPerfect
)

// SliderSegment holds the control points of one curve, starting with the
// point it shares with the previous segment or the slider head.
type SliderSegment struct {
	Points []Vec
}

// SliderPath is a parsed curve. Bezier paths are split into one segment per
// red anchor, every other type has a single segment.
type SliderPath struct {
	Type     SliderPathType
	Segments []SliderSegment
}

type HitObject interface {
	Kind() ObjectKind
	StartTime() float64
	EndTime() float64
	NewCombo() bool
	Flags() TypeFlags
	Pos() Vec
	EndPos() Vec
	// ScaleTime divides every timestamp of the object by rate.
	ScaleTime(rate float64)
	clone() HitObject
}

// ObjectBase is shared by every hit object kind.
type ObjectBase struct {
	Position Vec
	Time     float64
	Type     TypeFlags
	Hitsound int
}

func (o *ObjectBase) StartTime() float64 { return o.Time }
func (o *ObjectBase) NewCombo() bool     { return o.Type&TypeNewCombo != 0 }
func (o *ObjectBase) Flags() TypeFlags   { return o.Type }
func (o *ObjectBase) Pos() Vec           { return o.Position }

type Circle struct{ ObjectBase }

func (*Circle) Kind() ObjectKind         { return KindCircle }
func (c *Circle) EndTime() float64       { return c.Time }
func (c *Circle) EndPos() Vec            { return c.Position }
func (c *Circle) ScaleTime(rate float64) { c.Time /= rate }
func (c *Circle) clone() HitObject       { cp := *c; return &cp }

type Slider struct {
	ObjectBase
	Path   SliderPath
	Slides int
	Length float64

	// Derived at decode time from the active timing points.
	End   float64
	Tail  Vec
	Combo int
}

func (*Slider) Kind() ObjectKind         { return KindSlider }
func (s *Slider) EndTime() float64       { return s.End }
func (s *Slider) EndPos() Vec            { return s.Tail }
func (s *Slider) ScaleTime(rate float64) { s.Time /= rate; s.End /= rate }

func (s *Slider) clone() HitObject {
	cp := *s
	cp.Path.Segments = make([]SliderSegment, len(s.Path.Segments))
	for i, seg := range s.Path.Segments {
		cp.Path.Segments[i] = SliderSegment{Points: append([]Vec(nil), seg.Points...)}
	}
	return &cp
}

type Spinner struct {
	ObjectBase
	End float64
}

func (*Spinner) Kind() ObjectKind         { return KindSpinner }
func (s *Spinner) EndTime() float64       { return s.End }
func (s *Spinner) EndPos() Vec            { return s.Position }
func (s *Spinner) ScaleTime(rate float64) { s.Time /= rate; s.End /= rate }
func (s *Spinner) clone() HitObject       { cp := *s; return &cp }

// Clone returns a deep copy that shares nothing mutable with b.
func (b *Beatmap) Clone() *Beatmap {
	cp := *b
	cp.TimingPoints = append([]TimingPoint(nil), b.TimingPoints...)
	cp.HitObjects = make([]HitObject, len(b.HitObjects))
	for i, o := range b.HitObjects {
		cp.HitObjects[i] = o.clone()
	}
	return &cp
}

// String formats the beatmap as "Artist - Title [Version] (Creator)".
func (b *Beatmap) String() string {
	return b.Metadata.Artist + " - " + b.Metadata.Title + " [" + b.Metadata.Version + "] (" + b.Metadata.Creator + ")"
}
