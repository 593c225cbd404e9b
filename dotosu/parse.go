package dotosu

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"ppcalc/mutils"
)

var (
	ErrTruncated    = errors.New("file truncated before [HitObjects]")
	ErrNoTiming     = errors.New("slider without any uninherited timing point")
	ErrUnsupported  = errors.New("unsupported game mode")
	ErrMissingBlock = errors.New("missing [HitObjects] section")
	ErrOutOfRange   = errors.New("value out of range")
)

type section int

const (
	secNone section = iota
	secGeneral
	secMetadata
	secDifficulty
	secTimingPoints
	secHitObjects
)

// Options are applied after the raw file has been decoded. Nil fields leave
// the decoded value alone.
type Options struct {
	CS, OD, AR *float64
}

func (o Options) Apply(d *Difficulty) {
	if o.CS != nil {
		d.CircleSize = *o.CS
	}
	if o.OD != nil {
		d.OverallDifficulty = *o.OD
	}
	if o.AR != nil {
		d.ApproachRate = *o.AR
	}
}

func DecodeFile(path string, opts Options) (*Beatmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Msg: "open", Err: err}
	}
	defer f.Close()

	b, err := Decode(f, opts)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return b, nil
}

// ReadSource reads at most MaxFileSize bytes of r and converts them to UTF-8.
// The returned flag reports whether r had more data than the limit.
func ReadSource(r io.Reader) ([]byte, bool, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, false, &ParseError{Msg: "read", Err: err}
	}
	truncated := len(raw) > MaxFileSize
	if truncated {
		raw = raw[:MaxFileSize]
	}

	text, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	if err != nil {
		return nil, false, &ParseError{Msg: "decode text", Err: err}
	}
	if truncated {
		// the last line is most likely cut in half
		if i := bytes.LastIndexByte(text, '\n'); i >= 0 {
			text = text[:i+1]
		}
		log.Printf("dotosu: input larger than %s, truncated", humanize.Bytes(MaxFileSize))
	}
	return text, truncated, nil
}

func Decode(r io.Reader, opts Options) (*Beatmap, error) {
	text, truncated, err := ReadSource(r)
	if err != nil {
		return nil, err
	}
	b, err := DecodeBytes(text, opts)
	if err != nil {
		if truncated && errors.Is(err, ErrMissingBlock) {
			return nil, &ParseError{Msg: "decode", Err: ErrTruncated}
		}
		return nil, err
	}
	b.Truncated = truncated
	return b, nil
}

// DecodeBytes parses UTF-8 .osu contents. It does not enforce MaxFileSize.
func DecodeBytes(text []byte, opts Options) (*Beatmap, error) {
	b, err := decodeRaw(text)
	if err != nil {
		return nil, err
	}
	opts.Apply(&b.Difficulty)
	return b, nil
}

const formatHeader = "osu file format v"

const (
	// MaxTime bounds every timestamp in a file, in ms.
	MaxTime = 1 << 31
	// MaxCoordinate bounds positions, control points and slider lengths.
	MaxCoordinate = 1 << 20
)

// decoder is the state of a single pass over a file.
type decoder struct {
	b       *Beatmap
	offset  float64
	line    int
	section string

	// key/value destinations by "section.key"
	fields  map[string]any
	present map[string]bool
	objects bool
}

func newDecoder(version int) *decoder {
	b := &Beatmap{
		FormatVersion: version,
		General:       General{StackLeniency: 0.7},
		Difficulty: Difficulty{
			HPDrainRate:       5,
			CircleSize:        5,
			OverallDifficulty: 5,
			ApproachRate:      5,
			SliderMultiplier:  1.4,
			SliderTickRate:    1,
		},
	}
	d := &decoder{
		b:       b,
		present: make(map[string]bool),
		fields: map[string]any{
			"general.audiofilename": &b.General.AudioFilename,
			"general.stackleniency": &b.General.StackLeniency,
			"general.mode":          &b.General.Mode,

			"metadata.title":         &b.Metadata.Title,
			"metadata.titleunicode":  &b.Metadata.TitleUnicode,
			"metadata.artist":        &b.Metadata.Artist,
			"metadata.artistunicode": &b.Metadata.ArtistUnicode,
			"metadata.creator":       &b.Metadata.Creator,
			"metadata.version":       &b.Metadata.Version,
			"metadata.source":        &b.Metadata.Source,
			"metadata.tags":          &b.Metadata.Tags,
			"metadata.beatmapid":     &b.Metadata.BeatmapID,
			"metadata.beatmapsetid":  &b.Metadata.BeatmapSetID,

			"difficulty.hpdrainrate":       &b.Difficulty.HPDrainRate,
			"difficulty.circlesize":        &b.Difficulty.CircleSize,
			"difficulty.overalldifficulty": &b.Difficulty.OverallDifficulty,
			"difficulty.approachrate":      &b.Difficulty.ApproachRate,
			"difficulty.slidermultiplier":  &b.Difficulty.SliderMultiplier,
			"difficulty.slidertickrate":    &b.Difficulty.SliderTickRate,
		},
	}
	if version < 5 {
		d.offset = EarlyVersionOffset
	}
	return d
}

func decodeRaw(text []byte) (*Beatmap, error) {
	sc := bufio.NewScanner(bytes.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), MaxFileSize)

	version, lineNo, err := readHeader(sc)
	if err != nil {
		return nil, err
	}
	d := newDecoder(version)
	d.line = lineNo

	for sc.Scan() {
		d.line++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			d.section = strings.ToLower(line[1 : len(line)-1])
			d.objects = d.objects || d.section == "hitobjects"
			continue
		}

		switch d.section {
		case "general", "metadata", "difficulty":
			d.setField(line)
		case "timingpoints":
			if err := d.timingPoint(line); err != nil {
				return nil, &ParseError{Line: d.line, Msg: "timing point", Err: err}
			}
		case "hitobjects":
			if err := d.hitObject(line); err != nil {
				return nil, &ParseError{Line: d.line, Msg: "hit object", Err: err}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Line: d.line, Msg: "scan", Err: err}
	}
	return d.finish()
}

func readHeader(sc *bufio.Scanner) (version, lineNo int, err error) {
	header := ""
	for header == "" && sc.Scan() {
		lineNo++
		header = strings.TrimSpace(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return 0, lineNo, &ParseError{Line: lineNo, Msg: "scan", Err: err}
	}

	rest, ok := strings.CutPrefix(strings.ToLower(header), formatHeader)
	if !ok {
		return 0, lineNo, &ParseError{Line: lineNo, Msg: fmt.Sprintf("invalid .osu header %q", header)}
	}
	version, err = strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0, lineNo, &ParseError{Line: lineNo, Msg: "format version", Err: err}
	}
	if version > LatestFormatVersion {
		log.Printf("dotosu: format v%d is newer than v%d, decoding anyway", version, LatestFormatVersion)
	}
	return version, lineNo, nil
}

func (d *decoder) setField(line string) {
	key, value, _ := strings.Cut(line, ":")
	name := d.section + "." + strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	switch p := d.fields[name].(type) {
	case *string:
		*p = value
	case *int:
		*p = intOr(value, *p)
	case *float64:
		*p = floatOr(value, *p)
	default:
		return
	}
	d.present[name] = true
}

func (d *decoder) finish() (*Beatmap, error) {
	b := d.b
	if b.General.Mode != 0 {
		return nil, &ParseError{Msg: fmt.Sprintf("mode %d", b.General.Mode), Err: ErrUnsupported}
	}
	if !d.objects {
		return nil, &ParseError{Msg: "decode", Err: ErrMissingBlock}
	}
	b.General.AudioFilename = strings.ReplaceAll(strings.Trim(b.General.AudioFilename, `"`), `\`, "/")

	// old files only have OD
	if !d.present["difficulty.approachrate"] {
		b.Difficulty.ApproachRate = b.Difficulty.OverallDifficulty
	}
	if !d.present["difficulty.hpdrainrate"] && d.present["difficulty.overalldifficulty"] {
		b.Difficulty.HPDrainRate = b.Difficulty.OverallDifficulty
	}
	b.Difficulty.clamp()

	sort.SliceStable(b.TimingPoints, func(i, j int) bool {
		return b.TimingPoints[i].Time < b.TimingPoints[j].Time
	})
	sort.SliceStable(b.HitObjects, func(i, j int) bool {
		return b.HitObjects[i].StartTime() < b.HitObjects[j].StartTime()
	})

	if err := computeSliderData(b); err != nil {
		return nil, &ParseError{Msg: "sliders", Err: err}
	}
	b.Stats = countStats(b)
	return b, nil
}

func (df *Difficulty) clamp() {
	for _, f := range []struct {
		v      *float64
		lo, hi float64
	}{
		{&df.HPDrainRate, 0, 10},
		{&df.CircleSize, 0, 10},
		{&df.OverallDifficulty, 0, 10},
		{&df.ApproachRate, 0, 10},
		{&df.SliderMultiplier, 0.4, 3.6},
		{&df.SliderTickRate, 0.5, 8},
	} {
		*f.v = mutils.Clamp(*f.v, f.lo, f.hi)
	}
}

func (d *decoder) timingPoint(line string) error {
	r := splitRecord(line)
	if len(r) < 2 {
		return nil
	}
	t, err := bounded(r[0], MaxTime)
	if errors.Is(err, ErrOutOfRange) {
		return fmt.Errorf("time: %w", err)
	}
	beatLength := r.floatAt(1, math.NaN())
	tp := TimingPoint{
		Time:           t + d.offset,
		Meter:          r.intAt(2, 4),
		Uninherited:    !r.has(6) || r[6] == "1",
		Kiai:           r.intAt(7, 0)&1 != 0,
		SliderVelocity: 1,
	}
	if tp.Meter == 0 {
		tp.Meter = 4
	}
	// files predating the flag mark inherited points with a negative length
	if beatLength < 0 {
		tp.Uninherited = false
	}

	switch {
	case tp.Uninherited && math.IsNaN(beatLength):
		return nil
	case tp.Uninherited:
		tp.BeatLength = mutils.Clamp(beatLength, 6, 60000)
	default:
		tp.BeatLength = beatLength
		if beatLength < 0 {
			tp.SliderVelocity = mutils.Clamp(-100/beatLength, 0.1, 10)
		}
	}
	d.b.TimingPoints = append(d.b.TimingPoints, tp)
	return nil
}

func (d *decoder) hitObject(line string) error {
	r := splitRecord(line)
	if len(r) < 5 {
		return fmt.Errorf("%d fields, need at least 5", len(r))
	}

	var xyt [3]float64
	for i, name := range []string{"x", "y", "time"} {
		limit := float64(MaxCoordinate)
		if name == "time" {
			limit = MaxTime
		}
		v, err := bounded(r[i], limit)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		xyt[i] = v
	}
	typ, err := strconv.Atoi(r[3])
	if err != nil {
		return fmt.Errorf("type: %w", err)
	}

	base := ObjectBase{
		Position: Vec{X: xyt[0], Y: xyt[1]},
		Time:     xyt[2] + d.offset,
		Type:     TypeFlags(typ),
		Hitsound: r.intAt(4, 0),
	}

	var o HitObject
	switch {
	case base.Type&TypeCircle != 0:
		o = &Circle{ObjectBase: base}
	case base.Type&TypeSpinner != 0:
		end := base.Time
		if r.has(5) {
			v, err := bounded(r[5], MaxTime)
			if err != nil {
				return fmt.Errorf("spinner end: %w", err)
			}
			end = v + d.offset
		}
		base.Position = CenterPos
		o = &Spinner{ObjectBase: base, End: max(end, base.Time)}
	case base.Type&TypeSlider != 0:
		if len(r) < 8 {
			return fmt.Errorf("slider has %d fields, need at least 8", len(r))
		}
		slides, err := strconv.Atoi(r[6])
		if err != nil {
			return fmt.Errorf("slides: %w", err)
		}
		length, err := bounded(r[7], MaxCoordinate)
		if err != nil {
			return fmt.Errorf("slider length: %w", err)
		}
		o = &Slider{
			ObjectBase: base,
			Path:       parseSliderPath(base.Position, r[5]),
			Slides:     max(1, slides),
			Length:     max(0, length),
		}
	default:
		return fmt.Errorf("unknown object type %d", typ)
	}
	d.b.HitObjects = append(d.b.HitObjects, o)
	return nil
}

// parseSliderPath reads "T|x:y|x:y..." into a path starting at head.
func parseSliderPath(head Vec, s string) SliderPath {
	kind, rest, _ := strings.Cut(strings.TrimSpace(s), "|")
	points := []Vec{head}
	for _, tok := range strings.Split(rest, "|") {
		xs, ys, ok := strings.Cut(tok, ":")
		if !ok {
			continue
		}
		points = append(points, Vec{
			X: boundedOr(strings.TrimSpace(xs), head.X),
			Y: boundedOr(strings.TrimSpace(ys), head.Y),
		})
	}

	single := func(t SliderPathType) SliderPath {
		return SliderPath{Type: t, Segments: []SliderSegment{{Points: points}}}
	}
	switch strings.ToUpper(strings.TrimSpace(kind)) {
	case "L":
		return single(PathLinear)
	case "C":
		return single(PathCatmull)
	case "P":
		if len(points) == 3 {
			return single(PathPerfect)
		}
	}
	return bezierPath(points)
}

// bezierPath starts a new segment at every repeated point.
func bezierPath(points []Vec) SliderPath {
	var segs []SliderSegment
	start := 0
	for i := 1; i <= len(points); i++ {
		if i < len(points) && !points[i].Equal(points[i-1]) {
			continue
		}
		if i-start > 1 {
			segs = append(segs, SliderSegment{Points: points[start:i:i]})
		}
		start = i
	}
	if len(segs) == 0 {
		segs = []SliderSegment{{Points: []Vec{points[0], points[0]}}}
	}
	return SliderPath{Type: PathBezier, Segments: segs}
}

// record is a comma separated line with trimmed fields.
type record []string

func splitRecord(line string) record {
	r := record(strings.Split(line, ","))
	for i := range r {
		r[i] = strings.TrimSpace(r[i])
	}
	return r
}

func (r record) has(i int) bool { return i < len(r) && r[i] != "" }

func (r record) floatAt(i int, def float64) float64 {
	if i >= len(r) {
		return def
	}
	return floatOr(r[i], def)
}

func (r record) intAt(i, def int) int {
	if i >= len(r) {
		return def
	}
	return intOr(r[i], def)
}

// bounded parses a float that must be a number within [-limit, limit].
func bounded(s string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.Abs(v) > limit {
		return 0, fmt.Errorf("%q: %w", s, ErrOutOfRange)
	}
	return v, nil
}

func boundedOr(s string, def float64) float64 {
	v, err := bounded(s, MaxCoordinate)
	if err != nil {
		return def
	}
	return v
}

func floatOr(s string, def float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

func intOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
