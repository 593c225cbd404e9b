package dotosu

import (
	"math"

	"ppcalc/mutils"
)

const (
	bezierTolerance = 0.25
	// max gap between an arc and the chords replacing it
	arcTolerance = 0.1
	catmullSteps = 50
	bezierDepth  = 16

	pointEpsilon = 1e-9
)

// polyline collects points and drops exact repeats.
type polyline []Vec

func (p *polyline) push(pts ...Vec) {
	for _, v := range pts {
		if n := len(*p); n > 0 && (*p)[n-1].Equal(v) {
			continue
		}
		*p = append(*p, v)
	}
}

// ApproximateSliderPath flattens a slider path into a polyline in playfield
// coordinates, starting at the slider head.
func ApproximateSliderPath(path SliderPath) []Vec {
	if len(path.Segments) == 0 {
		return nil
	}

	var out polyline
	first := path.Segments[0].Points
	switch path.Type {
	case PathLinear:
		out.push(first...)
	case PathCatmull:
		out.push(catmull(first)...)
	case PathPerfect:
		if arc, ok := circularArc(first); ok {
			out.push(arc...)
		} else {
			out.push(bezier(first)...)
		}
	default:
		for _, seg := range path.Segments {
			if len(seg.Points) > 1 {
				out.push(bezier(seg.Points)...)
			}
		}
	}
	return simplify(out)
}

func PathLength(poly []Vec) float64 {
	total := 0.0
	for i := 1; i < len(poly); i++ {
		total += poly[i-1].Dst(poly[i])
	}
	return total
}

// PositionAt walks progress pixels along poly. Progress past the end keeps
// extending the last segment.
func PositionAt(poly []Vec, progress float64) Vec {
	switch len(poly) {
	case 0:
		return Vec{}
	case 1:
		return poly[0]
	}

	last := len(poly) - 1
	for i := 0; i < last; i++ {
		a, b := poly[i], poly[i+1]
		seg := a.Dst(b)
		if seg == 0 {
			continue
		}
		if progress <= seg || i == last-1 {
			return a.Add(b.Sub(a).Scl(progress / seg))
		}
		progress -= seg
	}
	return poly[last]
}

func bezier(cp []Vec) []Vec {
	if len(cp) == 0 {
		return nil
	}
	out := make([]Vec, 0, 4*len(cp))

	var walk func(ctrl []Vec, depth int)
	walk = func(ctrl []Vec, depth int) {
		if depth == bezierDepth || bezierFlat(ctrl) {
			out = append(out, ctrl[0])
			return
		}
		left, right := splitBezier(ctrl)
		walk(left, depth+1)
		walk(right, depth+1)
	}
	walk(cp, 0)

	return append(out, cp[len(cp)-1])
}

// bezierFlat reports whether no control point bends the curve by more than
// the tolerance.
func bezierFlat(cp []Vec) bool {
	limit := bezierTolerance * bezierTolerance * 4
	for i := 1; i+1 < len(cp); i++ {
		bend := cp[i-1].Sub(cp[i].Scl(2)).Add(cp[i+1])
		if bend.Dot(bend) > limit {
			return false
		}
	}
	return true
}

// splitBezier cuts the curve at t=0.5 (de Casteljau).
func splitBezier(cp []Vec) (left, right []Vec) {
	n := len(cp)
	left = make([]Vec, n)
	right = make([]Vec, n)
	work := append([]Vec(nil), cp...)
	for i := 0; i < n; i++ {
		left[i] = work[0]
		right[n-1-i] = work[n-1-i]
		for j := 0; j < n-1-i; j++ {
			work[j] = work[j].Add(work[j+1]).Scl(0.5)
		}
	}
	return left, right
}

func catmull(pts []Vec) []Vec {
	n := len(pts)
	if n < 2 {
		return append([]Vec(nil), pts...)
	}

	out := make([]Vec, 0, (n-1)*(catmullSteps+1))
	for i := 0; i+1 < n; i++ {
		p1, p2 := pts[i], pts[i+1]
		p0 := p1
		if i > 0 {
			p0 = pts[i-1]
		}
		p3 := p2.Scl(2).Sub(p1)
		if i+2 < n {
			p3 = pts[i+2]
		}
		for s := 0; s <= catmullSteps; s++ {
			out = append(out, catmullAt(p0, p1, p2, p3, float64(s)/catmullSteps))
		}
	}
	return out
}

func catmullAt(p0, p1, p2, p3 Vec, t float64) Vec {
	t2 := t * t
	t3 := t2 * t
	quad := p0.Scl(2).Sub(p1.Scl(5)).Add(p2.Scl(4)).Sub(p3)
	cubic := p1.Sub(p2).Scl(3).Add(p3).Sub(p0)
	return p1.Scl(2).
		Add(p2.Sub(p0).Scl(t)).
		Add(quad.Scl(t2)).
		Add(cubic.Scl(t3)).
		Scl(0.5)
}

// circularArc samples the circle through three points. It fails for
// anything but three non-collinear points.
func circularArc(pts []Vec) ([]Vec, bool) {
	if len(pts) != 3 {
		return nil, false
	}
	a, b, c := pts[0], pts[1], pts[2]

	ab, ac := b.Sub(a), c.Sub(a)
	d := 2 * ab.Cross(ac)
	if math.Abs(d) < 1e-6 {
		return nil, false
	}
	abSq, acSq := ab.Dot(ab), ac.Dot(ac)
	center := a.Add(Vec{
		X: (ac.Y*abSq - ab.Y*acSq) / d,
		Y: (ab.X*acSq - ac.X*abSq) / d,
	})
	r := center.Dst(a)

	start := math.Atan2(a.Y-center.Y, a.X-center.X)
	end := math.Atan2(c.Y-center.Y, c.X-center.X)
	for end < start {
		end += 2 * math.Pi
	}
	sweep := end - start
	dir := 1.0
	// b on the other side of a->c means the arc runs the long way round
	if (Vec{ac.Y, -ac.X}).Dot(ab) < 0 {
		dir = -1
		sweep = 2*math.Pi - sweep
	}

	points := 2
	if 2*r > arcTolerance {
		step := 2 * math.Acos(mutils.Clamp(1-arcTolerance/r, -1, 1))
		if step > 0 {
			points = max(2, int(math.Ceil(sweep/step)))
		}
	}

	out := make([]Vec, points)
	for i := range out {
		theta := start + dir*sweep*float64(i)/float64(points-1)
		out[i] = center.Add(Vec{math.Cos(theta), math.Sin(theta)}.Scl(r))
	}
	out[0], out[points-1] = a, c
	return out, true
}

// simplify drops near-duplicate points and points lying straight between
// their neighbours.
func simplify(pts []Vec) []Vec {
	if len(pts) < 3 {
		return pts
	}

	out := make([]Vec, 1, len(pts))
	out[0] = pts[0]
	for i := 1; i+1 < len(pts); i++ {
		prev, cur, next := out[len(out)-1], pts[i], pts[i+1]
		in, away := cur.Sub(prev), next.Sub(cur)
		if in.Len() < pointEpsilon {
			continue
		}
		sin := in.Cross(away) / (in.Len() * away.Len())
		if math.Abs(sin) < 1e-6 && in.Dot(away) > 0 {
			continue
		}
		out = append(out, cur)
	}

	last := pts[len(pts)-1]
	if len(out) > 1 && out[len(out)-1].Dst(last) < pointEpsilon {
		out[len(out)-1] = last
	} else {
		out = append(out, last)
	}
	return out
}
