package main

import (
	"math"

	"osuparse/dotosu"
)

// Flattening tolerances of the game client's path approximator.
const (
	bezierTolSq    = 0.25 * 0.25
	arcTolerance   = 0.10
	catmullSamples = 50
)

type Vec struct {
	X, Y float64
}

func (a Vec) sub(b Vec) Vec       { return Vec{a.X - b.X, a.Y - b.Y} }
func (a Vec) dot(b Vec) float64   { return a.X*b.X + a.Y*b.Y }
func (a Vec) cross(b Vec) float64 { return a.X*b.Y - a.Y*b.X }
func (a Vec) len() float64        { return math.Hypot(a.X, a.Y) }
func (a Vec) eq(b Vec) bool       { return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9 }

func (a Vec) unit() Vec {
	l := a.len()
	if l == 0 {
		return Vec{}
	}
	return Vec{a.X / l, a.Y / l}
}

// controlPoints returns the slider head followed by its curve points.
func controlPoints(s dotosu.Slider) []Vec {
	pts := make([]Vec, 0, len(s.CurvePoints)+1)
	pts = append(pts, Vec{float64(s.PosXY.X), float64(s.PosXY.Y)})
	for _, p := range s.CurvePoints {
		pts = append(pts, Vec{float64(p.X), float64(p.Y)})
	}
	return pts
}

// SliderPath flattens a slider curve into a polyline in playfield
// coordinates. The first point is the slider head.
func SliderPath(s dotosu.Slider) []Vec {
	cp := controlPoints(s)
	var poly []Vec
	add := func(pts ...Vec) {
		for _, v := range pts {
			if n := len(poly); n == 0 || !poly[n-1].eq(v) {
				poly = append(poly, v)
			}
		}
	}

	switch s.CurveType {
	case dotosu.CurveLinear:
		add(cp...)
	case dotosu.CurveCatmull:
		add(catmull(cp)...)
	case dotosu.CurvePerfect:
		if len(cp) == 3 {
			add(circularArc(cp[0], cp[1], cp[2])...)
		} else {
			add(bezier(cp)...)
		}
	default:
		// a repeated point is a red anchor and starts a new segment
		start := 0
		for i := 1; i <= len(cp); i++ {
			if i < len(cp) && !cp[i].eq(cp[i-1]) {
				continue
			}
			if i-start >= 2 {
				add(bezier(cp[start:i])...)
			}
			start = i
		}
	}
	return dropCollinear(poly)
}

// PathLength is the arc length of a polyline.
func PathLength(poly []Vec) float64 {
	total := 0.0
	for i := 1; i < len(poly); i++ {
		total += poly[i].sub(poly[i-1]).len()
	}
	return total
}

// PointAt walks distance along poly, extending the last segment when the
// polyline is shorter than distance.
func PointAt(poly []Vec, distance float64) Vec {
	switch len(poly) {
	case 0:
		return Vec{}
	case 1:
		return poly[0]
	}
	for i := 1; i < len(poly); i++ {
		dir := poly[i].sub(poly[i-1])
		l := dir.len()
		if distance <= l {
			return Vec{poly[i-1].X + dir.X*distance/l, poly[i-1].Y + dir.Y*distance/l}
		}
		distance -= l
	}
	last, prev := poly[len(poly)-1], poly[len(poly)-2]
	dir := last.sub(prev).unit()
	return Vec{last.X + dir.X*distance, last.Y + dir.Y*distance}
}

// SliderEnd is where the ball finishes: the tail for an odd number of
// slides, the head otherwise.
func SliderEnd(s dotosu.Slider) Vec {
	poly := SliderPath(s)
	if s.Slides%2 == 0 && len(poly) > 0 {
		return poly[0]
	}
	return PointAt(poly, s.Length)
}

func bezier(cp []Vec) []Vec {
	if len(cp) == 0 {
		return nil
	}
	var out []Vec
	stack := [][]Vec{cp}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if flatEnough(cur) {
			out = append(out, cur[0])
			continue
		}
		l, r := subdivide(cur)
		stack = append(stack, r, l)
	}
	return append(out, cp[len(cp)-1])
}

func flatEnough(cp []Vec) bool {
	for i := 1; i < len(cp)-1; i++ {
		dx := cp[i-1].X - 2*cp[i].X + cp[i+1].X
		dy := cp[i-1].Y - 2*cp[i].Y + cp[i+1].Y
		if dx*dx+dy*dy > bezierTolSq {
			return false
		}
	}
	return true
}

// subdivide splits a Bezier curve at t=0.5 (de Casteljau).
func subdivide(cp []Vec) (left, right []Vec) {
	n := len(cp)
	left = make([]Vec, n)
	right = make([]Vec, n)
	row := append([]Vec(nil), cp...)
	for r := 0; r < n; r++ {
		left[r] = row[0]
		right[n-1-r] = row[len(row)-1]
		for i := 0; i < len(row)-1; i++ {
			row[i] = Vec{(row[i].X + row[i+1].X) / 2, (row[i].Y + row[i+1].Y) / 2}
		}
		row = row[:len(row)-1]
	}
	return left, right
}

func catmull(pts []Vec) []Vec {
	n := len(pts)
	if n < 2 {
		return pts
	}
	out := make([]Vec, 0, (n-1)*catmullSamples+1)
	out = append(out, pts[0])
	for i := 0; i < n-1; i++ {
		p0, p1, p2, p3 := pts[max(i-1, 0)], pts[i], pts[i+1], pts[min(i+2, n-1)]
		for s := 1; s <= catmullSamples; s++ {
			out = append(out, catmullPoint(p0, p1, p2, p3, float64(s)/catmullSamples))
		}
	}
	return out
}

func catmullPoint(p0, p1, p2, p3 Vec, t float64) Vec {
	t2 := t * t
	t3 := t2 * t
	f := func(a, b, c, d float64) float64 {
		return 0.5 * (2*b + (-a+c)*t + (2*a-5*b+4*c-d)*t2 + (-a+3*b-3*c+d)*t3)
	}
	return Vec{f(p0.X, p1.X, p2.X, p3.X), f(p0.Y, p1.Y, p2.Y, p3.Y)}
}

func circularArc(p1, p2, p3 Vec) []Vec {
	c, ok := circumcenter(p1, p2, p3)
	if !ok {
		return []Vec{p1, p3}
	}
	r := p1.sub(c).len()
	a1 := math.Atan2(p1.Y-c.Y, p1.X-c.X)
	a3 := math.Atan2(p3.Y-c.Y, p3.X-c.X)

	dir := 1.0
	if p2.sub(p1).cross(p3.sub(p2)) < 0 {
		dir = -1
	}
	sweep := a3 - a1
	for sweep <= -math.Pi {
		sweep += 2 * math.Pi
	}
	for sweep > math.Pi {
		sweep -= 2 * math.Pi
	}
	if dir < 0 && sweep > 0 {
		sweep -= 2 * math.Pi
	} else if dir > 0 && sweep < 0 {
		sweep += 2 * math.Pi
	}

	step := 2 * math.Acos(max(-1, min(1, 1-arcTolerance/r)))
	if step <= 0 || math.IsNaN(step) || step > math.Pi {
		step = math.Pi
	}
	steps := max(2, int(math.Ceil(math.Abs(sweep)/step)))
	step = sweep / float64(steps)

	out := make([]Vec, 0, steps+1)
	out = append(out, p1)
	for i := 1; i < steps; i++ {
		a := a1 + float64(i)*step
		out = append(out, Vec{c.X + math.Cos(a)*r, c.Y + math.Sin(a)*r})
	}
	return append(out, p3)
}

// circumcenter fails for collinear points.
func circumcenter(a, b, c Vec) (Vec, bool) {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < 1e-6 {
		return Vec{}, false
	}
	a2 := a.dot(a)
	b2 := b.dot(b)
	c2 := c.dot(c)
	return Vec{
		(a2*(b.Y-c.Y) + b2*(c.Y-a.Y) + c2*(a.Y-b.Y)) / d,
		(a2*(c.X-b.X) + b2*(a.X-c.X) + c2*(b.X-a.X)) / d,
	}, true
}

func dropCollinear(pts []Vec) []Vec {
	if len(pts) <= 2 {
		return pts
	}
	out := []Vec{pts[0]}
	for i := 1; i < len(pts)-1; i++ {
		a, b, c := out[len(out)-1], pts[i], pts[i+1]
		if a.eq(b) {
			continue
		}
		ab, bc := b.sub(a), c.sub(b)
		if math.Abs(ab.cross(bc)) < 1e-7 && ab.unit().dot(bc.unit()) > 0.999999 {
			continue
		}
		out = append(out, b)
	}
	if last := pts[len(pts)-1]; !out[len(out)-1].eq(last) {
		out = append(out, last)
	}
	return out
}

type sliderSummary struct {
	Time       int     `json:"time"`
	Curve      string  `json:"curve"`
	Slides     int     `json:"slides"`
	Length     float64 `json:"length"`
	PathLength float64 `json:"path_length"`
	PathPoints int     `json:"path_points"`
	EndX       float64 `json:"end_x"`
	EndY       float64 `json:"end_y"`
}

// sliderSummaries describes the flattened path of every slider in b.
func sliderSummaries(b *dotosu.Beatmap) []sliderSummary {
	var out []sliderSummary
	for _, ho := range b.HitObjects {
		s, ok := ho.(dotosu.Slider)
		if !ok {
			continue
		}
		poly := SliderPath(s)
		end := SliderEnd(s)
		out = append(out, sliderSummary{
			Time:       s.Time,
			Curve:      s.CurveType.String(),
			Slides:     s.Slides,
			Length:     s.Length,
			PathLength: PathLength(poly),
			PathPoints: len(poly),
			EndX:       end.X,
			EndY:       end.Y,
		})
	}
	return out
}
