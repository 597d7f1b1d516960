// Package trigo collects segment/line/circle intersection helpers used by
// the geometry kernel (navmesh package) and the ship simulation.
package trigo

import (
	"math"

	"github.com/bytearena/botnav/internal/number"
	"github.com/bytearena/botnav/internal/vector"
)

// IntersectionWithLineSegment returns the intersection point of segments
// (p,p2) and (q,q2), if any, along with whether the segments are colinear
// or parallel.
func IntersectionWithLineSegment(p, p2, q, q2 vector.Vector2) (intersection vector.Vector2, intersects bool, colinear bool, parallel bool) {
	r := p2.Sub(p)
	s := q2.Sub(q)
	rxs := r.Cross(s)
	qpxr := q.Sub(p).Cross(r)

	if number.IsZero(rxs) && number.IsZero(qpxr) {
		qSubPTimesR := q.Sub(p).Dot(r)
		pSubQTimesS := p.Sub(q).Dot(s)
		rSquared := r.Dot(r)
		sSquared := s.Dot(s)

		if (qSubPTimesR >= 0 && qSubPTimesR <= rSquared) || (pSubQTimesS >= 0 && pSubQTimesS <= sSquared) {
			return vector.MakeNullVector2(), true, true, true
		}
		return vector.MakeNullVector2(), false, true, true
	}

	if number.IsZero(rxs) && !number.IsZero(qpxr) {
		return vector.MakeNullVector2(), false, false, true
	}

	t := q.Sub(p).Cross(s) / rxs
	u := q.Sub(p).Cross(r) / rxs

	if !number.IsZero(rxs) && (0 <= t && t <= 1) && (0 <= u && u <= 1) {
		return p.Add(r.MultScalar(t)), true, false, false
	}

	return vector.MakeNullVector2(), false, false, false
}

// SegmentParamIntersection is like IntersectionWithLineSegment but also
// returns the parameter t along (p,p2) and the segment (q,q2)'s normal,
// used by the geometry kernel's polygon_line_intersect.
func SegmentParamIntersection(p, p2, q, q2 vector.Vector2) (t float64, normal vector.Vector2, ok bool) {
	r := p2.Sub(p)
	s := q2.Sub(q)
	rxs := r.Cross(s)

	if number.IsZero(rxs) {
		return 0, vector.Vector2{}, false
	}

	tt := q.Sub(p).Cross(s) / rxs
	u := q.Sub(p).Cross(r) / rxs

	if tt < 0 || tt > 1 || u < 0 || u > 1 {
		return 0, vector.Vector2{}, false
	}

	n := s.OrthogonalClockwise().Normalize()
	return tt, n, true
}

// LineCircleIntersectionPoints returns the points where the infinite line
// through (lineP1,lineP2) crosses the circle (center, radius).
func LineCircleIntersectionPoints(lineP1, lineP2, center vector.Vector2, radius float64) []vector.Vector2 {
	localP1 := lineP1.Sub(center)
	localP2 := lineP2.Sub(center)
	p2MinusP1 := localP2.Sub(localP1)

	p2x, p2y := p2MinusP1.Get()
	l1x, l1y := localP1.Get()

	a := p2MinusP1.MagSq()
	b := 2 * ((p2x * l1x) + (p2y * l1y))
	c := localP1.MagSq() - radius*radius

	delta := b*b - 4*a*c
	if delta < 0 {
		return nil
	}
	if number.IsZero(delta) {
		u := -b / (2 * a)
		return []vector.Vector2{lineP1.Add(p2MinusP1.MultScalar(u))}
	}

	sq := math.Sqrt(delta)
	u1 := (-b + sq) / (2 * a)
	u2 := (-b - sq) / (2 * a)

	return []vector.Vector2{
		lineP1.Add(p2MinusP1.MultScalar(u1)),
		lineP1.Add(p2MinusP1.MultScalar(u2)),
	}
}

// PointOnLineSegment reports whether p lies on the segment (a,b), within a
// small tolerance.
func PointOnLineSegment(p, a, b vector.Vector2) bool {
	const t = 0.0001

	px, py := p.Get()
	ax, ay := a.Get()
	bx, by := b.Get()

	zero := (bx-ax)*(py-ay) - (px-ax)*(by-ay)
	if zero > t || zero < -t {
		return false
	}

	if ax-bx > t || bx-ax > t {
		if ax > bx {
			return px+t > bx && px-t < ax
		}
		return px+t > ax && px-t < bx
	}

	if ay > by {
		return py+t > by && py-t < ay
	}
	return py+t > ay && py-t < by
}

// FullCircleAngleToSignedHalfCircleAngle folds rad into (-pi, pi].
func FullCircleAngleToSignedHalfCircleAngle(rad float64) float64 {
	if rad > math.Pi {
		rad -= math.Pi * 2
	} else if rad < -math.Pi {
		rad += math.Pi * 2
	}
	return rad
}

// PointIsInTriangle reports whether p lies inside (or on the boundary of)
// the triangle (a,b,c), using the sign-of-cross-product test.
func PointIsInTriangle(p, a, b, c vector.Vector2) bool {
	d1 := sign(p, a, b)
	d2 := sign(p, b, c)
	d3 := sign(p, c, a)

	hasNeg := (d1 < 0) || (d2 < 0) || (d3 < 0)
	hasPos := (d1 > 0) || (d2 > 0) || (d3 > 0)

	return !(hasNeg && hasPos)
}

func sign(p1, p2, p3 vector.Vector2) float64 {
	return (p1.GetX()-p3.GetX())*(p2.GetY()-p3.GetY()) - (p2.GetX()-p3.GetX())*(p1.GetY()-p3.GetY())
}
