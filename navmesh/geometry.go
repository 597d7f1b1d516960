package navmesh

import (
	"math"

	polyclip "github.com/akavel/polyclip-go"

	"github.com/bytearena/botnav/internal/trigo"
	"github.com/bytearena/botnav/internal/vector"
)

// IsConvex reports whether polygon (in either winding order) is convex.
func IsConvex(polygon []Point) bool {
	n := len(polygon)
	if n < 3 {
		return false
	}

	gotPositive := false
	gotNegative := false

	for i := 0; i < n; i++ {
		a := polygon[i]
		b := polygon[(i+1)%n]
		c := polygon[(i+2)%n]

		cross := b.Sub(a).Cross(c.Sub(b))
		if cross > 1e-9 {
			gotPositive = true
		} else if cross < -1e-9 {
			gotNegative = true
		}

		if gotPositive && gotNegative {
			return false
		}
	}

	return true
}

// PolygonContainsPoint uses ray casting, counting crossings of a horizontal
// ray cast from p to +X infinity against each polygon edge.
func PolygonContainsPoint(polygon []Point, p Point) bool {
	n := len(polygon)
	if n < 3 {
		return false
	}

	inside := false
	px, py := p.GetX(), p.GetY()

	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := polygon[i].GetX(), polygon[i].GetY()
		xj, yj := polygon[j].GetX(), polygon[j].GetY()

		intersects := ((yi > py) != (yj > py)) &&
			(px < (xj-xi)*(py-yi)/(yj-yi)+xi)

		if intersects {
			inside = !inside
		}
	}

	return inside
}

// PolygonsIntersect reports whether the interiors or boundaries of a and b
// overlap, via separating-axis-free edge/containment testing.
func PolygonsIntersect(a, b []Point) bool {
	na, nb := len(a), len(b)
	if na < 3 || nb < 3 {
		return false
	}

	for i := 0; i < na; i++ {
		a1, a2 := a[i], a[(i+1)%na]
		for j := 0; j < nb; j++ {
			b1, b2 := b[j], b[(j+1)%nb]
			if _, intersects, _, _ := trigo.IntersectionWithLineSegment(a1, a2, b1, b2); intersects {
				return true
			}
		}
	}

	// No edges cross: either disjoint or one fully contains the other.
	return PolygonContainsPoint(a, b[0]) || PolygonContainsPoint(b, a[0])
}

// PolygonCircleIntersect returns the first point on the polygon boundary
// found within radius of center, if any.
func PolygonCircleIntersect(poly []Point, center Point, radiusSq float64) (Point, bool) {
	n := len(poly)
	radius := math.Sqrt(radiusSq)

	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]

		for _, hit := range trigo.LineCircleIntersectionPoints(a, b, center, radius) {
			if trigo.PointOnLineSegment(hit, a, b) {
				return hit, true
			}
		}
	}

	return Point{}, false
}

// PolygonLineIntersect returns the nearest crossing of segment (start,end)
// against the polygon boundary, expressed as the parameter t in [0,1] and
// the outward normal of the crossed edge.
func PolygonLineIntersect(poly []Point, start, end Point) (t float64, normal Point, ok bool) {
	n := len(poly)
	best := math.Inf(1)
	found := false
	var bestNormal Point

	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]

		tt, nrm, hit := trigo.SegmentParamIntersection(start, end, a, b)
		if hit && tt < best {
			best = tt
			bestNormal = nrm
			found = true
		}
	}

	if !found {
		return 0, Point{}, false
	}
	return best, bestNormal, true
}

// ZonesTouch reports whether a and b share a boundary segment of length at
// least epsilon, writing its endpoints to start/end.
func ZonesTouch(a, b []Point, epsilon float64, start, end *Point) bool {
	na, nb := len(a), len(b)

	for i := 0; i < na; i++ {
		a1, a2 := a[i], a[(i+1)%na]
		for j := 0; j < nb; j++ {
			b1, b2 := b[j], b[(j+1)%nb]

			s, e, ok := overlappingColinearSegment(a1, a2, b1, b2)
			if ok && s.Distance(e) >= epsilon {
				*start = s
				*end = e
				return true
			}
		}
	}

	return false
}

// overlappingColinearSegment returns the overlap of two colinear segments,
// if the four points are colinear and the segments overlap.
func overlappingColinearSegment(a1, a2, b1, b2 Point) (Point, Point, bool) {
	dir := a2.Sub(a1)
	if dir.MagSq() < 1e-12 {
		return Point{}, Point{}, false
	}

	// Colinearity check: b1 and b2 must lie on the line through a1,a2.
	if math.Abs(dir.Cross(b1.Sub(a1))) > 1e-6 || math.Abs(dir.Cross(b2.Sub(a1))) > 1e-6 {
		return Point{}, Point{}, false
	}

	proj := func(p Point) float64 { return p.Sub(a1).Dot(dir) / dir.MagSq() }

	ta1, ta2 := 0.0, 1.0
	tb1, tb2 := proj(b1), proj(b2)
	if tb1 > tb2 {
		tb1, tb2 = tb2, tb1
	}

	lo := math.Max(ta1, tb1)
	hi := math.Min(ta2, tb2)
	if lo >= hi {
		return Point{}, Point{}, false
	}

	return a1.Add(dir.MultScalar(lo)), a1.Add(dir.MultScalar(hi)), true
}

// UnionPolygons computes the boolean union of a set of (possibly
// overlapping) simple polygons using non-zero fill, via polyclip-go. The
// result may contain multiple disjoint contours; holes are flattened into
// separate rings, which is the shape TriangulateWithHoles expects for its
// forbidden-interior hole polygons.
func UnionPolygons(polygons [][]Point) [][]Point {
	if len(polygons) == 0 {
		return nil
	}

	result := toPolyclipPolygon(polygons[0])
	for _, poly := range polygons[1:] {
		clip := toPolyclipPolygon(poly)
		result = result.Construct(polyclip.UNION, clip)
	}

	out := make([][]Point, 0, len(result))
	for _, contour := range result {
		out = append(out, contourToPoints(contour))
	}
	return out
}

func toPolyclipPolygon(poly []Point) polyclip.Polygon {
	if len(poly) == 0 {
		return polyclip.Polygon{}
	}
	return polyclip.Polygon{pointsToContour(poly)}
}

func pointsToContour(poly []Point) polyclip.Contour {
	contour := make(polyclip.Contour, len(poly))
	for i, p := range poly {
		contour[i] = polyclip.Point{X: p.GetX(), Y: p.GetY()}
	}
	return contour
}

func contourToPoints(c polyclip.Contour) []Point {
	pts := make([]Point, len(c))
	for i, p := range c {
		pts[i] = vector.MakeVector2(p.X, p.Y)
	}
	return pts
}
