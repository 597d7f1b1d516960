package navmesh

import (
	"fmt"

	poly2tri "github.com/netgusto/poly2tri-go"

	"github.com/bytearena/botnav/internal/vector"
)

// Triangle is a triple of indices into the vertex array returned by
// TriangulateWithHoles.
type Triangle [3]int

// TriangulateWithHoles runs a constrained triangulation of outer (the
// navmesh world-bounds rectangle) with holePolygons (the barrier buffer
// union contours) cut out as forbidden interiors: one SweepContext per
// outer contour, one AddHole per hole polygon.
func TriangulateWithHoles(outer []Point, holePolygons [][]Point) ([]Point, []Triangle, error) {
	if len(outer) < 3 {
		return nil, nil, fmt.Errorf("navmesh: outer contour needs at least 3 points")
	}

	contour := pointsToPoly2tri(outer)
	swctx := poly2tri.NewSweepContext(contour, false)

	for _, hole := range holePolygons {
		if len(hole) < 3 {
			continue
		}
		swctx.AddHole(pointsToPoly2tri(hole))
	}

	swctx.Triangulate()
	rawTriangles := swctx.GetTriangles()

	if len(rawTriangles) == 0 {
		return nil, nil, nil
	}

	vertexIndex := make(map[[2]int64]int)
	var vertices []Point
	quantize := func(p Point) [2]int64 {
		const scale = 1e6
		return [2]int64{int64(p.GetX() * scale), int64(p.GetY() * scale)}
	}

	indexOf := func(p Point) int {
		key := quantize(p)
		if idx, ok := vertexIndex[key]; ok {
			return idx
		}
		idx := len(vertices)
		vertexIndex[key] = idx
		vertices = append(vertices, p)
		return idx
	}

	triangles := make([]Triangle, 0, len(rawTriangles))
	for _, tri := range rawTriangles {
		p0 := vector.MakeVector2(tri.Points[0].GetX(), tri.Points[0].GetY())
		p1 := vector.MakeVector2(tri.Points[1].GetX(), tri.Points[1].GetY())
		p2 := vector.MakeVector2(tri.Points[2].GetX(), tri.Points[2].GetY())

		triangles = append(triangles, Triangle{indexOf(p0), indexOf(p1), indexOf(p2)})
	}

	return vertices, triangles, nil
}

func pointsToPoly2tri(points []Point) []*poly2tri.Point {
	out := make([]*poly2tri.Point, 0, len(points))
	n := len(points)

	// Drop a trailing repetition of the first point; closed-ring polygon
	// data commonly repeats it and poly2tri expects an open contour.
	if n >= 2 && points[n-1].Equals(points[0]) {
		n--
	}

	for _, p := range points[:n] {
		out = append(out, poly2tri.NewPoint(p.GetX(), p.GetY()))
	}
	return out
}
