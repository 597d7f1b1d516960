package navmesh

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bytearena/botnav/internal/vector"
)

func square(minX, minY, maxX, maxY float64) []Point {
	return []Point{
		vector.MakeVector2(minX, minY),
		vector.MakeVector2(maxX, minY),
		vector.MakeVector2(maxX, maxY),
		vector.MakeVector2(minX, maxY),
	}
}

func TestIsConvex(t *testing.T) {
	assert.True(t, IsConvex(square(0, 0, 4, 4)))

	// An L-shape is concave.
	lshape := []Point{
		vector.MakeVector2(0, 0),
		vector.MakeVector2(4, 0),
		vector.MakeVector2(4, 2),
		vector.MakeVector2(2, 2),
		vector.MakeVector2(2, 4),
		vector.MakeVector2(0, 4),
	}
	assert.False(t, IsConvex(lshape))

	assert.False(t, IsConvex([]Point{vector.MakeVector2(0, 0), vector.MakeVector2(1, 1)}))
}

func TestPolygonContainsPoint(t *testing.T) {
	poly := square(0, 0, 10, 10)

	assert.True(t, PolygonContainsPoint(poly, vector.MakeVector2(5, 5)))
	assert.False(t, PolygonContainsPoint(poly, vector.MakeVector2(15, 5)))
	assert.False(t, PolygonContainsPoint(poly, vector.MakeVector2(-1, 5)))
}

func TestUnionPolygonsMergesOverlapping(t *testing.T) {
	a := square(0, 0, 4, 4)
	b := square(2, 2, 6, 6)

	merged := UnionPolygons([][]Point{a, b})
	assert.Len(t, merged, 1, "two overlapping squares should merge into one contour")

	// Every corner of both source squares should now lie within the union.
	for _, p := range append(append([]Point{}, a...), b...) {
		assert.True(t, PolygonContainsPoint(merged[0], p) || onBoundary(merged[0], p))
	}
}

func TestUnionPolygonsKeepsDisjointSeparate(t *testing.T) {
	a := square(0, 0, 1, 1)
	b := square(10, 10, 11, 11)

	merged := UnionPolygons([][]Point{a, b})
	assert.Len(t, merged, 2)
}

// onBoundary loosely checks whether p sits on poly's boundary, since
// PolygonContainsPoint's ray cast is exact-interior only and corner cases
// landing exactly on an edge can go either way depending on winding.
func onBoundary(poly []Point, p Point) bool {
	n := len(poly)
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		cross := b.Sub(a).Cross(p.Sub(a))
		if cross > -1e-6 && cross < 1e-6 {
			return true
		}
	}
	return false
}
