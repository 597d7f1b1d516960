// Package navmesh implements the geometry kernel, spatial index, navmesh
// builder, adjacency builder and zone store for the bot navigation system.
package navmesh

import (
	"math"

	"github.com/bytearena/botnav/internal/vector"
)

// Point is a 2D floating point coordinate pair.
type Point = vector.Vector2

// Rect is an axis-aligned extent.
type Rect struct {
	Min Point
	Max Point
}

func MakeRect(min, max Point) Rect {
	return Rect{Min: min, Max: max}
}

// Contains reports whether p lies within the rectangle, inclusive of the
// border.
func (r Rect) Contains(p Point) bool {
	return p.GetX() >= r.Min.GetX() && p.GetX() <= r.Max.GetX() &&
		p.GetY() >= r.Min.GetY() && p.GetY() <= r.Max.GetY()
}

// IntersectsOrBorders reports whether r and other overlap or share a border.
func (r Rect) IntersectsOrBorders(other Rect) bool {
	return r.Min.GetX() <= other.Max.GetX() && r.Max.GetX() >= other.Min.GetX() &&
		r.Min.GetY() <= other.Max.GetY() && r.Max.GetY() >= other.Min.GetY()
}

func (r Rect) Center() Point {
	return vector.MakeVector2(
		(r.Min.GetX()+r.Max.GetX())/2,
		(r.Min.GetY()+r.Max.GetY())/2,
	)
}

// Expand returns r padded outward by amount on every side.
func (r Rect) Expand(amount float64) Rect {
	return Rect{
		Min: vector.MakeVector2(r.Min.GetX()-amount, r.Min.GetY()-amount),
		Max: vector.MakeVector2(r.Max.GetX()+amount, r.Max.GetY()+amount),
	}
}

func (r Rect) Width() float64  { return r.Max.GetX() - r.Min.GetX() }
func (r Rect) Height() float64 { return r.Max.GetY() - r.Min.GetY() }
func (r Rect) Diagonal() float64 {
	return math.Hypot(r.Width(), r.Height())
}

// RectFromPolygon returns the AABB of a polygon.
func RectFromPolygon(poly []Point) Rect {
	if len(poly) == 0 {
		return Rect{}
	}
	minX, minY := poly[0].GetX(), poly[0].GetY()
	maxX, maxY := minX, minY
	for _, p := range poly[1:] {
		x, y := p.GetX(), p.GetY()
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	return Rect{Min: vector.MakeVector2(minX, minY), Max: vector.MakeVector2(maxX, maxY)}
}

// Edge is a directed neighbor link from one zone to another.
type Edge struct {
	TargetZoneID uint16
	BorderStart  Point
	BorderEnd    Point
	BorderCenter Point
	TargetCenter Point
	Cost         float32
	Teleporter   bool
}

// Zone is a convex polygon cell of the navmesh.
type Zone struct {
	ID        uint16
	Bounds    []Point
	Centroid  Point
	Extent    Rect
	Neighbors []Edge
}

// FindCentroid computes the centroid (area-weighted) of a simple polygon.
func FindCentroid(poly []Point) Point {
	if len(poly) == 0 {
		return Point{}
	}
	if len(poly) == 1 {
		return poly[0]
	}

	var areaSum, cx, cy float64
	n := len(poly)
	for i := 0; i < n; i++ {
		p0 := poly[i]
		p1 := poly[(i+1)%n]
		cross := p0.GetX()*p1.GetY() - p1.GetX()*p0.GetY()
		areaSum += cross
		cx += (p0.GetX() + p1.GetX()) * cross
		cy += (p0.GetY() + p1.GetY()) * cross
	}

	if math.Abs(areaSum) < 1e-9 {
		// Degenerate polygon (collinear points): fall back to the vertex average.
		var sx, sy float64
		for _, p := range poly {
			sx += p.GetX()
			sy += p.GetY()
		}
		return vector.MakeVector2(sx/float64(n), sy/float64(n))
	}

	area := areaSum / 2
	cx /= 6 * area
	cy /= 6 * area
	return vector.MakeVector2(cx, cy)
}
