package navmesh

import (
	"sort"
)

// Point16 is a vertex quantized to the 16-bit signed integer space the
// aggregator's output mesh is encoded in.
type Point16 struct {
	X, Y int32
}

// PolyMeshSentinel marks an unused polygon vertex slot.
const PolyMeshSentinel = 0xFFFF

// PolyMesh is the output of AggregateTrianglesIntoConvexPolys: a shared
// vertex array and a set of fixed-width (nvp) polygon index slots, each
// terminated by PolyMeshSentinel once its actual vertex count is reached.
type PolyMesh struct {
	Vertices []Point16
	Polys    [][]uint16
	Nvp      int
}

// AggregateTrianglesIntoConvexPolys greedily merges triangles sharing an
// edge into larger convex polygons bounded by maxVertsPerPoly vertices, a
// Recast-style polygon-mesh aggregation pass.
//
// Tie-break: among the candidate merges available for a polygon's edges in
// a round, the one maximizing the area-preserving convexity margin wins;
// ties go to the lowest originating triangle index.
func AggregateTrianglesIntoConvexPolys(vertices []Point, triangles []Triangle, maxVertsPerPoly int) PolyMesh {
	if maxVertsPerPoly < 3 {
		maxVertsPerPoly = 3
	}
	if maxVertsPerPoly > 8 {
		maxVertsPerPoly = 8
	}

	polys := make([][]int, len(triangles))
	active := make([]bool, len(triangles))
	for i, tri := range triangles {
		poly := []int{tri[0], tri[1], tri[2]}
		if signedArea(vertices, poly) < 0 {
			poly[1], poly[2] = poly[2], poly[1]
		}
		polys[i] = poly
		active[i] = true
	}

	for {
		merged := false

		for i := range polys {
			if !active[i] {
				continue
			}

			bestJ := -1
			var bestMargin float64
			var bestMerged []int

			n := len(polys[i])
			for e := 0; e < n; e++ {
				v0 := polys[i][e]
				v1 := polys[i][(e+1)%n]

				j := findSharedEdgeNeighbor(polys, active, i, v1, v0)
				if j < 0 {
					continue
				}

				candidate, ok := mergePolys(polys[i], polys[j], v0, v1, maxVertsPerPoly)
				if !ok {
					continue
				}
				if !isConvexIndexed(vertices, candidate) {
					continue
				}

				margin := convexityMargin(vertices, candidate)
				if bestJ < 0 || margin > bestMargin || (margin == bestMargin && j < bestJ) {
					bestJ = j
					bestMargin = margin
					bestMerged = candidate
				}
			}

			if bestJ >= 0 {
				polys[i] = bestMerged
				active[bestJ] = false
				merged = true
			}
		}

		if !merged {
			break
		}
	}

	mesh := PolyMesh{Nvp: maxVertsPerPoly}
	mesh.Vertices = make([]Point16, len(vertices))
	for i, v := range vertices {
		mesh.Vertices[i] = Point16{X: int32(v.GetX()), Y: int32(v.GetY())}
	}

	for i, poly := range polys {
		if !active[i] {
			continue
		}
		slot := make([]uint16, maxVertsPerPoly)
		for k := range slot {
			slot[k] = PolyMeshSentinel
		}
		for k, idx := range poly {
			slot[k] = uint16(idx)
		}
		mesh.Polys = append(mesh.Polys, slot)
	}

	return mesh
}

// findSharedEdgeNeighbor finds the active polygon (other than self) that has
// the directed edge (from,to) on its boundary — i.e. the reciprocal of
// self's (to,from) edge — and returns its index, or -1.
func findSharedEdgeNeighbor(polys [][]int, active []bool, self int, from, to int) int {
	for j, poly := range polys {
		if j == self || !active[j] {
			continue
		}
		n := len(poly)
		for e := 0; e < n; e++ {
			if poly[e] == from && poly[(e+1)%n] == to {
				return j
			}
		}
	}
	return -1
}

// mergePolys splices b into a across the shared edge (v0->v1 in a,
// v1->v0 in b), producing a single CCW polygon with the shared edge removed.
func mergePolys(a, b []int, v0, v1 int, maxVerts int) ([]int, bool) {
	ia := indexOf(a, v1)
	ib := indexOf(b, v0)
	if ia < 0 || ib < 0 {
		return nil, false
	}

	na, nb := len(a), len(b)
	merged := make([]int, 0, na+nb-2)

	// Walk a from v1 around to v0, both included.
	for k := 0; k < na; k++ {
		merged = append(merged, a[(ia+k)%na])
		if a[(ia+k)%na] == v0 {
			break
		}
	}
	// Walk b starting just after v0 up to (excluding) v1, skipping the
	// duplicate endpoints already present.
	for k := 1; k < nb; k++ {
		v := b[(ib+k)%nb]
		if v == v1 {
			break
		}
		merged = append(merged, v)
	}

	if len(merged) > maxVerts {
		return nil, false
	}
	return dedupConsecutive(merged), true
}

func dedupConsecutive(poly []int) []int {
	if len(poly) < 2 {
		return poly
	}
	out := poly[:1]
	for _, v := range poly[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

func indexOf(poly []int, v int) int {
	for i, x := range poly {
		if x == v {
			return i
		}
	}
	return -1
}

func signedArea(vertices []Point, poly []int) float64 {
	var sum float64
	n := len(poly)
	for i := 0; i < n; i++ {
		p0 := vertices[poly[i]]
		p1 := vertices[poly[(i+1)%n]]
		sum += p0.GetX()*p1.GetY() - p1.GetX()*p0.GetY()
	}
	return sum / 2
}

func isConvexIndexed(vertices []Point, poly []int) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	gotPos, gotNeg := false, false
	for i := 0; i < n; i++ {
		a := vertices[poly[i]]
		b := vertices[poly[(i+1)%n]]
		c := vertices[poly[(i+2)%n]]
		cross := b.Sub(a).Cross(c.Sub(b))
		if cross > 1e-9 {
			gotPos = true
		} else if cross < -1e-9 {
			gotNeg = true
		}
		if gotPos && gotNeg {
			return false
		}
	}
	return true
}

// convexityMargin scores how far from degenerate (collinear) the tightest
// vertex of poly is; the merge that keeps this largest is preferred.
func convexityMargin(vertices []Point, poly []int) float64 {
	n := len(poly)
	margins := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		a := vertices[poly[i]]
		b := vertices[poly[(i+1)%n]]
		c := vertices[poly[(i+2)%n]]
		cross := b.Sub(a).Cross(c.Sub(b))
		if cross < 0 {
			cross = -cross
		}
		margins = append(margins, cross)
	}
	sort.Float64s(margins)
	return margins[0]
}
