package navmesh

import (
	"math"

	"github.com/bytearena/botnav/internal/naverr"
	"github.com/bytearena/botnav/internal/vector"
)

const (
	worldBoundsPad  = 30
	maxCoord        = 32767
	maxPolygonCount = 0xFFE
	aggregatorNvp   = 6
)

// BuildResult is the output of Build: the provisional zone list (indexed
// by its position, which the adjacency builder consumes before pruning
// and renumbering) and the polygon-index -> zone-id map the adjacency
// builder needs to translate mesh edges into zone neighbor links.
type BuildResult struct {
	Zones         []*Zone
	PolygonToZone map[int]uint16
	Mesh          PolyMesh
	// Vertices is the full-precision (pre-quantization) triangulation
	// vertex array indexed identically to Mesh.Polys's slot entries;
	// the adjacency builder needs it to compute world-space shared
	// borders between polygons.
	Vertices []Point
}

// Build runs the navmesh generation pipeline: pad bounds, buffer-union
// walls, triangulate the remaining free space with the buffered walls as
// holes, aggregate triangles into convex polygons, and materialize Zones.
func Build(worldBounds Rect, barriers [][]Point, botRadius float64) (*BuildResult, error) {
	padded := worldBounds.Expand(worldBoundsPad)

	if math.Abs(worldBounds.Min.GetX()) > maxCoord || math.Abs(worldBounds.Max.GetX()) > maxCoord ||
		math.Abs(worldBounds.Min.GetY()) > maxCoord || math.Abs(worldBounds.Max.GetY()) > maxCoord {
		return nil, naverr.New(naverr.BoundsOverflow, "world bounds exceed +/-32767")
	}

	bufferGeoms := make([][]Point, 0, len(barriers))
	for _, barrier := range barriers {
		bufferGeoms = append(bufferGeoms, bufferPolygon(barrier, botRadius))
	}

	union := UnionPolygons(bufferGeoms)

	outer := rectToCCWPolygon(padded)

	vertices, triangles, err := TriangulateWithHoles(outer, union)
	if err != nil {
		return nil, err
	}
	if len(triangles) == 0 {
		return nil, naverr.New(naverr.EmptyNavmesh, "triangulation produced zero triangles")
	}

	mesh := AggregateTrianglesIntoConvexPolys(vertices, triangles, aggregatorNvp)
	if len(mesh.Polys) > maxPolygonCount {
		return nil, naverr.New(naverr.NavmeshTooComplex, "aggregated polygon count exceeds 0xFFE")
	}

	result := &BuildResult{
		PolygonToZone: make(map[int]uint16),
		Mesh:          mesh,
		Vertices:      vertices,
	}

	for polyIdx, slot := range mesh.Polys {
		bounds := make([]Point, 0, mesh.Nvp)
		for _, vi := range slot {
			if vi == PolyMeshSentinel {
				break
			}
			bounds = append(bounds, vertices[vi])
		}
		if len(bounds) < 3 {
			continue
		}

		zone := &Zone{
			ID:       uint16(len(result.Zones)),
			Bounds:   bounds,
			Centroid: FindCentroid(bounds),
			Extent:   RectFromPolygon(bounds),
		}
		result.PolygonToZone[polyIdx] = zone.ID
		result.Zones = append(result.Zones, zone)
	}

	return result, nil
}

func rectToCCWPolygon(r Rect) []Point {
	return []Point{
		vector.MakeVector2(r.Min.GetX(), r.Min.GetY()),
		vector.MakeVector2(r.Max.GetX(), r.Min.GetY()),
		vector.MakeVector2(r.Max.GetX(), r.Max.GetY()),
		vector.MakeVector2(r.Min.GetX(), r.Max.GetY()),
	}
}

// bufferPolygon dilates a (possibly concave) wall outline outward by
// radius, approximating the Minkowski sum with a disk by unioning an
// oriented rectangle per edge with an octagon at each vertex, generalizing
// the oriented-rectangle-along-a-segment trick used for swept-shape
// bounding boxes from a single segment to every edge of a polygon.
func bufferPolygon(poly []Point, radius float64) []Point {
	if len(poly) < 2 || radius <= 0 {
		return poly
	}

	pieces := make([][]Point, 0, len(poly)*2)
	n := len(poly)

	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]

		dir := b.Sub(a)
		if dir.MagSq() < 1e-12 {
			continue
		}
		perp := dir.Normalize().OrthogonalCounterClockwise().MultScalar(radius)

		pieces = append(pieces, []Point{
			a.Sub(perp), b.Sub(perp), b.Add(perp), a.Add(perp),
		})
		pieces = append(pieces, vertexDisk(a, radius))
	}

	merged := UnionPolygons(pieces)
	if len(merged) == 0 {
		return poly
	}

	// The wall interior itself must remain inside the buffer.
	merged = UnionPolygons(append(merged, poly))

	// Return the largest contour (by vertex count, a stand-in for area)
	// as the outline; the union step downstream flattens any remaining
	// disjoint pieces across all barriers anyway.
	best := merged[0]
	for _, c := range merged[1:] {
		if len(c) > len(best) {
			best = c
		}
	}
	return best
}

const vertexDiskSides = 8

func vertexDisk(center Point, radius float64) []Point {
	pts := make([]Point, vertexDiskSides)
	for i := 0; i < vertexDiskSides; i++ {
		angle := 2 * math.Pi * float64(i) / vertexDiskSides
		pts[i] = vector.MakeVector2(
			center.GetX()+radius*math.Cos(angle),
			center.GetY()+radius*math.Sin(angle),
		)
	}
	return pts
}
