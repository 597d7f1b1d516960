package navmesh

import (
	"math"
)

// ObjectID identifies an entry stored in the spatial grid. The navmesh
// package is agnostic of what it points to; callers map it back to their
// own entities.
type ObjectID uint64

// TypeMask is a bitmask used to filter FindInRect results by coarse object
// kind. Results may contain false positives with respect to the exact
// polygon; callers must refine.
type TypeMask uint32

const AnyType TypeMask = math.MaxUint32

type gridEntry struct {
	id     ObjectID
	extent Rect
	mask   TypeMask
}

type bucketKey struct{ col, row int }

// SpatialGrid is a fixed-width axis-aligned bucket grid.
type SpatialGrid struct {
	bucketWidth float64
	buckets     map[bucketKey][]ObjectID
	entries     map[ObjectID]gridEntry
}

// NewSpatialGrid sizes bucketWidth so the longer axis of worldBounds fits
// in roughly 24 buckets.
func NewSpatialGrid(worldBounds Rect) *SpatialGrid {
	longest := math.Max(worldBounds.Width(), worldBounds.Height())
	width := longest / 24
	if width <= 0 {
		width = 1
	}
	return &SpatialGrid{
		bucketWidth: width,
		buckets:     make(map[bucketKey][]ObjectID),
		entries:     make(map[ObjectID]gridEntry),
	}
}

func (g *SpatialGrid) bucketsFor(r Rect) []bucketKey {
	minCol := int(math.Floor(r.Min.GetX() / g.bucketWidth))
	maxCol := int(math.Floor(r.Max.GetX() / g.bucketWidth))
	minRow := int(math.Floor(r.Min.GetY() / g.bucketWidth))
	maxRow := int(math.Floor(r.Max.GetY() / g.bucketWidth))

	keys := make([]bucketKey, 0, (maxCol-minCol+1)*(maxRow-minRow+1))
	for c := minCol; c <= maxCol; c++ {
		for row := minRow; row <= maxRow; row++ {
			keys = append(keys, bucketKey{c, row})
		}
	}
	return keys
}

// Insert adds obj with the given extent and type mask to every bucket it
// overlaps.
func (g *SpatialGrid) Insert(id ObjectID, extent Rect, mask TypeMask) {
	g.entries[id] = gridEntry{id: id, extent: extent, mask: mask}
	for _, k := range g.bucketsFor(extent) {
		g.buckets[k] = append(g.buckets[k], id)
	}
}

// Remove deletes obj from the grid entirely.
func (g *SpatialGrid) Remove(id ObjectID) {
	entry, ok := g.entries[id]
	if !ok {
		return
	}
	for _, k := range g.bucketsFor(entry.extent) {
		g.removeFromBucket(k, id)
	}
	delete(g.entries, id)
}

func (g *SpatialGrid) removeFromBucket(k bucketKey, id ObjectID) {
	bucket := g.buckets[k]
	for i, v := range bucket {
		if v == id {
			bucket[i] = bucket[len(bucket)-1]
			g.buckets[k] = bucket[:len(bucket)-1]
			return
		}
	}
}

// UpdateExtent moves obj to the buckets matching its new extent.
func (g *SpatialGrid) UpdateExtent(id ObjectID, newExtent Rect) {
	entry, ok := g.entries[id]
	if !ok {
		g.Insert(id, newExtent, AnyType)
		return
	}
	mask := entry.mask
	g.Remove(id)
	g.Insert(id, newExtent, mask)
}

// FindInRect appends to out every object whose extent overlaps rect and
// whose mask matches typeMask (a bitwise AND test).
func (g *SpatialGrid) FindInRect(typeMask TypeMask, out []ObjectID, rect Rect) []ObjectID {
	seen := make(map[ObjectID]struct{})
	for _, k := range g.bucketsFor(rect) {
		for _, id := range g.buckets[k] {
			if _, dup := seen[id]; dup {
				continue
			}
			entry, ok := g.entries[id]
			if !ok {
				continue
			}
			if typeMask != AnyType && entry.mask&typeMask == 0 {
				continue
			}
			if !entry.extent.IntersectsOrBorders(rect) {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// WallLookup abstracts the set of wall polygons point_can_see_point tests
// an open segment against.
type WallLookup interface {
	WallPolygons() [][]Point
}

// PointCanSeePoint reports whether the open segment (a,b) crosses no wall
// polygon's interior. FindInRect serves only as a quick reject: when no grid
// entry overlaps the segment's bounding box the segment is clear; otherwise
// every wall polygon gets the PolygonLineIntersect test.
func (g *SpatialGrid) PointCanSeePoint(a, b Point, walls WallLookup) bool {
	segRect := RectFromPolygon([]Point{a, b})

	candidates := g.FindInRect(AnyType, nil, segRect)
	if len(candidates) == 0 {
		return true
	}

	for _, poly := range walls.WallPolygons() {
		if _, _, hit := PolygonLineIntersect(poly, a, b); hit {
			return false
		}
	}
	return true
}
