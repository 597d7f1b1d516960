package navmesh

import (
	"github.com/dhconnelly/rtreego"
)

// zoneRtreeWrapper adapts a *Zone to rtreego.Spatial, the same wrapper
// pattern a triangle-rtree point-containment lookup (bounding box search
// then precise point-in-triangle refinement) would use for a collision
// mesh.
type zoneRtreeWrapper struct {
	zone *Zone
}

func (w *zoneRtreeWrapper) Bounds() *rtreego.Rect {
	ext := w.zone.Extent
	width := ext.Width()
	height := ext.Height()
	if width <= 0 {
		width = 1e-6
	}
	if height <= 0 {
		height = 1e-6
	}
	r, _ := rtreego.NewRect(
		[]float64{ext.Min.GetX(), ext.Min.GetY()},
		[]float64{width, height},
	)
	return r
}

// ZoneStore answers "which zone contains this point" queries, backed by an
// rtree of zone bounding boxes for candidate narrowing and a precise
// polygon containment test for the final answer.
type ZoneStore struct {
	tree  *rtreego.Rtree
	zones []*Zone
}

// NewZoneStore indexes zones (already pruned and renumbered so
// zones[i].ID == i) into an rtree.
func NewZoneStore(zones []*Zone) *ZoneStore {
	spatials := make([]rtreego.Spatial, len(zones))
	for i, z := range zones {
		spatials[i] = &zoneRtreeWrapper{zone: z}
	}
	return &ZoneStore{
		tree:  rtreego.NewTree(2, 25, 50, spatials...),
		zones: zones,
	}
}

// zoneBoundaryEpsilon sizes the fallback query rect FindZoneContaining
// expands to when no candidate's polygon exactly contains the point, e.g.
// a point sitting precisely on a buffer-union seam between two zones.
const zoneBoundaryEpsilon = 1e-3

// FindZoneContaining returns the zone whose polygon contains p. When more
// than one candidate's polygon contains p (shared-border ambiguity), the
// lowest zone id wins. If no zone's polygon exactly contains p, the query
// rect is re-expanded by zoneBoundaryEpsilon and the lowest-id candidate it
// hits is returned as a boundary-tolerant fallback.
func (s *ZoneStore) FindZoneContaining(p Point) (*Zone, bool) {
	if best, ok := s.findZoneContainingExact(p, 1e-6); ok {
		return best, true
	}

	candidates := s.candidatesNear(p, zoneBoundaryEpsilon)
	if len(candidates) == 0 {
		return nil, false
	}
	best := candidates[0]
	for _, z := range candidates[1:] {
		if z.ID < best.ID {
			best = z
		}
	}
	return best, true
}

// candidatesNear searches the rtree with a query rect of side 2*halfExtent
// centered on p, so the search is symmetric in every direction around the
// point rather than biased toward increasing x/y.
func (s *ZoneStore) candidatesNear(p Point, halfExtent float64) []*Zone {
	queryRect, _ := rtreego.NewRect(
		[]float64{p.GetX() - halfExtent, p.GetY() - halfExtent},
		[]float64{2 * halfExtent, 2 * halfExtent},
	)
	hits := s.tree.SearchIntersect(queryRect)
	zones := make([]*Zone, len(hits))
	for i, c := range hits {
		zones[i] = c.(*zoneRtreeWrapper).zone
	}
	return zones
}

func (s *ZoneStore) findZoneContainingExact(p Point, halfExtent float64) (*Zone, bool) {
	var best *Zone
	for _, z := range s.candidatesNear(p, halfExtent) {
		if !PolygonContainsPoint(z.Bounds, p) {
			continue
		}
		if best == nil || z.ID < best.ID {
			best = z
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

// Zone returns the zone with the given id, or nil if out of range.
func (s *ZoneStore) Zone(id uint16) (*Zone, bool) {
	if int(id) >= len(s.zones) {
		return nil, false
	}
	return s.zones[id], true
}

// Count returns the number of zones in the store.
func (s *ZoneStore) Count() int {
	return len(s.zones)
}
