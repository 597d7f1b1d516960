package navmesh

// TeleporterLink is the subset of a teleporter's state the adjacency
// builder needs: an entry point and the set of destinations it can
// deposit a ship at. The full teleporter entity (health, cooldowns,
// engineered flag) lives in package teleport; this is a read-only view to
// avoid a navmesh<->teleport import cycle.
type TeleporterLink struct {
	Entry        Point
	Destinations []Point
}

type meshEdgeKey struct{ lo, hi int }

type meshEdge struct {
	v0, v1    int
	leftPoly  int
	rightPoly int
}

// BuildAdjacency wires zones' Neighbors from the aggregated polygon mesh by
// edge-matching, appends one-way teleporter edges, then prunes zones
// unreachable from any spawn/teleporter-dest zone and renumbers the
// survivors so id == index.
//
// spawnSeeds and teleporterDestSeeds are world-space points identifying the
// zones BFS should start from.
func BuildAdjacency(result *BuildResult, teleporters []TeleporterLink, spawnSeeds, teleporterDestSeeds []Point) ([]*Zone, error) {
	zones := result.Zones
	wireMeshEdges(result, zones)
	wireTeleporterEdges(zones, teleporters)

	seedZoneIDs := make(map[uint16]struct{})
	for _, p := range spawnSeeds {
		if id, ok := findZoneContainingLinear(zones, p); ok {
			seedZoneIDs[id] = struct{}{}
		}
	}
	for _, p := range teleporterDestSeeds {
		if id, ok := findZoneContainingLinear(zones, p); ok {
			seedZoneIDs[id] = struct{}{}
		}
	}

	reachable := bfsReachable(zones, seedZoneIDs)

	return pruneAndRenumber(zones, reachable), nil
}

func wireMeshEdges(result *BuildResult, zones []*Zone) {
	edgesByKey := make(map[meshEdgeKey]*meshEdge)

	for polyIdx, slot := range result.Mesh.Polys {
		verts := polyVertexIndices(slot)
		n := len(verts)
		if n < 3 {
			continue
		}

		for i := 0; i < n; i++ {
			v0 := verts[i]
			v1 := verts[(i+1)%n]

			lo, hi := v0, v1
			if lo > hi {
				lo, hi = hi, lo
			}
			key := meshEdgeKey{lo, hi}

			if v0 < v1 {
				edgesByKey[key] = &meshEdge{v0: v0, v1: v1, leftPoly: polyIdx, rightPoly: polyIdx}
			}
		}
	}

	// Match descending edges only after every ascending edge is recorded,
	// so the order polygons are visited in cannot hide a shared edge.
	for polyIdx, slot := range result.Mesh.Polys {
		verts := polyVertexIndices(slot)
		for i, n := 0, len(verts); n >= 3 && i < n; i++ {
			v0, v1 := verts[i], verts[(i+1)%n]
			if e, ok := edgesByKey[meshEdgeKey{v1, v0}]; ok && v0 > v1 && e.rightPoly == e.leftPoly {
				e.rightPoly = polyIdx
			}
		}
	}

	for _, e := range edgesByKey {
		if e.leftPoly == e.rightPoly {
			continue // boundary edge (world bounds or an untriangulated hole wall)
		}

		leftZoneID, ok1 := result.PolygonToZone[e.leftPoly]
		rightZoneID, ok2 := result.PolygonToZone[e.rightPoly]
		if !ok1 || !ok2 {
			continue
		}

		p0 := result.Vertices[e.v0]
		p1 := result.Vertices[e.v1]
		center := p0.Add(p1).Center()

		left := zones[leftZoneID]
		right := zones[rightZoneID]

		left.Neighbors = append(left.Neighbors, Edge{
			TargetZoneID: rightZoneID,
			BorderStart:  p0,
			BorderEnd:    p1,
			BorderCenter: center,
			TargetCenter: right.Centroid,
			Cost:         float32(left.Centroid.Distance(center)),
		})
		right.Neighbors = append(right.Neighbors, Edge{
			TargetZoneID: leftZoneID,
			BorderStart:  p1,
			BorderEnd:    p0,
			BorderCenter: center,
			TargetCenter: left.Centroid,
			Cost:         float32(right.Centroid.Distance(center)),
		})
	}
}

func polyVertexIndices(slot []uint16) []int {
	out := make([]int, 0, len(slot))
	for _, v := range slot {
		if v == PolyMeshSentinel {
			break
		}
		out = append(out, int(v))
	}
	return out
}

func wireTeleporterEdges(zones []*Zone, teleporters []TeleporterLink) {
	for _, tp := range teleporters {
		srcID, ok := findZoneContainingLinear(zones, tp.Entry)
		if !ok {
			continue
		}

		for _, dest := range tp.Destinations {
			dstID, ok := findZoneContainingLinear(zones, dest)
			if !ok || dstID == srcID {
				continue
			}

			src := zones[srcID]
			dst := zones[dstID]
			src.Neighbors = append(src.Neighbors, Edge{
				TargetZoneID: dstID,
				BorderStart:  tp.Entry,
				BorderEnd:    dest,
				BorderCenter: tp.Entry,
				TargetCenter: dst.Centroid,
				Cost:         0,
				Teleporter:   true,
			})
		}
	}
}

// findZoneContainingLinear is the adjacency builder's own lookup during
// the build pass, before the rtree-backed ZoneStore exists; the zone count
// at this stage is small enough that a linear scan with lowest-id
// tie-break (see DESIGN.md) is adequate.
func findZoneContainingLinear(zones []*Zone, p Point) (uint16, bool) {
	for _, z := range zones {
		if PolygonContainsPoint(z.Bounds, p) {
			return z.ID, true
		}
	}
	return 0, false
}

func bfsReachable(zones []*Zone, seeds map[uint16]struct{}) map[uint16]bool {
	reachable := make(map[uint16]bool, len(zones))
	queue := make([]uint16, 0, len(seeds))

	for id := range seeds {
		if !reachable[id] {
			reachable[id] = true
			queue = append(queue, id)
		}
	}

	byID := make(map[uint16]*Zone, len(zones))
	for _, z := range zones {
		byID[z.ID] = z
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		z, ok := byID[id]
		if !ok {
			continue
		}
		for _, e := range z.Neighbors {
			if !reachable[e.TargetZoneID] {
				reachable[e.TargetZoneID] = true
				queue = append(queue, e.TargetZoneID)
			}
		}
	}

	return reachable
}

func pruneAndRenumber(zones []*Zone, reachable map[uint16]bool) []*Zone {
	oldToNew := make(map[uint16]uint16, len(zones))
	survivors := make([]*Zone, 0, len(zones))

	for _, z := range zones {
		if reachable[z.ID] {
			oldToNew[z.ID] = uint16(len(survivors))
			survivors = append(survivors, z)
		}
	}

	for _, z := range survivors {
		rewritten := z.Neighbors[:0]
		for _, e := range z.Neighbors {
			newTarget, ok := oldToNew[e.TargetZoneID]
			if !ok {
				continue // neighbor was pruned
			}
			e.TargetZoneID = newTarget
			rewritten = append(rewritten, e)
		}
		z.Neighbors = rewritten
	}

	for newID, z := range survivors {
		z.ID = uint16(newID)
	}

	return survivors
}
