package navmesh

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bytearena/botnav/internal/vector"
)

func makeZone(id uint16, bounds []Point) *Zone {
	return &Zone{
		ID:       id,
		Bounds:   bounds,
		Centroid: FindCentroid(bounds),
		Extent:   RectFromPolygon(bounds),
	}
}

func TestFindZoneContainingLinear(t *testing.T) {
	zones := []*Zone{
		makeZone(0, square(0, 0, 10, 10)),
		makeZone(1, square(10, 0, 20, 10)),
	}

	id, ok := findZoneContainingLinear(zones, vector.MakeVector2(15, 5))
	assert.True(t, ok)
	assert.Equal(t, uint16(1), id)

	_, ok = findZoneContainingLinear(zones, vector.MakeVector2(100, 100))
	assert.False(t, ok)
}

func TestWireTeleporterEdgesAddsOneWayLink(t *testing.T) {
	zones := []*Zone{
		makeZone(0, square(0, 0, 10, 10)),
		makeZone(1, square(100, 100, 110, 110)),
	}

	links := []TeleporterLink{
		{
			Entry:        vector.MakeVector2(5, 5),
			Destinations: []Point{vector.MakeVector2(105, 105)},
		},
	}

	wireTeleporterEdges(zones, links)

	assert.Len(t, zones[0].Neighbors, 1)
	assert.Len(t, zones[1].Neighbors, 0, "teleporter edges are one-way")

	edge := zones[0].Neighbors[0]
	assert.Equal(t, uint16(1), edge.TargetZoneID)
	assert.True(t, edge.Teleporter)
	assert.Equal(t, float32(0), edge.Cost)
}

func TestWireTeleporterEdgesSkipsUnresolvableEndpoints(t *testing.T) {
	zones := []*Zone{makeZone(0, square(0, 0, 10, 10))}

	links := []TeleporterLink{
		{
			Entry:        vector.MakeVector2(500, 500), // outside every zone
			Destinations: []Point{vector.MakeVector2(5, 5)},
		},
	}

	wireTeleporterEdges(zones, links)
	assert.Empty(t, zones[0].Neighbors)
}

func TestBfsReachableFollowsNeighbors(t *testing.T) {
	zones := []*Zone{
		{ID: 0, Neighbors: []Edge{{TargetZoneID: 1}}},
		{ID: 1, Neighbors: []Edge{{TargetZoneID: 2}}},
		{ID: 2},
		{ID: 3}, // isolated, unreachable
	}

	reachable := bfsReachable(zones, map[uint16]struct{}{0: {}})

	assert.True(t, reachable[0])
	assert.True(t, reachable[1])
	assert.True(t, reachable[2])
	assert.False(t, reachable[3])
}

func TestPruneAndRenumberDropsUnreachableAndRewritesIDs(t *testing.T) {
	zones := []*Zone{
		{ID: 0, Neighbors: []Edge{{TargetZoneID: 2}}},
		{ID: 1}, // unreachable, pruned
		{ID: 2, Neighbors: []Edge{{TargetZoneID: 0}}},
	}

	reachable := map[uint16]bool{0: true, 2: true}
	survivors := pruneAndRenumber(zones, reachable)

	assert.Len(t, survivors, 2)
	assert.Equal(t, uint16(0), survivors[0].ID)
	assert.Equal(t, uint16(1), survivors[1].ID)

	// The edge from old zone 0 to old zone 2 must now point at the
	// renumbered id 1, not the stale id 2.
	assert.Equal(t, uint16(1), survivors[0].Neighbors[0].TargetZoneID)
	assert.Equal(t, uint16(0), survivors[1].Neighbors[0].TargetZoneID)
}

func TestPruneAndRenumberDropsEdgesIntoPrunedZones(t *testing.T) {
	zones := []*Zone{
		{ID: 0, Neighbors: []Edge{{TargetZoneID: 1}, {TargetZoneID: 5}}},
		{ID: 1},
	}

	reachable := map[uint16]bool{0: true, 1: true}
	survivors := pruneAndRenumber(zones, reachable)

	assert.Len(t, survivors[0].Neighbors, 1, "edge to pruned zone 5 must be dropped")
}
