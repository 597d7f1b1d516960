package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bytearena/botnav/internal/vector"
	"github.com/bytearena/botnav/navmesh"
	"github.com/bytearena/botnav/pathfind"
	"github.com/bytearena/botnav/shipsim"
)

func squareBounds(minX, minY, maxX, maxY float64) []navmesh.Point {
	return []navmesh.Point{
		vector.MakeVector2(minX, minY),
		vector.MakeVector2(maxX, minY),
		vector.MakeVector2(maxX, maxY),
		vector.MakeVector2(minX, maxY),
	}
}

// twoZoneWorld builds a minimal World with two adjacent square zones
// (0,0)-(10,10) and (10,0)-(20,10), wired with a mesh edge at their shared
// border, for exercising GetWaypoint's direct-visibility and A* fallback
// paths without running the full navmesh build pipeline.
func twoZoneWorld() (*World, *navmesh.Zone, *navmesh.Zone) {
	zoneA := &navmesh.Zone{ID: 0, Bounds: squareBounds(0, 0, 10, 10)}
	zoneA.Centroid = navmesh.FindCentroid(zoneA.Bounds)
	zoneA.Extent = navmesh.RectFromPolygon(zoneA.Bounds)

	zoneB := &navmesh.Zone{ID: 1, Bounds: squareBounds(10, 0, 20, 10)}
	zoneB.Centroid = navmesh.FindCentroid(zoneB.Bounds)
	zoneB.Extent = navmesh.RectFromPolygon(zoneB.Bounds)

	border := vector.MakeVector2(10, 5)
	zoneA.Neighbors = []navmesh.Edge{{TargetZoneID: 1, BorderCenter: border, TargetCenter: zoneB.Centroid, Cost: 10}}
	zoneB.Neighbors = []navmesh.Edge{{TargetZoneID: 0, BorderCenter: border, TargetCenter: zoneA.Centroid, Cost: 10}}

	zoneStore := navmesh.NewZoneStore([]*navmesh.Zone{zoneA, zoneB})
	finder, _ := pathfind.NewFinder(zoneStore)

	world := &World{
		Physics:   shipsim.NewWorld(),
		ZoneStore: zoneStore,
		Finder:    finder,
	}
	return world, zoneA, zoneB
}

func newWaypointTestBot(world *World, pos vector.Vector2) *Bot {
	return &Bot{
		world:         world,
		body:          shipsim.NewBody(world.Physics, pos, 1.0, 10.0),
		currentZoneID: -1,
	}
}

func TestGetWaypointReturnsTargetWhenDirectlyVisible(t *testing.T) {
	world, _, _ := twoZoneWorld()
	b := newWaypointTestBot(world, vector.MakeVector2(5, 5))

	target := vector.MakeVector2(15, 5)
	wp, ok := b.GetWaypoint(target)
	assert.True(t, ok)
	assert.Equal(t, target, wp)
}

func TestGetWaypointRoutesAroundObstacleViaAdjacentZone(t *testing.T) {
	world, _, zoneB := twoZoneWorld()
	b := newWaypointTestBot(world, vector.MakeVector2(5, 5))

	wall := shipsim.NewBody(world.Physics, vector.MakeVector2(10, 5), 2, 0)
	shipsim.MarkObstacle(wall)

	target := vector.MakeVector2(15, 5)
	wp, ok := b.GetWaypoint(target)
	assert.True(t, ok)
	// Direct line blocked: the waypoint must be an intermediate point, not
	// the target itself.
	assert.NotEqual(t, target, wp)
	assert.True(t, b.flightPlan.valid)
	assert.Equal(t, zoneB.ID, b.flightPlan.goalZone)
}

func TestGetWaypointUnreachableTargetReturnsFalse(t *testing.T) {
	// The wall blocks the direct line to the target, and an empty zone
	// store means zoneContainingOrClosestVisible can never resolve a goal
	// zone.
	zoneStore := navmesh.NewZoneStore(nil)
	finder, _ := pathfind.NewFinder(zoneStore)
	world := &World{Physics: shipsim.NewWorld(), ZoneStore: zoneStore, Finder: finder}
	b := newWaypointTestBot(world, vector.MakeVector2(5, 5))

	wall := shipsim.NewBody(world.Physics, vector.MakeVector2(10, 5), 2, 0)
	shipsim.MarkObstacle(wall)

	target := vector.MakeVector2(10000, 5)
	_, ok := b.GetWaypoint(target)
	assert.False(t, ok)
}

func TestCurrentZoneUnknownBeforeRefresh(t *testing.T) {
	world, _, _ := twoZoneWorld()
	b := newWaypointTestBot(world, vector.MakeVector2(5, 5))

	_, ok := b.CurrentZone()
	assert.False(t, ok)
}

func TestRefreshCurrentZoneFindsContainingZone(t *testing.T) {
	world, zoneA, _ := twoZoneWorld()
	b := newWaypointTestBot(world, vector.MakeVector2(5, 5))

	b.refreshCurrentZone()
	zone, ok := b.CurrentZone()
	assert.True(t, ok)
	assert.Equal(t, zoneA.ID, zone.ID)
}
