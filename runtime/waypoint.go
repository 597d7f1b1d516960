package runtime

import (
	"github.com/bytearena/botnav/navmesh"
)

const closestVisibleZoneStartRadiusSq = 262144.0

// GetWaypoint implements get_waypoint(target): the next point the bot
// should steer toward to eventually reach target, using a cached flight
// plan when the goal zone hasn't changed and falling back to a fresh A*
// call otherwise.
func (b *Bot) GetWaypoint(target navmesh.Point) (navmesh.Point, bool) {
	pos := b.body.Position()

	if b.canSee(pos, target) {
		return target, true
	}

	goalZone, ok := b.zoneContainingOrClosestVisible(target)
	if !ok {
		return navmesh.Point{}, false
	}

	if b.flightPlan.valid && b.flightPlan.goalZone == goalZone.ID {
		plan := b.flightPlan.points
		plan[0] = target

		// Pop entries from the back while each is still visible (the
		// first popped entry is always treated as visible); the last
		// entry popped is the chosen waypoint and is pushed back on.
		var chosen navmesh.Point
		first := true
		for len(plan) > 0 {
			back := plan[len(plan)-1]
			if !first && !b.canSee(pos, back) {
				break
			}
			first = false
			chosen = back
			plan = plan[:len(plan)-1]
		}
		plan = append(plan, chosen)

		b.flightPlan.points = plan
		return chosen, true
	}

	b.flightPlan = flightPlanCache{}

	b.refreshCurrentZone()
	currentZone, ok := b.CurrentZone()
	if !ok {
		zone, found := b.closestVisibleZone(pos)
		if !found {
			return navmesh.Point{}, false
		}
		currentZone = zone
	}

	if currentZone.ID == goalZone.ID {
		if b.canSee(pos, target) {
			return target, true
		}
		return goalZone.Centroid, true
	}

	path := b.world.Finder.FindPath(currentZone.ID, goalZone.ID, target)
	if len(path) == 0 {
		return navmesh.Point{}, false
	}

	b.flightPlan = flightPlanCache{valid: true, goalZone: goalZone.ID, points: path}
	return path[len(path)-1], true
}

func (b *Bot) canSee(a, target navmesh.Point) bool {
	return b.world.Physics.RayCastClear(a, target)
}

func (b *Bot) zoneContainingOrClosestVisible(p navmesh.Point) (*navmesh.Zone, bool) {
	if zone, ok := b.world.ZoneStore.FindZoneContaining(p); ok {
		return zone, true
	}
	return b.closestVisibleZone(p)
}

// closestVisibleZone finds the nearest zone (by centroid distance) whose
// centroid is visible from p, starting with a bounded search radius and
// expanding to the whole map if nothing qualifies within it.
func (b *Bot) closestVisibleZone(p navmesh.Point) (*navmesh.Zone, bool) {
	best, ok := b.searchVisibleZone(p, closestVisibleZoneStartRadiusSq)
	if ok {
		return best, true
	}
	return b.searchVisibleZone(p, -1)
}

func (b *Bot) searchVisibleZone(p navmesh.Point, maxDistSq float64) (*navmesh.Zone, bool) {
	var best *navmesh.Zone
	var bestDistSq float64

	for i := 0; i < b.world.ZoneStore.Count(); i++ {
		zone, ok := b.world.ZoneStore.Zone(uint16(i))
		if !ok {
			continue
		}
		distSq := zone.Centroid.DistanceSq(p)
		if maxDistSq >= 0 && distSq > maxDistSq {
			continue
		}
		if !b.canSee(p, zone.Centroid) {
			continue
		}
		if best == nil || distSq < bestDistSq {
			best = zone
			bestDistSq = distSq
		}
	}

	return best, best != nil
}
