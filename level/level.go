// Package level loads an in-memory level description and builds the
// navmesh, adjacency graph, teleporters, and bots it describes into a
// runtime.World ready to tick.
package level

import (
	"github.com/bytearena/botnav/internal/config"
	"github.com/bytearena/botnav/internal/vector"
	"github.com/bytearena/botnav/navmesh"
	"github.com/bytearena/botnav/runtime"
	"github.com/bytearena/botnav/teleport"
)

// Point is a 2D coordinate, aliased from the geometry package so callers
// building a LevelSpec don't need to import navmesh directly.
type Point = vector.Vector2

// Polygon is an ordered list of vertices, implicitly closed.
type Polygon []Point

// TeleporterSpec describes one teleporter entity to place at level load.
type TeleporterSpec struct {
	Entry         Point
	Destinations  []Point
	TriggerRadius float64
	DelayMs       float64
	Engineered    bool
	MaxHealth     float64
}

// Team groups a level's spawn points under one team index.
type Team struct {
	SpawnPoints []Point
}

// BotSpec describes one scripted bot to spawn at level start.
type BotSpec struct {
	Team       int
	ScriptPath string
	Args       []string
}

// Spec is the complete in-memory description of a level: its world
// bounds, wall geometry, teleporters, teams and their spawn points, and
// the bots to populate it with.
type Spec struct {
	WorldBounds navmesh.Rect
	Barriers    []Polygon
	Teleporters []TeleporterSpec
	Teams       []Team
	Bots        []BotSpec
}

// Level is a loaded, running level: its world, teleporter instances, and
// the bots that were successfully spawned. Bots the script loader
// rejected are simply omitted (see BotFileNotFound/ScriptLoadError policy).
type Level struct {
	World       *runtime.World
	Teleporters []*teleport.Teleporter
	Bots        []*runtime.Bot
	Rejected    []BotLoadError
}

// BotLoadError records a bot the level failed to spawn, kept so the host
// can log it without aborting the rest of the level load.
type BotLoadError struct {
	Spec BotSpec
	Err  error
}

// Load runs the full level build pipeline: navmesh generation, adjacency
// wiring (with teleporter edges and reachability pruning when cfg's
// generator mode calls for it), teleporter instantiation, and bot
// spawning. A navmesh build failure here means the level runs with no
// bot support; the caller decides whether that is fatal.
func Load(spec Spec, cfg config.Snapshot) (*Level, error) {
	if !cfg.BotZoneGeneratorMode.Enabled() {
		world, err := runtime.NewWorld(navmesh.NewZoneStore(nil), cfg)
		if err != nil {
			return nil, err
		}
		return &Level{World: world}, nil
	}

	barriers := make([][]navmesh.Point, 0, len(spec.Barriers))
	for _, b := range spec.Barriers {
		barriers = append(barriers, []navmesh.Point(b))
	}

	built, err := navmesh.Build(spec.WorldBounds, barriers, cfg.BotRadius)
	if err != nil {
		return nil, err
	}

	teleporters := make([]*teleport.Teleporter, 0, len(spec.Teleporters))
	links := make([]navmesh.TeleporterLink, 0, len(spec.Teleporters))
	for _, ts := range spec.Teleporters {
		tspec, err := teleport.NewSpec(ts.Entry, ts.Destinations, ts.TriggerRadius, ts.DelayMs, ts.Engineered, ts.MaxHealth)
		if err != nil {
			return nil, err
		}
		t := teleport.New(tspec)
		teleporters = append(teleporters, t)
		links = append(links, navmesh.TeleporterLink{Entry: t.Entry(), Destinations: t.Destinations()})
	}

	var spawnSeeds []navmesh.Point
	for _, team := range spec.Teams {
		spawnSeeds = append(spawnSeeds, team.SpawnPoints...)
	}

	var teleporterDestSeeds []navmesh.Point
	for _, link := range links {
		teleporterDestSeeds = append(teleporterDestSeeds, link.Destinations...)
	}

	// Modes without pruning (1, 3, 5) seed the reachability pass with every
	// zone's centroid, which lies inside its own convex zone, so no zone is
	// dropped.
	if !cfg.BotZoneGeneratorMode.Pruned() {
		for _, z := range built.Zones {
			spawnSeeds = append(spawnSeeds, z.Centroid)
		}
	}

	zones, err := navmesh.BuildAdjacency(built, links, spawnSeeds, teleporterDestSeeds)
	if err != nil {
		return nil, err
	}

	zoneStore := navmesh.NewZoneStore(zones)

	world, err := runtime.NewWorld(zoneStore, cfg)
	if err != nil {
		return nil, err
	}

	for _, t := range teleporters {
		world.NewTeleporter(t)
	}

	lvl := &Level{World: world, Teleporters: teleporters}

	for i, bs := range spec.Bots {
		spawn := spawnPointFor(spec, bs.Team, i)
		bot, err := runtime.SpawnBot(world, runtime.BotSpec{
			Team:       bs.Team,
			ScriptPath: bs.ScriptPath,
			Args:       bs.Args,
			Position:   spawn,
		})
		if err != nil {
			lvl.Rejected = append(lvl.Rejected, BotLoadError{Spec: bs, Err: err})
			continue
		}
		lvl.Bots = append(lvl.Bots, bot)
	}

	return lvl, nil
}

// spawnPointFor picks a spawn point for the i'th bot on a team, cycling
// through that team's spawn points if there are more bots than points.
func spawnPointFor(spec Spec, team, i int) navmesh.Point {
	if team >= 0 && team < len(spec.Teams) {
		points := spec.Teams[team].SpawnPoints
		if len(points) > 0 {
			return points[i%len(points)]
		}
	}
	return vector.MakeNullVector2()
}

// Tick advances the level by one server tick: teleporter idle/trigger
// logic, bot scripts, physics integration, and deferred event delivery.
func (l *Level) Tick(nowMs, dtMs float64) {
	l.World.Advance(dtMs)

	ships := make([]teleport.ShipHandle, 0, len(l.Bots))
	for _, b := range l.Bots {
		ships = append(ships, b.ShipHandle())
	}
	for _, t := range l.Teleporters {
		t.Tick(dtMs, ships)
	}

	for _, b := range l.Bots {
		b.Tick(nowMs)
	}

	l.World.Physics.Step(dtMs)
}
