package runtime

import (
	"fmt"

	"github.com/bytearena/ecs"
	uuid "github.com/satori/go.uuid"

	"github.com/bytearena/botnav/events"
	"github.com/bytearena/botnav/internal/naverr"
	"github.com/bytearena/botnav/internal/vector"
	"github.com/bytearena/botnav/navmesh"
	"github.com/bytearena/botnav/shipsim"
)

// pendingMove is the bot's requested movement for the tick currently in
// progress, cleared at the start of every tick and applied to the physics
// body right after this bot's script returns; positions only change at the
// physics step that follows all bot ticks.
type pendingMove struct {
	hasThrust  bool
	speed      float64
	angle      float64
	hasThrustToPt bool
	targetPt   vector.Vector2
	hasAngle   bool
	angleOnly  float64
	fire       bool
}

// flightPlanCache holds the last A*-derived waypoint list get_waypoint
// produced, so consecutive calls toward the same goal zone don't replan.
type flightPlanCache struct {
	valid       bool
	goalZone    uint16
	points      []navmesh.Point
}

// Bot is one scripted ship: its ECS entity, physical body, private
// interpreter, and the navigation/combat bookkeeping the host API exposes.
type Bot struct {
	world  *World
	entity *ecs.Entity
	script *Script
	body   *shipsim.Body

	ID uuid.UUID

	Team      int
	Health    float64
	MaxHealth float64
	Energy    float64
	MaxEnergy float64
	Radius    float64
	Alive     bool
	Exploded  bool

	activeWeaponIndex int
	activeModules     map[int]bool
	loadout           []int
	reqLoadout        []int
	hasFlag           bool
	flagCount         int
	cloaked           bool

	lastMoveTimeMs float64
	move           pendingMove
	flightPlan     flightPlanCache
	currentZoneID  int32 // -1 when unknown
	respawnTimerMs float64

	terminated     bool
	terminationErr error

	cpuStartMs float64
}

// BotSpec describes a bot to spawn: its team, script source, and initial
// position.
type BotSpec struct {
	Team       int
	ScriptPath string
	Args       []string
	Position   vector.Vector2
}

const (
	defaultBotRadius    = 1.0
	defaultBotMaxSpeed  = 0.75
	defaultBotMaxHealth = 100.0
	defaultBotMaxEnergy = 100.0
)

// SpawnBot loads spec.ScriptPath (after the level's shared Lua helper
// file), creates the physics body, and registers the bot's entity in w.
// A BotFileNotFound/ScriptLoadError here means the caller should omit the
// bot and continue the level without it.
func SpawnBot(w *World, spec BotSpec) (*Bot, error) {
	entity := w.manager.NewEntity()

	bot := &Bot{
		world:         w,
		entity:        entity,
		ID:            uuid.NewV4(),
		Team:          spec.Team,
		Health:        defaultBotMaxHealth,
		MaxHealth:     defaultBotMaxHealth,
		Energy:        defaultBotMaxEnergy,
		MaxEnergy:     defaultBotMaxEnergy,
		Radius:        defaultBotRadius,
		Alive:         true,
		activeModules: make(map[int]bool),
		currentZoneID: -1,
	}

	bot.body = shipsim.NewBody(w.Physics, spec.Position, bot.Radius, defaultBotMaxSpeed)

	api := &HostAPI{bot: bot}
	script, err := newScript(w.Config.LuaDir+"/botcore.lua", spec.ScriptPath, api)
	if err != nil {
		w.manager.DisposeEntities(entity)
		return nil, err
	}
	bot.script = script

	entity.
		AddComponent(w.botComponent, bot).
		AddComponent(w.physicalBody, bot)

	if err := script.CallMain(); err != nil {
		w.RemoveBot(bot)
		return nil, err
	}

	w.Events.FireEvent(events.ShipSpawned, nil, ShipSpawnInfo{Bot: bot})
	w.Events.FireEvent(events.PlayerJoined, nil, PlayerJoinInfo{Bot: bot})

	return bot, nil
}

func (b *Bot) Name() string { return b.script.Name() }

// Dead reports whether b should be excluded from find_global_items results.
func (b *Bot) Dead() bool { return !b.Alive || b.Exploded }

// Kill marks b as destroyed and fires ShipKilled to every subscriber.
// Collision/damage resolution deciding a ship has died is the owning game
// type's responsibility, mirroring fire()'s projectile-spawning split in
// integrateMove; this is the hook it calls once it reaches that decision.
// killer is nil for an unattributed death. Calling Kill on an
// already-exploded bot is a no-op.
func (b *Bot) Kill(killer *Bot) {
	if b.Exploded {
		return
	}
	b.Alive = false
	b.Exploded = true
	b.world.Events.FireEvent(events.ShipKilled, nil, ShipKilledInfo{Victim: b, Killer: killer})
}

// uniquifyName appends a numeric suffix to name until it no longer
// collides with any name in taken.
func uniquifyName(name string, taken map[string]bool) string {
	if !taken[name] {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", name, i)
		if !taken[candidate] {
			return candidate
		}
	}
}

// Tick runs one server tick for the bot per the per-bot tick sequence:
// compute dt, clear the pending move, call _onTick, then integrate the
// move into the physics body.
func (b *Bot) Tick(nowMs float64) {
	if b.Exploded {
		b.respawnTimerMs -= b.world.lastDt
		return
	}

	dt := nowMs - b.lastMoveTimeMs
	if dt == 0 {
		return
	}
	b.lastMoveTimeMs = nowMs

	b.move = pendingMove{}

	if err := b.script.CallTick(dt); err != nil {
		b.terminated = true
		b.terminationErr = err
		return
	}

	b.integrateMove(dt)
}

func (b *Bot) integrateMove(dtMs float64) {
	m := b.move
	switch {
	case m.hasThrustToPt:
		b.body.SetThrustToPoint(m.targetPt, dtMs)
	case m.hasThrust:
		b.body.SetThrust(m.speed, m.angle)
	}
	if m.hasAngle {
		b.body.SetAngle(m.angleOnly)
	}
	if m.fire {
		// Projectile spawning is the owning game type's responsibility;
		// the bot runtime only records that fire() was requested this
		// tick so the host application can react.
	}
}

func (b *Bot) CurrentZone() (*navmesh.Zone, bool) {
	if b.currentZoneID < 0 {
		return nil, false
	}
	return b.world.ZoneStore.Zone(uint16(b.currentZoneID))
}

func (b *Bot) refreshCurrentZone() {
	zone, ok := b.world.ZoneStore.FindZoneContaining(b.body.Position())
	if !ok {
		b.currentZoneID = -1
		return
	}
	b.currentZoneID = int32(zone.ID)
}

// NavErr wraps a bot-scoped error with its naverr.Kind, used by the host
// API layer to decide between a nil/no-op script-visible return and
// terminating the bot.
func NavErr(kind naverr.Kind, msg string) error {
	return naverr.New(kind, msg)
}
