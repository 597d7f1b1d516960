package runtime

import (
	"github.com/bytearena/ecs"

	"github.com/bytearena/botnav/events"
	"github.com/bytearena/botnav/internal/config"
	"github.com/bytearena/botnav/internal/vector"
	"github.com/bytearena/botnav/navmesh"
	"github.com/bytearena/botnav/pathfind"
	"github.com/bytearena/botnav/shipsim"
	"github.com/bytearena/botnav/teleport"
)

// World owns every entity in a running match: the ECS manager and its
// component/view set, the physics world, the navmesh zone store and
// pathfinder, the teleporter list, and the event manager. This is the
// NavContext value threaded through the bot runtime in place of the
// teacher's process-wide globals.
type World struct {
	manager *ecs.Manager

	botComponent     *ecs.Component
	physicalBody     *ecs.Component
	teleporterComp   *ecs.Component
	botsView         *ecs.View
	teleportersView  *ecs.View

	Physics   *shipsim.World
	ZoneStore *navmesh.ZoneStore
	Finder    *pathfind.Finder
	Events    *events.Manager
	Config    config.Snapshot

	tickNum int
	lastDt  float64
	clockMs float64
}

// Advance moves the world's clock forward by dtMs and runs the deferred
// event subscription reconciliation, meant to be called once per server
// tick before bot ticks.
func (w *World) Advance(dtMs float64) {
	w.lastDt = dtMs
	w.clockMs += dtMs
	w.tickNum++
	w.Events.Update()
}

// NewWorld wires up the ECS manager and views the bot runtime uses, plus
// the navmesh/pathfinding/event collaborators built once at level start.
func NewWorld(zoneStore *navmesh.ZoneStore, cfg config.Snapshot) (*World, error) {
	manager := ecs.NewManager()

	finder, err := pathfind.NewFinder(zoneStore)
	if err != nil {
		return nil, err
	}

	w := &World{
		manager:        manager,
		botComponent:   manager.NewComponent(),
		physicalBody:   manager.NewComponent(),
		teleporterComp: manager.NewComponent(),
		Physics:        shipsim.NewWorld(),
		ZoneStore:      zoneStore,
		Finder:         finder,
		Config:         cfg,
	}

	w.botsView = manager.CreateView(w.botComponent, w.physicalBody)
	w.teleportersView = manager.CreateView(w.teleporterComp)

	w.Events = events.NewManager(w.dispatchEvent, w.logDispatchError)

	w.physicalBody.SetDestructor(func(entity *ecs.Entity, data interface{}) {
		bot := data.(*Bot)
		bot.script.Close()
	})

	return w, nil
}

func (w *World) dispatchEvent(h events.Handle, evt events.Type, payload events.Payload) error {
	bot, ok := h.(*Bot)
	if !ok {
		return nil
	}
	switch evt {
	case events.ShipSpawned:
		info := payload.(ShipSpawnInfo)
		return bot.script.CallShipSpawned(info.Bot.Name())
	case events.ShipKilled:
		info := payload.(ShipKilledInfo)
		killerName := ""
		if info.Killer != nil {
			killerName = info.Killer.Name()
		}
		return bot.script.CallShipKilled(info.Victim.Name(), killerName)
	case events.MsgReceived:
		msg := payload.(ChatMessage)
		return bot.script.CallMsgReceived(msg.SenderName, msg.Text)
	case events.PlayerJoined:
		info := payload.(PlayerJoinInfo)
		return bot.script.CallPlayerJoined(info.Bot.Name())
	case events.PlayerLeft:
		info := payload.(PlayerLeaveInfo)
		return bot.script.CallPlayerLeft(info.Bot.Name())
	}
	return nil
}

func (w *World) logDispatchError(h events.Handle, evt events.Type, err error) {
	if bot, ok := h.(*Bot); ok {
		bot.terminated = true
		bot.terminationErr = err
	}
}

// ChatMessage is the MsgReceived event payload, fired by global_msg/team_msg.
type ChatMessage struct {
	SenderName string
	Text       string
	Team       bool
}

// ShipSpawnInfo is the ShipSpawned event payload.
type ShipSpawnInfo struct {
	Bot *Bot
}

// ShipKilledInfo is the ShipKilled event payload. Killer is nil when the
// death had no attributable killer (e.g. environmental damage).
type ShipKilledInfo struct {
	Victim *Bot
	Killer *Bot
}

// PlayerJoinInfo is the PlayerJoined event payload.
type PlayerJoinInfo struct {
	Bot *Bot
}

// PlayerLeaveInfo is the PlayerLeft event payload.
type PlayerLeaveInfo struct {
	Bot *Bot
}

// NewTeleporter registers a teleporter instance in the world and returns a
// navmesh.TeleporterLink describing it for the adjacency builder.
func (w *World) NewTeleporter(t *teleport.Teleporter) navmesh.TeleporterLink {
	entity := w.manager.NewEntity()
	entity.AddComponent(w.teleporterComp, t)

	return navmesh.TeleporterLink{
		Entry:        t.Entry(),
		Destinations: t.Destinations(),
	}
}

// Teleporters returns every teleporter currently registered.
func (w *World) Teleporters() []*teleport.Teleporter {
	var out []*teleport.Teleporter
	for _, res := range w.teleportersView.Get() {
		out = append(out, res.Components[w.teleporterComp].(*teleport.Teleporter))
	}
	return out
}

// Bots returns every live bot entity.
func (w *World) Bots() []*Bot {
	var out []*Bot
	for _, res := range w.botsView.Get() {
		out = append(out, res.Components[w.botComponent].(*Bot))
	}
	return out
}

// RemoveBot disposes of a bot's entity, destructing its physics body and
// closing its interpreter. It does not fire PlayerLeft: it is also the
// teardown path for a bot whose script failed to load, which never
// produced a ShipSpawned/PlayerJoined pair in the first place.
func (w *World) RemoveBot(b *Bot) {
	w.Events.UnsubscribeImmediateAll(b)
	w.manager.DisposeEntities(b.entity)
}

// DespawnBot fires PlayerLeft for b, then tears it down. Use this for a
// bot leaving a running match; use RemoveBot directly only when b never
// successfully joined.
func (w *World) DespawnBot(b *Bot) {
	w.Events.FireEvent(events.PlayerLeft, nil, PlayerLeaveInfo{Bot: b})
	w.RemoveBot(b)
}

// shipHandleAdapter adapts shipsim.Body to teleport.ShipHandle.
type shipHandleAdapter struct {
	body *shipsim.Body
}

func (a shipHandleAdapter) Position() vector.Vector2    { return a.body.Position() }
func (a shipHandleAdapter) Radius() float64             { return a.body.Radius() }
func (a shipHandleAdapter) SetPosition(p vector.Vector2) { a.body.SetPosition(p) }

// ShipHandle adapts b to teleport.ShipHandle, for feeding a tick's live
// bot list to a teleporter's Tick call.
func (b *Bot) ShipHandle() teleport.ShipHandle {
	return shipHandleAdapter{body: b.body}
}
