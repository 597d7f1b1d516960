package runtime

import (
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/bytearena/botnav/events"
	"github.com/bytearena/botnav/internal/vector"
	"github.com/bytearena/botnav/navmesh"
)

// HostAPI is the receiver every Lua-visible host function closes over. One
// instance is created per bot and bound into that bot's own interpreter,
// so scripts never see another bot's state except through the query
// functions below.
type HostAPI struct {
	bot *Bot
}

// registerHostAPI installs every script-visible host function as a Lua
// global in state, closing over api.
func registerHostAPI(state *lua.LState, api *HostAPI) {
	fns := map[string]lua.LGFunction{
		// Introspection
		"get_class_id":      api.getClassID,
		"get_cpu_time":       api.getCPUTime,
		"get_time":           api.getTime,
		"is_alive":           api.isAlive,
		"get_loc":            api.getLoc,
		"get_rad":            api.getRad,
		"get_vel":            api.getVel,
		"get_team_index":     api.getTeamIndex,
		"get_energy":         api.getEnergy,
		"get_health":         api.getHealth,
		"has_flag":           api.hasFlag,
		"get_flag_count":     api.getFlagCount,
		"get_angle":          api.getAngle,
		"get_active_weapon":  api.getActiveWeapon,
		"is_module_active":   api.isModuleActive,
		"get_curr_loadout":   api.getCurrLoadout,
		"get_req_loadout":    api.getReqLoadout,

		// Movement
		"set_angle":        api.setAngle,
		"set_angle_pt":     api.setAnglePt,
		"get_angle_pt":     api.getAnglePt,
		"set_thrust":       api.setThrust,
		"set_thrust_pt":    api.setThrustPt,
		"set_thrust_to_pt": api.setThrustToPt,

		// Combat
		"fire":                  api.fire,
		"set_weapon_index":      api.setWeaponIndex,
		"set_weapon":            api.setWeapon,
		"has_weapon":            api.hasWeapon,
		"activate_module_index": api.activateModuleIndex,
		"activate_module":       api.activateModule,
		"set_req_loadout":       api.setReqLoadout,

		// World queries
		"has_los_pt":          api.hasLosPt,
		"find_items":          api.findItems,
		"find_global_items":   api.findGlobalItems,
		"get_firing_solution": api.getFiringSolution,
		"get_intercept_course": api.getInterceptCourse,

		// Navmesh queries
		"get_zone_center":               api.getZoneCenter,
		"get_gateway_from_zone_to_zone": api.getGatewayFromZoneToZone,
		"get_zone_count":                api.getZoneCount,
		"get_current_zone":              api.getCurrentZone,
		"get_waypoint":                  api.getWaypoint,

		// Communication
		"global_msg": api.globalMsg,
		"team_msg":   api.teamMsg,

		// Events
		"subscribe":   api.subscribe,
		"unsubscribe": api.unsubscribe,
	}

	for name, fn := range fns {
		state.SetGlobal(name, state.NewFunction(fn))
	}
}

// registerConstants injects the integer enum constants scripts reference
// by name: object-type bitmask, module/weapon enums, game-type enum,
// scoring-event enum, and event-type enum.
func registerConstants(state *lua.LState) {
	constants := map[string]int{
		// Object-type bitmask
		"OBJ_SHIP":       1 << 0,
		"OBJ_PROJECTILE": 1 << 1,
		"OBJ_ITEM":       1 << 2,
		"OBJ_FLAG":       1 << 3,
		"OBJ_TELEPORTER": 1 << 4,
		"OBJ_OBSTACLE":   1 << 5,

		// Module enum, mirroring ModuleType
		"MODULE_SHIELD":   int(ModuleType.Shield),
		"MODULE_BOOST":    int(ModuleType.Boost),
		"MODULE_SENSOR":   int(ModuleType.Sensor),
		"MODULE_REPAIR":   int(ModuleType.Repair),
		"MODULE_ENGINEER": int(ModuleType.Engineer),
		"MODULE_CLOAK":    int(ModuleType.Cloak),
		"MODULE_ARMOR":    int(ModuleType.Armor),

		// Weapon enum, mirroring the built-in Weapon registrations
		"WEAPON_BLASTER": int(WeaponBlaster),
		"WEAPON_MISSILE": int(WeaponMissile),
		"WEAPON_MINE":    int(WeaponMine),

		// Game-type enum
		"GAME_DEATHMATCH":     0,
		"GAME_TEAM_DEATHMATCH": 1,
		"GAME_CAPTURE_FLAG":   2,

		// Scoring-event enum
		"SCORE_KILL":    0,
		"SCORE_DEATH":   1,
		"SCORE_CAPTURE": 2,

		// Event-type enum, mirroring events.Type
		"EVENT_SHIP_SPAWNED":  int(0),
		"EVENT_SHIP_KILLED":   int(1),
		"EVENT_MSG_RECEIVED":  int(2),
		"EVENT_PLAYER_JOINED": int(3),
		"EVENT_PLAYER_LEFT":   int(4),

		// Team indices
		"TEAM_NEUTRAL": 0,
		"TEAM_HOSTILE": -1,
	}

	for name, val := range constants {
		state.SetGlobal(name, lua.LNumber(val))
	}
}

func pointToTable(state *lua.LState, p navmesh.Point) *lua.LTable {
	t := state.NewTable()
	t.RawSetString("x", lua.LNumber(p.GetX()))
	t.RawSetString("y", lua.LNumber(p.GetY()))
	return t
}

func tableToPoint(t *lua.LTable) vector.Vector2 {
	x := float64(lua.LVAsNumber(t.RawGetString("x")))
	y := float64(lua.LVAsNumber(t.RawGetString("y")))
	return vector.MakeVector2(x, y)
}

// pointArg reads a point argument that may be passed either as an
// {x=,y=} table or as two separate number arguments starting at idx.
func pointArg(state *lua.LState, idx int) vector.Vector2 {
	if t, ok := state.Get(idx).(*lua.LTable); ok {
		return tableToPoint(t)
	}
	x := state.CheckNumber(idx)
	y := state.CheckNumber(idx + 1)
	return vector.MakeVector2(float64(x), float64(y))
}

// --- Introspection ---

func (api *HostAPI) getClassID(state *lua.LState) int {
	state.Push(lua.LString("ship"))
	return 1
}

func (api *HostAPI) getCPUTime(state *lua.LState) int {
	state.Push(lua.LNumber(api.bot.world.clockMs - api.bot.cpuStartMs))
	return 1
}

func (api *HostAPI) getTime(state *lua.LState) int {
	state.Push(lua.LNumber(api.bot.world.lastDt))
	return 1
}

func (api *HostAPI) isAlive(state *lua.LState) int {
	state.Push(lua.LBool(api.bot.Alive && !api.bot.Exploded))
	return 1
}

func (api *HostAPI) getLoc(state *lua.LState) int {
	state.Push(pointToTable(state, api.bot.body.Position()))
	return 1
}

func (api *HostAPI) getRad(state *lua.LState) int {
	state.Push(lua.LNumber(api.bot.Radius))
	return 1
}

func (api *HostAPI) getVel(state *lua.LState) int {
	state.Push(pointToTable(state, api.bot.body.Velocity()))
	return 1
}

func (api *HostAPI) getTeamIndex(state *lua.LState) int {
	state.Push(lua.LNumber(api.bot.Team))
	return 1
}

func (api *HostAPI) getEnergy(state *lua.LState) int {
	state.Push(lua.LNumber(api.bot.Energy))
	return 1
}

func (api *HostAPI) getHealth(state *lua.LState) int {
	state.Push(lua.LNumber(api.bot.Health))
	return 1
}

func (api *HostAPI) hasFlag(state *lua.LState) int {
	state.Push(lua.LBool(api.bot.hasFlag))
	return 1
}

func (api *HostAPI) getFlagCount(state *lua.LState) int {
	state.Push(lua.LNumber(api.bot.flagCount))
	return 1
}

func (api *HostAPI) getAngle(state *lua.LState) int {
	state.Push(lua.LNumber(api.bot.body.Angle()))
	return 1
}

func (api *HostAPI) getActiveWeapon(state *lua.LState) int {
	state.Push(lua.LNumber(api.bot.activeWeaponIndex))
	return 1
}

func (api *HostAPI) isModuleActive(state *lua.LState) int {
	module := int(state.CheckNumber(1))
	state.Push(lua.LBool(api.bot.activeModules[module]))
	return 1
}

func (api *HostAPI) getCurrLoadout(state *lua.LState) int {
	t := state.NewTable()
	for i, w := range api.bot.loadout {
		t.RawSetInt(i+1, lua.LNumber(w))
	}
	state.Push(t)
	return 1
}

func (api *HostAPI) getReqLoadout(state *lua.LState) int {
	t := state.NewTable()
	for i, w := range api.bot.reqLoadout {
		t.RawSetInt(i+1, lua.LNumber(w))
	}
	state.Push(t)
	return 1
}

// --- Movement ---

func (api *HostAPI) setAngle(state *lua.LState) int {
	if _, ok := state.Get(1).(*lua.LTable); ok {
		return api.setAnglePt(state)
	}
	api.bot.move.hasAngle = true
	api.bot.move.angleOnly = float64(state.CheckNumber(1))
	return 0
}

func (api *HostAPI) setAnglePt(state *lua.LState) int {
	target := pointArg(state, 1)
	api.bot.move.hasAngle = true
	api.bot.move.angleOnly = angleToPoint(api.bot.body.Position(), target)
	return 0
}

func (api *HostAPI) getAnglePt(state *lua.LState) int {
	target := pointArg(state, 1)
	state.Push(lua.LNumber(angleToPoint(api.bot.body.Position(), target)))
	return 1
}

func angleToPoint(from, to vector.Vector2) float64 {
	return to.Sub(from).Angle()
}

func (api *HostAPI) setThrust(state *lua.LState) int {
	velocity := float64(state.CheckNumber(1))
	angle := float64(state.CheckNumber(2))
	api.bot.move.hasThrust = true
	api.bot.move.speed = velocity
	api.bot.move.angle = angle
	return 0
}

func (api *HostAPI) setThrustPt(state *lua.LState) int {
	velocity := float64(state.CheckNumber(1))
	target := pointArg(state, 2)
	api.bot.move.hasThrust = true
	api.bot.move.speed = velocity
	api.bot.move.angle = angleToPoint(api.bot.body.Position(), target)
	return 0
}

func (api *HostAPI) setThrustToPt(state *lua.LState) int {
	target := pointArg(state, 1)
	api.bot.move.hasThrustToPt = true
	api.bot.move.targetPt = target
	return 0
}

// --- Combat ---

func (api *HostAPI) fire(state *lua.LState) int {
	api.bot.move.fire = true
	return 0
}

func (api *HostAPI) setWeaponIndex(state *lua.LState) int {
	idx := int(state.CheckNumber(1))
	if idx >= 1 && idx <= len(api.bot.loadout) {
		api.bot.activeWeaponIndex = idx
	}
	return 0
}

func (api *HostAPI) setWeapon(state *lua.LState) int {
	weapon := int(state.CheckNumber(1))
	for i, w := range api.bot.loadout {
		if w == weapon {
			api.bot.activeWeaponIndex = i + 1
			break
		}
	}
	return 0
}

func (api *HostAPI) hasWeapon(state *lua.LState) int {
	weapon := int(state.CheckNumber(1))
	found := false
	for _, w := range api.bot.loadout {
		if w == weapon {
			found = true
			break
		}
	}
	state.Push(lua.LBool(found))
	return 1
}

func (api *HostAPI) activateModuleIndex(state *lua.LState) int {
	idx := int(state.CheckNumber(1))
	api.bot.activeModules[idx] = true
	return 0
}

// activateModule takes a module enum value (ModuleType.*, not a slot
// index) and activates whichever loadout slot currently holds it,
// mirroring setWeapon's enum-to-slot scan. A module not present in the
// loadout is a silent no-op.
func (api *HostAPI) activateModule(state *lua.LState) int {
	module := int(state.CheckNumber(1))
	for i, m := range api.bot.loadout {
		if m == module {
			api.bot.activeModules[i+1] = true
			break
		}
	}
	return 0
}

func (api *HostAPI) setReqLoadout(state *lua.LState) int {
	t := state.CheckTable(1)
	var req []int
	t.ForEach(func(_, v lua.LValue) {
		if n, ok := v.(lua.LNumber); ok {
			req = append(req, int(n))
		}
	})
	api.bot.reqLoadout = req
	return 0
}

// --- World queries ---

func (api *HostAPI) hasLosPt(state *lua.LState) int {
	target := pointArg(state, 1)
	pos := api.bot.body.Position()
	offset := vector.MakeVector2(1, 0).SetAngle(angleToPoint(pos, target) + math.Pi/2).MultScalar(api.bot.Radius)
	left := pos.Add(offset)
	right := pos.Sub(offset)
	clear := api.bot.world.Physics.RayCastClear(left, target.Add(offset)) &&
		api.bot.world.Physics.RayCastClear(right, target.Sub(offset))
	state.Push(lua.LBool(clear))
	return 1
}

// --- World query helpers ---

// findItems and findGlobalItems return every bot other than the caller;
// no type mask argument is read. findGlobalItems also leaves out cloaked
// and dead bots.
func (api *HostAPI) findItems(state *lua.LState) int {
	return api.findBotsAsTable(state, false)
}

func (api *HostAPI) findGlobalItems(state *lua.LState) int {
	return api.findBotsAsTable(state, true)
}

func (api *HostAPI) findBotsAsTable(state *lua.LState, global bool) int {
	out := state.NewTable()
	idx := 1
	for _, other := range api.bot.world.Bots() {
		if other == api.bot {
			continue
		}
		if global && (other.cloaked || other.Dead()) {
			continue
		}
		entry := state.NewTable()
		loc := other.body.Position()
		entry.RawSetString("x", lua.LNumber(loc.GetX()))
		entry.RawSetString("y", lua.LNumber(loc.GetY()))
		entry.RawSetString("team", lua.LNumber(other.Team))
		entry.RawSetString("name", lua.LString(other.Name()))
		out.RawSetInt(idx, entry)
		idx++
	}
	state.Push(out)
	return 1
}

func (api *HostAPI) getFiringSolution(state *lua.LState) int {
	return api.solve(state, false)
}

func (api *HostAPI) getInterceptCourse(state *lua.LState) int {
	return api.solve(state, true)
}

func (api *HostAPI) solve(state *lua.LState, interceptCourse bool) int {
	targetTable := state.CheckTable(2)
	speed := float64(state.CheckNumber(3))
	lifetimeMs := float64(state.CheckNumber(4))
	ignoreFriendly := bool(lua.LVAsBool(state.Get(5)))

	target := tableTarget{
		pos:  tableToPoint(targetTable),
		team: int(lua.LVAsNumber(targetTable.RawGetString("team"))),
	}
	if velTable, ok := targetTable.RawGetString("vel").(*lua.LTable); ok {
		target.vel = tableToPoint(velTable)
	}

	var angle float64
	var ok bool
	if interceptCourse {
		angle, ok = api.bot.InterceptCourse(target, speed, lifetimeMs, ignoreFriendly)
	} else {
		angle, ok = api.bot.FiringSolution(target, speed, lifetimeMs, ignoreFriendly)
	}
	if !ok {
		state.Push(lua.LNil)
		return 1
	}
	state.Push(lua.LNumber(angle))
	return 1
}

// tableTarget adapts a script-supplied {x=,y=,vel=,team=} table to
// Targetable for the firing solution solver; it is always treated as a
// live, uncloaked ship since the script only has a handle to observable
// objects in the first place.
type tableTarget struct {
	pos  vector.Vector2
	vel  vector.Vector2
	team int
}

func (t tableTarget) Position() vector.Vector2 { return t.pos }
func (t tableTarget) Velocity() vector.Vector2 { return t.vel }
func (t tableTarget) Team() int                { return t.team }
func (t tableTarget) IsShip() bool             { return true }
func (t tableTarget) Cloaked() bool            { return false }
func (t tableTarget) HasMountedItems() bool    { return true }
func (t tableTarget) Dead() bool               { return false }

// --- Navmesh queries ---

func (api *HostAPI) getZoneCenter(state *lua.LState) int {
	id := uint16(state.CheckNumber(1))
	zone, ok := api.bot.world.ZoneStore.Zone(id)
	if !ok {
		state.Push(lua.LNil)
		return 1
	}
	state.Push(pointToTable(state, zone.Centroid))
	return 1
}

func (api *HostAPI) getGatewayFromZoneToZone(state *lua.LState) int {
	from := uint16(state.CheckNumber(1))
	to := uint16(state.CheckNumber(2))
	zone, ok := api.bot.world.ZoneStore.Zone(from)
	if !ok {
		state.Push(lua.LNil)
		return 1
	}
	for _, edge := range zone.Neighbors {
		if edge.TargetZoneID == to {
			state.Push(pointToTable(state, edge.BorderCenter))
			return 1
		}
	}
	state.Push(lua.LNil)
	return 1
}

func (api *HostAPI) getZoneCount(state *lua.LState) int {
	state.Push(lua.LNumber(api.bot.world.ZoneStore.Count()))
	return 1
}

func (api *HostAPI) getCurrentZone(state *lua.LState) int {
	api.bot.refreshCurrentZone()
	zone, ok := api.bot.CurrentZone()
	if !ok {
		state.Push(lua.LNil)
		return 1
	}
	state.Push(lua.LNumber(zone.ID))
	return 1
}

func (api *HostAPI) getWaypoint(state *lua.LState) int {
	target := pointArg(state, 1)
	wp, ok := api.bot.GetWaypoint(target)
	if !ok {
		state.Push(lua.LNil)
		return 1
	}
	state.Push(pointToTable(state, wp))
	return 1
}

// --- Communication ---

func (api *HostAPI) globalMsg(state *lua.LState) int {
	text := state.CheckString(1)
	api.bot.world.Events.FireEvent(events.MsgReceived, api.bot, ChatMessage{SenderName: api.bot.Name(), Text: text, Team: false})
	return 0
}

func (api *HostAPI) teamMsg(state *lua.LState) int {
	text := state.CheckString(1)
	api.bot.world.Events.FireEvent(events.MsgReceived, api.bot, ChatMessage{SenderName: api.bot.Name(), Text: text, Team: true})
	return 0
}

// --- Events ---

func (api *HostAPI) subscribe(state *lua.LState) int {
	evt := events.Type(state.CheckNumber(1))
	api.bot.world.Events.Subscribe(api.bot, evt)
	return 0
}

func (api *HostAPI) unsubscribe(state *lua.LState) int {
	evt := events.Type(state.CheckNumber(1))
	api.bot.world.Events.Unsubscribe(api.bot, evt)
	return 0
}
