package runtime

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bytearena/botnav/internal/vector"
	"github.com/bytearena/botnav/shipsim"
)

// stubTarget is a Targetable with fixed position, velocity and flags.
type stubTarget struct {
	pos         vector.Vector2
	vel         vector.Vector2
	team        int
	isShip      bool
	cloaked     bool
	mounted     bool
	dead        bool
}

func (s stubTarget) Position() vector.Vector2    { return s.pos }
func (s stubTarget) Velocity() vector.Vector2    { return s.vel }
func (s stubTarget) Team() int                   { return s.team }
func (s stubTarget) IsShip() bool                { return s.isShip }
func (s stubTarget) Cloaked() bool                { return s.cloaked }
func (s stubTarget) HasMountedItems() bool        { return s.mounted }
func (s stubTarget) Dead() bool                   { return s.dead }

// newTestBot builds a bare Bot with just enough state for FiringSolution:
// a physics body in an empty world (so every line-of-sight check passes)
// and the team/radius fields the solver reads.
func newTestBot(pos vector.Vector2, team int) *Bot {
	world := &World{Physics: shipsim.NewWorld()}
	return &Bot{
		world:  world,
		body:   shipsim.NewBody(world.Physics, pos, 1.0, 10.0),
		Team:   team,
		Radius: 1.0,
	}
}

func TestFiringSolutionStationaryTargetAimsDirectlyAtIt(t *testing.T) {
	b := newTestBot(vector.MakeVector2(0, 0), 0)
	target := stubTarget{pos: vector.MakeVector2(10, 0), isShip: true, mounted: true}

	angle, ok := b.FiringSolution(target, 5, 10000, false)
	assert.True(t, ok)
	assert.InDelta(t, 0.0, angle, 1e-6, "stationary target dead ahead needs no lead")
}

func TestFiringSolutionLeadsMovingTarget(t *testing.T) {
	b := newTestBot(vector.MakeVector2(0, 0), 0)
	// Target moving away perpendicular to the line of fire; a correct
	// solution must aim ahead of its current position, i.e. not at angle 0.
	target := stubTarget{
		pos:     vector.MakeVector2(10, 0),
		vel:     vector.MakeVector2(0, 2),
		isShip:  true,
		mounted: true,
	}

	angle, ok := b.FiringSolution(target, 5, 10000, false)
	assert.True(t, ok)
	assert.Greater(t, angle, 0.0, "must lead ahead of the target's current position")
}

func TestFiringSolutionFailsOnCloakedUnmountedShip(t *testing.T) {
	b := newTestBot(vector.MakeVector2(0, 0), 0)
	target := stubTarget{pos: vector.MakeVector2(10, 0), isShip: true, cloaked: true, mounted: false}

	_, ok := b.FiringSolution(target, 5, 10000, false)
	assert.False(t, ok)
}

func TestFiringSolutionCloakedShipWithMountedItemsStillTargetable(t *testing.T) {
	b := newTestBot(vector.MakeVector2(0, 0), 0)
	target := stubTarget{pos: vector.MakeVector2(10, 0), isShip: true, cloaked: true, mounted: true}

	_, ok := b.FiringSolution(target, 5, 10000, false)
	assert.True(t, ok)
}

func TestFiringSolutionFailsOnDeadShip(t *testing.T) {
	b := newTestBot(vector.MakeVector2(0, 0), 0)
	target := stubTarget{pos: vector.MakeVector2(10, 0), isShip: true, mounted: true, dead: true}

	_, ok := b.FiringSolution(target, 5, 10000, false)
	assert.False(t, ok)
}

func TestFiringSolutionRespectsFriendlyFireFlag(t *testing.T) {
	b := newTestBot(vector.MakeVector2(0, 0), 1)
	target := stubTarget{pos: vector.MakeVector2(10, 0), isShip: true, mounted: true, team: 1}

	_, ok := b.FiringSolution(target, 5, 10000, true)
	assert.False(t, ok, "ignoreFriendly must reject a same-team target")

	_, ok = b.FiringSolution(target, 5, 10000, false)
	assert.True(t, ok, "without the friendly-fire flag a same-team target is still valid")
}

func TestFiringSolutionFailsWhenTargetOutrunsProjectile(t *testing.T) {
	b := newTestBot(vector.MakeVector2(0, 0), 0)
	// Target receding faster than the projectile can ever catch up.
	target := stubTarget{
		pos:     vector.MakeVector2(10, 0),
		vel:     vector.MakeVector2(100, 0),
		isShip:  true,
		mounted: true,
	}

	_, ok := b.FiringSolution(target, 1, 10000, false)
	assert.False(t, ok)
}

func TestFiringSolutionFailsWhenInterceptExceedsLifetime(t *testing.T) {
	b := newTestBot(vector.MakeVector2(0, 0), 0)
	target := stubTarget{pos: vector.MakeVector2(10000, 0), isShip: true, mounted: true}

	// Projectile lifetime far too short to reach a distant stationary target.
	_, ok := b.FiringSolution(target, 5, 10, false)
	assert.False(t, ok)
}

func TestSolveInterceptTimeStationaryTarget(t *testing.T) {
	d := vector.MakeVector2(10, 0)
	zero := vector.MakeVector2(0, 0)

	tHit, ok := solveInterceptTime(zero, d, 5, 100)
	assert.True(t, ok)
	assert.InDelta(t, 2.0, tHit, 1e-9)
}

func TestSolveInterceptTimeNoSolutionWhenTooFar(t *testing.T) {
	d := vector.MakeVector2(10, 0)
	zero := vector.MakeVector2(0, 0)

	_, ok := solveInterceptTime(zero, d, 5, 1) // maxT too small
	assert.False(t, ok)
}

func TestSolveInterceptTimeDegenerateLinearCase(t *testing.T) {
	// vs.vs == vp^2 makes the quadratic's leading coefficient vanish; the
	// target closes in on the aim origin at exactly the projectile's speed.
	vs := vector.MakeVector2(-5, 0)
	d := vector.MakeVector2(10, 0)

	tHit, ok := solveInterceptTime(vs, d, 5, 100)
	assert.True(t, ok)
	assert.InDelta(t, 1.0, tHit, 1e-9)
}

func TestInterceptCourseMirrorsFiringSolution(t *testing.T) {
	b := newTestBot(vector.MakeVector2(0, 0), 0)
	target := stubTarget{pos: vector.MakeVector2(10, 0), isShip: true, mounted: true}

	angle, ok := b.InterceptCourse(target, 8, 10000, false)
	assert.True(t, ok)
	assert.InDelta(t, 0.0, math.Mod(angle, 2*math.Pi), 1e-6)
}
