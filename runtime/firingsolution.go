package runtime

import (
	"math"

	"github.com/bytearena/botnav/internal/vector"
)

// Targetable is the subset of a world object's state the lead-shot solver
// needs; ships, and anything else fire() can aim at, implement it.
type Targetable interface {
	Position() vector.Vector2
	Velocity() vector.Vector2
	Team() int
	IsShip() bool
	Cloaked() bool
	HasMountedItems() bool
	Dead() bool
}

const leadShotAimOffsetFactor = 1.2

// FiringSolution computes the angle to aim at, leading a moving target so
// a projectile fired now intersects its predicted position. Returns false
// when no valid solution exists (see spec steps 2-3, 4, 6, 7).
func (b *Bot) FiringSolution(target Targetable, projectileSpeed, lifetimeMs float64, ignoreFriendly bool) (float64, bool) {
	aimOrigin := b.body.Position()

	if target.IsShip() && ((target.Cloaked() && !target.HasMountedItems()) || target.Dead()) {
		return 0, false
	}
	if ignoreFriendly && target.Team() == b.Team {
		return 0, false
	}

	toTarget := target.Position().Sub(aimOrigin)
	if toTarget.MagSq() > 1e-12 {
		aimOrigin = aimOrigin.Add(toTarget.Normalize().MultScalar(b.Radius * leadShotAimOffsetFactor))
	}

	d := target.Position().Sub(aimOrigin)
	vs := target.Velocity()

	t, ok := solveInterceptTime(vs, d, projectileSpeed, lifetimeMs/1000.0)
	if !ok {
		return 0, false
	}

	lead := target.Position().Add(vs.MultScalar(t))

	if !b.canSee(aimOrigin, target.Position()) {
		return 0, false
	}

	rayDir := lead.Sub(aimOrigin)
	if rayDir.MagSq() > 1e-12 {
		rayEnd := aimOrigin.Add(rayDir.Normalize().MultScalar(lifetimeMs * projectileSpeed / 1000.0))
		if !b.canSee(aimOrigin, rayEnd) {
			return 0, false
		}
	}

	return math.Atan2(lead.GetY()-aimOrigin.GetY(), lead.GetX()-aimOrigin.GetX()), true
}

// InterceptCourse is the same solver with the aimer's own max speed used
// in place of a projectile speed, for get_intercept_course.
func (b *Bot) InterceptCourse(target Targetable, shipSpeed, lifetimeMs float64, ignoreFriendly bool) (float64, bool) {
	return b.FiringSolution(target, shipSpeed, lifetimeMs, ignoreFriendly)
}

// solveInterceptTime solves (Vs.Vs - vp^2) t^2 + (2 Vs.d) t + d.d = 0 for
// the lowest positive root t <= maxT.
func solveInterceptTime(vs, d vector.Vector2, vp, maxT float64) (float64, bool) {
	a := vs.Dot(vs) - vp*vp
	bb := 2 * vs.Dot(d)
	c := d.Dot(d)

	if math.Abs(a) < 1e-9 {
		if math.Abs(bb) < 1e-9 {
			return 0, false
		}
		t := -c / bb
		if t > 0 && t <= maxT {
			return t, true
		}
		return 0, false
	}

	discriminant := bb*bb - 4*a*c
	if discriminant < 0 {
		return 0, false
	}
	sqrtDisc := math.Sqrt(discriminant)
	t1 := (-bb - sqrtDisc) / (2 * a)
	t2 := (-bb + sqrtDisc) / (2 * a)
	if t1 > t2 {
		t1, t2 = t2, t1
	}

	if t1 > 1e-9 && t1 <= maxT {
		return t1, true
	}
	if t2 > 1e-9 && t2 <= maxT {
		return t2, true
	}
	return 0, false
}
