// Package shipsim wraps a box2d dynamic body per ship, the minimal
// physics integration the bot runtime needs to turn a script's
// set_thrust_* calls into actual movement, plus the line-of-sight raycast
// queries the host API exposes to bots.
package shipsim

import (
	"github.com/bytearena/box2d"

	"github.com/bytearena/botnav/internal/vector"
)

func toB2Vec2(v vector.Vector2) box2d.B2Vec2 {
	return box2d.MakeB2Vec2(v.GetX(), v.GetY())
}

func fromB2Vec2(v box2d.B2Vec2) vector.Vector2 {
	return vector.MakeVector2(v.X, v.Y)
}

// World owns the box2d simulation every ship body lives in. Gravity is
// zero: the arena is viewed from directly above.
type World struct {
	b2world *box2d.B2World
}

func NewWorld() *World {
	w := box2d.MakeB2World(box2d.MakeB2Vec2(0, 0))
	return &World{b2world: &w}
}

// Step advances the simulation by dtMs milliseconds.
func (w *World) Step(dtMs float64) {
	w.b2world.Step(dtMs/1000.0, 8, 3)
}

// Body is a single ship's physical presence: position, velocity, facing
// angle and collision radius.
type Body struct {
	b2body   *box2d.B2Body
	maxSpeed float64
}

// NewBody creates a dynamic circular body at position with the given
// radius, registered in world.
func NewBody(world *World, position vector.Vector2, radius, maxSpeed float64) *Body {
	bodydef := box2d.MakeB2BodyDef()
	bodydef.Position.Set(position.GetX(), position.GetY())
	bodydef.Type = box2d.B2BodyType.B2_dynamicBody
	bodydef.AllowSleep = false
	bodydef.FixedRotation = true

	b2body := world.b2world.CreateBody(&bodydef)

	shape := box2d.MakeB2CircleShape()
	shape.SetRadius(radius)

	fixturedef := box2d.MakeB2FixtureDef()
	fixturedef.Shape = &shape
	fixturedef.Density = 20.0
	b2body.CreateFixtureFromDef(&fixturedef)
	b2body.SetBullet(false)

	return &Body{b2body: b2body, maxSpeed: maxSpeed}
}

func (b *Body) Position() vector.Vector2 {
	return fromB2Vec2(b.b2body.GetPosition())
}

func (b *Body) SetPosition(p vector.Vector2) {
	b.b2body.SetTransform(toB2Vec2(p), b.Angle())
}

func (b *Body) Velocity() vector.Vector2 {
	return fromB2Vec2(b.b2body.GetLinearVelocity())
}

// SetThrust sets velocity from a magnitude and absolute angle, clamped to
// maxSpeed.
func (b *Body) SetThrust(speed, angle float64) {
	if speed > b.maxSpeed {
		speed = b.maxSpeed
	}
	dir := vector.MakeVector2(1, 0).SetAngle(angle)
	b.b2body.SetLinearVelocity(toB2Vec2(dir.MultScalar(speed)))
}

// SetThrustToPoint sets velocity so the body arrives exactly at target
// after tickDtMs milliseconds have elapsed.
func (b *Body) SetThrustToPoint(target vector.Vector2, tickDtMs float64) {
	if tickDtMs <= 0 {
		return
	}
	delta := target.Sub(b.Position())
	speedPerSec := delta.MultScalar(1000.0 / tickDtMs)
	b.b2body.SetLinearVelocity(toB2Vec2(speedPerSec))
}

func (b *Body) Angle() float64 {
	return b.b2body.GetAngle()
}

func (b *Body) SetAngle(angle float64) {
	b.b2body.SetTransform(b.b2body.GetPosition(), angle)
}

func (b *Body) Radius() float64 {
	return b.b2body.GetFixtureList().GetShape().GetRadius()
}

// ObstacleTag marks a body as an occluder for RayCastClear; ships and
// projectiles leave it unset so they never block a line-of-sight check.
type ObstacleTag struct{}

// MarkObstacle attaches an occluder tag to a static wall body.
func MarkObstacle(b *Body) {
	b.b2body.SetUserData(ObstacleTag{})
}

// RayCastClear reports whether the open segment (from, to) passes through
// no body tagged ObstacleTag, the same box2d.B2World.RayCast occlusion
// check used to decide whether two agents can see each other.
func (w *World) RayCastClear(from, to vector.Vector2) bool {
	clear := true
	w.b2world.RayCast(
		func(fixture *box2d.B2Fixture, point box2d.B2Vec2, normal box2d.B2Vec2, fraction float64) float64 {
			if _, ok := fixture.GetBody().GetUserData().(ObstacleTag); ok {
				clear = false
				return 0.0 // terminate the ray
			}
			return 1.0 // continue past non-obstacle fixtures
		},
		toB2Vec2(from),
		toB2Vec2(to),
	)
	return clear
}
