package teleport

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bytearena/botnav/internal/vector"
)

type fakeShip struct {
	pos    vector.Vector2
	radius float64
}

func (s *fakeShip) Position() vector.Vector2    { return s.pos }
func (s *fakeShip) Radius() float64             { return s.radius }
func (s *fakeShip) SetPosition(p vector.Vector2) { s.pos = p }

func TestNewSpecRejectsEmptyDestinations(t *testing.T) {
	_, err := NewSpec(vector.MakeVector2(0, 0), nil, 1, 100, false, 0)
	assert.Error(t, err)
}

func TestNewAssignsDistinctIDs(t *testing.T) {
	spec, err := NewSpec(vector.MakeVector2(0, 0), []vector.Vector2{vector.MakeVector2(10, 0)}, 1, 100, false, 0)
	assert.NoError(t, err)

	a := New(spec)
	b := New(spec)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestTeleporterIdleTriggersOnApproach(t *testing.T) {
	spec, err := NewSpec(vector.MakeVector2(0, 0), []vector.Vector2{vector.MakeVector2(100, 0)}, 2, 50, false, 0)
	assert.NoError(t, err)
	tp := New(spec)

	ship := &fakeShip{pos: vector.MakeVector2(0, 0), radius: 0.5}

	results := tp.Tick(10, []ShipHandle{ship})
	assert.Empty(t, results, "first tick only flips Idle -> Triggered, no relocation yet")
	assert.Equal(t, Triggered, tp.State())
}

func TestTeleporterRelocatesShipWhileTriggered(t *testing.T) {
	spec, err := NewSpec(vector.MakeVector2(0, 0), []vector.Vector2{vector.MakeVector2(100, 0)}, 2, 50, false, 0)
	assert.NoError(t, err)
	tp := New(spec)

	ship := &fakeShip{pos: vector.MakeVector2(0, 0), radius: 0.5}
	tp.Tick(10, []ShipHandle{ship}) // Idle -> Triggered

	results := tp.Tick(10, []ShipHandle{ship})
	assert.Len(t, results, 1)
	assert.Equal(t, vector.MakeVector2(100, 0), results[0].To)
	assert.Equal(t, vector.MakeVector2(100, 0), ship.Position())
}

func TestTeleporterReturnsToIdleAfterDelayExpires(t *testing.T) {
	spec, err := NewSpec(vector.MakeVector2(0, 0), []vector.Vector2{vector.MakeVector2(100, 0)}, 2, 50, false, 0)
	assert.NoError(t, err)
	tp := New(spec)

	ship := &fakeShip{pos: vector.MakeVector2(0, 0), radius: 0.5}
	tp.Tick(10, []ShipHandle{ship})   // Idle -> Triggered
	tp.Tick(100, []ShipHandle{ship}) // timeoutMs exhausted

	assert.Equal(t, Idle, tp.State())
}

func TestTeleporterDamageOnlyAppliesWhenEngineered(t *testing.T) {
	spec, _ := NewSpec(vector.MakeVector2(0, 0), []vector.Vector2{vector.MakeVector2(1, 0)}, 1, 10, false, 100)
	tp := New(spec)
	tp.Damage(50)
	assert.Equal(t, 0.0, tp.Health(), "non-engineered teleporters track no health")
	assert.False(t, tp.CollidesWithProjectiles())

	espec, _ := NewSpec(vector.MakeVector2(0, 0), []vector.Vector2{vector.MakeVector2(1, 0)}, 1, 10, true, 100)
	etp := New(espec)
	etp.Damage(30)
	assert.Equal(t, 70.0, etp.Health())
	assert.Equal(t, Damaged, etp.State())
	assert.True(t, etp.CollidesWithProjectiles())
}

func TestTeleporterExplodesAndDetachesWhenHealthDepleted(t *testing.T) {
	spec, _ := NewSpec(vector.MakeVector2(0, 0), []vector.Vector2{vector.MakeVector2(1, 0)}, 1, 10, true, 50)
	tp := New(spec)

	tp.Damage(50)
	assert.Equal(t, Exploding, tp.State())
	assert.False(t, tp.Detached())

	tp.Tick(1500, nil) // past explosionDurationMs
	assert.True(t, tp.Detached())
}

func TestTeleporterDamagedStateResumesIdleNextTick(t *testing.T) {
	spec, _ := NewSpec(vector.MakeVector2(0, 0), []vector.Vector2{vector.MakeVector2(1, 0)}, 1, 10, true, 100)
	tp := New(spec)
	tp.Damage(10)
	assert.Equal(t, Damaged, tp.State())

	tp.Tick(1, nil)
	assert.Equal(t, Idle, tp.State())
}
