// Package teleport implements the teleporter state machine: idle, ship
// triggering, optional damage for engineered teleporters, and the
// explosion/removal sequence.
package teleport

import (
	"math/rand"

	uuid "github.com/satori/go.uuid"

	"github.com/bytearena/botnav/internal/naverr"
	"github.com/bytearena/botnav/internal/vector"
)

type State uint8

const (
	Idle State = iota
	Triggered
	Damaged
	Exploding
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Triggered:
		return "Triggered"
	case Damaged:
		return "Damaged"
	case Exploding:
		return "Exploding"
	default:
		return "Unknown"
	}
}

// ShipHandle is any ship-like object the teleporter can detect and move.
// The teleporter package is agnostic of the concrete ship/entity type, the
// same boundary SpatialGrid.WallLookup draws for wall polygons.
type ShipHandle interface {
	Position() vector.Vector2
	Radius() float64
	SetPosition(vector.Vector2)
}

// Spec is the load-time description of a teleporter.
type Spec struct {
	Entry        vector.Vector2
	Destinations []vector.Vector2
	TriggerRadius float64
	DelayMs       float64
	Engineered    bool
	MaxHealth     float64
}

// NewSpec validates and returns a teleporter Spec, or an error if the
// destinations list is empty (a teleporter with nowhere to send ships is
// rejected at load rather than silently acting as a one-way sink).
func NewSpec(entry vector.Vector2, destinations []vector.Vector2, triggerRadius, delayMs float64, engineered bool, maxHealth float64) (Spec, error) {
	if len(destinations) == 0 {
		return Spec{}, naverr.New(naverr.ScriptLoadError, "teleporter has no destinations")
	}
	return Spec{
		Entry:         entry,
		Destinations:  destinations,
		TriggerRadius: triggerRadius,
		DelayMs:       delayMs,
		Engineered:    engineered,
		MaxHealth:     maxHealth,
	}, nil
}

// Teleporter is a single in-world teleporter instance.
type Teleporter struct {
	ID uuid.UUID

	spec Spec

	state          State
	timeoutMs      float64
	health         float64
	explosionTimer float64

	detached bool
}

const (
	explosionDurationMs = 1000
	shipClearanceRadius = 0.0 // added to ship radius for the trigger test
)

func New(spec Spec) *Teleporter {
	// Only engineered teleporters carry hit points.
	health := 0.0
	if spec.Engineered {
		health = spec.MaxHealth
	}
	return &Teleporter{
		ID:     uuid.NewV4(),
		spec:   spec,
		state:  Idle,
		health: health,
	}
}

func (t *Teleporter) State() State   { return t.state }
func (t *Teleporter) Health() float64 { return t.health }
func (t *Teleporter) Detached() bool  { return t.detached }
func (t *Teleporter) Entry() vector.Vector2 { return t.spec.Entry }
func (t *Teleporter) Destinations() []vector.Vector2 { return t.spec.Destinations }

// Damage applies projectile damage; it is a no-op unless the teleporter is
// engineered (non-engineered teleporters have no collision and no HP).
func (t *Teleporter) Damage(amount float64) {
	if !t.spec.Engineered || t.state == Exploding {
		return
	}
	t.health -= amount
	if t.health <= 0 {
		t.state = Exploding
		t.explosionTimer = explosionDurationMs
		return
	}
	t.state = Damaged
}

// CollidesWithProjectiles reports whether this teleporter accepts
// projectile collisions at all; only engineered teleporters do.
func (t *Teleporter) CollidesWithProjectiles() bool {
	return t.spec.Engineered
}

// TeleportResult describes one ship relocation performed while Triggered, for
// the caller to react to (fire a LoadoutZone check, emit sound/visual
// flags).
type TeleportResult struct {
	Ship ShipHandle
	From vector.Vector2
	To   vector.Vector2
}

// Tick advances the state machine by dt milliseconds. ships is every ship
// currently in the world; the teleporter narrows to the ones within range
// itself (a caller with a spatial index may pre-filter before calling, but
// correctness does not depend on it).
func (t *Teleporter) Tick(dt float64, ships []ShipHandle) []TeleportResult {
	switch t.state {
	case Idle:
		for _, ship := range ships {
			if t.spec.Entry.Distance(ship.Position()) <= t.spec.TriggerRadius {
				t.state = Triggered
				t.timeoutMs = t.spec.DelayMs
				break
			}
		}
		return nil

	case Triggered:
		t.timeoutMs -= dt

		var results []TeleportResult
		for _, ship := range ships {
			radius := t.spec.TriggerRadius + ship.Radius() + shipClearanceRadius
			if t.spec.Entry.Distance(ship.Position()) > radius {
				continue
			}
			dest := t.spec.Destinations[rand.Intn(len(t.spec.Destinations))]
			from := ship.Position()
			translation := dest.Sub(t.spec.Entry)
			to := from.Add(translation)
			ship.SetPosition(to)
			results = append(results, TeleportResult{Ship: ship, From: from, To: to})
		}

		if t.timeoutMs <= 0 {
			t.state = Idle
		}
		return results

	case Damaged:
		// Damaged is a transient marker state applied by Damage(); the
		// teleporter resumes normal triggering behavior while damaged.
		t.state = Idle
		return nil

	case Exploding:
		t.explosionTimer -= dt
		if t.explosionTimer <= 0 {
			t.detached = true
		}
		return nil
	}

	return nil
}
