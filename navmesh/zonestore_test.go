package navmesh

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bytearena/botnav/internal/vector"
)

func TestZoneStoreFindZoneContaining(t *testing.T) {
	zones := []*Zone{
		makeZone(0, square(0, 0, 10, 10)),
		makeZone(1, square(10, 0, 20, 10)),
	}
	store := NewZoneStore(zones)

	z, ok := store.FindZoneContaining(vector.MakeVector2(3, 3))
	assert.True(t, ok)
	assert.Equal(t, uint16(0), z.ID)

	z, ok = store.FindZoneContaining(vector.MakeVector2(15, 5))
	assert.True(t, ok)
	assert.Equal(t, uint16(1), z.ID)

	_, ok = store.FindZoneContaining(vector.MakeVector2(500, 500))
	assert.False(t, ok)
}

func TestZoneStoreZoneAndCount(t *testing.T) {
	zones := []*Zone{
		makeZone(0, square(0, 0, 10, 10)),
		makeZone(1, square(10, 0, 20, 10)),
	}
	store := NewZoneStore(zones)

	assert.Equal(t, 2, store.Count())

	z, ok := store.Zone(1)
	assert.True(t, ok)
	assert.Equal(t, uint16(1), z.ID)

	_, ok = store.Zone(99)
	assert.False(t, ok)
}

func TestZoneStoreFindZoneContainingFallsBackOnBoundarySeam(t *testing.T) {
	zones := []*Zone{makeZone(0, square(0, 0, 10, 10))}
	store := NewZoneStore(zones)

	// Sits exactly on the polygon's right edge: PolygonContainsPoint's ray
	// cast excludes it, but it is within zoneBoundaryEpsilon of zone 0.
	z, ok := store.FindZoneContaining(vector.MakeVector2(10, 5))
	assert.True(t, ok, "boundary-tolerant fallback should still find zone 0")
	assert.Equal(t, uint16(0), z.ID)

	_, ok = store.FindZoneContaining(vector.MakeVector2(500, 500))
	assert.False(t, ok, "far outside any zone's epsilon window, no fallback candidate")
}

func TestZoneStoreEmpty(t *testing.T) {
	store := NewZoneStore(nil)
	assert.Equal(t, 0, store.Count())

	_, ok := store.FindZoneContaining(vector.MakeVector2(0, 0))
	assert.False(t, ok)
}
