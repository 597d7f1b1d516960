package pathfind

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bytearena/botnav/internal/vector"
	"github.com/bytearena/botnav/navmesh"
)

// fakeGraph is a minimal in-memory Graph for exercising the finder without
// running the full navmesh build pipeline.
type fakeGraph struct {
	zones []*navmesh.Zone
}

func (g *fakeGraph) Zone(id uint16) (*navmesh.Zone, bool) {
	if int(id) >= len(g.zones) {
		return nil, false
	}
	return g.zones[id], true
}

func (g *fakeGraph) Count() int { return len(g.zones) }

func edge(target uint16, cost float32) navmesh.Edge {
	return navmesh.Edge{TargetZoneID: target, Cost: cost}
}

// linearGraph builds a chain of n zones 0..n-1, each centered 10 units apart
// along the X axis, with bidirectional edges between consecutive zones.
func linearGraph(n int) *fakeGraph {
	zones := make([]*navmesh.Zone, n)
	for i := 0; i < n; i++ {
		zones[i] = &navmesh.Zone{
			ID:       uint16(i),
			Centroid: vector.MakeVector2(float64(i)*10, 0),
		}
	}
	for i := 0; i < n-1; i++ {
		cost := float32(zones[i].Centroid.Distance(zones[i+1].Centroid))
		zones[i].Neighbors = append(zones[i].Neighbors, edge(uint16(i+1), cost))
		zones[i+1].Neighbors = append(zones[i+1].Neighbors, edge(uint16(i), cost))
	}
	return &fakeGraph{zones: zones}
}

func TestFindPathThroughIntermediateZone(t *testing.T) {
	g := linearGraph(3)
	f, err := NewFinder(g)
	assert.NoError(t, err)

	goal := vector.MakeVector2(25, 3)
	path := f.FindPath(0, 2, goal)

	assert.NotEmpty(t, path)
	assert.Equal(t, goal, path[0], "goal point leads the result")
	assert.Equal(t, g.zones[2].Centroid, path[1])
	// Walks back through zone 1 to zone 0 (start).
	assert.Equal(t, g.zones[0].Centroid, path[len(path)-1])
}

func TestFindPathSameZone(t *testing.T) {
	g := linearGraph(3)
	f, err := NewFinder(g)
	assert.NoError(t, err)

	goal := vector.MakeVector2(1, 1)
	path := f.FindPath(1, 1, goal)

	assert.Equal(t, []navmesh.Point{goal, g.zones[1].Centroid}, path)
}

func TestFindPathUnreachableReturnsEmpty(t *testing.T) {
	zones := []*navmesh.Zone{
		{ID: 0, Centroid: vector.MakeVector2(0, 0)},
		{ID: 1, Centroid: vector.MakeVector2(10, 0)}, // no edges at all
	}
	g := &fakeGraph{zones: zones}
	f, err := NewFinder(g)
	assert.NoError(t, err)

	path := f.FindPath(0, 1, vector.MakeVector2(10, 0))
	assert.Nil(t, path)
}

func TestFindPathOutOfRangeZoneReturnsNil(t *testing.T) {
	g := linearGraph(2)
	f, err := NewFinder(g)
	assert.NoError(t, err)

	assert.Nil(t, f.FindPath(0, 99, vector.MakeVector2(0, 0)))
	assert.Nil(t, f.FindPath(99, 0, vector.MakeVector2(0, 0)))
}

func TestFindPathReusableAcrossCalls(t *testing.T) {
	g := linearGraph(4)
	f, err := NewFinder(g)
	assert.NoError(t, err)

	first := f.FindPath(0, 3, vector.MakeVector2(30, 0))
	assert.NotEmpty(t, first)

	// A second call with different endpoints must not be polluted by the
	// first call's closed/open markers (the generation counter isolates it).
	second := f.FindPath(3, 0, vector.MakeVector2(0, 0))
	assert.NotEmpty(t, second)
	assert.Equal(t, vector.MakeVector2(0, 0), second[0])
}

func TestNewFinderRejectsOversizedGraph(t *testing.T) {
	zones := make([]*navmesh.Zone, MaxZones+1)
	for i := range zones {
		zones[i] = &navmesh.Zone{ID: uint16(i)}
	}
	_, err := NewFinder(&fakeGraph{zones: zones})
	assert.Error(t, err)
}
