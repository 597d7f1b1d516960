// Package pathfind implements a bounded A* pathfinder over the zone
// adjacency graph built by package navmesh.
package pathfind

import (
	"container/heap"
	"math"

	"github.com/bytearena/botnav/internal/naverr"
	"github.com/bytearena/botnav/navmesh"
)

// MaxZones is the hard cap on the zone graph size the pathfinder will
// operate on; exceeding it fails the build rather than silently truncating
// the per-zone state arrays.
const MaxZones = 10000

// Graph is the read-only view of the zone adjacency graph the pathfinder
// walks. *navmesh.ZoneStore already satisfies this.
type Graph interface {
	Zone(id uint16) (*navmesh.Zone, bool)
	Count() int
}

// Finder holds the per-zone open/closed bookkeeping across calls, reusing
// it via a generation counter instead of reallocating or zeroing the state
// arrays on every call; the counter resets and the arrays are cleared once
// it would overflow.
type Finder struct {
	graph      Graph
	generation uint32

	gScore     []float64
	fScore     []float64
	parentEdge []int // index into parent zone's Neighbors, or -1
	parentZone []int32
	state      []zoneState // generation stamp + which-list marker
	seq        []uint32    // push sequence, for the LIFO tie-break
}

type listMarker uint8

const (
	markerNone listMarker = iota
	markerOpen
	markerClosed
)

type zoneState struct {
	generation uint32
	marker     listMarker
}

// NewFinder allocates state sized to the graph's current zone count
// (capped at MaxZones).
func NewFinder(graph Graph) (*Finder, error) {
	n := graph.Count()
	if n > MaxZones {
		return nil, naverr.New(naverr.NavmeshTooComplex, "zone graph exceeds MAX_ZONES")
	}
	return &Finder{
		graph:      graph,
		gScore:     make([]float64, n),
		fScore:     make([]float64, n),
		parentEdge: make([]int, n),
		parentZone: make([]int32, n),
		state:      make([]zoneState, n),
		seq:        make([]uint32, n),
	}, nil
}

type openItem struct {
	zoneID uint16
	f      float64
	seq    uint32
	index  int
}

type openHeap []*openItem

func (h openHeap) Len() int { return len(h) }
func (h openHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	// LIFO tie-break: the more recently pushed item (higher seq) wins.
	return h[i].seq > h[j].seq
}
func (h openHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *openHeap) Push(x any) {
	item := x.(*openItem)
	item.index = len(*h)
	*h = append(*h, item)
}
func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// FindPath runs A* from startZoneID to goalZoneID and returns the waypoint
// list with goalPoint first and start_zone.centroid last, meant to be
// consumed by the caller from the back. Returns an empty slice if no path
// exists.
func (f *Finder) FindPath(startZoneID, goalZoneID uint16, goalPoint navmesh.Point) []navmesh.Point {
	n := len(f.state)
	if int(startZoneID) >= n || int(goalZoneID) >= n {
		return nil
	}

	f.generation++
	if f.generation == 0 {
		// Wrapped: every stale stamp is now indistinguishable from fresh,
		// so clear the arrays and restart numbering at 1.
		for i := range f.state {
			f.state[i] = zoneState{}
		}
		f.generation = 1
	}

	var nextSeq uint32

	startZone, ok := f.graph.Zone(startZoneID)
	if !ok {
		return nil
	}
	goalZone, ok := f.graph.Zone(goalZoneID)
	if !ok {
		return nil
	}

	open := &openHeap{}
	heap.Init(open)

	f.setOpen(startZoneID, 0, f.heuristic(startZone, goalZone))
	f.parentZone[startZoneID] = -1
	heap.Push(open, &openItem{zoneID: startZoneID, f: f.fScore[startZoneID], seq: nextSeq})
	nextSeq++

	for open.Len() > 0 {
		current := heap.Pop(open).(*openItem)

		st := &f.state[current.zoneID]
		if st.generation != f.generation || st.marker == markerClosed {
			continue
		}
		st.marker = markerClosed

		if current.zoneID == goalZoneID {
			return f.reconstruct(startZoneID, goalZoneID, goalPoint)
		}

		zone, _ := f.graph.Zone(current.zoneID)
		for edgeIdx, edge := range zone.Neighbors {
			neighborID := edge.TargetZoneID
			nst := &f.state[neighborID]
			tentativeG := f.gScore[current.zoneID] + float64(edge.Cost)

			if nst.generation != f.generation {
				*nst = zoneState{generation: f.generation, marker: markerNone}
			}
			if nst.marker == markerClosed && tentativeG >= f.gScore[neighborID] {
				continue
			}
			if nst.marker == markerOpen && tentativeG >= f.gScore[neighborID] {
				continue
			}

			neighborZone, _ := f.graph.Zone(neighborID)
			h := f.heuristic(neighborZone, goalZone)
			f.setOpen(neighborID, tentativeG, tentativeG+h)
			f.parentZone[neighborID] = int32(current.zoneID)
			f.parentEdge[neighborID] = edgeIdx

			heap.Push(open, &openItem{zoneID: neighborID, f: f.fScore[neighborID], seq: nextSeq})
			nextSeq++
		}
	}

	return nil
}

func (f *Finder) setOpen(zoneID uint16, g, fScore float64) {
	f.gScore[zoneID] = g
	f.fScore[zoneID] = fScore
	f.state[zoneID] = zoneState{generation: f.generation, marker: markerOpen}
}

func (f *Finder) heuristic(a, b *navmesh.Zone) float64 {
	return a.Centroid.Distance(b.Centroid)
}

// reconstruct walks parent[] from goal back to start, emitting
// goal_point, goal_zone.centroid, then (border_center, parent.centroid)
// pairs for every step up to start_zone.centroid. The caller is expected
// to consume the result from the back (closest to the bot first) — this
// function does not reverse it.
func (f *Finder) reconstruct(startZoneID, goalZoneID uint16, goalPoint navmesh.Point) []navmesh.Point {
	goalZone, _ := f.graph.Zone(goalZoneID)
	startZone, _ := f.graph.Zone(startZoneID)

	points := []navmesh.Point{goalPoint, goalZone.Centroid}

	child := goalZoneID
	for child != startZoneID {
		parentID := f.parentZone[child]
		if parentID < 0 {
			break
		}
		parentZone, _ := f.graph.Zone(uint16(parentID))
		edge := parentZone.Neighbors[f.parentEdge[child]]
		points = append(points, edge.BorderCenter, parentZone.Centroid)
		child = uint16(parentID)
	}

	_ = startZone
	return points
}

// straightLineDistance returns the Euclidean distance between a and b. The
// heuristic method computes the same value through Vector2.Distance and
// does not call it.
func straightLineDistance(a, b navmesh.Point) float64 {
	dx := a.GetX() - b.GetX()
	dy := a.GetY() - b.GetY()
	return math.Sqrt(dx*dx + dy*dy)
}
