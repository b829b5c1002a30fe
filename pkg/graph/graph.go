package graph

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/tidwall/rtree"

	"road_router/pkg/geo"
)

// Index is a dense, zero-based node index into a Graph.
type Index uint32

// Node is a graph vertex: its coordinates and its neighbor list.
type Node struct {
	Loc geo.Location
	Adj Adjacency
}

// Graph is an index-addressed, read-only road graph. Indices are contiguous
// in [0, NumNodes). After construction nothing mutates it, so any number of
// searches may share one Graph without locking.
type Graph struct {
	nodes []Node

	spatialOnce sync.Once
	spatial     *rtree.RTreeG[Index] // nodes with at least one neighbor
}

// New wraps nodes as a Graph. Every adjacency entry must be a valid index
// into nodes; New panics otherwise.
func New(nodes []Node) *Graph {
	n := uint64(len(nodes))
	for i := range nodes {
		for _, v := range nodes[i].Adj.Slice() {
			if uint64(v) >= n {
				panic(fmt.Sprintf("graph: node %d has neighbor %d >= NumNodes %d", i, v, n))
			}
		}
	}
	return &Graph{nodes: nodes}
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// Contains reports whether i is a valid index.
func (g *Graph) Contains(i Index) bool { return int(i) < len(g.nodes) }

// Node returns the node at i. It panics if i is out of range.
func (g *Graph) Node(i Index) *Node {
	if !g.Contains(i) {
		panic(fmt.Sprintf("graph: index %d out of range [0, %d)", i, len(g.nodes)))
	}
	return &g.nodes[i]
}

// Location returns the coordinates of node i.
func (g *Graph) Location(i Index) geo.Location { return g.Node(i).Loc }

// Neighbors returns the neighbor list of node i. Callers must not modify it.
func (g *Graph) Neighbors(i Index) []Index { return g.Node(i).Adj.Slice() }

// NumAdjacencyEntries returns the total number of stored neighbor entries.
// Each undirected edge counts twice, duplicates included.
func (g *Graph) NumAdjacencyEntries() int {
	total := 0
	for i := range g.nodes {
		total += g.nodes[i].Adj.Len()
	}
	return total
}

// Nearest returns the node with the smallest squared distance to loc among
// nodes that have at least one neighbor. ok is false if there is no such node.
func (g *Graph) Nearest(loc geo.Location) (idx Index, ok bool) {
	g.spatialOnce.Do(g.buildSpatial)

	p := loc.Point()
	g.spatial.Nearby(
		rtree.BoxDist[float64, Index](p, p, nil),
		func(_, _ [2]float64, data Index, _ float64) bool {
			idx, ok = data, true
			return false
		},
	)
	return idx, ok
}

func (g *Graph) buildSpatial() {
	tr := &rtree.RTreeG[Index]{}
	for i := range g.nodes {
		if g.nodes[i].Adj.Len() == 0 {
			continue
		}
		p := g.nodes[i].Loc.Point()
		tr.Insert(p, p, Index(i))
	}
	g.spatial = tr
}

// Sample returns a uniformly random node index. It panics on an empty graph.
func (g *Graph) Sample(rng *rand.Rand) Index {
	if len(g.nodes) == 0 {
		panic("graph: Sample on empty graph")
	}
	return Index(rng.IntN(len(g.nodes)))
}

// Bounds returns the bounding box of every node.
func (g *Graph) Bounds() geo.Bounds {
	b := geo.EmptyBounds()
	for i := range g.nodes {
		b.Extend(g.nodes[i].Loc)
	}
	return b
}
