package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyGraph is returned when trimming a graph with no nodes.
	ErrEmptyGraph = errors.New("graph has no nodes")

	// ErrIsolatedNode is returned when a node of the kept component has no
	// neighbor after remapping.
	ErrIsolatedNode = errors.New("node has no neighbors after trimming")
)

const noComponent = -1

// Components labels every node with a connected-component id, assigned by
// breadth-first flood fill from the lowest unvisited index. It returns the
// labels and the size of each component.
func Components(g *Graph) (labels []int32, sizes []int) {
	n := g.NumNodes()
	labels = make([]int32, n)
	for i := range labels {
		labels[i] = noComponent
	}

	var queue []Index
	for start := range n {
		if labels[start] != noComponent {
			continue
		}
		comp := int32(len(sizes))
		labels[start] = comp
		size := 0

		queue = append(queue[:0], Index(start))
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			size++
			for _, v := range g.nodes[u].Adj.Slice() {
				if labels[v] == noComponent {
					labels[v] = comp
					queue = append(queue, v)
				}
			}
		}
		sizes = append(sizes, size)
	}
	return labels, sizes
}

// LargestComponent returns the indices of the largest connected component in
// ascending order. Ties go to the component found first.
func LargestComponent(g *Graph) []Index {
	if g.NumNodes() == 0 {
		return nil
	}
	return largest(Components(g))
}

func largest(labels []int32, sizes []int) []Index {
	best := 0
	for c, size := range sizes {
		if size > sizes[best] {
			best = c
		}
	}

	nodes := make([]Index, 0, sizes[best])
	for i, c := range labels {
		if c == int32(best) {
			nodes = append(nodes, Index(i))
		}
	}
	return nodes
}

// FilterToComponent creates a new graph containing only the given nodes,
// renumbered densely in the order given. Adjacency entries pointing outside
// the set are dropped. Every kept node must retain a neighbor.
func FilterToComponent(g *Graph, keep []Index) (*Graph, error) {
	if len(keep) == 0 {
		return nil, ErrEmptyGraph
	}

	oldToNew := make(map[Index]Index, len(keep))
	for newIdx, oldIdx := range keep {
		oldToNew[oldIdx] = Index(newIdx)
	}

	nodes := make([]Node, len(keep))
	var buf []Index
	for newIdx, oldIdx := range keep {
		old := g.Node(oldIdx)
		buf = buf[:0]
		for _, v := range old.Adj.Slice() {
			if nv, ok := oldToNew[v]; ok {
				buf = append(buf, nv)
			}
		}
		if len(buf) == 0 {
			return nil, fmt.Errorf("%w: old index %d", ErrIsolatedNode, oldIdx)
		}
		nodes[newIdx] = Node{Loc: old.Loc, Adj: adjacencyFrom(buf)}
	}

	return New(nodes), nil
}

// TrimStats describes one Trim.
type TrimStats struct {
	Components int // connected components in the input
	Kept       int
	Discarded  int
}

// Trim reduces g to its largest connected component so that every pair of
// remaining nodes is mutually reachable.
func Trim(g *Graph) (*Graph, error) {
	trimmed, _, err := TrimWithStats(g)
	return trimmed, err
}

// TrimWithStats is Trim, also reporting what was discarded. The graph is
// labelled once.
func TrimWithStats(g *Graph) (*Graph, TrimStats, error) {
	if g.NumNodes() == 0 {
		return nil, TrimStats{}, ErrEmptyGraph
	}

	labels, sizes := Components(g)
	keep := largest(labels, sizes)
	stats := TrimStats{
		Components: len(sizes),
		Kept:       len(keep),
		Discarded:  g.NumNodes() - len(keep),
	}

	trimmed, err := FilterToComponent(g, keep)
	if err != nil {
		return nil, stats, err
	}
	return trimmed, stats, nil
}
