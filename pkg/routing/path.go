package routing

import (
	"road_router/pkg/geo"
	"road_router/pkg/graph"
)

// Path is an ordered node sequence from origin to destination, inclusive,
// bound to the graph that gives the indices their coordinates. It is not
// modified after construction.
type Path struct {
	g     *graph.Graph
	nodes []graph.Index
}

func newPath(g *graph.Graph, nodes []graph.Index) *Path {
	return &Path{g: g, nodes: nodes}
}

// NewPath wraps an existing node sequence. Every index must be valid in g.
func NewPath(g *graph.Graph, nodes []graph.Index) *Path {
	for _, n := range nodes {
		mustContain(g, n)
	}
	return newPath(g, nodes)
}

// Graph returns the graph the path indexes into.
func (p *Path) Graph() *graph.Graph { return p.g }

// Nodes returns the node sequence. Callers must not modify it.
func (p *Path) Nodes() []graph.Index { return p.nodes }

// Len returns the number of nodes.
func (p *Path) Len() int { return len(p.nodes) }

// Origin returns the first node.
func (p *Path) Origin() graph.Index { return p.nodes[0] }

// Destination returns the last node.
func (p *Path) Destination() graph.Index { return p.nodes[len(p.nodes)-1] }

// Locations returns the coordinates of every node in order.
func (p *Path) Locations() []geo.Location {
	locs := make([]geo.Location, len(p.nodes))
	for i, n := range p.nodes {
		locs[i] = p.g.Location(n)
	}
	return locs
}

// LengthMiles sums the planar hop lengths and scales them by
// geo.DegreesToMiles.
func (p *Path) LengthMiles() float64 {
	var total float64
	for i := 1; i < len(p.nodes); i++ {
		total += geo.Dist(p.g.Location(p.nodes[i-1]), p.g.Location(p.nodes[i]))
	}
	return total * geo.DegreesToMiles
}

// LengthMeters sums the great-circle hop lengths.
func (p *Path) LengthMeters() float64 {
	var total float64
	for i := 1; i < len(p.nodes); i++ {
		total += geo.HaversineLoc(p.g.Location(p.nodes[i-1]), p.g.Location(p.nodes[i]))
	}
	return total
}

// Bounds returns the bounding box of the path.
func (p *Path) Bounds() geo.Bounds {
	b := geo.EmptyBounds()
	for _, n := range p.nodes {
		b.Extend(p.g.Location(n))
	}
	return b
}
