package routing

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"road_router/pkg/geo"
	"road_router/pkg/graph"
)

// buildGraph creates a graph from explicit locations and undirected edges.
func buildGraph(locs []geo.Location, edges [][2]graph.Index) *graph.Graph {
	nodes := make([]graph.Node, len(locs))
	for i, l := range locs {
		nodes[i].Loc = l
	}
	for _, e := range edges {
		nodes[e[0]].Adj.Push(e[1])
		nodes[e[1]].Adj.Push(e[0])
	}
	return graph.New(nodes)
}

// lineGraph is 0 - 1 - 2 - 3 along a meridian.
func lineGraph() *graph.Graph {
	return buildGraph(
		[]geo.Location{{Lat: 45.000, Lon: -93}, {Lat: 45.001, Lon: -93}, {Lat: 45.002, Lon: -93}, {Lat: 45.003, Lon: -93}},
		[][2]graph.Index{{0, 1}, {1, 2}, {2, 3}},
	)
}

// gridGraph is a w × h lattice with 0.001° spacing; node r*w+c sits at row r,
// column c.
func gridGraph(w, h int) *graph.Graph {
	locs := make([]geo.Location, 0, w*h)
	var edges [][2]graph.Index
	for r := range h {
		for c := range w {
			locs = append(locs, geo.Location{Lat: 45 + float64(r)*0.001, Lon: -93 + float64(c)*0.001})
			idx := graph.Index(r*w + c)
			if c > 0 {
				edges = append(edges, [2]graph.Index{idx - 1, idx})
			}
			if r > 0 {
				edges = append(edges, [2]graph.Index{idx - graph.Index(w), idx})
			}
		}
	}
	return buildGraph(locs, edges)
}

// assertValidPath checks endpoints and that every hop is a graph edge.
func assertValidPath(t *testing.T, g *graph.Graph, p *Path, origin, goal graph.Index) {
	t.Helper()
	require.NotNil(t, p)
	nodes := p.Nodes()
	require.NotEmpty(t, nodes)
	assert.Equal(t, origin, nodes[0], "first node")
	assert.Equal(t, goal, nodes[len(nodes)-1], "last node")
	for i := 1; i < len(nodes); i++ {
		assert.True(t, slices.Contains(g.Neighbors(nodes[i-1]), nodes[i]),
			"hop %d -> %d is not an edge", nodes[i-1], nodes[i])
	}
}

func TestFrontierPopsLowestF(t *testing.T) {
	var q frontier
	for i, f := range []float64{7, 3, 9, 1, 5, 3, 8} {
		q.push(graph.Index(i), f)
	}

	var order []graph.Index
	for q.len() > 0 {
		order = append(order, q.pop())
	}
	require.Len(t, order, 7)
	assert.Equal(t, graph.Index(3), order[0])
	assert.ElementsMatch(t, []graph.Index{1, 5}, order[1:3])
	assert.Equal(t, []graph.Index{4, 0, 6, 2}, order[3:])
}

func TestFindPathLine(t *testing.T) {
	g := lineGraph()

	p, ok := FindPath(g, 0, 3)
	require.True(t, ok)
	assert.Equal(t, []graph.Index{0, 1, 2, 3}, p.Nodes())
	assert.Equal(t, 4, p.Len())
	assert.Equal(t, graph.Index(0), p.Origin())
	assert.Equal(t, graph.Index(3), p.Destination())
	assert.Same(t, g, p.Graph())
}

func TestFindPathSameNode(t *testing.T) {
	g := lineGraph()

	p, ok := FindPath(g, 2, 2)
	require.True(t, ok)
	assert.Equal(t, []graph.Index{2}, p.Nodes())
	assert.Zero(t, p.LengthMiles())
}

func TestFindPathPrefersShorterBranch(t *testing.T) {
	//   1
	//  / \
	// 0   3      0-2-3 is a straight line, 0-1-3 a detour
	//  \ /
	//   2
	g := buildGraph(
		[]geo.Location{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1}, {Lat: 0, Lon: 1}, {Lat: 0, Lon: 2}},
		[][2]graph.Index{{0, 1}, {1, 3}, {0, 2}, {2, 3}},
	)

	p, ok := FindPath(g, 0, 3)
	require.True(t, ok)
	assert.Equal(t, []graph.Index{0, 2, 3}, p.Nodes())
}

func TestFindPathGrid(t *testing.T) {
	g := gridGraph(6, 5)

	for origin := range graph.Index(g.NumNodes()) {
		for goal := range graph.Index(g.NumNodes()) {
			p, ok := FindPath(g, origin, goal)
			require.True(t, ok, "origin=%d goal=%d", origin, goal)
			assertValidPath(t, g, p, origin, goal)
		}
	}
}

func TestFindPathIdempotent(t *testing.T) {
	g := gridGraph(8, 8)

	first, ok := FindPath(g, 0, 63)
	require.True(t, ok)
	for range 5 {
		again, ok := FindPath(g, 0, 63)
		require.True(t, ok)
		assert.InDelta(t, first.LengthMiles(), again.LengthMiles(), 1e-12)
	}
}

func TestFindPathDisconnected(t *testing.T) {
	// 0-1 and 2-3 are separate components.
	g := buildGraph(
		[]geo.Location{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 5, Lon: 5}, {Lat: 5, Lon: 6}},
		[][2]graph.Index{{0, 1}, {2, 3}},
	)

	p, ok := FindPath(g, 0, 3)
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestFindPathOutOfRangePanics(t *testing.T) {
	g := lineGraph()

	assert.Panics(t, func() { FindPath(g, 0, 4) })
	assert.Panics(t, func() { FindPath(g, 9, 0) })
}

func TestFindPathContextCanceled(t *testing.T) {
	// The goal is unreachable, so the search exhausts the whole grid and
	// must notice the cancellation on the way.
	g := gridGraph(20, 20)
	nodes := make([]graph.Node, g.NumNodes()+1)
	for i := range g.NumNodes() {
		nodes[i] = *g.Node(graph.Index(i))
	}
	g = graph.New(nodes)
	goal := graph.Index(g.NumNodes() - 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, ok, err := FindPathContext(ctx, g, 0, goal)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestTrimmedGraphDiscardedIndexPanics(t *testing.T) {
	// 0-1-2 survives trimming, 3-4 does not.
	g := buildGraph(
		[]geo.Location{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 0, Lon: 2}, {Lat: 9, Lon: 9}, {Lat: 9, Lon: 10}},
		[][2]graph.Index{{0, 1}, {1, 2}, {3, 4}},
	)
	trimmed, err := graph.Trim(g)
	require.NoError(t, err)

	assert.Panics(t, func() { FindPath(trimmed, 0, 4) })
	assert.Panics(t, func() { FindPathBidirectional(trimmed, 0, 4) })

	p, ok := FindPath(trimmed, 0, 2)
	require.True(t, ok)
	assert.Equal(t, []graph.Index{0, 1, 2}, p.Nodes())
}

func BenchmarkFindPath(b *testing.B) {
	g := gridGraph(50, 50)
	for b.Loop() {
		FindPath(g, 0, graph.Index(g.NumNodes()-1))
	}
}
