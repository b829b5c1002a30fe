package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"road_router/pkg/geo"
)

// fromEdges builds a graph with n nodes at (0, i) and the given undirected edges.
func fromEdges(n int, edges [][2]Index) *Graph {
	nodes := make([]Node, n)
	for i := range nodes {
		nodes[i].Loc = geo.Location{Lat: 0, Lon: float64(i)}
	}
	for _, e := range edges {
		nodes[e[0]].Adj.Push(e[1])
		nodes[e[1]].Adj.Push(e[0])
	}
	return New(nodes)
}

func TestComponents(t *testing.T) {
	// 0-1-2, 3-4, 5 isolated.
	g := fromEdges(6, [][2]Index{{0, 1}, {1, 2}, {3, 4}})

	labels, sizes := Components(g)
	assert.Equal(t, []int{3, 2, 1}, sizes)
	assert.Equal(t, []int32{0, 0, 0, 1, 1, 2}, labels)
}

func TestLargestComponent(t *testing.T) {
	// Component 1: 0-1 (2 nodes); component 2: 2-3-4 (3 nodes).
	g := fromEdges(5, [][2]Index{{0, 1}, {2, 3}, {3, 4}})

	nodes := LargestComponent(g)
	assert.Equal(t, []Index{2, 3, 4}, nodes)
}

func TestLargestComponentTieKeepsFirst(t *testing.T) {
	g := fromEdges(4, [][2]Index{{0, 1}, {2, 3}})
	assert.Equal(t, []Index{0, 1}, LargestComponent(g))
}

func TestTrimKeepsLargestComponent(t *testing.T) {
	// Triangle 1-3-5 plus pair 0-2 plus isolated 4.
	g := fromEdges(6, [][2]Index{{1, 3}, {3, 5}, {5, 1}, {0, 2}})

	trimmed, err := Trim(g)
	require.NoError(t, err)
	require.Equal(t, 3, trimmed.NumNodes())

	// Old 1, 3, 5 become 0, 1, 2.
	assert.Equal(t, g.Location(1), trimmed.Location(0))
	assert.Equal(t, g.Location(3), trimmed.Location(1))
	assert.Equal(t, g.Location(5), trimmed.Location(2))
	assert.ElementsMatch(t, []Index{1, 2}, trimmed.Neighbors(0))
	assert.ElementsMatch(t, []Index{0, 2}, trimmed.Neighbors(1))
	assert.ElementsMatch(t, []Index{1, 0}, trimmed.Neighbors(2))

	assertSingleComponent(t, trimmed)
}

func TestTrimWithStats(t *testing.T) {
	// Triangle 1-3-5, pair 0-2, isolated 4: three components.
	g := fromEdges(6, [][2]Index{{1, 3}, {3, 5}, {5, 1}, {0, 2}})

	trimmed, stats, err := TrimWithStats(g)
	require.NoError(t, err)
	assert.Equal(t, TrimStats{Components: 3, Kept: 3, Discarded: 3}, stats)
	assert.Equal(t, 3, trimmed.NumNodes())

	_, stats, err = TrimWithStats(New(nil))
	assert.ErrorIs(t, err, ErrEmptyGraph)
	assert.Zero(t, stats)
}

func TestTrimDiscardedIndexIsOutOfRange(t *testing.T) {
	g := fromEdges(5, [][2]Index{{0, 1}, {1, 2}, {3, 4}})

	trimmed, err := Trim(g)
	require.NoError(t, err)
	require.Equal(t, 3, trimmed.NumNodes())

	assert.False(t, trimmed.Contains(4))
	assert.Panics(t, func() { trimmed.Node(4) })
}

func TestTrimOnlyIsolatedNodes(t *testing.T) {
	g := fromEdges(3, nil)

	_, err := Trim(g)
	assert.ErrorIs(t, err, ErrIsolatedNode)
}

func TestTrimEmptyGraph(t *testing.T) {
	_, err := Trim(New(nil))
	assert.ErrorIs(t, err, ErrEmptyGraph)

	assert.Nil(t, LargestComponent(New(nil)))
}

func TestFilterToComponentDetectsStrandedNode(t *testing.T) {
	// Keeping 0 without its only neighbor 1 leaves 0 isolated.
	g := fromEdges(3, [][2]Index{{0, 1}, {1, 2}})

	_, err := FilterToComponent(g, []Index{0, 2})
	assert.ErrorIs(t, err, ErrIsolatedNode)
}

func assertSingleComponent(t *testing.T, g *Graph) {
	t.Helper()
	_, sizes := Components(g)
	require.Len(t, sizes, 1)
	for i := range g.NumNodes() {
		assert.NotZero(t, g.Node(Index(i)).Adj.Len(), "node %d has no neighbors", i)
	}
}
