package routing

import (
	"context"
	"fmt"
	"math"
	"slices"

	"road_router/pkg/geo"
	"road_router/pkg/graph"
)

// ctxCheckInterval is how many pops pass between context checks.
const ctxCheckInterval = 100

// search is the state of one A* exploration from origin toward goal.
type search struct {
	g       *graph.Graph
	origin  graph.Index
	goal    graph.Index
	goalLoc geo.Location

	gScore map[graph.Index]float64     // best known cost from origin
	track  map[graph.Index]graph.Index // predecessor on the best known path
	open   frontier
}

func newSearch(g *graph.Graph, origin, goal graph.Index) *search {
	mustContain(g, origin)
	mustContain(g, goal)
	s := &search{
		g:       g,
		origin:  origin,
		goal:    goal,
		goalLoc: g.Location(goal),
		gScore:  make(map[graph.Index]float64),
		track:   make(map[graph.Index]graph.Index),
	}
	s.gScore[origin] = 0
	// Only element in the heap, so any key pops first.
	s.open.push(origin, math.MaxFloat64)
	return s
}

// run expands the frontier until the goal is popped (reached is true), the
// frontier empties, or discover returns false. discover, if set, is called
// once for every node the first time it gets a predecessor.
func (s *search) run(ctx context.Context, discover func(graph.Index) bool) (reached bool, err error) {
	pops := 0
	for s.open.len() > 0 {
		pops++
		if pops%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return false, err
			}
		}

		u := s.open.pop()
		if u == s.goal {
			return true, nil
		}

		uScore := s.gScore[u]
		uLoc := s.g.Location(u)

		for _, v := range s.g.Neighbors(u) {
			vLoc := s.g.Location(v)
			tentative := uScore + geo.Dist2(uLoc, vLoc)

			prev, seen := s.gScore[v]
			if seen && tentative >= prev {
				continue
			}
			s.gScore[v] = tentative
			s.track[v] = u

			if !seen && discover != nil && !discover(v) {
				return false, nil
			}

			s.open.push(v, tentative+geo.Dist2(vLoc, s.goalLoc))
		}
	}
	return false, nil
}

// traceBack returns the predecessor chain from node back to the origin,
// node first.
func traceBack(track map[graph.Index]graph.Index, node graph.Index) []graph.Index {
	chain := []graph.Index{node}
	for {
		prev, ok := track[node]
		if !ok {
			return chain
		}
		chain = append(chain, prev)
		node = prev
	}
}

// FindPath runs A* from origin to goal. ok is false when goal is not
// reachable. It panics if either index is out of range.
func FindPath(g *graph.Graph, origin, goal graph.Index) (path *Path, ok bool) {
	path, ok, _ = FindPathContext(context.Background(), g, origin, goal)
	return path, ok
}

// FindPathContext is FindPath with cancellation. err is non-nil only when
// ctx ends first; an unreachable goal is (nil, false, nil).
func FindPathContext(ctx context.Context, g *graph.Graph, origin, goal graph.Index) (path *Path, ok bool, err error) {
	s := newSearch(g, origin, goal)
	reached, err := s.run(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	if !reached {
		return nil, false, nil
	}

	nodes := traceBack(s.track, goal)
	slices.Reverse(nodes)
	return newPath(g, nodes), true, nil
}

func mustContain(g *graph.Graph, i graph.Index) {
	if !g.Contains(i) {
		panic(fmt.Sprintf("routing: node index %d out of range [0, %d)", i, g.NumNodes()))
	}
}
