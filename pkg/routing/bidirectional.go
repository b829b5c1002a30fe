package routing

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"road_router/pkg/graph"
)

// FindPathBidirectional runs two A* searches concurrently, one from each end,
// and stitches them at the first node both have reached. ok is false when no
// such node exists. It panics if either index is out of range.
//
// The meeting node depends on goroutine scheduling, so repeated calls may
// return different (always valid) paths.
func FindPathBidirectional(g *graph.Graph, origin, goal graph.Index) (path *Path, ok bool) {
	path, ok, _ = FindPathBidirectionalContext(context.Background(), g, origin, goal)
	return path, ok
}

// FindPathBidirectionalContext is FindPathBidirectional with cancellation.
// err is non-nil only when ctx ends first.
func FindPathBidirectionalContext(ctx context.Context, g *graph.Graph, origin, goal graph.Index) (path *Path, ok bool, err error) {
	fwd := newSearch(g, origin, goal)
	bwd := newSearch(g, goal, origin)

	c := newCoordinator()
	go c.run()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error { return explore(egCtx, fwd, c) })
	eg.Go(func() error { return explore(egCtx, bwd, c) })

	werr := eg.Wait()
	close(c.in)
	m := <-c.result

	if werr != nil {
		return nil, false, werr
	}
	if !m.found {
		return nil, false, nil
	}
	return newPath(g, stitch(fwd.track, bwd.track, m.split)), true, nil
}

// explore runs one side of the bidirectional search. The worker announces its
// own origin first so that the coordinator can meet on an endpoint.
func explore(ctx context.Context, s *search, c *coordinator) error {
	if !c.send(ctx, s.origin) {
		return ctx.Err()
	}
	_, err := s.run(ctx, func(idx graph.Index) bool {
		return c.send(ctx, idx)
	})
	if err != nil {
		return err
	}
	return ctx.Err()
}

// stitch joins the origin-side chain (origin..split) with the goal-side chain
// (split..goal), keeping split once.
func stitch(fwdTrack, bwdTrack map[graph.Index]graph.Index, split graph.Index) []graph.Index {
	nodes := traceBack(fwdTrack, split)
	slices.Reverse(nodes)
	back := traceBack(bwdTrack, split)
	return append(nodes, back[1:]...)
}
