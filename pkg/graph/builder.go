package graph

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/paulmach/osm"

	"road_router/pkg/geo"
)

var (
	// ErrMalformedInput wraps any failure reported by a RecordSource.
	ErrMalformedInput = errors.New("malformed input")

	// ErrDegreeOverflow is returned when a node would exceed MaxDegree neighbors.
	ErrDegreeOverflow = errors.New("node degree exceeds limit")
)

// RecordSource yields raw map records. Each call makes one full pass over
// the underlying records; Build calls Ways twice and Nodes once.
type RecordSource interface {
	Ways(ctx context.Context, fn func(*osm.Way) error) error
	Nodes(ctx context.Context, fn func(*osm.Node) error) error
}

// WayFilter decides whether a way contributes edges.
type WayFilter func(osm.Tags) bool

// HasHighway accepts any way carrying a highway tag.
func HasHighway(tags osm.Tags) bool {
	return tags.Find("highway") != ""
}

// BuildOptions configures Build.
type BuildOptions struct {
	Filter WayFilter // nil means HasHighway
}

// Build constructs a Graph from raw way and node records.
//
// Only external ids referenced by a qualifying way are indexed, in the order
// the node pass encounters them. Each way [a0 .. ak] links consecutive refs
// as undirected edges; repeated edges across overlapping ways are kept.
// A ref with no coordinates breaks the way into separate runs.
//
// The result is not trimmed; see Trim.
func Build(ctx context.Context, src RecordSource, opts ...BuildOptions) (*Graph, error) {
	var opt BuildOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	filter := opt.Filter
	if filter == nil {
		filter = HasHighway
	}

	// Pass 1: collect ids referenced by qualifying ways.
	referenced := make(map[osm.NodeID]struct{})
	numWays := 0
	err := src.Ways(ctx, func(w *osm.Way) error {
		if !filter(w.Tags) || len(w.Nodes) < 2 {
			return nil
		}
		numWays++
		for _, wn := range w.Nodes {
			referenced[wn.ID] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: pass 1 (ways): %w", ErrMalformedInput, err)
	}
	log.Printf("Pass 1 complete: %d ways, %d referenced nodes", numWays, len(referenced))

	// Pass 2: assign dense indices in node encounter order.
	index := make(map[osm.NodeID]Index, len(referenced))
	nodes := make([]Node, 0, len(referenced))
	err = src.Nodes(ctx, func(n *osm.Node) error {
		if _, needed := referenced[n.ID]; !needed {
			return nil
		}
		if _, seen := index[n.ID]; seen {
			return nil
		}
		index[n.ID] = Index(len(nodes))
		nodes = append(nodes, Node{Loc: geo.Location{Lat: n.Lat, Lon: n.Lon}})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: pass 2 (nodes): %w", ErrMalformedInput, err)
	}
	if missing := len(referenced) - len(nodes); missing > 0 {
		log.Printf("Warning: %d referenced nodes have no coordinates", missing)
	}
	log.Printf("Pass 2 complete: %d nodes indexed", len(nodes))

	// Pass 3: link consecutive refs.
	run := make([]Index, 0, 64)
	err = src.Ways(ctx, func(w *osm.Way) error {
		if !filter(w.Tags) || len(w.Nodes) < 2 {
			return nil
		}
		run = run[:0]
		for _, wn := range w.Nodes {
			idx, ok := index[wn.ID]
			if !ok {
				if err := linkRun(nodes, run); err != nil {
					return err
				}
				run = run[:0]
				continue
			}
			run = append(run, idx)
		}
		return linkRun(nodes, run)
	})
	if err != nil {
		if errors.Is(err, ErrDegreeOverflow) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: pass 3 (ways): %w", ErrMalformedInput, err)
	}

	g := New(nodes)
	log.Printf("Pass 3 complete: %d nodes, %d adjacency entries", g.NumNodes(), g.NumAdjacencyEntries())
	return g, nil
}

// linkRun appends the edges of one contiguous run of resolved refs.
// Interior nodes get both neighbors in one growth; endpoints get one.
func linkRun(nodes []Node, run []Index) error {
	k := len(run) - 1
	if k < 1 {
		return nil
	}
	for i, idx := range run {
		adj := &nodes[idx].Adj
		switch i {
		case 0:
			if err := checkDegree(idx, adj, 1); err != nil {
				return err
			}
			adj.Push(run[1])
		case k:
			if err := checkDegree(idx, adj, 1); err != nil {
				return err
			}
			adj.Push(run[k-1])
		default:
			if err := checkDegree(idx, adj, 2); err != nil {
				return err
			}
			adj.PushPair(run[i-1], run[i+1])
		}
	}
	return nil
}

func checkDegree(idx Index, adj *Adjacency, add int) error {
	if adj.Len()+add > MaxDegree {
		return fmt.Errorf("%w: node %d would have %d neighbors (max %d)", ErrDegreeOverflow, idx, adj.Len()+add, MaxDegree)
	}
	return nil
}

// SliceSource is an in-memory RecordSource.
type SliceSource struct {
	WayRecords  []*osm.Way
	NodeRecords []*osm.Node
}

// Ways calls fn for every way, stopping at the first error.
func (s *SliceSource) Ways(ctx context.Context, fn func(*osm.Way) error) error {
	for _, w := range s.WayRecords {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(w); err != nil {
			return err
		}
	}
	return nil
}

// Nodes calls fn for every node, stopping at the first error.
func (s *SliceSource) Nodes(ctx context.Context, fn func(*osm.Node) error) error {
	for _, n := range s.NodeRecords {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(n); err != nil {
			return err
		}
	}
	return nil
}
