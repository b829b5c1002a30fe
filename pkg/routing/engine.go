package routing

import (
	"context"
	"errors"
	"fmt"

	"road_router/pkg/geo"
	"road_router/pkg/graph"
)

// ErrNoRoute is returned when no route exists between the two points.
var ErrNoRoute = errors.New("no route found")

// ErrPointTooFar is returned when the query point is too far from any road.
var ErrPointTooFar = errors.New("point too far from road")

// ErrUnknownSearch is returned by ParseSearch for an unrecognized name.
var ErrUnknownSearch = errors.New("unknown search")

const defaultMaxSnapMeters = 500.0

// EndpointError names the query point that could not be snapped.
type EndpointError struct {
	Endpoint string // "start" or "end"
	Err      error
}

func (e *EndpointError) Error() string { return e.Endpoint + ": " + e.Err.Error() }

func (e *EndpointError) Unwrap() error { return e.Err }

// Search selects the path search a query runs.
type Search uint8

const (
	SearchDefault       Search = iota // whatever the Engine was configured with
	SearchAStar                       // FindPathContext
	SearchBidirectional               // FindPathBidirectionalContext
)

func (s Search) String() string {
	switch s {
	case SearchDefault:
		return "default"
	case SearchAStar:
		return "astar"
	case SearchBidirectional:
		return "bidirectional"
	}
	return fmt.Sprintf("Search(%d)", uint8(s))
}

// ParseSearch maps a name to a Search. The empty string is SearchDefault.
func ParseSearch(name string) (Search, error) {
	switch name {
	case "", "default":
		return SearchDefault, nil
	case "astar":
		return SearchAStar, nil
	case "bidirectional":
		return SearchBidirectional, nil
	}
	return SearchDefault, fmt.Errorf("%w: %q", ErrUnknownSearch, name)
}

// LatLng represents a geographic coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

func (ll LatLng) location() geo.Location {
	return geo.Location{Lat: ll.Lat, Lon: ll.Lng}
}

// Query is one routing request.
type Query struct {
	Start, End LatLng
	Search     Search
}

// RouteResult is the output of a route query.
type RouteResult struct {
	Search Search // the search that actually ran, never SearchDefault

	Origin           graph.Index // snapped start node
	Destination      graph.Index // snapped end node
	OriginSnapMeters float64
	GoalSnapMeters   float64

	DistanceMiles  float64
	DistanceMeters float64
	NodeCount      int
	Geometry       []LatLng
}

// Router is the interface for route queries.
type Router interface {
	Route(ctx context.Context, q Query) (*RouteResult, error)
}

// EngineOptions configures an Engine.
type EngineOptions struct {
	Search        Search  // used when a query asks for SearchDefault; 0 means A*
	MaxSnapMeters float64 // 0 means 500 m
}

// Engine implements Router over a trimmed graph.
type Engine struct {
	g    *graph.Graph
	opts EngineOptions
}

// NewEngine creates a routing engine over g.
func NewEngine(g *graph.Graph, opts ...EngineOptions) *Engine {
	var opt EngineOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.Search == SearchDefault {
		opt.Search = SearchAStar
	}
	if opt.MaxSnapMeters <= 0 {
		opt.MaxSnapMeters = defaultMaxSnapMeters
	}
	return &Engine{g: g, opts: opt}
}

// Graph returns the graph the engine routes over.
func (e *Engine) Graph() *graph.Graph { return e.g }

// DefaultSearch returns the search used for SearchDefault queries.
func (e *Engine) DefaultSearch() Search { return e.opts.Search }

// Snap returns the node nearest to ll and its great-circle distance, or
// ErrPointTooFar if that node lies farther than the configured snap distance.
func (e *Engine) Snap(ll LatLng) (graph.Index, float64, error) {
	idx, ok := e.g.Nearest(ll.location())
	if !ok {
		return 0, 0, ErrPointTooFar
	}
	meters := geo.HaversineLoc(ll.location(), e.g.Location(idx))
	if meters > e.opts.MaxSnapMeters {
		return 0, 0, fmt.Errorf("%w: %.0f m to node %d", ErrPointTooFar, meters, idx)
	}
	return idx, meters, nil
}

// Route snaps both points to their nearest nodes and searches between them.
func (e *Engine) Route(ctx context.Context, q Query) (*RouteResult, error) {
	search := q.Search
	if search == SearchDefault {
		search = e.opts.Search
	}

	from, fromMeters, err := e.Snap(q.Start)
	if err != nil {
		return nil, &EndpointError{Endpoint: "start", Err: err}
	}
	to, toMeters, err := e.Snap(q.End)
	if err != nil {
		return nil, &EndpointError{Endpoint: "end", Err: err}
	}

	var (
		path *Path
		ok   bool
	)
	switch search {
	case SearchAStar:
		path, ok, err = FindPathContext(ctx, e.g, from, to)
	case SearchBidirectional:
		path, ok, err = FindPathBidirectionalContext(ctx, e.g, from, to)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownSearch, search)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoRoute
	}

	locs := path.Locations()
	geometry := make([]LatLng, len(locs))
	for i, l := range locs {
		geometry[i] = LatLng{Lat: l.Lat, Lng: l.Lon}
	}

	return &RouteResult{
		Search:           search,
		Origin:           from,
		Destination:      to,
		OriginSnapMeters: fromMeters,
		GoalSnapMeters:   toMeters,
		DistanceMiles:    path.LengthMiles(),
		DistanceMeters:   path.LengthMeters(),
		NodeCount:        path.Len(),
		Geometry:         geometry,
	}, nil
}
