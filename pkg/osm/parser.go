package osm

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"road_router/pkg/geo"
	"road_router/pkg/graph"
)

// carHighways lists highway tag values accessible by car.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

// HasHighway accepts any way with a highway tag. It is the default filter.
func HasHighway(tags osm.Tags) bool {
	return graph.HasHighway(tags)
}

// IsCarAccessible returns true if the way is drivable by car.
func IsCarAccessible(tags osm.Tags) bool {
	hw := tags.Find("highway")
	if !carHighways[hw] {
		return false
	}

	// Skip area highways (pedestrian plazas).
	if tags.Find("area") == "yes" {
		return false
	}

	// Skip restricted access.
	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}
	if tags.Find("motor_vehicle") == "no" {
		return false
	}

	return true
}

// BBox defines a geographic bounding box for filtering nodes.
// The zero value disables filtering.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(lat, lng float64) bool {
	return geo.Bounds{
		Min: geo.Location{Lat: b.MinLat, Lon: b.MinLng},
		Max: geo.Location{Lat: b.MaxLat, Lon: b.MaxLng},
	}.Contains(geo.Location{Lat: lat, Lon: lng})
}

// PBFSource reads ways and nodes from an OSM PBF stream. Every pass seeks back
// to the start, so the reader must be seekable.
type PBFSource struct {
	rs    io.ReadSeeker
	procs int
	bbox  BBox
}

// SourceOptions configures a PBFSource.
type SourceOptions struct {
	Procs int  // decoder goroutines; 0 means runtime.GOMAXPROCS(0)
	BBox  BBox // if non-zero, nodes outside are dropped
}

// NewPBFSource returns a graph.RecordSource over rs.
func NewPBFSource(rs io.ReadSeeker, opts ...SourceOptions) *PBFSource {
	var opt SourceOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.Procs <= 0 {
		opt.Procs = runtime.GOMAXPROCS(0)
	}
	return &PBFSource{rs: rs, procs: opt.Procs, bbox: opt.BBox}
}

// Ways scans the stream for ways.
func (s *PBFSource) Ways(ctx context.Context, fn func(*osm.Way) error) error {
	return s.scan(ctx, "ways", func(scanner *osmpbf.Scanner) {
		scanner.SkipNodes = true
		scanner.SkipRelations = true
	}, func(obj osm.Object) error {
		w, ok := obj.(*osm.Way)
		if !ok {
			return nil
		}
		return fn(w)
	})
}

// Nodes scans the stream for nodes.
func (s *PBFSource) Nodes(ctx context.Context, fn func(*osm.Node) error) error {
	useBBox := !s.bbox.IsZero()
	return s.scan(ctx, "nodes", func(scanner *osmpbf.Scanner) {
		scanner.SkipWays = true
		scanner.SkipRelations = true
	}, func(obj osm.Object) error {
		n, ok := obj.(*osm.Node)
		if !ok {
			return nil
		}
		if useBBox && !s.bbox.Contains(n.Lat, n.Lon) {
			return nil
		}
		return fn(n)
	})
}

func (s *PBFSource) scan(ctx context.Context, what string, configure func(*osmpbf.Scanner), fn func(osm.Object) error) error {
	if _, err := s.rs.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek for %s pass: %w", what, err)
	}

	scanner := osmpbf.New(ctx, s.rs, s.procs)
	defer scanner.Close()
	configure(scanner)

	for scanner.Scan() {
		if err := fn(scanner.Object()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", what, err)
	}
	return nil
}
