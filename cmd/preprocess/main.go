package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"road_router/pkg/graph"
	osmparser "road_router/pkg/osm"
)

func main() {
	input := flag.String("input", "", "Path to .osm.pbf file")
	output := flag.String("output", "graph.save", "Output graph file (.zst or .lz4 suffix compresses)")
	bbox := flag.String("bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng (e.g. 44.89,-93.33,45.05,-93.19)")
	twinCities := flag.Bool("twin-cities", false, "Shortcut for --bbox 44.89,-93.33,45.05,-93.00 (Minneapolis + St Paul bounding box)")
	car := flag.Bool("car", false, "Keep only car-accessible highways instead of every highway-tagged way")
	procs := flag.Int("procs", 0, "PBF decoder goroutines (0 = GOMAXPROCS)")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: preprocess --input <file.osm.pbf> [--output graph.save] [--car] [--twin-cities | --bbox minLat,minLng,maxLat,maxLng]")
		os.Exit(1)
	}

	opts := osmparser.SourceOptions{Procs: *procs}
	if *twinCities {
		opts.BBox = osmparser.BBox{MinLat: 44.89, MaxLat: 45.05, MinLng: -93.33, MaxLng: -93.00}
		log.Println("Using Twin Cities bounding box filter: lat [44.89, 45.05], lng [-93.33, -93.00]")
	} else if *bbox != "" {
		var minLat, minLng, maxLat, maxLng float64
		_, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng)
		if err != nil {
			log.Fatalf("Invalid bbox format (expected minLat,minLng,maxLat,maxLng): %v", err)
		}
		opts.BBox = osmparser.BBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}
		log.Printf("Using bounding box filter: lat [%.4f, %.4f], lng [%.4f, %.4f]", minLat, maxLat, minLng, maxLng)
	}

	buildOpts := graph.BuildOptions{Filter: osmparser.HasHighway}
	if *car {
		buildOpts.Filter = osmparser.IsCarAccessible
		log.Println("Using car-accessible highway filter")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()

	// Step 1: Build the graph from the OSM file.
	log.Println("Opening OSM file...")
	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer f.Close()

	g, err := graph.Build(ctx, osmparser.NewPBFSource(f, opts), buildOpts)
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}
	log.Printf("Graph: %d nodes, %d adjacency entries", g.NumNodes(), g.NumAdjacencyEntries())

	// Step 2: Keep the largest connected component.
	log.Println("Extracting largest connected component...")
	g, stats, err := graph.TrimWithStats(g)
	if err != nil {
		log.Fatalf("Failed to trim graph: %v", err)
	}
	log.Printf("Largest of %d components: %d nodes kept, %d discarded (%.1f%% kept)",
		stats.Components, stats.Kept, stats.Discarded,
		float64(stats.Kept)/float64(stats.Kept+stats.Discarded)*100)

	// Step 3: Serialize.
	log.Printf("Writing graph to %s...", *output)
	if err := graph.WriteFile(*output, g); err != nil {
		log.Fatalf("Failed to write graph: %v", err)
	}

	info, err := os.Stat(*output)
	if err != nil {
		log.Fatalf("Failed to stat output: %v", err)
	}
	elapsed := time.Since(start)
	log.Printf("Done in %s. Output: %s (%.1f MB)", elapsed.Round(time.Second), *output, float64(info.Size())/(1024*1024))
}
