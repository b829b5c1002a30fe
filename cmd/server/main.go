package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"road_router/pkg/api"
	"road_router/pkg/graph"
	"road_router/pkg/routing"
)

func main() {
	graphPath := flag.String("graph", "graph.save", "Path to preprocessed graph file")
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	searchName := flag.String("search", "astar", "Default search for requests that name none: astar or bidirectional")
	maxSnap := flag.Float64("max-snap", 500, "Maximum distance in meters from a query point to its nearest node")
	timeout := flag.Duration("timeout", 5*time.Second, "Per-request search deadline")
	flag.Parse()

	search, err := routing.ParseSearch(*searchName)
	if err != nil {
		log.Fatalf("Invalid --search: %v", err)
	}

	start := time.Now()

	log.Printf("Loading graph from %s...", *graphPath)
	g, err := graph.ReadFile(*graphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	if g.NumNodes() == 0 {
		log.Fatalf("Graph %s has no nodes", *graphPath)
	}
	log.Printf("Loaded: %d nodes, %d adjacency entries", g.NumNodes(), g.NumAdjacencyEntries())

	engine := routing.NewEngine(g, routing.EngineOptions{
		Search:        search,
		MaxSnapMeters: *maxSnap,
	})

	// Build the spatial index now rather than on the first request.
	log.Println("Building R-tree spatial index...")
	g.Nearest(g.Location(0))

	log.Printf("Ready in %s", time.Since(start).Round(time.Millisecond))

	addr := fmt.Sprintf(":%d", *port)
	cfg := api.DefaultConfig(addr)
	cfg.CORSOrigin = *corsOrigin
	cfg.RequestTimeout = *timeout

	stats := api.StatsResponse{
		NumNodes:            g.NumNodes(),
		NumAdjacencyEntries: g.NumAdjacencyEntries(),
		DefaultSearch:       engine.DefaultSearch().String(),
	}

	handlers := api.NewHandlers(engine, stats)
	srv := api.NewServer(cfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
