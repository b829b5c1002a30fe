package main

import (
	"context"
	"flag"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"road_router/pkg/graph"
	"road_router/pkg/routing"
)

type sample struct {
	origin, goal graph.Index
	found        bool
	miles        float64
	uniMiles     float64
	uni, bi      time.Duration
}

func main() {
	graphPath := flag.String("graph", "graph.save", "Path to preprocessed graph file")
	pairs := flag.Int("pairs", 100, "Number of random origin/goal pairs")
	seed := flag.Uint64("seed", 1, "Random seed for pair selection")
	workers := flag.Int("workers", runtime.NumCPU(), "Queries run in parallel")
	timeout := flag.Duration("timeout", 30*time.Second, "Deadline for a single query")
	flag.Parse()

	g, err := graph.ReadFile(*graphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	if g.NumNodes() == 0 {
		log.Fatalf("Graph %s has no nodes", *graphPath)
	}
	log.Printf("Loaded: %d nodes, %d adjacency entries", g.NumNodes(), g.NumAdjacencyEntries())

	rng := rand.New(rand.NewPCG(*seed, *seed))
	samples := make([]sample, *pairs)
	for i := range samples {
		samples[i].origin = g.Sample(rng)
		samples[i].goal = g.Sample(rng)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var mu sync.Mutex
	mismatched := 0

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(*workers)
	start := time.Now()
	for i := range samples {
		eg.Go(func() error {
			s := &samples[i]
			qctx, cancel := context.WithTimeout(egCtx, *timeout)
			defer cancel()

			t := time.Now()
			uni, ok, err := routing.FindPathContext(qctx, g, s.origin, s.goal)
			if err != nil {
				return err
			}
			s.uni = time.Since(t)

			t = time.Now()
			bi, biOK, err := routing.FindPathBidirectionalContext(qctx, g, s.origin, s.goal)
			if err != nil {
				return err
			}
			s.bi = time.Since(t)

			s.found = ok
			if ok {
				s.uniMiles = uni.LengthMiles()
			}
			if biOK {
				s.miles = bi.LengthMiles()
			}
			if ok != biOK {
				mu.Lock()
				mismatched++
				mu.Unlock()
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		log.Fatalf("Benchmark aborted: %v", err)
	}
	elapsed := time.Since(start)

	var uniTimes, biTimes []time.Duration
	found := 0
	for _, s := range samples {
		uniTimes = append(uniTimes, s.uni)
		biTimes = append(biTimes, s.bi)
		if s.found {
			found++
			log.Printf("%d -> %d: astar %.3f mi in %s, bidirectional %.3f mi in %s",
				s.origin, s.goal, s.uniMiles, s.uni.Round(time.Microsecond), s.miles, s.bi.Round(time.Microsecond))
		}
	}

	log.Printf("%d/%d pairs routed in %s", found, len(samples), elapsed.Round(time.Millisecond))
	log.Printf("astar:         p50 %s, p99 %s", percentile(uniTimes, 50), percentile(uniTimes, 99))
	log.Printf("bidirectional: p50 %s, p99 %s", percentile(biTimes, 50), percentile(biTimes, 99))
	if mismatched > 0 {
		log.Printf("%d pairs disagreed on reachability", mismatched)
		os.Exit(1)
	}
}

func percentile(ds []time.Duration, p int) time.Duration {
	if len(ds) == 0 {
		return 0
	}
	sorted := slices.Clone(ds)
	slices.Sort(sorted)
	i := (len(sorted) - 1) * p / 100
	return sorted[i].Round(time.Microsecond)
}
