package routing

import (
	"context"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"road_router/pkg/graph"
)

// discoveryBuffer bounds how far a worker may run ahead of the coordinator.
const discoveryBuffer = 4096

// meeting is the coordinator's verdict.
type meeting struct {
	split graph.Index
	found bool
}

// coordinator arbitrates which node both searches touched first. Workers
// send discoveries on in; the coordinator closes stop when it has a split,
// which makes every later send fail.
type coordinator struct {
	in       chan graph.Index
	stop     chan struct{}
	stopOnce sync.Once
	result   chan meeting
}

func newCoordinator() *coordinator {
	return &coordinator{
		in:     make(chan graph.Index, discoveryBuffer),
		stop:   make(chan struct{}),
		result: make(chan meeting, 1),
	}
}

// send delivers a discovery. It returns false once the coordinator has
// stopped or ctx ends; the worker should then return.
func (c *coordinator) send(ctx context.Context, idx graph.Index) bool {
	select {
	case <-c.stop:
		return false
	default:
	}
	select {
	case c.in <- idx:
		return true
	case <-c.stop:
		return false
	case <-ctx.Done():
		return false
	}
}

func (c *coordinator) close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// run consumes discoveries until an index arrives a second time or in is
// closed. Each worker sends an index at most once, so a repeat means both
// searches reached it.
func (c *coordinator) run() {
	seen := roaring.New()
	for idx := range c.in {
		if !seen.CheckedAdd(uint32(idx)) {
			c.close()
			c.result <- meeting{split: idx, found: true}
			return
		}
	}
	c.result <- meeting{}
}
