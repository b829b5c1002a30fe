package routing

import "road_router/pkg/graph"

// frontierEntry is a node waiting in the open set with its f-score
// (cost so far plus the straight-line estimate to the goal).
type frontierEntry struct {
	node graph.Index
	f    float64
}

// frontier is the A* open set: a binary min-heap on f. A node may appear
// more than once when a shorter route to it is found later; the stale copy
// pops after the fresh one and relaxes nothing. Equal f-scores pop in no
// particular order.
type frontier []frontierEntry

func (q frontier) len() int { return len(q) }

func (q *frontier) push(node graph.Index, f float64) {
	*q = append(*q, frontierEntry{node: node, f: f})
	h := *q
	for i := len(h) - 1; i > 0; {
		up := (i - 1) / 2
		if h[up].f <= h[i].f {
			break
		}
		h[up], h[i] = h[i], h[up]
		i = up
	}
}

// pop removes and returns the node with the lowest f. The frontier must be
// non-empty.
func (q *frontier) pop() graph.Index {
	h := *q
	top := h[0].node
	last := len(h) - 1
	h[0] = h[last]
	h = h[:last]
	*q = h

	for i := 0; ; {
		low, l, r := i, 2*i+1, 2*i+2
		if l < len(h) && h[l].f < h[low].f {
			low = l
		}
		if r < len(h) && h[r].f < h[low].f {
			low = r
		}
		if low == i {
			return top
		}
		h[i], h[low] = h[low], h[i]
		i = low
	}
}
