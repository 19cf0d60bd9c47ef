package sim

import "container/heap"

// lease records one job's hold on one node between assignment and release.
type lease struct {
	jobID  int
	nodeID int
	cores  int
	memory int
	start  int64
	end    int64
	seq    int // assignment order, breaks ties between equal end ticks
}

// leaseHeap implements heap.Interface and orders leases by end tick, then assignment order.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type leaseHeap []lease

func (h leaseHeap) Len() int { return len(h) }
func (h leaseHeap) Less(i, j int) bool {
	if h[i].end != h[j].end {
		return h[i].end < h[j].end
	}
	return h[i].seq < h[j].seq
}
func (h leaseHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *leaseHeap) Push(x any) {
	*h = append(*h, x.(lease))
}

func (h *leaseHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// completions tracks active leases and hands back those due at a given tick.
type completions struct {
	h    leaseHeap
	next int
}

func (c *completions) add(l lease) {
	l.seq = c.next
	c.next++
	heap.Push(&c.h, l)
}

// due pops every lease whose end tick is at or before now, in (end, seq) order.
func (c *completions) due(now int64) []lease {
	var out []lease
	for len(c.h) > 0 && c.h[0].end <= now {
		out = append(out, heap.Pop(&c.h).(lease))
	}
	return out
}

// len returns the number of active leases.
func (c *completions) len() int {
	return len(c.h)
}

// peek returns the earliest-ending active lease.
func (c *completions) peek() (lease, bool) {
	if len(c.h) == 0 {
		return lease{}, false
	}
	return c.h[0], true
}
