// Implements the PendingQueue, which holds all jobs not yet assigned to a node.
// Its order is fixed once by the OrderingPolicy before the first tick.

package sim

import (
	"fmt"
	"strings"
)

// PendingQueue holds not-yet-assigned jobs in admission order.
type PendingQueue struct {
	jobs []Job
}

// NewPendingQueue copies jobs into a new queue, preserving their order.
func NewPendingQueue(jobs []Job) *PendingQueue {
	q := &PendingQueue{jobs: make([]Job, len(jobs))}
	copy(q.jobs, jobs)
	return q
}

func (q *PendingQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, j := range q.jobs {
		sb.WriteString(fmt.Sprint(j.ID))
		if i < len(q.jobs)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of pending jobs.
func (q *PendingQueue) Len() int {
	return len(q.jobs)
}

// Items returns the queue contents for iteration.
// The returned slice is the queue's internal storage -- callers within the
// sim package may iterate over it but MUST NOT append to or reslice it.
func (q *PendingQueue) Items() []Job {
	return q.jobs
}

// Reorder applies fn to the queue contents, allowing in-place reordering.
// The OrderingPolicy.Order method is the primary consumer.
// fn MUST NOT change the slice length (no append/delete).
func (q *PendingQueue) Reorder(fn func([]Job)) {
	if fn == nil {
		panic("Reorder: fn must not be nil")
	}
	n := len(q.jobs)
	fn(q.jobs)
	if len(q.jobs) != n {
		panic(fmt.Sprintf("Reorder: fn changed queue length from %d to %d", n, len(q.jobs)))
	}
}

// EarliestArrival returns the minimum arrival time over all pending jobs.
// Returns false if the queue is empty.
func (q *PendingQueue) EarliestArrival() (int64, bool) {
	if len(q.jobs) == 0 {
		return 0, false
	}
	earliest := q.jobs[0].ArrivalTime
	for _, j := range q.jobs[1:] {
		if j.ArrivalTime < earliest {
			earliest = j.ArrivalTime
		}
	}
	return earliest, true
}

// RemoveAt drops the jobs at the given ascending indices, keeping the
// relative order of the rest. Called once per placement scan, after the scan.
func (q *PendingQueue) RemoveAt(indices []int) {
	if len(indices) == 0 {
		return
	}
	kept := q.jobs[:0]
	next := 0
	for i, j := range q.jobs {
		if next < len(indices) && indices[next] == i {
			next++
			continue
		}
		kept = append(kept, j)
	}
	if next != len(indices) {
		panic(fmt.Sprintf("RemoveAt: indices %v not ascending or out of range for length %d", indices, len(q.jobs)))
	}
	q.jobs = kept
}
