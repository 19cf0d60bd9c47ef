package sim

import (
	"fmt"
	"sort"
)

// OrderingPolicy fixes the admission order of the pending queue.
// Applied exactly once, before the first tick. Implementations sort the slice
// in-place using sort.SliceStable for determinism and fall back to job ID on ties.
type OrderingPolicy interface {
	Name() string
	Order(jobs []Job)
}

// ArrivalOrdering sorts by arrival time ascending (first-come-first-served).
type ArrivalOrdering struct{}

func (a *ArrivalOrdering) Name() string { return "arrival" }

func (a *ArrivalOrdering) Order(jobs []Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].ArrivalTime != jobs[j].ArrivalTime {
			return jobs[i].ArrivalTime < jobs[j].ArrivalTime
		}
		return jobs[i].ID < jobs[j].ID
	})
}

// SmallestWeightOrdering sorts by Weight ascending (smallest job first).
// Warning: large jobs can wait arbitrarily long under a steady stream of small ones.
type SmallestWeightOrdering struct{}

func (s *SmallestWeightOrdering) Name() string { return "weight" }

func (s *SmallestWeightOrdering) Order(jobs []Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		wi, wj := jobs[i].Weight(), jobs[j].Weight()
		if wi != wj {
			return wi < wj
		}
		return jobs[i].ID < jobs[j].ID
	})
}

// ShortestDurationOrdering sorts by execution time ascending.
type ShortestDurationOrdering struct{}

func (s *ShortestDurationOrdering) Name() string { return "duration" }

func (s *ShortestDurationOrdering) Order(jobs []Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].ExecutionTime != jobs[j].ExecutionTime {
			return jobs[i].ExecutionTime < jobs[j].ExecutionTime
		}
		return jobs[i].ID < jobs[j].ID
	})
}

// NewOrderingPolicy creates an OrderingPolicy by name.
// Valid names are defined in ValidOrderingPolicies (bundle.go).
// Empty string defaults to arrival order.
// Panics on unrecognized names.
func NewOrderingPolicy(name string) OrderingPolicy {
	if !IsValidOrderingPolicy(name) {
		panic(fmt.Sprintf("unknown ordering policy %q", name))
	}
	switch name {
	case "", "arrival":
		return &ArrivalOrdering{}
	case "weight":
		return &SmallestWeightOrdering{}
	case "duration":
		return &ShortestDurationOrdering{}
	default:
		panic(fmt.Sprintf("unhandled ordering policy %q", name))
	}
}
