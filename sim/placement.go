package sim

import "fmt"

// PlacementDecision is the outcome of one placement attempt.
type PlacementDecision struct {
	NodeID int    // Selected node ID; meaningful only when Placed
	Placed bool   // False when no node currently fits the job
	Reason string // Human-readable explanation
}

// PlacementPolicy selects at most one node whose free capacity fits the job.
// Implementations are pure: they MUST NOT modify the nodes.
type PlacementPolicy interface {
	Name() string
	Place(job Job, nodes []*WorkerNode) PlacementDecision
}

func noFit(job Job) PlacementDecision {
	return PlacementDecision{Reason: fmt.Sprintf("no node fits cores=%d mem=%d", job.Cores, job.Memory)}
}

// FirstFit returns the first node, in pool order, that fits the job.
type FirstFit struct{}

func (f *FirstFit) Name() string { return "first-fit" }

// Place implements PlacementPolicy for FirstFit.
func (f *FirstFit) Place(job Job, nodes []*WorkerNode) PlacementDecision {
	for _, n := range nodes {
		if n.CanAccommodate(job) {
			return PlacementDecision{NodeID: n.ID, Placed: true, Reason: "first-fit"}
		}
	}
	return noFit(job)
}

// BestFit returns the fitting node with the fewest available cores.
// Only cores are scored; memory is a constraint but not a metric.
// Ties broken by first occurrence in pool order (strict <).
type BestFit struct{}

func (b *BestFit) Name() string { return "best-fit" }

// Place implements PlacementPolicy for BestFit.
func (b *BestFit) Place(job Job, nodes []*WorkerNode) PlacementDecision {
	var best *WorkerNode
	for _, n := range nodes {
		if n.CanAccommodate(job) && (best == nil || n.AvailableCores < best.AvailableCores) {
			best = n
		}
	}
	if best == nil {
		return noFit(job)
	}
	return PlacementDecision{NodeID: best.ID, Placed: true, Reason: fmt.Sprintf("best-fit (free cores=%d)", best.AvailableCores)}
}

// WorstFit returns the fitting node with the most available cores.
// Ties broken by first occurrence in pool order (strict >).
type WorstFit struct{}

func (w *WorstFit) Name() string { return "worst-fit" }

// Place implements PlacementPolicy for WorstFit.
func (w *WorstFit) Place(job Job, nodes []*WorkerNode) PlacementDecision {
	var worst *WorkerNode
	for _, n := range nodes {
		if n.CanAccommodate(job) && (worst == nil || n.AvailableCores > worst.AvailableCores) {
			worst = n
		}
	}
	if worst == nil {
		return noFit(job)
	}
	return PlacementDecision{NodeID: worst.ID, Placed: true, Reason: fmt.Sprintf("worst-fit (free cores=%d)", worst.AvailableCores)}
}

// NewPlacementPolicy creates a placement policy by name.
// Valid names are defined in ValidPlacementPolicies (bundle.go).
// Empty string defaults to first-fit.
// Panics on unrecognized names.
func NewPlacementPolicy(name string) PlacementPolicy {
	if !IsValidPlacementPolicy(name) {
		panic(fmt.Sprintf("unknown placement policy %q", name))
	}
	switch name {
	case "", "first-fit":
		return &FirstFit{}
	case "best-fit":
		return &BestFit{}
	case "worst-fit":
		return &WorstFit{}
	default:
		panic(fmt.Sprintf("unhandled placement policy %q", name))
	}
}
