// Package trace provides decision-trace recording for placement policy analysis.
// This package has no dependencies on sim/ — it stores pure data types.
package trace

// PlacementRecord captures a single placement attempt, successful or not.
type PlacementRecord struct {
	JobID  int
	Clock  int64
	NodeID int // zero when not placed
	Placed bool
	Reason string
}

// ReleaseRecord captures a job's resources being credited back to its node.
type ReleaseRecord struct {
	JobID  int
	NodeID int
	Clock  int64
}
