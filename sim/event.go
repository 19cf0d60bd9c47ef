package sim

import "fmt"

// AssignmentEvent records one successful placement: job JobID started on node NodeID at tick Clock.
// The Simulator appends these in the order placements occur.
type AssignmentEvent struct {
	JobID  int
	NodeID int
	Clock  int64
}

func (e AssignmentEvent) String() string {
	return fmt.Sprintf("Job ID %d assigned to Node ID %d at time %d", e.JobID, e.NodeID, e.Clock)
}
