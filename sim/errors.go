package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidJobSpec is matched by every job ingestion failure.
	ErrInvalidJobSpec = errors.New("invalid job spec")
	// ErrUnplaceableJob is matched when a job can never be placed on any node.
	ErrUnplaceableJob = errors.New("unplaceable job")
	// ErrReportIO is matched when a report cannot be persisted. Simulation state is unaffected.
	ErrReportIO = errors.New("report I/O failure")
)

// InvalidJobError reports a malformed job field. It aborts the run before simulation starts.
type InvalidJobError struct {
	JobID  int
	Field  string
	Reason string
}

func (e *InvalidJobError) Error() string {
	return fmt.Sprintf("job %d: %s %s", e.JobID, e.Field, e.Reason)
}

func (e *InvalidJobError) Unwrap() error { return ErrInvalidJobSpec }

// UnplaceableJobError reports a job whose demand no node in the pool can ever satisfy,
// or one that stayed unplaced past the forced-advance cap.
type UnplaceableJobError struct {
	JobID  int
	Clock  int64
	Reason string
}

func (e *UnplaceableJobError) Error() string {
	return fmt.Sprintf("job %d unplaceable at tick %d: %s", e.JobID, e.Clock, e.Reason)
}

func (e *UnplaceableJobError) Unwrap() error { return ErrUnplaceableJob }
