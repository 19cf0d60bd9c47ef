// Defines the Job struct that models one unit of batch work in the simulation.
// Jobs are immutable once ingested; the simulator only moves them between
// the pending queue and the assignment log.

package sim

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Job describes a unit of work: when it becomes eligible, what it needs, and for how long.
// The simulator stores jobs by value, so callers may reuse their slice after NewSimulator.
type Job struct {
	ID            int   // Sequential identifier assigned at ingestion (1..N)
	ArrivalTime   int64 // Tick at which the job becomes eligible for placement
	Cores         int   // Compute slots required on a single node
	Memory        int   // Memory units required on a single node
	ExecutionTime int64 // Ticks the job occupies its node once started
}

// Weight is the composite size metric used by the smallest-weight-first ordering:
// ExecutionTime × Cores × Memory.
func (j Job) Weight() int64 {
	return j.ExecutionTime * int64(j.Cores) * int64(j.Memory)
}

// Fits reports whether the job's demand is satisfiable by the given free capacity
// in both dimensions at once.
func (j Job) Fits(cores, memory int) bool {
	return cores >= j.Cores && memory >= j.Memory
}

func (j Job) String() string {
	return fmt.Sprintf("Job{ID: %d, Arrival: %d, Cores: %d, Memory: %d, Exec: %d}",
		j.ID, j.ArrivalTime, j.Cores, j.Memory, j.ExecutionTime)
}

// Validate returns an *InvalidJobError for the first malformed field, or nil.
func (j Job) Validate() error {
	switch {
	case j.ID <= 0:
		return &InvalidJobError{JobID: j.ID, Field: "id", Reason: fmt.Sprintf("must be positive, got %d", j.ID)}
	case j.ArrivalTime < 0:
		return &InvalidJobError{JobID: j.ID, Field: "arrival_time", Reason: fmt.Sprintf("must be non-negative, got %d", j.ArrivalTime)}
	case j.Cores <= 0:
		return &InvalidJobError{JobID: j.ID, Field: "cores", Reason: fmt.Sprintf("must be positive, got %d", j.Cores)}
	case j.Memory <= 0:
		return &InvalidJobError{JobID: j.ID, Field: "memory", Reason: fmt.Sprintf("must be positive, got %d", j.Memory)}
	case j.ExecutionTime <= 0:
		return &InvalidJobError{JobID: j.ID, Field: "execution_time", Reason: fmt.Sprintf("must be positive, got %d", j.ExecutionTime)}
	}
	return nil
}

// ValidateJobs checks every job and the uniqueness of their IDs.
// All problems are reported together; the result matches ErrInvalidJobSpec via errors.Is.
func ValidateJobs(jobs []Job) error {
	var result *multierror.Error
	seen := make(map[int]bool, len(jobs))
	for _, j := range jobs {
		if err := j.Validate(); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if seen[j.ID] {
			result = multierror.Append(result, &InvalidJobError{JobID: j.ID, Field: "id", Reason: "duplicate id"})
		}
		seen[j.ID] = true
	}
	return result.ErrorOrNil()
}

// NewJobs builds jobs from (arrival, cores, memory, execution) tuples and assigns
// IDs 1..N in input order.
func NewJobs(specs [][4]int64) []Job {
	jobs := make([]Job, len(specs))
	for i, s := range specs {
		jobs[i] = Job{
			ID:            i + 1,
			ArrivalTime:   s[0],
			Cores:         int(s[1]),
			Memory:        int(s[2]),
			ExecutionTime: s[3],
		}
	}
	return jobs
}
