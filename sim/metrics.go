// Tracks simulation-wide and per-job scheduling metrics such as
// wait time, makespan and resource-tick utilization.

package sim

import "fmt"

// Metrics aggregates statistics about the simulation
// for final reporting. Useful for comparing policy combinations.
type Metrics struct {
	JobsPlaced     int   // Number of jobs assigned to a node
	Releases       int   // Number of leases credited back
	ForcedAdvances int64 // Ticks advanced because nothing could be placed
	TotalWait      int64 // Sum of (start - arrival) over placed jobs
	MaxWait        int64 // Longest (start - arrival)
	Makespan       int64 // Tick at which the last placed job completes
	CoreTicks      int64 // Sum of cores × execution time over placed jobs
	MemoryTicks    int64 // Sum of memory × execution time over placed jobs

	JobWaits       map[int]int64 // job ID -> wait in ticks
	NodePlacements map[int]int   // node ID -> number of jobs placed there
}

// NewMetrics returns a Metrics with initialized maps.
func NewMetrics() *Metrics {
	return &Metrics{
		JobWaits:       make(map[int]int64),
		NodePlacements: make(map[int]int),
	}
}

func (m *Metrics) recordAssignment(job Job, nodeID int, now int64) {
	wait := now - job.ArrivalTime
	m.JobsPlaced++
	m.TotalWait += wait
	if wait > m.MaxWait {
		m.MaxWait = wait
	}
	if end := now + job.ExecutionTime; end > m.Makespan {
		m.Makespan = end
	}
	m.CoreTicks += int64(job.Cores) * job.ExecutionTime
	m.MemoryTicks += int64(job.Memory) * job.ExecutionTime
	m.JobWaits[job.ID] = wait
	m.NodePlacements[nodeID]++
}

// MeanWait returns the average wait in ticks, or 0 if nothing was placed.
func (m *Metrics) MeanWait() float64 {
	if m.JobsPlaced == 0 {
		return 0
	}
	return float64(m.TotalWait) / float64(m.JobsPlaced)
}

// MetricsSummary is the serializable view of Metrics for a pool of the given capacity.
type MetricsSummary struct {
	Ordering          string  `json:"ordering"`
	Placement         string  `json:"placement"`
	JobsPlaced        int     `json:"jobs_placed"`
	Makespan          int64   `json:"makespan_ticks"`
	MeanWait          float64 `json:"mean_wait_ticks"`
	MaxWait           int64   `json:"max_wait_ticks"`
	ForcedAdvances    int64   `json:"forced_advances"`
	NodesUsed         int     `json:"nodes_used"`
	CoreUtilization   float64 `json:"core_utilization"`
	MemoryUtilization float64 `json:"memory_utilization"`
}

// Summarize computes utilization against the pool's total cores and memory over the makespan.
func (m *Metrics) Summarize(totalCores, totalMemory int64) MetricsSummary {
	s := MetricsSummary{
		JobsPlaced:     m.JobsPlaced,
		Makespan:       m.Makespan,
		MeanWait:       m.MeanWait(),
		MaxWait:        m.MaxWait,
		ForcedAdvances: m.ForcedAdvances,
		NodesUsed:      len(m.NodePlacements),
	}
	if m.Makespan > 0 && totalCores > 0 {
		s.CoreUtilization = float64(m.CoreTicks) / float64(totalCores*m.Makespan)
	}
	if m.Makespan > 0 && totalMemory > 0 {
		s.MemoryUtilization = float64(m.MemoryTicks) / float64(totalMemory*m.Makespan)
	}
	return s
}

// Print displays aggregated metrics at the end of the simulation.
func (s MetricsSummary) Print() {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Policies             : %s / %s\n", s.Ordering, s.Placement)
	fmt.Printf("Jobs Placed          : %d\n", s.JobsPlaced)
	fmt.Printf("Makespan             : %d ticks\n", s.Makespan)
	if s.JobsPlaced > 0 {
		fmt.Printf("Average Wait         : %.2f ticks\n", s.MeanWait)
		fmt.Printf("Max Wait             : %d ticks\n", s.MaxWait)
		fmt.Printf("Forced Advances      : %d\n", s.ForcedAdvances)
		fmt.Printf("Nodes Used           : %d\n", s.NodesUsed)
		fmt.Printf("Core Utilization     : %.2f%%\n", 100*s.CoreUtilization)
		fmt.Printf("Memory Utilization   : %.2f%%\n", 100*s.MemoryUtilization)
	}
}
