package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordAssignment_WaitAndMakespan(t *testing.T) {
	m := NewMetrics()
	m.recordAssignment(Job{ID: 1, ArrivalTime: 0, Cores: 2, Memory: 4, ExecutionTime: 5}, 1, 3)
	m.recordAssignment(Job{ID: 2, ArrivalTime: 2, Cores: 1, Memory: 1, ExecutionTime: 1}, 1, 2)

	assert.Equal(t, 2, m.JobsPlaced)
	assert.Equal(t, int64(3), m.MaxWait)
	assert.InDelta(t, 1.5, m.MeanWait(), 1e-9)
	assert.Equal(t, int64(8), m.Makespan)
	assert.Equal(t, int64(11), m.CoreTicks)
	assert.Equal(t, int64(21), m.MemoryTicks)
	assert.Equal(t, 2, m.NodePlacements[1])
	assert.Equal(t, int64(0), m.JobWaits[2])
}

func TestMetrics_Summarize_Utilization(t *testing.T) {
	// GIVEN one job using half the pool's cores for the whole makespan
	m := NewMetrics()
	m.recordAssignment(Job{ID: 1, Cores: 4, Memory: 2, ExecutionTime: 10}, 1, 0)

	// WHEN summarized against 8 cores / 8 memory
	s := m.Summarize(8, 8)

	// THEN utilization is the resource-tick ratio
	assert.InDelta(t, 0.5, s.CoreUtilization, 1e-9)
	assert.InDelta(t, 0.25, s.MemoryUtilization, 1e-9)
	assert.Equal(t, 1, s.NodesUsed)
}

func TestMetrics_Empty_ZeroSummary(t *testing.T) {
	s := NewMetrics().Summarize(8, 8)
	assert.Equal(t, 0.0, s.MeanWait)
	assert.Equal(t, 0.0, s.CoreUtilization)
}
