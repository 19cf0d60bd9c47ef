package sim

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/batchsim/sim/trace"
)

func smallPoolConfig(count, cores, memory int, ordering, placement string) SimConfig {
	return SimConfig{
		Pool:   NewNodePoolConfig(count, cores, memory),
		Policy: NewPolicyConfig(ordering, placement),
	}
}

func mustSimulator(t *testing.T, cfg SimConfig, jobs []Job) *Simulator {
	t.Helper()
	s, err := NewSimulator(cfg, jobs)
	require.NoError(t, err)
	return s
}

func TestSimulator_EndToEnd_ArrivalFirstFit(t *testing.T) {
	// GIVEN 3 nodes of 4 cores / 8 memory and the three reference jobs
	jobs := NewJobs([][4]int64{
		{0, 2, 2, 3}, // J1
		{0, 4, 4, 1}, // J2
		{1, 2, 2, 1}, // J3
	})
	s := mustSimulator(t, smallPoolConfig(3, 4, 8, "arrival", "first-fit"), jobs)

	// WHEN the simulation runs
	require.NoError(t, s.Run(context.Background()))

	// THEN J1 and J2 start at t=0 and J3 shares Node1 at t=1
	want := []AssignmentEvent{
		{JobID: 1, NodeID: 1, Clock: 0},
		{JobID: 2, NodeID: 2, Clock: 0},
		{JobID: 3, NodeID: 1, Clock: 1},
	}
	assert.Equal(t, want, s.Events())
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, int64(0), s.Metrics.ForcedAdvances)

	// AND after draining, every node is idle with full capacity by t=3
	s.Drain()
	assert.Equal(t, int64(3), s.Clock)
	for _, n := range s.Nodes() {
		assert.True(t, n.Idle(), "node %d", n.ID)
		assert.Equal(t, n.TotalCores, n.AvailableCores)
		assert.Equal(t, n.TotalMemory, n.AvailableMemory)
	}
	assert.Equal(t, []int64{3, 1, 0}, []int64{s.Nodes()[0].BusyUntil, s.Nodes()[1].BusyUntil, s.Nodes()[2].BusyUntil})
}

func TestSimulator_ReleasedNodeAvailableInSameTick(t *testing.T) {
	// GIVEN one node and two jobs that each need the whole node
	jobs := NewJobs([][4]int64{{0, 4, 4, 2}, {0, 4, 4, 1}})
	s := mustSimulator(t, smallPoolConfig(1, 4, 8, "arrival", "first-fit"), jobs)

	// WHEN run
	require.NoError(t, s.Run(context.Background()))

	// THEN J2 starts at exactly the tick J1 finishes
	assert.Equal(t, []AssignmentEvent{{1, 1, 0}, {2, 1, 2}}, s.Events())
	assert.Equal(t, int64(2), s.Metrics.ForcedAdvances)
	assert.Equal(t, int64(2), s.Metrics.JobWaits[2])
}

func TestSimulator_UnplaceableEarlierJobDoesNotBlockLaterJobs(t *testing.T) {
	// GIVEN a node half-occupied by J1, then a large J2 and a small J3
	jobs := NewJobs([][4]int64{{0, 2, 1, 5}, {0, 4, 1, 1}, {0, 2, 1, 1}})
	s := mustSimulator(t, smallPoolConfig(1, 4, 8, "arrival", "first-fit"), jobs)

	// WHEN one step is taken
	placed := s.Step()

	// THEN J1 and J3 are placed at t=0 while J2 waits
	assert.Equal(t, 2, placed)
	assert.Equal(t, []AssignmentEvent{{1, 1, 0}, {3, 1, 0}}, s.Events())
	assert.Equal(t, 1, s.Pending())
}

func TestSimulator_ClockJumpsToEarliestPendingArrival(t *testing.T) {
	// GIVEN duration ordering puts a late-arriving short job at the front
	jobs := NewJobs([][4]int64{{10, 1, 1, 1}, {0, 1, 1, 5}})
	s := mustSimulator(t, smallPoolConfig(1, 4, 8, "duration", "first-fit"), jobs)

	// WHEN run
	require.NoError(t, s.Run(context.Background()))

	// THEN the clock starts at the earliest arrival, not the front job's arrival
	assert.Equal(t, []AssignmentEvent{{2, 1, 0}, {1, 1, 10}}, s.Events())
}

func TestSimulator_ReleasesLeasesSkippedByArrivalJump(t *testing.T) {
	// GIVEN J1 ends at t=2 but the next arrival is t=10
	jobs := NewJobs([][4]int64{{0, 4, 8, 2}, {10, 4, 8, 1}})
	s := mustSimulator(t, smallPoolConfig(1, 4, 8, "arrival", "first-fit"), jobs)

	// WHEN run
	require.NoError(t, s.Run(context.Background()))

	// THEN J1's resources are credited at the jump and J2 fits at t=10
	assert.Equal(t, []AssignmentEvent{{1, 1, 0}, {2, 1, 10}}, s.Events())
	assert.Equal(t, 1, s.Metrics.Releases)
}

func TestSimulator_OrderingFixesAdmissionPriority(t *testing.T) {
	// GIVEN one node that fits a single job at a time and three simultaneous jobs
	jobs := NewJobs([][4]int64{{0, 4, 1, 5}, {0, 4, 1, 1}, {0, 4, 1, 3}})

	tests := []struct {
		ordering string
		want     []int
	}{
		{"arrival", []int{1, 2, 3}},
		{"duration", []int{2, 3, 1}},
		{"weight", []int{2, 3, 1}},
	}
	for _, tc := range tests {
		t.Run(tc.ordering, func(t *testing.T) {
			s := mustSimulator(t, smallPoolConfig(1, 4, 8, tc.ordering, "first-fit"), jobs)
			require.NoError(t, s.Run(context.Background()))
			got := make([]int, 0, 3)
			for _, ev := range s.Events() {
				got = append(got, ev.JobID)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSimulator_Run_JobExceedingEveryNode_Unplaceable(t *testing.T) {
	// GIVEN a job requiring more cores than any node's total capacity
	jobs := NewJobs([][4]int64{{0, 2, 2, 1}, {0, 25, 2, 1}})
	s := mustSimulator(t, smallPoolConfig(2, 24, 64, "arrival", "first-fit"), jobs)

	// WHEN run
	err := s.Run(context.Background())

	// THEN UnplaceableJob is reported for that job before any placement
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnplaceableJob))
	var unplaceable *UnplaceableJobError
	require.ErrorAs(t, err, &unplaceable)
	assert.Equal(t, 2, unplaceable.JobID)
	assert.Empty(t, s.Events())
}

func TestSimulator_Run_IdlePoolWithoutPrecheck_FailsImmediately(t *testing.T) {
	// GIVEN the up-front check disabled and a job that exceeds every node
	jobs := NewJobs([][4]int64{{0, 1, 1, 1}, {0, 1, 100, 1}})
	s := mustSimulator(t, smallPoolConfig(2, 4, 8, "arrival", "first-fit"), jobs)
	s.skipCapacityCheck = true

	// WHEN run
	err := s.Run(context.Background())

	// THEN the run stops once the pool drains without placing it
	var unplaceable *UnplaceableJobError
	require.ErrorAs(t, err, &unplaceable)
	assert.Equal(t, 2, unplaceable.JobID)
	assert.Contains(t, unplaceable.Reason, "whole pool idle")
	// AND the partial event log remains readable
	assert.Equal(t, []AssignmentEvent{{1, 1, 0}}, s.Events())
}

func TestSimulator_Run_ForcedAdvanceCap_BoundsIterations(t *testing.T) {
	// GIVEN a long-running job holding the only node and a job that can never fit
	jobs := NewJobs([][4]int64{{0, 4, 1, 100}, {0, 5, 1, 1}})
	cfg := smallPoolConfig(1, 4, 8, "arrival", "first-fit")
	cfg.MaxIdleTicks = 10
	s := mustSimulator(t, cfg, jobs)
	s.skipCapacityCheck = true

	// WHEN run
	err := s.Run(context.Background())

	// THEN the engine fails after the cap rather than looping until t=100 and beyond
	var unplaceable *UnplaceableJobError
	require.ErrorAs(t, err, &unplaceable)
	assert.Equal(t, 2, unplaceable.JobID)
	assert.Equal(t, int64(11), unplaceable.Clock)
	assert.Contains(t, unplaceable.Reason, "cap 10")
	assert.Equal(t, 1, s.Running())
}

func TestSimulator_Run_CancelledContext(t *testing.T) {
	jobs := NewJobs([][4]int64{{0, 1, 1, 1}})
	s := mustSimulator(t, smallPoolConfig(1, 4, 8, "", ""), jobs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Run(ctx), context.Canceled)
}

func TestSimulator_Run_NoJobs(t *testing.T) {
	s := mustSimulator(t, smallPoolConfig(1, 4, 8, "", ""), nil)
	require.NoError(t, s.Run(context.Background()))
	assert.Empty(t, s.Events())
	assert.Equal(t, 0, s.Step())
}

func TestSimulator_OnAssign_ObservesEventsAsTheyOccur(t *testing.T) {
	jobs := NewJobs([][4]int64{{0, 2, 2, 3}, {0, 4, 4, 1}, {1, 2, 2, 1}})
	s := mustSimulator(t, smallPoolConfig(3, 4, 8, "arrival", "first-fit"), jobs)
	var seen []AssignmentEvent
	s.OnAssign = func(ev AssignmentEvent) {
		// the log already holds the event when the hook fires
		assert.Equal(t, ev, s.Events()[len(s.Events())-1])
		seen = append(seen, ev)
	}
	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, s.Events(), seen)
}

func TestSimulator_Trace_RecordsAttemptsAndReleases(t *testing.T) {
	jobs := NewJobs([][4]int64{{0, 4, 4, 2}, {0, 4, 4, 1}})
	cfg := smallPoolConfig(1, 4, 8, "arrival", "first-fit")
	cfg.TraceLevel = trace.TraceLevelDecisions
	s := mustSimulator(t, cfg, jobs)
	require.NoError(t, s.Run(context.Background()))

	summary := trace.Summarize(s.Trace)
	// J1 placed; J2 fails at t=0 (twice), t=1, then placed at t=2
	assert.Equal(t, 2, summary.PlacedCount)
	assert.Equal(t, 3, summary.FailedCount)
	assert.Equal(t, 1, summary.ReleaseCount)
	assert.Equal(t, map[int]int{1: 2}, summary.NodeDistribution)
}

func TestSimulator_TraceNone_RecordsNothing(t *testing.T) {
	jobs := NewJobs([][4]int64{{0, 4, 4, 2}})
	s := mustSimulator(t, smallPoolConfig(1, 4, 8, "", ""), jobs)
	require.NoError(t, s.Run(context.Background()))
	assert.Empty(t, s.Trace.Placements)
}

func TestNewSimulator_RejectsInvalidInput(t *testing.T) {
	valid := NewJobs([][4]int64{{0, 1, 1, 1}})

	_, err := NewSimulator(smallPoolConfig(1, 4, 8, "", ""), []Job{{ID: 1, Cores: 0, Memory: 1, ExecutionTime: 1}})
	assert.ErrorIs(t, err, ErrInvalidJobSpec)

	_, err = NewSimulator(smallPoolConfig(0, 4, 8, "", ""), valid)
	assert.Error(t, err)

	_, err = NewSimulator(smallPoolConfig(1, 4, 8, "lifo", ""), valid)
	assert.ErrorContains(t, err, "unknown ordering policy")

	_, err = NewSimulator(smallPoolConfig(1, 4, 8, "", "random"), valid)
	assert.ErrorContains(t, err, "unknown placement policy")

	cfg := smallPoolConfig(1, 4, 8, "", "")
	cfg.TraceLevel = "verbose"
	_, err = NewSimulator(cfg, valid)
	assert.ErrorContains(t, err, "unknown trace level")

	cfg.TraceLevel = ""
	_, err = NewSimulatorWithNodes(cfg, []*WorkerNode{NewWorkerNode(1, 4, 8), NewWorkerNode(1, 4, 8)}, valid)
	assert.ErrorContains(t, err, "duplicate node id 1")
}

func TestNewSimulatorWithNodes_OwnsItsLedger(t *testing.T) {
	// GIVEN caller-owned nodes
	nodes := []*WorkerNode{NewWorkerNode(10, 4, 8), NewWorkerNode(20, 8, 8)}
	s, err := NewSimulatorWithNodes(smallPoolConfig(0, 0, 0, "", "worst-fit"), nodes, NewJobs([][4]int64{{0, 2, 2, 1}}))
	require.NoError(t, err)

	// WHEN the simulation runs
	require.NoError(t, s.Run(context.Background()))

	// THEN placement used node IDs and the caller's nodes are untouched
	assert.Equal(t, []AssignmentEvent{{1, 20, 0}}, s.Events())
	assert.Equal(t, 8, nodes[1].AvailableCores)
	assert.Equal(t, 6, s.Nodes()[1].AvailableCores)
}

func TestSimulator_Summary_LabelsPolicies(t *testing.T) {
	jobs := NewJobs([][4]int64{{0, 2, 4, 2}})
	s := mustSimulator(t, smallPoolConfig(2, 4, 8, "weight", "best-fit"), jobs)
	require.NoError(t, s.Run(context.Background()))
	sum := s.Summary()
	assert.Equal(t, "weight", sum.Ordering)
	assert.Equal(t, "best-fit", sum.Placement)
	assert.Equal(t, int64(2), sum.Makespan)
	assert.InDelta(t, 0.25, sum.CoreUtilization, 1e-9)
}

// checkLedger asserts 0 ≤ available ≤ total on every node.
func checkLedger(t *testing.T, s *Simulator) {
	t.Helper()
	for _, n := range s.Nodes() {
		if n.AvailableCores < 0 || n.AvailableCores > n.TotalCores {
			t.Fatalf("tick %d: node %d cores %d outside [0, %d]", s.Clock, n.ID, n.AvailableCores, n.TotalCores)
		}
		if n.AvailableMemory < 0 || n.AvailableMemory > n.TotalMemory {
			t.Fatalf("tick %d: node %d memory %d outside [0, %d]", s.Clock, n.ID, n.AvailableMemory, n.TotalMemory)
		}
	}
}

func TestSimulator_Invariants_RandomWorkloads(t *testing.T) {
	orderings := []string{"arrival", "weight", "duration"}
	placements := []string{"first-fit", "best-fit", "worst-fit"}
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 5; round++ {
		specs := make([][4]int64, 80)
		for i := range specs {
			specs[i] = [4]int64{
				rng.Int63n(40),
				1 + rng.Int63n(24),
				1 + rng.Int63n(64),
				1 + rng.Int63n(12),
			}
		}
		jobs := NewJobs(specs)
		byID := make(map[int]Job, len(jobs))
		for _, j := range jobs {
			byID[j.ID] = j
		}

		for _, o := range orderings {
			for _, p := range placements {
				s := mustSimulator(t, smallPoolConfig(4, 24, 64, o, p), jobs)

				// Step manually so the ledger can be checked between iterations.
				require.NoError(t, s.checkCapacity())
				var lastClock int64
				for steps := 0; s.Pending() > 0; steps++ {
					require.Less(t, steps, 100000, "%s/%s did not terminate", o, p)
					s.Step()
					checkLedger(t, s)
					require.GreaterOrEqual(t, s.Clock, lastClock, "clock went backwards")
					lastClock = s.Clock
				}

				// every job appears in exactly one event, never before its arrival
				seen := make(map[int]bool, len(jobs))
				for _, ev := range s.Events() {
					require.False(t, seen[ev.JobID], "job %d assigned twice", ev.JobID)
					seen[ev.JobID] = true
					require.GreaterOrEqual(t, ev.Clock, byID[ev.JobID].ArrivalTime)
				}
				require.Len(t, seen, len(jobs))

				// debit/credit symmetry: once every lease ends the pool is whole again
				s.Drain()
				checkLedger(t, s)
				for _, n := range s.Nodes() {
					require.Equal(t, n.TotalCores, n.AvailableCores, "%s/%s node %d", o, p, n.ID)
					require.Equal(t, n.TotalMemory, n.AvailableMemory, "%s/%s node %d", o, p, n.ID)
				}
				require.Equal(t, len(jobs), s.Metrics.Releases)
				require.Equal(t, s.Metrics.Makespan, s.Clock)
			}
		}
	}
}
