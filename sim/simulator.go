// sim/simulator.go
package sim

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/batchsim/sim/trace"
)

// Simulator is the core object that holds the logical clock, the node ledger,
// the pending queue and the assignment log.
type Simulator struct {
	Clock int64
	// Metrics accumulates wait, makespan and utilization figures.
	Metrics *Metrics
	// Trace records every placement attempt and release when enabled.
	Trace *trace.SimulationTrace
	// OnAssign, if set, is called synchronously at each placement.
	OnAssign func(AssignmentEvent)

	nodes     []*WorkerNode
	nodeIndex map[int]int // node ID -> position in nodes
	pending   *PendingQueue
	leases    completions
	events    []AssignmentEvent

	ordering  OrderingPolicy
	placement PlacementPolicy

	maxIdleTicks int64
	idleTicks    int64
	// skipCapacityCheck disables the up-front total-capacity check; tests use it
	// to exercise the forced-advance cap.
	skipCapacityCheck bool
}

// NewSimulator builds a homogeneous pool from cfg.Pool and prepares jobs for simulation.
func NewSimulator(cfg SimConfig, jobs []Job) (*Simulator, error) {
	p := cfg.Pool
	if p.Count <= 0 || p.CoresPerNode <= 0 || p.MemoryPerNode <= 0 {
		return nil, fmt.Errorf("node pool must have positive count, cores and memory, got %+v", p)
	}
	return NewSimulatorWithNodes(cfg, NewNodePool(p), jobs)
}

// NewSimulatorWithNodes prepares a simulation over an explicit node list (cfg.Pool is ignored).
// Nodes are deep-copied; the Simulator owns its ledger. Jobs are validated, copied and
// ordered once by the configured OrderingPolicy.
func NewSimulatorWithNodes(cfg SimConfig, nodes []*WorkerNode, jobs []Job) (*Simulator, error) {
	if !IsValidOrderingPolicy(cfg.Policy.Ordering) {
		return nil, fmt.Errorf("unknown ordering policy %q", cfg.Policy.Ordering)
	}
	if !IsValidPlacementPolicy(cfg.Policy.Placement) {
		return nil, fmt.Errorf("unknown placement policy %q", cfg.Policy.Placement)
	}
	if !trace.IsValidTraceLevel(string(cfg.TraceLevel)) {
		return nil, fmt.Errorf("unknown trace level %q", cfg.TraceLevel)
	}
	if cfg.MaxIdleTicks < 0 {
		return nil, fmt.Errorf("max idle ticks must be non-negative, got %d", cfg.MaxIdleTicks)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("node pool is empty")
	}
	nodeIndex := make(map[int]int, len(nodes))
	for i, n := range nodes {
		if _, dup := nodeIndex[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node id %d", n.ID)
		}
		if n.AvailableCores < 0 || n.AvailableCores > n.TotalCores || n.AvailableMemory < 0 || n.AvailableMemory > n.TotalMemory {
			return nil, fmt.Errorf("node %d: available capacity outside [0, total]", n.ID)
		}
		nodeIndex[n.ID] = i
	}
	if err := ValidateJobs(jobs); err != nil {
		return nil, fmt.Errorf("validating jobs: %w", err)
	}

	s := &Simulator{
		Clock:     0,
		Metrics:   NewMetrics(),
		Trace:     trace.NewSimulationTrace(cfg.TraceLevel),
		nodes:     cloneNodes(nodes),
		nodeIndex: nodeIndex,
		pending:   NewPendingQueue(jobs),
		ordering:  NewOrderingPolicy(cfg.Policy.Ordering),
		placement: NewPlacementPolicy(cfg.Policy.Placement),
	}
	s.pending.Reorder(s.ordering.Order)

	s.maxIdleTicks = cfg.MaxIdleTicks
	if s.maxIdleTicks == 0 {
		for _, j := range jobs {
			if j.ExecutionTime > s.maxIdleTicks {
				s.maxIdleTicks = j.ExecutionTime
			}
		}
		s.maxIdleTicks++
	}
	logrus.Debugf("Simulator ready: %d jobs, %d nodes, ordering=%s placement=%s pending=%v",
		len(jobs), len(nodes), s.ordering.Name(), s.placement.Name(), s.pending)
	return s, nil
}

// Nodes returns the simulator's node ledger in pool order.
// Callers MUST NOT mutate the returned nodes.
func (sim *Simulator) Nodes() []*WorkerNode {
	return sim.nodes
}

// Events returns the assignment log in placement order.
func (sim *Simulator) Events() []AssignmentEvent {
	return sim.events
}

// Pending returns the number of jobs not yet assigned.
func (sim *Simulator) Pending() int {
	return sim.pending.Len()
}

// Running returns the number of jobs still holding node resources.
func (sim *Simulator) Running() int {
	return sim.leases.len()
}

// Policies returns the names of the active ordering and placement policies.
func (sim *Simulator) Policies() (ordering, placement string) {
	return sim.ordering.Name(), sim.placement.Name()
}

// Capacity returns the summed total cores and memory of the pool.
func (sim *Simulator) Capacity() (cores, memory int64) {
	for _, n := range sim.nodes {
		cores += int64(n.TotalCores)
		memory += int64(n.TotalMemory)
	}
	return cores, memory
}

// Summary returns the metrics summary labelled with the active policies.
func (sim *Simulator) Summary() MetricsSummary {
	cores, memory := sim.Capacity()
	s := sim.Metrics.Summarize(cores, memory)
	s.Ordering, s.Placement = sim.Policies()
	return s
}

// Run steps the simulation until every job is placed.
// Returns an *UnplaceableJobError if some job can never be placed, or ctx.Err() if
// ctx is cancelled. On error the events and node ledger so far remain readable.
func (sim *Simulator) Run(ctx context.Context) error {
	if !sim.skipCapacityCheck {
		if err := sim.checkCapacity(); err != nil {
			logrus.Errorf("[tick %07d] %v", sim.Clock, err)
			return err
		}
	}
	for sim.pending.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if placed := sim.Step(); placed > 0 {
			sim.idleTicks = 0
			continue
		}
		sim.idleTicks++
		if err := sim.checkStalled(); err != nil {
			logrus.Errorf("[tick %07d] %v", sim.Clock, err)
			return err
		}
	}
	logrus.Infof("[tick %07d] All %d jobs placed", sim.Clock, len(sim.events))
	return nil
}

// Step runs one iteration: jump to the earliest pending arrival, release due leases,
// scan the pending queue once, and force the clock forward by one tick if nothing
// was placed. Returns the number of jobs placed. No-op on an empty queue.
func (sim *Simulator) Step() int {
	earliest, ok := sim.pending.EarliestArrival()
	if !ok {
		return 0
	}
	if earliest > sim.Clock {
		sim.Clock = earliest
	}

	sim.releaseDue()

	var assigned []int
	for i, job := range sim.pending.Items() {
		if job.ArrivalTime > sim.Clock {
			continue
		}
		decision := sim.placement.Place(job, sim.nodes)
		if sim.Trace.Enabled() {
			sim.Trace.RecordPlacement(trace.PlacementRecord{
				JobID:  job.ID,
				Clock:  sim.Clock,
				NodeID: decision.NodeID,
				Placed: decision.Placed,
				Reason: decision.Reason,
			})
		}
		if !decision.Placed {
			continue
		}
		sim.assign(job, sim.nodeByID(decision.NodeID))
		assigned = append(assigned, i)
	}
	sim.pending.RemoveAt(assigned)

	if len(assigned) == 0 {
		logrus.Debugf("[tick %07d] No job placed, advancing clock", sim.Clock)
		sim.Clock++
		sim.Metrics.ForcedAdvances++
	}
	return len(assigned)
}

// Drain advances the clock through every outstanding completion so the ledger
// returns to full availability. Intended for use after Run.
func (sim *Simulator) Drain() {
	for {
		next, ok := sim.leases.peek()
		if !ok {
			return
		}
		if next.end > sim.Clock {
			sim.Clock = next.end
		}
		sim.releaseDue()
	}
}

func (sim *Simulator) assign(job Job, node *WorkerNode) {
	l := node.assign(job, sim.Clock)
	sim.leases.add(l)
	ev := AssignmentEvent{JobID: job.ID, NodeID: node.ID, Clock: sim.Clock}
	sim.events = append(sim.events, ev)
	sim.Metrics.recordAssignment(job, node.ID, sim.Clock)
	logrus.Infof("[tick %07d] %s", sim.Clock, ev)
	if sim.OnAssign != nil {
		sim.OnAssign(ev)
	}
}

// releaseDue credits back every lease ending at or before the current tick.
// A released node is visible to placements in the same tick.
func (sim *Simulator) releaseDue() {
	for _, l := range sim.leases.due(sim.Clock) {
		sim.nodeByID(l.nodeID).release(l)
		sim.Metrics.Releases++
		logrus.Debugf("[tick %07d] Released job %d from node %d", sim.Clock, l.jobID, l.nodeID)
		if sim.Trace.Enabled() {
			sim.Trace.RecordRelease(trace.ReleaseRecord{JobID: l.jobID, NodeID: l.nodeID, Clock: sim.Clock})
		}
	}
}

func (sim *Simulator) nodeByID(id int) *WorkerNode {
	i, ok := sim.nodeIndex[id]
	if !ok {
		panic(fmt.Sprintf("placement policy %s returned unknown node %d", sim.placement.Name(), id))
	}
	return sim.nodes[i]
}

// checkCapacity rejects any pending job that exceeds the total capacity of every node.
func (sim *Simulator) checkCapacity() error {
	for _, job := range sim.pending.Items() {
		if !sim.everFits(job) {
			return &UnplaceableJobError{
				JobID:  job.ID,
				Clock:  sim.Clock,
				Reason: fmt.Sprintf("demand cores=%d mem=%d exceeds the total capacity of every node", job.Cores, job.Memory),
			}
		}
	}
	return nil
}

// checkStalled is called after a tick with no placement. It fails immediately when
// every node is idle (nothing will ever be released), and otherwise once the
// forced-advance streak exceeds maxIdleTicks.
func (sim *Simulator) checkStalled() error {
	if sim.leases.len() > 0 && sim.idleTicks <= sim.maxIdleTicks {
		return nil
	}
	blocked := sim.firstArrivedPending()
	reason := fmt.Sprintf("no placement for %d consecutive ticks (cap %d)", sim.idleTicks, sim.maxIdleTicks)
	if sim.leases.len() == 0 {
		reason = "no node can fit it even with the whole pool idle"
	}
	return &UnplaceableJobError{JobID: blocked.ID, Clock: sim.Clock, Reason: reason}
}

// firstArrivedPending returns the first job in admission order that has arrived,
// preferring one that cannot fit any node at all.
func (sim *Simulator) firstArrivedPending() Job {
	var first *Job
	items := sim.pending.Items()
	for i := range items {
		if items[i].ArrivalTime >= sim.Clock {
			continue
		}
		if !sim.everFits(items[i]) {
			return items[i]
		}
		if first == nil {
			first = &items[i]
		}
	}
	if first == nil {
		return items[0]
	}
	return *first
}

func (sim *Simulator) everFits(job Job) bool {
	for _, n := range sim.nodes {
		if n.CanEverAccommodate(job) {
			return true
		}
	}
	return false
}
