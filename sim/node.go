package sim

import "fmt"

// WorkerNode is the mutable resource ledger of one node in the pool.
// Available capacity only moves through assign and release, which the Simulator
// pairs one-to-one via leases.
type WorkerNode struct {
	ID              int
	TotalCores      int
	TotalMemory     int
	AvailableCores  int
	AvailableMemory int
	// BusyUntil is the tick at which the node's latest-ending lease finishes.
	// Zero if no job has ever run here. Never decreases.
	BusyUntil int64

	occupants int
}

// NewWorkerNode returns an idle node with full availability.
func NewWorkerNode(id, cores, memory int) *WorkerNode {
	return &WorkerNode{
		ID:              id,
		TotalCores:      cores,
		TotalMemory:     memory,
		AvailableCores:  cores,
		AvailableMemory: memory,
	}
}

// CanAccommodate reports whether the job fits in the node's current free capacity.
func (n *WorkerNode) CanAccommodate(job Job) bool {
	return job.Fits(n.AvailableCores, n.AvailableMemory)
}

// CanEverAccommodate reports whether the job fits in the node's total capacity.
func (n *WorkerNode) CanEverAccommodate(job Job) bool {
	return job.Fits(n.TotalCores, n.TotalMemory)
}

// Occupants returns the number of jobs currently holding resources on the node.
func (n *WorkerNode) Occupants() int {
	return n.occupants
}

// Idle reports whether the node has no occupants.
func (n *WorkerNode) Idle() bool {
	return n.occupants == 0
}

// assign debits the job's demand. Panics if the job does not fit: placement
// policies must only return nodes satisfying CanAccommodate.
func (n *WorkerNode) assign(job Job, now int64) lease {
	if !n.CanAccommodate(job) {
		panic(fmt.Sprintf("assign: job %d (cores=%d mem=%d) does not fit node %d (cores=%d mem=%d)",
			job.ID, job.Cores, job.Memory, n.ID, n.AvailableCores, n.AvailableMemory))
	}
	n.AvailableCores -= job.Cores
	n.AvailableMemory -= job.Memory
	n.occupants++
	end := now + job.ExecutionTime
	if end > n.BusyUntil {
		n.BusyUntil = end
	}
	return lease{jobID: job.ID, nodeID: n.ID, cores: job.Cores, memory: job.Memory, start: now, end: end}
}

// release credits back exactly what the matching assign debited.
func (n *WorkerNode) release(l lease) {
	if l.nodeID != n.ID {
		panic(fmt.Sprintf("release: lease for node %d applied to node %d", l.nodeID, n.ID))
	}
	n.AvailableCores += l.cores
	n.AvailableMemory += l.memory
	n.occupants--
	if n.AvailableCores > n.TotalCores || n.AvailableMemory > n.TotalMemory || n.occupants < 0 {
		panic(fmt.Sprintf("release: node %d over-credited (cores=%d/%d mem=%d/%d occupants=%d)",
			n.ID, n.AvailableCores, n.TotalCores, n.AvailableMemory, n.TotalMemory, n.occupants))
	}
}

func (n *WorkerNode) String() string {
	return fmt.Sprintf("Node{ID: %d, Cores: %d/%d, Memory: %d/%d, BusyUntil: %d}",
		n.ID, n.AvailableCores, n.TotalCores, n.AvailableMemory, n.TotalMemory, n.BusyUntil)
}

// NewNodePool creates count identical nodes with IDs 1..count.
func NewNodePool(cfg NodePoolConfig) []*WorkerNode {
	nodes := make([]*WorkerNode, cfg.Count)
	for i := range nodes {
		nodes[i] = NewWorkerNode(i+1, cfg.CoresPerNode, cfg.MemoryPerNode)
	}
	return nodes
}

// cloneNodes deep-copies a node slice so the Simulator owns its ledger.
func cloneNodes(nodes []*WorkerNode) []*WorkerNode {
	out := make([]*WorkerNode, len(nodes))
	for i, n := range nodes {
		c := *n
		out[i] = &c
	}
	return out
}
