package sim

import "github.com/inference-sim/batchsim/sim/trace"

// Default pool shape used when no configuration overrides it.
const (
	DefaultNodeCount     = 128
	DefaultCoresPerNode  = 24
	DefaultMemoryPerNode = 64
)

// NodePoolConfig groups the shape of a homogeneous worker pool.
type NodePoolConfig struct {
	Count         int // number of nodes (must be > 0)
	CoresPerNode  int // compute slots per node (must be > 0)
	MemoryPerNode int // memory units per node (must be > 0)
}

// PolicyConfig groups queue ordering and node placement policy selection.
type PolicyConfig struct {
	Ordering  string // "arrival" (default), "weight", "duration"
	Placement string // "first-fit" (default), "best-fit", "worst-fit"
}

// SimConfig is everything the Simulator needs besides the job list.
type SimConfig struct {
	Pool   NodePoolConfig
	Policy PolicyConfig
	// MaxIdleTicks caps consecutive forced advances with arrived but unplaced jobs.
	// Zero derives the cap from the longest execution time in the job list.
	MaxIdleTicks int64
	TraceLevel   trace.TraceLevel
}

// NewNodePoolConfig creates a NodePoolConfig.
func NewNodePoolConfig(count, cores, memory int) NodePoolConfig {
	return NodePoolConfig{Count: count, CoresPerNode: cores, MemoryPerNode: memory}
}

// NewPolicyConfig creates a PolicyConfig.
func NewPolicyConfig(ordering, placement string) PolicyConfig {
	return PolicyConfig{Ordering: ordering, Placement: placement}
}

// DefaultSimConfig returns the 128 × (24 cores, 64 memory) pool with arrival order and first-fit.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Pool:       NewNodePoolConfig(DefaultNodeCount, DefaultCoresPerNode, DefaultMemoryPerNode),
		Policy:     NewPolicyConfig("arrival", "first-fit"),
		TraceLevel: trace.TraceLevelNone,
	}
}
