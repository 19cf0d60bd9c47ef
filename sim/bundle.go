package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/batchsim/sim/trace"
)

// PolicyBundle holds unified simulation configuration, loadable from a YAML file.
// Nil pointer fields mean "not set in YAML" — they do not override SimConfig.
// String fields use empty string for "not set".
type PolicyBundle struct {
	Ordering     string     `yaml:"ordering"`
	Placement    string     `yaml:"placement"`
	Nodes        NodesBlock `yaml:"nodes"`
	MaxIdleTicks *int64     `yaml:"max_idle_ticks"`
	Trace        string     `yaml:"trace"`
}

// NodesBlock holds node pool configuration.
type NodesBlock struct {
	Count  *int `yaml:"count"`
	Cores  *int `yaml:"cores"`
	Memory *int `yaml:"memory"`
}

// LoadPolicyBundle reads and parses a YAML policy configuration file.
// Unknown keys are rejected so typos surface as errors.
func LoadPolicyBundle(path string) (*PolicyBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy config: %w", err)
	}
	var bundle PolicyBundle
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("parsing policy config: %w", err)
	}
	return &bundle, nil
}

// ValidOrderingPolicies is the set of recognized ordering policy names.
// Shared by Validate() and NewOrderingPolicy() to avoid duplication.
var ValidOrderingPolicies = map[string]bool{"": true, "arrival": true, "weight": true, "duration": true}

// ValidPlacementPolicies is the set of recognized placement policy names.
var ValidPlacementPolicies = map[string]bool{"": true, "first-fit": true, "best-fit": true, "worst-fit": true}

// IsValidOrderingPolicy returns true if name is a recognized ordering policy.
func IsValidOrderingPolicy(name string) bool {
	return ValidOrderingPolicies[name]
}

// IsValidPlacementPolicy returns true if name is a recognized placement policy.
func IsValidPlacementPolicy(name string) bool {
	return ValidPlacementPolicies[name]
}

// Validate checks that all policy names and parameter ranges in the bundle are valid.
func (b *PolicyBundle) Validate() error {
	if !IsValidOrderingPolicy(b.Ordering) {
		return fmt.Errorf("unknown ordering policy %q", b.Ordering)
	}
	if !IsValidPlacementPolicy(b.Placement) {
		return fmt.Errorf("unknown placement policy %q", b.Placement)
	}
	if !trace.IsValidTraceLevel(b.Trace) {
		return fmt.Errorf("unknown trace level %q", b.Trace)
	}
	if b.Nodes.Count != nil && *b.Nodes.Count <= 0 {
		return fmt.Errorf("nodes.count must be positive, got %d", *b.Nodes.Count)
	}
	if b.Nodes.Cores != nil && *b.Nodes.Cores <= 0 {
		return fmt.Errorf("nodes.cores must be positive, got %d", *b.Nodes.Cores)
	}
	if b.Nodes.Memory != nil && *b.Nodes.Memory <= 0 {
		return fmt.Errorf("nodes.memory must be positive, got %d", *b.Nodes.Memory)
	}
	if b.MaxIdleTicks != nil && *b.MaxIdleTicks < 0 {
		return fmt.Errorf("max_idle_ticks must be non-negative, got %d", *b.MaxIdleTicks)
	}
	return nil
}

// Apply overlays every field set in the bundle onto cfg.
func (b *PolicyBundle) Apply(cfg *SimConfig) {
	if b.Ordering != "" {
		cfg.Policy.Ordering = b.Ordering
	}
	if b.Placement != "" {
		cfg.Policy.Placement = b.Placement
	}
	if b.Nodes.Count != nil {
		cfg.Pool.Count = *b.Nodes.Count
	}
	if b.Nodes.Cores != nil {
		cfg.Pool.CoresPerNode = *b.Nodes.Cores
	}
	if b.Nodes.Memory != nil {
		cfg.Pool.MemoryPerNode = *b.Nodes.Memory
	}
	if b.MaxIdleTicks != nil {
		cfg.MaxIdleTicks = *b.MaxIdleTicks
	}
	if b.Trace != "" {
		cfg.TraceLevel = trace.TraceLevel(b.Trace)
	}
}
