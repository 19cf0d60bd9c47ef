// Package sim provides the discrete-time batch scheduling engine.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - job.go: Job demand (arrival, cores, memory, execution time) and validation
//   - node.go: WorkerNode resource ledger and the assign/release pair
//   - simulator.go: the step loop (arrival jump, release, single scan, forced advance)
//
// # Architecture
//
// The sim package owns the engine and its policies; sub-packages handle I/O:
//   - sim/trace/: Decision trace recording (placement attempts, releases)
//   - sim/workload/: Job-list ingestion from CSV traces and YAML workload specs
//   - sim/report/: Node utilization, assignment log and metrics output
//
// Running jobs are tracked as leases in a completion heap (lease.go) ordered
// by end tick, so a node can host several jobs at once and each lease is
// credited back exactly once.
//
// # Key Interfaces
//
// The extension points are small interfaces selected by name:
//   - OrderingPolicy: fixes the admission order of the pending queue once, before the loop
//   - PlacementPolicy: picks one node whose free capacity fits a job, or none
//
// Valid names live in ValidOrderingPolicies and ValidPlacementPolicies (bundle.go);
// the New*Policy factories panic on anything else.
package sim
