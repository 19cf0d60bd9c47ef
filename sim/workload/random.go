package workload

import (
	"fmt"
	"math/rand"
)

// RandomSpec draws Count jobs with uniformly distributed arrival and demand.
// Bounds are inclusive. The same Seed always yields the same jobs.
type RandomSpec struct {
	Count         int      `yaml:"count"`
	Seed          int64    `yaml:"seed"`
	ArrivalMax    int64    `yaml:"arrival_max"`    // arrivals drawn from [0, arrival_max]
	Cores         [2]int   `yaml:"cores"`          // [min, max]
	Memory        [2]int   `yaml:"memory"`         // [min, max]
	ExecutionTime [2]int64 `yaml:"execution_time"` // [min, max]
}

func (r *RandomSpec) validate() error {
	if r.Count <= 0 {
		return fmt.Errorf("count must be positive, got %d", r.Count)
	}
	if r.ArrivalMax < 0 {
		return fmt.Errorf("arrival_max must be non-negative, got %d", r.ArrivalMax)
	}
	if r.Cores[0] <= 0 || r.Cores[1] < r.Cores[0] {
		return fmt.Errorf("cores range %v must satisfy 0 < min <= max", r.Cores)
	}
	if r.Memory[0] <= 0 || r.Memory[1] < r.Memory[0] {
		return fmt.Errorf("memory range %v must satisfy 0 < min <= max", r.Memory)
	}
	if r.ExecutionTime[0] <= 0 || r.ExecutionTime[1] < r.ExecutionTime[0] {
		return fmt.Errorf("execution_time range %v must satisfy 0 < min <= max", r.ExecutionTime)
	}
	return nil
}

// draw returns Count [arrival, cores, memory, execution] tuples in generation order.
func (r *RandomSpec) draw() [][4]int64 {
	rng := rand.New(rand.NewSource(r.Seed))
	between := func(lo, hi int64) int64 { return lo + rng.Int63n(hi-lo+1) }
	out := make([][4]int64, r.Count)
	for i := range out {
		out[i] = [4]int64{
			between(0, r.ArrivalMax),
			between(int64(r.Cores[0]), int64(r.Cores[1])),
			between(int64(r.Memory[0]), int64(r.Memory[1])),
			between(r.ExecutionTime[0], r.ExecutionTime[1]),
		}
	}
	return out
}
