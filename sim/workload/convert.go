package workload

import "fmt"

// ComposeSpecs merges several workload specs into one. Each entry list keeps its
// relative order across inputs, so expanding the merged spec numbers explicit
// jobs from every input before any recurring or random job.
func ComposeSpecs(specs []*WorkloadSpec) (*WorkloadSpec, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one spec file required")
	}
	merged := &WorkloadSpec{}
	for _, s := range specs {
		merged.Jobs = append(merged.Jobs, s.Jobs...)
		merged.Recurring = append(merged.Recurring, s.Recurring...)
		merged.Random = append(merged.Random, s.Random...)
	}
	return merged, nil
}
