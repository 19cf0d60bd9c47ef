// Package workload turns job-list files into []sim.Job.
//
// Two formats are supported: a CSV trace with one row per job, and a YAML
// workload spec that lists explicit jobs, cron-scheduled recurring jobs and
// seeded random batches.
package workload

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/batchsim/sim"
)

// LoadJobs reads a job list, choosing the parser by file extension
// (.csv, .yaml or .yml). The result is not validated; NewSimulator does that.
func LoadJobs(path string) ([]sim.Job, error) {
	var (
		jobs []sim.Job
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		jobs, err = LoadJobsCSV(path)
	case ".yaml", ".yml":
		var spec *WorkloadSpec
		if spec, err = LoadWorkloadSpec(path); err == nil {
			jobs, err = spec.Expand()
		}
	default:
		return nil, fmt.Errorf("unsupported job file extension %q (want .csv, .yaml or .yml)", ext)
	}
	if err != nil {
		return nil, err
	}
	logrus.Debugf("Loaded %d jobs from %s", len(jobs), path)
	return jobs, nil
}
