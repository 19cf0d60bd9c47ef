// Package testutil provides shared test infrastructure for the scheduler.
// It holds the golden scenario types and assertion helpers used by the sim
// test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one hand-verified scheduling scenario.
type GoldenTestCase struct {
	Name      string `json:"name"`
	Ordering  string `json:"ordering"`
	Placement string `json:"placement"`
	Nodes     struct {
		Count  int `json:"count"`
		Cores  int `json:"cores"`
		Memory int `json:"memory"`
	} `json:"nodes"`
	Jobs       [][4]int64    `json:"jobs"`        // arrival, cores, memory, execution time; IDs 1..N
	Events     [][3]int64    `json:"events"`      // job ID, node ID, tick
	FinalNodes [][4]int64    `json:"final_nodes"` // node ID, available cores, available memory, busy until
	Metrics    GoldenMetrics `json:"metrics"`
}

// GoldenMetrics represents the expected metrics from a golden test case.
type GoldenMetrics struct {
	// Exact match
	Makespan       int64 `json:"makespan"`
	ForcedAdvances int64 `json:"forced_advances"`

	// Ratios, compared with relative tolerance
	MeanWait        float64 `json:"mean_wait"`
	CoreUtilization float64 `json:"core_utilization"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}
	if len(dataset.Tests) == 0 {
		t.Fatal("golden dataset has no tests")
	}
	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
