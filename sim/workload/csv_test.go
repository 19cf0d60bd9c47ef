package workload

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/inference-sim/batchsim/sim"
)

func TestParseJobsCSV_AssignsSequentialIDs(t *testing.T) {
	input := `arrival_time,cores,memory,execution_time
0,2,2,3
0, 4, 4, 1
# late arrival
1,2,2,1
`
	jobs, err := ParseJobsCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := sim.NewJobs([][4]int64{{0, 2, 2, 3}, {0, 4, 4, 1}, {1, 2, 2, 1}})
	if !reflect.DeepEqual(jobs, want) {
		t.Errorf("jobs = %v, want %v", jobs, want)
	}
}

func TestParseJobsCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty", "", "missing header"},
		{"wrong header", "arrival,cores,memory,execution_time\n", "expected \"arrival_time\""},
		{"short row", "arrival_time,cores,memory,execution_time\n0,1,1\n", "reading CSV row"},
		{"non-numeric", "arrival_time,cores,memory,execution_time\n0,1,1,1\n0,two,1,1\n", "line 3: cores"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseJobsCSV(strings.NewReader(tc.input))
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("err = %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestParseJobsCSV_NegativeValuesLeftToValidation(t *testing.T) {
	jobs, err := ParseJobsCSV(strings.NewReader("arrival_time,cores,memory,execution_time\n-1,1,1,1\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sim.ValidateJobs(jobs); err == nil {
		t.Error("expected ValidateJobs to reject negative arrival")
	}
}

func TestWriteJobsCSV_ReadableByParser(t *testing.T) {
	jobs := sim.NewJobs([][4]int64{{0, 2, 2, 3}, {12, 24, 64, 100}})
	var buf bytes.Buffer
	if err := WriteJobsCSV(&buf, jobs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "arrival_time,cores,memory,execution_time\n") {
		t.Errorf("missing header in %q", buf.String())
	}
	got, err := ParseJobsCSV(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, jobs) {
		t.Errorf("jobs = %v, want %v", got, jobs)
	}
}
