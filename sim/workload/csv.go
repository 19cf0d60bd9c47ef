package workload

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/inference-sim/batchsim/sim"
)

// CSV column headers for job traces. Job IDs are not stored; they follow row order.
var jobColumns = []string{"arrival_time", "cores", "memory", "execution_time"}

// ParseJobsCSV reads a job trace. The first row must be the header; each following
// row becomes one job with ID equal to its 1-based position among data rows.
// Field values are range-checked by sim.ValidateJobs, not here.
func ParseJobsCSV(r io.Reader) ([]sim.Job, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(jobColumns)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("job trace is empty: missing header %q", strings.Join(jobColumns, ","))
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	for i, col := range jobColumns {
		if strings.ToLower(strings.TrimSpace(header[i])) != col {
			return nil, fmt.Errorf("CSV header column %d is %q, expected %q", i+1, header[i], col)
		}
	}

	var specs [][4]int64
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		line, _ := reader.FieldPos(0)
		var spec [4]int64
		for i, field := range row {
			v, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, jobColumns[i], err)
			}
			spec[i] = v
		}
		specs = append(specs, spec)
	}
	return sim.NewJobs(specs), nil
}

// LoadJobsCSV opens path and parses it with ParseJobsCSV.
func LoadJobsCSV(path string) ([]sim.Job, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening job trace: %w", err)
	}
	defer func() { _ = file.Close() }()
	jobs, err := ParseJobsCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return jobs, nil
}

// WriteJobsCSV writes jobs in the trace format ParseJobsCSV accepts.
// Rows are written in slice order, so IDs are only preserved if jobs are numbered 1..N.
func WriteJobsCSV(w io.Writer, jobs []sim.Job) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(jobColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, j := range jobs {
		row := []string{
			strconv.FormatInt(j.ArrivalTime, 10),
			strconv.Itoa(j.Cores),
			strconv.Itoa(j.Memory),
			strconv.FormatInt(j.ExecutionTime, 10),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", j.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
