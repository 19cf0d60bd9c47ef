// Package report persists the outcome of a simulation: the final node table,
// the assignment log and the metrics summary.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/batchsim/sim"
)

// DefaultNodeReportFile is where the node table is written unless overridden.
const DefaultNodeReportFile = "worker_node_utilization.csv"

var (
	nodeReportColumns = []string{"Node ID", "Available Cores", "Available Memory", "Job End Time"}
	eventColumns      = []string{"Job ID", "Node ID", "Time"}
)

// WriteNodeReport writes one row per node, in the given order.
// The last column is the node's BusyUntil tick.
func WriteNodeReport(w io.Writer, nodes []*sim.WorkerNode) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(nodeReportColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, n := range nodes {
		row := []string{
			strconv.Itoa(n.ID),
			strconv.Itoa(n.AvailableCores),
			strconv.Itoa(n.AvailableMemory),
			strconv.FormatInt(n.BusyUntil, 10),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for node %d: %w", n.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteEvents writes the assignment log in placement order.
func WriteEvents(w io.Writer, events []sim.AssignmentEvent) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(eventColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, ev := range events {
		row := []string{strconv.Itoa(ev.JobID), strconv.Itoa(ev.NodeID), strconv.FormatInt(ev.Clock, 10)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for job %d: %w", ev.JobID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteMetrics writes the summary as indented JSON.
func WriteMetrics(w io.Writer, summary sim.MetricsSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metrics: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// SaveNodeReport writes the node table to path.
func SaveNodeReport(path string, nodes []*sim.WorkerNode) error {
	return save(path, func(w io.Writer) error { return WriteNodeReport(w, nodes) })
}

// SaveEvents writes the assignment log to path.
func SaveEvents(path string, events []sim.AssignmentEvent) error {
	return save(path, func(w io.Writer) error { return WriteEvents(w, events) })
}

// SaveMetrics writes the metrics summary to path.
func SaveMetrics(path string, summary sim.MetricsSummary) error {
	return save(path, func(w io.Writer) error { return WriteMetrics(w, summary) })
}

// save creates path and runs write against it. Every failure matches sim.ErrReportIO.
func save(path string, write func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", sim.ErrReportIO, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: closing %s: %w", sim.ErrReportIO, path, cerr)
		}
	}()
	if err := write(file); err != nil {
		return fmt.Errorf("%w: %s: %w", sim.ErrReportIO, path, err)
	}
	logrus.Debugf("Wrote %s", path)
	return nil
}
