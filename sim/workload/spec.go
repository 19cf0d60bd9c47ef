package workload

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/batchsim/sim"
)

// DefaultTick is the wall-clock length of one simulation tick for recurring jobs.
const DefaultTick = time.Minute

// defaultStart anchors cron schedules when a recurring entry sets no start time.
var defaultStart = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// cronParser accepts standard five-field expressions (minute hour dom month dow)
// plus descriptors such as @hourly.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// WorkloadSpec is the YAML description of a job list.
type WorkloadSpec struct {
	Jobs      []JobSpec       `yaml:"jobs,omitempty"`
	Recurring []RecurringSpec `yaml:"recurring,omitempty"`
	Random    []RandomSpec    `yaml:"random,omitempty"`
}

// Demand is the per-job resource request shared by explicit and recurring entries.
type Demand struct {
	Cores         int   `yaml:"cores"`
	Memory        int   `yaml:"memory"`
	ExecutionTime int64 `yaml:"execution_time"`
}

// JobSpec is an explicit job, optionally repeated Count times at the same arrival.
type JobSpec struct {
	ArrivalTime int64 `yaml:"arrival_time"`
	Count       int   `yaml:"count,omitempty"` // 0 means 1
	Demand      `yaml:",inline"`
}

// RecurringSpec emits one job per cron firing in [start, start + horizon × tick).
type RecurringSpec struct {
	Schedule string `yaml:"schedule"`
	Tick     string `yaml:"tick,omitempty"`  // Go duration, default 1m
	Start    string `yaml:"start,omitempty"` // RFC 3339, default 2000-01-01T00:00:00Z
	Horizon  int64  `yaml:"horizon"`         // ticks
	Demand   `yaml:",inline"`
}

// LoadWorkloadSpec reads and parses a YAML workload specification file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadWorkloadSpec(path string) (*WorkloadSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workload spec: %w", err)
	}
	var spec WorkloadSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing workload spec: %w", err)
	}
	return &spec, nil
}

// Validate checks the structural fields of the spec. Demand ranges are left to
// sim.ValidateJobs so both input formats report them the same way.
func (s *WorkloadSpec) Validate() error {
	if len(s.Jobs) == 0 && len(s.Recurring) == 0 && len(s.Random) == 0 {
		return fmt.Errorf("workload spec defines no jobs")
	}
	for i, j := range s.Jobs {
		if j.Count < 0 {
			return fmt.Errorf("jobs[%d]: count must be non-negative, got %d", i, j.Count)
		}
	}
	for i := range s.Recurring {
		if _, _, _, err := s.Recurring[i].parse(); err != nil {
			return fmt.Errorf("recurring[%d]: %w", i, err)
		}
	}
	for i := range s.Random {
		if err := s.Random[i].validate(); err != nil {
			return fmt.Errorf("random[%d]: %w", i, err)
		}
	}
	return nil
}

func (r *RecurringSpec) parse() (cron.Schedule, time.Duration, time.Time, error) {
	schedule, err := cronParser.Parse(r.Schedule)
	if err != nil {
		return nil, 0, time.Time{}, fmt.Errorf("schedule %q: %w", r.Schedule, err)
	}
	tick := DefaultTick
	if r.Tick != "" {
		if tick, err = time.ParseDuration(r.Tick); err != nil {
			return nil, 0, time.Time{}, fmt.Errorf("tick %q: %w", r.Tick, err)
		}
		if tick <= 0 {
			return nil, 0, time.Time{}, fmt.Errorf("tick must be positive, got %s", r.Tick)
		}
	}
	start := defaultStart
	if r.Start != "" {
		if start, err = time.Parse(time.RFC3339, r.Start); err != nil {
			return nil, 0, time.Time{}, fmt.Errorf("start %q: %w", r.Start, err)
		}
	}
	if r.Horizon <= 0 {
		return nil, 0, time.Time{}, fmt.Errorf("horizon must be positive, got %d", r.Horizon)
	}
	return schedule, tick, start, nil
}

// arrivals returns the tick of every cron firing within the horizon.
func (r *RecurringSpec) arrivals() ([]int64, error) {
	schedule, tick, start, err := r.parse()
	if err != nil {
		return nil, err
	}
	end := start.Add(time.Duration(r.Horizon) * tick)
	var ticks []int64
	// Next is strictly after its argument, so back off 1ns to include a firing at start.
	for t := schedule.Next(start.Add(-time.Nanosecond)); !t.IsZero() && t.Before(end); t = schedule.Next(t) {
		ticks = append(ticks, int64(t.Sub(start)/tick))
	}
	return ticks, nil
}

// Expand produces the job list: explicit entries first (each repeated Count times),
// then recurring entries, then random entries, each group in file order.
// IDs are assigned 1..N in that order.
func (s *WorkloadSpec) Expand() ([]sim.Job, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var specs [][4]int64
	emit := func(arrival int64, d Demand) {
		specs = append(specs, [4]int64{arrival, int64(d.Cores), int64(d.Memory), d.ExecutionTime})
	}
	for _, j := range s.Jobs {
		n := j.Count
		if n == 0 {
			n = 1
		}
		for k := 0; k < n; k++ {
			emit(j.ArrivalTime, j.Demand)
		}
	}
	for i := range s.Recurring {
		ticks, err := s.Recurring[i].arrivals()
		if err != nil {
			return nil, fmt.Errorf("recurring[%d]: %w", i, err)
		}
		for _, at := range ticks {
			emit(at, s.Recurring[i].Demand)
		}
	}
	for i := range s.Random {
		specs = append(specs, s.Random[i].draw()...)
	}
	return sim.NewJobs(specs), nil
}
