package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/inference-sim/batchsim/sim"
	"github.com/inference-sim/batchsim/sim/report"
	"github.com/inference-sim/batchsim/sim/trace"
	"github.com/inference-sim/batchsim/sim/workload"
)

var (
	// Pool flags, shared by run and sweep
	policyConfigPath string // Path to PolicyBundle YAML
	nodeCount        int    // Number of worker nodes
	nodeCores        int    // Cores per node
	nodeMemory       int    // Memory units per node
	maxIdleTicks     int64  // Forced-advance cap (0 = derived)
	traceLevel       string // Decision trace verbosity
	logLevel         string // Log verbosity level

	// run-only flags
	orderingName  string // Queue ordering policy
	placementName string // Node placement policy
	jobsPath      string // Job list (.csv, .yaml, .yml)
	outputPath    string // Node utilization report
	eventsOut     string // Assignment log CSV
	metricsOut    string // Metrics summary JSON
	drain         bool   // Release all leases before reporting
)

// Menu numbers accepted in place of policy names.
var (
	orderingAliases  = map[string]string{"1": "arrival", "2": "weight", "3": "duration"}
	placementAliases = map[string]string{"1": "first-fit", "2": "best-fit", "3": "worst-fit"}
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "batchsim",
	Short: "Discrete-time simulator for batch job scheduling on a worker pool",
}

// runCmd executes one simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduling simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		cfg, err := resolveSimConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		jobs, err := workload.LoadJobs(jobsPath)
		if err != nil {
			logrus.Fatalf("Failed to load jobs: %v", err)
		}
		logrus.Infof("Starting simulation: %d jobs on %d nodes (%d cores, %d memory each), ordering=%s placement=%s",
			len(jobs), cfg.Pool.Count, cfg.Pool.CoresPerNode, cfg.Pool.MemoryPerNode, cfg.Policy.Ordering, cfg.Policy.Placement)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		s, err := sim.NewSimulator(cfg, jobs)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		s.OnAssign = func(ev sim.AssignmentEvent) { fmt.Println(ev) }

		runErr := s.Run(ctx)
		if runErr == nil && drain {
			s.Drain()
		}
		// Reports are written even after a failed run so the partial state can be inspected.
		if err := writeReports(s); err != nil {
			logrus.Errorf("%v", err)
		}
		if runErr != nil {
			logrus.Fatalf("Simulation failed after %d assignments: %v", len(s.Events()), runErr)
		}
		s.Summary().Print()
		fmt.Printf("\nWorker node utilization data has been saved to '%s'.\n", outputPath)
	},
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// resolveSimConfig builds the SimConfig: defaults, then the policy bundle (if any),
// then every flag the user explicitly set.
func resolveSimConfig(flags *pflag.FlagSet) (sim.SimConfig, error) {
	cfg := sim.DefaultSimConfig()
	if policyConfigPath != "" {
		bundle, err := sim.LoadPolicyBundle(policyConfigPath)
		if err != nil {
			return cfg, err
		}
		if err := bundle.Validate(); err != nil {
			return cfg, fmt.Errorf("invalid policy config %s: %w", policyConfigPath, err)
		}
		bundle.Apply(&cfg)
	}

	if flags.Changed("ordering") {
		cfg.Policy.Ordering = orderingName
	}
	if flags.Changed("placement") {
		cfg.Policy.Placement = placementName
	}
	if flags.Changed("nodes") {
		cfg.Pool.Count = nodeCount
	}
	if flags.Changed("node-cores") {
		cfg.Pool.CoresPerNode = nodeCores
	}
	if flags.Changed("node-memory") {
		cfg.Pool.MemoryPerNode = nodeMemory
	}
	if flags.Changed("max-idle-ticks") {
		cfg.MaxIdleTicks = maxIdleTicks
	}
	if flags.Changed("trace") {
		cfg.TraceLevel = trace.TraceLevel(traceLevel)
	}

	if alias, ok := orderingAliases[cfg.Policy.Ordering]; ok {
		cfg.Policy.Ordering = alias
	}
	if alias, ok := placementAliases[cfg.Policy.Placement]; ok {
		cfg.Policy.Placement = alias
	}
	if !sim.IsValidOrderingPolicy(cfg.Policy.Ordering) {
		return cfg, fmt.Errorf("unknown ordering policy %q (valid: arrival, weight, duration or 1-3)", cfg.Policy.Ordering)
	}
	if !sim.IsValidPlacementPolicy(cfg.Policy.Placement) {
		return cfg, fmt.Errorf("unknown placement policy %q (valid: first-fit, best-fit, worst-fit or 1-3)", cfg.Policy.Placement)
	}
	if !trace.IsValidTraceLevel(string(cfg.TraceLevel)) {
		return cfg, fmt.Errorf("unknown trace level %q (valid: none, decisions)", cfg.TraceLevel)
	}
	return cfg, nil
}

// writeReports persists whichever reports were requested. The node report is always written.
func writeReports(s *sim.Simulator) error {
	if err := report.SaveNodeReport(outputPath, s.Nodes()); err != nil {
		return err
	}
	if eventsOut != "" {
		if err := report.SaveEvents(eventsOut, s.Events()); err != nil {
			return err
		}
	}
	if metricsOut != "" {
		if err := report.SaveMetrics(metricsOut, s.Summary()); err != nil {
			return err
		}
	}
	if s.Trace.Enabled() {
		ts := trace.Summarize(s.Trace)
		logrus.Infof("Trace: %d placement attempts (%d placed, %d failed), %d releases across %d nodes",
			ts.TotalAttempts, ts.PlacedCount, ts.FailedCount, ts.ReleaseCount, ts.UniqueNodes)
	}
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerPoolFlags binds the flags shared by run and sweep to fs, resetting their defaults.
func registerPoolFlags(fs *pflag.FlagSet) {
	fs.StringVar(&policyConfigPath, "policy-config", "", "Path to YAML policy configuration (ordering, placement, nodes, max_idle_ticks, trace)")
	fs.IntVar(&nodeCount, "nodes", sim.DefaultNodeCount, "Number of worker nodes")
	fs.IntVar(&nodeCores, "node-cores", sim.DefaultCoresPerNode, "Cores per worker node")
	fs.IntVar(&nodeMemory, "node-memory", sim.DefaultMemoryPerNode, "Memory units per worker node")
	fs.Int64Var(&maxIdleTicks, "max-idle-ticks", 0, "Consecutive ticks without a placement before failing (0 = longest execution time + 1)")
	fs.StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Decision trace level: none, decisions")
	fs.StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
}

// init sets up CLI flags and subcommands
func init() {
	registerPoolFlags(runCmd.Flags())
	runCmd.Flags().StringVar(&orderingName, "ordering", "arrival", "Queue ordering: arrival, weight, duration (or 1, 2, 3)")
	runCmd.Flags().StringVar(&placementName, "placement", "first-fit", "Node placement: first-fit, best-fit, worst-fit (or 1, 2, 3)")

	runCmd.Flags().StringVar(&jobsPath, "jobs", "", "Path to job list (.csv trace or .yaml workload spec)")
	runCmd.Flags().StringVar(&outputPath, "output", report.DefaultNodeReportFile, "Path to node utilization CSV")
	runCmd.Flags().StringVar(&eventsOut, "events-out", "", "Path to assignment log CSV (optional)")
	runCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "Path to metrics summary JSON (optional)")
	runCmd.Flags().BoolVar(&drain, "drain", false, "Advance the clock until every job completes before writing the node report")
	_ = runCmd.MarkFlagRequired("jobs")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
