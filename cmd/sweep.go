package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"sort"

	"github.com/mattn/go-zglob"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/inference-sim/batchsim/sim"
	"github.com/inference-sim/batchsim/sim/workload"
)

var (
	sweepWorkloads  []string // Glob patterns for job files
	sweepOrderings  []string // Ordering policies to compare
	sweepPlacements []string // Placement policies to compare
	sweepParallel   int      // Concurrent simulations
)

// sweepResult is one (workload, ordering, placement) run.
type sweepResult struct {
	Workload string
	Summary  sim.MetricsSummary
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Compare ordering and placement policies across workloads",
	Long: "Expand --workloads glob patterns (** supported), then run every ordering × placement " +
		"combination on a fresh pool for each file and print one summary line per run.",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		base, err := resolveSimConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		paths, err := expandWorkloads(sweepWorkloads)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		results, err := runSweep(ctx, base, paths, sweepOrderings, sweepPlacements, sweepParallel)
		if err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}
		printSweep(os.Stdout, results)
	},
}

// expandWorkloads resolves every pattern with zglob and returns the sorted,
// de-duplicated file list. A pattern that matches nothing is an error.
func expandWorkloads(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("at least one --workloads pattern is required")
	}
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := zglob.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("pattern %q matched no files", pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// runSweep simulates every workload under every policy pair. Results are returned in
// (workload, ordering, placement) order regardless of completion order. The first
// failing run cancels the rest.
func runSweep(ctx context.Context, base sim.SimConfig, paths, orderings, placements []string, parallel int) ([]sweepResult, error) {
	for _, o := range orderings {
		if !sim.IsValidOrderingPolicy(o) {
			return nil, fmt.Errorf("unknown ordering policy %q", o)
		}
	}
	for _, p := range placements {
		if !sim.IsValidPlacementPolicy(p) {
			return nil, fmt.Errorf("unknown placement policy %q", p)
		}
	}
	jobsByPath := make([][]sim.Job, len(paths))
	for i, path := range paths {
		jobs, err := workload.LoadJobs(path)
		if err != nil {
			return nil, err
		}
		jobsByPath[i] = jobs
	}

	results := make([]sweepResult, len(paths)*len(orderings)*len(placements))
	g, ctx := errgroup.WithContext(ctx)
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}
	g.SetLimit(parallel)

	idx := 0
	for i, path := range paths {
		for _, o := range orderings {
			for _, p := range placements {
				slot, path, jobs, o, p := idx, path, jobsByPath[i], o, p
				cfg := base
				cfg.Policy = sim.NewPolicyConfig(o, p)
				idx++
				g.Go(func() error {
					s, err := sim.NewSimulator(cfg, jobs)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					if err := s.Run(ctx); err != nil {
						return fmt.Errorf("%s (%s/%s): %w", path, o, p, err)
					}
					results[slot] = sweepResult{Workload: path, Summary: s.Summary()}
					logrus.Debugf("Finished %s with %s/%s", path, o, p)
					return nil
				})
			}
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printSweep(w io.Writer, results []sweepResult) {
	for _, r := range results {
		s := r.Summary
		fmt.Fprintf(w, "%s\t%-9s %-10s jobs=%d makespan=%d mean_wait=%.2f max_wait=%d nodes_used=%d core_util=%.2f%% mem_util=%.2f%%\n",
			r.Workload, s.Ordering, s.Placement, s.JobsPlaced, s.Makespan, s.MeanWait, s.MaxWait, s.NodesUsed,
			100*s.CoreUtilization, 100*s.MemoryUtilization)
	}
}

func init() {
	registerPoolFlags(sweepCmd.Flags())
	sweepCmd.Flags().StringArrayVar(&sweepWorkloads, "workloads", nil, "Glob pattern for job files, e.g. 'traces/**/*.csv' (can be repeated)")
	sweepCmd.Flags().StringSliceVar(&sweepOrderings, "orderings", []string{"arrival", "weight", "duration"}, "Ordering policies to compare")
	sweepCmd.Flags().StringSliceVar(&sweepPlacements, "placements", []string{"first-fit", "best-fit", "worst-fit"}, "Placement policies to compare")
	sweepCmd.Flags().IntVar(&sweepParallel, "parallel", 0, "Maximum concurrent simulations (0 = number of CPUs)")
	_ = sweepCmd.MarkFlagRequired("workloads")

	rootCmd.AddCommand(sweepCmd)
}
