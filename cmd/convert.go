package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/batchsim/sim"
	"github.com/inference-sim/batchsim/sim/workload"
)

var convertSpecPath string

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Expand a YAML workload spec into a CSV job trace",
	Long: "Load a YAML workload spec, expand explicit and recurring entries into jobs, " +
		"validate them and write the CSV trace to stdout for piping.",
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := workload.LoadWorkloadSpec(convertSpecPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		jobs, err := spec.Expand()
		if err != nil {
			logrus.Fatalf("Expanding %s failed: %v", convertSpecPath, err)
		}
		if err := sim.ValidateJobs(jobs); err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := workload.WriteJobsCSV(os.Stdout, jobs); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// writeSpecToStdout marshals a WorkloadSpec to YAML and writes to stdout.
func writeSpecToStdout(spec *workload.WorkloadSpec) {
	data, err := yaml.Marshal(spec)
	if err != nil {
		logrus.Fatalf("YAML marshal failed: %v", err)
	}
	fmt.Print(string(data))
}

func init() {
	convertCmd.Flags().StringVar(&convertSpecPath, "spec", "", "Path to YAML workload spec")
	_ = convertCmd.MarkFlagRequired("spec")

	rootCmd.AddCommand(convertCmd)
}
