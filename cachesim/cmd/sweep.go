package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/simulation"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep --trace <trace> <config>...",
	Short: "Replay one trace through several configurations.",
	Long: "`sweep` replays the same trace through the hierarchy of every " +
		"configuration, running the configurations in parallel. The report " +
		"of config/name.json is written to <output-dir>/name.json.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tracePath, _ := cmd.Flags().GetString("trace")
		outputDir := stringFlag(cmd, "output-dir", "OUTPUT_DIR")
		jobs := max(intFlag(cmd, "jobs", "JOBS"), 1)

		outputs, err := sweepOutputs(args, outputDir)
		if err != nil {
			return err
		}

		err = os.MkdirAll(outputDir, 0o755)
		if err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(jobs)

		for i, configPath := range args {
			g.Go(func() error {
				if ctx.Err() != nil {
					return ctx.Err()
				}

				report, err := runOne(configPath, tracePath)
				if err != nil {
					return fmt.Errorf("%s: %w", configPath, err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s: main memory access %d\n",
					configPath, report.MainMemoryAccess)

				return writeReport(outputs[i], report)
			})
		}

		return g.Wait()
	},
}

// sweepOutputs names the report of every configuration after its file.
func sweepOutputs(configPaths []string, outputDir string) ([]string, error) {
	outputs := make([]string, 0, len(configPaths))
	seen := make(map[string]string)

	for _, p := range configPaths {
		base := filepath.Base(p)
		name := strings.TrimSuffix(base, filepath.Ext(base)) + ".json"

		if other, ok := seen[name]; ok {
			return nil, fmt.Errorf(
				"configurations %s and %s would both write %s",
				other, p, name)
		}

		seen[name] = p
		outputs = append(outputs, filepath.Join(outputDir, name))
	}

	return outputs, nil
}

func runOne(configPath, tracePath string) (cache.RunReport, error) {
	c, err := config.Load(configPath)
	if err != nil {
		return cache.RunReport{}, err
	}

	s, err := simulation.MakeBuilder().WithConfig(c).Build()
	if err != nil {
		return cache.RunReport{}, err
	}
	defer s.Terminate()

	f, err := os.Open(tracePath)
	if err != nil {
		return cache.RunReport{}, fmt.Errorf("opening trace: %w", err)
	}
	defer f.Close()

	return s.Run(tracePath, f)
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().String("trace", "", "The trace to replay.")
	sweepCmd.Flags().String("output-dir", ".",
		"The directory to write the reports to.")
	sweepCmd.Flags().Int("jobs", runtime.NumCPU(),
		"The number of configurations simulated at the same time.")

	err := sweepCmd.MarkFlagRequired("trace")
	if err != nil {
		panic(err)
	}
}
