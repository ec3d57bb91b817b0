package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run <config> <trace>",
	Short: "Replay a trace through the hierarchy described by a configuration.",
	Long: "`run <config> <trace>` replays the trace and writes the hits and " +
		"misses of every level, and the number of main memory accesses, " +
		"into a JSON report.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, tracePath := args[0], args[1]

		c, err := config.Load(configPath)
		if err != nil {
			return err
		}

		s, err := buildRunSimulation(cmd, c)
		if err != nil {
			return err
		}
		defer s.Terminate()

		for _, l := range s.Hierarchy().Levels() {
			fmt.Fprintln(cmd.OutOrStdout(), l)
		}

		if s.MonitorURL() != "" && boolFlag(cmd, "open-browser", "OPEN_BROWSER") {
			monitoring.OpenBrowser(s.MonitorURL())
		}

		f, err := os.Open(tracePath)
		if err != nil {
			return fmt.Errorf("opening trace: %w", err)
		}
		defer f.Close()

		report, err := s.Run(tracePath, f)
		if err != nil {
			return err
		}

		output := stringFlag(cmd, "output", "OUTPUT")

		err = writeReport(output, report)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Main memory access: %d\n",
			report.MainMemoryAccess)

		if s.MonitorURL() != "" && boolFlag(cmd, "keep-monitor", "KEEP_MONITOR") {
			waitForInterrupt(s.MonitorURL())
		}

		return nil
	},
}

func buildRunSimulation(
	cmd *cobra.Command,
	c *config.Config,
) (*simulation.Simulation, error) {
	b := simulation.MakeBuilder().WithConfig(c)

	if boolFlag(cmd, "record", "RECORD") {
		b = b.WithRecording(stringFlag(cmd, "record-path", "RECORD_PATH"))
	}

	if boolFlag(cmd, "log-accesses", "LOG_ACCESSES") {
		b = b.WithAccessLog(cmd.ErrOrStderr())
	}

	if boolFlag(cmd, "monitor", "MONITOR") {
		b = b.WithMonitoring(intFlag(cmd, "monitor-port", "MONITOR_PORT"))
	}

	return b.Build()
}

func waitForInterrupt(url string) {
	log.Printf("Simulation finished, still serving %s. Press Ctrl+C to exit.",
		url)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	<-ch
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("output", "output.json",
		"The file to write the report to.")
	runCmd.Flags().Bool("record", false,
		"Record every access into a SQLite database.")
	runCmd.Flags().String("record-path", "",
		"The database to record into, without the .sqlite3 extension. "+
			"A unique name is generated if empty.")
	runCmd.Flags().Bool("log-accesses", false,
		"Print every access to stderr.")
	runCmd.Flags().Bool("monitor", false,
		"Serve the progress and counters of the run over HTTP.")
	runCmd.Flags().Int("monitor-port", 0,
		"The port of the monitoring server. A free port is used if 0.")
	runCmd.Flags().Bool("open-browser", false,
		"Open the monitoring page in a browser.")
	runCmd.Flags().Bool("keep-monitor", false,
		"Keep serving the monitoring page after the run until interrupted.")
}
