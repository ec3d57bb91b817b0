// Package cmd provides the command-line interface for cachesim.
package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/cachesim/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cachesim",
	Short: "cachesim replays memory traces through a cache hierarchy.",
	Long: `cachesim replays memory traces through a multi-level cache ` +
		`hierarchy described by a JSON configuration file and reports the ` +
		`hits and misses of every level together with the number of ` +
		`accesses that reach main memory.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func init() {
	err := config.LoadEnv()
	if err != nil {
		log.Printf("loading .env: %v", err)
	}
}
