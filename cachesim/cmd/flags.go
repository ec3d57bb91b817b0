package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/config"
)

// stringFlag returns the value of a flag. A flag left unset on the command
// line falls back to CACHESIM_<env>, then to the flag default.
func stringFlag(cmd *cobra.Command, name, env string) string {
	v, _ := cmd.Flags().GetString(name)
	if cmd.Flags().Changed(name) {
		return v
	}

	return config.EnvString(env, v)
}

func boolFlag(cmd *cobra.Command, name, env string) bool {
	v, _ := cmd.Flags().GetBool(name)
	if cmd.Flags().Changed(name) {
		return v
	}

	return config.EnvBool(env, v)
}

func intFlag(cmd *cobra.Command, name, env string) int {
	v, _ := cmd.Flags().GetInt(name)
	if cmd.Flags().Changed(name) {
		return v
	}

	return config.EnvInt(env, v)
}
