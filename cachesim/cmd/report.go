package cmd

import (
	"fmt"
	"os"

	"github.com/sarchlab/cachesim/mem/cache"
)

func writeReport(path string, report cache.RunReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}

	err = report.WriteJSON(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("writing output %s: %w", path, err)
	}

	return f.Close()
}
