package main

import (
	"os"

	"fence-cost/cmd/cli/cmd"
	"fence-cost/internal/logging"
)

func main() {
	defer logging.Sync()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
