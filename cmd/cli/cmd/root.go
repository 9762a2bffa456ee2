// Package cmd provides the CLI commands for fence-cost.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fence-cost/internal/config"
	"fence-cost/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fence-cost",
	Short: "Estimate materials and labor for fence projects",
	Long: `fence-cost is a fence estimating engine.

It evaluates a project definition against a fence catalog (materials,
labor rates, product rules) and produces a bill of materials and a
bill of labor with extended costs.

Examples:
  fence-cost estimate --catalog catalog.hcl project.hcl
  fence-cost estimate --catalog catalog.hcl --format json project.hcl
  fence-cost catalog validate catalog.hcl`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fence-cost.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("fence-cost version 0.1.0")
	},
}
