// Package cmd - estimate command
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fence-cost/adapters/catalogfile"
	"fence-cost/adapters/storage"
	"fence-cost/core/catalog"
	"fence-cost/core/engine"
	"fence-cost/core/output"
	"fence-cost/internal/config"
	"fence-cost/internal/logging"
)

var (
	catalogPath  string
	outputFormat string
	businessUnit string
	storePath    string
	saveEstimate bool
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate [project file]",
	Short: "Estimate a fence project",
	Long: `Evaluate a project definition against a catalog and produce a
bill of materials and a bill of labor.

The catalog comes from an HCL file (--catalog) or from the SQLite
store (--store). With --save the aggregated estimate is persisted to
the store, preserving any manual overrides.

Examples:
  fence-cost estimate --catalog catalog.hcl project.hcl
  fence-cost estimate --store fence-cost.db --save project.hcl
  fence-cost estimate --catalog catalog.hcl --format json project.hcl`,
	Args: cobra.ExactArgs(1),
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().StringVarP(&catalogPath, "catalog", "c", "", "catalog HCL file")
	estimateCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json)")
	estimateCmd.Flags().StringVarP(&businessUnit, "business-unit", "b", "", "business unit for labor rates")
	estimateCmd.Flags().StringVar(&storePath, "store", "", "SQLite store path")
	estimateCmd.Flags().BoolVar(&saveEstimate, "save", false, "persist the estimate to the store")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	project, err := catalogfile.LoadProject(args[0])
	if err != nil {
		return err
	}

	var store *storage.Store
	if storePath != "" || saveEstimate {
		path := storePath
		if path == "" {
			path = cfg.Store.Path
		}
		store, err = storage.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	var snap *catalog.Snapshot
	switch {
	case catalogPath != "":
		snap, err = catalogfile.LoadCatalog(catalogPath)
	case store != nil:
		snap, err = store.LoadCatalog()
	default:
		return fmt.Errorf("either --catalog or --store is required")
	}
	if err != nil {
		return err
	}

	if errs := snap.Validate(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "catalog: %v\n", e)
		}
		return fmt.Errorf("catalog validation failed with %d errors", len(errs))
	}

	eng, err := engine.New(snap)
	if err != nil {
		return err
	}

	unit := businessUnit
	if unit == "" {
		unit = project.BusinessUnit
	}
	if unit == "" {
		unit = cfg.Estimate.BusinessUnit
	}

	logging.Info("estimating project",
		zap.String("project", project.Name),
		zap.String("business_unit", unit),
		zap.Int("line_items", len(project.Items)))

	estimate, err := eng.CalculateProject(project.Name, project.Items, unit, time.Now())
	if err != nil {
		return err
	}

	if saveEstimate && store != nil {
		if err := store.SaveEstimate(project.Name, estimate, unit); err != nil {
			return err
		}
	}

	format := output.Format(outputFormat)
	if outputFormat == "" {
		format = output.Format(cfg.Output.DefaultFormat)
	}
	formatter, err := output.New(format)
	if err != nil {
		return err
	}
	return formatter.Render(os.Stdout, estimate)
}
