// Package cmd - catalog commands
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fence-cost/adapters/catalogfile"
	"fence-cost/adapters/storage"
	"fence-cost/internal/config"
)

// catalogCmd groups catalog management commands
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage catalog data",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// catalogValidateCmd checks a catalog file and reports every problem
var catalogValidateCmd = &cobra.Command{
	Use:   "validate [catalog file]",
	Short: "Validate a catalog HCL file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := catalogfile.LoadCatalog(args[0])
		if err != nil {
			return err
		}
		errs := snap.Validate()
		if len(errs) == 0 {
			fmt.Println("Catalog is valid.")
			return nil
		}
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "%v\n", e)
		}
		return fmt.Errorf("catalog validation failed with %d errors", len(errs))
	},
}

var importStorePath string

// catalogImportCmd loads a catalog file into the SQLite store
var catalogImportCmd = &cobra.Command{
	Use:   "import [catalog file]",
	Short: "Import a catalog HCL file into the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := catalogfile.LoadCatalog(args[0])
		if err != nil {
			return err
		}
		if errs := snap.Validate(); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintf(os.Stderr, "%v\n", e)
			}
			return fmt.Errorf("catalog validation failed with %d errors", len(errs))
		}

		path := importStorePath
		if path == "" {
			path = config.Get().Store.Path
		}
		store, err := storage.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SaveCatalog(snap); err != nil {
			return err
		}
		fmt.Printf("Imported %d materials, %d labor codes, %d rules into %s\n",
			len(snap.Materials), len(snap.LaborCodes), len(snap.Rules), path)
		return nil
	},
}

func init() {
	catalogImportCmd.Flags().StringVar(&importStorePath, "store", "", "SQLite store path")
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogImportCmd)
}
