// Package output provides output formatting interfaces.
// This package produces human and machine-readable estimate renderings.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"fence-cost/core/engine"
	"fence-cost/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given estimate
	Render(w io.Writer, estimate *engine.ProjectEstimate) error
}

// New returns a formatter for the named format
func New(format Format) (Formatter, error) {
	switch format {
	case FormatCLI, "":
		return &cliFormatter{}, nil
	case FormatJSON:
		return &jsonFormatter{}, nil
	default:
		return nil, errors.Newf(errors.TypeInput, "unknown output format %q", format)
	}
}

type jsonFormatter struct{}

func (f *jsonFormatter) Format() Format { return FormatJSON }

func (f *jsonFormatter) Render(w io.Writer, estimate *engine.ProjectEstimate) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(estimate)
}

type cliFormatter struct{}

func (f *cliFormatter) Format() Format { return FormatCLI }

func (f *cliFormatter) Render(w io.Writer, estimate *engine.ProjectEstimate) error {
	for _, item := range estimate.LineItems {
		for _, v := range item.Violations {
			fmt.Fprintf(w, "INVALID %s: %s\n", item.Input.ID, v.Message)
		}
	}
	for _, issue := range estimate.Issues {
		fmt.Fprintf(w, "ISSUE %s/%s: %s\n", issue.LineItemID, issue.Component, issue.Message)
	}

	fmt.Fprintln(w, "Bill of Materials")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SKU\tCALC\tROUNDED\tFINAL\tUNIT COST\tEXTENDED")
	for _, l := range estimate.BOM {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			l.MaterialSKU,
			l.Calculated.StringFixed(2),
			l.Rounded.StringFixed(0),
			l.FinalQuantity().StringFixed(2),
			l.UnitCost.StringFixed(2),
			l.ExtendedCost().StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Bill of Labor")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SKU\tCALC\tFINAL\tRATE\tEXTENDED")
	for _, l := range estimate.BOL {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			l.LaborSKU,
			l.Calculated.StringFixed(2),
			l.FinalQuantity().StringFixed(2),
			l.Rate.StringFixed(2),
			l.ExtendedCost().StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Materials: %s\n", estimate.MaterialTotal.StringFixed(2))
	fmt.Fprintf(w, "Labor:     %s\n", estimate.LaborTotal.StringFixed(2))
	fmt.Fprintf(w, "Total:     %s\n", estimate.Total.StringFixed(2))
	return nil
}
