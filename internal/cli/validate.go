package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gridq/internal/ir"
	"github.com/roach88/gridq/internal/record"
)

// GridSummary describes one valid grid.
type GridSummary struct {
	Name    string          `json:"name"`
	Columns []ir.ColumnSpec `json:"columns"`
	Options ir.GridOptions  `json:"options"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool          `json:"valid"`
	Grids []GridSummary `json:"grids"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <grid.cue>",
		Short: "Validate a grid schema",
		Long: `Validate the grids declared in a CUE schema file.

Checks column kinds, operator lists, comparers and grid options, and
reports the first problem with its position in the file.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	specs, err := loadGrids(path)
	if err != nil {
		return loadErrorExit(formatter, err)
	}

	result := ValidationResult{Valid: true, Grids: make([]GridSummary, 0, len(specs))}
	for _, spec := range specs {
		formatter.VerboseLog("Validating grid: %s", spec.Name)
		if _, err := record.Columns(spec); err != nil {
			return loadErrorExit(formatter, &LoadError{
				Code:    ErrCodeInvalidColumn,
				Message: fmt.Sprintf("grid %s: %v", spec.Name, err),
			})
		}
		result.Grids = append(result.Grids, GridSummary{Name: spec.Name, Columns: spec.Columns, Options: spec.Options})
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	for _, g := range result.Grids {
		cols := make([]string, len(g.Columns))
		for i, c := range g.Columns {
			cols[i] = c.Name + " " + c.Kind
		}
		fmt.Fprintf(formatter.Writer, "%s %s: %s\n", passStyle.Render("✓"), g.Name, strings.Join(cols, ", "))
	}
	fmt.Fprintf(formatter.Writer, "%d grid(s) valid\n", len(result.Grids))
	return nil
}
