package cmd

import (
	"fmt"

	"github.com/KaramelBytes/happydash/internal/analysis"
	"github.com/KaramelBytes/happydash/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportFilters filterFlags
	exportOutput  string
	exportFormat  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered rows and their statistics to a CSV or JSON file",
	Example: `  happydash export -o nordics.csv --country Finland --country Norway
  happydash export -o 2020.json --year 2020`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportOutput == "" {
			return fmt.Errorf("--output is required")
		}
		format, err := export.ParseFormat(exportFormat, exportOutput)
		if err != nil {
			return err
		}
		ds, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}
		spec, err := exportFilters.spec(cmd, ds)
		if err != nil {
			return err
		}
		view, stats, err := analysis.NewEngine(newLogger()).Update(ds, spec)
		if err != nil {
			return err
		}
		snap := export.NewSnapshot(ds.Name, spec, view, stats)
		if err := export.Write(exportOutput, format, snap); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if view.Len() == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "⚠ Warning: no rows match the current filters")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d rows to %s (%s)\n", view.Len(), exportOutput, format)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportFilters.bind(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file path")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "csv|json (default by file extension)")
}
