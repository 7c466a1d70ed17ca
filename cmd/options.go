package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/happydash/internal/analysis"
	"github.com/spf13/cobra"
)

var optionsJSON bool

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the selectable years, countries and happiness score bounds",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}
		opt, err := analysis.Options(ds)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if optionsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(opt)
		}
		years := make([]string, len(opt.Years))
		for i, y := range opt.Years {
			years[i] = strconv.Itoa(y)
		}
		fmt.Fprintf(out, "Dataset: %s (%d rows)\n", ds.Name, ds.Len())
		fmt.Fprintf(out, "Years (%d): %s\n", len(opt.Years), strings.Join(years, ", "))
		fmt.Fprintf(out, "Countries (%d): %s\n", len(opt.Countries), strings.Join(opt.Countries, ", "))
		fmt.Fprintf(out, "Happiness Score: %.2f to %.2f (step %.1f)\n", opt.ScoreMin, opt.ScoreMax, opt.Step)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(optionsCmd)
	optionsCmd.Flags().BoolVar(&optionsJSON, "json", false, "print options as JSON")
}
