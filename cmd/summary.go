package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/happydash/internal/analysis"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	summaryFilters filterFlags
	summaryFormat  string
)

// summaryJSON is the machine-readable form of a report.
type summaryJSON struct {
	Dataset   string                `json:"dataset"`
	Spec      analysis.FilterSpec   `json:"spec"`
	Stats     analysis.SummaryStats `json:"stats"`
	KPIs      []string              `json:"kpis"`
	Countries int                   `json:"countries"`
	FirstYear int                   `json:"first_year,omitempty"`
	LastYear  int                   `json:"last_year,omitempty"`
	Warnings  []string              `json:"warnings,omitempty"`
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print means, KPIs and the strongest correlations for a selection",
	Example: `  happydash summary --year 2019 --year 2020 --country Finland --min 5
  happydash summary --format table`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(strings.TrimSpace(summaryFormat))
		switch format {
		case "", "markdown", "md", "table", "json":
		default:
			return fmt.Errorf("unsupported format: %s (use markdown|table|json)", summaryFormat)
		}
		ds, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}
		spec, err := summaryFilters.spec(cmd, ds)
		if err != nil {
			return err
		}
		view, stats, err := analysis.NewEngine(newLogger()).Update(ds, spec)
		if err != nil {
			return err
		}
		report := analysis.NewReport(ds.Name, spec, view, stats, cfg.TopCorrelations)

		out := cmd.OutOrStdout()
		switch format {
		case "table":
			renderSummaryTable(out, report)
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(summaryJSON{
				Dataset:   report.Name,
				Spec:      report.Spec,
				Stats:     report.Stats,
				KPIs:      report.KPIs(),
				Countries: report.Countries,
				FirstYear: report.FirstYear,
				LastYear:  report.LastYear,
				Warnings:  report.Warnings,
			})
		default:
			fmt.Fprint(out, report.Markdown())
		}
		return nil
	},
}

func renderSummaryTable(w io.Writer, r *analysis.Report) {
	metrics := tablewriter.NewWriter(w)
	metrics.SetHeader([]string{"Metric", "Value"})
	metrics.SetAutoWrapText(false)
	metrics.Append([]string{"Rows", fmt.Sprintf("%d", r.Stats.Rows)})
	metrics.Append([]string{"Countries", fmt.Sprintf("%d", r.Countries)})
	if r.Stats.Rows > 0 {
		metrics.Append([]string{"Years", fmt.Sprintf("%d-%d", r.FirstYear, r.LastYear)})
	}
	for _, kpi := range r.KPIs() {
		name, value, _ := strings.Cut(kpi, ": ")
		metrics.Append([]string{name, value})
	}
	metrics.Render()

	if len(r.TopPairs) == 0 {
		return
	}
	fmt.Fprintln(w)
	corr := tablewriter.NewWriter(w)
	corr.SetHeader([]string{"Column A", "Column B", "r"})
	corr.SetAutoWrapText(false)
	for _, p := range r.TopPairs {
		corr.Append([]string{p.A, p.B, fmt.Sprintf("%+.3f", p.R)})
	}
	corr.Render()
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryFilters.bind(summaryCmd)
	summaryCmd.Flags().StringVar(&summaryFormat, "format", "markdown", "output format: markdown|table|json")
}
