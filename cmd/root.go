package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/KaramelBytes/happydash/internal/analysis"
	cfgpkg "github.com/KaramelBytes/happydash/internal/config"
	"github.com/KaramelBytes/happydash/internal/dataset"
	"github.com/KaramelBytes/happydash/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags (override config if set)
	cfgFile        string
	debug          bool
	flagDataPath   string
	flagSheetName  string
	flagSheetIndex int
	flagTable      string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "happydash",
	Short: "World happiness dashboard: filter, summarize and serve the happiness dataset",
	Long: `happydash loads the world happiness dataset (CSV, TSV, XLSX or a Postgres table),
filters it by year, country and happiness score, and reports means and correlations
from the terminal or over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.happydash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagDataPath, "data", "", "dataset path or postgres:// DSN (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagSheetName, "sheet-name", "", "XLSX sheet name (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagSheetIndex, "sheet-index", 0, "1-based XLSX sheet index (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagTable, "table", "", "Postgres table holding the dataset (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: config show/set can still run
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("data") && flagDataPath != "" {
		cfg.DataPath = flagDataPath
	}
	if f.Changed("sheet-name") {
		cfg.SheetName = flagSheetName
	}
	if f.Changed("sheet-index") && flagSheetIndex > 0 {
		cfg.SheetIndex = flagSheetIndex
	}
	if f.Changed("table") && flagTable != "" {
		cfg.Table = flagTable
	}
}

// newLogger builds the diagnostic logger; stdout stays reserved for command output.
func newLogger() zerolog.Logger {
	if cfg == nil {
		return logging.New("info", debug, os.Stderr)
	}
	return logging.NewFormat(cfg.LogFormat, cfg.LogLevel, debug, os.Stderr)
}

// loadDataset reads the configured dataset and reports loader warnings.
func loadDataset(ctx context.Context) (*dataset.Dataset, error) {
	if cfg == nil {
		return nil, errors.New("no config loaded")
	}
	opt, err := cfg.DatasetOptions()
	if err != nil {
		return nil, err
	}
	ds, err := dataset.Load(ctx, cfg.DataPath, opt)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	for _, w := range ds.Warnings {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", w)
	}
	return ds, nil
}

// filterFlags is the selection shared by summary and export.
type filterFlags struct {
	years     []int
	countries []string
	min, max  float64
}

func (f *filterFlags) bind(c *cobra.Command) {
	c.Flags().IntSliceVar(&f.years, "year", nil, "years to include (repeatable or comma-separated; default all)")
	c.Flags().StringArrayVar(&f.countries, "country", nil, "countries to include (repeatable; default all)")
	c.Flags().Float64Var(&f.min, "min", 0, "lowest happiness score to include (default dataset minimum)")
	c.Flags().Float64Var(&f.max, "max", 0, "highest happiness score to include (default dataset maximum)")
}

// spec starts from the select-everything default and applies the flags that were set.
func (f *filterFlags) spec(c *cobra.Command, ds *dataset.Dataset) (analysis.FilterSpec, error) {
	spec, err := analysis.DefaultSpec(ds)
	if err != nil {
		return spec, err
	}
	spec.Years = append([]int(nil), f.years...)
	spec.Countries = append([]string(nil), f.countries...)
	if c.Flags().Changed("min") {
		spec.ScoreRange.Low = f.min
	}
	if c.Flags().Changed("max") {
		spec.ScoreRange.High = f.max
	}
	return spec, spec.Validate()
}
