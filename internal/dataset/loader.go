package dataset

import (
	"context"
	"fmt"
)

// Options controls how a source is read and typed.
type Options struct {
	// Delimiter for CSV. If 0, chosen by extension (tab for .tsv, comma otherwise).
	Delimiter rune
	// DecimalSeparator of numeric cells. If 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// XLSX sheet selection. SheetName wins over SheetIndex (1-based).
	SheetName  string
	SheetIndex int
	// Table read by the Postgres loader.
	Table string
}

// DefaultOptions returns the options used for the happiness export files.
func DefaultOptions() Options {
	return Options{
		DecimalSeparator: '.',
		SheetIndex:       1,
		Table:            "final_data",
	}
}

// Loader reads a dataset from one kind of source.
type Loader interface {
	CanLoad(source string) bool
	Load(ctx context.Context, source string, opt Options) (*Dataset, error)
}

var registry []Loader

// Register adds a loader. Later registrations are consulted after earlier ones.
func Register(l Loader) {
	registry = append(registry, l)
}

// Load picks the first registered loader accepting source and reads it.
func Load(ctx context.Context, source string, opt Options) (*Dataset, error) {
	for _, l := range registry {
		if l.CanLoad(source) {
			return l.Load(ctx, source, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, source)
}

func init() {
	Register(postgresLoader{})
	Register(xlsxLoader{})
	Register(csvLoader{})
}
