package analysis

import (
	"math"

	"github.com/KaramelBytes/happydash/internal/dataset"
	"github.com/rs/zerolog"
)

// ScoreRange bounds the happiness score, inclusive on both ends.
type ScoreRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether low <= score <= high.
func (r ScoreRange) Contains(score float64) bool {
	return r.Low <= score && score <= r.High
}

// FilterSpec is the set of active selections. Empty Years or Countries
// means that dimension is not restricted.
type FilterSpec struct {
	Years      []int      `json:"years"`
	Countries  []string   `json:"countries"`
	ScoreRange ScoreRange `json:"score_range"`
}

// Validate checks the score range.
func (s FilterSpec) Validate() error {
	r := s.ScoreRange
	if !finite(r.Low) || !finite(r.High) || r.Low > r.High {
		return &InvalidRangeError{Low: r.Low, High: r.High}
	}
	return nil
}

// FilteredView is the ordered subset of records matching a FilterSpec.
type FilteredView struct {
	Records []dataset.Record `json:"records"`
	// Columns are the numeric columns of the source dataset.
	Columns []string `json:"columns"`
}

// Len returns the number of records in the view.
func (v FilteredView) Len() int { return len(v.Records) }

// Dataset wraps the view as a dataset so it can be filtered again.
func (v FilteredView) Dataset(name string) *dataset.Dataset {
	return dataset.New(name, v.Columns, v.Records)
}

// Engine filters a dataset and derives summary statistics. It holds no
// state between calls and is safe for concurrent use.
type Engine struct {
	log zerolog.Logger
}

// NewEngine returns an engine that traces each filter step at debug level.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{log: log}
}

var defaultEngine = NewEngine(zerolog.Nop())

// Update is Engine.Update without logging.
func Update(ds *dataset.Dataset, spec FilterSpec) (FilteredView, SummaryStats, error) {
	return defaultEngine.Update(ds, spec)
}

// Update applies spec to ds and summarizes the surviving records.
// Years, then countries, then the score range narrow the result; record
// order is preserved.
func (e *Engine) Update(ds *dataset.Dataset, spec FilterSpec) (FilteredView, SummaryStats, error) {
	if err := spec.Validate(); err != nil {
		return FilteredView{}, SummaryStats{}, err
	}
	if ds.Len() == 0 {
		name := ""
		if ds != nil {
			name = ds.Name
		}
		return FilteredView{}, SummaryStats{}, &EmptyDatasetError{Name: name}
	}

	rows := ds.Records
	if len(spec.Years) > 0 {
		years := make(map[int]struct{}, len(spec.Years))
		for _, y := range spec.Years {
			years[y] = struct{}{}
		}
		rows = keep(rows, func(r dataset.Record) bool {
			_, ok := years[r.Year]
			return ok
		})
	}
	e.log.Debug().Str("step", "years").Ints("years", spec.Years).Int("rows", len(rows)).Msg("filter")

	if len(spec.Countries) > 0 {
		countries := make(map[string]struct{}, len(spec.Countries))
		for _, c := range spec.Countries {
			countries[c] = struct{}{}
		}
		rows = keep(rows, func(r dataset.Record) bool {
			_, ok := countries[r.Country]
			return ok
		})
	}
	e.log.Debug().Str("step", "countries").Strs("countries", spec.Countries).Int("rows", len(rows)).Msg("filter")

	rows = keep(rows, func(r dataset.Record) bool { return spec.ScoreRange.Contains(r.HappinessScore) })
	e.log.Debug().Str("step", "score").
		Float64("low", spec.ScoreRange.Low).
		Float64("high", spec.ScoreRange.High).
		Int("rows", len(rows)).
		Msg("filter")

	columns := make([]string, len(ds.NumericColumns))
	copy(columns, ds.NumericColumns)
	view := FilteredView{Records: rows, Columns: columns}
	return view, Summarize(view), nil
}

// keep returns a new slice with the records matching pred, in order.
func keep(in []dataset.Record, pred func(dataset.Record) bool) []dataset.Record {
	out := make([]dataset.Record, 0, len(in))
	for _, r := range in {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
