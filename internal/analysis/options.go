package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/happydash/internal/dataset"
	"github.com/montanaflynn/stats"
)

// ScoreStep is the granularity of the score range selector.
const ScoreStep = 0.1

// FilterOptions are the selectable values, derived once from the full dataset.
type FilterOptions struct {
	Years     []int    `json:"years"`
	Countries []string `json:"countries"`
	ScoreMin  float64  `json:"score_min"`
	ScoreMax  float64  `json:"score_max"`
	// Marks are the integer labels between floor(min) and floor(max).
	Marks []int   `json:"marks"`
	Step  float64 `json:"step"`
}

// Options enumerates years, countries and score bounds of ds.
func Options(ds *dataset.Dataset) (FilterOptions, error) {
	if ds.Len() == 0 {
		name := ""
		if ds != nil {
			name = ds.Name
		}
		return FilterOptions{}, &EmptyDatasetError{Name: name}
	}
	years := map[int]struct{}{}
	countries := map[string]struct{}{}
	scores := make([]float64, 0, ds.Len())
	for _, r := range ds.Records {
		years[r.Year] = struct{}{}
		countries[r.Country] = struct{}{}
		scores = append(scores, r.HappinessScore)
	}
	opt := FilterOptions{Step: ScoreStep}
	for y := range years {
		opt.Years = append(opt.Years, y)
	}
	sort.Ints(opt.Years)
	for c := range countries {
		opt.Countries = append(opt.Countries, c)
	}
	sort.Strings(opt.Countries)

	// scores is non-empty here, so Min and Max cannot fail.
	opt.ScoreMin, _ = stats.Min(scores)
	opt.ScoreMax, _ = stats.Max(scores)
	for i := int(math.Floor(opt.ScoreMin)); i <= int(math.Floor(opt.ScoreMax)); i++ {
		opt.Marks = append(opt.Marks, i)
	}
	return opt, nil
}

// DefaultSpec is the initial selection: every year and country, full score range.
func DefaultSpec(ds *dataset.Dataset) (FilterSpec, error) {
	opt, err := Options(ds)
	if err != nil {
		return FilterSpec{}, err
	}
	return FilterSpec{ScoreRange: ScoreRange{Low: opt.ScoreMin, High: opt.ScoreMax}}, nil
}
