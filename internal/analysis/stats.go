package analysis

import (
	"math"

	"github.com/KaramelBytes/happydash/internal/dataset"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// SummaryStats are the aggregates shown next to the charts. A nil mean or
// correlation cell means there is no data to compute it from.
type SummaryStats struct {
	Rows              int         `json:"rows"`
	MeanHappiness     *float64    `json:"mean_happiness"`
	MeanGDP           *float64    `json:"mean_gdp"`
	MeanSocialSupport *float64    `json:"mean_social_support"`
	Correlation       *CorrMatrix `json:"correlation"`
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"` // row-major, Values[i][j]
}

// Get returns the coefficient for the pair (a, b). known is false when
// either column is not part of the matrix.
func (m *CorrMatrix) Get(a, b string) (r *float64, known bool) {
	if m == nil {
		return nil, false
	}
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return nil, false
	}
	return m.Values[i][j], true
}

func (m *CorrMatrix) index(col string) int {
	for i, c := range m.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Summarize computes means and the correlation matrix over view.
func Summarize(view FilteredView) SummaryStats {
	s := SummaryStats{Rows: view.Len()}
	s.MeanHappiness = mean(columnValues(view.Records, dataset.ColScore))
	s.MeanGDP = mean(columnValues(view.Records, dataset.ColGDP))
	s.MeanSocialSupport = mean(columnValues(view.Records, dataset.ColSocial))
	s.Correlation = correlate(view.Records, view.Columns)
	return s
}

func columnValues(rows []dataset.Record, col string) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v, ok := r.Value(col); ok {
			out = append(out, v)
		}
	}
	return out
}

func mean(vals []float64) *float64 {
	m, err := stats.Mean(vals)
	if err != nil || math.IsNaN(m) {
		return nil
	}
	return &m
}

// correlate builds the Pearson matrix from pairwise-complete observations.
func correlate(rows []dataset.Record, columns []string) *CorrMatrix {
	n := len(columns)
	m := &CorrMatrix{Columns: append([]string(nil), columns...), Values: make([][]*float64, n)}
	for i := range m.Values {
		m.Values[i] = make([]*float64, n)
	}
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			r := pearson(rows, columns[a], columns[b])
			m.Values[a][b] = r
			if a != b && r != nil {
				v := *r
				m.Values[b][a] = &v
			}
		}
	}
	return m
}

// pearson returns nil when the pair has fewer than two complete
// observations or either side has zero variance.
func pearson(rows []dataset.Record, a, b string) *float64 {
	xs := make([]float64, 0, len(rows))
	ys := make([]float64, 0, len(rows))
	for _, r := range rows {
		x, okx := r.Value(a)
		y, oky := r.Value(b)
		if okx && oky {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 || constant(xs) || constant(ys) {
		return nil
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return nil
	}
	if a == b {
		one := 1.0
		return &one
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil
	}
	r = math.Max(-1, math.Min(1, r))
	return &r
}

func constant(vals []float64) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}
