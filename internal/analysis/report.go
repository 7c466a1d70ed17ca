package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// PairCorr is a single correlation pair.
type PairCorr struct {
	A, B string
	R    float64
}

// Report is a markdown-friendly summary of one dashboard update.
type Report struct {
	Name      string
	Spec      FilterSpec
	Stats     SummaryStats
	Countries int
	FirstYear int
	LastYear  int
	TopPairs  []PairCorr
	Warnings  []string
}

// NewReport summarizes view and stats. topPairs caps the listed
// correlation pairs; 0 uses 10.
func NewReport(name string, spec FilterSpec, view FilteredView, stats SummaryStats, topPairs int) *Report {
	if topPairs <= 0 {
		topPairs = 10
	}
	r := &Report{Name: name, Spec: spec, Stats: stats}
	countries := map[string]struct{}{}
	for i, rec := range view.Records {
		countries[rec.Country] = struct{}{}
		if i == 0 || rec.Year < r.FirstYear {
			r.FirstYear = rec.Year
		}
		if i == 0 || rec.Year > r.LastYear {
			r.LastYear = rec.Year
		}
	}
	r.Countries = len(countries)
	r.TopPairs = strongestPairs(stats.Correlation, topPairs)
	if view.Len() == 0 {
		r.Warnings = append(r.Warnings, "no rows match the current filters")
	}
	return r
}

// KPIs returns the key metric lines in display order.
func (r *Report) KPIs() []string {
	return []string{
		"Avg Happiness Score: " + fmtMean(r.Stats.MeanHappiness),
		"Avg GDP per Capita: " + fmtMean(r.Stats.MeanGDP),
		"Avg Social Support: " + fmtMean(r.Stats.MeanSocialSupport),
	}
}

func fmtMean(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

// Markdown renders a compact report for terminals and the HTML summary page.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DASHBOARD SUMMARY]\n\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("- Dataset: %s\n", escapeMarkdown(r.Name)))
	}
	b.WriteString(fmt.Sprintf("- Rows: %d\n", r.Stats.Rows))
	if r.Stats.Rows > 0 {
		b.WriteString(fmt.Sprintf("- Countries: %d\n", r.Countries))
		if r.FirstYear == r.LastYear {
			b.WriteString(fmt.Sprintf("- Years: %d\n", r.FirstYear))
		} else {
			b.WriteString(fmt.Sprintf("- Years: %d-%d\n", r.FirstYear, r.LastYear))
		}
	}

	b.WriteString("\n[FILTERS]\n\n")
	b.WriteString("- Years: " + joinInts(r.Spec.Years) + "\n")
	b.WriteString("- Countries: " + joinStrings(r.Spec.Countries) + "\n")
	b.WriteString(fmt.Sprintf("- Happiness Score: %.2f to %.2f\n", r.Spec.ScoreRange.Low, r.Spec.ScoreRange.High))

	b.WriteString("\n[KEY METRICS]\n\n")
	for _, k := range r.KPIs() {
		b.WriteString("- " + k + "\n")
	}

	if len(r.TopPairs) > 0 {
		b.WriteString("\n[CORRELATIONS]\n\n")
		for _, p := range r.TopPairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", escapeMarkdown(p.A), escapeMarkdown(p.B), p.R))
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n\n")
		for _, w := range r.Warnings {
			b.WriteString("- " + w + "\n")
		}
	}
	return b.String()
}

// strongestPairs lists defined off-diagonal pairs by descending |r|.
func strongestPairs(m *CorrMatrix, limit int) []PairCorr {
	if m == nil {
		return nil
	}
	var pairs []PairCorr
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if v := m.Values[i][j]; v != nil {
				pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: *v})
			}
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

func joinInts(vals []int) string {
	if len(vals) == 0 {
		return "all"
	}
	sorted := append([]int(nil), vals...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, v := range sorted {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

func joinStrings(vals []string) string {
	if len(vals) == 0 {
		return "all"
	}
	sorted := append([]string(nil), vals...)
	sort.Strings(sorted)
	for i, v := range sorted {
		sorted[i] = escapeMarkdown(v)
	}
	return strings.Join(sorted, ", ")
}

// Names come from query strings and file headers; they must render as text.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "[", `\[`, "]", `\]`,
	"(", `\(`, ")", `\)`, "<", `\<`, ">", `\>`, "|", `\|`,
)

func escapeMarkdown(s string) string { return markdownEscaper.Replace(s) }
