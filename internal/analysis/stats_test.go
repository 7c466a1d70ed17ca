package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/happydash/internal/dataset"
)

func TestSummarizeCorrelation(t *testing.T) {
	view, stats, err := Update(scenario(), FilterSpec{ScoreRange: ScoreRange{0, 10}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	m := stats.Correlation
	if !equalStrings(m.Columns, numericCols) {
		t.Fatalf("columns = %#v", m.Columns)
	}
	gdp := columnValues(view.Records, dataset.ColGDP)
	score := columnValues(view.Records, dataset.ColScore)
	want := correlation(score, gdp)
	r, known := m.Get(dataset.ColScore, dataset.ColGDP)
	if !known || r == nil || !almostEqual(*r, want, 1e-9) {
		t.Fatalf("r(score, gdp) = %v, want %f", r, want)
	}
	back, _ := m.Get(dataset.ColGDP, dataset.ColScore)
	if back == nil || *back != *r {
		t.Fatalf("matrix is not symmetric")
	}
	if one, _ := m.Get(dataset.ColSocial, dataset.ColSocial); one == nil || *one != 1 {
		t.Fatalf("diagonal = %v", one)
	}
	if _, known := m.Get("Region", dataset.ColScore); known {
		t.Fatalf("unknown column reported as known")
	}
}

func TestCorrelationUndefinedCases(t *testing.T) {
	// Same year everywhere: zero variance.
	view, stats, err := Update(scenario(), FilterSpec{Years: []int{2020}, ScoreRange: ScoreRange{0, 10}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if view.Len() != 2 {
		t.Fatalf("view len = %d", view.Len())
	}
	if r, known := stats.Correlation.Get(dataset.ColYear, dataset.ColScore); !known || r != nil {
		t.Fatalf("r(year, score) with constant year = %v, want undefined", r)
	}
	if r, _ := stats.Correlation.Get(dataset.ColYear, dataset.ColYear); r != nil {
		t.Fatalf("diagonal of constant column = %v, want undefined", *r)
	}
	if r, _ := stats.Correlation.Get(dataset.ColScore, dataset.ColGDP); r == nil || !almostEqual(*r, 1, 1e-9) {
		t.Fatalf("r(score, gdp) = %v, want 1", r)
	}

	// A single row: fewer than two observations.
	_, stats, err = Update(scenario(), FilterSpec{Countries: []string{"B"}, ScoreRange: ScoreRange{0, 10}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	for _, row := range stats.Correlation.Values {
		for _, v := range row {
			if v != nil {
				t.Fatalf("single row produced a coefficient %v", *v)
			}
		}
	}
}

func TestCorrelationUsesPairwiseCompleteRows(t *testing.T) {
	rows := []dataset.Record{
		rec("A", 2020, 5, 1, 0.5),
		rec("B", 2021, 6, 2, 0.6),
		rec("C", 2022, 7, 3, 0.9),
		{Country: "D", Year: 2023, HappinessScore: 4, Values: map[string]float64{dataset.ColSocial: 0.1}},
	}
	cols := append(append([]string(nil), numericCols...), "Generosity")
	rows[0].Values["Generosity"] = 0.2
	ds := dataset.New("gaps", cols, rows)
	_, stats, err := Update(ds, FilterSpec{ScoreRange: ScoreRange{0, 10}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	// D has no GDP, so the score/gdp pair only sees A, B and C.
	if r, _ := stats.Correlation.Get(dataset.ColScore, dataset.ColGDP); r == nil || !almostEqual(*r, 1, 1e-9) {
		t.Fatalf("r(score, gdp) = %v, want 1", r)
	}
	// Generosity has one observation.
	if r, known := stats.Correlation.Get("Generosity", dataset.ColScore); !known || r != nil {
		t.Fatalf("r(generosity, score) = %v, want undefined", r)
	}
	if stats.MeanGDP == nil || !almostEqual(*stats.MeanGDP, 2, 1e-9) {
		t.Fatalf("mean gdp over present values = %v", stats.MeanGDP)
	}
	if !almostEqual(*stats.MeanHappiness, 5.5, 1e-9) {
		t.Fatalf("mean happiness = %v", *stats.MeanHappiness)
	}
}

func TestReportMarkdown(t *testing.T) {
	spec := FilterSpec{Years: []int{2020}, ScoreRange: ScoreRange{0, 10}}
	view, stats, err := Update(scenario(), spec)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	md := NewReport("final_data.csv", spec, view, stats, 0).Markdown()
	for _, want := range []string{
		"[DASHBOARD SUMMARY]",
		"- Dataset: final_data.csv",
		"- Rows: 2",
		"- Countries: 2",
		"- Years: 2020\n",
		"- Countries: all",
		"- Happiness Score: 0.00 to 10.00",
		"- Avg Happiness Score: 6.00",
		"- Avg GDP per Capita: 1.50",
		"- Avg Social Support: 0.65",
		"[CORRELATIONS]",
		"r=1.000",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "[NOTES]") {
		t.Fatalf("unexpected notes:\n%s", md)
	}
}

func TestReportEmptyView(t *testing.T) {
	spec := FilterSpec{ScoreRange: ScoreRange{10, 10}}
	view, stats, err := Update(scenario(), spec)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	r := NewReport("", spec, view, stats, 3)
	kpis := r.KPIs()
	if kpis[0] != "Avg Happiness Score: n/a" || kpis[1] != "Avg GDP per Capita: n/a" || kpis[2] != "Avg Social Support: n/a" {
		t.Fatalf("kpis = %#v", kpis)
	}
	md := r.Markdown()
	if !strings.Contains(md, "no rows match the current filters") || strings.Contains(md, "[CORRELATIONS]") {
		t.Fatalf("markdown:\n%s", md)
	}
}

func TestReportEscapesNames(t *testing.T) {
	spec := FilterSpec{Countries: []string{"[x](javascript:alert(1))", "<b>"}, ScoreRange: ScoreRange{0, 10}}
	view, stats, err := Update(scenario(), spec)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	md := NewReport("a*b.csv", spec, view, stats, 0).Markdown()
	for _, want := range []string{
		`- Dataset: a\*b.csv`,
		`- Countries: \<b\>, \[x\]\(javascript:alert\(1\)\)`,
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestStrongestPairsOrderAndLimit(t *testing.T) {
	a, b, c := 0.2, -0.9, 0.5
	m := &CorrMatrix{
		Columns: []string{"x", "y", "z"},
		Values: [][]*float64{
			{nil, &a, &b},
			{&a, nil, &c},
			{&b, &c, nil},
		},
	}
	pairs := strongestPairs(m, 2)
	if len(pairs) != 2 || pairs[0].A != "x" || pairs[0].B != "z" || pairs[1].B != "z" || pairs[1].A != "y" {
		t.Fatalf("pairs = %#v", pairs)
	}
}

func TestOptionsAndDefaultSpec(t *testing.T) {
	ds := dataset.New("opts", numericCols, []dataset.Record{
		rec("Togo", 2021, 2.9, 0.3, 0.4),
		rec("Finland", 2020, 7.8, 1.9, 0.95),
		rec("Togo", 2020, 3.1, 0.3, 0.4),
	})
	opt, err := Options(ds)
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if !equalInts(opt.Years, []int{2020, 2021}) || !equalStrings(opt.Countries, []string{"Finland", "Togo"}) {
		t.Fatalf("options = %+v", opt)
	}
	if opt.ScoreMin != 2.9 || opt.ScoreMax != 7.8 || opt.Step != ScoreStep {
		t.Fatalf("score bounds = %v..%v", opt.ScoreMin, opt.ScoreMax)
	}
	if !equalInts(opt.Marks, []int{2, 3, 4, 5, 6, 7}) {
		t.Fatalf("marks = %v", opt.Marks)
	}
	spec, err := DefaultSpec(ds)
	if err != nil {
		t.Fatalf("DefaultSpec: %v", err)
	}
	view, _, err := Update(ds, spec)
	if err != nil || view.Len() != 3 {
		t.Fatalf("default spec should keep everything: %d %v", view.Len(), err)
	}
	if _, err := Options(dataset.New("none", nil, nil)); err == nil {
		t.Fatalf("expected EmptyDatasetError")
	}
}

func TestSeriesAndScatter(t *testing.T) {
	rows := []dataset.Record{
		rec("A", 2021, 6.0, 1.2, 0.6),
		rec("B", 2020, 7.0, 2.0, 0.8),
		rec("A", 2019, 5.0, 1.0, 0.5),
		{Country: "C", Year: 2020, HappinessScore: 4, Values: map[string]float64{dataset.ColSocial: 0.3}},
	}
	view := FilteredView{Records: rows, Columns: numericCols}
	series := Series(view)
	if len(series) != 3 || series[0].Country != "A" || series[1].Country != "B" {
		t.Fatalf("series = %#v", series)
	}
	if pts := series[0].Points; len(pts) != 2 || pts[0].Year != 2019 || pts[1].Year != 2021 {
		t.Fatalf("A points = %#v", pts)
	}
	scatter := Scatter(view)
	if len(scatter) != 3 {
		t.Fatalf("scatter = %#v", scatter)
	}
	if p := scatter[1]; p.Country != "B" || p.GDPPerCapita != 2.0 || p.Score != 7.0 || p.SocialSupport != 0.8 {
		t.Fatalf("scatter B = %#v", p)
	}
}

func correlation(xs, ys []float64) float64 {
	mx, my := meanOf(xs), meanOf(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	return sxy / math.Sqrt(sxx*syy)
}

func meanOf(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
