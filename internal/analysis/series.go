package analysis

import "sort"

// Point is one year of a country's score.
type Point struct {
	Year  int     `json:"year"`
	Score float64 `json:"score"`
}

// CountrySeries is the score-over-years line of one country.
type CountrySeries struct {
	Country string  `json:"country"`
	Points  []Point `json:"points"`
}

// Series groups view by country, in order of first appearance, with
// points sorted by year.
func Series(view FilteredView) []CountrySeries {
	var out []CountrySeries
	pos := map[string]int{}
	for _, r := range view.Records {
		i, ok := pos[r.Country]
		if !ok {
			i = len(out)
			pos[r.Country] = i
			out = append(out, CountrySeries{Country: r.Country})
		}
		out[i].Points = append(out[i].Points, Point{Year: r.Year, Score: r.HappinessScore})
	}
	for i := range out {
		pts := out[i].Points
		sort.SliceStable(pts, func(a, b int) bool { return pts[a].Year < pts[b].Year })
	}
	return out
}

// ScatterPoint places a record by GDP and score, sized by social support.
type ScatterPoint struct {
	Country       string  `json:"country"`
	Year          int     `json:"year"`
	GDPPerCapita  float64 `json:"gdp_per_capita"`
	Score         float64 `json:"happiness_score"`
	SocialSupport float64 `json:"social_support"`
}

// Scatter returns the GDP vs score points. Records missing GDP or social
// support cannot be placed and are skipped.
func Scatter(view FilteredView) []ScatterPoint {
	out := make([]ScatterPoint, 0, view.Len())
	for _, r := range view.Records {
		gdp, ok := r.GDPPerCapita()
		if !ok {
			continue
		}
		social, ok := r.SocialSupport()
		if !ok {
			continue
		}
		out = append(out, ScatterPoint{
			Country:       r.Country,
			Year:          r.Year,
			GDPPerCapita:  gdp,
			Score:         r.HappinessScore,
			SocialSupport: social,
		})
	}
	return out
}
