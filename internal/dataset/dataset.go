package dataset

import (
	"encoding/json"
	"strings"
)

// Canonical names of the columns the dashboard relies on.
const (
	ColCountry = "Country name"
	ColYear    = "Year"
	ColScore   = "Happiness Score"
	ColGDP     = "GDP per Capita"
	ColSocial  = "Social support"
)

// RequiredColumns must be present in every source, matched case-insensitively.
var RequiredColumns = []string{ColCountry, ColYear, ColScore, ColGDP, ColSocial}

// Record is one country/year row.
type Record struct {
	Country        string
	Year           int
	HappinessScore float64
	// Values holds every other numeric column by name. Missing cells have no key.
	Values map[string]float64
}

// Value returns the numeric value of col for this record.
// Year and Happiness Score are always present.
func (r Record) Value(col string) (float64, bool) {
	switch col {
	case ColYear:
		return float64(r.Year), true
	case ColScore:
		return r.HappinessScore, true
	}
	v, ok := r.Values[col]
	return v, ok
}

// GDPPerCapita returns the GDP per capita cell, if present.
func (r Record) GDPPerCapita() (float64, bool) { return r.Value(ColGDP) }

// SocialSupport returns the social support cell, if present.
func (r Record) SocialSupport() (float64, bool) { return r.Value(ColSocial) }

// MarshalJSON flattens the record into a single object keyed by column name.
func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Values)+3)
	for k, v := range r.Values {
		m[k] = v
	}
	m[ColCountry] = r.Country
	m[ColYear] = r.Year
	m[ColScore] = r.HappinessScore
	return json.Marshal(m)
}

// Dataset is the table loaded once at startup. It must not be mutated after load.
type Dataset struct {
	Name    string
	Records []Record
	// NumericColumns lists numeric columns in source header order, Year and
	// Happiness Score included.
	NumericColumns []string
	Warnings       []string
}

// New builds a dataset over already-typed records.
func New(name string, numeric []string, records []Record) *Dataset {
	return &Dataset{Name: name, NumericColumns: numeric, Records: records}
}

// Len returns the number of records; a nil dataset has none.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// HasColumn reports whether name is one of the numeric columns.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.NumericColumns {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}
