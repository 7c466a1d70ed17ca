package dataset

import (
	"fmt"
	"strings"
)

// build types raw header/rows into a Dataset. It is shared by every loader.
func build(name, source string, header []string, rows [][]string, opt Options) (*Dataset, error) {
	ncol := len(header)
	names := make([]string, ncol)
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		names[i] = h
	}

	// Resolve required columns and rename them to their canonical spelling.
	idx := make(map[string]int, len(RequiredColumns))
	for _, req := range RequiredColumns {
		found := -1
		for i, n := range names {
			if strings.EqualFold(n, req) {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, &MissingColumnError{Column: req, Source: source}
		}
		idx[req] = found
		names[found] = req
	}
	countryIdx, yearIdx, scoreIdx := idx[ColCountry], idx[ColYear], idx[ColScore]

	// Repeated headers keep their first occurrence.
	dup := make([]bool, ncol)
	var dupNames []string
	seenName := make(map[string]bool, ncol)
	for i, n := range names {
		key := strings.ToLower(n)
		if seenName[key] {
			dup[i] = true
			dupNames = append(dupNames, n)
			continue
		}
		seenName[key] = true
	}

	maxRows := opt.MaxRows
	if maxRows <= 0 || maxRows > len(rows) {
		maxRows = len(rows)
	}
	ds := &Dataset{Name: name}
	for _, n := range dupNames {
		ds.Warnings = append(ds.Warnings, fmt.Sprintf("duplicate column %q ignored", n))
	}
	if maxRows < len(rows) {
		ds.Warnings = append(ds.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", maxRows, len(rows)))
	}
	rows = rows[:maxRows]
	for i, rec := range rows {
		if len(rec) < ncol {
			tmp := make([]string, ncol)
			copy(tmp, rec)
			rows[i] = tmp
		}
	}

	// A column is numeric when every non-missing cell parses. GDP and social
	// support are numeric by contract; their unparsable cells count as missing.
	numeric := make([]bool, ncol)
	for j := 0; j < ncol; j++ {
		if j == countryIdx || dup[j] {
			continue
		}
		switch names[j] {
		case ColYear, ColScore, ColGDP, ColSocial:
			numeric[j] = true
			continue
		}
		seen := 0
		ok := true
		for _, rec := range rows {
			v := rec[j]
			if isMissing(v) {
				continue
			}
			seen++
			if _, good := parseNumeric(v, opt); !good {
				ok = false
				break
			}
		}
		numeric[j] = ok && seen > 0
	}
	for j := 0; j < ncol; j++ {
		if numeric[j] {
			ds.NumericColumns = append(ds.NumericColumns, names[j])
		}
	}

	skipped := 0
	bad := map[string]int{}
	ds.Records = make([]Record, 0, len(rows))
	for _, rec := range rows {
		country := strings.TrimSpace(rec[countryIdx])
		year, okY := parseYear(rec[yearIdx], opt)
		score, okS := parseNumeric(rec[scoreIdx], opt)
		if country == "" || !okY || !okS {
			skipped++
			continue
		}
		r := Record{Country: country, Year: year, HappinessScore: score, Values: map[string]float64{}}
		for j := 0; j < ncol; j++ {
			if !numeric[j] || j == yearIdx || j == scoreIdx {
				continue
			}
			v := rec[j]
			if isMissing(v) {
				continue
			}
			x, ok := parseNumeric(v, opt)
			if !ok {
				bad[names[j]]++
				continue
			}
			r.Values[names[j]] = x
		}
		ds.Records = append(ds.Records, r)
	}
	if skipped > 0 {
		ds.Warnings = append(ds.Warnings, fmt.Sprintf("skipped %d rows without country, year or happiness score", skipped))
	}
	for _, col := range []string{ColGDP, ColSocial} {
		if n := bad[col]; n > 0 {
			ds.Warnings = append(ds.Warnings, fmt.Sprintf("%d non-numeric %s cells treated as missing", n, col))
		}
	}
	return ds, nil
}
