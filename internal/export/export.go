package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/happydash/internal/analysis"
	"github.com/KaramelBytes/happydash/internal/dataset"
	"github.com/google/uuid"
)

// Format of an exported snapshot.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json"; empty picks by the file extension.
func ParseFormat(s, path string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "":
		if strings.EqualFold(filepath.Ext(path), ".json") {
			return FormatJSON, nil
		}
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s (use csv|json)", s)
	}
}

// Snapshot is a filtered view frozen with the selection that produced it.
type Snapshot struct {
	ID        string                `json:"id"`
	CreatedAt time.Time             `json:"created_at"`
	Dataset   string                `json:"dataset"`
	Spec      analysis.FilterSpec   `json:"spec"`
	Stats     analysis.SummaryStats `json:"stats"`
	Columns   []string              `json:"columns"`
	Records   []dataset.Record      `json:"records"`
}

// NewSnapshot stamps view and stats with a fresh ID.
func NewSnapshot(name string, spec analysis.FilterSpec, view analysis.FilteredView, stats analysis.SummaryStats) *Snapshot {
	return &Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Dataset:   name,
		Spec:      spec,
		Stats:     stats,
		Columns:   view.Columns,
		Records:   view.Records,
	}
}

// Write encodes s and atomically replaces path.
func Write(path string, format Format, s *Snapshot) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
	case FormatCSV:
		data, err = encodeCSV(s)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
	return writeAtomic(path, data)
}

// encodeCSV writes country, year and score first, then the remaining numeric columns.
func encodeCSV(s *Snapshot) ([]byte, error) {
	header := []string{dataset.ColCountry, dataset.ColYear, dataset.ColScore}
	var extra []string
	for _, c := range s.Columns {
		if c != dataset.ColYear && c != dataset.ColScore {
			extra = append(extra, c)
		}
	}
	header = append(header, extra...)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range s.Records {
		row := make([]string, 0, len(header))
		row = append(row, r.Country, strconv.Itoa(r.Year), strconv.FormatFloat(r.HappinessScore, 'f', -1, 64))
		for _, c := range extra {
			if v, ok := r.Value(c); ok {
				row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// writeAtomic writes data to a temp file and renames it into place.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}
