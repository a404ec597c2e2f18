// Package dataset reads labelled water potability samples from CSV and turns
// them into scored fixtures for the genmock and validate tools.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/water-quality-service/internal/domain"
)

// labelColumn holds the dataset's own 0/1 potability label, when present.
const labelColumn = "potability"

// Sample is one CSV row. Blank and NaN cells leave the parameter absent.
type Sample struct {
	Row   int                   // 1-based data row, header excluded
	Raw   domain.RawMeasurement // parsed parameter cells
	Label *bool                 // nil when the file has no label column or the cell is blank
}

// ReadCSV parses a potability CSV. Column names are matched case-insensitively
// against the parameter keys; every parameter column must be present, extra
// columns are ignored.
func ReadCSV(r io.Reader) ([]Sample, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("read csv: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, p := range domain.Parameters {
		if _, ok := colIdx[string(p)]; !ok {
			return nil, fmt.Errorf("read csv: missing column %q", string(p))
		}
	}

	var samples []Sample
	for row := 1; ; row++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", row, err)
		}

		s, err := parseRow(row, rec, colIdx)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func parseRow(row int, rec []string, colIdx map[string]int) (Sample, error) {
	s := Sample{Row: row}
	for _, p := range domain.Parameters {
		v, ok, err := cell(rec, colIdx[string(p)])
		if err != nil {
			return Sample{}, fmt.Errorf("row %d column %q: %w", row, string(p), err)
		}
		if ok {
			s.Raw.Set(p, v)
		}
	}

	if i, ok := colIdx[labelColumn]; ok {
		v, present, err := cell(rec, i)
		if err != nil {
			return Sample{}, fmt.Errorf("row %d column %q: %w", row, labelColumn, err)
		}
		if present {
			label := v != 0
			s.Label = &label
		}
	}
	return s, nil
}

// cell parses a numeric cell. Blank or NaN cells, and cells past the end of
// the record, report absent.
func cell(rec []string, i int) (float64, bool, error) {
	if i >= len(rec) {
		return 0, false, nil
	}
	text := strings.TrimSpace(rec[i])
	if text == "" || strings.EqualFold(text, "nan") {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}
