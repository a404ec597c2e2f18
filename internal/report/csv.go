package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/couchcryptid/water-quality-service/internal/domain"
	"github.com/couchcryptid/water-quality-service/internal/history"
)

// CSV renders a single-test report: the raw parameters followed by the
// verdict columns, one header row and one data row.
func CSV(e history.Entry) ([]byte, error) {
	header := parameterColumns()
	header = append(header, "Result", "Confidence", "Quality", "Timestamp")

	row := parameterCells(e.Measurement)
	row = append(row,
		e.Result.Verdict(),
		formatFloat(e.Result.Confidence),
		string(e.Result.Quality),
		e.Timestamp.Format(TimestampLayout),
	)

	return writeCSV(header, [][]string{row})
}

// HistoryCSV exports entries one row each, verdict columns first, in the
// order given.
func HistoryCSV(entries []history.Entry) ([]byte, error) {
	header := []string{"Timestamp", "Result", "Confidence", "Quality"}
	header = append(header, parameterColumns()...)

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		row := []string{
			e.Timestamp.Format(TimestampLayout),
			e.Result.Verdict(),
			formatFloat(e.Result.Confidence),
			string(e.Result.Quality),
		}
		rows = append(rows, append(row, parameterCells(e.Measurement)...))
	}

	return writeCSV(header, rows)
}

func parameterColumns() []string {
	cols := make([]string, len(domain.Parameters))
	for i, p := range domain.Parameters {
		cols[i] = string(p)
	}
	return cols
}

func parameterCells(m domain.Measurement) []string {
	vals := make([]string, len(domain.Parameters))
	for i, p := range domain.Parameters {
		vals[i] = formatFloat(m.Value(p))
	}
	return vals
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv rows: %w", err)
	}
	return buf.Bytes(), nil
}
