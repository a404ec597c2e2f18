// Package report renders scored measurements as downloadable JSON and CSV
// documents, both for a single test and for a whole history ledger.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/water-quality-service/internal/domain"
	"github.com/couchcryptid/water-quality-service/internal/history"
)

// Fixed labels carried by every single-test JSON report.
const (
	ModelLabel     = "Random Forest (89.07% accuracy)"
	StandardsLabel = "WHO/EPA Guidelines"
)

// TimestampLayout is used for every timestamp written into a report.
const TimestampLayout = "2006-01-02 15:04:05"

const fileStampLayout = "20060102_150405"

// Format selects the report encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "json" or "csv", case-insensitively. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported report format %q: want json|csv", s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// ReportFilename names a single-test report generated at t.
func ReportFilename(f Format, t time.Time) string {
	return fmt.Sprintf("water_quality_report_%s.%s", t.Format(fileStampLayout), f)
}

// HistoryFilename names a history export generated at t.
func HistoryFilename(f Format, t time.Time) string {
	return fmt.Sprintf("water_quality_history_%s.%s", t.Format(fileStampLayout), f)
}

// statusObject encodes label → status pairs as a JSON object in canonical order.
type statusObject domain.Statuses

func (s statusObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, st := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(st.Label())
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(st.Status)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// parameterValues encodes a measurement keyed by wire name in canonical
// order, with every value carrying a decimal point.
type parameterValues domain.Measurement

func (v parameterValues) MarshalJSON() ([]byte, error) {
	m := domain.Measurement(v)
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range domain.Parameters {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(string(p)))
		buf.WriteByte(':')
		buf.WriteString(formatFloat(m.Value(p)))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Document is the single-test JSON report.
type Document struct {
	TestDate        string          `json:"Test Date"`
	Result          string          `json:"Result"`
	QualityGrade    domain.Quality  `json:"Quality Grade"`
	ConfidenceScore string          `json:"Confidence Score"`
	Parameters      parameterValues `json:"Parameters"`
	ParameterStatus statusObject    `json:"Parameter Status"`
	Model           string          `json:"Model"`
	Standards       string          `json:"Standards"`
}

// NewDocument builds the single-test report for an entry.
func NewDocument(e history.Entry) Document {
	return Document{
		TestDate:        e.Timestamp.Format(TimestampLayout),
		Result:          e.Result.Verdict(),
		QualityGrade:    e.Result.Quality,
		ConfidenceScore: formatFloat(e.Result.Confidence) + "%",
		Parameters:      parameterValues(e.Measurement),
		ParameterStatus: statusObject(e.Result.Parameters),
		Model:           ModelLabel,
		Standards:       StandardsLabel,
	}
}

// JSON renders the single-test report, indented by two spaces.
func JSON(e history.Entry) ([]byte, error) {
	return marshalIndent(NewDocument(e))
}

// Render encodes a single-test report in the requested format.
func Render(f Format, e history.Entry) ([]byte, error) {
	if f == FormatCSV {
		return CSV(e)
	}
	return JSON(e)
}

// RenderHistory encodes a ledger export in the requested format.
func RenderHistory(f Format, entries []history.Entry) ([]byte, error) {
	if f == FormatCSV {
		return HistoryCSV(entries)
	}
	return HistoryJSON(entries)
}

// historyRecord mirrors one entry in a JSON history export.
type historyRecord struct {
	Timestamp string             `json:"timestamp"`
	Result    domain.ScoreResult `json:"result"`
	Data      parameterValues    `json:"data"`
}

// HistoryJSON exports entries as a JSON array in the order given (ledger
// order is newest first).
func HistoryJSON(entries []history.Entry) ([]byte, error) {
	records := make([]historyRecord, len(entries))
	for i, e := range entries {
		records[i] = historyRecord{
			Timestamp: e.Timestamp.Format(TimestampLayout),
			Result:    e.Result,
			Data:      parameterValues(e.Measurement),
		}
	}
	return marshalIndent(records)
}

func marshalIndent(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return data, nil
}

// formatFloat writes v in its shortest form but always with a decimal
// point, so 180 renders as "180.0" and 7.25 as "7.25".
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
