package history

import "fmt"

// Summary aggregates the ledger. The percentage and average fields are nil
// when the ledger is empty.
type Summary struct {
	Total             int      `json:"total"`
	Potable           int      `json:"potable"`
	NotPotable        int      `json:"not_potable"`
	PotablePercent    *float64 `json:"potable_percent"`
	NotPotablePercent *float64 `json:"not_potable_percent"`
	AverageConfidence *float64 `json:"average_confidence"`
}

// TrendPoint is one test in chronological order, labelled "Test 1" onwards.
type TrendPoint struct {
	Test       string  `json:"test"`
	Confidence float64 `json:"confidence"`
	Status     string  `json:"status"` // "Safe" or "Unsafe"
}

// Summarize counts potable and non-potable entries and averages confidence.
func (l *Ledger) Summarize() Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Summary{Total: len(l.entries)}
	if s.Total == 0 {
		return s
	}

	var sum float64
	for _, e := range l.entries {
		if e.Result.Potable {
			s.Potable++
		}
		sum += e.Result.Confidence
	}
	s.NotPotable = s.Total - s.Potable

	total := float64(s.Total)
	potablePct := float64(s.Potable) / total * 100
	notPotablePct := float64(s.NotPotable) / total * 100
	avg := sum / total

	s.PotablePercent = &potablePct
	s.NotPotablePercent = &notPotablePct
	s.AverageConfidence = &avg
	return s
}

// Trend returns the ledger as chronological confidence points.
func (l *Ledger) Trend() []TrendPoint {
	entries := l.Chronological()
	out := make([]TrendPoint, len(entries))
	for i, e := range entries {
		status := "Unsafe"
		if e.Result.Potable {
			status = "Safe"
		}
		out[i] = TrendPoint{
			Test:       fmt.Sprintf("Test %d", i+1),
			Confidence: e.Result.Confidence,
			Status:     status,
		}
	}
	return out
}
