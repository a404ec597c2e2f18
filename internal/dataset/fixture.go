package dataset

import (
	"time"

	"github.com/couchcryptid/water-quality-service/internal/domain"
)

// Fixture is a set of scored samples together with the scoring mode that
// produced them.
type Fixture struct {
	Normalization domain.Normalization `json:"normalization"`
	GeneratedAt   time.Time            `json:"generated_at"`
	Records       []Record             `json:"records"`
}

// Record is one scored sample.
type Record struct {
	Row       int                `json:"row"`
	Data      domain.Measurement `json:"data"`
	Defaulted []domain.Parameter `json:"defaulted,omitempty"`
	Label     *bool              `json:"label,omitempty"`
	Result    domain.ScoreResult `json:"result"`
	Warnings  []string           `json:"warnings"`
}

// Skip reasons reported by Build.
const (
	SkipMissing     = "missing_field"
	SkipOutOfBounds = "out_of_bounds"
	SkipInvalid     = "invalid_value"
)

// Build scores every sample. With fillDefaults, absent parameters take their
// input-form defaults and are listed in Record.Defaulted; otherwise samples
// with gaps are skipped. Samples outside input bounds are always skipped.
// The returned map counts skipped samples by reason.
func Build(samples []Sample, s *domain.Scorer, fillDefaults bool, generatedAt time.Time) (Fixture, map[string]int) {
	fx := Fixture{
		Normalization: s.Normalization(),
		GeneratedAt:   generatedAt,
		Records:       make([]Record, 0, len(samples)),
	}
	skipped := map[string]int{}

	for _, sample := range samples {
		raw := sample.Raw
		var defaulted []domain.Parameter
		if fillDefaults {
			defaulted = raw.Missing()
			raw = raw.WithDefaults()
		}

		if len(domain.OutOfBounds(raw)) > 0 {
			skipped[SkipOutOfBounds]++
			continue
		}

		m, err := raw.Measurement()
		if err != nil {
			skipped[SkipMissing]++
			continue
		}

		result, err := s.Score(m)
		if err != nil {
			skipped[SkipInvalid]++
			continue
		}

		fx.Records = append(fx.Records, Record{
			Row:       sample.Row,
			Data:      m,
			Defaulted: defaulted,
			Label:     sample.Label,
			Result:    result,
			Warnings:  domain.Validate(m),
		})
	}
	return fx, skipped
}

// Agreement reports how many labelled records the score's potability verdict
// agrees with, and how many records carried a label at all.
func (f Fixture) Agreement() (agree, labelled int) {
	for _, r := range f.Records {
		if r.Label == nil {
			continue
		}
		labelled++
		if *r.Label == r.Result.Potable {
			agree++
		}
	}
	return agree, labelled
}
