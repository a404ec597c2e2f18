package domain

import (
	"fmt"
	"math"
)

// Quality thresholds on the confidence score. PotableThreshold doubles as the
// lower bound of the Good grade.
const (
	ExcellentThreshold = 85.0
	PotableThreshold   = 70.0
	FairThreshold      = 50.0
)

// Contribution factors: a parameter in range contributes weight × factorGood,
// otherwise weight × its reduced factor.
const (
	factorGood = 100.0

	solidsTierLimit = 1000.0
	solidsTierHigh  = 70.0
	solidsTierLow   = 40.0
)

// Normalization selects the divisor applied to the summed contributions.
type Normalization string

const (
	// NormalizeFieldCount divides by the number of parameters (9). This is the
	// documented behavior of the tool and the default.
	NormalizeFieldCount Normalization = "field_count"
	// NormalizeWeightSum divides by the sum of the weights, which puts an
	// all-good measurement at 100.
	NormalizeWeightSum Normalization = "weight_sum"
)

// rule is the threshold test for one parameter.
type rule struct {
	param   Parameter
	good    func(v float64) bool
	reduced func(v float64) float64
}

func fixed(f float64) func(float64) float64 {
	return func(float64) float64 { return f }
}

func below(limit float64) func(float64) bool {
	return func(v float64) bool { return v < limit }
}

var rules = []rule{
	{ParamPH, func(v float64) bool { return v >= phOptimalMin && v <= phOptimalMax }, fixed(50)},
	{ParamHardness, below(300), fixed(60)},
	{ParamSolids, below(500), func(v float64) float64 {
		if v < solidsTierLimit {
			return solidsTierHigh
		}
		return solidsTierLow
	}},
	{ParamChloramines, below(4), fixed(60)},
	{ParamSulfate, below(250), fixed(50)},
	{ParamConductivity, below(400), fixed(70)},
	{ParamOrganicCarbon, below(2), fixed(70)},
	{ParamTrihalomethanes, below(80), fixed(50)},
	{ParamTurbidity, below(5), fixed(60)},
}

// Scorer maps measurements to weighted 0-100 scores.
type Scorer struct {
	normalization Normalization
	divisor       float64
}

// NewScorer builds a Scorer. An empty normalization selects NormalizeFieldCount.
func NewScorer(n Normalization) (*Scorer, error) {
	switch n {
	case "", NormalizeFieldCount:
		return &Scorer{normalization: NormalizeFieldCount, divisor: float64(len(rules))}, nil
	case NormalizeWeightSum:
		var sum float64
		for _, r := range rules {
			sum += r.param.Weight()
		}
		return &Scorer{normalization: n, divisor: sum}, nil
	default:
		return nil, fmt.Errorf("unknown score normalization %q", n)
	}
}

// Normalization reports the divisor mode in use.
func (s *Scorer) Normalization() Normalization {
	return s.normalization
}

var defaultScorer, _ = NewScorer(NormalizeFieldCount)

// Score scores m with the field-count normalization.
func Score(m Measurement) (ScoreResult, error) {
	return defaultScorer.Score(m)
}

// Score applies each parameter's threshold test, sums the weighted
// contributions, and divides by the scorer's divisor. The result is rounded
// to one decimal; the quality grade and potability derive from the rounded
// value, so Potable always equals Confidence > PotableThreshold.
//
// A non-finite value aborts scoring with an invalid-value ScoringError.
func (s *Scorer) Score(m Measurement) (ScoreResult, error) {
	statuses := make(Statuses, 0, len(rules))
	var total float64

	for _, r := range rules {
		v := m.Value(r.param)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ScoreResult{}, &ScoringError{Kind: ErrKindInvalidValue, Parameter: r.param, Value: v}
		}

		status := StatusGood
		factor := factorGood
		if !r.good(v) {
			status = StatusWarning
			factor = r.reduced(v)
		}
		total += r.param.Weight() * factor

		statuses = append(statuses, ParameterStatus{
			Parameter: r.param,
			Status:    status,
			Value:     v,
			Unit:      r.param.Unit(),
		})
	}

	confidence := roundTenth(total / s.divisor)

	return ScoreResult{
		Potable:    confidence > PotableThreshold,
		Confidence: confidence,
		Quality:    gradeFromConfidence(confidence),
		Parameters: statuses,
	}, nil
}

// gradeFromConfidence maps a confidence score to its quality label.
func gradeFromConfidence(confidence float64) Quality {
	switch {
	case confidence > ExcellentThreshold:
		return QualityExcellent
	case confidence > PotableThreshold:
		return QualityGood
	case confidence > FairThreshold:
		return QualityFair
	default:
		return QualityPoor
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
