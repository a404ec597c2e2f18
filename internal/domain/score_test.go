package domain

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cleanSample has every parameter inside its optimal range.
var cleanSample = Measurement{
	PH:              7.2,
	Hardness:        180,
	Solids:          350,
	Chloramines:     2.5,
	Sulfate:         180,
	Conductivity:    320,
	OrganicCarbon:   1.2,
	Trihalomethanes: 45,
	Turbidity:       2.8,
}

// pollutedSample has every parameter outside its optimal range, with TDS in
// the lowest tier.
var pollutedSample = Measurement{
	PH:              5.2,
	Hardness:        450,
	Solids:          1200,
	Chloramines:     6.5,
	Sulfate:         380,
	Conductivity:    650,
	OrganicCarbon:   4.8,
	Trihalomethanes: 120,
	Turbidity:       8.5,
}

func weightSumScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(NormalizeWeightSum)
	require.NoError(t, err)
	return s
}

func TestScore_CleanSample(t *testing.T) {
	result, err := Score(cleanSample)
	require.NoError(t, err)

	// 100 weighted points divided by the field count.
	assert.Equal(t, 11.1, result.Confidence)
	assert.Equal(t, QualityPoor, result.Quality)
	assert.False(t, result.Potable)

	require.Len(t, result.Parameters, len(Parameters))
	for i, st := range result.Parameters {
		assert.Equal(t, Parameters[i], st.Parameter)
		assert.Equal(t, StatusGood, st.Status, st.Label())
	}
}

func TestScore_CleanSample_WeightSum(t *testing.T) {
	result, err := weightSumScorer(t).Score(cleanSample)
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.Confidence)
	assert.Equal(t, QualityExcellent, result.Quality)
	assert.True(t, result.Potable)
}

func TestScore_PollutedSample(t *testing.T) {
	// 0.128*50 + 0.119*60 + 0.114*40 + 0.108*60 + 0.142*50
	// + 0.102*70 + 0.098*70 + 0.095*50 + 0.094*60 = 56.07
	result, err := Score(pollutedSample)
	require.NoError(t, err)

	assert.Equal(t, 6.2, result.Confidence)
	assert.Equal(t, QualityPoor, result.Quality)
	assert.False(t, result.Potable)
	for _, st := range result.Parameters {
		assert.Equal(t, StatusWarning, st.Status, st.Label())
	}

	ws, err := weightSumScorer(t).Score(pollutedSample)
	require.NoError(t, err)
	assert.Equal(t, 56.1, ws.Confidence)
	assert.Equal(t, QualityFair, ws.Quality)
	assert.False(t, ws.Potable)
}

func TestScore_SolidsTiers(t *testing.T) {
	tests := []struct {
		name       string
		solids     float64
		wantStatus Status
		wantFC     float64 // field-count confidence
		wantWS     float64 // weight-sum confidence
	}{
		{"good tier", 499.9, StatusGood, 11.1, 100.0},
		{"first warning tier", 500, StatusWarning, 10.7, 96.6},
		{"upper edge of first tier", 999.9, StatusWarning, 10.7, 96.6},
		{"second warning tier", 1000, StatusWarning, 10.4, 93.2},
	}

	ws := weightSumScorer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := cleanSample
			m.Solids = tt.solids

			fc, err := Score(m)
			require.NoError(t, err)
			st, ok := fc.Status(ParamSolids)
			require.True(t, ok)
			assert.Equal(t, tt.wantStatus, st.Status)
			assert.Equal(t, tt.wantFC, fc.Confidence)

			w, err := ws.Score(m)
			require.NoError(t, err)
			assert.Equal(t, tt.wantWS, w.Confidence)
		})
	}
}

func TestScore_Thresholds(t *testing.T) {
	tests := []struct {
		name  string
		param Parameter
		value float64
		want  Status
	}{
		{"pH lower bound inclusive", ParamPH, 6.5, StatusGood},
		{"pH upper bound inclusive", ParamPH, 8.5, StatusGood},
		{"pH below range", ParamPH, 6.49, StatusWarning},
		{"pH above range", ParamPH, 8.51, StatusWarning},
		{"hardness at limit", ParamHardness, 300, StatusWarning},
		{"hardness below limit", ParamHardness, 299.9, StatusGood},
		{"chloramines at limit", ParamChloramines, 4, StatusWarning},
		{"sulfate at limit", ParamSulfate, 250, StatusWarning},
		{"conductivity at limit", ParamConductivity, 400, StatusWarning},
		{"organic carbon at limit", ParamOrganicCarbon, 2, StatusWarning},
		{"trihalomethanes at limit", ParamTrihalomethanes, 80, StatusWarning},
		{"turbidity at limit", ParamTurbidity, 5, StatusWarning},
		{"turbidity zero", ParamTurbidity, 0, StatusGood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := RawFrom(cleanSample)
			raw.Set(tt.param, tt.value)
			m, err := raw.Measurement()
			require.NoError(t, err)

			result, err := Score(m)
			require.NoError(t, err)
			st, ok := result.Status(tt.param)
			require.True(t, ok)
			assert.Equal(t, tt.want, st.Status)
			assert.Equal(t, tt.value, st.Value)
		})
	}
}

func TestScore_GradesUnderWeightSum(t *testing.T) {
	ws := weightSumScorer(t)

	// pH and sulfate out: 100 - 6.4 - 7.1 = 86.5
	m := cleanSample
	m.PH = 9
	m.Sulfate = 300
	result, err := ws.Score(m)
	require.NoError(t, err)
	assert.Equal(t, 86.5, result.Confidence)
	assert.Equal(t, QualityExcellent, result.Quality)
	assert.True(t, result.Potable)

	// Hardness out as well: 86.5 - 0.119*40 = 81.74
	m.Hardness = 350
	result, err = ws.Score(m)
	require.NoError(t, err)
	assert.Equal(t, 81.7, result.Confidence)
	assert.Equal(t, QualityGood, result.Quality)
	assert.True(t, result.Potable)
	assert.Len(t, result.Issues(), 3)
}

func TestGradeFromConfidence(t *testing.T) {
	tests := []struct {
		confidence float64
		want       Quality
	}{
		{100, QualityExcellent},
		{85.1, QualityExcellent},
		{85.0, QualityGood},
		{70.1, QualityGood},
		{70.0, QualityFair},
		{50.1, QualityFair},
		{50.0, QualityPoor},
		{0, QualityPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, gradeFromConfidence(tt.confidence), "confidence %.1f", tt.confidence)
	}
}

func TestScore_InvalidValue(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		m := cleanSample
		m.Chloramines = v

		result, err := Score(m)
		require.Error(t, err)
		assert.Equal(t, ScoreResult{}, result)

		se, ok := AsScoringError(err)
		require.True(t, ok)
		assert.Equal(t, ErrKindInvalidValue, se.Kind)
		assert.Equal(t, ParamChloramines, se.Parameter)
	}
}

func TestScore_Idempotent(t *testing.T) {
	first, err := Score(pollutedSample)
	require.NoError(t, err)
	second, err := Score(pollutedSample)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated scoring differs (-first +second):\n%s", diff)
	}
}

func TestScore_Invariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	ws := weightSumScorer(t)
	qualities := map[Quality]bool{
		QualityExcellent: true, QualityGood: true, QualityFair: true, QualityPoor: true,
	}

	for range 2000 {
		m := Measurement{
			PH:              rng.Float64() * 14,
			Hardness:        rng.Float64() * 700,
			Solids:          rng.Float64() * 2500,
			Chloramines:     rng.Float64() * 12,
			Sulfate:         rng.Float64() * 700,
			Conductivity:    rng.Float64() * 2000,
			OrganicCarbon:   rng.Float64() * 8,
			Trihalomethanes: rng.Float64() * 200,
			Turbidity:       rng.Float64() * 15,
		}
		for _, s := range []*Scorer{defaultScorer, ws} {
			result, err := s.Score(m)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, result.Confidence, 0.0)
			assert.LessOrEqual(t, result.Confidence, 100.0)
			assert.True(t, qualities[result.Quality])
			assert.Equal(t, result.Confidence > PotableThreshold, result.Potable)
			assert.Equal(t, gradeFromConfidence(result.Confidence), result.Quality)
			assert.Equal(t, result.Confidence, roundTenth(result.Confidence))
		}
	}
}

func TestNewScorer(t *testing.T) {
	s, err := NewScorer("")
	require.NoError(t, err)
	assert.Equal(t, NormalizeFieldCount, s.Normalization())

	_, err = NewScorer("median")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "median")
}

func TestScoreResult_JSON(t *testing.T) {
	result, err := Score(cleanSample)
	require.NoError(t, err)

	data, err := json.Marshal(result)
	require.NoError(t, err)

	// Statuses are keyed by label in canonical order.
	s := string(data)
	assert.Contains(t, s, `"pH":{"status":"good","value":7.2,"unit":""}`)
	assert.Contains(t, s, `"TDS":{"status":"good","value":350,"unit":"ppm"}`)
	assert.Less(t, strings.Index(s, `"pH"`), strings.Index(s, `"Hardness"`))
	assert.Less(t, strings.Index(s, `"Trihalomethanes"`), strings.Index(s, `"Turbidity"`))

	var decoded ScoreResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	if diff := cmp.Diff(result, decoded); diff != "" {
		t.Errorf("decoded result differs (-want +got):\n%s", diff)
	}
}

func TestStatuses_UnmarshalUnknownLabel(t *testing.T) {
	var s Statuses
	err := json.Unmarshal([]byte(`{"Lead":{"status":"good","value":1,"unit":"ppb"}}`), &s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Lead")
}

func TestScoreResult_Accessors(t *testing.T) {
	result, err := Score(pollutedSample)
	require.NoError(t, err)

	assert.Equal(t, "NOT POTABLE", result.Verdict())
	assert.Len(t, result.Issues(), 9)

	byLabel := result.StatusByLabel()
	assert.Equal(t, StatusWarning, byLabel["Organic Carbon"])
	assert.Len(t, byLabel, 9)

	_, ok := result.Status(Parameter("lead"))
	assert.False(t, ok)
}
