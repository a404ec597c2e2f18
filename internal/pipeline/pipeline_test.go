package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/water-quality-service/internal/domain"
	"github.com/couchcryptid/water-quality-service/internal/history"
	"github.com/couchcryptid/water-quality-service/internal/observability"
	"github.com/couchcryptid/water-quality-service/internal/pipeline"
)

// --- mocks ---

type published struct {
	sessionID string
	entry     history.Entry
}

type mockPublisher struct {
	mu       sync.Mutex
	err      error
	failures int // leading calls that fail before publishing succeeds
	readyErr error
	calls    int
	got      []published
}

func (m *mockPublisher) Publish(_ context.Context, sessionID string, e history.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	if m.calls <= m.failures {
		return errors.New("leader not available")
	}
	m.got = append(m.got, published{sessionID: sessionID, entry: e})
	return nil
}

func (m *mockPublisher) CheckReadiness(context.Context) error {
	return m.readyErr
}

// plainPublisher has no readiness check.
type plainPublisher struct{}

func (plainPublisher) Publish(context.Context, string, history.Entry) error { return nil }

func newScorer(t *testing.T, n domain.Normalization) *domain.Scorer {
	t.Helper()
	s, err := domain.NewScorer(n)
	require.NoError(t, err)
	return s
}

func newTestMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func cleanRaw() domain.RawMeasurement {
	return domain.RawFrom(domain.DefaultMeasurement())
}

func pollutedRaw() domain.RawMeasurement {
	return domain.RawFrom(domain.Measurement{
		PH: 5.2, Hardness: 450, Solids: 1200, Chloramines: 6.5, Sulfate: 380,
		Conductivity: 650, OrganicCarbon: 4.8, Trihalomethanes: 120, Turbidity: 8.5,
	})
}

// --- tests ---

func TestPipeline_Analyze_RecordsAndPublishes(t *testing.T) {
	pub := &mockPublisher{}
	metrics := newTestMetrics()
	p := pipeline.New(newScorer(t, domain.NormalizeWeightSum), pub, slog.Default(), metrics)
	ledger := history.NewLedger(clockwork.NewFakeClock())

	entry, err := p.Analyze(context.Background(), "sess-1", ledger, cleanRaw())
	require.NoError(t, err)

	assert.True(t, entry.Result.Potable)
	assert.InDelta(t, 100.0, entry.Result.Confidence, 1e-9)
	assert.Equal(t, domain.QualityExcellent, entry.Result.Quality)
	assert.Empty(t, entry.Warnings)
	assert.Equal(t, 1, ledger.Len())

	got, err := ledger.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry, got)

	require.Len(t, pub.got, 1)
	assert.Equal(t, "sess-1", pub.got[0].sessionID)
	assert.Equal(t, entry.ID, pub.got[0].entry.ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Analyses.WithLabelValues("potable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ResultsPublished))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PublishEnabled))
}

func TestPipeline_Analyze_WarningsAreAdvisory(t *testing.T) {
	metrics := newTestMetrics()
	p := pipeline.New(newScorer(t, domain.NormalizeFieldCount), nil, slog.Default(), metrics)
	ledger := history.NewLedger(nil)

	raw := cleanRaw()
	raw.Set(domain.ParamPH, 3.0)
	raw.Set(domain.ParamSolids, 60000)

	entry, err := p.Analyze(context.Background(), "s", ledger, raw)
	require.NoError(t, err)

	assert.Len(t, entry.Warnings, 2)
	assert.Equal(t, 1, ledger.Len())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ValidationWarnings))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Analyses.WithLabelValues("not_potable")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.PublishEnabled))
}

func TestPipeline_Analyze_MissingFieldRecordsNothing(t *testing.T) {
	pub := &mockPublisher{}
	metrics := newTestMetrics()
	p := pipeline.New(newScorer(t, domain.NormalizeFieldCount), pub, slog.Default(), metrics)
	ledger := history.NewLedger(nil)

	raw := cleanRaw()
	raw.Solids = nil

	_, err := p.Analyze(context.Background(), "s", ledger, raw)
	require.Error(t, err)

	se, ok := domain.AsScoringError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrKindMissingField, se.Kind)
	assert.Equal(t, domain.ParamSolids, se.Parameter)

	assert.Zero(t, ledger.Len())
	assert.Empty(t, pub.got)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ScoringErrors.WithLabelValues("missing_field")))
}

func TestPipeline_Analyze_InvalidValueRecordsNothing(t *testing.T) {
	metrics := newTestMetrics()
	p := pipeline.New(newScorer(t, domain.NormalizeFieldCount), nil, slog.Default(), metrics)
	ledger := history.NewLedger(nil)

	raw := cleanRaw()
	raw.Set(domain.ParamTurbidity, math.Inf(1))

	_, err := p.Analyze(context.Background(), "s", ledger, raw)
	require.Error(t, err)
	assert.Zero(t, ledger.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ScoringErrors.WithLabelValues("invalid_value")))
}

func TestPipeline_Analyze_PublishFailureIsNotFatal(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker down")}
	metrics := newTestMetrics()
	p := pipeline.New(newScorer(t, domain.NormalizeFieldCount), pub, slog.Default(), metrics)
	ledger := history.NewLedger(nil)

	_, err := p.Analyze(context.Background(), "s", ledger, pollutedRaw())
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PublishErrors))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.ResultsPublished))
	assert.Equal(t, 3, pub.calls)
}

func TestPipeline_Analyze_PublishRetriesTransientFailure(t *testing.T) {
	pub := &mockPublisher{failures: 2}
	metrics := newTestMetrics()
	p := pipeline.New(newScorer(t, domain.NormalizeFieldCount), pub, slog.Default(), metrics)
	ledger := history.NewLedger(nil)

	entry, err := p.Analyze(context.Background(), "s", ledger, cleanRaw())
	require.NoError(t, err)

	assert.Equal(t, 3, pub.calls)
	require.Len(t, pub.got, 1)
	assert.Equal(t, entry.ID, pub.got[0].entry.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ResultsPublished))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.PublishErrors))
}

func TestPipeline_Analyze_PublishStopsOnCancelledContext(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker down")}
	metrics := newTestMetrics()
	p := pipeline.New(newScorer(t, domain.NormalizeFieldCount), pub, slog.Default(), metrics)
	ledger := history.NewLedger(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Analyze(ctx, "s", ledger, cleanRaw())
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.Len())
	assert.Equal(t, 1, pub.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PublishErrors))
}

func TestPipeline_Evaluate_DoesNotRecord(t *testing.T) {
	pub := &mockPublisher{}
	p := pipeline.New(newScorer(t, domain.NormalizeFieldCount), pub, slog.Default(), newTestMetrics())

	ev, err := p.Evaluate(context.Background(), pollutedRaw())
	require.NoError(t, err)

	assert.False(t, ev.Result.Potable)
	assert.InDelta(t, 6.2, ev.Result.Confidence, 1e-9)
	assert.Equal(t, domain.QualityPoor, ev.Result.Quality)
	assert.NotNil(t, ev.Warnings)
	assert.Empty(t, pub.got)
}

func TestPipeline_CheckReadiness(t *testing.T) {
	s := newScorer(t, domain.NormalizeFieldCount)

	p := pipeline.New(s, nil, slog.Default(), newTestMetrics())
	require.NoError(t, p.CheckReadiness(context.Background()))

	p = pipeline.New(s, plainPublisher{}, slog.Default(), newTestMetrics())
	require.NoError(t, p.CheckReadiness(context.Background()))

	p = pipeline.New(s, &mockPublisher{readyErr: errors.New("no brokers")}, slog.Default(), newTestMetrics())
	require.EqualError(t, p.CheckReadiness(context.Background()), "no brokers")
}
