package pipeline

import (
	"context"
	"log/slog"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/water-quality-service/internal/domain"
	"github.com/couchcryptid/water-quality-service/internal/history"
	"github.com/couchcryptid/water-quality-service/internal/observability"
)

// Scorer turns a complete measurement into a result.
type Scorer interface {
	Score(m domain.Measurement) (domain.ScoreResult, error)
}

// Publisher forwards recorded entries to an external feed.
type Publisher interface {
	Publish(ctx context.Context, sessionID string, e history.Entry) error
}

// Publish retry: three attempts, starting at 50ms and doubling up to 500ms.
// The analysis request waits on these, so the bound stays short.
const (
	publishAttempts   = 3
	publishBackoff    = 50 * time.Millisecond
	maxPublishBackoff = 500 * time.Millisecond
)

// Evaluation is the outcome of scoring without recording.
type Evaluation struct {
	Measurement domain.Measurement `json:"data"`
	Result      domain.ScoreResult `json:"result"`
	Warnings    []string           `json:"warnings"`
}

// Pipeline orchestrates the convert-validate-score-record-publish sequence.
type Pipeline struct {
	scorer    Scorer
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Pipeline. Pass a nil publisher to disable the results feed.
func New(s Scorer, pub Publisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if pub != nil {
		metrics.PublishEnabled.Set(1)
	}
	return &Pipeline{
		scorer:    s,
		publisher: pub,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil when the service can take requests. Scoring has
// no external dependencies, so only a configured publisher can make it fail.
func (p *Pipeline) CheckReadiness(ctx context.Context) error {
	if rc, ok := p.publisher.(sharedobs.ReadinessChecker); ok {
		return rc.CheckReadiness(ctx)
	}
	return nil
}

// Evaluate converts, validates, and scores raw without touching any ledger.
func (p *Pipeline) Evaluate(_ context.Context, raw domain.RawMeasurement) (Evaluation, error) {
	m, err := raw.Measurement()
	if err != nil {
		p.recordError(err)
		return Evaluation{}, err
	}

	warnings := domain.Validate(m)
	p.metrics.ValidationWarnings.Add(float64(len(warnings)))

	result, err := p.scorer.Score(m)
	if err != nil {
		p.recordError(err)
		return Evaluation{}, err
	}

	p.observe(result)
	return Evaluation{Measurement: m, Result: result, Warnings: warnings}, nil
}

// Analyze evaluates raw and records the outcome in ledger. Nothing is recorded
// when evaluation fails. The recorded entry is published when a publisher is
// configured, with a bounded retry; publish failures are logged and never
// fail the analysis.
func (p *Pipeline) Analyze(ctx context.Context, sessionID string, ledger *history.Ledger, raw domain.RawMeasurement) (history.Entry, error) {
	ev, err := p.Evaluate(ctx, raw)
	if err != nil {
		p.logger.Info("analysis rejected", "session_id", sessionID, "error", err)
		return history.Entry{}, err
	}

	entry := ledger.Record(ev.Measurement, ev.Result, ev.Warnings)
	p.logger.Debug("analysis recorded",
		"session_id", sessionID,
		"entry_id", entry.ID,
		"confidence", entry.Result.Confidence,
		"quality", entry.Result.Quality,
		"potable", entry.Result.Potable,
		"warnings", len(entry.Warnings),
	)

	p.publish(ctx, sessionID, entry)
	return entry, nil
}

func (p *Pipeline) publish(ctx context.Context, sessionID string, e history.Entry) {
	if p.publisher == nil {
		return
	}

	backoff := publishBackoff
	for attempt := 1; ; attempt++ {
		err := p.publisher.Publish(ctx, sessionID, e)
		if err == nil {
			p.metrics.ResultsPublished.Inc()
			return
		}
		if attempt == publishAttempts || ctx.Err() != nil {
			p.logger.Warn("publish result failed",
				"error", err, "session_id", sessionID, "entry_id", e.ID, "attempts", attempt)
			p.metrics.PublishErrors.Inc()
			return
		}

		p.logger.Debug("publish result retrying", "error", err, "entry_id", e.ID, "backoff", backoff)
		if !retry.SleepWithContext(ctx, backoff) {
			p.logger.Warn("publish result abandoned", "error", ctx.Err(), "session_id", sessionID, "entry_id", e.ID)
			p.metrics.PublishErrors.Inc()
			return
		}
		backoff = retry.NextBackoff(backoff, maxPublishBackoff)
	}
}

func (p *Pipeline) observe(r domain.ScoreResult) {
	outcome := "not_potable"
	if r.Potable {
		outcome = "potable"
	}
	p.metrics.Analyses.WithLabelValues(outcome).Inc()
	p.metrics.Confidence.Observe(r.Confidence)
}

func (p *Pipeline) recordError(err error) {
	kind := "unknown"
	if se, ok := domain.AsScoringError(err); ok {
		kind = string(se.Kind)
	}
	p.metrics.ScoringErrors.WithLabelValues(kind).Inc()
}
