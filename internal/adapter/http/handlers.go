package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/water-quality-service/internal/domain"
	"github.com/couchcryptid/water-quality-service/internal/history"
	"github.com/couchcryptid/water-quality-service/internal/observability"
	"github.com/couchcryptid/water-quality-service/internal/pipeline"
	"github.com/couchcryptid/water-quality-service/internal/report"
	"github.com/couchcryptid/water-quality-service/internal/session"
)

const maxBodyBytes = 1 << 20

type ctxKey struct{}

type api struct {
	pipeline *pipeline.Pipeline
	sessions *session.Store
	metrics  *observability.Metrics
	clock    clockwork.Clock
	logger   *slog.Logger
}

func newAPI(deps Dependencies, logger *slog.Logger) *api {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &api{
		pipeline: deps.Pipeline,
		sessions: deps.Sessions,
		metrics:  deps.Metrics,
		clock:    clock,
		logger:   logger,
	}
}

func (a *api) routes(r chi.Router) {
	r.Get("/parameters", a.handleParameters)
	r.Post("/validate", a.handleValidate)
	r.Post("/score", a.handleScore)

	r.Post("/sessions", a.handleCreateSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Use(a.withSession)

		r.Delete("/", a.handleEndSession)
		r.Post("/analyze", a.handleAnalyze)

		r.Get("/history", a.handleHistory)
		r.Delete("/history", a.handleClearHistory)
		r.Get("/history/summary", a.handleSummary)
		r.Get("/history/trend", a.handleTrend)
		r.Get("/history/export", a.handleExport)
		r.Get("/history/{entryID}/report", a.handleReport)
	})
}

// --- stateless ---

func (a *api) handleParameters(w http.ResponseWriter, _ *http.Request) {
	respondOK(w, domain.Reference())
}

func (a *api) handleValidate(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodeMeasurement(w, r)
	if !ok {
		return
	}
	m, err := raw.Measurement()
	if err != nil {
		a.respondScoringError(w, err)
		return
	}
	respondOK(w, map[string][]string{"warnings": domain.Validate(m)})
}

func (a *api) handleScore(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodeMeasurement(w, r)
	if !ok {
		return
	}
	ev, err := a.pipeline.Evaluate(r.Context(), raw)
	if err != nil {
		a.respondScoringError(w, err)
		return
	}
	respondOK(w, ev)
}

// --- sessions ---

type sessionView struct {
	ID          uuid.UUID `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	HistorySize int       `json:"history_size"`
}

func viewOf(s *session.Session) sessionView {
	return sessionView{ID: s.ID, CreatedAt: s.CreatedAt, HistorySize: s.History.Len()}
}

func (a *api) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
		if err != nil {
			respondError(w, http.StatusBadRequest, codeInvalidID, "Session ID is not a valid UUID", nil)
			return
		}
		sess, err := a.sessions.Get(id)
		if err != nil {
			respondError(w, http.StatusNotFound, codeSessionMissing, "Session not found", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(ctxKey{}).(*session.Session)
}

func (a *api) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	respondCreated(w, viewOf(a.sessions.Create()))
}

func (a *api) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.End(sessionFrom(r).ID); err != nil {
		// Ended concurrently between lookup and delete.
		respondError(w, http.StatusNotFound, codeSessionMissing, "Session not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodeMeasurement(w, r)
	if !ok {
		return
	}
	sess := sessionFrom(r)
	entry, err := a.pipeline.Analyze(r.Context(), sess.ID.String(), sess.History, raw)
	if err != nil {
		a.respondScoringError(w, err)
		return
	}
	respondCreated(w, entry)
}

// --- history ---

func (a *api) handleHistory(w http.ResponseWriter, r *http.Request) {
	respondOK(w, sessionFrom(r).History.Entries())
}

func (a *api) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r).History.Clear()
	a.metrics.HistoryClears.Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleSummary(w http.ResponseWriter, r *http.Request) {
	respondOK(w, sessionFrom(r).History.Summarize())
}

func (a *api) handleTrend(w http.ResponseWriter, r *http.Request) {
	respondOK(w, sessionFrom(r).History.Trend())
}

func (a *api) handleExport(w http.ResponseWriter, r *http.Request) {
	format, ok := formatParam(w, r)
	if !ok {
		return
	}
	body, err := report.RenderHistory(format, sessionFrom(r).History.Entries())
	if err != nil {
		a.respondInternal(w, "render history export", err)
		return
	}
	respondFile(w, format.ContentType(), report.HistoryFilename(format, a.clock.Now()), body)
}

func (a *api) handleReport(w http.ResponseWriter, r *http.Request) {
	format, ok := formatParam(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "entryID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidID, "Entry ID is not a valid UUID", nil)
		return
	}
	entry, err := sessionFrom(r).History.Get(id)
	switch {
	case errors.Is(err, history.ErrEntryNotFound):
		respondError(w, http.StatusNotFound, codeEntryMissing, "History entry not found", nil)
		return
	case err != nil:
		a.respondInternal(w, "load history entry", err)
		return
	}
	body, err := report.Render(format, entry)
	if err != nil {
		a.respondInternal(w, "render report", err)
		return
	}
	respondFile(w, format.ContentType(), report.ReportFilename(format, a.clock.Now()), body)
}

// --- input and error mapping ---

type boundsDetail struct {
	Parameter domain.Parameter `json:"parameter"`
	Value     float64          `json:"value"`
}

// decodeMeasurement reads the request body, fills defaults when ?defaults=true,
// and enforces input bounds. It writes the error response itself and reports
// whether the handler should continue.
func decodeMeasurement(w http.ResponseWriter, r *http.Request) (domain.RawMeasurement, bool) {
	var raw domain.RawMeasurement
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		respondError(w, http.StatusBadRequest, codeBadRequest, "Malformed measurement body", err.Error())
		return raw, false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, codeBadRequest, "Malformed measurement body",
			"body must contain a single JSON object")
		return raw, false
	}

	if useDefaults(r) {
		raw = raw.WithDefaults()
	}

	if bad := domain.OutOfBounds(raw); len(bad) > 0 {
		details := make([]boundsDetail, len(bad))
		for i, p := range bad {
			v, _ := raw.Get(p)
			details[i] = boundsDetail{Parameter: p, Value: v}
		}
		respondError(w, http.StatusUnprocessableEntity, codeOutOfBounds,
			"Values must be at least 0 and pH at most 14", details)
		return raw, false
	}
	return raw, true
}

func useDefaults(r *http.Request) bool {
	b, err := strconv.ParseBool(r.URL.Query().Get("defaults"))
	return err == nil && b
}

func formatParam(w http.ResponseWriter, r *http.Request) (report.Format, bool) {
	f, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidFormat, err.Error(), nil)
		return "", false
	}
	return f, true
}

func (a *api) respondScoringError(w http.ResponseWriter, err error) {
	se, ok := domain.AsScoringError(err)
	if !ok {
		a.respondInternal(w, "score measurement", err)
		return
	}

	code := codeInvalidValue
	if se.Kind == domain.ErrKindMissingField {
		code = codeMissingField
	}
	respondError(w, http.StatusUnprocessableEntity, code, se.Error(),
		map[string]string{"parameter": string(se.Parameter)})
}

func (a *api) respondInternal(w http.ResponseWriter, op string, err error) {
	a.logger.Error(op+" failed", "error", err)
	respondError(w, http.StatusInternalServerError, codeInternal, "An unexpected error occurred", nil)
}
