// Package session owns the per-caller context: each session holds its own
// history ledger, and ending or evicting the session discards it.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/water-quality-service/internal/history"
	"github.com/couchcryptid/water-quality-service/internal/observability"
)

// ErrNotFound is returned for a session that was never created or is gone.
var ErrNotFound = errors.New("session not found")

// Session is one caller's working context.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time
	History   *history.Ledger

	mu       sync.Mutex
	lastSeen time.Time
}

// LastSeen returns when the session was last created or looked up.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// Store holds live sessions and evicts those idle longer than the TTL.
// It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewStore creates an empty store. A nil clock uses real time.
func NewStore(ttl time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Create starts a new session with an empty ledger.
func (s *Store) Create() *Session {
	now := s.clock.Now()
	sess := &Session{
		ID:        uuid.New(),
		CreatedAt: now,
		History:   history.NewLedger(s.clock),
		lastSeen:  now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	s.metrics.ActiveSessions.Set(float64(n))
	s.logger.Debug("session created", "session_id", sess.ID)
	return sess
}

// Get returns the session and marks it as seen.
func (s *Store) Get(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	sess.touch(s.clock.Now())
	return sess, nil
}

// End removes the session, discarding its history.
func (s *Store) End(id uuid.UUID) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	n := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	sess.History.Clear()
	s.metrics.ActiveSessions.Set(float64(n))
	s.logger.Debug("session ended", "session_id", id)
	return nil
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Evict removes sessions last seen more than the TTL before now and returns
// how many were removed.
func (s *Store) Evict(now time.Time) int {
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	var evicted []*Session
	for id, sess := range s.sessions {
		if sess.LastSeen().Before(cutoff) {
			evicted = append(evicted, sess)
			delete(s.sessions, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range evicted {
		sess.History.Clear()
	}
	if len(evicted) > 0 {
		s.metrics.SessionsEvicted.Add(float64(len(evicted)))
		s.logger.Info("idle sessions evicted", "count", len(evicted), "remaining", n)
	}
	s.metrics.ActiveSessions.Set(float64(n))
	return len(evicted)
}

// Run evicts idle sessions on a ticker until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	t := s.clock.NewTicker(evictInterval(s.ttl))
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.Chan():
			s.Evict(s.clock.Now())
		}
	}
}

// evictInterval sweeps at half the TTL, bounded to [1s, 1m].
func evictInterval(ttl time.Duration) time.Duration {
	return min(max(ttl/2, time.Second), time.Minute)
}
