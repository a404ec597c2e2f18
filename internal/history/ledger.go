// Package history keeps the per-session record of scored measurements.
package history

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/water-quality-service/internal/domain"
)

// MaxEntries caps the ledger; older entries are dropped as new ones arrive.
const MaxEntries = 50

// ErrEntryNotFound is returned by Get for an unknown entry ID.
var ErrEntryNotFound = errors.New("history entry not found")

// Entry is one scoring action: when it happened, what was measured, and the
// result. Warnings are the advisory validation messages issued alongside it.
type Entry struct {
	ID          uuid.UUID          `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Measurement domain.Measurement `json:"data"`
	Result      domain.ScoreResult `json:"result"`
	Warnings    []string           `json:"warnings,omitempty"`
}

// Ledger is an ordered, capped list of entries, newest first.
// It is safe for concurrent use.
type Ledger struct {
	mu      sync.RWMutex
	entries []Entry
	clock   clockwork.Clock
}

// NewLedger creates an empty ledger stamping entries with clock.
// A nil clock uses real time.
func NewLedger(clock clockwork.Clock) *Ledger {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Ledger{clock: clock}
}

// Append inserts e at the head and truncates to the MaxEntries most recent.
func (l *Ledger) Append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, Entry{})
	copy(l.entries[1:], l.entries)
	l.entries[0] = e

	if len(l.entries) > MaxEntries {
		clear(l.entries[MaxEntries:])
		l.entries = l.entries[:MaxEntries]
	}
}

// Record stamps a new entry with an ID and the current time and appends it.
func (l *Ledger) Record(m domain.Measurement, result domain.ScoreResult, warnings []string) Entry {
	e := Entry{
		ID:          uuid.New(),
		Timestamp:   l.clock.Now(),
		Measurement: m,
		Result:      result,
		Warnings:    append([]string(nil), warnings...),
	}
	l.Append(e)
	return e
}

// Clear empties the ledger.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Len returns the number of entries held.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Entries returns a copy of all entries, newest first.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Chronological returns a copy of all entries, oldest first.
func (l *Ledger) Chronological() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}

// Get returns the entry with the given ID.
func (l *Ledger) Get(id uuid.UUID) (Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, ErrEntryNotFound
}
