// Package results persists completed simulation runs so experiments can
// compare configurations after the fact. A RunRecord pairs the scenario
// identity (name, seed, horizon) with the full metrics summary. Stores
// are pluggable: MemoryStore for tests and one-shot runs, MySQLStore for
// durable history. RecentCache and Publisher fan results out to Redis
// and RabbitMQ consumers; all sinks are optional and a sink failure never
// fails the run that produced the record.
package results

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/supply-sim/supply-sim/sim"
)

var (
	// ErrNotFound is returned when no record exists for the given ID.
	ErrNotFound = errors.New("run record not found")
	// ErrConflict is returned when a record with the same ID already exists.
	ErrConflict = errors.New("run record already exists")
)

// RunRecord captures one completed simulation run.
type RunRecord struct {
	ID           string       `json:"id"`
	Scenario     string       `json:"scenario"`
	Seed         int64        `json:"seed"`
	HorizonTicks int64        `json:"horizon_ticks"`
	StartedAt    int64        `json:"started_at"` // unix seconds
	ElapsedMS    int64        `json:"elapsed_ms"` // wall-clock run duration
	Summary      *sim.Summary `json:"summary"`
}

// NewRunRecord stamps a fresh record for a finished run.
func NewRunRecord(scenario string, seed int64, summary *sim.Summary) *RunRecord {
	rec := &RunRecord{
		ID:        uuid.NewString(),
		Scenario:  scenario,
		Seed:      seed,
		StartedAt: time.Now().Unix(),
		Summary:   summary,
	}
	if summary != nil {
		rec.HorizonTicks = summary.HorizonTicks
	}
	return rec
}

// Store persists run records.
type Store interface {
	Save(ctx context.Context, rec *RunRecord) error
	Get(ctx context.Context, id string) (*RunRecord, error)
	// List returns the most recent records, newest first.
	List(ctx context.Context, limit int) ([]*RunRecord, error)
	Close() error
}

// MemoryStore keeps run records in memory, mainly for tests.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[string]*RunRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string]*RunRecord)}
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, rec *RunRecord) error {
	if rec == nil || rec.ID == "" {
		return errors.New("run record needs an ID")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recs[rec.ID]; ok {
		return ErrConflict
	}
	clone := *rec
	m.recs[rec.ID] = &clone
	return nil
}

// Get returns the record with the given ID.
func (m *MemoryStore) Get(_ context.Context, id string) (*RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.recs[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

// List returns up to limit records, newest first.
func (m *MemoryStore) List(_ context.Context, limit int) ([]*RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*RunRecord, 0, len(m.recs))
	for _, rec := range m.recs {
		clone := *rec
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt != out[j].StartedAt {
			return out[i].StartedAt > out[j].StartedAt
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
