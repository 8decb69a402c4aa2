package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hamed0406/netwatch/internal/repo"
)

const DefaultHistorySize = 500

// Store keeps transitions in a bounded slice and alert records in a map.
type Store struct {
	mu          sync.RWMutex
	maxHistory  int
	transitions []repo.Transition
	alerts      map[string]repo.AlertRecord
}

func New(maxHistory int) *Store {
	if maxHistory <= 0 {
		maxHistory = DefaultHistorySize
	}
	return &Store{
		maxHistory:  maxHistory,
		transitions: make([]repo.Transition, 0, 64),
		alerts:      make(map[string]repo.AlertRecord),
	}
}

func (m *Store) Append(ctx context.Context, t *repo.Transition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.At.IsZero() {
		t.At = time.Now().UTC()
	}
	cp := *t
	cp.Status = t.Status.Clone()
	m.transitions = append(m.transitions, cp)
	if len(m.transitions) > m.maxHistory {
		m.transitions = m.transitions[len(m.transitions)-m.maxHistory:]
	}
	return nil
}

func (m *Store) List(ctx context.Context, limit int) ([]repo.Transition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src := m.transitions
	if limit > 0 && len(src) > limit {
		src = src[len(src)-limit:]
	}
	out := make([]repo.Transition, len(src))
	for i, t := range src {
		out[i] = t
		out[i].Status = t.Status.Clone()
	}
	return out, nil
}

func (m *Store) Get(ctx context.Context, key string) (*repo.AlertRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.alerts[key]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Store) Set(ctx context.Context, key, lastKind string, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.alerts[key]
	rec.Key = key
	rec.LastKind = lastKind
	if !sentAt.IsZero() {
		ts := sentAt
		rec.LastSentAt = &ts
	}
	m.alerts[key] = rec
	return nil
}
