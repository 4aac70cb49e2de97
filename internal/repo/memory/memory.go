package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hamed0406/pingmonitor/internal/domain"
	"github.com/hamed0406/pingmonitor/internal/repo"
)

type Store struct {
	mu       sync.RWMutex
	latest   *domain.Snapshot
	versions int64
	alerts   map[string]repo.AlertRecord
}

func New() *Store {
	return &Store{
		alerts: make(map[string]repo.AlertRecord),
	}
}

// ---- SnapshotStore ----

func (m *Store) Publish(ctx context.Context, s domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = &s
	m.versions++
	return nil
}

func (m *Store) Latest(ctx context.Context) (*domain.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest == nil {
		return nil, nil
	}
	cp := *m.latest
	return &cp, nil
}

// Versions counts publishes; handy for readers that only care about change.
func (m *Store) Versions() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.versions
}

// ---- AlertStore ----

func (m *Store) Get(ctx context.Context, target string) (*repo.AlertRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.alerts[target]
	if !ok {
		return nil, nil
	}
	rr := r
	return &rr, nil
}

func (m *Store) Set(ctx context.Context, target string, lastUp bool, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ts *time.Time
	if !sentAt.IsZero() {
		ts = &sentAt
	}
	m.alerts[target] = repo.AlertRecord{Target: target, LastUp: lastUp, LastSentAt: ts}
	return nil
}

var _ repo.SnapshotStore = (*Store)(nil)
var _ repo.AlertStore = (*Store)(nil)
