// Package checkpoint keeps the latest pipeline snapshot of each run, keyed by run id.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mohammad-safakhou/oratriage/config"
)

var ErrNotFound = errors.New("checkpoint not found")

// Store saves and loads JSON snapshots. A later Save for the same run replaces the earlier one.
type Store interface {
	Save(ctx context.Context, runID string, snapshot []byte) error
	Load(ctx context.Context, runID string) ([]byte, error)
}

// New builds the store selected by storage.checkpoints along with its close function.
func New(ctx context.Context, cfg config.StorageConfig) (Store, func() error, error) {
	switch cfg.Checkpoints {
	case "none":
		return Noop{}, func() error { return nil }, nil
	case "", "memory":
		return NewMemory(cfg.Redis.TTL), func() error { return nil }, nil
	case "redis":
		client, err := Conn(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect checkpoint redis: %w", err)
		}
		return NewRedis(client, cfg.Redis.TTL), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown checkpoint store %q", cfg.Checkpoints)
	}
}

// Noop discards snapshots.
type Noop struct{}

func (Noop) Save(context.Context, string, []byte) error { return nil }

func (Noop) Load(context.Context, string) ([]byte, error) { return nil, ErrNotFound }

type entry struct {
	data    []byte
	expires time.Time
}

// Memory is a process-local store. Expired runs are dropped on the next Save.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now, entries: make(map[string]entry)}
}

func (m *Memory) Save(_ context.Context, runID string, snapshot []byte) error {
	if runID == "" {
		return errors.New("run id required")
	}
	data := append([]byte(nil), snapshot...)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if m.expired(e, now) {
			delete(m.entries, id)
		}
	}
	e := entry{data: data}
	if m.ttl > 0 {
		e.expires = now.Add(m.ttl)
	}
	m.entries[runID] = e
	return nil
}

func (m *Memory) Load(_ context.Context, runID string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[runID]
	m.mu.RUnlock()
	if !ok || m.expired(e, m.now()) {
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.data...), nil
}

func (m *Memory) expired(e entry, now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}
