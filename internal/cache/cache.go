// Package cache holds rendered responses between writes.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Cache is a scoped key/value cache.
type Cache[T any] interface {
	Get(scope, key string) (T, bool)
	Set(scope, key string, data T)
	DeleteScope(scope string) int
	Size() int
}

// Cleaner is a cache that can drop its expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically expires entries in every registered cache.
type Manager struct {
	mu     sync.Mutex
	caches map[string]Cleaner
	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager() *Manager {
	return &Manager{caches: make(map[string]Cleaner)}
}

// Register adds a named cache. Registering a name twice replaces the
// earlier cache.
func (m *Manager) Register(name string, c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches[name] = c
}

// StartCleanup runs CleanAll every interval until Stop. A second call while
// running is a no-op.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.CleanAll()
			case <-ctx.Done():
				return
			}
		}
	}(m.done)
}

// CleanAll expires entries in every registered cache and returns the count
// per cache name.
func (m *Manager) CleanAll() map[string]int {
	m.mu.Lock()
	caches := make(map[string]Cleaner, len(m.caches))
	for name, c := range m.caches {
		caches[name] = c
	}
	m.mu.Unlock()

	removed := make(map[string]int, len(caches))
	for name, c := range caches {
		if n := c.CleanExpired(); n > 0 {
			removed[name] = n
			slog.Debug("Expired cache entries removed", "component", "cache", "cache", name, "count", n)
		}
	}
	return removed
}

// Stop ends the cleanup loop and waits for it. Safe without StartCleanup and
// safe to call twice.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
