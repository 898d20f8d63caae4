// Package credentials persists the access/refresh credential pair that the
// transport attaches to API requests.
//
// Only the transport (refresh) and the session (login/logout) write to a
// Store. Everything else reads it in an advisory way, e.g. to decide at
// startup whether a session may exist.
package credentials

import (
	"context"
	"sync"
)

// Pair is the credential pair issued by the token endpoint.
type Pair struct {
	Access  string
	Refresh string
}

// Store is the durable credential store.
type Store interface {
	// Load returns the stored pair. Missing values are returned as "".
	Load(ctx context.Context) (Pair, error)
	// Save replaces both credentials.
	Save(ctx context.Context, p Pair) error
	// Clear discards both credentials.
	Clear(ctx context.Context) error
}

// MemoryStore keeps the pair in process memory. It does not survive a
// restart and is meant for tests and throwaway sessions.
type MemoryStore struct {
	mu   sync.RWMutex
	pair Pair
}

func NewMemoryStore(p Pair) *MemoryStore {
	return &MemoryStore{pair: p}
}

func (m *MemoryStore) Load(_ context.Context) (Pair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pair, nil
}

func (m *MemoryStore) Save(_ context.Context, p Pair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = p
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = Pair{}
	return nil
}
