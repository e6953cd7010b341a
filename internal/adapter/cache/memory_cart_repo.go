package cache

import (
	"context"
	"sync"

	"github.com/aq2208/storefront-api/internal/usecase"
)

// MemoryCartRepo is the fallback when no Redis is configured.
type MemoryCartRepo struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryCartRepo() *MemoryCartRepo {
	return &MemoryCartRepo{entries: map[string][]byte{}}
}

func (m *MemoryCartRepo) Load(_ context.Context, session string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[session]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryCartRepo) Save(_ context.Context, session string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[session] = append([]byte(nil), data...)
	return nil
}

var _ usecase.CartStateRepo = (*MemoryCartRepo)(nil)
