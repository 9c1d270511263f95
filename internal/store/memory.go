package store

import (
	"context"
	"strings"
	"sync"

	"cryptopulse/internal/model"
)

// Memory keeps accounts in-process. Used when no DB_DSN is configured
// and throughout the tests.
type Memory struct {
	mu       sync.RWMutex
	accounts map[string]*model.Account
}

func NewMemory() *Memory {
	return &Memory{accounts: make(map[string]*model.Account)}
}

func (m *Memory) Get(ctx context.Context, id string) (*model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return acc.Clone(), nil
}

func (m *Memory) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if strings.ToLower(acc.Email) == normalized {
			return acc.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) Put(ctx context.Context, acc *model.Account) error {
	m.mu.Lock()
	m.accounts[acc.ID] = acc.Clone()
	m.mu.Unlock()
	return nil
}
