package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/smallbiznis/subshare/internal/subscription/domain"
)

// Memory is an in-process Repository with the same copy-on-read semantics as
// the snapshot store. Used by tests and ephemeral runs.
type Memory struct {
	mu      sync.Mutex
	payload []byte
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) LoadAll(ctx context.Context) ([]domain.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decode()
}

func (m *Memory) Update(ctx context.Context, mutate domain.Mutator) ([]domain.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs, err := m.decode()
	if err != nil {
		return nil, err
	}
	next, err := mutate(subs)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(next)
	if err != nil {
		return nil, err
	}
	m.payload = payload
	return next, nil
}

func (m *Memory) decode() ([]domain.Subscription, error) {
	if m.payload == nil {
		return nil, nil
	}
	var subs []domain.Subscription
	if err := json.Unmarshal(m.payload, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}
