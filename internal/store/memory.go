package store

import (
	"context"
	"sync"

	"github.com/shiyoungwoo/Resume-assistant/internal/types"
)

// Memory is an in-process Store. Banks are kept serialized so that loads
// never alias a caller's slice and corrupt entries behave like the durable backends.
type Memory struct {
	mu       sync.Mutex
	values   map[string]string
	counters map[string]int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		values:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// PutRaw stores a raw value under key, bypassing encoding.
func (m *Memory) PutRaw(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// LoadBank returns the stored bank for key.
func (m *Memory) LoadBank(_ context.Context, key types.ContextKey) ([]types.QuestionItem, error) {
	m.mu.Lock()
	raw, ok := m.values[key.StorageKey()]
	m.mu.Unlock()
	if !ok {
		return []types.QuestionItem{}, nil
	}
	return decodeBank(key, raw)
}

// SaveBank stores a snapshot of items under key.
func (m *Memory) SaveBank(_ context.Context, key types.ContextKey, items []types.QuestionItem) error {
	raw, err := encodeBank(items)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.values[key.StorageKey()] = raw
	m.mu.Unlock()
	return nil
}

// ResumeContext returns the stored resume text.
func (m *Memory) ResumeContext(_ context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.values[KeyResumeContext]
	return text, ok && text != "", nil
}

// SetResumeContext replaces the resume text.
func (m *Memory) SetResumeContext(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[KeyResumeContext] = text
	return nil
}

// Usage returns the consumed free attempts.
func (m *Memory) Usage(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[KeyMockUsage], nil
}

// IncrementUsage adds one consumed attempt.
func (m *Memory) IncrementUsage(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[KeyMockUsage]++
	return m.counters[KeyMockUsage], nil
}

// DecrementUsage refunds one attempt, flooring at zero.
func (m *Memory) DecrementUsage(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[KeyMockUsage] = max(m.counters[KeyMockUsage]-1, 0)
	return m.counters[KeyMockUsage], nil
}

// Balance returns the points balance.
func (m *Memory) Balance(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[KeyPoints], nil
}

// Credit adds amount to the balance.
func (m *Memory) Credit(_ context.Context, amount int) (int, error) {
	if amount < 0 {
		return 0, ErrNegativeAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[KeyPoints] += amount
	return m.counters[KeyPoints], nil
}

// Debit subtracts amount if the balance covers it.
func (m *Memory) Debit(_ context.Context, amount int) (bool, error) {
	if amount < 0 {
		return false, ErrNegativeAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters[KeyPoints] < amount {
		return false, nil
	}
	m.counters[KeyPoints] -= amount
	return true, nil
}

// SeedBalance sets the balance if it was never set.
func (m *Memory) SeedBalance(_ context.Context, amount int) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.counters[KeyPoints]; !ok {
		m.counters[KeyPoints] = amount
	}
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
