// Package store provides persistence for question banks, the resume context,
// the mock interview usage counter and the points balance of one installation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shiyoungwoo/Resume-assistant/internal/types"
)

// Persisted keys outside the per-context question banks.
const (
	KeyResumeContext = "offerflow_resume_context"
	KeyMockUsage     = "offerflow_mock_usage"
	KeyPoints        = "offerflow_points"
)

// ErrCorruptEntry is returned when a stored value cannot be decoded.
// Callers degrade to the empty default.
var ErrCorruptEntry = errors.New("corrupt stored entry")

// ErrNegativeAmount is returned for credits or debits below zero.
var ErrNegativeAmount = errors.New("amount must be non-negative")

// BankStore holds one question bank snapshot per context key.
type BankStore interface {
	// LoadBank returns the stored bank for key, or an empty slice if none exists.
	LoadBank(ctx context.Context, key types.ContextKey) ([]types.QuestionItem, error)
	// SaveBank writes a full snapshot for key. Last write wins.
	SaveBank(ctx context.Context, key types.ContextKey, items []types.QuestionItem) error
}

// ResumeStore holds the single global resume context text.
type ResumeStore interface {
	// ResumeContext returns the stored text and whether it is present.
	ResumeContext(ctx context.Context) (string, bool, error)
	SetResumeContext(ctx context.Context, text string) error
}

// CounterStore holds the usage counter and the points balance.
// Every method is a single atomic step against the backend.
type CounterStore interface {
	Usage(ctx context.Context) (int, error)
	IncrementUsage(ctx context.Context) (int, error)
	// DecrementUsage lowers the counter by one, never below zero.
	DecrementUsage(ctx context.Context) (int, error)

	Balance(ctx context.Context) (int, error)
	Credit(ctx context.Context, amount int) (int, error)
	// Debit subtracts amount only if the balance covers it.
	Debit(ctx context.Context, amount int) (bool, error)
	// SeedBalance sets the balance only when none has been persisted yet.
	SeedBalance(ctx context.Context, amount int) error
}

// Store is the full persistence surface of an installation.
type Store interface {
	BankStore
	ResumeStore
	CounterStore
	Close() error
}

func encodeBank(items []types.QuestionItem) (string, error) {
	if items == nil {
		items = []types.QuestionItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to marshal question bank: %w", err)
	}
	return string(data), nil
}

func decodeBank(key types.ContextKey, raw string) ([]types.QuestionItem, error) {
	var items []types.QuestionItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []types.QuestionItem{}, fmt.Errorf("%w: %s: %v", ErrCorruptEntry, key.StorageKey(), err)
	}
	if items == nil {
		items = []types.QuestionItem{}
	}
	return items, nil
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Open creates the Store for backend. dsn is a file path for sqlite and a
// connection URL for postgres; it is ignored for memory.
func Open(ctx context.Context, backend, dsn string) (Store, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemory(), nil
	case BackendSQLite:
		return NewSQLite(ctx, dsn)
	case BackendPostgres:
		return ConnectPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported store backend: %q", backend)
	}
}
