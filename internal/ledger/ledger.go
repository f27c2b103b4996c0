// Package ledger tracks the points balance and the free mock interview quota.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shiyoungwoo/Resume-assistant/internal/store"
)

const (
	// CommunityPostReward is credited when the user shares a post.
	CommunityPostReward = 50
	// DefaultInitialPoints is the balance of a fresh installation.
	DefaultInitialPoints = 1250
)

// ErrInvalidAmount is returned for negative credit or debit amounts.
var ErrInvalidAmount = errors.New("amount must be non-negative")

// Ledger is the points balance of one installation. All changes go through
// the store in single atomic steps, so concurrent debits cannot overdraw.
type Ledger struct {
	counters store.CounterStore
}

// New returns a ledger over counters.
func New(counters store.CounterStore) *Ledger {
	return &Ledger{counters: counters}
}

// Seed sets the starting balance unless one was already persisted.
func (l *Ledger) Seed(ctx context.Context, initial int) error {
	if initial < 0 {
		return fmt.Errorf("initial points %d: %w", initial, ErrInvalidAmount)
	}
	return l.counters.SeedBalance(ctx, initial)
}

// Balance returns the current balance.
func (l *Ledger) Balance(ctx context.Context) (int, error) {
	return l.counters.Balance(ctx)
}

// Credit adds amount to the balance.
func (l *Ledger) Credit(ctx context.Context, amount int) error {
	if amount < 0 {
		return fmt.Errorf("credit %d: %w", amount, ErrInvalidAmount)
	}
	if _, err := l.counters.Credit(ctx, amount); err != nil {
		return fmt.Errorf("failed to credit points: %w", err)
	}
	return nil
}

// Debit subtracts amount and reports true, or reports false and leaves the
// balance unchanged when it does not cover amount.
func (l *Ledger) Debit(ctx context.Context, amount int) (bool, error) {
	if amount < 0 {
		return false, fmt.Errorf("debit %d: %w", amount, ErrInvalidAmount)
	}
	ok, err := l.counters.Debit(ctx, amount)
	if err != nil {
		return false, fmt.Errorf("failed to debit points: %w", err)
	}
	return ok, nil
}

// EarnForPost credits the community post reward and returns the new balance.
func (l *Ledger) EarnForPost(ctx context.Context) (int, error) {
	if err := l.Credit(ctx, CommunityPostReward); err != nil {
		return 0, err
	}
	return l.Balance(ctx)
}
