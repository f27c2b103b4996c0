package ledger

import (
	"context"
	"fmt"

	"github.com/shiyoungwoo/Resume-assistant/internal/store"
)

// MaxFreeAttempts is the number of mock interviews available without paying.
const MaxFreeAttempts = 2

// Quota is the global count of consumed free mock interview attempts.
type Quota struct {
	counters store.CounterStore
	limit    int
}

// NewQuota returns a quota with MaxFreeAttempts.
func NewQuota(counters store.CounterStore) *Quota {
	return &Quota{counters: counters, limit: MaxFreeAttempts}
}

// Limit returns the number of free attempts.
func (q *Quota) Limit() int { return q.limit }

// Used returns the consumed attempts.
func (q *Quota) Used(ctx context.Context) (int, error) {
	n, err := q.counters.Usage(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read usage: %w", err)
	}
	return n, nil
}

// Exceeded reports whether the free attempts are used up.
func (q *Quota) Exceeded(ctx context.Context) (bool, error) {
	n, err := q.Used(ctx)
	if err != nil {
		return false, err
	}
	return n >= q.limit, nil
}

// Consume records one started session.
func (q *Quota) Consume(ctx context.Context) (int, error) {
	n, err := q.counters.IncrementUsage(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to record usage: %w", err)
	}
	return n, nil
}

// Refund returns one attempt, never going below zero.
func (q *Quota) Refund(ctx context.Context) (int, error) {
	n, err := q.counters.DecrementUsage(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to refund usage: %w", err)
	}
	return n, nil
}
