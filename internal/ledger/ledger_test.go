package ledger

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiyoungwoo/Resume-assistant/internal/store"
)

func TestLedger_CreditDebit(t *testing.T) {
	ctx := context.Background()
	l := New(store.NewMemory())
	require.NoError(t, l.Seed(ctx, 300))

	ok, err := l.Debit(ctx, 200)
	require.NoError(t, err)
	assert.True(t, ok)

	bal, err := l.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, bal)

	ok, err = l.Debit(ctx, 200)
	require.NoError(t, err)
	assert.False(t, ok)

	bal, err = l.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, bal, "failed debit must not change the balance")
}

func TestLedger_NegativeAmounts(t *testing.T) {
	ctx := context.Background()
	l := New(store.NewMemory())
	require.NoError(t, l.Seed(ctx, 100))

	assert.ErrorIs(t, l.Credit(ctx, -5), ErrInvalidAmount)
	_, err := l.Debit(ctx, -5)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.ErrorIs(t, l.Seed(ctx, -1), ErrInvalidAmount)

	bal, err := l.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, bal)
}

func TestLedger_SeedKeepsPersistedBalance(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	l := New(s)
	require.NoError(t, l.Seed(ctx, DefaultInitialPoints))
	require.NoError(t, l.Credit(ctx, 10))

	require.NoError(t, New(s).Seed(ctx, DefaultInitialPoints))
	bal, err := l.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultInitialPoints+10, bal)
}

func TestLedger_EarnForPost(t *testing.T) {
	ctx := context.Background()
	l := New(store.NewMemory())

	bal, err := l.EarnForPost(ctx)
	require.NoError(t, err)
	assert.Equal(t, CommunityPostReward, bal)
}

func TestLedger_BalanceNeverNegative(t *testing.T) {
	ctx := context.Background()
	l := New(store.NewMemory())
	rng := rand.New(rand.NewSource(42))

	expected := 0
	for i := 0; i < 500; i++ {
		amount := rng.Intn(300)
		if rng.Intn(2) == 0 {
			require.NoError(t, l.Credit(ctx, amount))
			expected += amount
			continue
		}
		ok, err := l.Debit(ctx, amount)
		require.NoError(t, err)
		assert.Equal(t, expected >= amount, ok)
		if ok {
			expected -= amount
		}

		bal, err := l.Balance(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, bal, 0)
		require.Equal(t, expected, bal)
	}
}

func TestQuota(t *testing.T) {
	ctx := context.Background()
	q := NewQuota(store.NewMemory())
	assert.Equal(t, MaxFreeAttempts, q.Limit())

	exceeded, err := q.Exceeded(ctx)
	require.NoError(t, err)
	assert.False(t, exceeded)

	_, err = q.Consume(ctx)
	require.NoError(t, err)
	n, err := q.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	exceeded, err = q.Exceeded(ctx)
	require.NoError(t, err)
	assert.True(t, exceeded)

	n, err = q.Refund(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = q.Refund(ctx)
	require.NoError(t, err)
	n, err = q.Refund(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
