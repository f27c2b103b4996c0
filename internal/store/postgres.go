package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiyoungwoo/Resume-assistant/internal/types"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS prep_kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS prep_counters (
	name TEXT PRIMARY KEY,
	value BIGINT NOT NULL CHECK (value >= 0),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Postgres is a Store backed by a PostgreSQL connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// ConnectPostgres establishes a pool and ensures the schema exists.
func ConnectPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.pool.QueryRow(ctx, `SELECT value FROM prep_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (p *Postgres) put(ctx context.Context, key, value string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO prep_kv (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// LoadBank returns the stored bank for key.
func (p *Postgres) LoadBank(ctx context.Context, key types.ContextKey) ([]types.QuestionItem, error) {
	raw, ok, err := p.get(ctx, key.StorageKey())
	if err != nil {
		return []types.QuestionItem{}, err
	}
	if !ok {
		return []types.QuestionItem{}, nil
	}
	return decodeBank(key, raw)
}

// SaveBank upserts the snapshot for key.
func (p *Postgres) SaveBank(ctx context.Context, key types.ContextKey, items []types.QuestionItem) error {
	raw, err := encodeBank(items)
	if err != nil {
		return err
	}
	return p.put(ctx, key.StorageKey(), raw)
}

// ResumeContext returns the stored resume text.
func (p *Postgres) ResumeContext(ctx context.Context) (string, bool, error) {
	text, ok, err := p.get(ctx, KeyResumeContext)
	return text, ok && text != "", err
}

// SetResumeContext replaces the resume text.
func (p *Postgres) SetResumeContext(ctx context.Context, text string) error {
	return p.put(ctx, KeyResumeContext, text)
}

func (p *Postgres) counter(ctx context.Context, name string) (int, error) {
	var value int
	err := p.pool.QueryRow(ctx, `SELECT value FROM prep_counters WHERE name = $1`, name).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read counter %s: %w", name, err)
	}
	return value, nil
}

func (p *Postgres) add(ctx context.Context, name string, delta int) (int, error) {
	var value int
	err := p.pool.QueryRow(ctx,
		`INSERT INTO prep_counters (name, value) VALUES ($1, GREATEST($2::BIGINT, 0))
		 ON CONFLICT (name) DO UPDATE SET value = GREATEST(prep_counters.value + $2::BIGINT, 0), updated_at = NOW()
		 RETURNING value`,
		name, delta).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("failed to update counter %s: %w", name, err)
	}
	return value, nil
}

// Usage returns the consumed free attempts.
func (p *Postgres) Usage(ctx context.Context) (int, error) {
	return p.counter(ctx, KeyMockUsage)
}

// IncrementUsage adds one consumed attempt.
func (p *Postgres) IncrementUsage(ctx context.Context) (int, error) {
	return p.add(ctx, KeyMockUsage, 1)
}

// DecrementUsage refunds one attempt, flooring at zero.
func (p *Postgres) DecrementUsage(ctx context.Context) (int, error) {
	return p.add(ctx, KeyMockUsage, -1)
}

// Balance returns the points balance.
func (p *Postgres) Balance(ctx context.Context) (int, error) {
	return p.counter(ctx, KeyPoints)
}

// Credit adds amount to the balance.
func (p *Postgres) Credit(ctx context.Context, amount int) (int, error) {
	if amount < 0 {
		return 0, ErrNegativeAmount
	}
	return p.add(ctx, KeyPoints, amount)
}

// Debit subtracts amount in one conditional update.
func (p *Postgres) Debit(ctx context.Context, amount int) (bool, error) {
	if amount < 0 {
		return false, ErrNegativeAmount
	}
	tag, err := p.pool.Exec(ctx,
		`UPDATE prep_counters SET value = value - $1, updated_at = NOW() WHERE name = $2 AND value >= $1`,
		amount, KeyPoints)
	if err != nil {
		return false, fmt.Errorf("failed to debit points: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	return amount == 0, nil
}

// SeedBalance sets the balance if it was never set.
func (p *Postgres) SeedBalance(ctx context.Context, amount int) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO prep_counters (name, value) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		KeyPoints, amount)
	if err != nil {
		return fmt.Errorf("failed to seed points: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

var _ Store = (*Postgres)(nil)
