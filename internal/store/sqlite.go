package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/shiyoungwoo/Resume-assistant/internal/types"
)

// SQLite is a Store backed by a single SQLite file.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at dbPath.
func NewSQLite(ctx context.Context, dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Counter updates rely on single-writer semantics.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS counters (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL CHECK (value >= 0),
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO counters (name, value, updated_at) VALUES (?, 0, ?)
		 ON CONFLICT(name) DO NOTHING`,
		KeyMockUsage, time.Now().Unix())
	return err
}

func (s *SQLite) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLite) put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// LoadBank returns the stored bank for key.
func (s *SQLite) LoadBank(ctx context.Context, key types.ContextKey) ([]types.QuestionItem, error) {
	raw, ok, err := s.get(ctx, key.StorageKey())
	if err != nil {
		return []types.QuestionItem{}, err
	}
	if !ok {
		return []types.QuestionItem{}, nil
	}
	return decodeBank(key, raw)
}

// SaveBank upserts the snapshot for key.
func (s *SQLite) SaveBank(ctx context.Context, key types.ContextKey, items []types.QuestionItem) error {
	raw, err := encodeBank(items)
	if err != nil {
		return err
	}
	return s.put(ctx, key.StorageKey(), raw)
}

// ResumeContext returns the stored resume text.
func (s *SQLite) ResumeContext(ctx context.Context) (string, bool, error) {
	text, ok, err := s.get(ctx, KeyResumeContext)
	return text, ok && text != "", err
}

// SetResumeContext replaces the resume text.
func (s *SQLite) SetResumeContext(ctx context.Context, text string) error {
	return s.put(ctx, KeyResumeContext, text)
}

func (s *SQLite) counter(ctx context.Context, name string) (int, error) {
	var value int
	err := s.db.QueryRowContext(ctx, `SELECT value FROM counters WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read counter %s: %w", name, err)
	}
	return value, nil
}

// add applies delta to a counter, creating it at zero first. The result floors at zero.
func (s *SQLite) add(ctx context.Context, name string, delta int) (int, error) {
	var value int
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO counters (name, value, updated_at) VALUES (?, MAX(?, 0), ?)
		 ON CONFLICT(name) DO UPDATE SET value = MAX(counters.value + ?, 0), updated_at = excluded.updated_at
		 RETURNING value`,
		name, delta, time.Now().Unix(), delta).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("update counter %s: %w", name, err)
	}
	return value, nil
}

// Usage returns the consumed free attempts.
func (s *SQLite) Usage(ctx context.Context) (int, error) {
	return s.counter(ctx, KeyMockUsage)
}

// IncrementUsage adds one consumed attempt.
func (s *SQLite) IncrementUsage(ctx context.Context) (int, error) {
	return s.add(ctx, KeyMockUsage, 1)
}

// DecrementUsage refunds one attempt, flooring at zero.
func (s *SQLite) DecrementUsage(ctx context.Context) (int, error) {
	return s.add(ctx, KeyMockUsage, -1)
}

// Balance returns the points balance.
func (s *SQLite) Balance(ctx context.Context) (int, error) {
	return s.counter(ctx, KeyPoints)
}

// Credit adds amount to the balance.
func (s *SQLite) Credit(ctx context.Context, amount int) (int, error) {
	if amount < 0 {
		return 0, ErrNegativeAmount
	}
	return s.add(ctx, KeyPoints, amount)
}

// Debit subtracts amount in one conditional update.
func (s *SQLite) Debit(ctx context.Context, amount int) (bool, error) {
	if amount < 0 {
		return false, ErrNegativeAmount
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE counters SET value = value - ?, updated_at = ? WHERE name = ? AND value >= ?`,
		amount, time.Now().Unix(), KeyPoints, amount)
	if err != nil {
		return false, fmt.Errorf("debit points: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("debit points: %w", err)
	}
	if n == 1 {
		return true, nil
	}
	// A zero debit against a never-seeded balance still succeeds.
	return amount == 0, nil
}

// SeedBalance sets the balance if it was never set.
func (s *SQLite) SeedBalance(ctx context.Context, amount int) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO counters (name, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO NOTHING`,
		KeyPoints, amount, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("seed points: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLite)(nil)
