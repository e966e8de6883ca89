package postgres_adapter

import (
	"context"
	"errors"
	"fmt"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const kvSchema = `
CREATE TABLE IF NOT EXISTS explorer_kv (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresKVStore - реализация KeyValueStore поверх таблицы explorer_kv.
type PostgresKVStore struct {
	pool *pgxpool.Pool
}

var _ port.KeyValueStore = (*PostgresKVStore)(nil)

// NewPostgresKVStore - конструктор. Создает таблицу, если ее еще нет.
func NewPostgresKVStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresKVStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	if _, err := pool.Exec(ctx, kvSchema); err != nil {
		return nil, fmt.Errorf("failed to create explorer_kv table: %w", err)
	}
	return &PostgresKVStore{pool: pool}, nil
}

func (s *PostgresKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM explorer_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}
	return value, nil
}

func (s *PostgresKVStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO explorer_kv (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

	if _, err := s.pool.Exec(ctx, query, key, value); err != nil {
		contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
			"component": "PostgresKVStore",
			"method":    "Set",
		}).Error("Failed to upsert key", err, port.Fields{"key": key})
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

func (s *PostgresKVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM explorer_kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// Keys сравнивает префикс через left(), чтобы не экранировать % и _ для LIKE.
func (s *PostgresKVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT key FROM explorer_kv WHERE left(key, length($1)) = $1 ORDER BY key`, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan keys: %w", err)
	}
	return keys, nil
}

// Close закрывает пул. Пул принадлежит хранилищу после передачи в конструктор.
func (s *PostgresKVStore) Close() error {
	s.pool.Close()
	return nil
}
