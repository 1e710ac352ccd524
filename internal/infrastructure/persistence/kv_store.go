// Package persistence implements the document store and the machine-local
// key/value cache on SQLite.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// KVStore is a SQLite-backed persistent key/value cache. Entries are
// append/overwrite only; there is no eviction.
type KVStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewKVStore creates a key/value store over the given database
func NewKVStore(db *sql.DB, logger *zap.Logger) *KVStore {
	return &KVStore{
		db:     db,
		logger: logger,
	}
}

// Get returns the value stored under key, or "" when absent
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM kv_cache WHERE key = ?", key,
	).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read kv entry: %w", err)
	}

	return value, nil
}

// Set writes value under key, overwriting any previous value
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_cache (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)

	if err != nil {
		s.logger.Error("Failed to write kv entry", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to write kv entry: %w", err)
	}

	return nil
}
