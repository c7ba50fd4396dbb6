package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/hvacquote/internal/repository"
)

// KVRepository implements repository.KeyValueStore for SQLite
type KVRepository struct {
	db *DB
}

// NewKVRepository creates a new KVRepository
func NewKVRepository(db *DB) *KVRepository {
	return &KVRepository{db: db}
}

// Get returns the value stored under key
func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, nil
}

// Set inserts or replaces the value stored under key
func (r *KVRepository) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return repository.ErrInvalidInput
	}
	query := `
		INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (r *KVRepository) Delete(ctx context.Context, key string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Keys lists keys starting with prefix in lexical order
func (r *KVRepository) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key FROM kv_entries WHERE substr(key, 1, length(?1)) = ?1 ORDER BY key`,
		prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating key rows: %w", err)
	}
	return keys, nil
}
