// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kvstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Namespace prefixes used in the storage_entry table
const (
	AdminNamespace  = "admin"
	guestNamespaceP = "guest:"
)

// GuestNamespace returns the durable namespace of a guest
func GuestNamespace(guestID string) string {
	return guestNamespaceP + guestID
}

// SQL is a durable Store backed by the storage_entry table.
// Queries use $n placeholders, which both sqlite and postgres accept.
type SQL struct {
	db        *sql.DB
	namespace string
	quota     int
}

func NewSQL(db *sql.DB, namespace string, quota int) *SQL {
	return &SQL{db: db, namespace: namespace, quota: quota}
}

func (s *SQL) Namespace() string {
	return s.namespace
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM storage_entry WHERE namespace = $1 AND key = $2
	`, s.namespace, key).Scan(&value)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	if s.quota > 0 {
		var used int
		err := s.db.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(LENGTH(key) + LENGTH(value)), 0)
			FROM storage_entry
			WHERE namespace = $1 AND key <> $2
		`, s.namespace, key).Scan(&used)
		if err != nil {
			return fmt.Errorf("failed to measure namespace: %w", err)
		}
		if used+entrySize(key, value) > s.quota {
			return ErrQuotaExceeded
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO storage_entry (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (namespace, key) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at
	`, s.namespace, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM storage_entry WHERE namespace = $1 AND key = $2
	`, s.namespace, key)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key FROM storage_entry WHERE namespace = $1 ORDER BY key
	`, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *SQL) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM storage_entry WHERE namespace = $1
	`, s.namespace)
	if err != nil {
		return fmt.Errorf("failed to clear namespace: %w", err)
	}
	return nil
}
