// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kvstore

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrUnavailable   = errors.New("storage unavailable")
)

// DefaultQuota matches the usual per-origin browser storage limit
const DefaultQuota = 5 << 20

// Store is a flat string key/value namespace
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

// DeletePrefix removes every key starting with prefix except the ones in keep.
// Returns the number of keys removed.
func DeletePrefix(ctx context.Context, s Store, prefix string, keep ...string) (int, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) || contains(keep, key) {
			continue
		}
		if err := s.Delete(ctx, key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// entrySize is what an entry counts against a quota
func entrySize(key, value string) int {
	return len(key) + len(value)
}
