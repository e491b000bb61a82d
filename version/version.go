// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package version

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AlexKsun/celebration/kvstore"
	"github.com/AlexKsun/celebration/storage"
)

// Current is the application version. Bump it to purge guests' stale state.
const Current = "1.0.4"

const (
	// Key holds the version that last touched a guest's durable namespace
	Key = storage.KeyPrefix + "app_version"
	// ReloadGuardKey marks, per session, that the post-purge reload happened
	ReloadGuardKey = "version_reload_done"
)

// Migrator purges state written by other application versions
type Migrator struct {
	current string
}

func NewMigrator(current string) *Migrator {
	if current == "" {
		current = Current
	}
	return &Migrator{current: current}
}

func (m *Migrator) Current() string {
	return m.current
}

// Check compares the stored version with the running one. On mismatch it
// deletes the app keys, clears the session namespace and records the running
// version. A guest with no version and nothing stored in either namespace is
// left untouched: nothing is written until Stamp. Returns whether anything
// was purged.
func (m *Migrator) Check(ctx context.Context, durable, session kvstore.Store) (bool, error) {
	stored, ok, err := durable.Get(ctx, Key)
	if err != nil {
		return false, fmt.Errorf("failed to read app version: %w", err)
	}
	if ok && stored == m.current {
		return false, nil
	}

	removed, err := kvstore.DeletePrefix(ctx, durable, storage.KeyPrefix, Key)
	if err != nil {
		return false, fmt.Errorf("failed to purge stale keys: %w", err)
	}
	sessionKeys := 0
	if session != nil {
		if keys, err := session.Keys(ctx); err == nil {
			sessionKeys = len(keys)
		}
		if sessionKeys > 0 {
			if err := session.Clear(ctx); err != nil {
				slog.Warn("failed to clear session storage", "error", err)
			}
		}
	}
	if !ok && removed == 0 && sessionKeys == 0 {
		return false, nil
	}

	if err := durable.Set(ctx, Key, m.current); err != nil {
		return true, fmt.Errorf("failed to store app version: %w", err)
	}

	if ok {
		slog.Info("app version changed, stale state purged", "from", stored, "to", m.current, "removed", removed)
	} else {
		slog.Info("unversioned state purged", "version", m.current, "removed", removed, "session_keys", sessionKeys)
	}
	return true, nil
}

// Stamp records the running version for a guest about to store state
func (m *Migrator) Stamp(ctx context.Context, durable kvstore.Store) error {
	stored, ok, err := durable.Get(ctx, Key)
	if err != nil {
		return fmt.Errorf("failed to read app version: %w", err)
	}
	if ok && stored == m.current {
		return nil
	}
	if err := durable.Set(ctx, Key, m.current); err != nil {
		return fmt.Errorf("failed to store app version: %w", err)
	}
	return nil
}

// ShouldReload reports whether a purge should be followed by one reload.
// It sets the guard so the answer is true at most once per session.
func (m *Migrator) ShouldReload(ctx context.Context, session kvstore.Store) bool {
	done, ok, err := session.Get(ctx, ReloadGuardKey)
	if err != nil || (ok && done == "true") {
		return false
	}
	if err := session.Set(ctx, ReloadGuardKey, "true"); err != nil {
		// without a guard a reload could loop
		return false
	}
	return true
}

// ForceClear removes every app key including the version marker
func (m *Migrator) ForceClear(ctx context.Context, durable kvstore.Store) (int, error) {
	removed, err := kvstore.DeletePrefix(ctx, durable, storage.KeyPrefix)
	if err != nil {
		return removed, fmt.Errorf("failed to clear app keys: %w", err)
	}
	slog.Info("app keys force-cleared", "removed", removed)
	return removed, nil
}
