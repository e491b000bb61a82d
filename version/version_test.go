// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package version

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexKsun/celebration/kvstore"
	"github.com/AlexKsun/celebration/storage"
)

func TestNewMigrator_DefaultsToCurrent(t *testing.T) {
	assert.Equal(t, Current, NewMigrator("").Current())
	assert.Equal(t, "2.0.0", NewMigrator("2.0.0").Current())
}

func TestCheck_FirstVisit(t *testing.T) {
	ctx := context.Background()
	durable := kvstore.NewMemory(0)
	session := kvstore.NewMemory(0)
	require.NoError(t, durable.Set(ctx, storage.SelectionKey, "leftover"))
	require.NoError(t, durable.Set(ctx, "unrelated", "kept"))
	require.NoError(t, session.Set(ctx, "anything", "x"))

	m := NewMigrator("1.0.0")
	purged, err := m.Check(ctx, durable, session)
	require.NoError(t, err)
	assert.True(t, purged)

	keys, err := durable.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"unrelated", Key}, keys)

	v, _, _ := durable.Get(ctx, Key)
	assert.Equal(t, "1.0.0", v)

	sessionKeys, err := session.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessionKeys)
}

func TestCheck_FreshGuestWritesNothing(t *testing.T) {
	ctx := context.Background()
	durable := kvstore.NewMemory(0)
	session := kvstore.NewMemory(0)
	m := NewMigrator("1.0.0")

	for i := 0; i < 3; i++ {
		purged, err := m.Check(ctx, durable, session)
		require.NoError(t, err)
		assert.False(t, purged)
	}

	keys, err := durable.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestCheck_UnversionedSessionIsCleared(t *testing.T) {
	ctx := context.Background()
	durable := kvstore.NewMemory(0)
	session := kvstore.NewMemory(0)
	require.NoError(t, session.Set(ctx, "wedding_gift_session", "{}"))

	purged, err := NewMigrator("1.0.0").Check(ctx, durable, session)
	require.NoError(t, err)
	assert.True(t, purged)

	sessionKeys, _ := session.Keys(ctx)
	assert.Empty(t, sessionKeys)
	v, ok, _ := durable.Get(ctx, Key)
	assert.True(t, ok)
	assert.Equal(t, "1.0.0", v)
}

func TestStamp(t *testing.T) {
	ctx := context.Background()
	durable := kvstore.NewMemory(0)
	m := NewMigrator("1.0.0")

	require.NoError(t, m.Stamp(ctx, durable))
	require.NoError(t, m.Stamp(ctx, durable))
	keys, _ := durable.Keys(ctx)
	assert.Equal(t, []string{Key}, keys)

	require.NoError(t, durable.Set(ctx, storage.SelectionKey, "saved"))
	purged, err := m.Check(ctx, durable, nil)
	require.NoError(t, err)
	assert.False(t, purged, "stamped state is kept")

	failing := kvstore.NewMemory(0)
	failing.Disable()
	assert.ErrorIs(t, m.Stamp(ctx, failing), kvstore.ErrUnavailable)
}

func TestCheck_SameVersionKeepsState(t *testing.T) {
	ctx := context.Background()
	durable := kvstore.NewMemory(0)
	m := NewMigrator("1.0.0")

	require.NoError(t, m.Stamp(ctx, durable))
	require.NoError(t, durable.Set(ctx, storage.SelectionKey, "saved"))

	purged, err := m.Check(ctx, durable, nil)
	require.NoError(t, err)
	assert.False(t, purged)
	_, ok, _ := durable.Get(ctx, storage.SelectionKey)
	assert.True(t, ok)
}

func TestCheck_VersionChangePurges(t *testing.T) {
	ctx := context.Background()
	durable := kvstore.NewMemory(0)
	require.NoError(t, NewMigrator("1.0.0").Stamp(ctx, durable))
	require.NoError(t, durable.Set(ctx, storage.SelectionKey, "saved"))
	require.NoError(t, durable.Set(ctx, storage.PreviousKey, "saved"))

	purged, err := NewMigrator("1.1.0").Check(ctx, durable, nil)
	require.NoError(t, err)
	assert.True(t, purged)

	keys, _ := durable.Keys(ctx)
	assert.Equal(t, []string{Key}, keys)
	v, _, _ := durable.Get(ctx, Key)
	assert.Equal(t, "1.1.0", v)
}

func TestCheck_StorageUnavailable(t *testing.T) {
	durable := kvstore.NewMemory(0)
	durable.Disable()
	purged, err := NewMigrator("").Check(context.Background(), durable, nil)
	assert.ErrorIs(t, err, kvstore.ErrUnavailable)
	assert.False(t, purged)
}

func TestShouldReload_OncePerSession(t *testing.T) {
	ctx := context.Background()
	m := NewMigrator("")
	session := kvstore.NewMemory(0)

	assert.True(t, m.ShouldReload(ctx, session))
	assert.False(t, m.ShouldReload(ctx, session))
	assert.True(t, m.ShouldReload(ctx, kvstore.NewMemory(0)), "a new session reloads again")
}

func TestShouldReload_NoGuard(t *testing.T) {
	session := kvstore.NewMemory(0)
	session.Disable()
	assert.False(t, NewMigrator("").ShouldReload(context.Background(), session))
}

func TestForceClear(t *testing.T) {
	ctx := context.Background()
	durable := kvstore.NewMemory(0)
	m := NewMigrator("")
	require.NoError(t, m.Stamp(ctx, durable))
	require.NoError(t, durable.Set(ctx, storage.SelectionKey, "saved"))
	require.NoError(t, durable.Set(ctx, "unrelated", "kept"))

	removed, err := m.ForceClear(ctx, durable)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	keys, _ := durable.Keys(ctx)
	assert.Equal(t, []string{"unrelated"}, keys)

	// the next check sees a guest with nothing stored
	purged, err := m.Check(ctx, durable, nil)
	require.NoError(t, err)
	assert.False(t, purged)
	keys, _ = durable.Keys(ctx)
	assert.Equal(t, []string{"unrelated"}, keys)
}
