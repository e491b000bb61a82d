// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admin

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexKsun/celebration/catalog"
	"github.com/AlexKsun/celebration/envconfig"
	"github.com/AlexKsun/celebration/kvstore"
	"github.com/AlexKsun/celebration/remote"
	"github.com/AlexKsun/celebration/storage"
	"github.com/AlexKsun/celebration/version"
)

func newConsole(t *testing.T, build map[string]string, catalogSource string) *Console {
	t.Helper()
	resolver := envconfig.New(envconfig.Options{Build: build, Overrides: kvstore.NewMemory(0)})
	resolver.Load(context.Background())
	return NewConsole(
		resolver,
		catalog.NewLoader(catalogSource, nil),
		remote.NewGateway(resolver, nil, nil),
		version.NewMigrator("1.2.3"),
	)
}

func TestConfig_MasksSecrets(t *testing.T) {
	c := newConsole(t, map[string]string{
		envconfig.KeyAuthPassword: "hunter2",
		envconfig.KeyEndpoint:     "https://script.google.com/macros/s/abc/exec",
	}, "")

	cfg := c.Config()
	assert.Equal(t, masked, cfg.Env[envconfig.KeyAuthPassword])
	assert.Equal(t, "https://script.google.com/macros/s/abc/exec", cfg.EndpointURL)
	assert.Empty(t, cfg.EndpointError)
	assert.Equal(t, "1.2.3", cfg.AppVersion)
	assert.Equal(t, storage.SchemaVersion, cfg.SchemaVersion)
	assert.False(t, cfg.EndpointOverride)
}

func TestSetAndClearEndpoint(t *testing.T) {
	c := newConsole(t, nil, "")
	ctx := context.Background()

	assert.NotEmpty(t, c.Config().EndpointError)

	_, err := c.SetEndpoint(ctx, "ftp://nope")
	assert.ErrorIs(t, err, envconfig.ErrInvalidEndpoint)

	url := envconfig.EndpointPrefix + "macros/s/xyz/exec"
	cfg, err := c.SetEndpoint(ctx, url)
	require.NoError(t, err)
	assert.True(t, cfg.EndpointOverride)
	assert.Equal(t, url, cfg.EndpointURL)
	assert.Equal(t, url, c.gateway.Client().Endpoint(), "the gateway follows the override at once")

	cfg, err = c.ClearEndpoint(ctx)
	require.NoError(t, err)
	assert.False(t, cfg.EndpointOverride)
	assert.Empty(t, cfg.EndpointURL)
}

func TestDiagnose_WithoutEndpointOrCatalog(t *testing.T) {
	c := newConsole(t, nil, filepath.Join(t.TempDir(), "absent.json"))

	report := c.Diagnose(context.Background(), false)
	assert.False(t, report.CatalogOK)
	assert.Zero(t, report.CatalogSize)
	assert.False(t, report.EnvFile)
	assert.Equal(t, envconfig.ErrEndpointNotConfigured.Error(), report.Probe.Error)
}

func TestResetGuest(t *testing.T) {
	c := newConsole(t, nil, "")
	ctx := context.Background()

	_, err := c.ResetGuest(ctx, kvstore.NewMemory(0), "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidGuest)

	durable := kvstore.NewMemory(0)
	require.NoError(t, c.migrator.Stamp(ctx, durable))
	require.NoError(t, durable.Set(ctx, storage.SelectionKey, "{}"))

	id := uuid.NewString()
	resp, err := c.ResetGuest(ctx, durable, id)
	require.NoError(t, err)
	assert.Equal(t, id, resp.GuestID)
	assert.Equal(t, 2, resp.Removed)
	assert.False(t, resp.ResetAt.IsZero())

	keys, err := durable.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}
