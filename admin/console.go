// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admin

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AlexKsun/celebration/catalog"
	"github.com/AlexKsun/celebration/envconfig"
	"github.com/AlexKsun/celebration/kvstore"
	"github.com/AlexKsun/celebration/models"
	"github.com/AlexKsun/celebration/remote"
	"github.com/AlexKsun/celebration/storage"
	"github.com/AlexKsun/celebration/version"
)

const masked = "********"

var ErrInvalidGuest = errors.New("invalid guest id")

// secretKeys are never shown in a config dump
var secretKeys = map[string]bool{envconfig.KeyAuthPassword: true}

// Console holds the operator actions shared by the HTTP admin API and the
// celebration-admin command
type Console struct {
	resolver *envconfig.Resolver
	catalog  *catalog.Loader
	gateway  *remote.Gateway
	migrator *version.Migrator
}

func NewConsole(resolver *envconfig.Resolver, loader *catalog.Loader, gateway *remote.Gateway, migrator *version.Migrator) *Console {
	return &Console{resolver: resolver, catalog: loader, gateway: gateway, migrator: migrator}
}

// Config describes the resolved configuration with secrets masked
func (c *Console) Config() models.ConfigResponse {
	env := c.resolver.GetAll()
	for k := range env {
		if secretKeys[k] {
			env[k] = masked
		}
	}

	out := models.ConfigResponse{
		Development:      c.resolver.Development(),
		EndpointOverride: c.resolver.HasOverride(),
		ConsoleLog:       c.resolver.ConsoleLog(),
		AppVersion:       c.migrator.Current(),
		SchemaVersion:    storage.SchemaVersion,
		Env:              env,
	}
	if url, err := c.resolver.EndpointURL(); err != nil {
		out.EndpointError = err.Error()
	} else {
		out.EndpointURL = url
	}
	return out
}

// SetEndpoint stores an endpoint override; it must start with
// envconfig.EndpointPrefix
func (c *Console) SetEndpoint(ctx context.Context, url string) (models.ConfigResponse, error) {
	if err := c.resolver.SetEndpointOverride(ctx, url); err != nil {
		return models.ConfigResponse{}, err
	}
	return c.Config(), nil
}

func (c *Console) ClearEndpoint(ctx context.Context) (models.ConfigResponse, error) {
	if err := c.resolver.ClearEndpointOverride(ctx); err != nil {
		return models.ConfigResponse{}, err
	}
	return c.Config(), nil
}

// TestConnection probes the endpoint with a GET, or with a test submission
// when post is set
func (c *Console) TestConnection(ctx context.Context, post bool) models.ProbeResponse {
	client := c.gateway.Client()
	if post {
		return client.ProbeSubmit(ctx)
	}
	return client.Probe(ctx)
}

// Diagnose gathers configuration, catalog and endpoint health in one report
func (c *Console) Diagnose(ctx context.Context, post bool) models.DiagnoseResponse {
	out := models.DiagnoseResponse{
		Config:  c.Config(),
		EnvFile: c.resolver.EnvFileReadable(),
		Probe:   c.TestConnection(ctx, post),
	}

	cat, err := c.catalog.Load(ctx)
	if err != nil {
		slog.Warn("diagnose: catalog unavailable", "source", c.catalog.Source(), "error", err)
	} else {
		out.CatalogOK = true
		out.CatalogSize = cat.Len()
	}

	slog.Info("diagnose completed",
		"endpoint_ok", out.Probe.Error == "",
		"catalog_ok", out.CatalogOK,
		"env_file", out.EnvFile,
	)
	return out
}

// ResetGuest force-clears a guest's stored state. The next request from
// that guest clears its session and asks for the password again.
func (c *Console) ResetGuest(ctx context.Context, durable kvstore.Store, guestID string) (models.ResetGuestResponse, error) {
	if _, err := uuid.Parse(guestID); err != nil {
		return models.ResetGuestResponse{}, ErrInvalidGuest
	}
	removed, err := c.migrator.ForceClear(ctx, durable)
	if err != nil {
		return models.ResetGuestResponse{}, err
	}
	slog.Info("guest reset", "guest_id", guestID, "removed", removed)
	return models.ResetGuestResponse{GuestID: guestID, Removed: removed, ResetAt: time.Now().UTC()}, nil
}
