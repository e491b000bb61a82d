// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/AlexKsun/celebration/admin"
	"github.com/AlexKsun/celebration/auth"
	"github.com/AlexKsun/celebration/catalog"
	"github.com/AlexKsun/celebration/cliparse"
	"github.com/AlexKsun/celebration/envconfig"
	"github.com/AlexKsun/celebration/handlers"
	"github.com/AlexKsun/celebration/kvstore"
	"github.com/AlexKsun/celebration/middleware"
	"github.com/AlexKsun/celebration/remote"
	"github.com/AlexKsun/celebration/render"
	"github.com/AlexKsun/celebration/selection"
	"github.com/AlexKsun/celebration/storage"
	"github.com/AlexKsun/celebration/version"
)

// Options carries collaborators that tests or main may replace
type Options struct {
	// HTTPClient is used for calls to the remote endpoint; nil uses a default
	HTTPClient *http.Client
	// Sessions holds per-session state; nil creates a fresh set
	Sessions *kvstore.Sessions
}

func NewRouter(db *sql.DB, cfg cliparse.Config, resolver *envconfig.Resolver, loader *catalog.Loader, opts Options) (*http.ServeMux, error) {
	mux := http.NewServeMux()

	pages, err := render.New()
	if err != nil {
		return nil, err
	}

	sessions := opts.Sessions
	if sessions == nil {
		sessions = kvstore.NewSessions(kvstore.DefaultQuota, kvstore.DefaultSessionIdle)
	}

	gateway := remote.NewGateway(resolver, opts.HTTPClient, slog.Default())
	guests := middleware.NewGuests(db, sessions, cfg.CookieSalt, kvstore.DefaultQuota)
	migrator := version.NewMigrator(version.Current)
	gate := auth.NewGate(resolver.AuthPassword)

	registry := selection.NewRegistry(func(sessionID, guestID string) *selection.Controller {
		return selection.New(selection.Deps{
			GuestID:   guestID,
			Status:    gateway,
			Catalog:   loader,
			Submitter: gateway,
			Store:     storage.New(guests.Durable(guestID)),
		})
	}, kvstore.DefaultSessionIdle)

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(registry, pages, cfg.Development)
	authHandler := handlers.NewAuthHandler(gate, registry, migrator, pages, cfg.CookieSalt)
	adminHandler := handlers.NewAdminHandler(admin.NewConsole(resolver, loader, gateway, migrator), guests)

	// guest wraps a handler with the guest cookies and the version check
	guest := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(guests.WithGuest(middleware.WithVersionCheck(migrator, registry.Drop, h)))
	}
	// member additionally requires the password gate
	member := func(h http.HandlerFunc) http.HandlerFunc {
		return guest(middleware.RequireAuth(gate, h))
	}
	operator := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(cfg.AdminKeySalt, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("GET /placeholder.svg", catalogHandler.Placeholder)

	// Password gate
	mux.HandleFunc("GET /login", guest(authHandler.LoginPage))
	mux.HandleFunc("POST /login", guest(authHandler.Login))
	mux.HandleFunc("POST /logout", guest(authHandler.Logout))

	// Catalog pages
	mux.HandleFunc("GET /{$}", member(catalogHandler.Page))
	mux.HandleFunc("POST /select", member(catalogHandler.Select))
	mux.HandleFunc("POST /submit", member(catalogHandler.Submit))

	// JSON API for the same session
	mux.HandleFunc("GET /api/state", member(catalogHandler.State))
	mux.HandleFunc("POST /api/selection", member(catalogHandler.APISelect))
	mux.HandleFunc("POST /api/category", member(catalogHandler.APICategory))
	mux.HandleFunc("POST /api/submit", member(catalogHandler.APISubmit))

	// Operator console (requires X-Admin-Key)
	mux.HandleFunc("GET /admin/config", operator(adminHandler.GetConfig))
	mux.HandleFunc("PUT /admin/endpoint", operator(adminHandler.SetEndpoint))
	mux.HandleFunc("DELETE /admin/endpoint", operator(adminHandler.ClearEndpoint))
	mux.HandleFunc("POST /admin/diagnose", operator(adminHandler.Diagnose))
	mux.HandleFunc("POST /admin/guests/{id}/reset", operator(adminHandler.ResetGuest))

	return mux, nil
}
