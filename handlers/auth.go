// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/AlexKsun/celebration/auth"
	"github.com/AlexKsun/celebration/middleware"
	"github.com/AlexKsun/celebration/render"
	"github.com/AlexKsun/celebration/selection"
	"github.com/AlexKsun/celebration/version"
)

// AuthHandler serves the password gate
type AuthHandler struct {
	gate     *auth.Gate
	registry *selection.Registry
	migrator *version.Migrator
	pages    *render.Pages
	salt     string
}

func NewAuthHandler(gate *auth.Gate, registry *selection.Registry, migrator *version.Migrator, pages *render.Pages, cookieSalt string) *AuthHandler {
	return &AuthHandler{gate: gate, registry: registry, migrator: migrator, pages: pages, salt: cookieSalt}
}

// LoginPage handles GET /login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	guest := middleware.GuestFrom(r)
	if h.gate.Authenticated(r.Context(), guest.Session, guest.Durable) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	data := render.LoginPage{Failed: r.URL.Query().Get("error") == "1"}
	if err := h.pages.Login(w, data); err != nil {
		slog.Error("failed to render login", "error", err)
	}
}

// Login handles POST /login (form: password)
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	guest := middleware.GuestFrom(r)
	if !h.gate.Check(r.PostForm.Get("password")) {
		slog.Warn("failed login", "client", auth.HashIP(middleware.GetClientIP(r), h.salt))
		http.Redirect(w, r, "/login?error=1", http.StatusSeeOther)
		return
	}

	// first durable write for this guest
	if err := h.migrator.Stamp(r.Context(), guest.Durable); err != nil {
		slog.Warn("failed to record app version", "guest_id", guest.ID, "error", err)
	}
	if err := h.gate.SetAuthenticated(r.Context(), guest.Session, guest.Durable); err != nil {
		// storage trouble: the guest will be asked again next time
		slog.Warn("failed to remember login", "guest_id", guest.ID, "error", err)
	}
	slog.Info("guest signed in", "guest_id", guest.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	guest := middleware.GuestFrom(r)
	if err := h.gate.Clear(r.Context(), guest.Session, guest.Durable); err != nil {
		slog.Warn("failed to clear login", "guest_id", guest.ID, "error", err)
	}
	h.registry.Drop(guest.SessionID)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
