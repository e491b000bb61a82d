// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/AlexKsun/celebration/auth"
	"github.com/AlexKsun/celebration/kvstore"
	"github.com/AlexKsun/celebration/version"
)

// Cookie names
const (
	GuestCookie   = "celebration_guest"
	SessionCookie = "celebration_session"
)

const guestCookieMaxAge = 365 * 24 * 60 * 60

type guestKey struct{}

// Guest is the browser making the request and the storage it owns
type Guest struct {
	ID        string
	SessionID string
	Durable   kvstore.Store
	Session   kvstore.Store
}

// WithGuestContext attaches g to ctx
func WithGuestContext(ctx context.Context, g *Guest) context.Context {
	return context.WithValue(ctx, guestKey{}, g)
}

// GuestFrom returns the request's guest, or nil outside WithGuest
func GuestFrom(r *http.Request) *Guest {
	g, _ := r.Context().Value(guestKey{}).(*Guest)
	return g
}

// Guests issues guest and session cookies and opens their storage
type Guests struct {
	db       *sql.DB
	sessions *kvstore.Sessions
	salt     string
	quota    int
}

func NewGuests(db *sql.DB, sessions *kvstore.Sessions, cookieSalt string, quota int) *Guests {
	return &Guests{db: db, sessions: sessions, salt: cookieSalt, quota: quota}
}

// Durable opens a guest's durable namespace
func (g *Guests) Durable(guestID string) kvstore.Store {
	return kvstore.NewSQL(g.db, kvstore.GuestNamespace(guestID), g.quota)
}

// WithGuest identifies the browser, issuing cookies on first contact
func (g *Guests) WithGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guestID := ""
		if c, err := r.Cookie(GuestCookie); err == nil {
			if id, err := auth.VerifyGuest(c.Value, g.salt); err == nil {
				guestID = id
			} else {
				slog.Warn("rejected guest cookie", "client", auth.HashIP(GetClientIP(r), g.salt))
			}
		}
		if guestID == "" {
			guestID = auth.NewGuestID()
			http.SetCookie(w, &http.Cookie{
				Name:     GuestCookie,
				Value:    auth.SignGuest(guestID, g.salt),
				Path:     "/",
				MaxAge:   guestCookieMaxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   r.TLS != nil,
			})
		}

		sessionID := ""
		if c, err := r.Cookie(SessionCookie); err == nil && validSessionID(c.Value) {
			sessionID = c.Value
		}
		if sessionID == "" {
			token, err := auth.GenerateSessionToken()
			if err != nil {
				slog.Error("failed to create session", "error", err)
				ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
				return
			}
			sessionID = token
			// no MaxAge: gone when the browser closes
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   r.TLS != nil,
			})
		}

		guest := &Guest{
			ID:        guestID,
			SessionID: sessionID,
			Durable:   g.Durable(guestID),
			Session:   g.sessions.Get(sessionID),
		}
		next(w, r.WithContext(WithGuestContext(r.Context(), guest)))
	}
}

// GenerateSessionToken output: 32 URL-safe base64 characters
func validSessionID(v string) bool {
	if len(v) != 32 {
		return false
	}
	return strings.IndexFunc(v, func(c rune) bool {
		return !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_')
	}) < 0
}

// WithVersionCheck purges the guest's state written by another application
// version. After a purge, onPurge drops whatever the session had cached and a
// page GET is redirected to itself once per session.
func WithVersionCheck(m *version.Migrator, onPurge func(sessionID string), next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guest := GuestFrom(r)
		if guest == nil {
			next(w, r)
			return
		}

		purged, err := m.Check(r.Context(), guest.Durable, guest.Session)
		if err != nil {
			slog.Warn("version check failed", "guest_id", guest.ID, "error", err)
		}
		if purged {
			if onPurge != nil {
				onPurge(guest.SessionID)
			}
			// a failed version write would purge again on the reload
			if err == nil && r.Method == http.MethodGet && !isAPI(r) && m.ShouldReload(r.Context(), guest.Session) {
				http.Redirect(w, r, r.URL.RequestURI(), http.StatusSeeOther)
				return
			}
		}
		next(w, r)
	}
}

// RequireAuth lets through guests that passed the password gate. Pages
// redirect to /login, API calls get 401.
func RequireAuth(gate *auth.Gate, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guest := GuestFrom(r)
		if guest != nil && gate.Authenticated(r.Context(), guest.Session, guest.Durable) {
			next(w, r)
			return
		}

		if isAPI(r) {
			ErrorResponse(w, http.StatusUnauthorized, "Password required")
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// RequireAdmin checks the X-Admin-Key header
func RequireAdmin(salt string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Admin-Key")
		if key == "" {
			ErrorResponse(w, http.StatusUnauthorized, "Admin key required")
			return
		}
		if err := auth.ValidateAdminKey(auth.AdminScope, key, salt); err != nil {
			slog.Warn("invalid admin key", "client", auth.HashIP(GetClientIP(r), salt))
			ErrorResponse(w, http.StatusForbidden, "Invalid admin key")
			return
		}
		next(w, r)
	}
}
