// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AlexKsun/celebration/auth"
	"github.com/AlexKsun/celebration/db"
	"github.com/AlexKsun/celebration/kvstore"
	"github.com/AlexKsun/celebration/version"
)

const testCookieSalt = "cookie-salt"

func setupGuests(t *testing.T) (*Guests, *sql.DB) {
	t.Helper()
	conn, err := db.Open(db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewGuests(conn, kvstore.NewSessions(0, 0), testCookieSalt, 0), conn
}

// captureGuest runs one request through WithGuest and returns the guest the
// handler saw plus the cookies the response set
func captureGuest(t *testing.T, g *Guests, cookies []*http.Cookie) (*Guest, []*http.Cookie) {
	t.Helper()
	var seen *Guest
	handler := g.WithGuest(func(w http.ResponseWriter, r *http.Request) {
		seen = GuestFrom(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	handler(w, req)

	if seen == nil {
		t.Fatal("Expected guest in request context")
	}
	return seen, w.Result().Cookies()
}

func cookieNamed(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestWithGuest_IssuesCookies(t *testing.T) {
	g, _ := setupGuests(t)
	guest, cookies := captureGuest(t, g, nil)

	if guest.ID == "" || guest.SessionID == "" {
		t.Fatalf("Expected guest and session IDs, got %+v", guest)
	}

	gc := cookieNamed(cookies, GuestCookie)
	if gc == nil {
		t.Fatal("Expected guest cookie")
	}
	if id, err := auth.VerifyGuest(gc.Value, testCookieSalt); err != nil || id != guest.ID {
		t.Errorf("Guest cookie does not verify: id=%q err=%v", id, err)
	}
	if !gc.HttpOnly || gc.MaxAge <= 0 {
		t.Error("Expected persistent HttpOnly guest cookie")
	}

	sc := cookieNamed(cookies, SessionCookie)
	if sc == nil || sc.Value != guest.SessionID {
		t.Fatal("Expected session cookie matching the session ID")
	}
	if sc.MaxAge != 0 {
		t.Error("Expected session cookie without MaxAge")
	}
}

func TestWithGuest_ReusesCookies(t *testing.T) {
	g, _ := setupGuests(t)
	first, cookies := captureGuest(t, g, nil)

	ctx := context.Background()
	if err := first.Durable.Set(ctx, "k", "durable"); err != nil {
		t.Fatal(err)
	}
	if err := first.Session.Set(ctx, "k", "session"); err != nil {
		t.Fatal(err)
	}

	second, newCookies := captureGuest(t, g, cookies)
	if second.ID != first.ID || second.SessionID != first.SessionID {
		t.Errorf("Expected same guest and session, got %+v vs %+v", second, first)
	}
	if len(newCookies) != 0 {
		t.Errorf("Expected no new cookies, got %d", len(newCookies))
	}

	if v, _, _ := second.Durable.Get(ctx, "k"); v != "durable" {
		t.Errorf("Durable value = %q, want 'durable'", v)
	}
	if v, _, _ := second.Session.Get(ctx, "k"); v != "session" {
		t.Errorf("Session value = %q, want 'session'", v)
	}

	// a new browser session keeps the guest but not the session storage
	third, _ := captureGuest(t, g, []*http.Cookie{cookieNamed(cookies, GuestCookie)})
	if third.ID != first.ID {
		t.Error("Expected guest to survive a new session")
	}
	if _, ok, _ := third.Session.Get(ctx, "k"); ok {
		t.Error("Expected fresh session storage")
	}
}

func TestWithGuest_RejectsBadCookies(t *testing.T) {
	g, _ := setupGuests(t)

	testCases := []struct {
		name    string
		cookies []*http.Cookie
	}{
		{"forged guest", []*http.Cookie{{Name: GuestCookie, Value: auth.SignGuest(auth.NewGuestID(), "other-salt")}}},
		{"garbage guest", []*http.Cookie{{Name: GuestCookie, Value: "garbage"}}},
		{"short session", []*http.Cookie{{Name: SessionCookie, Value: "abc"}}},
		{"session with bad chars", []*http.Cookie{{Name: SessionCookie, Value: "!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, cookies := captureGuest(t, g, tc.cookies)
			if cookieNamed(cookies, tc.cookies[0].Name) == nil {
				t.Errorf("Expected a replacement %s cookie", tc.cookies[0].Name)
			}
		})
	}
}

func TestWithVersionCheck(t *testing.T) {
	g, conn := setupGuests(t)
	migrator := version.NewMigrator("2.0.0")

	var dropped []string
	calls := 0
	handler := g.WithGuest(WithVersionCheck(migrator, func(id string) { dropped = append(dropped, id) },
		func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusOK)
		}))

	do := func(method, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		handler(w, req)
		return w
	}

	// a new browser has nothing to purge: no reload and nothing stored
	w := do("GET", "/?category=kitchen", nil)
	if w.Code != http.StatusOK || calls != 1 || len(dropped) != 0 {
		t.Fatalf("Expected first visit to pass through, got code=%d calls=%d drops=%d", w.Code, calls, len(dropped))
	}
	var rows int
	if err := conn.QueryRow("SELECT COUNT(*) FROM storage_entry").Scan(&rows); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if rows != 0 {
		t.Errorf("Expected no stored rows after first visit, got %d", rows)
	}

	// state from an older version is purged and the page reloads once
	cookies := w.Result().Cookies()
	guestID, err := auth.VerifyGuest(cookieNamed(cookies, GuestCookie).Value, testCookieSalt)
	if err != nil {
		t.Fatalf("Guest cookie does not verify: %v", err)
	}
	ctx := context.Background()
	durable := g.Durable(guestID)
	if err := version.NewMigrator("1.0.0").Stamp(ctx, durable); err != nil {
		t.Fatalf("Failed to stamp old version: %v", err)
	}
	if err := durable.Set(ctx, "wedding_gift_selection", "{}"); err != nil {
		t.Fatalf("Failed to seed selection: %v", err)
	}

	w = do("GET", "/?category=kitchen", cookies)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("Expected 303 after version change, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/?category=kitchen" {
		t.Errorf("Expected redirect to same URL, got %q", loc)
	}
	if len(dropped) != 1 || calls != 1 {
		t.Errorf("Expected one drop and no handler call, got drops=%d calls=%d", len(dropped), calls)
	}
	if _, ok, _ := durable.Get(ctx, "wedding_gift_selection"); ok {
		t.Error("Expected stale selection purged")
	}

	// version recorded: next request goes through
	w = do("GET", "/?category=kitchen", cookies)
	if w.Code != http.StatusOK || calls != 2 || len(dropped) != 1 {
		t.Errorf("Expected handler call after reload, got code=%d calls=%d drops=%d", w.Code, calls, len(dropped))
	}

	// POST and API calls are purged but never redirected
	for _, tc := range []struct{ method, path string }{{"POST", "/select"}, {"GET", "/api/state"}} {
		if err := version.NewMigrator("1.0.0").Stamp(ctx, durable); err != nil {
			t.Fatalf("Failed to stamp old version: %v", err)
		}
		before := len(dropped)
		w = do(tc.method, tc.path, cookies)
		if w.Code != http.StatusOK {
			t.Errorf("Expected %s %s to pass through, got %d", tc.method, tc.path, w.Code)
		}
		if len(dropped) != before+1 {
			t.Errorf("Expected a drop for %s %s", tc.method, tc.path)
		}
	}
}

func TestRequireAuth(t *testing.T) {
	g, _ := setupGuests(t)
	gate := auth.NewGate(func() string { return "secret" })

	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
	handler := g.WithGuest(RequireAuth(gate, ok))

	testCases := []struct {
		name     string
		path     string
		login    bool
		wantCode int
		wantLoc  string
	}{
		{"page redirects", "/", false, http.StatusSeeOther, "/login"},
		{"api rejects", "/api/state", false, http.StatusUnauthorized, ""},
		{"page after login", "/", true, http.StatusOK, ""},
		{"api after login", "/api/state", true, http.StatusOK, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var cookies []*http.Cookie
			if tc.login {
				guest, issued := captureGuest(t, g, nil)
				if err := gate.SetAuthenticated(context.Background(), guest.Session, guest.Durable); err != nil {
					t.Fatal(err)
				}
				cookies = issued
			}

			req := httptest.NewRequest("GET", tc.path, nil)
			for _, c := range cookies {
				req.AddCookie(c)
			}
			w := httptest.NewRecorder()
			handler(w, req)

			if w.Code != tc.wantCode {
				t.Errorf("Expected status %d, got %d", tc.wantCode, w.Code)
			}
			if tc.wantLoc != "" && w.Header().Get("Location") != tc.wantLoc {
				t.Errorf("Expected redirect to %s, got %q", tc.wantLoc, w.Header().Get("Location"))
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	salt := "admin-salt"
	handler := RequireAdmin(salt, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	testCases := []struct {
		name     string
		key      string
		wantCode int
	}{
		{"missing key", "", http.StatusUnauthorized},
		{"wrong key", "nope", http.StatusForbidden},
		{"valid key", auth.GenerateAdminKey(auth.AdminScope, salt), http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin/config", nil)
			if tc.key != "" {
				req.Header.Set("X-Admin-Key", tc.key)
			}
			w := httptest.NewRecorder()
			handler(w, req)

			if w.Code != tc.wantCode {
				t.Errorf("Expected status %d, got %d", tc.wantCode, w.Code)
			}
		})
	}
}
