// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/AlexKsun/celebration/kvstore"
)

// Storage keys for the password gate
const (
	SessionKey = "wedding_gift_session"
	DurableKey = "wedding_gift_auth"
)

// RememberFor is how long a correct password is remembered across sessions
const RememberFor = 7 * 24 * time.Hour

type record struct {
	Authenticated bool      `json:"authenticated"`
	Timestamp     time.Time `json:"timestamp"`
}

// Gate is the shared-password check in front of the catalog.
// A pass lives in the session store for the browser session and in the
// durable store for RememberFor.
type Gate struct {
	password func() string
	now      func() time.Time
}

// NewGate reads the expected password through password on every check,
// so a configuration change applies without a restart.
func NewGate(password func() string) *Gate {
	return &Gate{password: password, now: time.Now}
}

// Check compares input to the password in constant time
func (g *Gate) Check(input string) bool {
	want := sha256.Sum256([]byte(g.password()))
	got := sha256.Sum256([]byte(input))
	return subtle.ConstantTimeCompare(want[:], got[:]) == 1
}

// Authenticated reports whether the browser already passed the gate. A valid
// durable record also marks the session. Expired or unreadable records are
// removed.
func (g *Gate) Authenticated(ctx context.Context, session, durable kvstore.Store) bool {
	if v, ok, err := session.Get(ctx, SessionKey); err == nil && ok && v == "true" {
		return true
	}

	raw, ok, err := durable.Get(ctx, DurableKey)
	if err != nil || !ok {
		return false
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		slog.Warn("unreadable auth record, removing", "error", err)
		durable.Delete(ctx, DurableKey)
		return false
	}
	if !rec.Authenticated || g.now().Sub(rec.Timestamp) >= RememberFor {
		slog.Debug("auth record expired")
		durable.Delete(ctx, DurableKey)
		return false
	}

	if err := session.Set(ctx, SessionKey, "true"); err != nil {
		slog.Warn("failed to mark session authenticated", "error", err)
	}
	return true
}

// SetAuthenticated records a successful check in both stores
func (g *Gate) SetAuthenticated(ctx context.Context, session, durable kvstore.Store) error {
	if err := session.Set(ctx, SessionKey, "true"); err != nil {
		return err
	}
	data, err := json.Marshal(record{Authenticated: true, Timestamp: g.now().UTC()})
	if err != nil {
		return err
	}
	return durable.Set(ctx, DurableKey, string(data))
}

// Clear forgets the pass in both stores
func (g *Gate) Clear(ctx context.Context, session, durable kvstore.Store) error {
	if err := session.Delete(ctx, SessionKey); err != nil {
		return err
	}
	return durable.Delete(ctx, DurableKey)
}
