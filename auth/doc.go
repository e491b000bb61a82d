// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides the guest password gate and the keys and tokens that
identify guests, sessions and administrators.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(auth.AdminScope, salt)
	err := auth.ValidateAdminKey(auth.AdminScope, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same salt always produces the same key, so nothing is stored.

# Guest Cookies

Each browser gets a guest ID (a UUID) that names its durable storage
namespace. The cookie carries the ID and its HMAC:

	value := auth.SignGuest(auth.NewGuestID(), salt)
	guestID, err := auth.VerifyGuest(value, salt)

A tampered or malformed value fails with ErrInvalidToken.

# Session Tokens

Session tokens are random 24-byte secrets naming a browser session:

	token, err := auth.GenerateSessionToken()

# Password Gate

Gate checks the shared guest password in constant time. A pass is kept
under SessionKey in the session store and under DurableKey in the guest's
durable store for seven days:

	gate := auth.NewGate(resolver.AuthPassword)
	if gate.Check(input) {
		gate.SetAuthenticated(ctx, session, durable)
	}

# IP Hashing

HashIP returns the first 8 bytes (16 hex chars) of HMAC-SHA256, used to
log failed logins without recording addresses.
*/
package auth
