// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package kvstore provides the string key/value namespaces the rest of the
service persists into.

Two kinds of storage exist per guest:

  - durable: SQL rows in storage_entry, one namespace per guest
    (GuestNamespace) plus the shared AdminNamespace
  - session: an in-memory Memory store per browser session id (Sessions),
    dropped after DefaultSessionIdle without use

Both satisfy Store. Errors (including ErrQuotaExceeded and ErrUnavailable)
are always returned, callers decide whether to degrade.

	durable := kvstore.NewSQL(db, kvstore.GuestNamespace(guestID), 0)
	session := sessions.Get(sessionID)
*/
package kvstore
