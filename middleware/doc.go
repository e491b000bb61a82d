// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs one line per request (method, path, status, duration_ms) once the
handler returns: 4xx at warn level, 5xx at error level.

# Guests and Sessions

Guests.WithGuest identifies the browser with two cookies:

  - celebration_guest: signed guest ID, kept for a year. It names the
    guest's durable storage namespace.
  - celebration_session: random session token, dropped when the browser
    closes. It names the in-memory session store.

Handlers read both through GuestFrom:

	guest := middleware.GuestFrom(r)
	store := storage.New(guest.Durable)

WithVersionCheck runs the version migration before the handler. After a
purge, GET requests are redirected to themselves once per session. A
browser that has stored nothing is passed through without a write.

# Access Control

RequireAuth sends guests who have not entered the password to /login
(or answers 401 under /api/). RequireAdmin checks the X-Admin-Key header
against the key derived from the admin salt.

# CORS Middleware

main wraps the whole mux:

	handler := middleware.CORS(mux)

A named Origin is reflected with credentials allowed, so the guest cookies
travel with API calls. Preflights (OPTIONS with
Access-Control-Request-Method) get 204 without reaching the mux.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies (64 KiB at most, ErrEmptyBody when blank):

	var req models.SelectRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Rejected cookies and admin keys log its hash (auth.HashIP).
*/
package middleware
