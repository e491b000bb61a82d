// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Celebration gift catalog.

# Route Registration

NewRouter wires the shared collaborators (remote gateway, guest stores,
version migrator, password gate, controller registry) and returns a
configured http.ServeMux:

	mux, err := router.NewRouter(db, cfg, resolver, loader, router.Options{})

# Endpoints

Public:

	GET /health
	GET /placeholder.svg - Drawn image for variants without photos

Password gate (guest cookies, version check):

	GET  /login
	POST /login  - Form field "password"
	POST /logout

Catalog (requires the password gate):

	GET  /        - Catalog page (?category=, ?flash=)
	POST /select  - Form: productId, variantId, category
	POST /submit  - Confirm the current selection

JSON API (requires the password gate):

	GET  /api/state
	POST /api/selection - {"productId", "variantId"}
	POST /api/category  - {"category"}
	POST /api/submit

Operator console (requires X-Admin-Key):

	GET    /admin/config
	PUT    /admin/endpoint           - {"url"}
	DELETE /admin/endpoint
	POST   /admin/diagnose           - ?post=true sends a test submission
	POST   /admin/guests/{id}/reset

# Middleware Order

Guest routes run WithLogging, then Guests.WithGuest, then
WithVersionCheck, then RequireAuth where the gate applies. A version
purge drops the session's controller from the registry.
*/
package router
