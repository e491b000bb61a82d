// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Celebration gift
catalog.

# Handler Types

Each handler is a struct built from its collaborators:

  - CatalogHandler: Catalog page, selection, submission and the JSON API
  - AuthHandler: Password gate login and logout
  - AdminHandler: Operator console (endpoint override, diagnosis, guest reset)

Handlers are created via constructor functions:

	catalogHandler := handlers.NewCatalogHandler(registry, pages, cfg.Development)

# Sessions

Every guest route runs behind middleware.Guests.WithGuest, so handlers read
the guest from the request:

	guest := middleware.GuestFrom(r)
	c := registry.Get(guest.SessionID, guest.ID)

The controller is started on each request; Start is idempotent. A failed
start is dropped from the registry so the next request tries again.

# Page Flow

HTML forms post and redirect back (303) to the catalog page. Errors travel
as a short flash code in the query string:

	POST /select → /?category=kitchen
	POST /submit → /?flash=failed

The JSON API reports the same session state:

	GET  /api/state
	POST /api/selection
	POST /api/category
	POST /api/submit

Controller errors map to 400 (bad selection), 409 (busy), 503 (not ready,
catalog or endpoint missing) and 502 (every delivery strategy failed).

# Admin Console

Admin routes require the X-Admin-Key header (middleware.RequireAdmin):

	GET    /admin/config
	PUT    /admin/endpoint
	DELETE /admin/endpoint
	POST   /admin/diagnose
	POST   /admin/guests/{id}/reset
*/
package handlers
