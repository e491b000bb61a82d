// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Celebration gift catalog.

Celebration is a password-gated wedding gift catalog. Guests pick one
product variant, confirm it, and the choice is delivered to a
spreadsheet endpoint. A guest who already applied sees the earlier choice
and may change it.

# Starting the Server

The server reads CLI flags or environment variables:

	ADMIN_KEY_SALT=... COOKIE_SALT=... go run .

Or with flags:

	go run . -p 3318 -t sqlite -d celebration.db --catalog data/products.json

# Configuration

Required settings:

  - ADMIN_KEY_SALT (--admin-salt): Secret for the admin key HMAC
  - COOKIE_SALT (--cookie-salt): Secret for signing guest cookies

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Connection string or sqlite file (default: celebration.db)
  - CATALOG_SOURCE (--catalog): JSON or YAML file, or an http(s) URL
  - APP_ENV=development (--dev): Development mode
  - ENV_FILE (--env-file): .env read in development only

Runtime values (GAS_URL, AUTH_PASSWORD, ENABLE_CONSOLE_LOG) resolve from,
lowest to highest priority: build-time values (-ldflags "-X
main.buildEnv=..."), the process environment, the development .env file
and an endpoint override stored by an administrator.

# Architecture

  - handlers: HTTP request handlers (catalog, password gate, admin)
  - router: Route definitions using Go 1.22+ routing
  - middleware: Guest cookies, version check, auth, CORS, logging, JSON helpers
  - selection: Per-session selection controller and view model
  - remote: Status checker and the submission pipeline
  - storage: Persisted selection store
  - kvstore: Durable (SQL) and session (memory) key-value stores
  - envconfig: Layered configuration resolver
  - catalog: Product catalog parsing and loading
  - version: App version migration
  - render: HTML templates
  - admin, admincli: Operator console and its command line
  - auth, db, cliparse, models

The celebration-admin command (cmd/celebration-admin) drives the same
operator console against the database directly.

See package documentation for each component.
*/
package main
