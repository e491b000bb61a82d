// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates its schema.

# Opening

Open picks the driver from the database type, applies SQLite pragmas,
pings, and creates the schema:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

Supported types:

  - sqlite (default): modernc.org/sqlite, pure Go
  - postgres: github.com/lib/pq

# Schema Creation

CreateSchema is safe to call multiple times - uses IF NOT EXISTS.

# Tables

  - storage_entry: durable key/value rows keyed by (namespace, key)

Namespaces are "admin" for settings shared by the whole service and
"guest:<uuid>" for each guest's persisted selection state.
*/
package db
