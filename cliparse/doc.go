// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQLite path or PostgreSQL connection string (default: celebration.db)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - AdminKeySalt: Secret for admin key HMAC (required)
  - CookieSalt: Secret signing guest cookies (required)
  - CatalogSource: Product catalog path or URL (default: data/products.json)
  - EnvFile: .env file read in development (default: .env)
  - Development: Development mode

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-admin-salt   Admin key salt
	-cookie-salt  Guest cookie salt
	-catalog      Catalog source
	-env-file     Development .env file
	-dev          Development mode

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	ADMIN_KEY_SALT  → -admin-salt
	COOKIE_SALT     → -cookie-salt
	CATALOG_SOURCE  → -catalog
	ENV_FILE        → -env-file
	APP_ENV=development → -dev

CLI flags take precedence over environment variables. Runtime settings
such as the endpoint URL and the guest password are not flags; they come
from the envconfig resolver.

# Validation

ParseFlags returns an error if required values are missing:

  - ADMIN_KEY_SALT must be provided
  - COOKIE_SALT must be provided
  - DATABASE_TYPE must be sqlite or postgres
*/
package cliparse
