// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	AdminKeySalt  string
	CookieSalt    string
	CatalogSource string
	EnvFile       string
	Development   bool
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("celebration", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
	fs.StringVar(&cfg.CookieSalt, "cookie-salt", "", "Guest cookie salt (prefer env)")

	// Content and runtime mode
	fs.StringVar(&cfg.CatalogSource, "catalog", "", "Product catalog file or http(s) URL")
	fs.StringVar(&cfg.EnvFile, "env-file", "", "Development .env file")
	fs.BoolVar(&cfg.Development, "dev", false, "Development mode")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	cfg.DatabaseURL = fallback(cfg.DatabaseURL, "DATABASE_URL", "celebration.db")
	cfg.DatabaseType = fallback(cfg.DatabaseType, "DATABASE_TYPE", "sqlite")
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("DATABASE_TYPE must be sqlite or postgres")
	}

	cfg.CatalogSource = fallback(cfg.CatalogSource, "CATALOG_SOURCE", "data/products.json")
	cfg.EnvFile = fallback(cfg.EnvFile, "ENV_FILE", ".env")
	if !cfg.Development {
		cfg.Development = os.Getenv("APP_ENV") == "development"
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.CookieSalt == "" {
		cfg.CookieSalt = os.Getenv("COOKIE_SALT")
	}
	if cfg.CookieSalt == "" {
		return Config{}, errors.New("COOKIE_SALT required")
	}

	return cfg, nil
}

func fallback(value, env, def string) string {
	if value != "" {
		return value
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}
