// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package envconfig resolves runtime settings from layered sources.

# Layers

In increasing priority:

  - build: values injected at build time (-ldflags "-X main.buildEnv=...")
    and the process environment for KnownKeys; values still holding a
    {{PLACEHOLDER}} are skipped
  - env file: a .env file, development only, parsed with godotenv
  - override: GAS_URL stored by an administrator in the admin namespace

# Usage

	r := envconfig.New(envconfig.Options{
		Build:       envconfig.BuildLayer(buildEnv, os.LookupEnv),
		EnvFile:     ".env",
		Development: cfg.Development,
		Overrides:   kvstore.NewSQL(conn, kvstore.AdminNamespace, 0),
	})
	r.Load(ctx)

	endpoint, err := r.EndpointURL()

Load runs once; concurrent callers share the same load.
*/
package envconfig
