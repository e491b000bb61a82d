// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package envconfig

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"maps"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"golang.org/x/sync/singleflight"

	"github.com/AlexKsun/celebration/kvstore"
)

// Known keys
const (
	KeyEndpoint     = "GAS_URL"
	KeyAuthPassword = "AUTH_PASSWORD"
	KeyConsoleLog   = "ENABLE_CONSOLE_LOG"
)

// OverrideKey is where an administrator stores the endpoint in the admin namespace
const OverrideKey = "WEDDING_GIFT_GAS_URL"

// KnownKeys are picked up from the process environment into the build layer
var KnownKeys = []string{KeyEndpoint, KeyAuthPassword, KeyConsoleLog}

type Options struct {
	// Build holds values injected at build or deploy time
	Build map[string]string
	// EnvFile is only read in development
	EnvFile     string
	Development bool
	// Overrides is the durable admin namespace; may be nil
	Overrides kvstore.Store
}

// Resolver merges configuration layers into one flat mapping.
// Load is single-flight and memoised.
type Resolver struct {
	opts     Options
	group    singleflight.Group
	readFile func(path string) (map[string]string, error)

	mu       sync.RWMutex
	loaded   bool
	base     map[string]string
	override string
}

func New(opts Options) *Resolver {
	return &Resolver{
		opts: opts,
		readFile: func(path string) (map[string]string, error) {
			return godotenv.Read(path)
		},
	}
}

// Load resolves every layer once and returns a copy of the merged mapping.
// Later calls return the memoised result without touching the env file.
func (r *Resolver) Load(ctx context.Context) map[string]string {
	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()
	if loaded {
		return r.GetAll()
	}

	r.group.Do("load", func() (any, error) {
		r.mu.RLock()
		done := r.loaded
		r.mu.RUnlock()
		if done {
			return nil, nil
		}

		base := make(map[string]string)
		for k, v := range r.opts.Build {
			if v == "" || IsPlaceholder(v) {
				continue
			}
			base[k] = v
		}

		if r.opts.Development && r.opts.EnvFile != "" {
			vals, err := r.readFile(r.opts.EnvFile)
			switch {
			case errors.Is(err, fs.ErrNotExist):
				slog.Debug("env file not found", "path", r.opts.EnvFile)
			case err != nil:
				slog.Warn("failed to read env file", "path", r.opts.EnvFile, "error", err)
			default:
				maps.Copy(base, vals)
				slog.Info("loaded env file", "path", r.opts.EnvFile, "keys", len(vals))
			}
		}

		override := r.readOverride(ctx)

		r.mu.Lock()
		r.base = base
		r.override = override
		r.loaded = true
		r.mu.Unlock()
		return nil, nil
	})

	return r.GetAll()
}

func (r *Resolver) readOverride(ctx context.Context) string {
	if r.opts.Overrides == nil {
		return ""
	}
	v, ok, err := r.opts.Overrides.Get(ctx, OverrideKey)
	if err != nil {
		slog.Warn("failed to read endpoint override", "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

// Get returns the value for key, or def when it is unset or empty
func (r *Resolver) Get(key, def string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.loaded {
		slog.Warn("configuration read before Load", "key", key)
	}
	if v := r.lookup(key); v != "" {
		return v
	}
	return def
}

// GetAll returns a copy of the merged mapping
func (r *Resolver) GetAll() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.base)+1)
	maps.Copy(out, r.base)
	if r.override != "" {
		out[KeyEndpoint] = r.override
	}
	return out
}

// caller holds r.mu
func (r *Resolver) lookup(key string) string {
	if key == KeyEndpoint && r.override != "" {
		return r.override
	}
	return r.base[key]
}

func (r *Resolver) Development() bool {
	return r.opts.Development
}

// EnvFileReadable reports whether the development env file can be parsed
func (r *Resolver) EnvFileReadable() bool {
	if r.opts.EnvFile == "" {
		return false
	}
	_, err := r.readFile(r.opts.EnvFile)
	return err == nil
}

// IsPlaceholder reports whether a value still carries an unresolved {{...}} marker
func IsPlaceholder(v string) bool {
	return strings.Contains(v, "{{") || strings.Contains(v, "}}")
}

// BuildLayer parses values injected at build time ("K=V;K2=V2" or one per
// line) and lays the process environment for KnownKeys over them.
func BuildLayer(injected string, lookupEnv func(string) (string, bool)) map[string]string {
	out := make(map[string]string)
	if injected != "" {
		parsed, err := godotenv.Unmarshal(strings.ReplaceAll(injected, ";", "\n"))
		if err != nil {
			slog.Warn("failed to parse build-time values", "error", err)
		} else {
			maps.Copy(out, parsed)
		}
	}
	if lookupEnv != nil {
		for _, k := range KnownKeys {
			if v, ok := lookupEnv(k); ok && v != "" {
				out[k] = v
			}
		}
	}
	return out
}
