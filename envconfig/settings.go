// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package envconfig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const (
	// MockEndpoint stands in for the remote endpoint in development
	MockEndpoint = "DEVELOPMENT_MOCK"
	// ScriptIDPlaceholder is the value shipped in sample configs
	ScriptIDPlaceholder = "YOUR_SCRIPT_ID"
	// EndpointPrefix is required for endpoints set by an administrator
	EndpointPrefix = "https://script.google.com/"
	// DefaultPassword is used when AUTH_PASSWORD is not configured
	DefaultPassword = "wedding2024"
)

var (
	ErrEndpointNotConfigured = errors.New("remote endpoint is not configured (set GAS_URL)")
	ErrInvalidEndpoint       = errors.New("invalid endpoint URL")
)

// EndpointURL resolves the remote endpoint. In development an unset endpoint
// resolves to MockEndpoint; elsewhere it is a configuration error.
func (r *Resolver) EndpointURL() (string, error) {
	url := r.Get(KeyEndpoint, "")
	if url != "" && url != ScriptIDPlaceholder {
		return url, nil
	}
	if r.Development() {
		slog.Warn("endpoint not configured, using development mock")
		return MockEndpoint, nil
	}
	return "", ErrEndpointNotConfigured
}

// ConsoleLog reports whether verbose logging was requested
func (r *Resolver) ConsoleLog() bool {
	return r.Development() || r.Get(KeyConsoleLog, "") == "true"
}

// AuthPassword returns the guest password
func (r *Resolver) AuthPassword() string {
	if pw := r.Get(KeyAuthPassword, ""); pw != "" {
		return pw
	}
	slog.Warn("AUTH_PASSWORD not set, using default password")
	return DefaultPassword
}

// HasOverride reports whether an administrator set the endpoint
func (r *Resolver) HasOverride() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.override != ""
}

// SetEndpointOverride stores an administrator-provided endpoint. It takes
// effect immediately for this resolver and survives restarts.
func (r *Resolver) SetEndpointOverride(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, EndpointPrefix) {
		return fmt.Errorf("%w: must start with %s", ErrInvalidEndpoint, EndpointPrefix)
	}
	if r.opts.Overrides == nil {
		return errors.New("no override storage configured")
	}
	if err := r.opts.Overrides.Set(ctx, OverrideKey, url); err != nil {
		return fmt.Errorf("failed to store endpoint override: %w", err)
	}

	r.mu.Lock()
	r.override = url
	r.mu.Unlock()
	slog.Info("endpoint override set", "url", url)
	return nil
}

// ClearEndpointOverride removes the administrator-provided endpoint
func (r *Resolver) ClearEndpointOverride(ctx context.Context) error {
	if r.opts.Overrides != nil {
		if err := r.opts.Overrides.Delete(ctx, OverrideKey); err != nil {
			return fmt.Errorf("failed to clear endpoint override: %w", err)
		}
	}

	r.mu.Lock()
	r.override = ""
	r.mu.Unlock()
	slog.Info("endpoint override cleared")
	return nil
}
