// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package remote

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/AlexKsun/celebration/models"
)

// EndpointSource resolves the current endpoint URL
type EndpointSource interface {
	EndpointURL() (string, error)
}

// Gateway resolves the endpoint on every call, so an administrator's
// override applies to the next status check or submission.
type Gateway struct {
	endpoints EndpointSource
	http      *http.Client
	logger    *slog.Logger
}

func NewGateway(endpoints EndpointSource, httpClient *http.Client, logger *slog.Logger) *Gateway {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Gateway{endpoints: endpoints, http: httpClient, logger: logger}
}

// Client returns a client for the current endpoint ("" when unresolved)
func (g *Gateway) Client() *Client {
	endpoint, err := g.endpoints.EndpointURL()
	if err != nil {
		endpoint = ""
	}
	return NewClient(endpoint, g.http)
}

func (g *Gateway) CheckStatus(ctx context.Context, guestID string) models.ApplicationStatus {
	return g.Client().CheckStatus(ctx, guestID)
}

// Submit returns envconfig.ErrEndpointNotConfigured when no endpoint resolves
func (g *Gateway) Submit(ctx context.Context, payload models.SubmissionPayload) (Result, error) {
	endpoint, err := g.endpoints.EndpointURL()
	if err != nil {
		return Result{}, err
	}
	return NewPipelineFor(endpoint, g.http, g.logger).Submit(ctx, payload)
}
