// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/AlexKsun/celebration/envconfig"
	"github.com/AlexKsun/celebration/models"
)

// Actions understood by the endpoint
const (
	ActionStatus = "status"
	ActionSubmit = "submit"
)

// maximum response body read from the endpoint
const maxBodyBytes = 1 << 20

// DefaultTimeout bounds each request to the endpoint
const DefaultTimeout = 15 * time.Second

// Client talks to the spreadsheet endpoint
type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{endpoint: endpoint, http: httpClient}
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Usable reports whether the endpoint points at a real server
func (c *Client) Usable() bool {
	return usable(c.endpoint)
}

func usable(endpoint string) bool {
	return endpoint != "" &&
		endpoint != envconfig.MockEndpoint &&
		endpoint != envconfig.ScriptIDPlaceholder &&
		!envconfig.IsPlaceholder(endpoint)
}

// CheckStatus asks the endpoint whether this guest already applied.
// Every failure degrades to "no application"; nothing is returned as error.
func (c *Client) CheckStatus(ctx context.Context, guestID string) models.ApplicationStatus {
	none := models.ApplicationStatus{}
	if !c.Usable() {
		slog.Debug("endpoint not usable, skipping status check", "endpoint", c.endpoint)
		return none
	}

	u, err := withQuery(c.endpoint, url.Values{"action": {ActionStatus}, "guest": {guestID}})
	if err != nil {
		slog.Warn("invalid endpoint URL", "error", err)
		return none
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		slog.Warn("failed to build status request", "error", err)
		return none
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("status check failed", "error", err)
		return none
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("status check returned non-success", "status", resp.StatusCode)
		return none
	}

	var status models.ApplicationStatus
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&status); err != nil {
		slog.Warn("status response is not valid JSON", "error", err)
		return none
	}
	if !status.Exists() {
		return models.ApplicationStatus{Success: status.Success}
	}

	slog.Info("existing application found",
		"product_id", status.LastApplication.SelectedItem.ID,
		"variant_id", status.LastApplication.SelectedItem.Variant.ID,
		"row", status.LastApplication.RowNumber,
	)
	return status
}

// Probe issues a plain GET to the endpoint and reports what came back
func (c *Client) Probe(ctx context.Context) models.ProbeResponse {
	out := models.ProbeResponse{Endpoint: c.endpoint}
	if !c.Usable() {
		out.Error = envconfig.ErrEndpointNotConfigured.Error()
		return out
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	return c.probe(req, out)
}

// ProbeSubmit posts a test application flagged isTest
func (c *Client) ProbeSubmit(ctx context.Context) models.ProbeResponse {
	out := models.ProbeResponse{Endpoint: c.endpoint}
	if !c.Usable() {
		out.Error = envconfig.ErrEndpointNotConfigured.Error()
		return out
	}

	body, err := json.Marshal(models.SubmissionPayload{
		SelectedItem: models.SelectedItem{
			ID:       "test_product",
			Name:     "Test product",
			Brand:    "TEST",
			Category: "test",
			Variant:  models.SelectedVariant{ID: "test_variant", Name: "Test variant", Color: "#ff0000"},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		IsTest:    true,
	})
	if err != nil {
		out.Error = err.Error()
		return out
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		out.Error = err.Error()
		return out
	}
	req.Header.Set("Content-Type", "application/json")
	return c.probe(req, out)
}

func (c *Client) probe(req *http.Request, out models.ProbeResponse) models.ProbeResponse {
	resp, err := c.http.Do(req)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	defer resp.Body.Close()

	out.StatusCode = resp.StatusCode
	var v any
	out.JSON = json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&v) == nil
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		out.Error = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return out
}

func withQuery(endpoint string, q url.Values) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	merged := u.Query()
	for k, vs := range q {
		for _, v := range vs {
			if v != "" {
				merged.Add(k, v)
			}
		}
	}
	u.RawQuery = merged.Encode()
	return u.String(), nil
}
