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
	"strings"
	"time"

	"github.com/AlexKsun/celebration/models"
)

// Strategy names
const (
	StrategyDirect = "direct"
	StrategyForm   = "form"
	StrategyQuery  = "query"
	StrategyMock   = "mock"
)

// DefaultMockDelay imitates a round trip to the endpoint
const DefaultMockDelay = 2 * time.Second

// Direct posts the payload as JSON and requires a { success: true } answer
type Direct struct {
	Client *http.Client
}

func (d *Direct) Name() string { return StrategyDirect }

func (d *Direct) Deliver(ctx context.Context, endpoint string, payload models.SubmissionPayload) Outcome {
	body, err := json.Marshal(payload)
	if err != nil {
		return failed(fmt.Errorf("failed to encode payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return failed(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return failed(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failed(fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	var env models.SubmitEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&env); err != nil {
		return failed(fmt.Errorf("invalid response: %w", err))
	}
	if !env.Success {
		reason := env.Error
		if reason == "" {
			reason = "endpoint reported failure"
		}
		return failed(fmt.Errorf("rejected: %s", reason))
	}
	return succeeded(true, env.Message)
}

// FormPost sends action=submit&data=<json> as a form body. The answer is
// not read, so delivery is unconfirmed.
type FormPost struct {
	Client *http.Client
}

func (f *FormPost) Name() string { return StrategyForm }

func (f *FormPost) Deliver(ctx context.Context, endpoint string, payload models.SubmissionPayload) Outcome {
	data, err := json.Marshal(payload)
	if err != nil {
		return failed(fmt.Errorf("failed to encode payload: %w", err))
	}
	form := url.Values{"action": {ActionSubmit}, "data": {string(data)}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return failed(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return sendBlind(f.Client, req, StrategyForm, "sent as form post")
}

// QueryGet encodes a compact payload into the query string of a GET.
// The answer is not read, so delivery is unconfirmed.
type QueryGet struct {
	Client *http.Client
}

func (q *QueryGet) Name() string { return StrategyQuery }

func (q *QueryGet) Deliver(ctx context.Context, endpoint string, payload models.SubmissionPayload) Outcome {
	data, err := json.Marshal(payload.Compact())
	if err != nil {
		return failed(fmt.Errorf("failed to encode payload: %w", err))
	}

	u, err := withQuery(endpoint, url.Values{"action": {ActionSubmit}, "data": {string(data)}})
	if err != nil {
		return failed(fmt.Errorf("invalid endpoint URL: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return failed(err)
	}

	return sendBlind(q.Client, req, StrategyQuery, "sent as query request")
}

// sendBlind succeeds once the request completes at the transport level.
// The status is logged, never judged.
func sendBlind(client *http.Client, req *http.Request, name, message string) Outcome {
	resp, err := client.Do(req)
	if err != nil {
		return failed(err)
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	resp.Body.Close()

	slog.Debug("unconfirmed delivery", "strategy", name, "status", resp.StatusCode)
	return succeeded(false, message)
}

// Mock stands in for the endpoint in development
type Mock struct {
	Delay time.Duration
}

func (m *Mock) Name() string { return StrategyMock }

func (m *Mock) Deliver(ctx context.Context, _ string, payload models.SubmissionPayload) Outcome {
	timer := time.NewTimer(m.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return failed(ctx.Err())
	case <-timer.C:
	}

	slog.Info("mock submission completed", "product_id", payload.SelectedItem.ID, "variant_id", payload.SelectedItem.Variant.ID)
	return succeeded(false, "development mock submission completed")
}
