// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/AlexKsun/celebration/envconfig"
	"github.com/AlexKsun/celebration/models"
)

var ErrNoStrategies = errors.New("no submission strategies configured")

// Outcome is what a single strategy reports back
type Outcome struct {
	OK bool
	// Confirmed is false when the transport cannot read the endpoint's answer
	Confirmed bool
	Message   string
	Err       error
}

func succeeded(confirmed bool, message string) Outcome {
	return Outcome{OK: true, Confirmed: confirmed, Message: message}
}

func failed(err error) Outcome {
	return Outcome{Err: err}
}

// Strategy delivers a payload to the endpoint one particular way
type Strategy interface {
	Name() string
	Deliver(ctx context.Context, endpoint string, payload models.SubmissionPayload) Outcome
}

// Attempt records a failed strategy
type Attempt struct {
	Strategy string
	Err      error
}

// Result describes the delivery that succeeded
type Result struct {
	Strategy  string
	Confirmed bool
	Message   string
	// Attempts lists the strategies that failed before this one
	Attempts []Attempt
}

// SubmissionError is returned when every strategy failed
type SubmissionError struct {
	Attempts []Attempt
}

func (e *SubmissionError) Error() string {
	reasons := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		reasons = append(reasons, fmt.Sprintf("%s: %v", a.Strategy, a.Err))
	}
	return "all submission strategies failed: " + strings.Join(reasons, "; ")
}

func (e *SubmissionError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

// Pipeline tries its strategies in order until one succeeds.
//
// A strategy that cannot read the endpoint's answer still counts as
// success (Result.Confirmed is false).
type Pipeline struct {
	endpoint   string
	strategies []Strategy
	logger     *slog.Logger
}

func NewPipeline(endpoint string, strategies []Strategy, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{endpoint: endpoint, strategies: strategies, logger: logger}
}

// NewPipelineFor builds the standard chain for endpoint: the development
// mock for MockEndpoint, otherwise direct, form and query delivery.
func NewPipelineFor(endpoint string, httpClient *http.Client, logger *slog.Logger) *Pipeline {
	if endpoint == envconfig.MockEndpoint {
		return NewPipeline(endpoint, []Strategy{&Mock{Delay: DefaultMockDelay}}, logger)
	}
	return NewPipeline(endpoint, DefaultStrategies(httpClient), logger)
}

// DefaultStrategies is the fallback chain in the order it is tried
func DefaultStrategies(httpClient *http.Client) []Strategy {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return []Strategy{
		&Direct{Client: httpClient},
		&FormPost{Client: httpClient},
		&QueryGet{Client: httpClient},
	}
}

func (p *Pipeline) Endpoint() string {
	return p.endpoint
}

// Submit delivers the payload. Strategies run strictly one after another;
// each failure is logged and the next one is tried.
func (p *Pipeline) Submit(ctx context.Context, payload models.SubmissionPayload) (Result, error) {
	if p.endpoint != envconfig.MockEndpoint && !usable(p.endpoint) {
		return Result{}, envconfig.ErrEndpointNotConfigured
	}
	if len(p.strategies) == 0 {
		return Result{}, ErrNoStrategies
	}

	var attempts []Attempt
	for _, s := range p.strategies {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, Attempt{Strategy: s.Name(), Err: err})
			break
		}

		out := s.Deliver(ctx, p.endpoint, payload)
		if out.OK {
			p.logger.Info("submission delivered",
				"strategy", s.Name(),
				"confirmed", out.Confirmed,
				"failed_attempts", len(attempts),
			)
			return Result{
				Strategy:  s.Name(),
				Confirmed: out.Confirmed,
				Message:   out.Message,
				Attempts:  attempts,
			}, nil
		}

		if out.Err == nil {
			out.Err = errors.New("strategy reported failure without a reason")
		}
		p.logger.Warn("submission strategy failed", "strategy", s.Name(), "error", out.Err)
		attempts = append(attempts, Attempt{Strategy: s.Name(), Err: out.Err})
	}

	err := &SubmissionError{Attempts: attempts}
	p.logger.Error("submission failed", "error", err)
	return Result{Attempts: attempts}, err
}
