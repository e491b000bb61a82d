// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// maximum catalog document size
	maxDocumentBytes = 8 << 20
	// loadTimeout bounds a shared load, whoever started it
	loadTimeout = 30 * time.Second
)

// Loader fetches the catalog from a file path or an http(s) URL.
// A successful load is kept; failures are not, so a later session retries.
type Loader struct {
	source  string
	client  *http.Client
	timeout time.Duration
	group   singleflight.Group

	mu     sync.RWMutex
	cached *Catalog
}

func NewLoader(source string, client *http.Client) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{source: source, client: client, timeout: loadTimeout}
}

func (l *Loader) Source() string {
	return l.source
}

// Load returns the cached catalog or joins the in-flight load. The load
// itself is detached from ctx: a caller that gives up gets ctx.Err() while
// the others still receive the result.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	l.mu.RLock()
	cached := l.cached
	l.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	ch := l.group.DoChan("load", func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()

		data, err := l.read(loadCtx)
		if err != nil {
			return nil, err
		}
		c, err := Parse(data, formatOf(l.source))
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cached = c
		l.mu.Unlock()
		return c, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Catalog), nil
	}
}

func (l *Loader) read(ctx context.Context) ([]byte, error) {
	if !isURL(l.source) {
		data, err := os.ReadFile(l.source)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch catalog: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog body: %w", err)
	}
	return data, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func formatOf(source string) string {
	path := source
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}
