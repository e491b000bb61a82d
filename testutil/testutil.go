// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/AlexKsun/celebration/auth"
	"github.com/AlexKsun/celebration/cliparse"
	"github.com/AlexKsun/celebration/db"
	"github.com/AlexKsun/celebration/models"
)

// TestPassword is the gate password used by test resolvers
const TestPassword = "test-password"

// SetupTestDB opens a fresh in-memory sqlite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   ":memory:",
		DatabaseType:  db.TypeSQLite,
		AdminKeySalt:  "test-admin-salt",
		CookieSalt:    "test-cookie-salt",
		CatalogSource: "data/products.json",
		EnvFile:       ".env",
		Development:   true,
	}
}

// AdminHeaders returns the X-Admin-Key header for cfg
func AdminHeaders(cfg cliparse.Config) map[string]string {
	return map[string]string{"X-Admin-Key": auth.GenerateAdminKey(auth.AdminScope, cfg.AdminKeySalt)}
}

// CatalogJSON is a two-product catalog used across handler tests
const CatalogJSON = `{
  "products": [
    {
      "id": "kettle",
      "name": "Electric Kettle",
      "brand": "Balmuda",
      "category": "kitchen",
      "description": "<p>Pours <b>precisely</b></p>",
      "variants": [
        {"id": "black", "name": "Black", "color": "#222222", "images": ["/images/kettle-black.jpg"]},
        {"id": "white", "name": "White", "color": "#f5f5f5"}
      ]
    },
    {
      "id": "towel",
      "name": "Bath Towel Set",
      "brand": "Imabari",
      "category": "living",
      "variants": [
        {"id": "blue", "name": "Blue", "color": "#3355aa"}
      ]
    }
  ]
}`

// WriteCatalog writes CatalogJSON to a temp file and returns its path
func WriteCatalog(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "products.json")
	if err := os.WriteFile(path, []byte(CatalogJSON), 0o644); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}
	return path
}

// Endpoint is a fake remote endpoint. Status answers action=status queries,
// a bare GET answers like a probe and submissions are recorded.
type Endpoint struct {
	*httptest.Server

	mu          sync.Mutex
	status      models.ApplicationStatus
	submissions []models.SubmissionPayload
	fail        bool
}

// NewEndpoint starts a fake endpoint that reports no application
func NewEndpoint(t *testing.T) *Endpoint {
	t.Helper()

	e := &Endpoint{status: models.ApplicationStatus{Success: true}}
	e.Server = httptest.NewServer(http.HandlerFunc(e.serve))
	t.Cleanup(e.Close)
	return e
}

// SetStatus replaces the status answer
func (e *Endpoint) SetStatus(s models.ApplicationStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = s
}

// FailSubmissions makes every JSON submission answer with success=false
func (e *Endpoint) FailSubmissions() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fail = true
}

// Submissions returns the payloads received so far
func (e *Endpoint) Submissions() []models.SubmissionPayload {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.SubmissionPayload(nil), e.submissions...)
}

func (e *Endpoint) serve(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if r.Method == http.MethodGet && r.URL.Query().Get("action") == "status" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(e.status)
		return
	}

	if r.Method == http.MethodGet && r.URL.Query().Get("data") == "" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.SubmitEnvelope{Success: true, Message: "ready"})
		return
	}

	payload, ok := decodeSubmission(r)
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if e.fail {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.SubmitEnvelope{Success: false, Error: "sheet locked"})
		return
	}
	e.submissions = append(e.submissions, payload)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.SubmitEnvelope{Success: true, Message: "recorded"})
}

// decodeSubmission accepts the JSON body, the form field and the query parameter
func decodeSubmission(r *http.Request) (models.SubmissionPayload, bool) {
	var p models.SubmissionPayload
	var raw string
	switch {
	case strings.HasPrefix(r.Header.Get("Content-Type"), "application/json"):
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			return p, false
		}
		return p, true
	case r.Method == http.MethodPost:
		if err := r.ParseForm(); err != nil {
			return p, false
		}
		raw = r.PostForm.Get("data")
	default:
		raw = r.URL.Query().Get("data")
	}
	if raw == "" {
		return p, false
	}
	if decoded, err := url.QueryUnescape(raw); err == nil && json.Valid([]byte(decoded)) {
		raw = decoded
	}
	return p, json.Unmarshal([]byte(raw), &p) == nil
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeFormRequest creates a form-encoded HTTP test request
func MakeFormRequest(method, path string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
