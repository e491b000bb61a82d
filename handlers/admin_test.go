// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AlexKsun/celebration/auth"
	"github.com/AlexKsun/celebration/envconfig"
	"github.com/AlexKsun/celebration/models"
	"github.com/AlexKsun/celebration/testutil"
)

func (s *testServer) admin(method, path string, body interface{}) *httptest.ResponseRecorder {
	req := testutil.MakeRequest(method, path, body, testutil.AdminHeaders(s.cfg))
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	return w
}

func TestAdmin_RequiresKey(t *testing.T) {
	s := newTestServer(t)

	testCases := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-Admin-Key": auth.GenerateAdminKey(auth.AdminScope, "other-salt")}, http.StatusForbidden},
		{"valid key", testutil.AdminHeaders(s.cfg), http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/admin/config", nil, tc.headers)
			w := httptest.NewRecorder()
			s.mux.ServeHTTP(w, req)
			testutil.AssertStatus(t, w, tc.want)
		})
	}
}

func TestGetConfig_MasksPassword(t *testing.T) {
	s := newTestServer(t)

	w := s.admin("GET", "/admin/config", nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	var cfg models.ConfigResponse
	testutil.AssertJSON(t, w, &cfg)
	if cfg.EndpointURL != s.endpoint.URL {
		t.Errorf("Expected endpoint %q, got %q", s.endpoint.URL, cfg.EndpointURL)
	}
	if pw := cfg.Env[envconfig.KeyAuthPassword]; pw == testutil.TestPassword || pw == "" {
		t.Errorf("Expected masked password, got %q", pw)
	}
	if cfg.EndpointOverride {
		t.Error("Expected no override")
	}
}

func TestEndpointOverride(t *testing.T) {
	s := newTestServer(t)

	w := s.admin("PUT", "/admin/endpoint", models.SetEndpointRequest{URL: "http://example.com/exec"})
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = s.admin("PUT", "/admin/endpoint", models.SetEndpointRequest{})
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	override := envconfig.EndpointPrefix + "macros/s/abc123/exec"
	w = s.admin("PUT", "/admin/endpoint", models.SetEndpointRequest{URL: override})
	testutil.AssertStatus(t, w, http.StatusOK)

	var cfg models.ConfigResponse
	testutil.AssertJSON(t, w, &cfg)
	if !cfg.EndpointOverride || cfg.EndpointURL != override {
		t.Errorf("Expected override %q, got %+v", override, cfg)
	}
	if got, _ := s.resolver.EndpointURL(); got != override {
		t.Errorf("Expected resolver to use the override, got %q", got)
	}

	w = s.admin("DELETE", "/admin/endpoint", nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	cfg = models.ConfigResponse{}
	testutil.AssertJSON(t, w, &cfg)
	if cfg.EndpointOverride || cfg.EndpointURL != s.endpoint.URL {
		t.Errorf("Expected build endpoint after clearing, got %+v", cfg)
	}
}

func TestDiagnose(t *testing.T) {
	s := newTestServer(t)

	w := s.admin("POST", "/admin/diagnose", nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	var report models.DiagnoseResponse
	testutil.AssertJSON(t, w, &report)
	if !report.CatalogOK || report.CatalogSize != 2 {
		t.Errorf("Expected catalog with 2 products, got ok=%v size=%d", report.CatalogOK, report.CatalogSize)
	}
	if report.Probe.Error != "" || report.Probe.StatusCode != http.StatusOK || !report.Probe.JSON {
		t.Errorf("Expected healthy probe, got %+v", report.Probe)
	}
	if report.EnvFile {
		t.Error("Expected no env file outside development")
	}
}

func TestResetGuest(t *testing.T) {
	s := newTestServer(t)

	w := s.admin("POST", "/admin/guests/not-a-uuid/reset", nil)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	b := s.browser(t)
	b.login()
	w = b.postJSON("/api/selection", models.SelectRequest{ProductID: "kettle", VariantID: "black"})
	testutil.AssertStatus(t, w, http.StatusOK)

	w = s.admin("POST", "/admin/guests/"+b.guestID()+"/reset", nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ResetGuestResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.GuestID != b.guestID() || resp.Removed == 0 {
		t.Errorf("Expected stored keys removed, got %+v", resp)
	}

	// the guest starts over: password again, no selection after login
	w = b.get("/api/state")
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
	if s.registry.Len() != 0 {
		t.Errorf("Expected the guest's controller dropped, got %d", s.registry.Len())
	}

	b.login()
	w = b.get("/api/state")
	testutil.AssertStatus(t, w, http.StatusOK)
	var state models.StateResponse
	testutil.AssertJSON(t, w, &state)
	if state.Selection != nil {
		t.Errorf("Expected no selection after reset, got %+v", state.Selection)
	}
}
