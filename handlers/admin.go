// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AlexKsun/celebration/admin"
	"github.com/AlexKsun/celebration/envconfig"
	"github.com/AlexKsun/celebration/middleware"
	"github.com/AlexKsun/celebration/models"
)

// AdminHandler exposes the operator console. Every route sits behind
// middleware.RequireAdmin.
type AdminHandler struct {
	console *admin.Console
	guests  *middleware.Guests
}

func NewAdminHandler(console *admin.Console, guests *middleware.Guests) *AdminHandler {
	return &AdminHandler{console: console, guests: guests}
}

// GetConfig handles GET /admin/config
func (h *AdminHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.console.Config())
}

// SetEndpoint handles PUT /admin/endpoint
func (h *AdminHandler) SetEndpoint(w http.ResponseWriter, r *http.Request) {
	var req models.SetEndpointRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.URL == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "url is required")
		return
	}

	cfg, err := h.console.SetEndpoint(r.Context(), req.URL)
	if errors.Is(err, envconfig.ErrInvalidEndpoint) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "url must start with "+envconfig.EndpointPrefix)
		return
	}
	if err != nil {
		slog.Error("failed to set endpoint", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store endpoint")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, cfg)
}

// ClearEndpoint handles DELETE /admin/endpoint
func (h *AdminHandler) ClearEndpoint(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.console.ClearEndpoint(r.Context())
	if err != nil {
		slog.Error("failed to clear endpoint", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to clear endpoint")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, cfg)
}

// Diagnose handles POST /admin/diagnose (?post=true sends a test submission)
func (h *AdminHandler) Diagnose(w http.ResponseWriter, r *http.Request) {
	post := r.URL.Query().Get("post") == "true"
	middleware.JSONResponse(w, http.StatusOK, h.console.Diagnose(r.Context(), post))
}

// ResetGuest handles POST /admin/guests/{id}/reset
func (h *AdminHandler) ResetGuest(w http.ResponseWriter, r *http.Request) {
	guestID := r.PathValue("id")

	resp, err := h.console.ResetGuest(r.Context(), h.guests.Durable(guestID), guestID)
	if errors.Is(err, admin.ErrInvalidGuest) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid guest ID")
		return
	}
	if err != nil {
		slog.Error("failed to reset guest", "guest_id", guestID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset guest")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}
