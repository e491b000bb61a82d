// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/AlexKsun/celebration/middleware"
	"github.com/AlexKsun/celebration/models"
	"github.com/AlexKsun/celebration/render"
	"github.com/AlexKsun/celebration/selection"
	"github.com/AlexKsun/celebration/version"
)

// flash codes carried through redirects
var flashErrors = map[string]error{
	"catalog":        selection.ErrCatalogUnavailable,
	"not_ready":      selection.ErrNotReady,
	"busy":           selection.ErrBusy,
	"no_selection":   selection.ErrNoSelection,
	"unknown":        selection.ErrUnknownSelection,
	"not_configured": selection.ErrNotConfigured,
	"failed":         selection.ErrSubmissionFailed,
}

func flashCode(err error) string {
	for code, known := range flashErrors {
		if errors.Is(err, known) {
			return code
		}
	}
	return "failed"
}

// CatalogHandler serves the gift catalog to guests
type CatalogHandler struct {
	registry    *selection.Registry
	pages       *render.Pages
	development bool
}

func NewCatalogHandler(registry *selection.Registry, pages *render.Pages, development bool) *CatalogHandler {
	return &CatalogHandler{registry: registry, pages: pages, development: development}
}

// controller returns the session's started controller. A start error stays
// in the returned controller's view; the registry forgets it so a reload
// starts over.
func (h *CatalogHandler) controller(r *http.Request) *selection.Controller {
	guest := middleware.GuestFrom(r)
	c := h.registry.Get(guest.SessionID, guest.ID)
	if err := c.Start(r.Context()); err != nil {
		slog.Warn("session start failed", "guest_id", guest.ID, "error", err)
		h.registry.Drop(guest.SessionID)
	}
	return c
}

// Page handles GET /
func (h *CatalogHandler) Page(w http.ResponseWriter, r *http.Request) {
	c := h.controller(r)
	if category := r.URL.Query().Get("category"); category != "" {
		c.SetCategory(category)
	}

	data := render.CatalogPage{
		View:        c.View(),
		Development: h.development,
		AppVersion:  version.Current,
	}
	if err, ok := flashErrors[r.URL.Query().Get("flash")]; ok {
		data.Flash = selection.UserMessage(err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.pages.Catalog(w, data); err != nil {
		slog.Error("failed to render catalog", "error", err)
	}
}

// Select handles POST /select (form: productId, variantId, category)
func (h *CatalogHandler) Select(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	c := h.controller(r)
	err := c.Select(r.Context(), r.PostForm.Get("productId"), r.PostForm.Get("variantId"))
	h.redirect(w, r, err)
}

// Submit handles POST /submit
func (h *CatalogHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	c := h.controller(r)
	_, err := c.Confirm(r.Context())
	h.redirect(w, r, err)
}

// Placeholder handles GET /placeholder.svg, drawn for variants without images
func (h *CatalogHandler) Placeholder(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	err := h.pages.Placeholder(w, render.Placeholder{
		Product: q.Get("product"),
		Variant: q.Get("variant"),
		Color:   q.Get("color"),
	})
	if err != nil {
		slog.Error("failed to render placeholder", "error", err)
	}
}

// redirect back to the page, keeping the category and carrying err as a flash
func (h *CatalogHandler) redirect(w http.ResponseWriter, r *http.Request, err error) {
	q := url.Values{}
	if category := r.PostForm.Get("category"); category != "" {
		q.Set("category", category)
	}
	if err != nil {
		q.Set("flash", flashCode(err))
	}

	target := "/"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// State handles GET /api/state
func (h *CatalogHandler) State(w http.ResponseWriter, r *http.Request) {
	c := h.controller(r)
	middleware.JSONResponse(w, http.StatusOK, stateResponse(c.View()))
}

// APISelect handles POST /api/selection
func (h *CatalogHandler) APISelect(w http.ResponseWriter, r *http.Request) {
	var req models.SelectRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ProductID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "productId is required")
		return
	}

	c := h.controller(r)
	if err := c.Select(r.Context(), req.ProductID, req.VariantID); err != nil {
		h.apiError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, stateResponse(c.View()))
}

// APICategory handles POST /api/category
func (h *CatalogHandler) APICategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	c := h.controller(r)
	c.SetCategory(req.Category)
	middleware.JSONResponse(w, http.StatusOK, stateResponse(c.View()))
}

// APISubmit handles POST /api/submit
func (h *CatalogHandler) APISubmit(w http.ResponseWriter, r *http.Request) {
	c := h.controller(r)
	receipt, err := c.Confirm(r.Context())
	if err != nil {
		h.apiError(w, err)
		return
	}

	message := "Selection received"
	if receipt.IsChange {
		message = "Selection changed"
	}
	middleware.JSONResponse(w, http.StatusOK, models.SubmitResponse{
		Success:   true,
		IsChange:  receipt.IsChange,
		Confirmed: receipt.Confirmed,
		Strategy:  receipt.Strategy,
		Message:   message,
	})
}

func (h *CatalogHandler) apiError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, selection.ErrUnknownSelection), errors.Is(err, selection.ErrNoSelection):
		status = http.StatusBadRequest
	case errors.Is(err, selection.ErrBusy):
		status = http.StatusConflict
	case errors.Is(err, selection.ErrNotReady), errors.Is(err, selection.ErrCatalogUnavailable),
		errors.Is(err, selection.ErrNotConfigured):
		status = http.StatusServiceUnavailable
	case errors.Is(err, selection.ErrSubmissionFailed):
		status = http.StatusBadGateway
	}
	middleware.ErrorResponse(w, status, selection.UserMessage(err))
}

func stateResponse(v selection.View) models.StateResponse {
	out := models.StateResponse{
		State:          v.State,
		Error:          v.Error,
		Category:       v.Category,
		Categories:     v.Categories,
		Selection:      v.Selection,
		HasApplication: v.Welcome.Mode == models.ActionChange,
		IsChanged:      v.IsChanged,
		Action:         v.Footer.Action,
		ActionLabel:    v.Footer.Label,
		ActionDisabled: v.Footer.Disabled,
		Question:       v.Question,
		SavedAt:        v.SavedAt,
		Cards:          make([]models.CardState, 0, len(v.Cards)),
	}
	for _, c := range v.Cards {
		out.Cards = append(out.Cards, models.CardState{
			ProductID:     c.Product.ID,
			Name:          c.Product.Name,
			Brand:         c.Product.Brand,
			Category:      c.Product.Category,
			ActiveVariant: c.ActiveVariant,
			Selected:      c.Selected,
			Dimmed:        c.Dimmed,
			Applied:       c.Applied,
			ButtonLabel:   c.ButtonLabel,
		})
	}
	return out
}
