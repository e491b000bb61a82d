// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AlexKsun/celebration/catalog"
	"github.com/AlexKsun/celebration/envconfig"
	"github.com/AlexKsun/celebration/models"
	"github.com/AlexKsun/celebration/remote"
	"github.com/AlexKsun/celebration/storage"
)

// State of a session's controller
type State int

const (
	Uninitialized State = iota
	StatusChecking
	CatalogLoading
	Ready
	Submitting
	Submitted
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case StatusChecking:
		return "status_checking"
	case CatalogLoading:
		return "catalog_loading"
	case Ready:
		return "ready"
	case Submitting:
		return "submitting"
	case Submitted:
		return "submitted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrNotReady           = errors.New("session not ready")
	ErrBusy               = errors.New("submission in progress")
	ErrNoSelection        = errors.New("no selection")
	ErrUnknownSelection   = errors.New("selection not in catalog")
	ErrNotConfigured      = errors.New("submission endpoint not configured")
	ErrSubmissionFailed   = errors.New("submission failed")
)

// UserMessage turns a controller error into text a guest can read
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCatalogUnavailable):
		return "The gift list could not be loaded. Please try again later."
	case errors.Is(err, ErrNotReady):
		return "The gift list is still loading."
	case errors.Is(err, ErrBusy):
		return "Your choice is being sent. Please wait a moment."
	case errors.Is(err, ErrNoSelection):
		return "Please choose a gift first."
	case errors.Is(err, ErrUnknownSelection):
		return "That gift is not in the list."
	case errors.Is(err, ErrNotConfigured):
		return "Choices cannot be sent yet. Please contact the couple."
	default:
		return "Sending your choice failed. Please try again."
	}
}

// StatusChecker reports an existing application; failures read as none
type StatusChecker interface {
	CheckStatus(ctx context.Context, guestID string) models.ApplicationStatus
}

type CatalogSource interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
}

type Submitter interface {
	Submit(ctx context.Context, payload models.SubmissionPayload) (remote.Result, error)
}

// Store is the persisted selection state
type Store interface {
	Save(ctx context.Context, sel models.Selection, snapshot models.SelectedItem) error
	MarkSubmitted(ctx context.Context, sel models.Selection, snapshot models.SelectedItem) error
	Load(ctx context.Context) *storage.Record
	SavePrevious(ctx context.Context, app models.Application) error
}

type Deps struct {
	GuestID   string
	Status    StatusChecker
	Catalog   CatalogSource
	Submitter Submitter
	Store     Store
	Logger    *slog.Logger
	Now       func() time.Time
}

// Receipt describes a successful submission
type Receipt struct {
	Selection models.Selection
	Item      models.SelectedItem
	IsChange  bool
	Confirmed bool
	Strategy  string
}

// Controller owns one browser session's selection state
type Controller struct {
	mu   sync.Mutex
	deps Deps
	log  *slog.Logger

	state    State
	startErr error
	catalog  *catalog.Catalog
	current  *models.Selection
	existing *models.Application
	category string
	savedAt  *time.Time
	receipt  *Receipt
}

func New(deps Deps) *Controller {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Controller{
		deps:     deps,
		log:      deps.Logger.With("guest_id", deps.GuestID),
		category: models.CategoryAll,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start checks the remote status, then loads the catalog, then picks the
// initial selection. A status failure is ignored; a catalog failure fails
// the session for good.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Uninitialized || c.startErr != nil {
		return c.startErr
	}

	c.state = StatusChecking
	status := c.deps.Status.CheckStatus(ctx, c.deps.GuestID)
	if status.Exists() {
		app := *status.LastApplication
		c.existing = &app
		if err := c.deps.Store.SavePrevious(ctx, app); err != nil {
			c.log.Warn("previous selection not cached", "error", err)
		}
	}

	c.state = CatalogLoading
	cat, err := c.deps.Catalog.Load(ctx)
	if err != nil {
		c.log.Error("catalog load failed", "error", err)
		c.startErr = ErrCatalogUnavailable
		return c.startErr
	}
	c.catalog = cat

	c.restore(ctx)
	c.state = Ready
	c.log.Info("session ready",
		"products", cat.Len(),
		"has_application", c.existing != nil,
		"has_selection", c.current != nil,
	)
	return nil
}

// restore picks the initial selection: remote application first, then the
// persisted record. Selections the catalog does not know are dropped.
func (c *Controller) restore(ctx context.Context) {
	if c.existing != nil {
		sel := c.existing.SelectedItem.Selection()
		if c.catalog.Valid(sel) {
			c.current = &sel
		} else {
			c.log.Warn("discarding application not in catalog", "product_id", sel.ProductID, "variant_id", sel.VariantID)
		}
		return
	}

	rec := c.deps.Store.Load(ctx)
	if rec == nil {
		return
	}
	if !c.catalog.Valid(rec.Selection) {
		c.log.Warn("discarding stored selection not in catalog",
			"product_id", rec.Selection.ProductID,
			"variant_id", rec.Selection.VariantID,
		)
		return
	}

	sel := rec.Selection
	c.current = &sel
	savedAt := rec.SavedAt
	c.savedAt = &savedAt

	// the endpoint said nothing, but this browser already submitted
	if rec.IsSubmitted {
		item, _ := c.catalog.Item(sel)
		app := models.Application{SelectedItem: item}
		if rec.SubmittedAt != nil {
			app.Timestamp = rec.SubmittedAt.Format(time.RFC3339)
		}
		c.existing = &app
	}
}

// Select makes productID/variantID the current selection and persists it.
// An empty variantID picks the product's default variant.
func (c *Controller) Select(ctx context.Context, productID, variantID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.interactive(); err != nil {
		return err
	}

	sel, ok := c.catalog.Resolve(productID, variantID)
	if !ok {
		return ErrUnknownSelection
	}
	c.current = &sel
	c.state = Ready
	c.receipt = nil

	item, _ := c.catalog.Item(sel)
	if err := c.deps.Store.Save(ctx, sel, item); err != nil {
		c.log.Warn("selection not persisted", "error", err)
		return nil
	}
	now := c.deps.Now()
	c.savedAt = &now
	return nil
}

// SetCategory filters the cards; unknown categories show everything
func (c *Controller) SetCategory(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.category = models.CategoryAll
	if c.catalog == nil {
		return
	}
	for _, known := range c.catalog.Categories() {
		if known == category {
			c.category = category
			return
		}
	}
}

// Confirm submits the current selection. On failure the controller returns
// to Ready with the selection untouched. Submitting an unchanged selection
// again is allowed and sends another application.
func (c *Controller) Confirm(ctx context.Context) (Receipt, error) {
	c.mu.Lock()
	if err := c.interactive(); err != nil {
		c.mu.Unlock()
		return Receipt{}, err
	}
	if c.current == nil {
		c.mu.Unlock()
		return Receipt{}, ErrNoSelection
	}

	sel := *c.current
	item, _ := c.catalog.Item(sel)
	isChange := c.existing != nil
	payload := models.SubmissionPayload{
		SelectedItem: item,
		Timestamp:    c.deps.Now().UTC().Format(time.RFC3339),
		IsChange:     isChange,
		GuestID:      c.deps.GuestID,
	}
	if isChange {
		prev := *c.existing
		payload.PreviousSelection = &prev
	}
	c.state = Submitting
	c.mu.Unlock()

	result, err := c.deps.Submitter.Submit(ctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.state = Ready
		c.log.Error("submission failed", "product_id", sel.ProductID, "variant_id", sel.VariantID, "error", err)
		if errors.Is(err, envconfig.ErrEndpointNotConfigured) {
			return Receipt{}, ErrNotConfigured
		}
		return Receipt{}, ErrSubmissionFailed
	}

	if err := c.deps.Store.MarkSubmitted(ctx, sel, item); err != nil {
		c.log.Warn("submission not persisted", "error", err)
	} else {
		now := c.deps.Now()
		c.savedAt = &now
	}

	c.existing = &models.Application{SelectedItem: item, Timestamp: payload.Timestamp}
	c.state = Submitted
	c.receipt = &Receipt{
		Selection: sel,
		Item:      item,
		IsChange:  isChange,
		Confirmed: result.Confirmed,
		Strategy:  result.Strategy,
	}
	c.log.Info("selection submitted",
		"product_id", sel.ProductID,
		"variant_id", sel.VariantID,
		"is_change", isChange,
		"strategy", result.Strategy,
		"confirmed", result.Confirmed,
	)
	return *c.receipt, nil
}

// IsChanged reports whether the current selection differs from the known
// existing application
func (c *Controller) IsChanged() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isChanged()
}

func (c *Controller) isChanged() bool {
	if c.existing == nil || c.current == nil {
		return false
	}
	return !c.current.Same(c.existing.SelectedItem.Selection())
}

// Current returns a copy of the current selection, or nil
func (c *Controller) Current() *models.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	sel := *c.current
	return &sel
}

// caller holds c.mu
func (c *Controller) interactive() error {
	switch c.state {
	case Ready, Submitted:
		return nil
	case Submitting:
		return ErrBusy
	default:
		if c.startErr != nil {
			return c.startErr
		}
		return ErrNotReady
	}
}
