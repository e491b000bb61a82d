// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Call-to-action modes for the decision footer
const (
	ActionNew     = "new"
	ActionChange  = "change"
	ActionApplied = "applied"
)

// Category filter value that shows every product
const CategoryAll = "all"

// Domain types

// Selection is the guest's chosen product + variant pair.
type Selection struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
}

// Same reports whether both selections point at the same product and variant.
func (s Selection) Same(o Selection) bool {
	return s.ProductID == o.ProductID && s.VariantID == o.VariantID
}

type SelectedVariant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Image string `json:"image,omitempty"`
}

// SelectedItem is the product snapshot sent to and reported by the remote endpoint.
type SelectedItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Specs       string          `json:"specs,omitempty"`
	Description string          `json:"description,omitempty"`
	Variant     SelectedVariant `json:"variant"`
}

// Selection returns the product/variant pair the item refers to.
func (i SelectedItem) Selection() Selection {
	return Selection{ProductID: i.ID, VariantID: i.Variant.ID}
}

// Application is a previously submitted selection as reported by the endpoint.
type Application struct {
	SelectedItem SelectedItem `json:"selectedItem"`
	Timestamp    string       `json:"timestamp"`
	RowNumber    int          `json:"rowNumber,omitempty"`
}

// ApplicationStatus is the endpoint's answer to an action=status query.
type ApplicationStatus struct {
	Success         bool         `json:"success"`
	HasApplication  bool         `json:"hasApplication"`
	LastApplication *Application `json:"lastApplication"`
}

// Exists reports whether the status describes an existing application.
func (s ApplicationStatus) Exists() bool {
	return s.HasApplication && s.LastApplication != nil
}

// SubmissionPayload is the body delivered by the submission pipeline.
type SubmissionPayload struct {
	SelectedItem      SelectedItem `json:"selectedItem"`
	Timestamp         string       `json:"timestamp"`
	IsChange          bool         `json:"isChange"`
	PreviousSelection *Application `json:"previousSelection"`
	GuestID           string       `json:"guestId,omitempty"`
	IsTest            bool         `json:"isTest,omitempty"`
}

// Compact drops the fields that are not needed to record an application.
// Used when the payload has to travel in a URL.
func (p SubmissionPayload) Compact() SubmissionPayload {
	c := p
	c.SelectedItem.Specs = ""
	c.SelectedItem.Description = ""
	c.SelectedItem.Variant.Image = ""
	c.PreviousSelection = nil
	return c
}

// SubmitEnvelope is the endpoint's JSON answer to a submission.
type SubmitEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Request types

type SelectRequest struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
}

type CategoryRequest struct {
	Category string `json:"category"`
}

type SetEndpointRequest struct {
	URL string `json:"url"`
}

// Response types

type SubmitResponse struct {
	Success   bool   `json:"success"`
	IsChange  bool   `json:"isChange"`
	Confirmed bool   `json:"confirmed"`
	Strategy  string `json:"strategy"`
	Message   string `json:"message"`
}

// CardState is one product card as the API reports it
type CardState struct {
	ProductID     string `json:"productId"`
	Name          string `json:"name"`
	Brand         string `json:"brand"`
	Category      string `json:"category"`
	ActiveVariant string `json:"activeVariant"`
	Selected      bool   `json:"selected"`
	Dimmed        bool   `json:"dimmed"`
	Applied       bool   `json:"applied"`
	ButtonLabel   string `json:"buttonLabel"`
}

// StateResponse is the session's selection state for API clients
type StateResponse struct {
	State          string      `json:"state"`
	Error          string      `json:"error,omitempty"`
	Category       string      `json:"category"`
	Categories     []string    `json:"categories"`
	Selection      *Selection  `json:"selection"`
	HasApplication bool        `json:"hasApplication"`
	IsChanged      bool        `json:"isChanged"`
	Action         string      `json:"action,omitempty"`
	ActionLabel    string      `json:"actionLabel"`
	ActionDisabled bool        `json:"actionDisabled"`
	Question       string      `json:"question,omitempty"`
	SavedAt        *time.Time  `json:"savedAt,omitempty"`
	Cards          []CardState `json:"cards"`
}

type ConfigResponse struct {
	Development      bool              `json:"development"`
	EndpointURL      string            `json:"endpoint_url"`
	EndpointError    string            `json:"endpoint_error,omitempty"`
	EndpointOverride bool              `json:"endpoint_override"`
	ConsoleLog       bool              `json:"console_log"`
	AppVersion       string            `json:"app_version"`
	SchemaVersion    string            `json:"schema_version"`
	Env              map[string]string `json:"env"`
}

type ProbeResponse struct {
	Endpoint   string `json:"endpoint"`
	StatusCode int    `json:"status_code"`
	JSON       bool   `json:"json"`
	Error      string `json:"error,omitempty"`
}

type DiagnoseResponse struct {
	Config      ConfigResponse `json:"config"`
	EnvFile     bool           `json:"env_file"`
	CatalogOK   bool           `json:"catalog_ok"`
	CatalogSize int            `json:"catalog_size"`
	Probe       ProbeResponse  `json:"probe"`
}

type ResetGuestResponse struct {
	GuestID string    `json:"guest_id"`
	Removed int       `json:"removed"`
	ResetAt time.Time `json:"reset_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
