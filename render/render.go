// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/microcosm-cc/bluemonday"

	"github.com/AlexKsun/celebration/catalog"
	"github.com/AlexKsun/celebration/selection"
)

//go:embed templates/*.html templates/*.svg
var templateFS embed.FS

// CatalogPage is the data behind the gift list page
type CatalogPage struct {
	View        selection.View
	Flash       string
	Development bool
	AppVersion  string
}

// LoginPage is the data behind the password page
type LoginPage struct {
	Failed bool
}

// Placeholder describes the image drawn for variants without a photo
type Placeholder struct {
	Product string
	Variant string
	Color   string
}

// Pages renders the HTML pages
type Pages struct {
	tmpl   *template.Template
	policy *bluemonday.Policy
	now    func() time.Time
}

func New() (*Pages, error) {
	p := &Pages{
		policy: bluemonday.UGCPolicy(),
		now:    time.Now,
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"description": p.description,
		"ago":         p.ago,
		"image":       variantImage,
		"variantName": variantName,
	}).ParseFS(templateFS, "templates/*.html", "templates/*.svg")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	p.tmpl = tmpl
	return p, nil
}

func (p *Pages) Catalog(w io.Writer, data CatalogPage) error {
	return p.tmpl.ExecuteTemplate(w, "catalog.html", data)
}

func (p *Pages) Login(w io.Writer, data LoginPage) error {
	return p.tmpl.ExecuteTemplate(w, "login.html", data)
}

func (p *Pages) Placeholder(w io.Writer, data Placeholder) error {
	if data.Color == "" {
		data.Color = "#8b5a6b"
	}
	return p.tmpl.ExecuteTemplate(w, "placeholder.svg", data)
}

// Catalog descriptions may carry simple markup; anything else is stripped
func (p *Pages) description(s string) template.HTML {
	return template.HTML(p.policy.Sanitize(s))
}

func (p *Pages) ago(t *time.Time) string {
	if t == nil {
		return ""
	}
	return humanize.RelTime(*t, p.now(), "ago", "from now")
}

// variantImage returns the variant's first image or a generated placeholder
func variantImage(product catalog.Product, variantID string) string {
	v, ok := product.Variant(variantID)
	if !ok {
		return ""
	}
	if img := v.Image(); img != "" {
		return img
	}
	q := url.Values{"product": {product.Name}, "variant": {v.Name}, "color": {v.Color}}
	return "/placeholder.svg?" + q.Encode()
}

func variantName(product catalog.Product, variantID string) string {
	if v, ok := product.Variant(variantID); ok {
		return v.Name
	}
	return ""
}
