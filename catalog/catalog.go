// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/AlexKsun/celebration/models"
)

// Source formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var ErrMalformed = errors.New("malformed catalog")

type Variant struct {
	ID     string   `json:"id" yaml:"id"`
	Name   string   `json:"name" yaml:"name"`
	Color  string   `json:"color" yaml:"color"`
	Images []string `json:"images" yaml:"images"`
}

// Image returns the first image, or "" when the variant has none
func (v Variant) Image() string {
	if len(v.Images) == 0 {
		return ""
	}
	return v.Images[0]
}

type Product struct {
	ID             string    `json:"id" yaml:"id"`
	Name           string    `json:"name" yaml:"name"`
	Brand          string    `json:"brand" yaml:"brand"`
	Category       string    `json:"category" yaml:"category"`
	Specs          string    `json:"specs" yaml:"specs"`
	Description    string    `json:"description" yaml:"description"`
	ProductURL     string    `json:"productUrl,omitempty" yaml:"productUrl,omitempty"`
	DefaultVariant string    `json:"defaultVariant" yaml:"defaultVariant"`
	Variants       []Variant `json:"variants" yaml:"variants"`
}

// Variant looks up one of the product's variants
func (p *Product) Variant(id string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

type document struct {
	Products []Product `json:"products" yaml:"products"`
}

// Catalog is the immutable product list loaded for a session
type Catalog struct {
	products []Product
	index    map[string]int
}

// Parse decodes a { products: [...] } document
func Parse(data []byte, format string) (*Catalog, error) {
	var doc document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	if doc.Products == nil {
		return nil, fmt.Errorf("%w: missing products", ErrMalformed)
	}
	return New(doc.Products)
}

// New validates and indexes products. A product without a usable default
// variant falls back to its first variant.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, len(products)),
		index:    make(map[string]int, len(products)),
	}
	copy(c.products, products)

	for i := range c.products {
		p := &c.products[i]
		if p.ID == "" {
			return nil, fmt.Errorf("%w: product %d has no id", ErrMalformed, i)
		}
		if _, dup := c.index[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product id %q", ErrMalformed, p.ID)
		}
		if len(p.Variants) == 0 {
			return nil, fmt.Errorf("%w: product %q has no variants", ErrMalformed, p.ID)
		}
		for _, v := range p.Variants {
			if v.ID == "" {
				return nil, fmt.Errorf("%w: product %q has a variant without id", ErrMalformed, p.ID)
			}
		}
		if _, ok := p.Variant(p.DefaultVariant); !ok {
			if p.DefaultVariant != "" {
				slog.Warn("unknown default variant, using first", "product_id", p.ID, "variant_id", p.DefaultVariant)
			}
			p.DefaultVariant = p.Variants[0].ID
		}
		c.index[p.ID] = i
	}

	return c, nil
}

func (c *Catalog) Len() int {
	return len(c.products)
}

// Products returns every product in catalog order
func (c *Catalog) Products() []Product {
	return c.products
}

func (c *Catalog) Product(id string) (*Product, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return &c.products[i], true
}

// Lookup returns the product and variant a selection refers to
func (c *Catalog) Lookup(sel models.Selection) (*Product, *Variant, bool) {
	p, ok := c.Product(sel.ProductID)
	if !ok {
		return nil, nil, false
	}
	v, ok := p.Variant(sel.VariantID)
	if !ok {
		return nil, nil, false
	}
	return p, v, true
}

// Valid reports whether both ids of the selection exist in the catalog
func (c *Catalog) Valid(sel models.Selection) bool {
	_, _, ok := c.Lookup(sel)
	return ok
}

// Resolve builds a selection, substituting the product's default variant
// when variantID is empty.
func (c *Catalog) Resolve(productID, variantID string) (models.Selection, bool) {
	p, ok := c.Product(productID)
	if !ok {
		return models.Selection{}, false
	}
	if variantID == "" {
		variantID = p.DefaultVariant
	}
	sel := models.Selection{ProductID: productID, VariantID: variantID}
	return sel, c.Valid(sel)
}

// Item snapshots the selected product/variant for storage and submission
func (c *Catalog) Item(sel models.Selection) (models.SelectedItem, bool) {
	p, v, ok := c.Lookup(sel)
	if !ok {
		return models.SelectedItem{}, false
	}
	return models.SelectedItem{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Category:    p.Category,
		Specs:       p.Specs,
		Description: p.Description,
		Variant: models.SelectedVariant{
			ID:    v.ID,
			Name:  v.Name,
			Color: v.Color,
			Image: v.Image(),
		},
	}, true
}

// Filter returns the products of one category, or all of them for CategoryAll
func (c *Catalog) Filter(category string) []Product {
	if category == "" || category == models.CategoryAll {
		return c.products
	}
	var out []Product
	for _, p := range c.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Categories lists distinct categories, sorted
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range c.products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out
}
