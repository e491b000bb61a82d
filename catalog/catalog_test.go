// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexKsun/celebration/models"
)

const sampleJSON = `{
  "products": [
    {
      "id": "kettle", "name": "The Pot", "brand": "BALMUDA", "category": "kitchen",
      "specs": "0.6 L", "description": "<p>Slim spout</p>",
      "defaultVariant": "black",
      "variants": [
        {"id": "black", "name": "Black", "color": "#000", "images": ["/img/black.jpg", "/img/black-2.jpg"]},
        {"id": "white", "name": "White", "color": "#fff", "images": []}
      ]
    },
    {
      "id": "towel", "name": "Towels", "brand": "Imabari", "category": "living",
      "defaultVariant": "missing",
      "variants": [{"id": "blue", "name": "Blue", "color": "#00f"}]
    },
    {
      "id": "pan", "name": "Pan", "brand": "Staub", "category": "kitchen",
      "variants": [{"id": "red", "name": "Red", "color": "#f00"}]
    }
  ]
}`

const sampleYAML = `
products:
  - id: pillow
    name: Pillow
    brand: TEMPUR
    category: bedroom
    defaultVariant: m
    variants:
      - id: s
        name: Small
      - id: m
        name: Medium
        images: [/img/m.jpg]
`

func sample(t *testing.T) *Catalog {
	t.Helper()
	c, err := Parse([]byte(sampleJSON), FormatJSON)
	require.NoError(t, err)
	return c
}

func TestParse_JSON(t *testing.T) {
	c := sample(t)
	assert.Equal(t, 3, c.Len())

	ids := make([]string, 0, c.Len())
	for _, p := range c.Products() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"kettle", "towel", "pan"}, ids, "catalog order is kept")

	p, ok := c.Product("kettle")
	require.True(t, ok)
	assert.Equal(t, "black", p.DefaultVariant)

	v, ok := p.Variant("black")
	require.True(t, ok)
	assert.Equal(t, "/img/black.jpg", v.Image())

	v, _ = p.Variant("white")
	assert.Empty(t, v.Image())
}

func TestParse_DefaultVariantFallback(t *testing.T) {
	c := sample(t)

	towel, _ := c.Product("towel")
	assert.Equal(t, "blue", towel.DefaultVariant, "unknown default falls back to the first variant")

	pan, _ := c.Product("pan")
	assert.Equal(t, "red", pan.DefaultVariant, "missing default falls back to the first variant")
}

func TestParse_YAML(t *testing.T) {
	c, err := Parse([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)

	p, ok := c.Product("pillow")
	require.True(t, ok)
	assert.Equal(t, "m", p.DefaultVariant)
	v, _ := p.Variant("m")
	assert.Equal(t, "/img/m.jpg", v.Image())
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
	}{
		{"invalid json", `{"products": [`, FormatJSON},
		{"invalid yaml", "products: [\n  - id: x\n   bad", FormatYAML},
		{"missing products", `{"items": []}`, FormatJSON},
		{"product without id", `{"products": [{"name": "x", "variants": [{"id": "a"}]}]}`, FormatJSON},
		{"duplicate id", `{"products": [{"id": "x", "variants": [{"id": "a"}]}, {"id": "x", "variants": [{"id": "a"}]}]}`, FormatJSON},
		{"no variants", `{"products": [{"id": "x", "variants": []}]}`, FormatJSON},
		{"variant without id", `{"products": [{"id": "x", "variants": [{"name": "a"}]}]}`, FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestParse_EmptyCatalog(t *testing.T) {
	c, err := Parse([]byte(`{"products": []}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Categories())
}

func TestResolve(t *testing.T) {
	c := sample(t)

	sel, ok := c.Resolve("kettle", "")
	assert.True(t, ok)
	assert.Equal(t, models.Selection{ProductID: "kettle", VariantID: "black"}, sel)

	sel, ok = c.Resolve("kettle", "white")
	assert.True(t, ok)
	assert.Equal(t, "white", sel.VariantID)

	_, ok = c.Resolve("kettle", "purple")
	assert.False(t, ok)

	_, ok = c.Resolve("sofa", "")
	assert.False(t, ok)
}

func TestItem(t *testing.T) {
	c := sample(t)

	item, ok := c.Item(models.Selection{ProductID: "kettle", VariantID: "black"})
	require.True(t, ok)
	assert.Equal(t, models.SelectedItem{
		ID:          "kettle",
		Name:        "The Pot",
		Brand:       "BALMUDA",
		Category:    "kitchen",
		Specs:       "0.6 L",
		Description: "<p>Slim spout</p>",
		Variant:     models.SelectedVariant{ID: "black", Name: "Black", Color: "#000", Image: "/img/black.jpg"},
	}, item)
	assert.Equal(t, models.Selection{ProductID: "kettle", VariantID: "black"}, item.Selection())

	_, ok = c.Item(models.Selection{ProductID: "kettle", VariantID: "nope"})
	assert.False(t, ok)
	assert.False(t, c.Valid(models.Selection{ProductID: "nope", VariantID: "black"}))
}

func TestFilterAndCategories(t *testing.T) {
	c := sample(t)

	assert.Equal(t, []string{"kitchen", "living"}, c.Categories())
	assert.Len(t, c.Filter(models.CategoryAll), 3)
	assert.Len(t, c.Filter(""), 3)

	kitchen := c.Filter("kitchen")
	require.Len(t, kitchen, 2)
	assert.Equal(t, "kettle", kitchen[0].ID)
	assert.Equal(t, "pan", kitchen[1].ID)

	assert.Empty(t, c.Filter("garden"))
}

func TestLoader_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	l := NewLoader(path, nil)
	assert.Equal(t, path, l.Source())

	c, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	// the loaded catalog is kept even when the file goes away
	require.NoError(t, os.Remove(path))
	again, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, c, again)
}

func TestLoader_MissingFile(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "absent.json"), nil)
	_, err := l.Load(context.Background())
	assert.Error(t, err)
}

func TestLoader_URLRetriesAfterFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleJSON))
	}))
	defer srv.Close()

	l := NewLoader(srv.URL+"/products.json", srv.Client())

	_, err := l.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")

	c, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	_, err = l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "a successful load is cached")
}

func TestLoader_SharedLoadOutlivesCaller(t *testing.T) {
	arrived := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(arrived) })
		<-release
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleJSON))
	}))
	defer srv.Close()

	l := NewLoader(srv.URL+"/products.json", srv.Client())

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := l.Load(ctx)
		firstErr <- err
	}()
	<-arrived

	type result struct {
		c   *Catalog
		err error
	}
	second := make(chan result, 1)
	go func() {
		c, err := l.Load(context.Background())
		second <- result{c, err}
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)
	close(release)

	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, 3, res.c.Len())

	c, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, res.c, c)
}

func TestLoader_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	l := NewLoader(srv.URL+"/products.json", srv.Client())
	l.timeout = 50 * time.Millisecond

	_, err := l.Load(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatYAML, formatOf("catalog.yml"))
	assert.Equal(t, FormatYAML, formatOf("https://cdn.example/products.YAML?v=2"))
	assert.Equal(t, FormatJSON, formatOf("data/products.json"))
	assert.Equal(t, FormatJSON, formatOf("https://cdn.example/products"))
}
