// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package selection

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexKsun/celebration/models"
)

func cardByID(t *testing.T, v View, id string) Card {
	t.Helper()
	for _, c := range v.Cards {
		if c.Product.ID == id {
			return c
		}
	}
	t.Fatalf("no card for %q", id)
	return Card{}
}

func TestViewNoSelection(t *testing.T) {
	c := newFixture(t).controller()
	require.NoError(t, c.Start(context.Background()))

	v := c.View()
	assert.Equal(t, "ready", v.State)
	assert.Equal(t, []string{"kitchen", "living"}, v.Categories)
	assert.Equal(t, models.ActionNew, v.Welcome.Mode)
	assert.Nil(t, v.Selection)

	assert.False(t, v.Footer.HasSelection)
	assert.True(t, v.Footer.Disabled)
	assert.Equal(t, NoSelectionText, v.Footer.Label)

	for _, card := range v.Cards {
		assert.False(t, card.Selected)
		assert.False(t, card.Dimmed)
		assert.Equal(t, LabelChoose, card.ButtonLabel)
		assert.Equal(t, card.Product.DefaultVariant, card.ActiveVariant)
	}
}

func TestViewCards(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		status      models.ApplicationStatus
		productID   string
		variantID   string
		wantAction  string
		wantLabel   string
		wantApplied bool
		wantButton  string
		wantChanged bool
		wantAsk     string
	}{
		{
			name:       "new selection",
			productID:  "kettle",
			variantID:  "white",
			wantAction: models.ActionNew,
			wantLabel:  LabelConfirmNew,
			wantButton: LabelSelected,
			wantAsk:    QuestionNew,
		},
		{
			name:        "same as application",
			status:      existingApplication("kettle", "white"),
			productID:   "kettle",
			variantID:   "white",
			wantAction:  models.ActionApplied,
			wantLabel:   LabelApplied,
			wantApplied: true,
			wantButton:  LabelApplied,
			wantAsk:     QuestionNew,
		},
		{
			name:        "variant differs from application",
			status:      existingApplication("kettle", "black"),
			productID:   "kettle",
			variantID:   "white",
			wantAction:  models.ActionChange,
			wantLabel:   LabelConfirmChange,
			wantButton:  LabelSelected,
			wantChanged: true,
			wantAsk:     QuestionChange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.status.status = tt.status
			c := f.controller()
			require.NoError(t, c.Start(ctx))
			require.NoError(t, c.Select(ctx, tt.productID, tt.variantID))

			v := c.View()
			assert.Equal(t, tt.wantChanged, v.IsChanged)
			assert.Equal(t, tt.wantAsk, v.Question)

			selected := cardByID(t, v, "kettle")
			assert.True(t, selected.Selected)
			assert.False(t, selected.Dimmed)
			assert.Equal(t, tt.variantID, selected.ActiveVariant)
			assert.Equal(t, tt.wantApplied, selected.Applied)
			assert.Equal(t, tt.wantButton, selected.ButtonLabel)

			other := cardByID(t, v, "towel")
			assert.False(t, other.Selected)
			assert.True(t, other.Dimmed)
			assert.Equal(t, LabelChoose, other.ButtonLabel)

			assert.True(t, v.Footer.HasSelection)
			assert.Equal(t, "Electric Kettle", v.Footer.ProductName)
			assert.Equal(t, "Balmuda", v.Footer.Brand)
			assert.Equal(t, "White", v.Footer.VariantName)
			assert.Equal(t, "kettle-white.jpg", v.Footer.Image)
			assert.Equal(t, tt.wantAction, v.Footer.Action)
			assert.Equal(t, tt.wantLabel, v.Footer.Label)
			assert.Equal(t, tt.wantAction == models.ActionApplied, v.Footer.Disabled)
		})
	}
}

func TestViewWelcomeChangeMode(t *testing.T) {
	f := newFixture(t)
	f.status.status = existingApplication("kettle", "black")
	c := f.controller()
	require.NoError(t, c.Start(context.Background()))

	v := c.View()
	assert.Equal(t, models.ActionChange, v.Welcome.Mode)
	assert.Equal(t, "Electric Kettle", v.Welcome.CurrentName)
	assert.Equal(t, "Black", v.Welcome.CurrentVariant)
}

func TestViewCompletion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.status.status = existingApplication("kettle", "black")
	c := f.controller()
	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Select(ctx, "towel", ""))
	_, err := c.Confirm(ctx)
	require.NoError(t, err)

	v := c.View()
	require.NotNil(t, v.Completion)
	assert.True(t, v.Completion.IsChange)
	assert.Equal(t, "Bath Towel Set", v.Completion.Product)
	assert.Equal(t, "submitted", v.State)
	assert.Equal(t, models.ActionApplied, v.Footer.Action)
	assert.NotNil(t, v.SavedAt)

	// a new selection clears the completion
	require.NoError(t, c.Select(ctx, "kettle", ""))
	assert.Nil(t, c.View().Completion)
}

func TestRegistry(t *testing.T) {
	created := 0
	r := NewRegistry(func(sessionID, guestID string) *Controller {
		created++
		return New(Deps{GuestID: guestID})
	}, 0)

	a := r.Get("s1", "g1")
	assert.Same(t, a, r.Get("s1", "g1"))
	assert.NotSame(t, a, r.Get("s2", "g1"))
	assert.Equal(t, 2, r.Len())

	r.Drop("s1")
	assert.NotSame(t, a, r.Get("s1", "g1"))
	assert.Equal(t, 3, created)
}

func TestRegistry_DropsIdleControllers(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(func(sessionID, guestID string) *Controller {
		return New(Deps{GuestID: guestID})
	}, time.Hour)
	r.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		r.Get(fmt.Sprintf("s%d", i), "g")
	}
	kept := r.Get("active", "g")
	assert.Equal(t, 101, r.Len())

	now = now.Add(50 * time.Minute)
	assert.Same(t, kept, r.Get("active", "g"))
	assert.Equal(t, 101, r.Len())

	now = now.Add(20 * time.Minute)
	assert.Same(t, kept, r.Get("active", "g"), "a session in use is kept")
	assert.Equal(t, 1, r.Len(), "sessions idle for an hour are gone")
}
