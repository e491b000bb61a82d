// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package selection

import (
	"time"

	"github.com/AlexKsun/celebration/catalog"
	"github.com/AlexKsun/celebration/models"
)

// Button and prompt wording
const (
	LabelChoose        = "Choose this gift"
	LabelSelected      = "Selected"
	LabelApplied       = "Already applied"
	LabelConfirmNew    = "Decide on this gift"
	LabelConfirmChange = "Change to this gift"
	NoSelectionText    = "Please choose a gift"

	QuestionNew    = "Is this the gift you would like?"
	QuestionChange = "Do you want to change your choice?"
)

// Card is one product as the page shows it
type Card struct {
	Product catalog.Product
	// ActiveVariant is the variant highlighted on the card
	ActiveVariant string
	Selected      bool
	Dimmed        bool
	Applied       bool
	ButtonLabel   string
}

// Footer is the decision bar at the bottom of the page
type Footer struct {
	HasSelection bool
	ProductName  string
	Brand        string
	VariantName  string
	Image        string
	Action       string
	Label        string
	Disabled     bool
}

// Welcome switches the greeting when the guest already applied
type Welcome struct {
	Mode           string
	CurrentName    string
	CurrentVariant string
}

// Completion is the message after a successful submission
type Completion struct {
	Title     string
	Product   string
	Variant   string
	IsChange  bool
	Confirmed bool
}

// View is everything needed to render the session
type View struct {
	State      string
	Error      string
	Category   string
	Categories []string
	Cards      []Card
	Footer     Footer
	Welcome    Welcome
	IsChanged  bool
	Selection  *models.Selection
	Question   string
	SavedAt    *time.Time
	Completion *Completion
}

// View renders the controller state into a view model
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		State:    c.state.String(),
		Category: c.category,
		Welcome:  Welcome{Mode: models.ActionNew},
		SavedAt:  c.savedAt,
	}
	if c.startErr != nil {
		v.Error = UserMessage(c.startErr)
	}
	if c.catalog == nil {
		v.Footer = Footer{Label: NoSelectionText, Disabled: true}
		return v
	}

	v.Categories = c.catalog.Categories()
	v.IsChanged = c.isChanged()
	if c.current != nil {
		sel := *c.current
		v.Selection = &sel
	}

	if c.existing != nil {
		v.Welcome = Welcome{
			Mode:           models.ActionChange,
			CurrentName:    c.existing.SelectedItem.Name,
			CurrentVariant: c.existing.SelectedItem.Variant.Name,
		}
	}

	for _, p := range c.catalog.Filter(c.category) {
		v.Cards = append(v.Cards, c.card(p))
	}

	v.Footer = c.footer()
	v.Question = QuestionNew
	if c.existing != nil && v.IsChanged {
		v.Question = QuestionChange
	}

	if c.receipt != nil {
		v.Completion = &Completion{
			Title:     "Thank you for your choice!",
			Product:   c.receipt.Item.Name,
			Variant:   c.receipt.Item.Variant.Name,
			IsChange:  c.receipt.IsChange,
			Confirmed: c.receipt.Confirmed,
		}
		if c.receipt.IsChange {
			v.Completion.Title = "Your choice has been changed!"
		}
	}
	return v
}

// caller holds c.mu
func (c *Controller) card(p catalog.Product) Card {
	card := Card{
		Product:       p,
		ActiveVariant: p.DefaultVariant,
		ButtonLabel:   LabelChoose,
	}
	if c.current == nil {
		return card
	}

	card.Selected = c.current.ProductID == p.ID
	card.Dimmed = !card.Selected
	if !card.Selected {
		return card
	}

	card.ActiveVariant = c.current.VariantID
	card.ButtonLabel = LabelSelected
	if c.existing != nil && c.current.Same(c.existing.SelectedItem.Selection()) {
		card.Applied = true
		card.ButtonLabel = LabelApplied
	}
	return card
}

// caller holds c.mu
func (c *Controller) footer() Footer {
	if c.current == nil {
		return Footer{Label: NoSelectionText, Disabled: true}
	}
	p, variant, ok := c.catalog.Lookup(*c.current)
	if !ok {
		return Footer{Label: NoSelectionText, Disabled: true}
	}

	f := Footer{
		HasSelection: true,
		ProductName:  p.Name,
		Brand:        p.Brand,
		VariantName:  variant.Name,
		Image:        variant.Image(),
	}
	switch {
	case c.existing == nil:
		f.Action, f.Label = models.ActionNew, LabelConfirmNew
	case c.isChanged():
		f.Action, f.Label = models.ActionChange, LabelConfirmChange
	default:
		f.Action, f.Label, f.Disabled = models.ActionApplied, LabelApplied, true
	}
	if c.state == Submitting {
		f.Disabled = true
	}
	return f
}
