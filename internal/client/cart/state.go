// Package cart is the client-side source of truth for cart contents.
//
// Every mutation is a server round trip followed by a full reload; the
// cart never commits quantities on its own. Item count and subtotal are
// derived from the items inside Reduce and cannot drift from them.
package cart

import (
	"github.com/dmitrijs2005/campusshop/internal/client/models"
	"github.com/shopspring/decimal"
)

// State is a snapshot of the cart. Items is never modified in place.
type State struct {
	Items     []models.CartItem
	ItemCount int
	Subtotal  decimal.Decimal
	Loading   bool
	Err       string
}

// Event is a cart transition. The set is closed.
type Event interface {
	cartEvent()
}

type (
	LoadStarted struct{}
	// Loaded replaces the items wholesale with server truth.
	Loaded struct{ Items []models.CartItem }
	// ItemRemoved drops a line the server has confirmed removed.
	ItemRemoved struct{ ID int64 }
	// Failed records an operation failure; items are kept.
	Failed struct{ Message string }
	// Reset empties the cart (logout, clear).
	Reset struct{}
)

func (LoadStarted) cartEvent() {}
func (Loaded) cartEvent()      {}
func (ItemRemoved) cartEvent() {}
func (Failed) cartEvent()      {}
func (Reset) cartEvent()       {}

// Reduce returns the state that follows s after e.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case LoadStarted:
		s.Loading = true
		return s

	case Loaded:
		return withItems(State{}, ev.Items)

	case ItemRemoved:
		kept := make([]models.CartItem, 0, len(s.Items))
		for _, it := range s.Items {
			if it.ID != ev.ID {
				kept = append(kept, it)
			}
		}
		return withItems(State{Loading: s.Loading}, kept)

	case Failed:
		s.Loading = false
		s.Err = ev.Message
		return s

	case Reset:
		return withItems(State{}, nil)
	}
	return s
}

// withItems sets items together with their derived totals.
func withItems(s State, items []models.CartItem) State {
	s.Items = items
	s.ItemCount = 0
	s.Subtotal = decimal.Zero
	for _, it := range items {
		s.ItemCount += it.Quantity
		s.Subtotal = s.Subtotal.Add(it.LineTotal())
	}
	return s
}

// Find returns the line holding productID with variantID.
func (s State) Find(productID int64, variantID *int64) (models.CartItem, bool) {
	for _, it := range s.Items {
		if it.Matches(productID, variantID) {
			return it, true
		}
	}
	return models.CartItem{}, false
}

func (s State) Empty() bool {
	return len(s.Items) == 0
}
