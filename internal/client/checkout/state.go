// Package checkout drives order placement and the return from the payment
// gateway.
//
//	collecting -> submitting -> redirecting | placed
//	(gateway) -> verifying -> succeeded | failed | cancelled
//
// Navigation targets are returned as values; the caller decides how to
// follow them.
package checkout

import (
	"github.com/dmitrijs2005/campusshop/internal/client/models"
	"github.com/shopspring/decimal"
)

type Step int

const (
	StepIdle Step = iota
	StepCollecting
	StepSubmitting
	StepRedirecting
	StepPlaced
	StepVerifying
	StepSucceeded
	StepFailed
	StepCancelled
)

var stepNames = map[Step]string{
	StepIdle:        "idle",
	StepCollecting:  "collecting",
	StepSubmitting:  "submitting",
	StepRedirecting: "redirecting",
	StepPlaced:      "placed",
	StepVerifying:   "verifying",
	StepSucceeded:   "succeeded",
	StepFailed:      "failed",
	StepCancelled:   "cancelled",
}

func (s Step) String() string {
	if n, ok := stepNames[s]; ok {
		return n
	}
	return "unknown"
}

// Destination is where the client should go next.
type Destination int

const (
	Stay Destination = iota
	// External is a full redirect to URL, leaving the client.
	External
	OrderDetail
	OrderList
	Products
)

type Navigation struct {
	To          Destination
	URL         string
	OrderNumber string
	Success     bool
	Message     string
}

// Totals are derived from the cart subtotal. The platform fee is charged to
// the seller and shown for information only; it is not part of Total.
type Totals struct {
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	Shipping    decimal.Decimal
	PlatformFee decimal.Decimal
	Total       decimal.Decimal
}

var platformFeeRate = decimal.RequireFromString("0.05")

func ComputeTotals(subtotal decimal.Decimal) Totals {
	t := Totals{
		Subtotal: subtotal,
		Tax:      decimal.Zero,
		Shipping: decimal.Zero,
	}
	t.PlatformFee = subtotal.Mul(platformFeeRate).Round(2)
	t.Total = subtotal.Add(t.Tax).Add(t.Shipping)
	return t
}

// State is the ephemeral checkout session.
type State struct {
	Step          Step
	Addresses     []models.Address
	AddressID     *int64
	PaymentMethod models.PaymentMethod
	Note          string
	Gateway       *models.PaymentConfig
	Totals        Totals
	OrderNumber   string
	Err           string
	Navigation    Navigation
}

// Event is a checkout transition. The set is closed.
type Event interface {
	checkoutEvent()
}

type (
	// Began opens a checkout over a non-empty cart.
	Began struct {
		Addresses []models.Address
		Gateway   *models.PaymentConfig
		Subtotal  decimal.Decimal
		Err       string
	}
	// CartEmpty refuses checkout and sends the user to the products.
	CartEmpty      struct{}
	AddressChosen  struct{ ID int64 }
	MethodChosen   struct{ Method models.PaymentMethod }
	NoteChanged    struct{ Note string }
	SubmitStarted  struct{}
	SubmitFailed   struct{ Message string }
	GatewayHandoff struct {
		URL         string
		OrderNumber string
	}
	OrderPlaced struct {
		OrderNumber string
		Message     string
	}
)

func (Began) checkoutEvent()          {}
func (CartEmpty) checkoutEvent()      {}
func (AddressChosen) checkoutEvent()  {}
func (MethodChosen) checkoutEvent()   {}
func (NoteChanged) checkoutEvent()    {}
func (SubmitStarted) checkoutEvent()  {}
func (SubmitFailed) checkoutEvent()   {}
func (GatewayHandoff) checkoutEvent() {}
func (OrderPlaced) checkoutEvent()    {}

const msgOrderPlaced = "Order placed successfully!"

// Reduce returns the state that follows s after e.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case Began:
		next := State{
			Step:          StepCollecting,
			Addresses:     ev.Addresses,
			PaymentMethod: models.PaymentGatewayCard,
			Gateway:       ev.Gateway,
			Totals:        ComputeTotals(ev.Subtotal),
			Err:           ev.Err,
		}
		if def, ok := models.DefaultAddress(ev.Addresses); ok {
			id := def.ID
			next.AddressID = &id
		}
		return next

	case CartEmpty:
		return State{Step: StepIdle, Navigation: Navigation{To: Products}}

	case AddressChosen:
		id := ev.ID
		s.AddressID = &id
		return s

	case MethodChosen:
		s.PaymentMethod = ev.Method
		return s

	case NoteChanged:
		s.Note = ev.Note
		return s

	case SubmitStarted:
		s.Step = StepSubmitting
		s.Err = ""
		return s

	case SubmitFailed:
		s.Step = StepCollecting
		s.Err = ev.Message
		return s

	case GatewayHandoff:
		s.Step = StepRedirecting
		s.OrderNumber = ev.OrderNumber
		s.Navigation = Navigation{To: External, URL: ev.URL}
		return s

	case OrderPlaced:
		s.Step = StepPlaced
		s.OrderNumber = ev.OrderNumber
		s.Navigation = Navigation{To: OrderDetail, OrderNumber: ev.OrderNumber, Success: true, Message: ev.Message}
		return s
	}
	return s
}
