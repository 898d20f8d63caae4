package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/campusshop/internal/client/api"
	"github.com/dmitrijs2005/campusshop/internal/client/cart"
	"github.com/dmitrijs2005/campusshop/internal/client/models"
	"github.com/dmitrijs2005/campusshop/internal/common"
	"github.com/dmitrijs2005/campusshop/internal/logging"
	"golang.org/x/sync/errgroup"
)

const (
	msgCheckoutFailed   = "Checkout failed. Please try again."
	msgSelectAddress    = "Please select a shipping address"
	msgAddressesFailed  = "Failed to load addresses"
	msgUnknownAddress   = "Selected address is not one of your saved addresses"
	msgUnknownMethod    = "Unsupported payment method"
	msgCheckoutNotReady = "Checkout has not been started"
)

// API is the part of the transport checkout needs.
type API interface {
	ListAddresses(ctx context.Context) ([]models.Address, error)
	PaymentConfig(ctx context.Context) (*models.PaymentConfig, error)
	Checkout(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error)
	VerifyPayment(ctx context.Context, reference string) (*models.PaymentVerification, error)
}

// Cart is the view of the cart checkout depends on.
type Cart interface {
	State() cart.State
	Load(ctx context.Context) error
	Clear(ctx context.Context) error
}

// Flow runs one checkout at a time.
type Flow struct {
	api           API
	cart          Cart
	log           logging.Logger
	redirectDelay time.Duration

	mu    sync.Mutex
	state State
}

// NewFlow creates a Flow. redirectDelay is how long a successful payment
// result is shown before moving on to the order.
func NewFlow(a API, c Cart, log logging.Logger, redirectDelay time.Duration) *Flow {
	return &Flow{api: a, cart: c, log: log, redirectDelay: redirectDelay}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) dispatch(e Event) State {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = Reduce(f.state, e)
	return f.state
}

// Begin opens the checkout. An empty cart is refused without any request
// and the state points the user back to the products. Saved addresses and
// the gateway configuration are fetched concurrently; failing to fetch
// either leaves the checkout usable with an error shown.
func (f *Flow) Begin(ctx context.Context) (State, error) {
	cs := f.cart.State()
	if cs.Empty() {
		return f.dispatch(CartEmpty{}), &common.OpError{Op: "checkout", Msg: "Your cart is empty", Err: common.ErrEmptyCart}
	}

	var (
		addresses []models.Address
		gateway   *models.PaymentConfig
		addrErr   error
	)
	// Neither fetch failing aborts the checkout; only cancellation does.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := f.api.ListAddresses(gctx)
		switch {
		case err == nil:
			addresses = list
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			addrErr = err
			f.log.Warn(ctx, "load addresses", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		cfg, err := f.api.PaymentConfig(gctx)
		switch {
		case err == nil:
			gateway = cfg
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			f.log.Warn(ctx, "load payment config", "error", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return f.State(), err
	}

	ev := Began{Addresses: addresses, Gateway: gateway, Subtotal: cs.Subtotal}
	if addrErr != nil {
		ev.Err = api.MessageOf(addrErr, msgAddressesFailed)
	}
	return f.dispatch(ev), nil
}

func (f *Flow) collecting() error {
	if f.State().Step != StepCollecting {
		return &common.OpError{Op: "checkout", Msg: msgCheckoutNotReady, Err: errors.New("checkout not started")}
	}
	return nil
}

// SelectAddress picks the saved address used for shipping and billing.
func (f *Flow) SelectAddress(id int64) error {
	if err := f.collecting(); err != nil {
		return err
	}
	for _, a := range f.State().Addresses {
		if a.ID == id {
			f.dispatch(AddressChosen{ID: id})
			return nil
		}
	}
	return &common.OpError{Op: "select address", Msg: msgUnknownAddress, Err: common.ErrNotFound}
}

func (f *Flow) SelectPaymentMethod(m models.PaymentMethod) error {
	if err := f.collecting(); err != nil {
		return err
	}
	if !m.Valid() {
		return &common.OpError{Op: "select payment method", Msg: msgUnknownMethod, Err: fmt.Errorf("payment method %q", m)}
	}
	f.dispatch(MethodChosen{Method: m})
	return nil
}

func (f *Flow) SetNote(note string) error {
	if err := f.collecting(); err != nil {
		return err
	}
	f.dispatch(NoteChanged{Note: note})
	return nil
}

// Submit places the order. With a gateway payment the state ends in
// StepRedirecting with an External navigation to the payment URL and the
// cart untouched. Otherwise the order is placed, the cart is cleared and
// the navigation points to the order detail. On failure the flow returns
// to collecting with the error set.
func (f *Flow) Submit(ctx context.Context) (State, error) {
	f.mu.Lock()
	cur := f.state
	switch {
	case cur.Step == StepSubmitting:
		f.mu.Unlock()
		return cur, &common.OpError{Op: "checkout", Msg: "Your order is already being placed", Err: common.ErrInFlight}
	case cur.Step != StepCollecting:
		f.mu.Unlock()
		return cur, &common.OpError{Op: "checkout", Msg: msgCheckoutNotReady, Err: errors.New("checkout not started")}
	case cur.AddressID == nil:
		f.mu.Unlock()
		return cur, &common.OpError{Op: "checkout", Msg: msgSelectAddress, Err: errors.New("no address selected")}
	}
	f.state = Reduce(cur, SubmitStarted{})
	f.mu.Unlock()

	if f.cart.State().Empty() {
		st := f.dispatch(CartEmpty{})
		return st, &common.OpError{Op: "checkout", Msg: "Your cart is empty", Err: common.ErrEmptyCart}
	}

	addr := *cur.AddressID
	req := models.CheckoutRequest{
		ShippingAddressID: &addr,
		BillingAddressID:  &addr,
		PaymentMethod:     cur.PaymentMethod,
		CustomerNote:      cur.Note,
		AgreeToTerms:      true,
	}

	resp, err := f.api.Checkout(ctx, req)
	if err != nil {
		msg := api.MessageOf(err, msgCheckoutFailed)
		return f.dispatch(SubmitFailed{Message: msg}), &common.OpError{Op: "checkout", Msg: msg, Err: err}
	}

	number := resp.PlacedOrderNumber()
	if resp.PaymentURL != "" {
		f.log.Info(ctx, "handing off to payment gateway", "order", number, "reference", resp.Reference)
		return f.dispatch(GatewayHandoff{URL: resp.PaymentURL, OrderNumber: number}), nil
	}

	if err := f.cart.Clear(ctx); err != nil {
		f.log.Warn(ctx, "clear cart after order", "error", err)
		if lerr := f.cart.Load(ctx); lerr != nil {
			f.log.Warn(ctx, "reload cart after order", "error", lerr)
		}
	}
	f.log.Info(ctx, "order placed", "order", number, "method", cur.PaymentMethod)
	return f.dispatch(OrderPlaced{OrderNumber: number, Message: msgOrderPlaced}), nil
}
