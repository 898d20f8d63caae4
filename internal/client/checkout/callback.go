package checkout

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/dmitrijs2005/campusshop/internal/client/api"
	"github.com/dmitrijs2005/campusshop/internal/client/models"
)

const (
	msgNoReference     = "No payment reference found"
	msgVerifyFailed    = "Payment verification failed"
	msgVerifyNetwork   = "Network error occurred while verifying payment"
	msgPaymentVerified = "Payment successful!"
)

// FailureGuidance is shown with every failed verification.
var FailureGuidance = []string{
	"Check your order history to see if payment was processed",
	"Contact support if you were charged but order wasn't created",
	"Try placing the order again if payment failed",
}

// Verification is the outcome of a payment callback. Reference is always
// kept, even on failure, so it can be quoted to support.
type Verification struct {
	Step      Step
	Reference string
	Order     *models.Order
	Message   string
	Guidance  []string

	// Next is where a successful verification leads after RedirectAfter.
	Next          Navigation
	RedirectAfter time.Duration
}

// ReferenceFrom extracts the payment reference from callback query
// parameters. "reference" wins over its alias "trxref".
func ReferenceFrom(q url.Values) string {
	if ref := q.Get("reference"); ref != "" {
		return ref
	}
	return q.Get("trxref")
}

// VerifyPayment handles the return from the gateway. Without a reference
// it fails at once and sends nothing. Cart and order state are not touched
// on failure.
func (f *Flow) VerifyPayment(ctx context.Context, q url.Values) Verification {
	ref := ReferenceFrom(q)
	if ref == "" {
		return f.failed(ref, msgNoReference)
	}

	v, err := f.api.VerifyPayment(ctx, ref)
	switch {
	case errors.Is(err, context.Canceled) || (err == nil && ctx.Err() != nil):
		return Verification{Step: StepCancelled, Reference: ref, Message: "Payment verification was cancelled"}
	case err != nil:
		fallback := msgVerifyFailed
		var ne *api.NetworkError
		if errors.As(err, &ne) {
			fallback = msgVerifyNetwork
		}
		f.log.Warn(ctx, "payment verification failed", "reference", ref, "error", err)
		return f.failed(ref, api.MessageOf(err, fallback))
	case !v.Success:
		msg := v.Message
		if msg == "" {
			msg = msgVerifyFailed
		}
		return f.failed(ref, msg)
	}

	// The server owns the cart; pick up whatever it did with it.
	if err := f.cart.Load(ctx); err != nil {
		f.log.Debug(ctx, "reload cart after payment", "error", err)
	}

	res := Verification{
		Step:          StepSucceeded,
		Reference:     ref,
		Order:         v.Order,
		Message:       msgPaymentVerified,
		RedirectAfter: f.redirectDelay,
		Next:          Navigation{To: OrderList},
	}
	if v.Message != "" {
		res.Message = v.Message
	}
	if v.Order != nil && v.Order.OrderNumber != "" {
		res.Next = Navigation{To: OrderDetail, OrderNumber: v.Order.OrderNumber, Success: true}
	}
	f.log.Info(ctx, "payment verified", "reference", ref, "order", res.Next.OrderNumber)
	return res
}

func (f *Flow) failed(ref, msg string) Verification {
	return Verification{
		Step:      StepFailed,
		Reference: ref,
		Message:   msg,
		Guidance:  FailureGuidance,
	}
}

// AwaitRedirect blocks for RedirectAfter and then returns Next. It returns
// false if the verification did not succeed or ctx ends first.
func (v Verification) AwaitRedirect(ctx context.Context) (Navigation, bool) {
	if v.Step != StepSucceeded {
		return Navigation{}, false
	}
	t := time.NewTimer(v.RedirectAfter)
	defer t.Stop()
	select {
	case <-t.C:
		return v.Next, true
	case <-ctx.Done():
		return Navigation{}, false
	}
}
