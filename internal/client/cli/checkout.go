package cli

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/campusshop/internal/client/checkout"
	"github.com/dmitrijs2005/campusshop/internal/client/models"
	"github.com/dmitrijs2005/campusshop/internal/common"
)

var paymentMethods = []models.PaymentMethod{
	models.PaymentGatewayCard,
	models.PaymentBankTransfer,
	models.PaymentCashOnDelivery,
}

// Checkout walks the user through address, payment method and note, then
// places the order and follows the resulting navigation.
func (a *App) Checkout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return &common.OpError{Op: "checkout", Msg: "Please log in to checkout", Err: common.ErrNotAuthenticated}
	}
	if err := a.cart.Load(ctx); err != nil {
		a.log.Debug(ctx, "refresh cart before checkout", "error", err)
	}

	st, err := a.checkout.Begin(ctx)
	if err != nil {
		if st.Navigation.To == checkout.Products {
			fmt.Fprintln(a.out, "Your cart is empty. Add some products first.")
			return nil
		}
		return err
	}

	printCart(a.out, a.cart.State())
	fmt.Fprintln(a.out)
	printTotals(a.out, st.Totals)
	fmt.Fprintln(a.out)

	if st.Err != "" {
		fmt.Fprintln(a.out, "Warning:", st.Err)
	}
	if len(st.Addresses) == 0 {
		fmt.Fprintln(a.out, "You have no saved addresses. Add one with 'addaddress' and try again.")
		return nil
	}

	if err := a.chooseAddress(st); err != nil {
		return err
	}
	if err := a.choosePaymentMethod(st); err != nil {
		return err
	}
	note, err := a.ask("Note for the seller (optional)")
	if err != nil {
		return err
	}
	if err := a.checkout.SetNote(note); err != nil {
		return err
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Place order for %s?", formatMoney(st.Totals.Total)), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Checkout cancelled")
		return nil
	}

	st, err = a.checkout.Submit(ctx)
	if err != nil {
		return err
	}
	return a.follow(ctx, st.Navigation, st.OrderNumber)
}

func (a *App) chooseAddress(st checkout.State) error {
	labels := make([]string, len(st.Addresses))
	def := -1
	for i, addr := range st.Addresses {
		labels[i] = addr.String()
		if st.AddressID != nil && addr.ID == *st.AddressID {
			def = i
		}
	}
	fmt.Fprintln(a.out, "Shipping address:")
	i, err := GetChoice(a.reader, "Choose an address", labels, def, a.out)
	if err != nil {
		return err
	}
	return a.checkout.SelectAddress(st.Addresses[i].ID)
}

func (a *App) choosePaymentMethod(st checkout.State) error {
	labels := make([]string, len(paymentMethods))
	def := 0
	for i, m := range paymentMethods {
		labels[i] = paymentLabel(m)
		if m == st.PaymentMethod {
			def = i
		}
	}
	fmt.Fprintln(a.out, "Payment method:")
	i, err := GetChoice(a.reader, "Choose a payment method", labels, def, a.out)
	if err != nil {
		return err
	}
	return a.checkout.SelectPaymentMethod(paymentMethods[i])
}

// follow acts on a navigation result. The REPL cannot open a browser, so an
// external destination is printed for the user to open.
func (a *App) follow(ctx context.Context, nav checkout.Navigation, orderNumber string) error {
	switch nav.To {
	case checkout.External:
		if orderNumber != "" {
			fmt.Fprintf(a.out, "Order %s created.\n", orderNumber)
		}
		fmt.Fprintln(a.out, "Complete your payment here:")
		fmt.Fprintln(a.out, "  "+nav.URL)
		fmt.Fprintln(a.out, "When you are redirected back, run: verify <callback URL or reference>")
	case checkout.OrderDetail:
		if nav.Message != "" {
			fmt.Fprintln(a.out, nav.Message)
		}
		return a.showOrder(ctx, nav.OrderNumber)
	case checkout.OrderList:
		return a.Orders(ctx, nil)
	case checkout.Products:
		fmt.Fprintln(a.out, "Browse the products to add items to your cart.")
	}
	return nil
}

// callbackQuery accepts what the gateway put in the callback: a full URL,
// a bare query string, or just the reference.
func callbackQuery(arg string) (url.Values, error) {
	switch {
	case strings.Contains(arg, "://"):
		u, err := url.Parse(arg)
		if err != nil {
			return nil, err
		}
		return u.Query(), nil
	case strings.Contains(arg, "="):
		return url.ParseQuery(strings.TrimPrefix(arg, "?"))
	}
	return url.Values{"reference": {arg}}, nil
}

// VerifyPayment handles "verify <callback URL | query | reference>". On
// success it waits for the redirect delay and shows the order.
func (a *App) VerifyPayment(ctx context.Context, args []string) error {
	var q url.Values
	if len(args) > 0 {
		var err error
		if q, err = callbackQuery(args[0]); err != nil {
			return usageError("verify <callback URL | reference>")
		}
	}

	fmt.Fprintln(a.out, "Verifying payment...")
	v := a.checkout.VerifyPayment(ctx, q)

	switch v.Step {
	case checkout.StepSucceeded:
		fmt.Fprintln(a.out, v.Message)
		if v.Order != nil {
			fmt.Fprintf(a.out, "Order %s, total %s\n", v.Order.OrderNumber, formatMoney(v.Order.Total))
		}
		fmt.Fprintf(a.out, "Opening your order in %s...\n", v.RedirectAfter)
		nav, ok := v.AwaitRedirect(ctx)
		if !ok {
			return nil
		}
		return a.follow(ctx, nav, nav.OrderNumber)

	case checkout.StepCancelled:
		fmt.Fprintln(a.out, v.Message)
		return nil
	}

	fmt.Fprintln(a.out, "Payment failed:", v.Message)
	if v.Reference != "" {
		fmt.Fprintln(a.out, "Reference:", v.Reference)
	}
	fmt.Fprintln(a.out, "What you can do:")
	for _, g := range v.Guidance {
		fmt.Fprintln(a.out, "  - "+g)
	}
	return nil
}
