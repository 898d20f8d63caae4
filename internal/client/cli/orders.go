package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/campusshop/internal/client/models"
	"github.com/dmitrijs2005/campusshop/internal/common"
)

func orderFilter(args []string) models.OrderFilter {
	var f models.OrderFilter
	if len(args) > 0 {
		f.Status = models.OrderStatus(args[0])
	}
	return f
}

// Orders handles "orders [status]".
func (a *App) Orders(ctx context.Context, args []string) error {
	list, err := a.orders.List(ctx, orderFilter(args))
	if err != nil {
		return err
	}
	printOrders(a.out, list)
	return nil
}

func (a *App) showOrder(ctx context.Context, ref string) error {
	o, err := a.orders.Get(ctx, ref)
	if err != nil {
		return err
	}
	printOrder(a.out, o)
	return nil
}

func (a *App) Order(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("order <order-number>")
	}
	return a.showOrder(ctx, args[0])
}

// CancelOrder handles "cancel <order-number>" after a confirmation.
func (a *App) CancelOrder(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("cancel <order-number>")
	}
	o, err := a.orders.Get(ctx, args[0])
	if err != nil {
		return err
	}
	if !o.Status.Cancellable() {
		// Let the service produce the refusal without asking first.
		_, err := a.orders.Cancel(ctx, o)
		return err
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Cancel order %s?", o.OrderNumber), a.out)
	if err != nil || !ok {
		return err
	}
	o, err = a.orders.Cancel(ctx, o)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Order %s is now %s\n", o.OrderNumber, statusLabel(*o))
	return nil
}

// PayOrder handles "pay <order-number>": it starts a new gateway payment for
// an unpaid card order.
func (a *App) PayOrder(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("pay <order-number>")
	}
	o, err := a.orders.Get(ctx, args[0])
	if err != nil {
		return err
	}

	if st, err := a.orders.PaymentStatus(ctx, o.ID); err == nil && st.IsPaid {
		fmt.Fprintf(a.out, "Order %s is already paid\n", o.OrderNumber)
		return nil
	}

	init, err := a.orders.RetryPayment(ctx, o)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Complete your payment here:")
	fmt.Fprintln(a.out, "  "+init.AuthorizationURL)
	fmt.Fprintf(a.out, "Then run: verify %s\n", init.Reference)
	return nil
}

// SellerOrders handles "sales [status]".
func (a *App) SellerOrders(ctx context.Context, args []string) error {
	list, err := a.orders.SellerOrders(ctx, orderFilter(args))
	if err != nil {
		return err
	}
	printOrders(a.out, list)
	return nil
}

// AdvanceOrder handles "advance <order-number | id>" for sellers.
func (a *App) AdvanceOrder(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("advance <order-number>")
	}
	list, err := a.orders.SellerOrders(ctx, models.OrderFilter{})
	if err != nil {
		return err
	}
	var target *models.Order
	for i := range list {
		if list[i].OrderNumber == args[0] || strconv.FormatInt(list[i].ID, 10) == args[0] {
			target = &list[i]
			break
		}
	}
	if target == nil {
		return &common.OpError{Op: "advance order", Msg: "Order not found", Err: common.ErrNotFound}
	}

	next, ok := target.Status.Next()
	if ok && target.IsPaid {
		confirmed, err := Confirm(a.reader, fmt.Sprintf("Mark order %s as %s?", target.OrderNumber, next), a.out)
		if err != nil || !confirmed {
			return err
		}
	}
	o, err := a.orders.Advance(ctx, target)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Order %s is now %s\n", o.OrderNumber, statusLabel(*o))
	return nil
}
