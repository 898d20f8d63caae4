package cli

import (
	"context"
	"fmt"
	"strconv"
)

type usageError string

func (u usageError) Error() string { return "Usage: " + string(u) }

func parseID(s, usage string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, usageError(usage)
	}
	return id, nil
}

// ShowCart reloads the cart and prints it. If the reload fails the last
// known contents are still shown.
func (a *App) ShowCart(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.cart.Load(ctx)
	}
	err := a.cart.Load(ctx)
	printCart(a.out, a.cart.State())
	return err
}

// AddToCart handles "add <product-id> [quantity] [variant-id]".
func (a *App) AddToCart(ctx context.Context, args []string) error {
	const usage = "add <product-id> [quantity] [variant-id]"
	if len(args) == 0 || len(args) > 3 {
		return usageError(usage)
	}
	productID, err := parseID(args[0], usage)
	if err != nil {
		return err
	}
	qty := 1
	if len(args) > 1 {
		if qty, err = strconv.Atoi(args[1]); err != nil {
			return usageError(usage)
		}
	}
	var variantID *int64
	if len(args) > 2 {
		v, err := parseID(args[2], usage)
		if err != nil {
			return err
		}
		variantID = &v
	}

	if err := a.cart.Add(ctx, productID, variantID, qty); err != nil {
		return err
	}
	if it, ok := a.cart.Item(productID, variantID); ok {
		fmt.Fprintf(a.out, "Added to cart: %s (now %d in cart)\n", it.ProductName, it.Quantity)
	} else {
		fmt.Fprintln(a.out, "Added to cart")
	}
	return nil
}

// UpdateCartItem handles "update <item-id> <quantity>". A quantity of 0
// removes the line.
func (a *App) UpdateCartItem(ctx context.Context, args []string) error {
	const usage = "update <item-id> <quantity>"
	if len(args) != 2 {
		return usageError(usage)
	}
	itemID, err := parseID(args[0], usage)
	if err != nil {
		return err
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return usageError(usage)
	}

	if err := a.cart.Update(ctx, itemID, qty); err != nil {
		return err
	}
	st := a.cart.State()
	fmt.Fprintf(a.out, "Cart updated: %d item(s), subtotal %s\n", st.ItemCount, formatMoney(st.Subtotal))
	return nil
}

func (a *App) RemoveCartItem(ctx context.Context, args []string) error {
	const usage = "remove <item-id>"
	if len(args) != 1 {
		return usageError(usage)
	}
	itemID, err := parseID(args[0], usage)
	if err != nil {
		return err
	}

	if err := a.cart.Remove(ctx, itemID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Item removed from cart")
	return nil
}

func (a *App) ClearCart(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.cart.Clear(ctx)
	}
	ok, err := Confirm(a.reader, "Remove all items from your cart?", a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.cart.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Cart cleared")
	return nil
}
