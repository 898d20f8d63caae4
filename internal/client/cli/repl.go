package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isSeller() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context) error
	EditProfile(ctx context.Context) error

	ShowCart(ctx context.Context) error
	AddToCart(ctx context.Context, args []string) error
	UpdateCartItem(ctx context.Context, args []string) error
	RemoveCartItem(ctx context.Context, args []string) error
	ClearCart(ctx context.Context) error

	Checkout(ctx context.Context) error
	VerifyPayment(ctx context.Context, args []string) error

	Orders(ctx context.Context, args []string) error
	Order(ctx context.Context, args []string) error
	CancelOrder(ctx context.Context, args []string) error
	PayOrder(ctx context.Context, args []string) error
	SellerOrders(ctx context.Context, args []string) error
	AdvanceOrder(ctx context.Context, args []string) error

	Addresses(ctx context.Context) error
	AddAddress(ctx context.Context) error
	DeleteAddress(ctx context.Context, args []string) error

	Stats(ctx context.Context) error
}

const (
	helpGuest  = "Available commands: register, login, stats, exit"
	helpBuyer  = "Available commands: cart, add, update, remove, clear, checkout, verify, orders, order, cancel, pay, addresses, addaddress, deladdress, profile, editprofile, stats, logout, exit"
	helpSeller = "Seller commands: sales, advance"
)

// runREPL reads one command per line from in and dispatches it to a.
// The first token is the command, the rest are its arguments. The loop
// exits on EOF or when the user types "exit" or "quit". Commands that
// prompt for more input read from the same reader, so in must be the
// App's reader.
//
// A handler's error is printed as is: its text is already the message meant
// for the user.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("shop %s> ", statusFn()))
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		err = nil
		switch cmd {
		case "help":
			switch {
			case !a.isLoggedIn():
				printlnFn(helpGuest)
			case a.isSeller():
				printlnFn(helpBuyer)
				printlnFn(helpSeller)
			default:
				printlnFn(helpBuyer)
			}

		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "profile", "whoami":
			err = a.Profile(ctx)
		case "editprofile":
			err = a.EditProfile(ctx)

		case "cart":
			err = a.ShowCart(ctx)
		case "add":
			err = a.AddToCart(ctx, args)
		case "update":
			err = a.UpdateCartItem(ctx, args)
		case "remove", "rm":
			err = a.RemoveCartItem(ctx, args)
		case "clear":
			err = a.ClearCart(ctx)

		case "checkout":
			err = a.Checkout(ctx)
		case "verify":
			err = a.VerifyPayment(ctx, args)

		case "orders":
			err = a.Orders(ctx, args)
		case "order":
			err = a.Order(ctx, args)
		case "cancel":
			err = a.CancelOrder(ctx, args)
		case "pay":
			err = a.PayOrder(ctx, args)
		case "sales":
			err = a.SellerOrders(ctx, args)
		case "advance":
			err = a.AdvanceOrder(ctx, args)

		case "addresses":
			err = a.Addresses(ctx)
		case "addaddress":
			err = a.AddAddress(ctx)
		case "deladdress":
			err = a.DeleteAddress(ctx, args)

		case "stats":
			err = a.Stats(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
