package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/campusshop/internal/client/api"
	"github.com/dmitrijs2005/campusshop/internal/client/models"
	"github.com/dmitrijs2005/campusshop/internal/common"
)

var errLoginForAddresses = &common.OpError{
	Op:  "addresses",
	Msg: "Please log in to manage your addresses",
	Err: common.ErrNotAuthenticated,
}

func (a *App) Addresses(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errLoginForAddresses
	}
	list, err := a.api.ListAddresses(ctx)
	if err != nil {
		return &common.OpError{Op: "list addresses", Msg: api.MessageOf(err, "Failed to load addresses"), Err: err}
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No saved addresses")
		return nil
	}
	for _, addr := range list {
		def := ""
		if addr.IsDefault {
			def = " (default)"
		}
		fmt.Fprintf(a.out, "%d: %s%s\n", addr.ID, addr.String(), def)
	}
	return nil
}

// AddAddress prompts for a new address and saves it.
func (a *App) AddAddress(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errLoginForAddresses
	}

	var (
		addr models.Address
		err  error
	)
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Street address", &addr.StreetAddress},
		{"Apartment / hall / room (optional)", &addr.ApartmentAddress},
		{"City", &addr.City},
		{"Region", &addr.State},
		{"Postal code", &addr.PostalCode},
		{"Country (optional)", &addr.Country},
	}
	for _, f := range fields {
		if *f.dst, err = a.ask(f.prompt); err != nil {
			return err
		}
	}
	if addr.IsDefault, err = Confirm(a.reader, "Use as default address?", a.out); err != nil {
		return err
	}

	saved, err := a.api.CreateAddress(ctx, addr)
	if err != nil {
		return &common.OpError{Op: "create address", Msg: api.MessageOf(err, "Failed to save address"), Err: err}
	}
	fmt.Fprintf(a.out, "Address %d saved\n", saved.ID)
	return nil
}

func (a *App) DeleteAddress(ctx context.Context, args []string) error {
	const usage = "deladdress <address-id>"
	if len(args) != 1 {
		return usageError(usage)
	}
	if !a.isLoggedIn() {
		return errLoginForAddresses
	}
	id, err := parseID(args[0], usage)
	if err != nil {
		return err
	}
	if err := a.api.DeleteAddress(ctx, id); err != nil {
		return &common.OpError{Op: "delete address", Msg: api.MessageOf(err, "Failed to delete address"), Err: err}
	}
	fmt.Fprintln(a.out, "Address deleted")
	return nil
}
