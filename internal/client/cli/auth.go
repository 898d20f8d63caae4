package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/campusshop/internal/client/credentials"
	"github.com/dmitrijs2005/campusshop/internal/client/models"
	"github.com/dmitrijs2005/campusshop/internal/client/session"
	"github.com/dmitrijs2005/campusshop/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errPasswordMismatch = &common.OpError{
	Op:  "register",
	Msg: "Passwords do not match",
	Err: errors.New("password confirmation differs"),
}

func (a *App) ask(prompt string) (string, error) {
	return getSimpleText(a.reader, prompt, a.out)
}

// Register prompts for the account details, creates the account and logs
// in with the same credentials.
func (a *App) Register(ctx context.Context) error {
	var (
		reg models.Registration
		err error
	)
	if reg.Email, err = a.ask("Email"); err != nil {
		return err
	}
	if reg.FirstName, err = a.ask("First name"); err != nil {
		return err
	}
	if reg.LastName, err = a.ask("Last name"); err != nil {
		return err
	}
	if reg.PhoneNumber, err = a.ask("Phone number (optional)"); err != nil {
		return err
	}
	if reg.Password, err = getPassword("Password", a.out); err != nil {
		return err
	}
	if reg.PasswordConfirm, err = getPassword("Confirm password", a.out); err != nil {
		return err
	}
	if reg.Password != reg.PasswordConfirm {
		return errPasswordMismatch
	}

	loggedIn, err := a.session.Register(ctx, reg)
	if err != nil {
		return err
	}
	if !loggedIn {
		fmt.Fprintln(a.out, session.MsgRegisteredPleaseLogin)
		return nil
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", a.session.State().User.DisplayName())
	return nil
}

// Login prompts for credentials and authenticates. The cart is loaded as
// part of the transition to the authenticated state.
func (a *App) Login(ctx context.Context) error {
	email, err := a.ask("Email")
	if err != nil {
		return err
	}
	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}

	u, err := a.session.Login(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", u.DisplayName())
	if n := a.cart.State().ItemCount; n > 0 {
		fmt.Fprintf(a.out, "You have %d item(s) in your cart\n", n)
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Profile prints the current user and when the stored access credential
// expires.
func (a *App) Profile(ctx context.Context) error {
	st := a.session.State()
	if !st.Authenticated() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	u := st.User
	fmt.Fprintf(a.out, "Name:   %s\n", u.DisplayName())
	fmt.Fprintf(a.out, "Email:  %s\n", u.Email)
	if u.PhoneNumber != "" {
		fmt.Fprintf(a.out, "Phone:  %s\n", u.PhoneNumber)
	}
	role := "buyer"
	if u.IsSeller {
		role = "seller"
	}
	fmt.Fprintf(a.out, "Role:   %s\n", role)

	if claims, err := credentials.Inspect(a.api.AccessToken(ctx)); err == nil && !claims.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "Access: expires %s\n", claims.ExpiresAt.Local().Format(time.DateTime))
	}
	return nil
}

// EditProfile asks for new values; an empty answer keeps the field as is.
func (a *App) EditProfile(ctx context.Context) error {
	st := a.session.State()
	if !st.Authenticated() {
		return &common.OpError{Op: "edit profile", Msg: "Please log in first", Err: common.ErrNotAuthenticated}
	}

	var upd models.ProfileUpdate
	fields := []struct {
		prompt  string
		current string
		dst     **string
	}{
		{"First name", st.User.FirstName, &upd.FirstName},
		{"Last name", st.User.LastName, &upd.LastName},
		{"Phone number", st.User.PhoneNumber, &upd.PhoneNumber},
	}
	changed := false
	for _, f := range fields {
		v, err := a.ask(fmt.Sprintf("%s [%s]", f.prompt, f.current))
		if err != nil {
			return err
		}
		if v != "" && v != f.current {
			*f.dst = &v
			changed = true
		}
	}
	if !changed {
		fmt.Fprintln(a.out, "Nothing to update")
		return nil
	}

	u, err := a.session.UpdateProfile(ctx, upd)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Profile updated: %s\n", u.DisplayName())
	return nil
}
