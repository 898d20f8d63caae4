package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/campusshop/internal/client/credentials"
	"github.com/dmitrijs2005/campusshop/internal/client/models"
)

const (
	tokenPath     = "/accounts/token/"
	blacklistPath = "/accounts/token/blacklist/"
	usersPath     = "/accounts/users/"
	mePath        = "/accounts/users/me/"
	healthPath    = "/health/"
)

// Login exchanges credentials for a token pair. It does not persist the
// pair; see SetCredentials. The pair may or may not embed the user profile.
func (c *Client) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	var pair models.TokenPair
	err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      tokenPath,
		body:      map[string]string{"email": email, "password": password},
		anonymous: true,
	}, &pair)
	if err != nil {
		return nil, err
	}
	if pair.Access == "" {
		return nil, &ServerError{Status: http.StatusOK, Problem: ErrorMessage("login response without access credential")}
	}
	return &pair, nil
}

// SetCredentials persists a freshly issued pair.
func (c *Client) SetCredentials(ctx context.Context, access, refresh string) error {
	if err := c.tokens.Save(ctx, credentials.Pair{Access: access, Refresh: refresh}); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, request{method: http.MethodPost, path: usersPath, body: reg, anonymous: true}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Blacklist asks the server to revoke the stored refresh credential. It is
// a no-op when none is stored.
func (c *Client) Blacklist(ctx context.Context) error {
	pair, err := c.tokens.Load(ctx)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if pair.Refresh == "" {
		return nil
	}
	return c.do(ctx, request{
		method:    http.MethodPost,
		path:      blacklistPath,
		body:      map[string]string{"refresh": pair.Refresh},
		anonymous: true,
	}, nil)
}

func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.Do(ctx, http.MethodGet, mePath, nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CurrentUserWith fetches the profile using access instead of the stored
// credential, e.g. for a pair that has not been persisted yet.
func (c *Client) CurrentUserWith(ctx context.Context, access string) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, request{method: http.MethodGet, path: mePath, bearer: access}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile PATCHes the profile and returns the raw response so callers
// can merge whatever fields the server sent back.
func (c *Client) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodPatch, mePath, upd, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Health checks that the backend is reachable.
func (c *Client) Health(ctx context.Context) error {
	err := c.do(ctx, request{method: http.MethodGet, path: healthPath, anonymous: true}, nil)
	var ne *NetworkError
	if errors.As(err, &ne) {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	return err
}
