package credentials

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the access-token payload the client cares about.
// The backend signs the token; the client never verifies the signature and
// uses these values for display and diagnostics only.
type Claims struct {
	UserID    string
	Email     string
	IsSeller  bool
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at now. A token
// without an exp claim never expires from the client's point of view.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Inspect decodes the access token payload without verifying it.
func Inspect(access string) (Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, mc); err != nil {
		return Claims{}, fmt.Errorf("decode access token: %w", err)
	}

	var c Claims
	switch v := mc["user_id"].(type) {
	case string:
		c.UserID = v
	case float64:
		c.UserID = fmt.Sprintf("%.0f", v)
	}
	if v, ok := mc["email"].(string); ok {
		c.Email = v
	}
	if v, ok := mc["is_seller"].(bool); ok {
		c.IsSeller = v
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}
