// Package common contains shared constants and sentinel errors used across
// the campus shop client components.
package common

// Keys under which the credential pair is persisted in the local store.
// Absence of AccessTokenKey is the only signal used at startup to decide
// that no session exists.
const (
	AccessTokenKey  = "campus_shop_token"
	RefreshTokenKey = "campus_shop_refresh_token"
)

// RequestIDHeaderName is attached to every outbound API request so server
// logs can be correlated with client logs.
const RequestIDHeaderName = "X-Request-ID"
