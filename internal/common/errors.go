// Package common defines shared constants and sentinel errors used across
// transport, state-machine and CLI layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Transport-level errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrNetwork      = errors.New("network error")

	// Session errors.
	ErrNotAuthenticated = errors.New("not authenticated")

	// Cart / checkout errors.
	ErrEmptyCart = errors.New("cart is empty")
	ErrInFlight  = errors.New("operation already in progress")

	// Order lifecycle errors.
	ErrCancelNotAllowed = errors.New("order can no longer be cancelled")
	ErrNoNextStatus     = errors.New("order has no next status")
	ErrNotSeller        = errors.New("seller account required")
	ErrNotPaid          = errors.New("order is not paid")
)

// OpError is returned by state-machine operations. Msg is safe to show to
// the user; Err keeps the cause for errors.Is/As.
type OpError struct {
	Op  string
	Msg string
	Err error
}

func (e *OpError) Error() string { return e.Msg }

func (e *OpError) Unwrap() error { return e.Err }
