// Package metadata is a small string key/value repository on top of the
// local SQLite store. The credential store keeps the access/refresh pair here.
package metadata

import (
	"context"
)

// Repository is the key/value access the credential store is written
// against.
type Repository interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes the given keys; missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}
