// Package kv defines the key-value store the repository persists into.
package kv

import (
	"context"
	"errors"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("store closed")

// Store is a durable map from fixed string keys to opaque values.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value under key. found is false when the key was never set.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set replaces the value under key in a single write.
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
