// Package kv is the persistent key-value store for local state. Values are
// written through to a durable Engine and validated against a schema every
// time they are loaded back.
package kv

import (
	"context"

	"github.com/cockroachdb/errors"
)

// ErrNotFound is returned by an Engine when a key has no value.
var ErrNotFound = errors.New("[kv] - not found")

// Engine is a durable byte-oriented key-value medium.
type Engine interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
