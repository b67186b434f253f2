package kv

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
)

// PebbleEngine persists values in an embedded pebble database. The caller owns
// the database and closes it.
type PebbleEngine struct{ DB *pebble.DB }

var _ Engine = PebbleEngine{}

func (e PebbleEngine) Get(_ context.Context, key string) ([]byte, error) {
	v, closer, err := e.DB.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[kv] - pebble get %s", key)
	}
	// v is only valid until closer is closed.
	out := append([]byte(nil), v...)
	return out, closer.Close()
}

func (e PebbleEngine) Set(_ context.Context, key string, value []byte) error {
	return errors.Wrapf(e.DB.Set([]byte(key), value, pebble.Sync), "[kv] - pebble set %s", key)
}

func (e PebbleEngine) Delete(_ context.Context, key string) error {
	return errors.Wrapf(e.DB.Delete([]byte(key), pebble.Sync), "[kv] - pebble delete %s", key)
}
