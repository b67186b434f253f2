package kv

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// RedisEngine persists values in redis, for profiles shared between machines.
// Keys are namespaced by Prefix.
type RedisEngine struct {
	Client *redis.Client
	Prefix string
}

var _ Engine = RedisEngine{}

// OpenRedis parses url, connects, and pings the server before returning.
func OpenRedis(ctx context.Context, url, prefix string) (RedisEngine, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return RedisEngine{}, errors.Wrap(err, "[kv] - parsing redis url")
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return RedisEngine{}, errors.CombineErrors(
			errors.Wrap(err, "[kv] - pinging redis"),
			client.Close(),
		)
	}
	return RedisEngine{Client: client, Prefix: prefix}, nil
}

func (e RedisEngine) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := e.Client.Get(ctx, e.Prefix+key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	return v, errors.Wrapf(err, "[kv] - redis get %s", key)
}

func (e RedisEngine) Set(ctx context.Context, key string, value []byte) error {
	return errors.Wrapf(e.Client.Set(ctx, e.Prefix+key, value, 0).Err(), "[kv] - redis set %s", key)
}

func (e RedisEngine) Delete(ctx context.Context, key string) error {
	return errors.Wrapf(e.Client.Del(ctx, e.Prefix+key).Err(), "[kv] - redis delete %s", key)
}

// Close closes the underlying client.
func (e RedisEngine) Close() error { return e.Client.Close() }
