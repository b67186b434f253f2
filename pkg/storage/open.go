// Package storage opens the embedded key-value engine that holds a user's
// local state (persisted filters and preferences) on disk or in memory.
package storage

import (
	"io"
	"path/filepath"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"go.uber.org/zap"
)

type Storage struct {
	// Cfg is the configuration for the storage provided to Open.
	Cfg Config
	// KV is the embedded key-value engine.
	KV *pebble.DB
	// ReleaseLock is a function that releases the lock on the storage directory.
	ReleaseLock func() error
}

func (s *Storage) Close() error {
	return errors.CombineErrors(s.KV.Close(), s.ReleaseLock())
}

type Config struct {
	// Dirname defines the root directory local state is written to. Dirname
	// shouldn't be used by another process while the portal is running.
	Dirname string
	// MemBacked defines whether to use a memory-backed file system. Nothing is
	// persisted across restarts when set.
	MemBacked bool
	// Logger is the logger used by the storage engine.
	Logger *zap.Logger
}

func Open(cfg Config) (Storage, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	fs := openBaseFS(cfg)
	s := Storage{Cfg: cfg}

	if err := fs.MkdirAll(cfg.Dirname, 0755); err != nil {
		return s, errors.Wrapf(err, "[storage] - failed to create %s", cfg.Dirname)
	}

	// Acquire the lock on the storage directory. If another process is using the
	// same directory we return an error to the caller.
	releaser, err := acquireLock(cfg, fs)
	if err != nil {
		return s, err
	}
	s.ReleaseLock = releaser.Close

	if s.KV, err = openKV(cfg, fs); err != nil {
		return s, errors.CombineErrors(err, s.ReleaseLock())
	}
	cfg.Logger.Debug("storage opened",
		zap.String("dirname", cfg.Dirname),
		zap.Bool("memBacked", cfg.MemBacked),
	)
	return s, nil
}

const (
	kvDirname    = "kv"
	lockFileName = "LOCK"
)

func openBaseFS(cfg Config) vfs.FS {
	if cfg.MemBacked {
		return vfs.NewMem()
	}
	return vfs.Default
}

const (
	lockAlreadyAcquireMsg = `
	The storage directory is locked by another process.

	Is another portal client using the same data directory?
	`
)

func acquireLock(cfg Config, fs vfs.FS) (io.Closer, error) {
	fName := filepath.Join(cfg.Dirname, lockFileName)
	release, err := fs.Lock(fName)
	if err == nil {
		return release, nil
	}
	if errors.Is(err, syscall.EAGAIN) {
		return release, errors.Wrap(err, lockAlreadyAcquireMsg)
	}
	return release, errors.Wrap(err, "[storage] - failed to acquire lock")
}

func openKV(cfg Config, fs vfs.FS) (*pebble.DB, error) {
	dirname := filepath.Join(cfg.Dirname, kvDirname)
	return pebble.Open(dirname, &pebble.Options{FS: fs})
}
