// /internal/storage/storage.go
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Store is the durable key/byte substrate every mind component persists through.
// It gives no exclusivity guarantee: callers serialize read-modify-write cycles per key.
type Store interface {
	// Get returns the stored bytes and true, or nil and false when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var ErrClosed = errors.New("storage: store is closed")

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Driver        string
	Path          string // file and sqlite
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	Logger        zerolog.Logger
}

// Open returns the backend named by opts.Driver. Empty driver means file.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverFile, "":
		return NewFileStore(opts.Path, opts.Logger)
	case DriverSQLite:
		return NewSQLiteStore(ctx, opts.Path)
	case DriverRedis:
		return DialRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.RedisPrefix)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER: %s", opts.Driver)
	}
}
