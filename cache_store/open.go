package cache_store

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/meysamhadeli/assetcore/asset/contracts"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	BackendFS     = "fs"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Options select and configure a backend.
type Options struct {
	Backend     string
	Dir         string
	Compression string
	RedisAddr   string
	RedisPrefix string
	RedisTTL    time.Duration
}

// Open builds the configured store wrapped with hit/miss instrumentation.
func Open(ctx context.Context, options Options, logger *zap.Logger) (*Instrumented, error) {
	var (
		store contracts.ICacheStore
		err   error
	)

	switch options.Backend {
	case "", BackendFS:
		compression, parseErr := ParseCompression(options.Compression)
		if parseErr != nil {
			return nil, parseErr
		}
		store, err = NewFileStore(afero.NewOsFs(), options.Dir, compression, logger)
	case BackendMemory:
		store = NewMemoryStore()
	case BackendRedis:
		prefix := options.RedisPrefix
		if prefix == "" {
			prefix = "assetcore:"
		}
		store, err = NewRedisStore(ctx, options.RedisAddr, prefix, options.RedisTTL, logger)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", options.Backend)
	}
	if err != nil {
		return nil, err
	}
	return NewInstrumented(store), nil
}

// Clear removes every entry of the store behind i.
func (i *Instrumented) Clear(ctx context.Context) error {
	switch store := i.Unwrap().(type) {
	case *FileStore:
		return store.Clear()
	case *RedisStore:
		return store.Clear(ctx)
	case *MemoryStore:
		store.Clear()
		return nil
	default:
		return fmt.Errorf("store %T cannot be cleared", store)
	}
}

// Close releases connections held by the store behind i.
func (i *Instrumented) Close() error {
	if closer, ok := i.Unwrap().(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
