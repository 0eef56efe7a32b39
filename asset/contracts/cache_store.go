package contracts

import (
	"context"
	"errors"
	"io"
)

// ErrCacheMiss is returned by every store when a key is absent. Any other
// error is an I/O or decoding failure.
var ErrCacheMiss = errors.New("cache miss")

type ICacheStore interface {
	Get(ctx context.Context, key string, out any) error
	Set(ctx context.Context, key string, value any) error
	GetStream(ctx context.Context, key string) (io.ReadCloser, error)
	SetStream(ctx context.Context, key string, r io.Reader) error
}
