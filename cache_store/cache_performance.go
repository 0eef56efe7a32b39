package cache_store

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/meysamhadeli/assetcore/asset/contracts"
)

// PerformanceStats tracks cache performance metrics
type PerformanceStats struct {
	TotalRequests int64
	CacheHits     int64
	CacheMisses   int64
	Errors        int64
	Writes        int64
	LastResetTime time.Time
}

// HitRate returns the hit percentage over all reads.
func (p PerformanceStats) HitRate() float64 {
	if p.TotalRequests == 0 {
		return 0
	}
	return float64(p.CacheHits) / float64(p.TotalRequests) * 100
}

// Instrumented wraps a store and counts hits and misses on every read.
type Instrumented struct {
	contracts.ICacheStore
	stats PerformanceStats
	mutex sync.RWMutex
}

func NewInstrumented(store contracts.ICacheStore) *Instrumented {
	return &Instrumented{
		ICacheStore: store,
		stats:       PerformanceStats{LastResetTime: time.Now()},
	}
}

func (i *Instrumented) Get(ctx context.Context, key string, out any) error {
	err := i.ICacheStore.Get(ctx, key, out)
	i.recordRead(err)
	return err
}

func (i *Instrumented) GetStream(ctx context.Context, key string) (io.ReadCloser, error) {
	reader, err := i.ICacheStore.GetStream(ctx, key)
	i.recordRead(err)
	return reader, err
}

func (i *Instrumented) Set(ctx context.Context, key string, value any) error {
	err := i.ICacheStore.Set(ctx, key, value)
	i.recordWrite(err)
	return err
}

func (i *Instrumented) SetStream(ctx context.Context, key string, r io.Reader) error {
	err := i.ICacheStore.SetStream(ctx, key, r)
	i.recordWrite(err)
	return err
}

func (i *Instrumented) recordRead(err error) {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	i.stats.TotalRequests++
	switch {
	case err == nil:
		i.stats.CacheHits++
	case errors.Is(err, contracts.ErrCacheMiss):
		i.stats.CacheMisses++
	default:
		i.stats.Errors++
	}
}

func (i *Instrumented) recordWrite(err error) {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	if err != nil {
		i.stats.Errors++
		return
	}
	i.stats.Writes++
}

// Stats returns a snapshot of the counters.
func (i *Instrumented) Stats() PerformanceStats {
	i.mutex.RLock()
	defer i.mutex.RUnlock()
	return i.stats
}

// ResetStats resets all performance counters
func (i *Instrumented) ResetStats() {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	i.stats = PerformanceStats{LastResetTime: time.Now()}
}

// Unwrap returns the wrapped store.
func (i *Instrumented) Unwrap() contracts.ICacheStore {
	return i.ICacheStore
}
