package cache_store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/meysamhadeli/assetcore/asset/contracts"
	"github.com/meysamhadeli/assetcore/codec"
)

// MemoryStore keeps encoded entries in process memory. Values go through
// the same codec as the persistent stores, so readers get their own copy.
type MemoryStore struct {
	entries map[string][]byte
	mutex   sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, key string, out any) error {
	data, err := s.load(key)
	if err != nil {
		return err
	}
	if err := codec.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}
	return nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value any) error {
	data, err := codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}
	s.store(key, data)
	return nil
}

func (s *MemoryStore) GetStream(ctx context.Context, key string) (io.ReadCloser, error) {
	data, err := s.load(key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStore) SetStream(ctx context.Context, key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}
	s.store(key, data)
	return nil
}

// Has reports whether key is present.
func (s *MemoryStore) Has(key string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	_, ok := s.entries[key]
	return ok
}

// Delete removes key.
func (s *MemoryStore) Delete(key string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.entries, key)
}

// Len returns the number of entries.
func (s *MemoryStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.entries)
}

// Clear drops every entry.
func (s *MemoryStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.entries = make(map[string][]byte)
}

func (s *MemoryStore) load(key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	data, ok := s.entries[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, contracts.ErrCacheMiss)
	}
	return data, nil
}

func (s *MemoryStore) store(key string, data []byte) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.entries[key] = data
}
