package cache_store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/meysamhadeli/assetcore/asset/contracts"
	"github.com/meysamhadeli/assetcore/codec"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const tempPrefix = "tmp-"

// FileStore keeps entries as files sharded by the first two characters of
// their key: <dir>/<key[0:2]>/<key>. Writes land in a temp file in the
// shard and are renamed into place, so readers never see a partial entry.
type FileStore struct {
	fs          afero.Fs
	dir         string
	compression Compression
	logger      *zap.Logger
	mutex       sync.RWMutex
}

// NewFileStore creates a file store rooted at dir.
// If dir is empty, it defaults to ".cache" in the current working directory.
func NewFileStore(fs afero.Fs, dir string, compression Compression, logger *zap.Logger) (*FileStore, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		dir = filepath.Join(cwd, ".cache")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &FileStore{
		fs:          fs,
		dir:         dir,
		compression: compression,
		logger:      logger.Named("file_store"),
	}, nil
}

// Dir returns the cache root.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) shardDir(key string) string {
	if len(key) < 2 {
		return filepath.Join(s.dir, "_")
	}
	return filepath.Join(s.dir, key[:2])
}

func (s *FileStore) entryPath(key string) string {
	return filepath.Join(s.shardDir(key), key)
}

func (s *FileStore) Get(ctx context.Context, key string, out any) error {
	reader, err := s.GetStream(ctx, key)
	if err != nil {
		return err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}
	if err := codec.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Set(ctx context.Context, key string, value any) error {
	data, err := codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}
	return s.SetStream(ctx, key, bytes.NewReader(data))
}

// GetStream opens an entry for reading. The caller must close it.
func (s *FileStore) GetStream(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mutex.RLock()
	file, err := s.fs.Open(s.entryPath(key))
	s.mutex.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", key, contracts.ErrCacheMiss)
		}
		return nil, fmt.Errorf("failed to open cache entry %s: %w", key, err)
	}

	var tag [1]byte
	if _, err := io.ReadFull(file, tag[:]); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to read header of cache entry %s: %w", key, err)
	}

	body, err := newDecompressReader(file, Compression(tag[0]))
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("cache entry %s: %w", key, err)
	}
	return &entryReader{ReadCloser: body, file: file}, nil
}

// SetStream copies r into the entry for key. On any failure the previous
// entry, if one existed, is left in place.
func (s *FileStore) SetStream(ctx context.Context, key string, r io.Reader) error {
	shard := s.shardDir(key)
	if err := s.fs.MkdirAll(shard, 0755); err != nil {
		return fmt.Errorf("failed to create cache shard: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, shard, tempPrefix+key+"-")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if committed {
			return
		}
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
	}()

	if _, err := tmp.Write([]byte{byte(s.compression)}); err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	writer, err := newCompressWriter(tmp, s.compression)
	if err != nil {
		return err
	}
	if _, err := io.Copy(writer, contextReader{ctx: ctx, r: r}); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to flush cache entry %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync cache entry %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache entry %s: %w", key, err)
	}

	s.mutex.Lock()
	err = s.fs.Rename(tmpName, s.entryPath(key))
	s.mutex.Unlock()
	if err != nil {
		return fmt.Errorf("failed to commit cache entry %s: %w", key, err)
	}
	committed = true
	return nil
}

// Delete removes a cache entry
func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.fs.Remove(s.entryPath(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Clear removes all cache entries
func (s *FileStore) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.fs.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to clear cache directory: %w", err)
	}
	return s.fs.MkdirAll(s.dir, 0755)
}

type entryInfo struct {
	path    string
	size    int64
	modTime time.Time
}

// entries lists committed entries. Callers hold the mutex.
func (s *FileStore) entries() ([]entryInfo, error) {
	var entries []entryInfo
	err := afero.Walk(s.fs, s.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || strings.HasPrefix(info.Name(), tempPrefix) {
			return nil
		}
		entries = append(entries, entryInfo{path: path, size: info.Size(), modTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}
	return entries, nil
}

// StorageStats describes what is on disk.
type StorageStats struct {
	Dir         string
	Entries     int
	TotalSize   int64
	Compression Compression
	Oldest      time.Time
	Newest      time.Time
}

// Stats returns storage statistics
func (s *FileStore) Stats() (*StorageStats, error) {
	s.mutex.RLock()
	entries, err := s.entries()
	s.mutex.RUnlock()
	if err != nil {
		return nil, err
	}

	stats := &StorageStats{Dir: s.dir, Entries: len(entries), Compression: s.compression}
	for i, entry := range entries {
		stats.TotalSize += entry.size
		if i == 0 || entry.modTime.Before(stats.Oldest) {
			stats.Oldest = entry.modTime
		}
		if entry.modTime.After(stats.Newest) {
			stats.Newest = entry.modTime
		}
	}
	return stats, nil
}

// CleanupOptions defines options for cache cleanup
type CleanupOptions struct {
	MaxAge   time.Duration // Remove entries older than this
	MaxSize  int64         // Remove oldest entries while the cache exceeds this size (bytes)
	MaxFiles int           // Remove oldest entries while the cache exceeds this many entries
	DryRun   bool          // Only report what would be removed
}

// DefaultCleanupOptions are the conservative limits applied after a build.
var DefaultCleanupOptions = CleanupOptions{
	MaxAge:   7 * 24 * time.Hour,
	MaxSize:  512 * 1024 * 1024,
	MaxFiles: 20000,
}

// CleanupReport summarizes a SmartCleanup run.
type CleanupReport struct {
	EntriesBefore  int
	SizeBefore     int64
	Marked         int
	MarkedSize     int64
	Deleted        int
	DeletedByAge   int
	DeletedBySize  int
	DeletedByCount int
	DryRun         bool
}

// SmartCleanup removes entries by age, then oldest first until the size
// and count limits hold.
func (s *FileStore) SmartCleanup(options CleanupOptions) (*CleanupReport, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := s.entries()
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].modTime.Before(entries[j].modTime)
	})

	report := &CleanupReport{EntriesBefore: len(entries), DryRun: options.DryRun}
	for _, entry := range entries {
		report.SizeBefore += entry.size
	}

	marked := make(map[string]bool)
	remainingSize := report.SizeBefore
	remainingCount := len(entries)
	mark := func(entry entryInfo) {
		marked[entry.path] = true
		remainingSize -= entry.size
		remainingCount--
		report.MarkedSize += entry.size
	}

	// Phase 1: remove by age
	if options.MaxAge > 0 {
		cutoff := time.Now().Add(-options.MaxAge)
		for _, entry := range entries {
			if entry.modTime.Before(cutoff) {
				mark(entry)
				report.DeletedByAge++
			}
		}
	}

	// Phase 2: remove by total size (oldest first)
	if options.MaxSize > 0 {
		for _, entry := range entries {
			if remainingSize <= options.MaxSize {
				break
			}
			if !marked[entry.path] {
				mark(entry)
				report.DeletedBySize++
			}
		}
	}

	// Phase 3: remove by entry count (oldest first)
	if options.MaxFiles > 0 {
		for _, entry := range entries {
			if remainingCount <= options.MaxFiles {
				break
			}
			if !marked[entry.path] {
				mark(entry)
				report.DeletedByCount++
			}
		}
	}

	report.Marked = len(marked)
	if options.DryRun {
		report.Deleted = report.Marked
		return report, nil
	}

	for _, entry := range entries {
		if !marked[entry.path] {
			continue
		}
		if err := s.fs.Remove(entry.path); err != nil {
			s.logger.Warn("failed to remove cache entry", zap.String("path", entry.path), zap.Error(err))
			continue
		}
		report.Deleted++
	}
	s.logger.Debug("cache cleanup finished",
		zap.Int("before", report.EntriesBefore),
		zap.Int("deleted", report.Deleted),
		zap.Int64("freed", report.MarkedSize))
	return report, nil
}

// entryReader closes the decoder and then the file beneath it.
type entryReader struct {
	io.ReadCloser
	file afero.File
}

func (r *entryReader) Close() error {
	decoderErr := r.ReadCloser.Close()
	if err := r.file.Close(); err != nil {
		return err
	}
	return decoderErr
}

// contextReader stops a long copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
