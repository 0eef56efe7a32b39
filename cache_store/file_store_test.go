package cache_store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/meysamhadeli/assetcore/asset/contracts"
	"github.com/meysamhadeli/assetcore/asset/models"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T, compression Compression) (*FileStore, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := NewFileStore(fs, "/cache", compression, nil)
	require.NoError(t, err)
	return store, fs
}

func TestFileStore_StreamRoundTrip(t *testing.T) {
	payload := strings.Repeat("const x = 1;\n", 200)

	for _, compression := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(compression.String(), func(t *testing.T) {
			ctx := context.Background()
			store, _ := newTestFileStore(t, compression)

			require.NoError(t, store.SetStream(ctx, "abcdef", strings.NewReader(payload)))

			reader, err := store.GetStream(ctx, "abcdef")
			require.NoError(t, err)
			data, err := io.ReadAll(reader)
			require.NoError(t, err)
			require.NoError(t, reader.Close())

			assert.Equal(t, payload, string(data))
		})
	}
}

func TestFileStore_ValueRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestFileStore(t, CompressionZstd)

	sourceMap := &models.SourceMap{
		Sources:  []string{"src/a.js"},
		Mappings: []models.Mapping{{Generated: models.Position{Line: 1}, Original: models.Position{Line: 1}}},
	}
	require.NoError(t, store.Set(ctx, "ff01", sourceMap))

	var loaded models.SourceMap
	require.NoError(t, store.Get(ctx, "ff01", &loaded))
	assert.Equal(t, *sourceMap, loaded)
}

func TestFileStore_MissIsErrCacheMiss(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestFileStore(t, CompressionNone)

	_, err := store.GetStream(ctx, "missing")
	assert.ErrorIs(t, err, contracts.ErrCacheMiss)

	var out string
	assert.ErrorIs(t, store.Get(ctx, "missing", &out), contracts.ErrCacheMiss)
}

func TestFileStore_ShardedLayout(t *testing.T) {
	ctx := context.Background()
	store, fs := newTestFileStore(t, CompressionNone)

	require.NoError(t, store.SetStream(ctx, "ab1234", strings.NewReader("x")))

	exists, err := afero.Exists(fs, filepath.Join("/cache", "ab", "ab1234"))
	require.NoError(t, err)
	assert.True(t, exists)

	names, err := afero.ReadDir(fs, filepath.Join("/cache", "ab"))
	require.NoError(t, err)
	assert.Len(t, names, 1, "no temp files may be left behind")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestFileStore_FailedWriteKeepsPreviousEntry(t *testing.T) {
	ctx := context.Background()
	store, fs := newTestFileStore(t, CompressionLZ4)

	require.NoError(t, store.SetStream(ctx, "cd99", strings.NewReader("old")))
	err := store.SetStream(ctx, "cd99", io.MultiReader(strings.NewReader("partial"), failingReader{}))
	require.Error(t, err)

	reader, err := store.GetStream(ctx, "cd99")
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	assert.Equal(t, "old", string(data))

	names, err := afero.ReadDir(fs, filepath.Join("/cache", "cd"))
	require.NoError(t, err)
	assert.Len(t, names, 1)
}

func TestFileStore_FailedFirstWriteLeavesMiss(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestFileStore(t, CompressionNone)

	require.Error(t, store.SetStream(ctx, "ee01", failingReader{}))

	_, err := store.GetStream(ctx, "ee01")
	assert.ErrorIs(t, err, contracts.ErrCacheMiss)
}

func TestFileStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store, _ := newTestFileStore(t, CompressionNone)

	err := store.SetStream(ctx, "aa00", bytes.NewReader([]byte("data")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileStore_StatsAndClear(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestFileStore(t, CompressionNone)

	require.NoError(t, store.SetStream(ctx, "aa01", strings.NewReader("one")))
	require.NoError(t, store.SetStream(ctx, "bb02", strings.NewReader("two")))

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
	// One tag byte per entry plus the body.
	assert.Equal(t, int64(8), stats.TotalSize)

	require.NoError(t, store.Clear())

	stats, err = store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)
}

func TestFileStore_SmartCleanup(t *testing.T) {
	ctx := context.Background()
	store, fs := newTestFileStore(t, CompressionNone)

	now := time.Now()
	keys := []string{"aa01", "bb02", "cc03"}
	for i, key := range keys {
		require.NoError(t, store.SetStream(ctx, key, strings.NewReader("entry")))
		modTime := now.Add(time.Duration(i-len(keys)) * time.Hour)
		require.NoError(t, fs.Chtimes(store.entryPath(key), modTime, modTime))
	}

	t.Run("dry run", func(t *testing.T) {
		report, err := store.SmartCleanup(CleanupOptions{MaxFiles: 1, DryRun: true})
		require.NoError(t, err)
		assert.Equal(t, 2, report.Marked)
		assert.Equal(t, 2, report.DeletedByCount)

		stats, err := store.Stats()
		require.NoError(t, err)
		assert.Equal(t, 3, stats.Entries)
	})

	t.Run("by count keeps newest", func(t *testing.T) {
		report, err := store.SmartCleanup(CleanupOptions{MaxFiles: 1})
		require.NoError(t, err)
		assert.Equal(t, 2, report.Deleted)

		_, err = fs.Stat(store.entryPath("cc03"))
		assert.NoError(t, err)
		_, err = fs.Stat(store.entryPath("aa01"))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestFileStore_SmartCleanupByAge(t *testing.T) {
	ctx := context.Background()
	store, fs := newTestFileStore(t, CompressionNone)

	require.NoError(t, store.SetStream(ctx, "aa01", strings.NewReader("stale")))
	require.NoError(t, store.SetStream(ctx, "bb02", strings.NewReader("fresh")))
	old := time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, fs.Chtimes(store.entryPath("aa01"), old, old))

	report, err := store.SmartCleanup(CleanupOptions{MaxAge: 7 * 24 * time.Hour})
	require.NoError(t, err)
	assert.Equal(t, 1, report.DeletedByAge)
	assert.Equal(t, 1, report.Deleted)
}

func TestParseCompression(t *testing.T) {
	for _, name := range []string{"none", "lz4", "zstd"} {
		compression, err := ParseCompression(name)
		require.NoError(t, err)
		assert.Equal(t, name, compression.String())
	}

	_, err := ParseCompression("brotli")
	assert.Error(t, err)
}
