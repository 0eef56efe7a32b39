// Package asset implements the asset controller: lazy materialization of an
// asset's content across bytes, text, streams and syntax trees, backed by a
// content-addressed cache.
package asset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync/atomic"

	"github.com/meysamhadeli/assetcore/asset/contracts"
	"github.com/meysamhadeli/assetcore/asset/models"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Options are the collaborators shared by every asset in a build.
type Options struct {
	Build        *models.BuildOptions
	Cache        contracts.ICacheStore
	Plugins      contracts.IPluginLoader
	Environments contracts.IEnvironmentMerger
	Dependencies contracts.IDependencyFactory
	Configs      contracts.IConfigLoader
	FS           afero.Fs
	Logger       *zap.Logger
}

func (o *Options) toolVersion() string {
	if o.Build == nil {
		return ""
	}
	return o.Build.ToolVersion
}

func (o *Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Asset owns one serializable record plus the transient state needed to
// materialize it. Only the record is ever persisted. An Asset is owned by a
// single transform stage at a time and is not safe for concurrent use.
type Asset struct {
	value   *models.Asset
	options *Options
	idBase  string

	content    Content
	sourceMap  *models.SourceMap
	mapLoaded  bool
	ast        *models.AST
	isASTDirty bool

	generating atomic.Bool
}

// NewAsset wraps value. The id base used for derived children defaults to
// the record's file path.
func NewAsset(value *models.Asset, options *Options) *Asset {
	return &Asset{
		value:   value,
		options: options,
		idBase:  value.FilePath,
	}
}

// NewAssetWithContent wraps value with resident content.
func NewAssetWithContent(value *models.Asset, options *Options, content Content) *Asset {
	a := NewAsset(value, options)
	a.content = content
	return a
}

// Record returns the serializable record.
func (a *Asset) Record() *models.Asset { return a.value }

func (a *Asset) ID() string               { return a.value.ID }
func (a *Asset) FilePath() string         { return a.value.FilePath }
func (a *Asset) Type() string             { return a.value.Type }
func (a *Asset) Env() *models.Environment { return a.value.Env }
func (a *Asset) IsSource() bool           { return a.value.IsSource }
func (a *Asset) Meta() map[string]any     { return a.value.Meta }
func (a *Asset) Pipeline() string         { return a.value.Pipeline }
func (a *Asset) IDBase() string           { return a.idBase }
func (a *Asset) IsASTDirty() bool         { return a.isASTDirty }

// SetMeta sets one meta entry.
func (a *Asset) SetMeta(key string, value any) {
	if a.value.Meta == nil {
		a.value.Meta = make(map[string]any)
	}
	a.value.Meta[key] = value
}

// SetSymbol records that exported is provided by the local symbol.
func (a *Asset) SetSymbol(exported, local string) {
	if a.value.Symbols == nil {
		a.value.Symbols = make(map[string]string)
	}
	a.value.Symbols[exported] = local
}

// GetCacheKey derives the cache key for a logical key of this asset.
func (a *Asset) GetCacheKey(logicalKey string) string {
	return DeriveCacheKey(a.options.toolVersion(), logicalKey, a.value.ID, a.value.Hash)
}

// GetCode returns the content as text, materializing it if needed. The
// coerced text replaces the resident representation.
func (a *Asset) GetCode(ctx context.Context) (string, error) {
	if err := a.ensureContent(ctx); err != nil {
		return "", err
	}

	switch a.content.kind {
	case contentText:
		return a.content.text, nil
	case contentBytes:
		text := string(a.content.bytes)
		a.content = TextContent(text)
		return text, nil
	case contentStream:
		data, err := drain(a.content.stream)
		if err != nil {
			return "", err
		}
		text := string(data)
		a.content = TextContent(text)
		return text, nil
	default:
		return "", nil
	}
}

// GetBuffer returns the content as bytes, materializing it if needed.
func (a *Asset) GetBuffer(ctx context.Context) ([]byte, error) {
	if err := a.ensureContent(ctx); err != nil {
		return nil, err
	}

	switch a.content.kind {
	case contentBytes:
		return a.content.bytes, nil
	case contentText:
		data := []byte(a.content.text)
		a.content = BytesContent(data)
		return data, nil
	case contentStream:
		data, err := drain(a.content.stream)
		if err != nil {
			return nil, err
		}
		a.content = BytesContent(data)
		return data, nil
	default:
		return []byte{}, nil
	}
}

// GetStream returns the content as a stream. Buffered content is wrapped
// in a fresh stream and stays resident. A resident stream is handed out
// as is and must only be read once. A stream backed by the cache opens on
// first read and keeps ctx's values but not its cancellation.
func (a *Asset) GetStream(ctx context.Context) (*Stream, error) {
	if err := a.ensureContent(ctx); err != nil {
		return nil, err
	}
	return a.content.open(), nil
}

func (a *Asset) SetCode(code string) {
	a.replaceContent(TextContent(code))
}

func (a *Asset) SetBuffer(data []byte) {
	a.replaceContent(BytesContent(data))
}

func (a *Asset) SetStream(r io.Reader) {
	a.replaceContent(StreamContent(NewStream(r)))
}

// replaceContent installs new content. Content set directly no longer
// corresponds to any tree, so the tree is dropped.
func (a *Asset) replaceContent(content Content) {
	a.content = content
	a.ClearAST()
}

// ensureContent makes some representation resident. With a committed
// content key it installs a lazy stream that reads the cache on first use
// and regenerates from the tree only if that read misses.
func (a *Asset) ensureContent(ctx context.Context) error {
	if !a.content.IsEmpty() {
		return nil
	}

	if key := a.value.ContentKey; key != "" {
		// The stream may be read after the caller's context is done.
		detached := context.WithoutCancel(ctx)
		a.content = StreamContent(NewStream(&fallbackReader{
			open: func() (io.Reader, error) {
				return a.openCachedContent(detached, key)
			},
		}))
		return nil
	}

	if a.hasAST() {
		return a.GenerateFromAST(ctx)
	}
	return nil
}

func (a *Asset) openCachedContent(ctx context.Context, key string) (io.Reader, error) {
	reader, err := a.options.Cache.GetStream(ctx, key)
	switch classifyRead(err) {
	case readHit:
		return reader, nil
	case readMiss:
		if !a.hasAST() {
			return nil, fmt.Errorf("content %s: %w", key, err)
		}
		result, err := a.generate(ctx)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(result.Code), nil
	default:
		return nil, fmt.Errorf("reading content %s: %w", key, err)
	}
}

// hasAST reports whether a tree is resident or committed.
func (a *Asset) hasAST() bool {
	return a.ast != nil || a.value.ASTKey != ""
}

// GetDependencies returns the dependencies ordered by id.
func (a *Asset) GetDependencies() []*models.Dependency {
	ids := make([]string, 0, len(a.value.Dependencies))
	for id := range a.value.Dependencies {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	dependencies := make([]*models.Dependency, 0, len(ids))
	for _, id := range ids {
		dependencies = append(dependencies, a.value.Dependencies[id])
	}
	return dependencies
}

// GetIncludedFiles returns the included files ordered by path.
func (a *Asset) GetIncludedFiles() []*models.File {
	paths := make([]string, 0, len(a.value.IncludedFiles))
	for path := range a.value.IncludedFiles {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	files := make([]*models.File, 0, len(paths))
	for _, path := range paths {
		files = append(files, a.value.IncludedFiles[path])
	}
	return files
}

// ComputeHash hashes the current content into the record's Hash. Cache
// keys derived afterwards change with the content.
func (a *Asset) ComputeHash(ctx context.Context) error {
	data, err := a.GetBuffer(ctx)
	if err != nil {
		return err
	}
	a.value.Hash = HashContent(data)
	return nil
}

func drain(stream *Stream) ([]byte, error) {
	if stream.Consumed() {
		return nil, ErrStreamAlreadyConsumed
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("reading content stream: %w", err)
	}
	return data, nil
}
