// Package pipeline builds a project: every source file becomes an asset
// that runs through the transformer chain of its type, committing the
// output of each stage to the cache.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/meysamhadeli/assetcore/asset"
	"github.com/meysamhadeli/assetcore/asset/models"
	"github.com/meysamhadeli/assetcore/environment"
	plugin_contracts "github.com/meysamhadeli/assetcore/plugins/contracts"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxFileSize skips files above this size.
	MaxFileSize = 1024 * 1024
	// maxTypeChanges bounds how many times one asset may change type.
	maxTypeChanges = 8
	outputStage    = "output"
)

var ErrNotTransformer = errors.New("plugin is not a transformer")

// Result describes one final asset of a build.
type Result struct {
	FilePath     string
	Type         string
	ID           string
	ContentKey   string
	MapKey       string
	Size         int64
	Duration     time.Duration
	Dependencies []string
}

// Runner processes projects. Transformers maps an asset type to the names
// of the plugins that run on it, in order.
type Runner struct {
	options      *asset.Options
	transformers map[string][]string
	workers      int
	buildLogger  *zap.Logger
	logger       *zap.Logger
}

func NewRunner(options *asset.Options, transformers map[string][]string, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	buildLogger := loggerOf(options)
	if id := buildID(options); id != "" {
		buildLogger = buildLogger.With(zap.String("build_id", id))
	}
	return &Runner{
		options:      options,
		transformers: transformers,
		workers:      workers,
		buildLogger:  buildLogger,
		logger:       buildLogger.Named("pipeline"),
	}
}

// BuildID identifies the runs of this runner in logs.
func (r *Runner) BuildID() string {
	return buildID(r.options)
}

func buildID(options *asset.Options) string {
	if options.Build == nil {
		return ""
	}
	return options.Build.BuildID
}

func loggerOf(options *asset.Options) *zap.Logger {
	if options.Logger == nil {
		return zap.NewNop()
	}
	return options.Logger
}

// Walk lists the files under root that are not ignored, in lexical order.
func (r *Runner) Walk(root string) ([]string, error) {
	patterns, err := GetIgnorePatterns(r.options.FS, root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = afero.Walk(r.options.FS, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relativePath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relativePath = filepath.ToSlash(relativePath)
		if relativePath == "." {
			return nil
		}

		if IsDefaultIgnored(relativePath) || IsIgnored(relativePath, patterns) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || info.Size() > MaxFileSize {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, nil
}

// Run builds every file under root with at most r.workers files in
// flight. The first failure cancels the build.
func (r *Runner) Run(ctx context.Context, root string) ([]Result, error) {
	files, err := r.Walk(root)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("building project", zap.String("root", root), zap.Int("files", len(files)))

	var (
		results []Result
		mutex   sync.Mutex
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.workers)

	for _, path := range files {
		path := path
		group.Go(func() error {
			fileResults, err := r.BuildFile(groupCtx, path)
			if err != nil {
				return err
			}
			mutex.Lock()
			results = append(results, fileResults...)
			mutex.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].FilePath != results[j].FilePath {
			return results[i].FilePath < results[j].FilePath
		}
		if results[i].Type != results[j].Type {
			return results[i].Type < results[j].Type
		}
		return results[i].ID < results[j].ID
	})
	return results, nil
}

// BuildFile runs one source file through its transformer chain and
// returns the final assets.
func (r *Runner) BuildFile(ctx context.Context, path string) ([]Result, error) {
	source, err := r.SourceAsset(path)
	if err != nil {
		return nil, err
	}

	finals, err := r.transform(ctx, source, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", path, err)
	}

	results := make([]Result, 0, len(finals))
	for _, final := range finals {
		start := time.Now()
		// Materialize the output so the committed record carries its size.
		if _, err := final.GetBuffer(ctx); err != nil {
			return nil, fmt.Errorf("failed to materialize %s: %w", path, err)
		}
		if err := final.Commit(ctx, outputStage); err != nil {
			return nil, err
		}

		record := final.Record()
		record.Stats.Time += time.Since(start)
		result := Result{
			FilePath:   record.FilePath,
			Type:       record.Type,
			ID:         record.ID,
			ContentKey: record.ContentKey,
			MapKey:     record.MapKey,
			Size:       record.Stats.Size,
			Duration:   record.Stats.Time,
		}
		for _, dependency := range final.GetDependencies() {
			result.Dependencies = append(result.Dependencies, dependency.Specifier)
		}
		results = append(results, result)
	}
	return results, nil
}

// SourceAsset reads path into a fresh source asset whose hash is the
// hash of its bytes.
func (r *Runner) SourceAsset(path string) (*asset.Asset, error) {
	data, err := afero.ReadFile(r.options.FS, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %s, error: %w", path, err)
	}

	value := asset.CreateAsset(r.options.Environments, asset.AssetOptions{
		FilePath:    path,
		Hash:        asset.HashContent(data),
		Type:        strings.TrimPrefix(filepath.Ext(path), "."),
		Env:         &environment.Default,
		IsSource:    true,
		SideEffects: true,
		Stats:       models.Stats{Size: int64(len(data))},
	})
	return asset.NewAssetWithContent(value, r.options, asset.BytesContent(data)), nil
}

// transform runs the chain for a's type. A result of another type leaves
// the chain and starts the chain of its own type.
func (r *Runner) transform(ctx context.Context, a *asset.Asset, typeChanges int) ([]*asset.Asset, error) {
	var finals []*asset.Asset
	current := []*asset.Asset{a}

	for _, name := range r.transformers[a.Type()] {
		transformer, err := r.loadTransformer(ctx, name)
		if err != nil {
			return nil, err
		}

		var next []*asset.Asset
		for _, item := range current {
			start := time.Now()
			results, err := transformer.Transform(ctx, plugin_contracts.TransformRequest{
				Asset:   item,
				Options: r.options.Build,
				Logger:  r.buildLogger.Named(name),
			})
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}

			for _, result := range results {
				child := item.CreateChildAsset(result, name, "")
				child.Record().Stats.Time = time.Since(start)
				if err := child.Commit(ctx, name); err != nil {
					return nil, err
				}
				r.logger.Debug("transformed asset",
					zap.String("path", child.FilePath()),
					zap.String("plugin", name),
					zap.String("type", child.Type()),
					zap.Duration("took", child.Record().Stats.Time))

				if child.Type() == item.Type() {
					next = append(next, child)
					continue
				}
				if typeChanges >= maxTypeChanges {
					return nil, fmt.Errorf("%s changed type more than %d times", child.FilePath(), maxTypeChanges)
				}
				descendants, err := r.transform(ctx, child, typeChanges+1)
				if err != nil {
					return nil, err
				}
				finals = append(finals, descendants...)
			}
		}
		current = next
	}

	return append(finals, current...), nil
}

func (r *Runner) loadTransformer(ctx context.Context, name string) (plugin_contracts.ITransformer, error) {
	plugin, err := r.options.Plugins.Load(ctx, name, "")
	if err != nil {
		return nil, err
	}
	transformer, ok := plugin.(plugin_contracts.ITransformer)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotTransformer, name)
	}
	return transformer, nil
}
