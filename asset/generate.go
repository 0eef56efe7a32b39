package asset

import (
	"bytes"
	"context"
	"fmt"

	"github.com/meysamhadeli/assetcore/asset/contracts"
	"github.com/meysamhadeli/assetcore/asset/models"
	"golang.org/x/sync/errgroup"
)

// GenerateFromAST prints the tree back to content and a source map through
// the owning plugin, then stores both under the already assigned content
// and map keys so later reads hit the cache. The output becomes resident
// only once those writes succeed. It is not reentrant.
func (a *Asset) GenerateFromAST(ctx context.Context) error {
	_, err := a.generate(ctx)
	return err
}

func (a *Asset) generate(ctx context.Context) (*models.GenerateResult, error) {
	if !a.generating.CompareAndSwap(false, true) {
		return nil, ErrGenerationInProgress
	}
	defer a.generating.Store(false)

	tree, err := a.GetAST(ctx)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, ErrMissingAST
	}

	generator, pluginName, err := a.resolveGenerator(ctx)
	if err != nil {
		return nil, err
	}

	result, err := generator.Generate(ctx, contracts.GenerateRequest{
		Asset:   assetView{a},
		AST:     tree,
		Options: a.options.Build,
		Logger:  a.options.logger().Named(pluginName),
	})
	if err != nil {
		return nil, fmt.Errorf("generating %s with %s: %w", a.value.FilePath, pluginName, err)
	}
	if result == nil {
		result = &models.GenerateResult{}
	}

	group, groupCtx := errgroup.WithContext(ctx)
	if key := a.value.ContentKey; key != "" {
		group.Go(func() error {
			return a.options.Cache.SetStream(groupCtx, key, bytes.NewReader(result.Code))
		})
	}
	if key := a.value.MapKey; key != "" && result.Map != nil {
		group.Go(func() error {
			return a.options.Cache.Set(groupCtx, key, result.Map)
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("caching generated output of %s: %w", a.value.FilePath, err)
	}

	a.content = BytesContent(result.Code)
	a.sourceMap = result.Map
	a.mapLoaded = true
	return result, nil
}

func (a *Asset) resolveGenerator(ctx context.Context) (contracts.IGenerator, string, error) {
	pluginName := a.value.Plugin
	if pluginName == "" || a.options.Plugins == nil {
		return nil, "", fmt.Errorf("%w: asset %s has no owning plugin", ErrUnresolvablePlugin, a.value.FilePath)
	}

	plugin, err := a.options.Plugins.Load(ctx, pluginName, a.value.ConfigPath)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %w", ErrUnresolvablePlugin, pluginName, err)
	}
	if plugin == nil {
		return nil, "", fmt.Errorf("%w: %s", ErrUnresolvablePlugin, pluginName)
	}

	generator, ok := plugin.(contracts.IGenerator)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedGenerate, pluginName)
	}
	return generator, pluginName, nil
}
