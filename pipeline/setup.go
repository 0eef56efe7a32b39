package pipeline

import (
	"github.com/google/uuid"
	"github.com/meysamhadeli/assetcore/asset"
	"github.com/meysamhadeli/assetcore/asset/contracts"
	"github.com/meysamhadeli/assetcore/asset/models"
	"github.com/meysamhadeli/assetcore/config_loader"
	"github.com/meysamhadeli/assetcore/dependency"
	"github.com/meysamhadeli/assetcore/environment"
	"github.com/meysamhadeli/assetcore/plugins"
	"github.com/meysamhadeli/assetcore/plugins/markdown"
	"github.com/meysamhadeli/assetcore/plugins/treesitter"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// NewRegistry returns a registry holding the built-in plugins.
func NewRegistry(logger *zap.Logger) *plugins.Registry {
	registry := plugins.NewRegistry(logger)
	registry.Register(treesitter.Name, treesitter.New)
	registry.Register(markdown.Name, markdown.New)
	return registry
}

// DefaultTransformers maps every type the built-in plugins understand to
// its plugin chain.
func DefaultTransformers() map[string][]string {
	transformers := map[string][]string{
		"md":       {markdown.Name},
		"markdown": {markdown.Name},
	}
	for _, assetType := range treesitter.Types() {
		transformers[assetType] = []string{treesitter.Name}
	}
	return transformers
}

// NewOptions wires the default collaborators for a build of root. Every
// call gets a fresh build id.
func NewOptions(fs afero.Fs, root, toolVersion string, cache contracts.ICacheStore, logger *zap.Logger) *asset.Options {
	if logger == nil {
		logger = zap.NewNop()
	}
	environments := environment.NewMerger()
	return &asset.Options{
		Build: &models.BuildOptions{
			ToolVersion: toolVersion,
			ProjectRoot: root,
			Mode:        "development",
			BuildID:     uuid.NewString(),
		},
		Cache:        cache,
		Plugins:      NewRegistry(logger),
		Environments: environments,
		Dependencies: dependency.NewFactory(environments),
		Configs:      config_loader.NewLoader(root, logger),
		FS:           fs,
		Logger:       logger,
	}
}
