package asset

import (
	"context"
	"fmt"

	"github.com/meysamhadeli/assetcore/asset/models"
)

const packageManifest = "package.json"

// GetConfig looks up the first of names near the asset. With a package key
// set, a populated key in the nearest package manifest short-circuits the
// lookup. Every file the loader read becomes an included file.
func (a *Asset) GetConfig(ctx context.Context, names []string, options models.ConfigOptions) (any, error) {
	if options.PackageKey != "" {
		pkg, err := a.GetPackage(ctx)
		if err != nil {
			return nil, err
		}
		if value, ok := pkg[options.PackageKey]; ok && value != nil {
			return value, nil
		}
	}

	result, err := a.options.Configs.Load(ctx, a.options.FS, a.value.FilePath, names, options.Parse)
	if err != nil {
		return nil, fmt.Errorf("loading config for %s: %w", a.value.FilePath, err)
	}
	if result == nil {
		return nil, nil
	}

	for _, file := range result.Files {
		a.AddIncludedFile(file)
	}
	return result.Config, nil
}

// GetPackage returns the nearest parsed package manifest, or nil.
func (a *Asset) GetPackage(ctx context.Context) (map[string]any, error) {
	config, err := a.GetConfig(ctx, []string{packageManifest}, models.ConfigOptions{Parse: true})
	if err != nil {
		return nil, err
	}
	pkg, _ := config.(map[string]any)
	return pkg, nil
}
