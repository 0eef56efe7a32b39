package contracts

import (
	"context"

	"github.com/meysamhadeli/assetcore/asset/models"
	"github.com/spf13/afero"
)

type IEnvironmentMerger interface {
	Merge(parent *models.Environment, override *models.EnvironmentOptions) *models.Environment
	Hash(env *models.Environment) string
}

type IDependencyFactory interface {
	Create(input models.DependencyInput) *models.Dependency
	// Merge folds incoming into existing in place.
	Merge(existing *models.Dependency, incoming *models.Dependency)
}

type IConfigLoader interface {
	// Load returns nil, nil when none of the candidate names exist.
	Load(ctx context.Context, fs afero.Fs, fromPath string, names []string, parse bool) (*models.ConfigResult, error)
}
