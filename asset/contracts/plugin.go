package contracts

import (
	"context"

	"github.com/meysamhadeli/assetcore/asset/models"
	"go.uber.org/zap"
)

type IPlugin interface {
	Name() string
}

type IPluginLoader interface {
	Load(ctx context.Context, name string, configPath string) (IPlugin, error)
}

// IGenerator is implemented by plugins that can print a tree back to code.
type IGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (*models.GenerateResult, error)
}

// IAssetView is the read-only face of an asset handed to plugins.
type IAssetView interface {
	ID() string
	FilePath() string
	Type() string
	Env() *models.Environment
	IsSource() bool
	Meta() map[string]any
}

type GenerateRequest struct {
	Asset   IAssetView
	AST     *models.AST
	Options *models.BuildOptions
	Logger  *zap.Logger
}
