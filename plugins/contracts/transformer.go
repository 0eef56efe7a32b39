package contracts

import (
	"context"

	"github.com/meysamhadeli/assetcore/asset"
	asset_contracts "github.com/meysamhadeli/assetcore/asset/contracts"
	"github.com/meysamhadeli/assetcore/asset/models"
	"go.uber.org/zap"
)

// ITransformer turns one asset into the assets of the next stage.
type ITransformer interface {
	asset_contracts.IPlugin
	Transform(ctx context.Context, req TransformRequest) ([]models.TransformerResult, error)
}

type TransformRequest struct {
	Asset   *asset.Asset
	Options *models.BuildOptions
	Logger  *zap.Logger
}
