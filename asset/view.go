package asset

import "github.com/meysamhadeli/assetcore/asset/models"

// assetView is the read-only face of an asset passed to plugins.
type assetView struct {
	asset *Asset
}

func (v assetView) ID() string               { return v.asset.value.ID }
func (v assetView) FilePath() string         { return v.asset.value.FilePath }
func (v assetView) Type() string             { return v.asset.value.Type }
func (v assetView) Env() *models.Environment { return v.asset.value.Env }
func (v assetView) IsSource() bool           { return v.asset.value.IsSource }

// Meta returns a copy so plugins cannot mutate the record.
func (v assetView) Meta() map[string]any {
	meta := make(map[string]any, len(v.asset.value.Meta))
	for key, value := range v.asset.value.Meta {
		meta[key] = value
	}
	return meta
}
