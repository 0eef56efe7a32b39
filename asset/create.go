package asset

import (
	"github.com/meysamhadeli/assetcore/asset/contracts"
	"github.com/meysamhadeli/assetcore/asset/models"
)

// AssetOptions describe a new asset record.
type AssetOptions struct {
	ID            string
	IDBase        string
	Hash          string
	FilePath      string
	Type          string
	Env           *models.Environment
	IsSource      bool
	IsIsolated    bool
	IsInline      bool
	SideEffects   bool
	Pipeline      string
	ContentKey    string
	MapKey        string
	ASTKey        string
	ASTGenerator  *models.ASTGenerator
	Dependencies  map[string]*models.Dependency
	IncludedFiles map[string]*models.File
	Symbols       map[string]string
	Meta          map[string]any
	Stats         models.Stats
	UniqueKey     string
	Plugin        string
	ConfigPath    string
}

// CreateAsset builds an asset record. Unless an explicit id is given, the
// id is derived from the id base (the file path by default), the type,
// the environment fingerprint and the unique key.
func CreateAsset(environments contracts.IEnvironmentMerger, options AssetOptions) *models.Asset {
	id := options.ID
	if id == "" {
		idBase := options.IDBase
		if idBase == "" {
			idBase = options.FilePath
		}
		id = DeriveAssetID(idBase, options.Type, environments.Hash(options.Env), options.UniqueKey)
	}

	value := &models.Asset{
		ID:            id,
		Hash:          options.Hash,
		FilePath:      options.FilePath,
		Type:          options.Type,
		Env:           options.Env,
		IsSource:      options.IsSource,
		IsIsolated:    options.IsIsolated,
		IsInline:      options.IsInline,
		SideEffects:   options.SideEffects,
		Pipeline:      options.Pipeline,
		ContentKey:    options.ContentKey,
		MapKey:        options.MapKey,
		ASTKey:        options.ASTKey,
		ASTGenerator:  options.ASTGenerator,
		Dependencies:  options.Dependencies,
		IncludedFiles: options.IncludedFiles,
		Symbols:       options.Symbols,
		Meta:          options.Meta,
		Stats:         options.Stats,
		UniqueKey:     options.UniqueKey,
		Plugin:        options.Plugin,
		ConfigPath:    options.ConfigPath,
	}
	if value.Dependencies == nil {
		value.Dependencies = make(map[string]*models.Dependency)
	}
	if value.IncludedFiles == nil {
		value.IncludedFiles = make(map[string]*models.File)
	}
	if value.Symbols == nil {
		value.Symbols = make(map[string]string)
	}
	if value.Meta == nil {
		value.Meta = make(map[string]any)
	}
	return value
}
