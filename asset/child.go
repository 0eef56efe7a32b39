package asset

import (
	"maps"

	"github.com/meysamhadeli/assetcore/asset/models"
)

// CreateChildAsset derives the asset a transform stage produced from a.
//
// A child keeps the parent's id base and hash. A change of type is a
// pipeline boundary: dependencies start empty and the pipeline is cleared
// unless the result names one. Included files always carry forward. Meta
// and symbols are merged key by key with the result's entries winning.
func (a *Asset) CreateChildAsset(result models.TransformerResult, plugin, configPath string) *Asset {
	var content Content
	switch {
	case result.Content != nil:
		content = BytesContent(result.Content)
	case result.Code != nil:
		content = TextContent(*result.Code)
	}

	childType := result.Type
	if childType == "" {
		childType = a.value.Type
	}
	sameType := childType == a.value.Type

	dependencies := make(map[string]*models.Dependency)
	pipeline := ""
	if sameType {
		maps.Copy(dependencies, a.value.Dependencies)
		pipeline = a.value.Pipeline
	}
	if result.Pipeline != nil {
		pipeline = *result.Pipeline
	}

	includedFiles := make(map[string]*models.File, len(a.value.IncludedFiles))
	maps.Copy(includedFiles, a.value.IncludedFiles)

	meta := make(map[string]any, len(a.value.Meta)+len(result.Meta))
	maps.Copy(meta, a.value.Meta)
	maps.Copy(meta, result.Meta)

	symbols := make(map[string]string, len(a.value.Symbols)+len(result.Symbols))
	maps.Copy(symbols, a.value.Symbols)
	maps.Copy(symbols, result.Symbols)

	var generator *models.ASTGenerator
	if result.AST != nil {
		generator = &models.ASTGenerator{Type: result.AST.Type, Version: result.AST.Version}
	}

	value := CreateAsset(a.options.Environments, AssetOptions{
		IDBase:        a.idBase,
		Hash:          a.value.Hash,
		FilePath:      a.value.FilePath,
		Type:          childType,
		Env:           a.options.Environments.Merge(a.value.Env, result.Env),
		IsSource:      boolOr(result.IsSource, a.value.IsSource),
		IsIsolated:    boolOr(result.IsIsolated, a.value.IsIsolated),
		IsInline:      boolOr(result.IsInline, a.value.IsInline),
		SideEffects:   boolOr(result.SideEffects, a.value.SideEffects),
		Pipeline:      pipeline,
		ASTGenerator:  generator,
		Dependencies:  dependencies,
		IncludedFiles: includedFiles,
		Symbols:       symbols,
		Meta:          meta,
		Stats:         models.Stats{Time: 0, Size: a.value.Stats.Size},
		UniqueKey:     result.UniqueKey,
		Plugin:        plugin,
		ConfigPath:    configPath,
	})

	child := NewAssetWithContent(value, a.options, content)
	child.idBase = a.idBase
	child.ast = result.AST
	if result.Map != nil {
		child.sourceMap = result.Map
		child.mapLoaded = true
	}
	// An untouched tree keeps the parent's dirtiness; anything else is new.
	child.isASTDirty = true
	if result.AST == a.ast {
		child.isASTDirty = a.isASTDirty
	}

	for _, dependency := range result.Dependencies {
		child.AddDependency(dependency)
	}
	for _, file := range result.IncludedFiles {
		child.AddIncludedFile(file)
	}
	return child
}

func boolOr(value *bool, fallback bool) bool {
	if value != nil {
		return *value
	}
	return fallback
}
