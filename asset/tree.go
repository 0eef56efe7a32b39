package asset

import (
	"context"
	"fmt"

	"github.com/meysamhadeli/assetcore/asset/models"
)

// GetAST returns the syntax tree. A committed tree is authoritative and is
// re-read on every call unless a newer tree has been set in memory.
func (a *Asset) GetAST(ctx context.Context) (*models.AST, error) {
	if key := a.value.ASTKey; key != "" && !a.isASTDirty {
		var tree models.AST
		if err := a.options.Cache.Get(ctx, key, &tree); err != nil {
			return nil, fmt.Errorf("reading syntax tree %s: %w", key, err)
		}
		a.ast = &tree
	}
	return a.ast, nil
}

// SetAST makes tree the sole source of truth. Resident content, the map
// and the keys they were committed under are dropped until the tree is
// printed again.
func (a *Asset) SetAST(tree *models.AST) {
	if tree == nil {
		a.ClearAST()
		return
	}

	a.ast = tree
	a.isASTDirty = true
	a.value.ASTGenerator = &models.ASTGenerator{Type: tree.Type, Version: tree.Version}
	a.value.ASTKey = ""

	a.content = Content{}
	a.value.ContentKey = ""
	a.sourceMap = nil
	a.mapLoaded = false
	a.value.MapKey = ""
}

// ClearAST drops the tree when a stage replaces it with direct content.
func (a *Asset) ClearAST() {
	a.ast = nil
	a.isASTDirty = false
	a.value.ASTGenerator = nil
	a.value.ASTKey = ""
}

// GetMap returns the source map, or nil if none ever existed. A map that
// is missing from the cache is regenerated from the tree when one exists.
func (a *Asset) GetMap(ctx context.Context) (*models.SourceMap, error) {
	key := a.value.MapKey
	if a.mapLoaded || a.sourceMap != nil || key == "" {
		return a.sourceMap, nil
	}

	var sourceMap models.SourceMap
	err := a.options.Cache.Get(ctx, key, &sourceMap)
	switch classifyRead(err) {
	case readHit:
		a.sourceMap = &sourceMap
		a.mapLoaded = true
		return a.sourceMap, nil
	case readMiss:
		if !a.hasAST() {
			return nil, fmt.Errorf("source map %s: %w", key, err)
		}
		if err := a.GenerateFromAST(ctx); err != nil {
			return nil, err
		}
		return a.sourceMap, nil
	default:
		return nil, fmt.Errorf("reading source map %s: %w", key, err)
	}
}

// SetMap replaces the source map.
func (a *Asset) SetMap(sourceMap *models.SourceMap) {
	a.sourceMap = sourceMap
	a.mapLoaded = true
}
