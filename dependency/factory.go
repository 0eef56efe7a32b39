// Package dependency provides the default dependency factory: derived
// dependency ids and the merge policy for repeated declarations.
package dependency

import (
	"encoding/hex"
	"maps"
	"strings"

	"github.com/meysamhadeli/assetcore/asset/contracts"
	"github.com/meysamhadeli/assetcore/asset/models"
	"github.com/zeebo/xxh3"
)

type Factory struct {
	environments contracts.IEnvironmentMerger
}

func NewFactory(environments contracts.IEnvironmentMerger) *Factory {
	return &Factory{environments: environments}
}

// Create builds a dependency whose id is a function of the importing
// asset, the specifier, its type, the resolved environment and pipeline.
func (f *Factory) Create(input models.DependencyInput) *models.Dependency {
	id := xxh3.HashString128(strings.Join([]string{
		input.SourceAssetID,
		input.Specifier,
		input.SpecifierType,
		f.environments.Hash(input.Env),
		input.Pipeline,
	}, "\x00")).Bytes()

	dependency := &models.Dependency{
		ID:            hex.EncodeToString(id[:]),
		Specifier:     input.Specifier,
		SpecifierType: input.SpecifierType,
		IsAsync:       input.IsAsync,
		IsOptional:    input.IsOptional,
		IsEntry:       input.IsEntry,
		SourceAssetID: input.SourceAssetID,
		SourcePath:    input.SourcePath,
		Env:           input.Env,
		Pipeline:      input.Pipeline,
		Loc:           input.Loc,
		Meta:          maps.Clone(input.Meta),
		Symbols:       maps.Clone(input.Symbols),
	}
	if dependency.Meta == nil {
		dependency.Meta = make(map[string]any)
	}
	if dependency.Symbols == nil {
		dependency.Symbols = make(map[string]string)
	}
	return dependency
}

// Merge folds incoming into existing. Flags and location take the
// incoming declaration; meta and symbols are merged key by key with
// incoming entries winning.
func (f *Factory) Merge(existing *models.Dependency, incoming *models.Dependency) {
	existing.IsAsync = incoming.IsAsync
	existing.IsOptional = incoming.IsOptional
	existing.IsEntry = existing.IsEntry || incoming.IsEntry
	if incoming.Loc != nil {
		existing.Loc = incoming.Loc
	}

	if existing.Meta == nil {
		existing.Meta = make(map[string]any, len(incoming.Meta))
	}
	maps.Copy(existing.Meta, incoming.Meta)

	if existing.Symbols == nil {
		existing.Symbols = make(map[string]string, len(incoming.Symbols))
	}
	maps.Copy(existing.Symbols, incoming.Symbols)
}
