package asset

import (
	"maps"

	"github.com/meysamhadeli/assetcore/asset/models"
)

// AddDependency records a dependency declared by a transform stage and
// returns its id. Declaring the same dependency again merges the two
// records instead of adding a second entry.
func (a *Asset) AddDependency(options models.DependencyOptions) string {
	dependency := a.options.Dependencies.Create(models.DependencyInput{
		Specifier:     options.Specifier,
		SpecifierType: options.SpecifierType,
		IsAsync:       options.IsAsync,
		IsOptional:    options.IsOptional,
		IsEntry:       options.IsEntry,
		Pipeline:      options.Pipeline,
		Loc:           options.Loc,
		Meta:          options.Meta,
		Symbols:       options.Symbols,
		Env:           a.options.Environments.Merge(a.value.Env, options.Env),
		SourceAssetID: a.value.ID,
		SourcePath:    a.value.FilePath,
	})

	if a.value.Dependencies == nil {
		a.value.Dependencies = make(map[string]*models.Dependency)
	}
	if existing, ok := a.value.Dependencies[dependency.ID]; ok {
		// Children share entries with their parent until they write, so
		// merge into a copy rather than the shared record.
		merged := cloneDependency(existing)
		a.options.Dependencies.Merge(merged, dependency)
		a.value.Dependencies[dependency.ID] = merged
	} else {
		a.value.Dependencies[dependency.ID] = dependency
	}
	return dependency.ID
}

// AddIncludedFile records a file that influenced this asset. The last
// record for a path wins.
func (a *Asset) AddIncludedFile(file models.File) {
	if a.value.IncludedFiles == nil {
		a.value.IncludedFiles = make(map[string]*models.File)
	}
	a.value.IncludedFiles[file.FilePath] = &file
}

func cloneDependency(dependency *models.Dependency) *models.Dependency {
	clone := *dependency
	clone.Meta = maps.Clone(dependency.Meta)
	clone.Symbols = maps.Clone(dependency.Symbols)
	return &clone
}
