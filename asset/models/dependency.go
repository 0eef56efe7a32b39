package models

// Dependency is an edge from an asset to something it imports.
type Dependency struct {
	ID            string            `json:"id"`
	Specifier     string            `json:"specifier"`
	SpecifierType string            `json:"specifier_type,omitempty"`
	IsAsync       bool              `json:"is_async"`
	IsOptional    bool              `json:"is_optional"`
	IsEntry       bool              `json:"is_entry"`
	SourceAssetID string            `json:"source_asset_id,omitempty"`
	SourcePath    string            `json:"source_path,omitempty"`
	Env           *Environment      `json:"env"`
	Pipeline      string            `json:"pipeline,omitempty"`
	Loc           *SourceLocation   `json:"loc,omitempty"`
	Meta          map[string]any    `json:"meta"`
	Symbols       map[string]string `json:"symbols"`
}

// Target names an output destination.
type Target struct {
	Name    string `json:"name"`
	DistDir string `json:"dist_dir,omitempty"`
}

// SourceLocation points into the importing file.
type SourceLocation struct {
	FilePath string   `json:"file_path"`
	Start    Position `json:"start"`
	End      Position `json:"end"`
}

// DependencyOptions is what a transformer declares.
type DependencyOptions struct {
	Specifier     string
	SpecifierType string
	IsAsync       bool
	IsOptional    bool
	IsEntry       bool
	Pipeline      string
	Loc           *SourceLocation
	Meta          map[string]any
	Symbols       map[string]string

	// Env and Target never reach the dependency record directly: Env is
	// merged with the owning asset's environment and Target is dropped.
	Env    *EnvironmentOptions
	Target *Target
}

// DependencyInput is what the dependency factory receives after the
// owning asset resolved the environment and stamped its identity.
type DependencyInput struct {
	Specifier     string
	SpecifierType string
	IsAsync       bool
	IsOptional    bool
	IsEntry       bool
	Pipeline      string
	Loc           *SourceLocation
	Meta          map[string]any
	Symbols       map[string]string
	Env           *Environment
	SourceAssetID string
	SourcePath    string
}
