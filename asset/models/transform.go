package models

// TransformerResult is what a transform stage hands back for each asset it
// produced. Pointer fields are "unset" when nil and inherit from the parent.
type TransformerResult struct {
	Type string

	// Content takes precedence over the legacy Code field.
	Content []byte
	Code    *string

	AST *AST
	Map *SourceMap

	Env         *EnvironmentOptions
	IsIsolated  *bool
	IsInline    *bool
	IsSource    *bool
	SideEffects *bool
	Pipeline    *string

	Meta      map[string]any
	Symbols   map[string]string
	UniqueKey string

	Dependencies  []DependencyOptions
	IncludedFiles []File
}

// GenerateResult is returned by a plugin that prints a tree back to code.
type GenerateResult struct {
	Code []byte
	Map  *SourceMap
}

// BuildOptions are process-wide settings shared by every asset in a build.
type BuildOptions struct {
	ToolVersion string `json:"tool_version"`
	ProjectRoot string `json:"project_root"`
	Mode        string `json:"mode"`
	BuildID     string `json:"build_id"`
}

// ConfigOptions controls a config lookup.
type ConfigOptions struct {
	PackageKey string
	Parse      bool
}

// ConfigResult is what the config loader found.
type ConfigResult struct {
	Config   any
	FilePath string
	Files    []File
}
