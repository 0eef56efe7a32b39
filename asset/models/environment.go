package models

// Environment describes the target an asset is compiled for.
type Environment struct {
	Context            string            `json:"context"`
	Engines            map[string]string `json:"engines,omitempty"`
	IncludeNodeModules bool              `json:"include_node_modules"`
	OutputFormat       string            `json:"output_format,omitempty"`
	IsLibrary          bool              `json:"is_library"`
	Minify             bool              `json:"minify"`
}

// EnvironmentOptions overrides selected Environment fields. Nil fields keep
// the parent's value.
type EnvironmentOptions struct {
	Context            *string           `json:"context,omitempty"`
	Engines            map[string]string `json:"engines,omitempty"`
	IncludeNodeModules *bool             `json:"include_node_modules,omitempty"`
	OutputFormat       *string           `json:"output_format,omitempty"`
	IsLibrary          *bool             `json:"is_library,omitempty"`
	Minify             *bool             `json:"minify,omitempty"`
}
