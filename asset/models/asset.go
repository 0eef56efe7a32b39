package models

import "time"

// Asset is the serializable description of one asset at one stage of a
// transform pipeline. It never holds in-memory content; content, maps and
// trees live in the cache under ContentKey, MapKey and ASTKey.
type Asset struct {
	ID       string       `json:"id"`
	Hash     string       `json:"hash,omitempty"`
	FilePath string       `json:"file_path"`
	Type     string       `json:"type"`
	Env      *Environment `json:"env"`

	IsSource    bool `json:"is_source"`
	IsIsolated  bool `json:"is_isolated"`
	IsInline    bool `json:"is_inline"`
	SideEffects bool `json:"side_effects"`

	// Pipeline is a named transform pipeline override. Empty means none.
	Pipeline string `json:"pipeline,omitempty"`

	// Empty keys mean "not committed yet" or "no such representation".
	ContentKey string `json:"content_key,omitempty"`
	MapKey     string `json:"map_key,omitempty"`
	ASTKey     string `json:"ast_key,omitempty"`

	ASTGenerator *ASTGenerator `json:"ast_generator,omitempty"`

	Dependencies  map[string]*Dependency `json:"dependencies"`
	IncludedFiles map[string]*File       `json:"included_files"`
	Symbols       map[string]string      `json:"symbols"`
	Meta          map[string]any         `json:"meta"`
	Stats         Stats                  `json:"stats"`

	UniqueKey  string `json:"unique_key,omitempty"`
	Plugin     string `json:"plugin,omitempty"`
	ConfigPath string `json:"config_path,omitempty"`
}

// Stats holds per-stage measurements. Size is only meaningful after a
// commit that had content.
type Stats struct {
	Time time.Duration `json:"time"`
	Size int64         `json:"size"`
}

// File is a file that influenced an asset's output.
type File struct {
	FilePath string `json:"file_path"`
	Hash     string `json:"hash,omitempty"`
}
