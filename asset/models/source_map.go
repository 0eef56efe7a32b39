package models

// Position is a zero-based line and column.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// SourceMap maps generated positions back to original positions.
type SourceMap struct {
	Sources  []string  `json:"sources"`
	Mappings []Mapping `json:"mappings"`
}

// Mapping is a single generated -> original position pair.
type Mapping struct {
	Generated Position `json:"generated"`
	Original  Position `json:"original"`
	Source    int      `json:"source"`
}
