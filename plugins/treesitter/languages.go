package treesitter

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Capture names understood by the import extractor. Captures starting
// with an underscore are only used to filter a match.
const (
	captureStatic  = "static"
	captureDynamic = "dynamic"
	captureRequire = "require"
	captureCallee  = "_fn"
)

const ecmascriptImports = `
(import_statement source: (string) @static)
(export_statement source: (string) @static)
(call_expression function: (import) arguments: (arguments (string) @dynamic))
(call_expression function: (identifier) @_fn arguments: (arguments (string) @require))
`

type language struct {
	name          string
	grammar       func() *sitter.Language
	imports       string
	specifierType string
}

var (
	javascriptLanguage = language{name: "javascript", grammar: javascript.GetLanguage, imports: ecmascriptImports, specifierType: "esm"}
	typescriptLanguage = language{name: "typescript", grammar: typescript.GetLanguage, imports: ecmascriptImports, specifierType: "esm"}
)

// languages maps asset types to grammars.
var languages = map[string]language{
	"js":  javascriptLanguage,
	"mjs": javascriptLanguage,
	"cjs": javascriptLanguage,
	"jsx": javascriptLanguage,
	"ts":  typescriptLanguage,
	"mts": typescriptLanguage,
	"go": {
		name:          "go",
		grammar:       golang.GetLanguage,
		imports:       `(import_spec path: (interpreted_string_literal) @static)`,
		specifierType: "go",
	},
	"py": {
		name:    "python",
		grammar: python.GetLanguage,
		imports: `
(import_statement name: (dotted_name) @static)
(import_from_statement module_name: (dotted_name) @static)
`,
		specifierType: "python",
	},
	"java": {
		name:          "java",
		grammar:       java.GetLanguage,
		imports:       `(import_declaration (scoped_identifier) @static)`,
		specifierType: "java",
	},
	// Parsed and printed only.
	"cs": {name: "csharp", grammar: csharp.GetLanguage},
}

// Types returns the asset types the plugin can parse.
func Types() []string {
	types := make([]string, 0, len(languages))
	for assetType := range languages {
		types = append(types, assetType)
	}
	return types
}

// Supports reports whether assetType has a grammar.
func Supports(assetType string) bool {
	_, ok := languages[assetType]
	return ok
}
