// Package treesitter parses source assets into serializable syntax trees,
// records their imports as dependencies and prints trees back to source.
package treesitter

import (
	"context"
	"fmt"
	"strings"

	"github.com/meysamhadeli/assetcore/asset/contracts"
	"github.com/meysamhadeli/assetcore/asset/models"
	plugin_contracts "github.com/meysamhadeli/assetcore/plugins/contracts"
	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"
)

const (
	Name      = "treesitter"
	astPrefix = "tree-sitter-"
	version   = "1"
)

type Plugin struct {
	configPath string
	logger     *zap.Logger
}

// New is the registry factory for the plugin.
func New(configPath string, logger *zap.Logger) (contracts.IPlugin, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Plugin{configPath: configPath, logger: logger}, nil
}

func (p *Plugin) Name() string { return Name }

// Transform parses the asset and hands back the tree together with the
// imports it found. A tree this plugin produced earlier is reused as is.
func (p *Plugin) Transform(ctx context.Context, req plugin_contracts.TransformRequest) ([]models.TransformerResult, error) {
	a := req.Asset
	lang, ok := languages[a.Type()]
	if !ok {
		return nil, fmt.Errorf("no grammar for asset type %q", a.Type())
	}

	existing, err := a.GetAST(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Type == astPrefix+lang.name {
		return []models.TransformerResult{{Type: a.Type(), AST: existing}}, nil
	}

	code, err := a.GetCode(ctx)
	if err != nil {
		return nil, err
	}
	source := []byte(code)

	parser := sitter.NewParser()
	parser.SetLanguage(lang.grammar())
	parsed, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", a.FilePath(), err)
	}
	root := parsed.RootNode()
	if root.HasError() {
		p.logger.Debug("syntax errors in source", zap.String("path", a.FilePath()))
	}

	dependencies, err := extractImports(lang, root, source, a.FilePath())
	if err != nil {
		return nil, err
	}

	return []models.TransformerResult{{
		Type: a.Type(),
		AST: &models.AST{
			Type:    astPrefix + lang.name,
			Version: version,
			Root:    convertTree(root, source),
		},
		Dependencies: dependencies,
		Meta: map[string]any{
			"language":   lang.name,
			"has_errors": root.HasError(),
		},
	}}, nil
}

// Generate prints a tree produced by Transform.
func (p *Plugin) Generate(ctx context.Context, req contracts.GenerateRequest) (*models.GenerateResult, error) {
	if req.AST == nil || !strings.HasPrefix(req.AST.Type, astPrefix) {
		return nil, fmt.Errorf("cannot print tree of type %q", astType(req.AST))
	}
	return Print(req.AST, req.Asset.FilePath()), nil
}

func astType(tree *models.AST) string {
	if tree == nil {
		return ""
	}
	return tree.Type
}

func extractImports(lang language, root *sitter.Node, source []byte, filePath string) ([]models.DependencyOptions, error) {
	if lang.imports == "" {
		return nil, nil
	}

	query, err := sitter.NewQuery([]byte(lang.imports), lang.grammar())
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s import query: %w", lang.name, err)
	}
	cursor := sitter.NewQueryCursor()
	cursor.Exec(query, root)

	var dependencies []models.DependencyOptions
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}

		callee := ""
		for _, capture := range match.Captures {
			if query.CaptureNameForId(capture.Index) == captureCallee {
				callee = capture.Node.Content(source)
			}
		}

		for _, capture := range match.Captures {
			name := query.CaptureNameForId(capture.Index)
			options := models.DependencyOptions{
				Specifier: strings.Trim(capture.Node.Content(source), "\"'`"),
				Loc: &models.SourceLocation{
					FilePath: filePath,
					Start:    position(capture.Node.StartPoint()),
					End:      position(capture.Node.EndPoint()),
				},
			}

			switch name {
			case captureStatic:
				options.SpecifierType = lang.specifierType
			case captureDynamic:
				options.SpecifierType = lang.specifierType
				options.IsAsync = true
			case captureRequire:
				if callee != "require" {
					continue
				}
				options.SpecifierType = "commonjs"
			default:
				continue
			}
			dependencies = append(dependencies, options)
		}
	}
	return dependencies, nil
}
