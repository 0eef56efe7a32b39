// Package markdown turns markdown assets into html assets.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/meysamhadeli/assetcore/asset/contracts"
	"github.com/meysamhadeli/assetcore/asset/models"
	plugin_contracts "github.com/meysamhadeli/assetcore/plugins/contracts"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"
)

const Name = "markdown"

// ConfigNames are looked up next to each markdown file.
var ConfigNames = []string{".markdownrc", "markdown.yaml", "markdown.yml"}

type options struct {
	gfm       bool
	unsafe    bool
	hardWraps bool
}

type Plugin struct {
	configPath string
	logger     *zap.Logger
}

func New(configPath string, logger *zap.Logger) (contracts.IPlugin, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Plugin{configPath: configPath, logger: logger}, nil
}

func (p *Plugin) Name() string { return Name }

// Transform renders the asset to html. Relative links and images become
// dependencies and the first level one heading becomes the "title" meta.
func (p *Plugin) Transform(ctx context.Context, req plugin_contracts.TransformRequest) ([]models.TransformerResult, error) {
	a := req.Asset

	config, err := a.GetConfig(ctx, ConfigNames, models.ConfigOptions{Parse: true})
	if err != nil {
		return nil, err
	}
	opts := parseOptions(config)

	code, err := a.GetCode(ctx)
	if err != nil {
		return nil, err
	}
	source := []byte(code)

	md := newMarkdown(opts)
	document := md.Parser().Parse(text.NewReader(source))

	var (
		dependencies []models.DependencyOptions
		title        string
	)
	err = ast.Walk(document, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			if n.Level == 1 && title == "" {
				title = plainText(n, source)
			}
		case *ast.Link:
			dependencies = appendLocal(dependencies, string(n.Destination), false)
		case *ast.Image:
			dependencies = appendLocal(dependencies, string(n.Destination), true)
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", a.FilePath(), err)
	}

	var buffer bytes.Buffer
	if err := md.Renderer().Render(&buffer, source, document); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", a.FilePath(), err)
	}

	meta := map[string]any{}
	if title != "" {
		meta["title"] = title
	}
	p.logger.Debug("rendered markdown", zap.String("path", a.FilePath()), zap.Int("links", len(dependencies)))

	return []models.TransformerResult{{
		Type:         "html",
		Content:      buffer.Bytes(),
		Meta:         meta,
		Dependencies: dependencies,
	}}, nil
}

func newMarkdown(opts options) goldmark.Markdown {
	var extensions []goldmark.Extender
	if opts.gfm {
		extensions = append(extensions, extension.GFM)
	}
	var rendererOptions []goldmark.Option
	if opts.unsafe {
		rendererOptions = append(rendererOptions, goldmark.WithRendererOptions(html.WithUnsafe()))
	}
	if opts.hardWraps {
		rendererOptions = append(rendererOptions, goldmark.WithRendererOptions(html.WithHardWraps()))
	}
	return goldmark.New(append([]goldmark.Option{goldmark.WithExtensions(extensions...)}, rendererOptions...)...)
}

func parseOptions(config any) options {
	opts := options{gfm: true}
	values, ok := config.(map[string]any)
	if !ok {
		return opts
	}
	if v, ok := values["gfm"].(bool); ok {
		opts.gfm = v
	}
	if v, ok := values["unsafe"].(bool); ok {
		opts.unsafe = v
	}
	if v, ok := values["hard_wraps"].(bool); ok {
		opts.hardWraps = v
	}
	return opts
}

// appendLocal keeps destinations inside the project: no scheme, no host
// and not a fragment of the same page.
func appendLocal(dependencies []models.DependencyOptions, destination string, isImage bool) []models.DependencyOptions {
	if destination == "" || strings.HasPrefix(destination, "#") {
		return dependencies
	}
	parsed, err := url.Parse(destination)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" {
		return dependencies
	}

	specifierType := "url"
	if isImage {
		specifierType = "image"
	}
	return append(dependencies, models.DependencyOptions{
		Specifier:     parsed.Path,
		SpecifierType: specifierType,
	})
}

func plainText(node ast.Node, source []byte) string {
	var builder strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			builder.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(builder.String())
}
