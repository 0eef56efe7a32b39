package markdown

import (
	"context"
	"testing"

	"github.com/meysamhadeli/assetcore/asset"
	"github.com/meysamhadeli/assetcore/asset/models"
	"github.com/meysamhadeli/assetcore/cache_store"
	"github.com/meysamhadeli/assetcore/config_loader"
	"github.com/meysamhadeli/assetcore/dependency"
	"github.com/meysamhadeli/assetcore/environment"
	plugin_contracts "github.com/meysamhadeli/assetcore/plugins/contracts"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const document = `# Getting started

See [the guide](./guide.md#install) and [the site](https://example.com).

![logo](images/logo.png)

<div>raw</div>
`

func newMarkdownAsset(t *testing.T, fs afero.Fs, code string) *asset.Asset {
	t.Helper()
	environments := environment.NewMerger()
	options := &asset.Options{
		Build:        &models.BuildOptions{ToolVersion: "test"},
		Cache:        cache_store.NewMemoryStore(),
		Environments: environments,
		Dependencies: dependency.NewFactory(environments),
		Configs:      config_loader.NewLoader("/project", nil),
		FS:           fs,
	}
	value := asset.CreateAsset(environments, asset.AssetOptions{
		FilePath: "/project/docs/readme.md",
		Type:     "md",
		Env:      &environment.Default,
		IsSource: true,
	})
	a := asset.NewAsset(value, options)
	a.SetCode(code)
	return a
}

func transform(t *testing.T, a *asset.Asset) models.TransformerResult {
	t.Helper()
	plugin, err := New("", nil)
	require.NoError(t, err)
	results, err := plugin.(*Plugin).Transform(context.Background(), plugin_contracts.TransformRequest{Asset: a})
	require.NoError(t, err)
	require.Len(t, results, 1)
	return results[0]
}

func TestTransform_RendersHTMLChild(t *testing.T) {
	a := newMarkdownAsset(t, afero.NewMemMapFs(), document)
	result := transform(t, a)

	assert.Equal(t, "html", result.Type)
	assert.Contains(t, string(result.Content), "<h1>Getting started</h1>")
	assert.NotContains(t, string(result.Content), "<div>raw</div>")
	assert.Equal(t, "Getting started", result.Meta["title"])

	var specifiers []string
	for _, dependency := range result.Dependencies {
		specifiers = append(specifiers, dependency.Specifier)
	}
	assert.ElementsMatch(t, []string{"./guide.md", "images/logo.png"}, specifiers)
}

func TestTransform_ReadsConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/project/markdown.yaml", []byte("unsafe: true\n"), 0644))

	a := newMarkdownAsset(t, fs, document)
	result := transform(t, a)

	assert.Contains(t, string(result.Content), "<div>raw</div>")
	assert.Contains(t, a.Record().IncludedFiles, "/project/markdown.yaml")
}

func TestTransform_ChildStartsNewPipeline(t *testing.T) {
	ctx := context.Background()
	a := newMarkdownAsset(t, afero.NewMemMapFs(), document)
	a.AddDependency(models.DependencyOptions{Specifier: "./stale"})
	a.AddIncludedFile(models.File{FilePath: "/project/docs/partial.md"})

	child := a.CreateChildAsset(transform(t, a), Name, "")

	assert.Equal(t, "html", child.Type())
	assert.Len(t, child.GetDependencies(), 2)
	assert.Contains(t, child.Record().IncludedFiles, "/project/docs/partial.md")

	require.NoError(t, child.Commit(ctx, Name))
	assert.Positive(t, child.Record().Stats.Size)
}
