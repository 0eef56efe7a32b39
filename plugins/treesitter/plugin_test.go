package treesitter

import (
	"context"
	"testing"

	"github.com/meysamhadeli/assetcore/asset"
	"github.com/meysamhadeli/assetcore/asset/models"
	"github.com/meysamhadeli/assetcore/cache_store"
	"github.com/meysamhadeli/assetcore/dependency"
	"github.com/meysamhadeli/assetcore/environment"
	"github.com/meysamhadeli/assetcore/plugins"
	plugin_contracts "github.com/meysamhadeli/assetcore/plugins/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const javascriptSource = `import a from './a';
// comment survives
const b = require("./b");
export * from './c';
import('./d').then(load);
`

func newSourceAsset(t *testing.T, filePath, assetType, code string) (*asset.Asset, *cache_store.MemoryStore) {
	t.Helper()
	environments := environment.NewMerger()
	registry := plugins.NewRegistry(nil)
	registry.Register(Name, New)
	store := cache_store.NewMemoryStore()

	options := &asset.Options{
		Build:        &models.BuildOptions{ToolVersion: "test"},
		Cache:        store,
		Plugins:      registry,
		Environments: environments,
		Dependencies: dependency.NewFactory(environments),
	}
	value := asset.CreateAsset(environments, asset.AssetOptions{
		FilePath: filePath,
		Type:     assetType,
		Env:      &environment.Default,
		IsSource: true,
	})
	a := asset.NewAsset(value, options)
	a.SetCode(code)
	return a, store
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

func TestTransform_ExtractsJavaScriptImports(t *testing.T) {
	a, _ := newSourceAsset(t, "/project/index.js", "js", javascriptSource)
	result := transform(t, a)

	bySpecifier := map[string]models.DependencyOptions{}
	for _, dependency := range result.Dependencies {
		bySpecifier[dependency.Specifier] = dependency
	}

	require.Contains(t, bySpecifier, "./a")
	require.Contains(t, bySpecifier, "./b")
	require.Contains(t, bySpecifier, "./c")
	require.Contains(t, bySpecifier, "./d")
	assert.Equal(t, "esm", bySpecifier["./a"].SpecifierType)
	assert.Equal(t, "commonjs", bySpecifier["./b"].SpecifierType)
	assert.True(t, bySpecifier["./d"].IsAsync)
	assert.Equal(t, 0, bySpecifier["./a"].Loc.Start.Line)
	assert.Equal(t, 2, bySpecifier["./b"].Loc.Start.Line)
}

func TestTransform_IgnoresOtherCalls(t *testing.T) {
	a, _ := newSourceAsset(t, "/project/index.js", "js", `console.log("./not-a-dependency");`)
	result := transform(t, a)

	assert.Empty(t, result.Dependencies)
}

func TestPrint_IsLossless(t *testing.T) {
	sources := map[string]string{
		"js": javascriptSource,
		"go": "package main\n\nimport (\n\t\"fmt\"\n)\n\nfunc main() {\n\tfmt.Println(\"hi\") // greet\n}\n",
		"py": "import os\nfrom pathlib import Path\n\n\ndef main():\n    print(os.getcwd())\n",
	}

	for assetType, source := range sources {
		t.Run(assetType, func(t *testing.T) {
			a, _ := newSourceAsset(t, "/project/file."+assetType, assetType, source)
			result := transform(t, a)

			printed := Print(result.AST, a.FilePath())
			assert.Equal(t, source, string(printed.Code))
			assert.NotEmpty(t, printed.Map.Mappings)
			assert.Equal(t, []string{a.FilePath()}, printed.Map.Sources)
		})
	}
}

func TestTransform_GoImports(t *testing.T) {
	a, _ := newSourceAsset(t, "/project/main.go", "go", "package main\n\nimport (\n\t\"fmt\"\n\t\"os\"\n)\n")
	result := transform(t, a)

	var specifiers []string
	for _, dependency := range result.Dependencies {
		specifiers = append(specifiers, dependency.Specifier)
	}
	assert.ElementsMatch(t, []string{"fmt", "os"}, specifiers)
}

func TestPrint_MappingsPointAtOriginalPositions(t *testing.T) {
	a, _ := newSourceAsset(t, "/project/index.js", "js", "let x;\nlet y;\n")
	result := transform(t, a)

	printed := Print(result.AST, a.FilePath())
	for _, mapping := range printed.Map.Mappings {
		assert.Equal(t, mapping.Original, mapping.Generated)
	}
}

func TestChildAsset_RegeneratesThroughRegistry(t *testing.T) {
	ctx := context.Background()
	a, store := newSourceAsset(t, "/project/index.js", "js", javascriptSource)
	result := transform(t, a)

	child := a.CreateChildAsset(result, Name, "")
	assert.Len(t, child.GetDependencies(), 4)

	require.NoError(t, child.Commit(ctx, Name))
	assert.False(t, store.Has(child.Record().ContentKey), "tree-only commit defers printing")

	code, err := child.GetCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, javascriptSource, code)

	sourceMap, err := child.GetMap(ctx)
	require.NoError(t, err)
	require.NotNil(t, sourceMap)
	assert.NotEmpty(t, sourceMap.Mappings)
}

func TestTransform_ReusesOwnTree(t *testing.T) {
	a, _ := newSourceAsset(t, "/project/index.js", "js", "let x;")
	first := transform(t, a)

	child := a.CreateChildAsset(first, Name, "")
	second := transform(t, child)

	assert.Same(t, first.AST, second.AST)
}

func TestTransform_UnsupportedType(t *testing.T) {
	a, _ := newSourceAsset(t, "/project/readme.txt", "txt", "hello")
	plugin, err := New("", nil)
	require.NoError(t, err)

	_, err = plugin.(*Plugin).Transform(context.Background(), plugin_contracts.TransformRequest{Asset: a})
	assert.Error(t, err)
	assert.False(t, Supports("txt"))
	assert.True(t, Supports("ts"))
}
