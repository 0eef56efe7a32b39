package asset

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/meysamhadeli/assetcore/asset/contracts"
	"github.com/meysamhadeli/assetcore/asset/models"
	"github.com/meysamhadeli/assetcore/cache_store"
	"github.com/meysamhadeli/assetcore/dependency"
	"github.com/meysamhadeli/assetcore/environment"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// printerPlugin prints a tree by concatenating its leaves.
type printerPlugin struct {
	name   string
	calls  int
	output string
	srcMap *models.SourceMap
	err    error
	during func(ctx context.Context)
}

func (p *printerPlugin) Name() string { return p.name }

func (p *printerPlugin) Generate(ctx context.Context, req contracts.GenerateRequest) (*models.GenerateResult, error) {
	p.calls++
	if p.during != nil {
		p.during(ctx)
	}
	if p.err != nil {
		return nil, p.err
	}

	output := p.output
	if output == "" {
		var builder strings.Builder
		req.AST.Root.Walk(func(node *models.Node) bool {
			if node.IsLeaf() {
				builder.WriteString(node.Leading)
				builder.WriteString(node.Text)
			}
			return true
		})
		output = builder.String()
	}
	return &models.GenerateResult{Code: []byte(output), Map: p.srcMap}, nil
}

// namedPlugin cannot generate.
type namedPlugin struct{ name string }

func (p namedPlugin) Name() string { return p.name }

type pluginLoader struct {
	plugins map[string]contracts.IPlugin
}

func (l *pluginLoader) Load(ctx context.Context, name, configPath string) (contracts.IPlugin, error) {
	plugin, ok := l.plugins[name]
	if !ok {
		return nil, errors.New("no such plugin")
	}
	return plugin, nil
}

type configLoader struct {
	results map[string]*models.ConfigResult
	calls   [][]string
}

func (l *configLoader) Load(ctx context.Context, fs afero.Fs, fromPath string, names []string, parse bool) (*models.ConfigResult, error) {
	l.calls = append(l.calls, names)
	for _, name := range names {
		if result, ok := l.results[name]; ok {
			return result, nil
		}
	}
	return nil, nil
}

// failingStore fails every write after delegating reads.
type failingStore struct {
	contracts.ICacheStore
}

func (failingStore) Set(ctx context.Context, key string, value any) error {
	return errors.New("store unavailable")
}

func (failingStore) SetStream(ctx context.Context, key string, r io.Reader) error {
	return errors.New("store unavailable")
}

// contextStore refuses reads on a done context, as the file store does.
type contextStore struct {
	contracts.ICacheStore
}

func (s contextStore) GetStream(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.ICacheStore.GetStream(ctx, key)
}

type fixture struct {
	store   *cache_store.MemoryStore
	plugin  *printerPlugin
	options *Options
	configs *configLoader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	environments := environment.NewMerger()
	plugin := &printerPlugin{name: "printer"}
	store := cache_store.NewMemoryStore()
	configs := &configLoader{results: map[string]*models.ConfigResult{}}

	return &fixture{
		store:   store,
		plugin:  plugin,
		configs: configs,
		options: &Options{
			Build:        &models.BuildOptions{ToolVersion: "1.0.0", Mode: "development"},
			Cache:        store,
			Plugins:      &pluginLoader{plugins: map[string]contracts.IPlugin{"printer": plugin, "named": namedPlugin{name: "named"}}},
			Environments: environments,
			Dependencies: dependency.NewFactory(environments),
			Configs:      configs,
			FS:           afero.NewMemMapFs(),
		},
	}
}

func (f *fixture) newAsset(t *testing.T, filePath, assetType string) *Asset {
	t.Helper()
	value := CreateAsset(f.options.Environments, AssetOptions{
		FilePath: filePath,
		Type:     assetType,
		Env:      &environment.Default,
		IsSource: true,
		Plugin:   "printer",
	})
	require.NotEmpty(t, value.ID)
	return NewAsset(value, f.options)
}

// withStore returns a copy of the fixture's options backed by store.
func (f *fixture) withStore(store contracts.ICacheStore) *Options {
	options := *f.options
	options.Cache = store
	return &options
}

func testTree(words ...string) *models.AST {
	root := &models.Node{Kind: "program"}
	for i, word := range words {
		leading := ""
		if i > 0 {
			leading = " "
		}
		root.Children = append(root.Children, &models.Node{Kind: "word", Text: word, Leading: leading})
	}
	return &models.AST{Type: "words", Version: "1", Root: root}
}
