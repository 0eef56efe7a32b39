package pipeline

import (
	"context"
	"testing"

	"github.com/meysamhadeli/assetcore/cache_store"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const root = "/project"

func newProject(t *testing.T, files map[string]string) (*cache_store.MemoryStore, *Runner) {
	t.Helper()
	ClearIgnoreCache()

	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, root+"/"+path, []byte(content), 0o644))
	}

	store := cache_store.NewMemoryStore()
	options := NewOptions(fs, root, "test", store, nil)
	return store, NewRunner(options, DefaultTransformers(), 4)
}

func TestRun_BuildsEveryFile(t *testing.T) {
	store, runner := newProject(t, map[string]string{
		"src/index.js": "import a from './a';\nconsole.log(a);\n",
		"src/a.js":     "export default 1;\n",
		"README.md":    "# Hello\n\nSee [a](./docs/a.md).\n",
		"notes.txt":    "plain",
	})

	results, err := runner.Run(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, root+"/README.md", results[0].FilePath)
	assert.Equal(t, "html", results[0].Type)
	assert.Equal(t, []string{"./docs/a.md"}, results[0].Dependencies)

	assert.Equal(t, root+"/notes.txt", results[1].FilePath)
	assert.Equal(t, "txt", results[1].Type)
	assert.EqualValues(t, 5, results[1].Size)

	assert.Equal(t, root+"/src/index.js", results[3].FilePath)
	assert.Equal(t, []string{"./a"}, results[3].Dependencies)

	for _, result := range results {
		assert.True(t, store.Has(result.ContentKey), result.FilePath)
	}
}

func TestBuildFile_OutputMatchesSource(t *testing.T) {
	source := "const x = require('./x');\n\n// trailing\n"
	store, runner := newProject(t, map[string]string{"index.js": source})

	results, err := runner.BuildFile(context.Background(), root+"/index.js")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.EqualValues(t, len(source), results[0].Size)
	assert.NotEmpty(t, results[0].MapKey)

	reader, err := store.GetStream(context.Background(), results[0].ContentKey)
	require.NoError(t, err)
	defer reader.Close()
	data, err := afero.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, source, string(data))
}

func TestWalk_SkipsIgnored(t *testing.T) {
	_, runner := newProject(t, map[string]string{
		"index.js":                 "",
		"node_modules/dep/x.js":    "",
		"build/out.js":             "",
		"debug.log":                "",
		"keep/secret.env":          "",
		IgnoreFile:                 "build/\n*.env\n",
		"assetcore-config.yml":     "",
		"nested/.git/HEAD":         "",
		"nested/distribution/a.js": "",
	})

	files, err := runner.Walk(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		root + "/index.js",
		root + "/nested/distribution/a.js",
	}, files)
}

func TestRun_UnknownPluginFails(t *testing.T) {
	_, runner := newProject(t, map[string]string{"a.css": "body{}"})
	runner.transformers["css"] = []string{"postcss"}

	_, err := runner.Run(context.Background(), root)
	assert.ErrorContains(t, err, "postcss")
}

func TestRun_Cancelled(t *testing.T) {
	_, runner := newProject(t, map[string]string{"a.js": "let a;"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_LogsCarryBuildID(t *testing.T) {
	ClearIgnoreCache()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, root+"/a.js", []byte("import b from './b';\n"), 0o644))

	core, logs := observer.New(zap.DebugLevel)
	options := NewOptions(fs, root, "test", cache_store.NewMemoryStore(), zap.New(core))
	runner := NewRunner(options, DefaultTransformers(), 1)
	require.NotEmpty(t, runner.BuildID())
	assert.Equal(t, options.Build.BuildID, runner.BuildID())

	_, err := runner.Run(context.Background(), root)
	require.NoError(t, err)

	entries := logs.FilterMessage("transformed asset").All()
	require.NotEmpty(t, entries)
	for _, entry := range entries {
		assert.Equal(t, runner.BuildID(), entry.ContextMap()["build_id"])
	}
}

func TestNewOptions_FreshBuildIDPerCall(t *testing.T) {
	fs := afero.NewMemMapFs()
	first := NewOptions(fs, root, "test", cache_store.NewMemoryStore(), nil)
	second := NewOptions(fs, root, "test", cache_store.NewMemoryStore(), nil)
	assert.NotEqual(t, first.Build.BuildID, second.Build.BuildID)
}
