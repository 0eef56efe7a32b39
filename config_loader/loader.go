// Package config_loader finds and parses tool configuration files next to
// an asset or in any of its parent directories.
package config_loader

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/meysamhadeli/assetcore/asset/models"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Loader struct {
	root   string
	logger *zap.Logger
}

// NewLoader returns a loader that never searches above root. An empty root
// searches up to the filesystem root.
func NewLoader(root string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if root != "" {
		root = filepath.Clean(root)
	}
	return &Loader{root: root, logger: logger.Named("config_loader")}
}

// Load checks every directory from fromPath's directory upwards and returns
// the first of names found. Within a directory names are tried in order.
func (l *Loader) Load(ctx context.Context, fs afero.Fs, fromPath string, names []string, parse bool) (*models.ConfigResult, error) {
	dir := filepath.Dir(filepath.Clean(fromPath))

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, name := range names {
			candidate := filepath.Join(dir, name)
			exists, err := afero.Exists(fs, candidate)
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", candidate, err)
			}
			if !exists {
				continue
			}
			return l.read(fs, candidate, parse)
		}

		if dir == l.root {
			return nil, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

func (l *Loader) read(fs afero.Fs, path string, parse bool) (*models.ConfigResult, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	result := &models.ConfigResult{
		FilePath: path,
		Files:    []models.File{{FilePath: path, Hash: fmt.Sprintf("%016x", xxh3.Hash(data))}},
	}
	if !parse {
		result.Config = string(data)
		return result, nil
	}

	config, err := Parse(path, data)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("loaded config", zap.String("path", path))
	result.Config = config
	return result, nil
}

// Parse decodes data by the format its file name implies. Files such as
// .babelrc with no extension are read as JSON with comments; unknown
// formats are returned as text.
func Parse(path string, data []byte) (any, error) {
	var (
		config any
		err    error
	)

	base := filepath.Base(path)
	switch ext := strings.ToLower(filepath.Ext(base)); {
	case ext == ".json" || (ext == base && strings.HasSuffix(base, "rc")):
		err = json.Unmarshal(jsonc.ToJSON(data), &config)
	case ext == ".yaml" || ext == ".yml":
		err = yaml.Unmarshal(data, &config)
	case ext == ".toml":
		var table map[string]any
		err = toml.Unmarshal(data, &table)
		config = table
	default:
		return string(data), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return config, nil
}
