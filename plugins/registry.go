// Package plugins resolves plugin names to plugin instances.
package plugins

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/meysamhadeli/assetcore/asset/contracts"
	"go.uber.org/zap"
)

var ErrUnknownPlugin = errors.New("unknown plugin")

// Factory builds a plugin for the config file at configPath, which may be
// empty.
type Factory func(configPath string, logger *zap.Logger) (contracts.IPlugin, error)

type instanceKey struct {
	name       string
	configPath string
}

// Registry builds each plugin once per name and config path.
type Registry struct {
	factories map[string]Factory
	instances map[instanceKey]contracts.IPlugin
	logger    *zap.Logger
	mutex     sync.Mutex
}

func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		factories: make(map[string]Factory),
		instances: make(map[instanceKey]contracts.IPlugin),
		logger:    logger,
	}
}

// Register adds factory under name, replacing any earlier registration.
func (r *Registry) Register(name string, factory Factory) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.factories[name] = factory
	for key := range r.instances {
		if key.name == name {
			delete(r.instances, key)
		}
	}
}

func (r *Registry) Load(ctx context.Context, name string, configPath string) (contracts.IPlugin, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	key := instanceKey{name: name, configPath: configPath}
	if plugin, ok := r.instances[key]; ok {
		return plugin, nil
	}

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlugin, name)
	}
	plugin, err := factory(configPath, r.logger.Named(name))
	if err != nil {
		return nil, fmt.Errorf("failed to create plugin %s: %w", name, err)
	}

	r.instances[key] = plugin
	return plugin, nil
}

// Names returns the registered plugin names in order.
func (r *Registry) Names() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
