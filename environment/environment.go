// Package environment provides the default environment merge and
// fingerprint used when deriving asset and dependency ids.
package environment

import (
	"encoding/hex"
	"maps"

	"github.com/meysamhadeli/assetcore/asset/models"
	"github.com/meysamhadeli/assetcore/codec"
	"github.com/zeebo/xxh3"
)

// Default is the environment assumed when an asset declares none.
var Default = models.Environment{
	Context:      "browser",
	OutputFormat: "global",
}

type Merger struct{}

func NewMerger() *Merger {
	return &Merger{}
}

// Merge applies override on top of parent. Set override fields win; the
// engines map is merged key by key. A nil override returns parent itself.
func (m *Merger) Merge(parent *models.Environment, override *models.EnvironmentOptions) *models.Environment {
	if parent == nil {
		base := Default
		parent = &base
	}
	if override == nil {
		return parent
	}

	merged := *parent
	if override.Context != nil {
		merged.Context = *override.Context
	}
	if override.IncludeNodeModules != nil {
		merged.IncludeNodeModules = *override.IncludeNodeModules
	}
	if override.OutputFormat != nil {
		merged.OutputFormat = *override.OutputFormat
	}
	if override.IsLibrary != nil {
		merged.IsLibrary = *override.IsLibrary
	}
	if override.Minify != nil {
		merged.Minify = *override.Minify
	}
	if len(parent.Engines) > 0 || len(override.Engines) > 0 {
		merged.Engines = make(map[string]string, len(parent.Engines)+len(override.Engines))
		maps.Copy(merged.Engines, parent.Engines)
		maps.Copy(merged.Engines, override.Engines)
	}
	return &merged
}

// Hash fingerprints env from its deterministic encoding, so two
// environments with equal fields always share a fingerprint.
func (m *Merger) Hash(env *models.Environment) string {
	if env == nil {
		base := Default
		env = &base
	}
	encoded, err := codec.Marshal(env)
	if err != nil {
		// Environment holds only strings, bools and a string map.
		panic("environment: encoding fingerprint: " + err.Error())
	}
	sum := xxh3.Hash128(encoded).Bytes()
	return hex.EncodeToString(sum[:])
}
