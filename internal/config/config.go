// Package config loads and validates stevedore.toml, the per-workspace
// release configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/stevedore/internal/messages"
	"github.com/conn-castle/stevedore/internal/plan"
)

// FileName is the configuration file looked up at the workspace root.
const FileName = "stevedore.toml"

// ErrValidation is a sentinel that wraps config validation failures
// (as opposed to TOML syntax or filesystem errors). Callers can use
// errors.Is(err, ErrValidation) to distinguish them.
var ErrValidation = errors.New(messages.ConfigValidationFailed)

// ErrMissing is a sentinel for an absent configuration file.
var ErrMissing = errors.New(messages.ConfigMissing)

// Config is the validated stevedore.toml content.
type Config struct {
	Bump    BumpConfig    `toml:"bump"`
	Publish PublishConfig `toml:"publish"`
}

// BumpConfig controls version propagation.
type BumpConfig struct {
	// Exclude lists crates whose own version is pinned; their manifests
	// still have dependency requirements rewritten.
	Exclude       []string            `toml:"exclude"`
	Documentation DocumentationConfig `toml:"documentation"`
}

// DocumentationConfig selects documentation files whose TOML snippets
// are rewritten during a bump.
type DocumentationConfig struct {
	Globs []string `toml:"globs"`
}

// PublishConfig controls publish planning.
type PublishConfig struct {
	Exclude []string `toml:"exclude"`
	Order   []string `toml:"order"`
	// StripPatches is decoded loosely because the file accepts both a
	// string strategy and a literal false.
	StripPatches any `toml:"strip_patches"`
}

// StripSetting normalizes the raw strip_patches value.
func (p PublishConfig) StripSetting() (plan.StripSetting, error) {
	switch value := p.StripPatches.(type) {
	case nil:
		return plan.StripUnset, nil
	case bool:
		if !value {
			return plan.StripDisabled, nil
		}
	case string:
		switch value {
		case string(plan.StripAll):
			return plan.StripAll, nil
		case string(plan.StripPerCrate):
			return plan.StripPerCrate, nil
		}
	}
	return plan.StripUnset, fmt.Errorf("%w: %s", ErrValidation, messages.ConfigStripPatchesRule)
}

// Load reads stevedore.toml from the workspace root. The file is
// required; running against an unconfigured workspace is treated as an
// error rather than silently using defaults.
func Load(workspaceRoot string) (*Config, error) {
	path := filepath.Join(workspaceRoot, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: "+messages.ConfigMissingFileFmt, ErrMissing, path)
		}
		return nil, fmt.Errorf(messages.ConfigInvalidFmt, path, err)
	}
	return Parse(data, path)
}

// Parse parses and validates config TOML data. source is used in error
// messages.
func Parse(data []byte, source string) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf(messages.ConfigInvalidFmt, source, err)
	}
	if err := decodeStrict(data); err != nil {
		return nil, fmt.Errorf("%w: "+messages.ConfigUnknownKeysFmt, ErrValidation, source, err)
	}
	if _, err := cfg.Publish.StripSetting(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// decodeStrict re-decodes the TOML data with strict unknown-field
// rejection, catching keys that toml.Unmarshal silently ignores.
func decodeStrict(data []byte) error {
	var cfg Config
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(&cfg)
}
