package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename     string
	allowMissing bool
}

// NewYAMLProvider creates a new YAML configuration provider. When
// allowMissing is set, a missing file yields the defaults instead of an error.
func NewYAMLProvider(filename string, allowMissing bool) *YAMLProvider {
	return &YAMLProvider{
		filename:     filename,
		allowMissing: allowMissing,
	}
}

// LoadConfig reads the file over the defaults, applies OYSTERDASH_*
// environment overrides and validates the result.
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfg := DefaultConfig()

	cfgFile, err := os.ReadFile(y.filename)
	switch {
	case err == nil:
		if err := yaml.UnmarshalStrict(cfgFile, cfg); err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", y.filename, err)
		}
	case errors.Is(err, fs.ErrNotExist) && y.allowMissing:
		// defaults only
	default:
		return nil, err
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
