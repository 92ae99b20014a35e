package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const configHeader = `# treerate configuration
#
# [cost]        model = "unit" | "label_distance"; cer_weighted scales relabels by CER
# [tree]        root_policy = "first_key" | "synthetic_root"
# [input]       missing_hypothesis = "empty" | "skip"
# [output]      format = "text" | "json" | "yaml" | "csv"; sort_by = "name" | "rate"
#
# Every key can be overridden from the environment, e.g. TREERATE_COST_MODEL.

`

// MarshalConfig renders the configuration as TOML
func MarshalConfig(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(configHeader)

	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveConfig writes the configuration to path as TOML
func SaveConfig(cfg *Config, path string) error {
	data, err := MarshalConfig(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// DefaultConfigTOML returns the default configuration rendered as TOML
func DefaultConfigTOML() (string, error) {
	data, err := MarshalConfig(DefaultConfig())
	if err != nil {
		return "", err
	}
	return string(data), nil
}
