package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed stack.yaml
var defaultStackYAML []byte

// StackConfig describes the frontend stack composed artifacts target: which
// entry files select which composition engine, which packages stay external
// to server builds, and the styling CDN referenced by the document shell.
type StackConfig struct {
	StylingCDN       string   `yaml:"styling_cdn"`
	MountElementID   string   `yaml:"mount_element_id"`
	ComponentEntries []string `yaml:"component_entries"`
	DocumentEntry    string   `yaml:"document_entry"`
	ExternalPackages []string `yaml:"external_packages"`
}

// LoadStackConfig parses the embedded defaults, then the override file when
// path is non-empty.
func LoadStackConfig(path string) (*StackConfig, error) {
	var cfg StackConfig
	if err := yaml.Unmarshal(defaultStackYAML, &cfg); err != nil {
		return nil, fmt.Errorf("parse embedded stack config: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read stack config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse stack config %s: %w", path, err)
		}
	}

	return &cfg, nil
}
