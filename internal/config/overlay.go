// config/overlay.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// StoreEntry is one competitor store in the optional stores overlay file.
type StoreEntry struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
}

type storesFile struct {
	Stores []StoreEntry `yaml:"stores"`
}

// LoadStoresOverlay reads an optional stores.yml next to the user config.
// When present and non-empty it replaces the built-in store registry. A
// missing file is not an error.
func LoadStoresOverlay(path string) ([]StoreEntry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		// Missing overlay should not kill startup.
		return nil, nil
	}

	var sf storesFile
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return nil, err
	}
	return sf.Stores, nil
}
