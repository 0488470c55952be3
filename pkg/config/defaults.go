package config

import (
	"os"
	"path/filepath"
)

const (
	// ModeLocal runs with only the local adapter.
	ModeLocal = "local"

	// ModeLocalCloud runs with the local adapter plus the shared cloud adapter.
	ModeLocalCloud = "local+cloud"
)

// NewDefaultConfig returns a fully-populated Config with sane defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			LocalRoot: defaultLocalRoot(),
		},
		Cloud: CloudConfig{
			BaseURL: "http://localhost:8080",
		},
		Server: ServerConfig{
			Listen: ":8080",
		},
		Session: SessionConfig{
			Mode: ModeLocal,
		},
	}
}

// defaultLocalRoot is ~/MindfoldMaps, falling back to ./MindfoldMaps when
// the home directory cannot be resolved.
func defaultLocalRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "MindfoldMaps"
	}
	return filepath.Join(home, "MindfoldMaps")
}
