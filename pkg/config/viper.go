package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/mindfoldco/mindfold/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the MINDFOLD_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound by the command)
//  2. Environment variables (MINDFOLD_CLOUD_BASE_URL, MINDFOLD_SERVER_LISTEN, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: MINDFOLD_CLOUD_BASE_URL, MINDFOLD_SESSION_MODE, etc.
	v.SetEnvPrefix("MINDFOLD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.local_root", d.Storage.LocalRoot)
	v.SetDefault("storage.handle_db_path", d.Storage.HandleDBPath)
	v.SetDefault("storage.watch", d.Storage.Watch)

	// Cloud
	v.SetDefault("cloud.base_url", d.Cloud.BaseURL)

	// Server
	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.sqlite_path", d.Server.SQLitePath)
	v.SetDefault("server.postgres_url", d.Server.PostgresURL)

	// Session
	v.SetDefault("session.mode", d.Session.Mode)
}
