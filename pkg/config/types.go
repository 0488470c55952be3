package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent mindfold configuration stored as
// config.toml in the .mindfold/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version int            `toml:"version"`
	Storage StorageConfig  `toml:"storage"`
	Cloud   CloudConfig    `toml:"cloud"`
	Server  ServerConfig   `toml:"server"`
	Session SessionConfig  `toml:"session"`
}

// StorageConfig holds local adapter settings.
type StorageConfig struct {
	// LocalRoot is the directory of the default local workspace.
	LocalRoot string `toml:"local_root,omitempty"`

	// HandleDBPath is the SQLite database remembering workspace
	// directory handles. Defaults to handles.db in the dotdir.
	HandleDBPath string `toml:"handle_db_path,omitempty"`

	// Watch enables the fsnotify watcher on local workspace roots.
	Watch bool `toml:"watch,omitempty"`
}

// CloudConfig holds settings for the remote sync service.
type CloudConfig struct {
	// BaseURL is the sync service endpoint, e.g. "https://sync.mindfold.app".
	BaseURL string `toml:"base_url,omitempty"`
}

// ServerConfig holds settings for the self-hosted sync server.
type ServerConfig struct {
	Listen      string `toml:"listen,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresURL string `toml:"postgres_url,omitempty"`
}

// SessionConfig holds adapter session settings.
type SessionConfig struct {
	// Mode selects the adapter set: "local" or "local+cloud".
	Mode string `toml:"mode,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.local_root": {
		get: func(c *Config) string { return c.Storage.LocalRoot },
		set: func(c *Config, v string) error { c.Storage.LocalRoot = v; return nil },
	},
	"storage.handle_db_path": {
		get: func(c *Config) string { return c.Storage.HandleDBPath },
		set: func(c *Config, v string) error { c.Storage.HandleDBPath = v; return nil },
	},
	"storage.watch": {
		get: func(c *Config) string { return strconv.FormatBool(c.Storage.Watch) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for storage.watch: %w", err)
			}
			c.Storage.Watch = b
			return nil
		},
	},
	"cloud.base_url": {
		get: func(c *Config) string { return c.Cloud.BaseURL },
		set: func(c *Config, v string) error { c.Cloud.BaseURL = v; return nil },
	},
	"server.listen": {
		get: func(c *Config) string { return c.Server.Listen },
		set: func(c *Config, v string) error { c.Server.Listen = v; return nil },
	},
	"server.sqlite_path": {
		get: func(c *Config) string { return c.Server.SQLitePath },
		set: func(c *Config, v string) error { c.Server.SQLitePath = v; return nil },
	},
	"server.postgres_url": {
		get: func(c *Config) string { return c.Server.PostgresURL },
		set: func(c *Config, v string) error { c.Server.PostgresURL = v; return nil },
	},
	"session.mode": {
		get: func(c *Config) string { return c.Session.Mode },
		set: func(c *Config, v string) error {
			if v != ModeLocal && v != ModeLocalCloud {
				return fmt.Errorf("invalid session.mode %q (expected %q or %q)", v, ModeLocal, ModeLocalCloud)
			}
			c.Session.Mode = v
			return nil
		},
	},
}
