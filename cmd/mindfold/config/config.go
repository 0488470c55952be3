// Package configcmder provides the config command for managing persistent
// mindfold configuration stored in the .mindfold/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent mindfold configuration.

Configuration is stored as config.toml in the .mindfold/ directory and
provides default values for command flags. Environment variables with
the MINDFOLD_ prefix and CLI flags take precedence over config file
values.

Keys use dotted notation matching the TOML section structure:
  storage.local_root, storage.handle_db_path, storage.watch,
  cloud.base_url,
  server.listen, server.sqlite_path, server.postgres_url,
  session.mode

Use subcommands to get, set, or list configuration values:
  mindfold config set <key> <value>    Set a configuration value
  mindfold config get <key>            Get a configuration value
  mindfold config list                 List all configuration values

Examples:
  mindfold config set session.mode local+cloud
  mindfold config set cloud.base_url https://sync.mindfold.app
  mindfold config get storage.local_root
  mindfold config list`

const configShortDesc string = "Manage persistent mindfold configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
