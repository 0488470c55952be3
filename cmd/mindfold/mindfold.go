// Package mindfoldcmder
package mindfoldcmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/mindfoldco/mindfold/cmd/mindfold/auth"
	configcmder "github.com/mindfoldco/mindfold/cmd/mindfold/config"
	imagescmder "github.com/mindfoldco/mindfold/cmd/mindfold/images"
	mapscmder "github.com/mindfoldco/mindfold/cmd/mindfold/maps"
	servecmder "github.com/mindfoldco/mindfold/cmd/mindfold/serve"
	versioncmder "github.com/mindfoldco/mindfold/cmd/mindfold/version"
	workspacecmder "github.com/mindfoldco/mindfold/cmd/mindfold/workspace"
)

const mindfoldLongDesc string = `Mindfold manages mind maps as plain markdown.

Maps live as .md files in local workspace directories and, once you log
in, in your cloud workspace on the sync service.

Common commands:
  mindfold maps list       List maps across workspaces
  mindfold maps tree       Show the explorer tree
  mindfold auth login      Log in to the sync service
  mindfold serve           Run a self-hosted sync server`

const mindfoldShortDesc string = "Mindfold - mind maps as markdown"

func NewMindfoldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mindfold",
		Short: mindfoldShortDesc,
		Long:  mindfoldLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .mindfold directory location")

	// Add subcommands
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(mapscmder.NewMapsCmd())
	cmd.AddCommand(imagescmder.NewImagesCmd())
	cmd.AddCommand(workspacecmder.NewWorkspaceCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
