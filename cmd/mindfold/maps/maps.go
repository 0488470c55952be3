// Package mapscmder provides commands for working with mind maps and
// the explorer tree.
package mapscmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindfoldco/mindfold/pkg/config"
	"github.com/mindfoldco/mindfold/pkg/mapdoc"
	"github.com/mindfoldco/mindfold/pkg/session"
	"github.com/mindfoldco/mindfold/pkg/storage"
)

const mapsLongDesc string = `Work with mind maps across workspaces.

Maps are stored as markdown files: the first heading is the map title
and nested list items are the nodes. The --workspace flag selects which
workspace to operate on; it defaults to the local workspace.

Examples:
  mindfold maps list
  mindfold maps tree
  mindfold maps show notes/roadmap
  mindfold maps save notes/roadmap roadmap.md
  mindfold maps list --workspace cloud`

const mapsShortDesc string = "Work with mind maps"

func NewMapsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maps",
		Short: mapsShortDesc,
		Long:  mapsLongDesc,
	}

	cmd.PersistentFlags().StringP("workspace", "w", "", "Workspace to operate on (defaults to local)")

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newSaveCmd())
	cmd.AddCommand(newRemoveCmd())
	cmd.AddCommand(newTreeCmd())
	cmd.AddCommand(newMkdirCmd())

	return cmd
}

// openSession opens the adapter stack for a maps command. The cloud
// adapter set is used whenever the cloud workspace is requested.
func openSession(cmd *cobra.Command) (*session.Session, string, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	debug, _ := cmd.Flags().GetBool("debug")
	ws, _ := cmd.Flags().GetString("workspace")

	mode := ""
	if ws == mapdoc.CloudWorkspaceID {
		mode = config.ModeLocalCloud
	}

	s, err := session.Open(cmd.Context(), session.Options{
		ConfigDir: configDir,
		Debug:     debug,
		Mode:      mode,
	})
	if err != nil {
		return nil, "", err
	}

	return s, ws, nil
}

// adapterFor resolves the adapter serving the requested workspace.
func adapterFor(s *session.Session, ws string) (storage.Adapter, error) {
	if s.Manager != nil {
		return s.Manager.AdapterForWorkspace(ws)
	}
	if ws == mapdoc.CloudWorkspaceID {
		return nil, fmt.Errorf("cloud workspace requires 'session.mode = \"local+cloud\"'")
	}
	return s.Adapter, nil
}

// identifier builds the map identifier for a map id argument.
func identifier(mapID, ws string) mapdoc.MapIdentifier {
	if ws == "" {
		ws = mapdoc.LocalWorkspaceID
	}
	return mapdoc.MapIdentifier{MapID: mapID, WorkspaceID: ws}
}
