// Package workspacecmder provides commands for managing workspaces.
package workspacecmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindfoldco/mindfold/pkg/cliui"
	"github.com/mindfoldco/mindfold/pkg/mapdoc"
	"github.com/mindfoldco/mindfold/pkg/session"
	"github.com/mindfoldco/mindfold/pkg/storage"
)

const workspaceLongDesc string = `Manage workspaces.

The default local workspace always exists. Additional local workspaces
point at directories of your choosing. The cloud workspace appears when
you are logged in and can only be removed by logging out.

Examples:
  mindfold workspace list
  mindfold workspace add notes ~/Notes
  mindfold workspace remove ws_9f2c...`

const workspaceShortDesc string = "Manage workspaces"

func NewWorkspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workspace",
		Aliases: []string{"ws"},
		Short:   workspaceShortDesc,
		Long:    workspaceLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newRemoveCmd())

	return cmd
}

func openSession(cmd *cobra.Command) (*session.Session, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	debug, _ := cmd.Flags().GetBool("debug")

	return session.Open(cmd.Context(), session.Options{
		ConfigDir: configDir,
		Debug:     debug,
	})
}

// workspaceStore resolves the adapter half that manages workspaces.
func workspaceStore(s *session.Session) (storage.WorkspaceStore, error) {
	var adapter storage.Adapter = s.Adapter
	if s.Manager != nil {
		adapter = s.Manager.LocalAdapter()
	}

	store, ok := adapter.(storage.WorkspaceStore)
	if !ok {
		return nil, storage.ErrNotSupported{Backend: "current", Op: "workspace management"}
	}

	return store, nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var workspaces []mapdoc.Workspace
			if s.Manager != nil {
				workspaces, err = s.Manager.AvailableWorkspaces(cmd.Context())
			} else {
				var store storage.WorkspaceStore
				store, err = workspaceStore(s)
				if err == nil {
					workspaces, err = store.ListWorkspaces(cmd.Context())
				}
			}
			if err != nil {
				return fmt.Errorf("listing workspaces: %w", err)
			}

			fmt.Printf("\n  %s\n\n", cliui.HeaderStyle.Render("Workspaces"))
			for _, ws := range workspaces {
				marker := cliui.DimStyle.Render("fixed")
				if ws.Removable {
					marker = ""
				}
				fmt.Printf("  %s  %s  %s  %s\n",
					cliui.NameStyle.Render(ws.ID),
					cliui.ValueStyle.Render(ws.Name),
					cliui.DimStyle.Render(string(ws.Type)),
					marker,
				)
			}
			fmt.Println()

			return nil
		},
	}
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <directory>",
		Short: "Add a local workspace",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			store, err := workspaceStore(s)
			if err != nil {
				return err
			}

			ws, err := store.AddWorkspace(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("adding workspace: %w", err)
			}

			if err := s.Service.AddLocalWorkspace(ws); err != nil {
				return err
			}

			fmt.Printf("\n  %s Added workspace %s %s\n\n",
				cliui.SuccessMark,
				cliui.NameStyle.Render(ws.Name),
				cliui.DimStyle.Render("("+ws.ID+")"),
			)
			return nil
		},
	}
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <workspace-id>",
		Short: "Remove a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			store, err := workspaceStore(s)
			if err != nil {
				return err
			}

			if err := store.RemoveWorkspace(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("removing workspace: %w", err)
			}

			if _, ok := s.Service.Workspace(args[0]); ok {
				if err := s.Service.RemoveWorkspace(args[0]); err != nil {
					return err
				}
			}

			fmt.Printf("\n  %s Removed workspace %s\n\n",
				cliui.SuccessMark, cliui.NameStyle.Render(args[0]))
			return nil
		},
	}
}
