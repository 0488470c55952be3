package mapscmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindfoldco/mindfold/pkg/cliui"
	"github.com/mindfoldco/mindfold/pkg/utils"
)

const listLongDesc string = `List all maps in a workspace.

Prints one line per map with its id, title and last update time.

Examples:
  mindfold maps list
  mindfold maps list --workspace cloud`

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List maps in a workspace",
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, ws, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			adapter, err := adapterFor(s, ws)
			if err != nil {
				return err
			}

			maps, err := adapter.LoadAllMaps(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading maps: %w", err)
			}

			if len(maps) == 0 {
				fmt.Printf("\n  %s No maps found.\n\n", cliui.DimStyle.Render("●"))
				return nil
			}

			fmt.Printf("\n  %s\n\n", cliui.HeaderStyle.Render("Maps"))
			for _, m := range maps {
				updated := ""
				if !m.UpdatedAt.IsZero() {
					updated = m.UpdatedAt.Format("2006-01-02 15:04")
				}
				fmt.Printf("  %s  %s  %s\n",
					cliui.NameStyle.Render(m.ID.MapID),
					cliui.ValueStyle.Render(utils.Truncate(m.Title, 48)),
					cliui.DimStyle.Render(updated),
				)
			}
			fmt.Println()

			return nil
		},
	}
}
