package mapscmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindfoldco/mindfold/pkg/cliui"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <map-id>",
		Short: "Delete a map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ws, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			adapter, err := adapterFor(s, ws)
			if err != nil {
				return err
			}

			if err := adapter.RemoveMapFromList(cmd.Context(), identifier(args[0], ws)); err != nil {
				return fmt.Errorf("deleting map: %w", err)
			}

			fmt.Printf("\n  %s Deleted %s\n\n", cliui.SuccessMark, cliui.NameStyle.Render(args[0]))
			return nil
		},
	}
}
