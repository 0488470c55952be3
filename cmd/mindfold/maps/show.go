package mapscmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindfoldco/mindfold/pkg/cliui"
	"github.com/mindfoldco/mindfold/pkg/storage"
)

const showLongDesc string = `Show a map's markdown.

Renders the map in the terminal. Use --raw to print the markdown
exactly as stored.

Examples:
  mindfold maps show notes/roadmap
  mindfold maps show notes/roadmap --raw`

func newShowCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <map-id>",
		Short: "Show a map's markdown",
		Long:  showLongDesc,
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

			md, ok := adapter.(storage.MarkdownStore)
			if !ok {
				return storage.ErrNotSupported{Backend: ws, Op: "markdown access"}
			}

			content, err := md.MapMarkdown(cmd.Context(), identifier(args[0], ws))
			if err != nil {
				return fmt.Errorf("reading map: %w", err)
			}

			if raw {
				fmt.Print(content)
				return nil
			}

			rendered, err := cliui.RenderMarkdown(content)
			if err != nil {
				// Terminal rendering is cosmetic; fall back to plain.
				fmt.Print(content)
				return nil
			}

			fmt.Print(rendered)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown without rendering")

	return cmd
}
