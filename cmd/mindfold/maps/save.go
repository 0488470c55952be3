package mapscmder

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mindfoldco/mindfold/pkg/cliui"
	"github.com/mindfoldco/mindfold/pkg/storage"
)

const saveLongDesc string = `Save markdown as a map.

Reads markdown from the given file, or from stdin when no file is
given, and stores it under the map id. Existing content is replaced.

Examples:
  mindfold maps save notes/roadmap roadmap.md
  cat roadmap.md | mindfold maps save notes/roadmap`

func newSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <map-id> [file]",
		Short: "Save markdown as a map",
		Long:  saveLongDesc,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content []byte
			var err error
			if len(args) == 2 {
				content, err = os.ReadFile(args[1])
			} else {
				content, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return fmt.Errorf("reading markdown: %w", err)
			}

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

			if err := md.SaveMapMarkdown(cmd.Context(), identifier(args[0], ws), string(content)); err != nil {
				return fmt.Errorf("saving map: %w", err)
			}

			fmt.Printf("\n  %s Saved %s\n\n", cliui.SuccessMark, cliui.NameStyle.Render(args[0]))
			return nil
		},
	}
}
