package mapscmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mindfoldco/mindfold/pkg/cliui"
	"github.com/mindfoldco/mindfold/pkg/mapdoc"
	"github.com/mindfoldco/mindfold/pkg/storage"
)

const treeLongDesc string = `Show the explorer tree of a workspace.

Folders sort before files; both sort alphabetically. Cloud virtual
folders appear until the session ends.

Examples:
  mindfold maps tree
  mindfold maps tree --workspace cloud`

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show the explorer tree",
		Long:  treeLongDesc,
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

			explorer, ok := adapter.(storage.ExplorerStore)
			if !ok {
				return storage.ErrNotSupported{Backend: ws, Op: "explorer tree"}
			}

			items, err := explorer.ExplorerTree(cmd.Context())
			if err != nil {
				return fmt.Errorf("building explorer tree: %w", err)
			}

			if len(items) == 0 {
				fmt.Printf("\n  %s Empty workspace.\n\n", cliui.DimStyle.Render("●"))
				return nil
			}

			fmt.Println()
			printTree(items, 1)
			fmt.Println()

			return nil
		},
	}
}

func printTree(items []*mapdoc.ExplorerItem, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, item := range items {
		if item.Type == mapdoc.ExplorerFolder {
			fmt.Printf("%s%s\n", indent, cliui.FolderStyle.Render(item.Name+"/"))
			printTree(item.Children, depth+1)
			continue
		}
		fmt.Printf("%s%s\n", indent, cliui.ValueStyle.Render(item.Name))
	}
}

func newMkdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create an explorer folder",
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

			explorer, ok := adapter.(storage.ExplorerStore)
			if !ok {
				return storage.ErrNotSupported{Backend: ws, Op: "folder creation"}
			}

			if err := explorer.CreateFolder(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("creating folder: %w", err)
			}

			fmt.Printf("\n  %s Created %s\n\n",
				cliui.SuccessMark, cliui.FolderStyle.Render(args[0]+"/"))
			return nil
		},
	}
}
