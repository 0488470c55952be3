// Package imagescmder provides commands for image attachments stored
// alongside maps.
package imagescmder

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mindfoldco/mindfold/pkg/cliui"
	"github.com/mindfoldco/mindfold/pkg/config"
	"github.com/mindfoldco/mindfold/pkg/mapdoc"
	"github.com/mindfoldco/mindfold/pkg/session"
	"github.com/mindfoldco/mindfold/pkg/storage"
)

const imagesLongDesc string = `Work with image attachments.

Images live next to maps under slash-delimited paths and are served
back to the editor as data URLs. The --workspace flag selects which
workspace to operate on; it defaults to the local workspace.

Examples:
  mindfold images list
  mindfold images list notes/
  mindfold images add diagram.png notes/diagram.png
  mindfold images rm notes/diagram.png --workspace cloud`

func NewImagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Work with image attachments",
		Long:  imagesLongDesc,
	}

	cmd.PersistentFlags().StringP("workspace", "w", "", "Workspace to operate on (defaults to local)")

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newURLCmd())
	cmd.AddCommand(newRemoveCmd())

	return cmd
}

// imageStore opens the session and resolves the image capability of the
// requested workspace's adapter.
func imageStore(cmd *cobra.Command) (*session.Session, storage.ImageStore, string, error) {
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
		return nil, nil, "", err
	}

	var adapter storage.Adapter
	if s.Manager != nil {
		adapter, err = s.Manager.AdapterForWorkspace(ws)
	} else if ws == mapdoc.CloudWorkspaceID {
		err = fmt.Errorf("cloud workspace requires 'session.mode = \"local+cloud\"'")
	} else {
		adapter = s.Adapter
	}
	if err != nil {
		s.Close()
		return nil, nil, "", err
	}

	imgs, ok := adapter.(storage.ImageStore)
	if !ok {
		s.Close()
		return nil, nil, "", storage.ErrNotSupported{Backend: ws, Op: "image storage"}
	}

	return s, imgs, ws, nil
}

const listLongDesc string = `List images in a workspace.

An optional prefix argument restricts the listing to paths under that
folder.

Examples:
  mindfold images list
  mindfold images list notes/`

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [prefix]",
		Short: "List images in a workspace",
		Long:  listLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, imgs, _, err := imageStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}

			paths, err := imgs.ListImages(cmd.Context(), prefix)
			if err != nil {
				return fmt.Errorf("listing images: %w", err)
			}

			if len(paths) == 0 {
				fmt.Printf("\n  %s No images found.\n\n", cliui.DimStyle.Render("●"))
				return nil
			}

			fmt.Printf("\n  %s\n\n", cliui.HeaderStyle.Render("Images"))
			for _, path := range paths {
				fmt.Printf("  %s\n", cliui.NameStyle.Render(path))
			}
			fmt.Println()

			return nil
		},
	}
}

const addLongDesc string = `Store an image file.

The destination path defaults to the file's name. The content type is
derived from the file extension.

Examples:
  mindfold images add diagram.png
  mindfold images add diagram.png notes/diagram.png`

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <file> [dest-path]",
		Short: "Store an image file",
		Long:  addLongDesc,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading image: %w", err)
			}

			dest := filepath.Base(args[0])
			if len(args) == 2 {
				dest = args[1]
			}
			contentType := mime.TypeByExtension(filepath.Ext(dest))

			s, imgs, _, err := imageStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := imgs.SaveImage(cmd.Context(), dest, data, contentType); err != nil {
				return fmt.Errorf("saving image: %w", err)
			}

			fmt.Printf("\n  %s Stored %s\n\n", cliui.SuccessMark, cliui.NameStyle.Render(dest))
			return nil
		},
	}
}

const urlLongDesc string = `Print an image as a data URL.

This is the form the editor embeds into map documents.

Examples:
  mindfold images url notes/diagram.png`

func newURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "url <path>",
		Short: "Print an image as a data URL",
		Long:  urlLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, imgs, _, err := imageStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			dataURL, err := imgs.ReadImageAsDataURL(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("reading image: %w", err)
			}

			fmt.Println(dataURL)
			return nil
		},
	}
}

const removeLongDesc string = `Delete an image.

Examples:
  mindfold images rm notes/diagram.png`

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <path>",
		Aliases: []string{"remove"},
		Short:   "Delete an image",
		Long:    removeLongDesc,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, imgs, _, err := imageStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := imgs.DeleteImage(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("deleting image: %w", err)
			}

			fmt.Printf("\n  %s Deleted %s\n\n", cliui.SuccessMark, cliui.NameStyle.Render(args[0]))
			return nil
		},
	}
}
