package cloud

import (
	"context"
	"strings"

	"github.com/mindfoldco/mindfold/pkg/mapdoc"
	"github.com/mindfoldco/mindfold/pkg/storage"
)

// ExplorerTree reconstructs the folder hierarchy from whatever the server
// holds right now: map ids become <id>.md file leaves, stored image keys
// become file leaves, and locally tracked virtual folders are merged in
// so a created-but-still-empty folder stays visible. The tree is rebuilt
// from scratch on every call; nothing is cached beyond virtualFolders.
// Unauthenticated calls degrade to an empty tree.
func (a *Adapter) ExplorerTree(ctx context.Context) ([]*mapdoc.ExplorerItem, error) {
	if !a.IsAuthenticated() {
		return nil, nil
	}

	var list listMapsResponse
	if err := a.getJSON(ctx, "/api/maps", &list); err != nil {
		return nil, err
	}

	builder := storage.NewTreeBuilder()
	for _, desc := range list.Maps {
		builder.AddFile(desc.ID + ".md")
	}

	images, err := a.ListImages(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, key := range images {
		builder.AddFile(key)
	}

	for folder := range a.virtualFolders {
		builder.AddFolder(folder)
	}

	return builder.Build(), nil
}

// CreateFolder records a virtual folder. The server has no folder
// concept; the folder materializes remotely once a file is saved under
// it, and the virtual entry keeps it visible until then.
func (a *Adapter) CreateFolder(ctx context.Context, path string) error {
	if !a.IsAuthenticated() {
		return storage.ErrNotAuthenticated
	}

	cleaned := a.CleanPath(path)
	if cleaned == "" {
		return storage.ErrInvalidMapID{MapID: path, Reason: "empty folder path"}
	}

	a.virtualFolders[cleaned] = struct{}{}
	return nil
}

// RenameItem is not supported by the cloud backend.
func (a *Adapter) RenameItem(ctx context.Context, oldPath, newPath string) error {
	return storage.ErrNotSupported{Backend: backendName, Op: "rename"}
}

// MoveItem is not supported by the cloud backend.
func (a *Adapter) MoveItem(ctx context.Context, srcPath, dstPath string) error {
	return storage.ErrNotSupported{Backend: backendName, Op: "move"}
}

// DeleteItem deletes by UI path: a "/cloud/..."-prefixed path is
// normalized down to a bare key first. Virtual folders are forgotten
// locally; anything else is treated as a map id and deleted remotely.
func (a *Adapter) DeleteItem(ctx context.Context, path string) error {
	cleaned := a.CleanPath(path)

	if _, ok := a.virtualFolders[cleaned]; ok {
		delete(a.virtualFolders, cleaned)
		return nil
	}

	mapID := storage.RemoveMdExtension(cleaned)

	// Deleting a folder's contents one file at a time is the caller's
	// job; a bare folder path with no virtual entry has nothing to do.
	if mapID == "" {
		return storage.ErrInvalidMapID{MapID: path, Reason: "empty path"}
	}

	// Dropping a real folder also drops any virtual entries beneath it.
	for folder := range a.virtualFolders {
		if strings.HasPrefix(folder, cleaned+"/") {
			delete(a.virtualFolders, folder)
		}
	}

	return a.RemoveMapFromList(ctx, mapdoc.MapIdentifier{
		MapID:       mapID,
		WorkspaceID: mapdoc.CloudWorkspaceID,
	})
}
