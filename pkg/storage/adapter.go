// Package storage defines the adapter contract every persistence backend
// satisfies, plus the backend-independent path and naming helpers the
// concrete adapters share.
//
// The mandatory Adapter interface is deliberately small. Capabilities that
// only some backends support (explorer trees, raw markdown access, images,
// workspace listing) live in separate extension interfaces discovered via
// type assertion; an assertion that fails and an ErrNotSupported return
// mean the same thing to callers.
package storage

import (
	"context"
	"time"

	"github.com/mindfoldco/mindfold/pkg/mapdoc"
)

// Adapter is the mandatory capability surface of every storage backend.
type Adapter interface {
	// Initialized reports whether Initialize has completed successfully.
	Initialized() bool

	// Initialize prepares the backend for use. It is idempotent: calling
	// it on an initialized adapter is a no-op.
	Initialize(ctx context.Context) error

	// Cleanup tears the adapter down. Called once by the owning manager.
	Cleanup() error

	// LoadAllMaps returns every map stored in the backend, fully hydrated.
	LoadAllMaps(ctx context.Context) ([]*mapdoc.MindMapData, error)

	// AddMapToList persists a map.
	AddMapToList(ctx context.Context, m *mapdoc.MindMapData) error

	// RemoveMapFromList deletes the map with the given identifier.
	RemoveMapFromList(ctx context.Context, id mapdoc.MapIdentifier) error
}

// ExplorerStore is implemented by backends that can present their flat
// stored paths as a navigable folder hierarchy.
type ExplorerStore interface {
	// ExplorerTree rebuilds the folder hierarchy from scratch. No caching:
	// repeated calls always reflect the current stored state.
	ExplorerTree(ctx context.Context) ([]*mapdoc.ExplorerItem, error)

	CreateFolder(ctx context.Context, path string) error
	RenameItem(ctx context.Context, oldPath, newPath string) error
	DeleteItem(ctx context.Context, path string) error
	MoveItem(ctx context.Context, srcPath, dstPath string) error
}

// MarkdownStore is implemented by backends that expose the raw markdown
// serialization of a map.
type MarkdownStore interface {
	MapMarkdown(ctx context.Context, id mapdoc.MapIdentifier) (string, error)
	MapLastModified(ctx context.Context, id mapdoc.MapIdentifier) (time.Time, error)
	SaveMapMarkdown(ctx context.Context, id mapdoc.MapIdentifier, markdown string) error
}

// ImageStore is implemented by backends that store image attachments.
// Image paths are relative to the owning map's folder.
type ImageStore interface {
	SaveImage(ctx context.Context, path string, data []byte, contentType string) error
	ReadImage(ctx context.Context, path string) ([]byte, string, error)
	ReadImageAsDataURL(ctx context.Context, path string) (string, error)
	DeleteImage(ctx context.Context, path string) error
	ListImages(ctx context.Context, prefix string) ([]string, error)
}

// WorkspaceStore is implemented by backends that manage multiple
// workspaces (the local adapter; the cloud backend is a single fixed
// workspace).
type WorkspaceStore interface {
	ListWorkspaces(ctx context.Context) ([]mapdoc.Workspace, error)
	AddWorkspace(ctx context.Context, name, root string) (mapdoc.Workspace, error)
	RemoveWorkspace(ctx context.Context, id string) error
}
