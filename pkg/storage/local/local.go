// Package local implements the directory-backed storage adapter. Maps are
// markdown files under a workspace root; images live alongside them.
// Workspace directories are remembered across sessions in a SQLite handle
// store kept in the dotdir.
package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"encoding/base64"

	"github.com/google/uuid"

	"github.com/mindfoldco/mindfold/pkg/mapdoc"
	"github.com/mindfoldco/mindfold/pkg/storage"
)

const defaultWorkspaceID = mapdoc.LocalWorkspaceID

// Config holds construction parameters for the local adapter.
type Config struct {
	// Root is the directory of the default workspace. Created if missing.
	Root string

	// HandleDBPath is the SQLite handle database. ":memory:" for tests.
	HandleDBPath string

	Codec  mapdoc.Codec
	Logger *slog.Logger
}

// Adapter is the local, directory-backed storage adapter. It serves every
// registered local workspace; map identifiers select the workspace.
type Adapter struct {
	storage.Base

	cfg         Config
	codec       mapdoc.Codec
	logger      *slog.Logger
	handles     *HandleStore
	roots       map[string]string
	current     string
	initialized bool
}

var (
	_ storage.Adapter        = (*Adapter)(nil)
	_ storage.ExplorerStore  = (*Adapter)(nil)
	_ storage.MarkdownStore  = (*Adapter)(nil)
	_ storage.ImageStore     = (*Adapter)(nil)
	_ storage.WorkspaceStore = (*Adapter)(nil)
)

// New constructs an uninitialized local adapter.
func New(cfg Config) *Adapter {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Adapter{
		cfg:     cfg,
		codec:   cfg.Codec,
		logger:  cfg.Logger,
		roots:   make(map[string]string),
		current: defaultWorkspaceID,
	}
}

// Initialized reports whether Initialize has completed.
func (a *Adapter) Initialized() bool {
	return a.initialized
}

// Initialize creates the default workspace root, opens the handle store,
// and registers the default workspace when missing. Idempotent.
func (a *Adapter) Initialize(ctx context.Context) error {
	if a.initialized {
		return nil
	}

	if a.cfg.Root == "" {
		return errors.New("local adapter requires a workspace root")
	}

	if err := os.MkdirAll(a.cfg.Root, 0o755); err != nil {
		return fmt.Errorf("creating workspace root: %w", err)
	}

	handles, err := OpenHandleStore(a.cfg.HandleDBPath)
	if err != nil {
		return err
	}
	a.handles = handles

	if _, err := handles.Get(ctx, defaultWorkspaceID); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			handles.Close()
			a.handles = nil
			return err
		}

		h := Handle{
			ID:   defaultWorkspaceID,
			Name: filepath.Base(a.cfg.Root),
			Root: a.cfg.Root,
		}
		if err := handles.Put(ctx, h); err != nil {
			handles.Close()
			a.handles = nil
			return err
		}
	}

	all, err := handles.List(ctx)
	if err != nil {
		handles.Close()
		a.handles = nil
		return err
	}
	for _, h := range all {
		a.roots[h.ID] = h.Root
	}

	a.initialized = true
	a.logger.Debug("local adapter initialized",
		"root", a.cfg.Root,
		"workspaces", len(a.roots),
	)

	return nil
}

// Cleanup closes the handle store.
func (a *Adapter) Cleanup() error {
	a.initialized = false

	if a.handles == nil {
		return nil
	}

	err := a.handles.Close()
	a.handles = nil
	return err
}

// SetCurrentWorkspace switches which workspace unqualified path
// operations address.
func (a *Adapter) SetCurrentWorkspace(id string) error {
	if id == "" {
		id = defaultWorkspaceID
	}

	if _, ok := a.roots[id]; !ok {
		return storage.ErrNotFound{Path: id}
	}

	a.current = id
	return nil
}

// CurrentWorkspace returns the id addressed by unqualified operations.
func (a *Adapter) CurrentWorkspace() string {
	return a.current
}

// LoadAllMaps walks every registered workspace for markdown files and
// hydrates each through the codec.
func (a *Adapter) LoadAllMaps(ctx context.Context) ([]*mapdoc.MindMapData, error) {
	if !a.initialized {
		return nil, nil
	}

	var maps []*mapdoc.MindMapData

	for wsID, root := range a.roots {
		keys, err := a.markdownKeys(root)
		if err != nil {
			return nil, err
		}

		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			id := mapdoc.MapIdentifier{
				MapID:       storage.RemoveMdExtension(key),
				WorkspaceID: wsID,
			}

			md, err := a.MapMarkdown(ctx, id)
			if err != nil {
				return nil, err
			}

			data, err := a.codec.Parse(md)
			if err != nil {
				return nil, fmt.Errorf("parsing %s: %w", key, err)
			}
			data.ID = id

			if mtime, err := a.MapLastModified(ctx, id); err == nil {
				data.UpdatedAt = mtime
			}

			maps = append(maps, data)
		}
	}

	return maps, nil
}

// AddMapToList serializes the map through the codec and writes it.
func (a *Adapter) AddMapToList(ctx context.Context, m *mapdoc.MindMapData) error {
	if m == nil {
		return errors.New("cannot save nil map")
	}

	md, err := a.codec.Serialize(m)
	if err != nil {
		return err
	}

	return a.SaveMapMarkdown(ctx, m.ID, md)
}

// RemoveMapFromList deletes the map's markdown file.
func (a *Adapter) RemoveMapFromList(ctx context.Context, id mapdoc.MapIdentifier) error {
	path, err := a.mapPath(id)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return storage.ErrNotFound{Path: id.MapID}
		}
		return fmt.Errorf("removing map: %w", err)
	}

	return nil
}

// MapMarkdown reads a map's raw markdown.
func (a *Adapter) MapMarkdown(ctx context.Context, id mapdoc.MapIdentifier) (string, error) {
	path, err := a.mapPath(id)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", storage.ErrNotFound{Path: id.MapID}
		}
		return "", fmt.Errorf("reading map: %w", err)
	}

	return string(data), nil
}

// MapLastModified returns the markdown file's modification time.
func (a *Adapter) MapLastModified(ctx context.Context, id mapdoc.MapIdentifier) (time.Time, error) {
	path, err := a.mapPath(id)
	if err != nil {
		return time.Time{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, storage.ErrNotFound{Path: id.MapID}
		}
		return time.Time{}, err
	}

	return info.ModTime(), nil
}

// SaveMapMarkdown writes markdown to the map's file, creating parent
// folders on demand.
func (a *Adapter) SaveMapMarkdown(ctx context.Context, id mapdoc.MapIdentifier, markdown string) error {
	path, err := a.mapPath(id)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating map folder: %w", err)
	}

	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("writing map: %w", err)
	}

	return nil
}

// ExplorerTree walks the current workspace and rebuilds the folder tree.
// Real directories appear even when empty; there is nothing virtual here.
func (a *Adapter) ExplorerTree(ctx context.Context) ([]*mapdoc.ExplorerItem, error) {
	root, err := a.rootFor(a.current)
	if err != nil {
		return nil, err
	}

	builder := storage.NewTreeBuilder()

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)

		if d.IsDir() {
			builder.AddFolder(key)
			return nil
		}

		builder.AddFile(key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking workspace: %w", err)
	}

	return builder.Build(), nil
}

// CreateFolder creates a real directory under the current workspace.
func (a *Adapter) CreateFolder(ctx context.Context, path string) error {
	abs, err := a.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("creating folder: %w", err)
	}

	return nil
}

// RenameItem renames a file or folder in place.
func (a *Adapter) RenameItem(ctx context.Context, oldPath, newPath string) error {
	return a.MoveItem(ctx, oldPath, newPath)
}

// DeleteItem removes a file or folder (recursively).
func (a *Adapter) DeleteItem(ctx context.Context, path string) error {
	abs, err := a.resolve(path)
	if err != nil {
		return err
	}

	if _, err := os.Stat(abs); errors.Is(err, os.ErrNotExist) {
		return storage.ErrNotFound{Path: a.CleanPath(path)}
	}

	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("deleting %s: %w", path, err)
	}

	return nil
}

// MoveItem moves a file or folder to a new path.
func (a *Adapter) MoveItem(ctx context.Context, srcPath, dstPath string) error {
	src, err := a.resolve(srcPath)
	if err != nil {
		return err
	}
	dst, err := a.resolve(dstPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating destination folder: %w", err)
	}

	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s: %w", srcPath, err)
	}

	return nil
}

// SaveImage writes image bytes under the current workspace. contentType
// is ignored locally; the extension carries the type.
func (a *Adapter) SaveImage(ctx context.Context, path string, data []byte, contentType string) error {
	abs, err := a.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("creating image folder: %w", err)
	}

	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}

	return nil
}

// ReadImage returns the image bytes and a content type derived from the
// file extension.
func (a *Adapter) ReadImage(ctx context.Context, path string) ([]byte, string, error) {
	abs, err := a.resolve(path)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", storage.ErrNotFound{Path: a.CleanPath(path)}
		}
		return nil, "", fmt.Errorf("reading image: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(abs))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return data, contentType, nil
}

// ReadImageAsDataURL reads an image and encodes it as a data: URL.
func (a *Adapter) ReadImageAsDataURL(ctx context.Context, path string) (string, error) {
	data, contentType, err := a.ReadImage(ctx, path)
	if err != nil {
		return "", err
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DeleteImage removes an image file.
func (a *Adapter) DeleteImage(ctx context.Context, path string) error {
	abs, err := a.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return storage.ErrNotFound{Path: a.CleanPath(path)}
		}
		return fmt.Errorf("deleting image: %w", err)
	}

	return nil
}

// ListImages returns the non-markdown file keys under prefix.
func (a *Adapter) ListImages(ctx context.Context, prefix string) ([]string, error) {
	root, err := a.rootFor(a.current)
	if err != nil {
		return nil, err
	}

	dir := root
	cleaned := a.CleanPath(prefix)
	if cleaned != "" {
		dir = filepath.Join(root, filepath.FromSlash(cleaned))
	}

	var keys []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || storage.IsMarkdownFile(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}

	return keys, nil
}

// ListWorkspaces returns every registered local workspace. The default
// workspace is never removable.
func (a *Adapter) ListWorkspaces(ctx context.Context) ([]mapdoc.Workspace, error) {
	if a.handles == nil {
		return nil, nil
	}

	handles, err := a.handles.List(ctx)
	if err != nil {
		return nil, err
	}

	workspaces := make([]mapdoc.Workspace, 0, len(handles))
	for _, h := range handles {
		workspaces = append(workspaces, mapdoc.Workspace{
			ID:        h.ID,
			Name:      h.Name,
			Type:      mapdoc.WorkspaceLocal,
			Removable: h.ID != defaultWorkspaceID,
		})
	}

	return workspaces, nil
}

// AddWorkspace registers a new workspace rooted at root, creating the
// directory if needed.
func (a *Adapter) AddWorkspace(ctx context.Context, name, root string) (mapdoc.Workspace, error) {
	if a.handles == nil {
		return mapdoc.Workspace{}, errors.New("adapter not initialized")
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return mapdoc.Workspace{}, fmt.Errorf("creating workspace root: %w", err)
	}

	h := Handle{
		ID:   "ws_" + uuid.NewString(),
		Name: name,
		Root: root,
	}
	if err := a.handles.Put(ctx, h); err != nil {
		return mapdoc.Workspace{}, err
	}

	a.roots[h.ID] = h.Root

	return mapdoc.Workspace{
		ID:        h.ID,
		Name:      h.Name,
		Type:      mapdoc.WorkspaceLocal,
		Removable: true,
	}, nil
}

// RemoveWorkspace forgets a workspace handle. The directory itself is
// left untouched. The default workspace cannot be removed.
func (a *Adapter) RemoveWorkspace(ctx context.Context, id string) error {
	if id == defaultWorkspaceID {
		return fmt.Errorf("workspace %q is not removable", id)
	}
	if a.handles == nil {
		return errors.New("adapter not initialized")
	}

	if err := a.handles.Delete(ctx, id); err != nil {
		return err
	}

	delete(a.roots, id)
	if a.current == id {
		a.current = defaultWorkspaceID
	}

	return nil
}

func (a *Adapter) rootFor(workspaceID string) (string, error) {
	if workspaceID == "" {
		workspaceID = defaultWorkspaceID
	}

	root, ok := a.roots[workspaceID]
	if !ok {
		return "", storage.ErrNotFound{Path: workspaceID}
	}

	return root, nil
}

// mapPath resolves a map identifier to its markdown file path.
func (a *Adapter) mapPath(id mapdoc.MapIdentifier) (string, error) {
	cleaned := a.CleanPath(id.MapID)
	if cleaned == "" {
		return "", storage.ErrInvalidMapID{MapID: id.MapID, Reason: "empty path"}
	}

	root, err := a.rootFor(id.WorkspaceID)
	if err != nil {
		return "", err
	}

	return a.join(root, cleaned+".md")
}

// resolve turns a workspace-relative path into an absolute one under the
// current workspace root.
func (a *Adapter) resolve(path string) (string, error) {
	root, err := a.rootFor(a.current)
	if err != nil {
		return "", err
	}

	cleaned := a.CleanPath(path)
	if cleaned == "" {
		return "", fmt.Errorf("empty path")
	}

	return a.join(root, cleaned)
}

// join guards against path traversal escaping the workspace root.
func (a *Adapter) join(root, rel string) (string, error) {
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if !strings.HasPrefix(abs, filepath.Clean(root)+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes workspace root", rel)
	}

	return abs, nil
}

// markdownKeys returns the slash-delimited keys of every .md file under root.
func (a *Adapter) markdownKeys(root string) ([]string, error) {
	var keys []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !storage.IsMarkdownFile(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking workspace: %w", err)
	}

	return keys, nil
}
