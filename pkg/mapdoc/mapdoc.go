// Package mapdoc defines the core mind-map document model shared between
// the editor, the markdown codec, and the storage adapters.
package mapdoc

import "time"

const (
	// CloudWorkspaceID is the fixed workspace id of the one cloud workspace.
	CloudWorkspaceID = "cloud"

	// LocalWorkspaceID is the id of the default local workspace.
	LocalWorkspaceID = "local"
)

// MapIdentifier is the primary key of a map within the system.
// MapID is a slash-delimited logical path (folder/title); WorkspaceID
// disambiguates the cloud workspace from local workspace ids.
type MapIdentifier struct {
	MapID       string `json:"mapId" toml:"map_id"`
	WorkspaceID string `json:"workspaceId" toml:"workspace_id"`
}

// Equal reports whether two identifiers refer to the same map.
// Both fields must match exactly.
func (id MapIdentifier) Equal(other MapIdentifier) bool {
	return id.MapID == other.MapID && id.WorkspaceID == other.WorkspaceID
}

// Node is a single text node in a mind map tree.
type Node struct {
	Text     string  `json:"text"`
	Children []*Node `json:"children,omitempty"`
}

// Settings holds per-map editor settings. The storage layer treats this
// as an opaque block and only round-trips it.
type Settings struct {
	AutoSave   bool   `json:"autoSave"`
	AutoLayout bool   `json:"autoLayout"`
	FontSize   int    `json:"fontSize,omitempty"`
	Theme      string `json:"theme,omitempty"`
}

// MindMapData is a fully hydrated mind map document.
type MindMapData struct {
	ID        MapIdentifier `json:"mapIdentifier"`
	Title     string        `json:"title"`
	Roots     []*Node       `json:"rootNodes"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Settings  Settings      `json:"settings"`
}

// CloudUser identifies an authenticated account on the sync service.
type CloudUser struct {
	ID    string `json:"id" toml:"id"`
	Email string `json:"email" toml:"email"`
}

// AuthResponse is the typed result of a register or login attempt.
// Authentication is expected to fail routinely (wrong password), so
// failures are values rather than errors.
type AuthResponse struct {
	Success bool       `json:"success"`
	Token   string     `json:"token,omitempty"`
	User    *CloudUser `json:"user,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// ExplorerItemType discriminates folder nodes from file nodes.
type ExplorerItemType string

const (
	ExplorerFolder ExplorerItemType = "folder"
	ExplorerFile   ExplorerItemType = "file"
)

// ExplorerItem is one node of the derived explorer tree.
type ExplorerItem struct {
	Type       ExplorerItemType `json:"type"`
	Name       string           `json:"name"`
	Path       string           `json:"path"`
	Children   []*ExplorerItem  `json:"children,omitempty"`
	IsMarkdown bool             `json:"isMarkdown,omitempty"`
}

// WorkspaceType discriminates the two storage substrates.
type WorkspaceType string

const (
	WorkspaceLocal WorkspaceType = "local"
	WorkspaceCloud WorkspaceType = "cloud"
)

// Workspace describes one registered workspace. The live cloud adapter
// reference is held by the workspace service, not here.
type Workspace struct {
	ID        string        `json:"id" toml:"id"`
	Name      string        `json:"name" toml:"name"`
	Type      WorkspaceType `json:"type" toml:"type"`
	Removable bool          `json:"isRemovable" toml:"removable"`
}

// Codec converts between a mind map document and its canonical markdown
// serialization. Implemented by pkg/markdown; declared here so storage
// adapters depend on the contract only.
type Codec interface {
	Parse(markdown string) (*MindMapData, error)
	Serialize(data *MindMapData) (string, error)
}
