package storage

import (
	"strings"

	"github.com/mindfoldco/mindfold/pkg/mapdoc"
)

// TreeBuilder reconstructs a folder hierarchy from a flat set of
// slash-delimited keys. The backends store maps and images in a flat key
// space; the explorer view is derived, never stored.
// Files and folders are indexed separately: a flat key space can hold a
// file "a/b" next to keys under "a/b/", and the two must become distinct
// sibling nodes rather than one node serving both roles.
type TreeBuilder struct {
	roots   []*mapdoc.ExplorerItem
	files   map[string]*mapdoc.ExplorerItem
	folders map[string]*mapdoc.ExplorerItem
}

func NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{
		files:   make(map[string]*mapdoc.ExplorerItem),
		folders: make(map[string]*mapdoc.ExplorerItem),
	}
}

// AddFile attaches a leaf file node at key, creating intermediate folder
// nodes on demand. Leading and trailing slashes are trimmed without
// regexes; empty segments are dropped. Keys ending in ".md"
// (case-insensitive) are flagged as markdown.
func (t *TreeBuilder) AddFile(key string) {
	parts := splitKey(key)
	if len(parts) == 0 {
		return
	}

	dir, leaf := parts[:len(parts)-1], parts[len(parts)-1]
	parent := t.ensureFolders(dir)

	path := strings.Join(parts, "/")
	if _, ok := t.files[path]; ok {
		return
	}

	item := &mapdoc.ExplorerItem{
		Type:       mapdoc.ExplorerFile,
		Name:       leaf,
		Path:       path,
		IsMarkdown: IsMarkdownFile(leaf),
	}
	t.files[path] = item
	t.attach(parent, item)
}

// AddFolder ensures a folder node exists at key, creating ancestors on
// demand. Used to merge in virtual folders that contain no files yet.
func (t *TreeBuilder) AddFolder(key string) {
	parts := splitKey(key)
	if len(parts) == 0 {
		return
	}

	t.ensureFolders(parts)
}

// Build sorts every level (folders first, then name) and returns the
// roots. The builder is single-use.
func (t *TreeBuilder) Build() []*mapdoc.ExplorerItem {
	SortExplorerItems(t.roots)
	return t.roots
}

func (t *TreeBuilder) ensureFolders(parts []string) *mapdoc.ExplorerItem {
	var parent *mapdoc.ExplorerItem

	for i := range parts {
		path := strings.Join(parts[:i+1], "/")
		folder, ok := t.folders[path]
		if !ok {
			folder = &mapdoc.ExplorerItem{
				Type: mapdoc.ExplorerFolder,
				Name: parts[i],
				Path: path,
			}
			t.folders[path] = folder
			t.attach(parent, folder)
		}
		parent = folder
	}

	return parent
}

func (t *TreeBuilder) attach(parent, item *mapdoc.ExplorerItem) {
	if parent == nil {
		t.roots = append(t.roots, item)
		return
	}

	parent.Children = append(parent.Children, item)
}

// splitKey trims slashes and splits on "/", dropping empty segments.
func splitKey(key string) []string {
	var parts []string
	for _, seg := range strings.Split(strings.Trim(key, "/"), "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}

	return parts
}
