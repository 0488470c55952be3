package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mindfoldco/mindfold/pkg/mapdoc"
)

// uniqueNameAttempts bounds the -1, -2, ... suffix search before falling
// back to a timestamp suffix. Guarantees termination even against a
// pathological existence check.
const uniqueNameAttempts = 999

// Base carries the shared, non-network behavior concrete adapters embed.
type Base struct {
	// PathPrefix, when non-empty, is stripped from the front of paths by
	// CleanPath (e.g. "/cloud" for UI paths addressing the cloud workspace).
	PathPrefix string
}

// CleanPath trims slashes, strips the configured prefix, and collapses
// empty segments. The result never has a leading or trailing slash.
func (b Base) CleanPath(path string) string {
	parts := b.ParsePathParts(path)
	return strings.Join(parts, "/")
}

// ParsePathParts splits a slash-delimited path into its non-empty
// segments, then drops the leading segment when it equals the configured
// prefix. Matching whole segments keeps entries that merely start with
// the prefix text ("cloudy/pic.png") intact.
func (b Base) ParsePathParts(path string) []string {
	var parts []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}

	if b.PathPrefix != "" && len(parts) > 0 && parts[0] == strings.Trim(b.PathPrefix, "/") {
		parts = parts[1:]
	}

	return parts
}

// RemoveMdExtension drops a trailing ".md" suffix, case-insensitively.
func RemoveMdExtension(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".md") {
		return name[:len(name)-len(".md")]
	}

	return name
}

// IsMarkdownFile reports whether a file name carries a ".md" suffix,
// case-insensitively.
func IsMarkdownFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".md")
}

// ExtractTitleFromMarkdown returns the trimmed text of the first line
// beginning with "# ", else "Untitled". This is the single source of
// truth for deriving a display title from markdown content; every backend
// uses the same rule.
func ExtractTitleFromMarkdown(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		if title, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(title)
		}
	}

	return "Untitled"
}

// ExistsFunc reports whether a candidate name is already taken.
type ExistsFunc func(ctx context.Context, name string) (bool, error)

// GenerateUniqueName returns desired unchanged when it is free, else tries
// "<base>-1<ext>" through "<base>-999<ext>", finally falling back to a
// timestamp-suffixed name. ext is the extension to re-append (may be "").
func GenerateUniqueName(ctx context.Context, desired, ext string, exists ExistsFunc) (string, error) {
	taken, err := exists(ctx, desired)
	if err != nil {
		return "", err
	}
	if !taken {
		return desired, nil
	}

	base := strings.TrimSuffix(desired, ext)

	for i := 1; i <= uniqueNameAttempts; i++ {
		candidate := fmt.Sprintf("%s-%d%s", base, i, ext)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return fmt.Sprintf("%s-%d%s", base, time.Now().UnixMilli(), ext), nil
}

// GenerateUniqueFolderName is GenerateUniqueName for extension-less names.
func GenerateUniqueFolderName(ctx context.Context, desired string, exists ExistsFunc) (string, error) {
	return GenerateUniqueName(ctx, desired, "", exists)
}

// SortExplorerItems orders items folders-first, then by name
// (case-insensitive), recursing into children. The sort is stable so
// equal names keep their relative order. Every backend applies the same
// ordering so the UI sees consistent trees regardless of source.
func SortExplorerItems(items []*mapdoc.ExplorerItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Type != b.Type {
			return a.Type == mapdoc.ExplorerFolder
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})

	for _, item := range items {
		if len(item.Children) > 0 {
			SortExplorerItems(item.Children)
		}
	}
}

// SameMap reports identifier equality by (mapId, workspaceId) pair.
func SameMap(a, b mapdoc.MapIdentifier) bool {
	return a.Equal(b)
}
