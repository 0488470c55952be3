// Package markdown implements the canonical markdown codec for mind map
// documents. The first level-1 heading is the document title; nested
// two-space-indented "-" list items form the node tree.
package markdown

import (
	"fmt"
	"strings"
	"time"

	"github.com/mindfoldco/mindfold/pkg/mapdoc"
)

const indentWidth = 2

// Codec implements mapdoc.Codec.
type Codec struct{}

// NewCodec returns the canonical markdown codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Parse converts markdown text into a mind map document. The title comes
// from the first "# " heading; list items become nodes, nesting by
// indentation. Lines that are neither headings nor list items are ignored.
func (c *Codec) Parse(markdown string) (*mapdoc.MindMapData, error) {
	data := &mapdoc.MindMapData{
		Title:     "Untitled",
		UpdatedAt: time.Now(),
	}

	titleSeen := false

	// stack[i] is the most recent node at depth i.
	var stack []*mapdoc.Node

	for _, line := range strings.Split(markdown, "\n") {
		if !titleSeen {
			if title, ok := strings.CutPrefix(line, "# "); ok {
				data.Title = strings.TrimSpace(title)
				titleSeen = true
				continue
			}
		}

		trimmed := strings.TrimLeft(line, " ")
		if !strings.HasPrefix(trimmed, "- ") {
			continue
		}

		depth := (len(line) - len(trimmed)) / indentWidth
		node := &mapdoc.Node{Text: strings.TrimSpace(trimmed[2:])}

		if depth > len(stack) {
			depth = len(stack)
		}
		stack = stack[:depth]

		if depth == 0 {
			data.Roots = append(data.Roots, node)
		} else {
			parent := stack[depth-1]
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, node)
	}

	return data, nil
}

// Serialize converts a mind map document back into markdown.
func (c *Codec) Serialize(data *mapdoc.MindMapData) (string, error) {
	if data == nil {
		return "", fmt.Errorf("cannot serialize nil map")
	}

	var b strings.Builder

	title := data.Title
	if title == "" {
		title = "Untitled"
	}
	b.WriteString("# ")
	b.WriteString(title)
	b.WriteString("\n")

	if len(data.Roots) > 0 {
		b.WriteString("\n")
	}
	for _, root := range data.Roots {
		writeNode(&b, root, 0)
	}

	return b.String(), nil
}

func writeNode(b *strings.Builder, node *mapdoc.Node, depth int) {
	b.WriteString(strings.Repeat(" ", depth*indentWidth))
	b.WriteString("- ")
	b.WriteString(node.Text)
	b.WriteString("\n")

	for _, child := range node.Children {
		writeNode(b, child, depth+1)
	}
}
