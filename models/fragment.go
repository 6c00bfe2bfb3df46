// Package models contains shared domain types for the y-shin.net behavior service.
package models

import (
	"strings"
	"time"
)

// Diagram block lifecycle states as reflected in the assembled fragment HTML.
const (
	DiagramStatePending   = "pending"
	DiagramStateRendering = "rendering"
	DiagramStateRendered  = "rendered"
	DiagramStateFailed    = "failed"
)

// DiagramBlock is one Mermaid code block inside a fragment. Content holds the
// HTML currently occupying the block's slot: the raw source element before the
// first pass, then a placeholder, rendered SVG, or a terminal error block.
type DiagramBlock struct {
	Source  string `json:"source"`
	Content string `json:"content"`
	State   string `json:"state"`
}

// Fragment is one post's rendered HTML, split at its diagram blocks so those
// slots can be rewritten in place without re-rendering the markdown.
// len(Segments) == len(Diagrams)+1; the assembled document interleaves them.
type Fragment struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Order     int            `json:"order"`
	Segments  []string       `json:"-"`
	Diagrams  []DiagramBlock `json:"diagrams,omitempty"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// HTML assembles the fragment's current document, interleaving static
// segments with each diagram slot's current content.
func (f *Fragment) HTML() string {
	if len(f.Diagrams) == 0 {
		if len(f.Segments) == 0 {
			return ""
		}
		return f.Segments[0]
	}

	var b strings.Builder
	for i, seg := range f.Segments {
		b.WriteString(seg)
		if i < len(f.Diagrams) {
			b.WriteString(f.Diagrams[i].Content)
		}
	}
	return b.String()
}

// DiagramTarget identifies one diagram slot pending render, as discovered by
// a render pass. FragmentID plus Index addresses the slot; Source is the raw
// Mermaid definition text.
type DiagramTarget struct {
	FragmentID string
	Index      int
	Source     string
}
