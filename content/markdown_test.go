package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPlainMarkdown(t *testing.T) {
	r := NewRenderer()

	segments, sources, err := r.Render([]byte("# Hello\n\nSome *text*.\n"))
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Empty(t, sources)
	assert.Contains(t, segments[0], "<h1")
	assert.Contains(t, segments[0], "<em>text</em>")
}

func TestRenderSplitsAtDiagrams(t *testing.T) {
	r := NewRenderer()

	md := "Intro.\n\n```mermaid\ngraph TD\n  A --> B\n```\n\nBetween.\n\n```mermaid\npie\n  \"a\": 1\n```\n\nOutro.\n"
	segments, sources, err := r.Render([]byte(md))
	require.NoError(t, err)

	require.Len(t, sources, 2)
	require.Len(t, segments, 3, "segments always outnumber diagrams by one")

	assert.Equal(t, "graph TD\n  A --> B\n", sources[0])
	assert.Equal(t, "pie\n  \"a\": 1\n", sources[1])

	assert.Contains(t, segments[0], "Intro.")
	assert.Contains(t, segments[1], "Between.")
	assert.Contains(t, segments[2], "Outro.")

	for _, seg := range segments {
		assert.NotContains(t, seg, "mermaid", "diagram markup never leaks into segments")
	}
}

func TestRenderEscapedSourceSurvives(t *testing.T) {
	r := NewRenderer()

	md := "```mermaid\ngraph LR\n  A[\"x < y & z\"] --> B\n```\n"
	_, sources, err := r.Render([]byte(md))
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Contains(t, sources[0], `x < y & z`, "attribute escaping round-trips")
}

func TestRenderKeepsHighlightedCode(t *testing.T) {
	r := NewRenderer()

	md := "```go\nfunc main() {}\n```\n"
	segments, sources, err := r.Render([]byte(md))
	require.NoError(t, err)
	assert.Empty(t, sources, "non-mermaid fences are not diagram slots")
	require.Len(t, segments, 1)
	assert.Contains(t, segments[0], "<pre", "fence is syntax highlighted, not swallowed")
}

func TestRenderGFMTable(t *testing.T) {
	r := NewRenderer()

	md := "| a | b |\n|---|---|\n| 1 | 2 |\n"
	segments, _, err := r.Render([]byte(md))
	require.NoError(t, err)
	assert.Contains(t, segments[0], "<table>")
}
