package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuma-shin/y-shin.net/cache"
	"github.com/yuma-shin/y-shin.net/models"
)

func writeContent(t *testing.T, dir, rel, body string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeContent(t, dir, "about.md", "# About\n\nHi.\n")
	writeContent(t, dir, "posts/first-post.md", "Intro.\n\n```mermaid\ngraph TD\n  A --> B\n```\n\nOutro.\n")
	writeContent(t, dir, "notes.txt", "not markdown")

	m := cache.NewManager()
	loader := NewLoader(dir, m)

	n, err := loader.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	about, found := m.GetFragment("about")
	require.True(t, found)
	assert.Equal(t, "about", about.Title)
	assert.Empty(t, about.Diagrams)
	assert.Contains(t, about.HTML(), "<h1")

	post, found := m.GetFragment("posts-first-post")
	require.True(t, found)
	assert.Equal(t, "first post", post.Title)
	require.Len(t, post.Diagrams, 1)
	assert.Equal(t, models.DiagramStatePending, post.Diagrams[0].State)
	assert.Equal(t, "graph TD\n  A --> B\n", post.Diagrams[0].Source)
	assert.Contains(t, post.Diagrams[0].Content, `<pre class="mermaid">`,
		"raw definition shown until the first pass")
	assert.Contains(t, post.HTML(), "Outro.")
}

func TestLoadAllAssignsDocumentOrder(t *testing.T) {
	dir := t.TempDir()
	writeContent(t, dir, "b.md", "B\n")
	writeContent(t, dir, "a.md", "A\n")

	m := cache.NewManager()
	_, err := NewLoader(dir, m).LoadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, m.FragmentIDs(), "path sort defines document order")
}

func TestLoadAllMissingDir(t *testing.T) {
	m := cache.NewManager()
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope"), m).LoadAll()
	assert.Error(t, err)
}
