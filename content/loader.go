package content

import (
	"fmt"
	stdhtml "html"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuma-shin/y-shin.net/cache"
	"github.com/yuma-shin/y-shin.net/models"
)

// Loader walks the content directory and keeps the fragment cache current.
type Loader struct {
	dir      string
	cache    *cache.Manager
	renderer *Renderer
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string, cacheManager *cache.Manager) *Loader {
	return &Loader{
		dir:      dir,
		cache:    cacheManager,
		renderer: NewRenderer(),
	}
}

// LoadAll renders every markdown file under the content directory into the
// fragment cache. Returns the number of fragments loaded.
func (l *Loader) LoadAll() (int, error) {
	var paths []string
	err := filepath.Walk(l.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk content directory: %w", err)
	}
	sort.Strings(paths)

	loaded := 0
	for i, path := range paths {
		fragment, err := l.loadFile(path, i)
		if err != nil {
			log.Printf("Skipping %s: %v", path, err)
			continue
		}
		l.cache.SetFragment(fragment)
		loaded++
	}

	log.Printf("Loaded %d content fragments from %s", loaded, l.dir)
	return loaded, nil
}

func (l *Loader) loadFile(path string, order int) (*models.Fragment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	segments, sources, err := l.renderer.Render(data)
	if err != nil {
		return nil, fmt.Errorf("markdown render failed: %w", err)
	}

	diagrams := make([]models.DiagramBlock, len(sources))
	for i, src := range sources {
		diagrams[i] = models.DiagramBlock{
			Source: src,
			// Until the first render pass the slot shows the raw definition,
			// just like the frontend markup before the library runs.
			Content: `<pre class="mermaid">` + stdhtml.EscapeString(src) + `</pre>`,
			State:   models.DiagramStatePending,
		}
	}

	return &models.Fragment{
		ID:       l.fragmentID(path),
		Title:    titleFromPath(path),
		Order:    order,
		Segments: segments,
		Diagrams: diagrams,
	}, nil
}

// fragmentID derives a stable slug from the file's path under the content root.
func (l *Loader) fragmentID(path string) string {
	rel, err := filepath.Rel(l.dir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = strings.TrimSuffix(rel, ".md")
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", "-")
}

func titleFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), ".md")
	base = strings.ReplaceAll(base, "-", " ")
	base = strings.ReplaceAll(base, "_", " ")
	return strings.TrimSpace(base)
}
