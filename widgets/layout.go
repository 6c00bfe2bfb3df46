// Package widgets loads the sidebar widget configuration and computes the
// column layout served to the frontend.
package widgets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yuma-shin/y-shin.net/models"
)

// Known widget names; unknown names are rejected at load time.
var knownWidgets = map[string]bool{
	"profile":      true,
	"announcement": true,
	"categories":   true,
	"tags":         true,
	"recent-posts": true,
	"toc":          true,
	"stats":        true,
	"music-player": true,
}

type widgetsFile struct {
	Widgets []models.Widget `yaml:"widgets"`
}

// Manager owns the widget configuration.
type Manager struct {
	mu      sync.RWMutex
	widgets []models.Widget
}

// NewManager loads configDir/widgets.yaml. A missing file yields the default
// arrangement.
func NewManager(configDir string) (*Manager, error) {
	m := &Manager{widgets: defaultWidgets()}

	path := filepath.Join(configDir, "widgets.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("failed to read widget config: %w", err)
	}

	var file widgetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse widget config: %w", err)
	}

	if err := validate(file.Widgets); err != nil {
		return nil, err
	}

	m.widgets = file.Widgets
	return m, nil
}

func validate(widgets []models.Widget) error {
	seen := make(map[string]bool)
	for _, w := range widgets {
		if !knownWidgets[w.Name] {
			return fmt.Errorf("unknown widget %q", w.Name)
		}
		if seen[w.Name] {
			return fmt.Errorf("duplicate widget %q", w.Name)
		}
		seen[w.Name] = true
		if w.Position != models.WidgetPositionLeft && w.Position != models.WidgetPositionRight {
			return fmt.Errorf("widget %q has invalid position %q", w.Name, w.Position)
		}
	}
	return nil
}

// Layout computes the sidebar arrangement: enabled widgets only, ordered by
// Order within each column, sticky widgets moved to the end of their column.
func (m *Manager) Layout() models.SidebarLayout {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var layout models.SidebarLayout
	for _, w := range m.widgets {
		if !w.Enabled {
			continue
		}
		switch w.Position {
		case models.WidgetPositionLeft:
			layout.Left = append(layout.Left, w)
		case models.WidgetPositionRight:
			layout.Right = append(layout.Right, w)
		}
	}

	sortColumn(layout.Left)
	sortColumn(layout.Right)
	return layout
}

func sortColumn(col []models.Widget) {
	sort.SliceStable(col, func(i, j int) bool {
		if col[i].Sticky != col[j].Sticky {
			return !col[i].Sticky
		}
		return col[i].Order < col[j].Order
	})
}

func defaultWidgets() []models.Widget {
	return []models.Widget{
		{Name: "profile", Enabled: true, Position: models.WidgetPositionLeft, Order: 0},
		{Name: "announcement", Enabled: true, Position: models.WidgetPositionLeft, Order: 1},
		{Name: "categories", Enabled: true, Position: models.WidgetPositionLeft, Order: 2},
		{Name: "tags", Enabled: true, Position: models.WidgetPositionLeft, Order: 3},
		{Name: "toc", Enabled: true, Position: models.WidgetPositionRight, Order: 0, Sticky: true},
	}
}
