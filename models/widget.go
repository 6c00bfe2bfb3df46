package models

// Widget positions within the sidebar columns.
const (
	WidgetPositionLeft  = "left"
	WidgetPositionRight = "right"
)

// Widget is one configurable sidebar component (profile card, announcement,
// category list, tag cloud, recent posts...).
type Widget struct {
	Name     string         `json:"name" yaml:"name"`
	Enabled  bool           `json:"enabled" yaml:"enabled"`
	Position string         `json:"position" yaml:"position"`
	Order    int            `json:"order" yaml:"order"`
	Sticky   bool           `json:"sticky" yaml:"sticky"`
	Options  map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// SidebarLayout is the computed widget arrangement served to the frontend.
// Within each column widgets are ordered by Order; sticky widgets are placed
// after the scrolling ones so they pin to the viewport bottom.
type SidebarLayout struct {
	Left  []Widget `json:"left"`
	Right []Widget `json:"right"`
}
