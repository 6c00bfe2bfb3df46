package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuma-shin/y-shin.net/widgets"
)

// WidgetHandlers serves the computed sidebar layout.
type WidgetHandlers struct {
	manager *widgets.Manager
}

// NewWidgetHandlers creates the widget handler set.
func NewWidgetHandlers(manager *widgets.Manager) *WidgetHandlers {
	return &WidgetHandlers{manager: manager}
}

// Layout returns the sidebar columns in render order.
func (h *WidgetHandlers) Layout(c *gin.Context) {
	c.JSON(http.StatusOK, h.manager.Layout())
}
