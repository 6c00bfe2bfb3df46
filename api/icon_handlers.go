package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuma-shin/y-shin.net/icons"
)

// IconHandlers serves cached Iconify icon sets.
type IconHandlers struct {
	loader *icons.Loader
}

// NewIconHandlers creates the icon handler set.
func NewIconHandlers(loader *icons.Loader) *IconHandlers {
	return &IconHandlers{loader: loader}
}

// GetSet returns one icon set's raw Iconify JSON.
func (h *IconHandlers) GetSet(c *gin.Context) {
	prefix := c.Param("set")

	set, err := h.loader.GetSet(c.Request.Context(), prefix)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "application/json", set.Payload)
}
