package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuma-shin/y-shin.net/theme"
)

// ThemeHandlers exposes theme state reads and authenticated writes.
type ThemeHandlers struct {
	store *theme.Store
}

// NewThemeHandlers creates the theme handler set.
func NewThemeHandlers(store *theme.Store) *ThemeHandlers {
	return &ThemeHandlers{store: store}
}

// Get returns the current theme state.
func (h *ThemeHandlers) Get(c *gin.Context) {
	state := h.store.Current()
	c.JSON(http.StatusOK, gin.H{"mode": state.Mode, "hue": state.Hue})
}

// SetMode switches between light and dark mode.
func (h *ThemeHandlers) SetMode(c *gin.Context) {
	var req struct {
		Mode string `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.SetMode(req.Mode); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state := h.store.Current()
	c.JSON(http.StatusOK, gin.H{"mode": state.Mode, "hue": state.Hue})
}

// SetHue updates the accent hue.
func (h *ThemeHandlers) SetHue(c *gin.Context) {
	var req struct {
		Hue *int `json:"hue" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.SetHue(*req.Hue); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state := h.store.Current()
	c.JSON(http.StatusOK, gin.H{"mode": state.Mode, "hue": state.Hue})
}
