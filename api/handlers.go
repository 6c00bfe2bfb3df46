package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuma-shin/y-shin.net/cache"
)

// HealthHandler reports service liveness.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// FragmentHandlers serves content fragments from the cache.
type FragmentHandlers struct {
	cache *cache.Manager
}

// NewFragmentHandlers creates the fragment handler set.
func NewFragmentHandlers(cacheManager *cache.Manager) *FragmentHandlers {
	return &FragmentHandlers{cache: cacheManager}
}

// List returns all fragment IDs in document order.
func (h *FragmentHandlers) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fragments": h.cache.FragmentIDs()})
}

// Get returns one fragment's assembled HTML with diagram slots substituted.
func (h *FragmentHandlers) Get(c *gin.Context) {
	id := c.Param("id")

	fragment, found := h.cache.GetFragment(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "fragment not found"})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, fragment.HTML())
}
