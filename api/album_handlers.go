package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yuma-shin/y-shin.net/albums"
	"github.com/yuma-shin/y-shin.net/models"
)

// albumListTTL bounds how often the albums directory is rescanned.
const albumListTTL = 10 * time.Minute

// AlbumHandlers serves scanned photo albums.
type AlbumHandlers struct {
	scanner *albums.Scanner

	mu        sync.Mutex
	cached    []models.Album
	scannedAt time.Time
}

// NewAlbumHandlers creates the album handler set.
func NewAlbumHandlers(scanner *albums.Scanner) *AlbumHandlers {
	return &AlbumHandlers{scanner: scanner}
}

func (h *AlbumHandlers) scanAll() ([]models.Album, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cached != nil && time.Since(h.scannedAt) < albumListTTL {
		return h.cached, nil
	}

	scanned, err := h.scanner.ScanAll()
	if err != nil {
		return nil, err
	}
	h.cached = scanned
	h.scannedAt = time.Now()
	return scanned, nil
}

// List returns every album with its metadata.
func (h *AlbumHandlers) List(c *gin.Context) {
	all, err := h.scanAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"albums": all})
}

// Get returns one album by directory name.
func (h *AlbumHandlers) Get(c *gin.Context) {
	name := c.Param("name")

	all, err := h.scanAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	for i := range all {
		if all[i].Name == name {
			c.JSON(http.StatusOK, all[i])
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "album not found"})
}
