package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuma-shin/y-shin.net/analytics"
)

// AnalyticsHandlers serves cached Umami statistics.
type AnalyticsHandlers struct {
	service *analytics.Service
}

// NewAnalyticsHandlers creates the analytics handler set. service may be nil
// when Umami is not configured.
func NewAnalyticsHandlers(service *analytics.Service) *AnalyticsHandlers {
	return &AnalyticsHandlers{service: service}
}

// Stats returns the 30-day aggregate site statistics.
func (h *AnalyticsHandlers) Stats(c *gin.Context) {
	if h.service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analytics not configured"})
		return
	}

	stats, err := h.service.GetSiteStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Pageviews returns the daily pageview series.
func (h *AnalyticsHandlers) Pageviews(c *gin.Context) {
	if h.service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analytics not configured"})
		return
	}

	series, err := h.service.GetPageviews(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"pageviews": series})
}
