package handler

import (
	"SecureDrop/internal/service"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// GetDownloadLogs returns recent download audit records for the managed link.
func GetDownloadLogs(c *gin.Context) {
	linkID := c.MustGet("link_id").(uint64)
	limit := parsePositiveInt(c.Query("limit"), 50)

	items, err := service.ListDownloadLogs(linkID, limit)
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "invalid link"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list download logs failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetDownloadStats returns grouped download stats for the managed link.
func GetDownloadStats(c *gin.Context) {
	linkID := c.MustGet("link_id").(uint64)
	days := parsePositiveInt(c.Query("days"), 30)

	stats, err := service.GetDownloadStats(linkID, days)
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "invalid link"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get download stats failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func parsePositiveInt(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
