package handlers

import (
	"net/http"

	"greylog/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// RealtimeHandler serves the live lookup activity endpoint
type RealtimeHandler struct {
	collector *realtime.ActivityCollector
	logger    *pterm.Logger
}

// NewRealtimeHandler creates a new realtime handler
func NewRealtimeHandler(collector *realtime.ActivityCollector, logger *pterm.Logger) *RealtimeHandler {
	return &RealtimeHandler{collector: collector, logger: logger}
}

// GetActivity returns the current snapshot of pipeline activity: lookup
// rate over the last minute, running outcome totals and the most recent
// events, newest first
func (h *RealtimeHandler) GetActivity(c *gin.Context) {
	c.JSON(http.StatusOK, h.collector.Snapshot())
}
