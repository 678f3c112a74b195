package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetWidgetData returns the compact counts used by the dashboard widget,
// with a traffic-light status derived from the malicious share of hits
func (h *DashboardHandler) GetWidgetData(c *gin.Context) {
	all, err := h.ipLogRepo.CountAll()
	if err != nil {
		h.widgetError(c, err)
		return
	}

	malicious, err := h.ipLogRepo.CountMalicious()
	if err != nil {
		h.widgetError(c, err)
		return
	}

	pct := maliciousPercentage(all.Hits, malicious.Hits)

	status := "healthy"
	if pct > 25 {
		status = "danger"
	} else if pct > 5 {
		status = "warning"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":               status,
		"total_ips":            all.Rows,
		"total_hits":           all.Hits,
		"malicious_ips":        malicious.Rows,
		"malicious_percentage": pct,
	})
}

func (h *DashboardHandler) widgetError(c *gin.Context, err error) {
	h.logger.Debug("Widget data fetch error", h.logger.Args("error", err))
	c.JSON(http.StatusOK, gin.H{
		"status":               "error",
		"total_ips":            0,
		"total_hits":           0,
		"malicious_ips":        0,
		"malicious_percentage": 0,
	})
}
