// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package handlers

import (
	"math"
	"net/http"
	"strconv"

	"greylog/internal/database/repositories"
	"greylog/internal/ipaddr"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// DashboardHandler serves the log summary and log browsing endpoints
type DashboardHandler struct {
	ipLogRepo repositories.IPLogRepository
	logger    *pterm.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(ipLogRepo repositories.IPLogRepository, logger *pterm.Logger) *DashboardHandler {
	return &DashboardHandler{ipLogRepo: ipLogRepo, logger: logger}
}

// GetSummary returns the aggregate counts shown on the dashboard: distinct
// IPs and total hits, overall and for malicious rows, plus the malicious
// share of all hits as a percentage
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	all, err := h.ipLogRepo.CountAll()
	if err != nil {
		h.logger.WithCaller().Error("Failed to count logs", h.logger.Args("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count logs"})
		return
	}

	malicious, err := h.ipLogRepo.CountMalicious()
	if err != nil {
		h.logger.WithCaller().Error("Failed to count malicious logs", h.logger.Args("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_ips":            all.Rows,
		"total_hits":           all.Hits,
		"malicious_ips":        malicious.Rows,
		"malicious_hits":       malicious.Hits,
		"malicious_percentage": maliciousPercentage(all.Hits, malicious.Hits),
	})
}

// maliciousPercentage returns the malicious share of all hits, rounded to
// two decimals. Zero total yields zero rather than NaN.
func maliciousPercentage(totalHits int64, maliciousHits int64) float64 {
	if totalHits == 0 {
		return 0
	}
	return math.Round(float64(maliciousHits)/float64(totalHits)*100*100) / 100
}

// GetLogs returns one page of log rows, newest activity first. Supports
// page/page_size pagination and an ip substring search.
func (h *DashboardHandler) GetLogs(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil && val > 0 {
			page = val
		}
	}

	pageSize := defaultPageSize
	if raw := c.Query("page_size"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil && val > 0 && val <= maxPageSize {
			pageSize = val
		}
	}

	search := c.Query("search")

	logs, err := h.ipLogRepo.Page((page-1)*pageSize, pageSize, search)
	if err != nil {
		h.logger.WithCaller().Error("Failed to page logs", h.logger.Args("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":      page,
		"page_size": pageSize,
		"logs":      logs,
	})
}

// DeleteLog removes a single log row, addressed by its dotted IP
func (h *DashboardHandler) DeleteLog(c *gin.Context) {
	ip := c.Param("ip")

	key, err := ipaddr.Encode(ip)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid IP address"})
		return
	}

	if err := h.ipLogRepo.DeleteOne(key); err != nil {
		h.logger.WithCaller().Error("Failed to delete log",
			h.logger.Args("ip", ip, "error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete log"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": ip})
}

// DeleteLogs removes a batch of log rows addressed by dotted IP. Unknown
// addresses are skipped; malformed ones fail the whole request.
func (h *DashboardHandler) DeleteLogs(c *gin.Context) {
	var payload struct {
		IPs []string `json:"ips"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if len(payload.IPs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No IPs given"})
		return
	}

	keys := make([]uint64, 0, len(payload.IPs))
	for _, ip := range payload.IPs {
		key, err := ipaddr.Encode(ip)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid IP address: " + ip})
			return
		}
		keys = append(keys, key)
	}

	deleted, err := h.ipLogRepo.DeleteMany(keys)
	if err != nil {
		h.logger.WithCaller().Error("Failed to bulk delete logs",
			h.logger.Args("count", len(keys), "error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
