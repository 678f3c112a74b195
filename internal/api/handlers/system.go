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
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"greylog/internal/database"
	"greylog/internal/database/repositories"
	"greylog/internal/settings"
	"greylog/internal/version"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// SystemHandler handles system statistics and maintenance requests
type SystemHandler struct {
	ipLogRepo    repositories.IPLogRepository
	purgeService *database.PurgeService
	store        *settings.Store
	logger       *pterm.Logger
	startTime    time.Time
	dbPath       string
}

// SystemStats holds comprehensive system statistics
type SystemStats struct {
	// Process Info
	AppVersion    string  `json:"app_version"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	StartTime     string  `json:"start_time"`
	GoVersion     string  `json:"go_version"`
	NumCPU        int     `json:"num_cpu"`
	NumGoroutines int     `json:"num_goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	MemorySysMB   float64 `json:"memory_sys_mb"`
	GCPauseMs     float64 `json:"gc_pause_ms"`

	// Database Info
	TotalRecords   int64   `json:"total_records"`
	TotalHits      int64   `json:"total_hits"`
	DatabaseSizeMB float64 `json:"database_size_mb"`
	DatabasePath   string  `json:"database_path"`

	// Purge Info
	PurgeDays          int    `json:"purge_days"`
	NextPurgeTime      string `json:"next_purge_time"`
	NextPurgeCountdown string `json:"next_purge_countdown"`
	LastPurgeTime      string `json:"last_purge_time"`
	LastPurgeDeleted   int64  `json:"last_purge_deleted"`
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(
	ipLogRepo repositories.IPLogRepository,
	purgeService *database.PurgeService,
	store *settings.Store,
	logger *pterm.Logger,
	dbPath string,
) *SystemHandler {
	return &SystemHandler{
		ipLogRepo:    ipLogRepo,
		purgeService: purgeService,
		store:        store,
		logger:       logger,
		startTime:    time.Now(),
		dbPath:       dbPath,
	}
}

// GetSystemStats returns comprehensive system statistics
func (h *SystemHandler) GetSystemStats(c *gin.Context) {
	stats, err := h.collectSystemStats()
	if err != nil {
		h.logger.WithCaller().Error("Failed to collect system stats", h.logger.Args("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to collect system stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// TriggerPurge starts a purge sweep in the background
func (h *SystemHandler) TriggerPurge(c *gin.Context) {
	if err := h.purgeService.ManualPurge(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "purge started"})
}

// collectSystemStats gathers all system statistics
func (h *SystemHandler) collectSystemStats() (*SystemStats, error) {
	stats := &SystemStats{
		AppVersion:    version.Version,
		StartTime:     h.startTime.Format(time.RFC3339),
		GoVersion:     runtime.Version(),
		NumCPU:        runtime.NumCPU(),
		NumGoroutines: runtime.NumGoroutine(),
		DatabasePath:  h.dbPath,
		PurgeDays:     h.store.PurgeDays(),
	}

	uptime := time.Since(h.startTime)
	stats.UptimeSeconds = int64(uptime.Seconds())
	stats.Uptime = formatDuration(uptime)

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.MemoryAllocMB = float64(m.Alloc) / 1024 / 1024
	stats.MemoryTotalMB = float64(m.TotalAlloc) / 1024 / 1024
	stats.MemorySysMB = float64(m.Sys) / 1024 / 1024
	stats.GCPauseMs = float64(m.PauseNs[(m.NumGC+255)%256]) / 1000000

	counts, err := h.ipLogRepo.CountAll()
	if err != nil {
		h.logger.WithCaller().Warn("Failed to count log rows", h.logger.Args("error", err))
	} else {
		stats.TotalRecords = counts.Rows
		stats.TotalHits = counts.Hits
	}

	if fileInfo, err := os.Stat(h.dbPath); err == nil {
		stats.DatabaseSizeMB = float64(fileInfo.Size()) / 1024 / 1024
	}

	if h.purgeService != nil {
		purgeStats := h.purgeService.GetStats()
		stats.NextPurgeTime = purgeStats.NextScheduledRun.Format(time.DateTime)
		stats.NextPurgeCountdown = formatDuration(time.Until(purgeStats.NextScheduledRun))
		stats.LastPurgeDeleted = purgeStats.RowsDeleted

		if !purgeStats.LastRunTime.IsZero() {
			stats.LastPurgeTime = purgeStats.LastRunTime.Format(time.DateTime)
		} else {
			stats.LastPurgeTime = "Never"
		}
	} else {
		stats.NextPurgeTime = "Disabled"
		stats.NextPurgeCountdown = "N/A"
		stats.LastPurgeTime = "N/A"
	}

	return stats, nil
}

// formatDuration formats a duration into a human-readable string
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return formatPlural(days, "day", hours, "hour")
	}
	if hours > 0 {
		return formatPlural(hours, "hour", minutes, "minute")
	}
	if minutes > 0 {
		return formatPlural(minutes, "minute", seconds, "second")
	}
	return formatPlural(seconds, "second", 0, "")
}

// formatPlural formats numbers with proper pluralization
func formatPlural(n1 int, unit1 string, n2 int, unit2 string) string {
	result := formatSingle(n1, unit1)
	if n2 > 0 && unit2 != "" {
		result += ", " + formatSingle(n2, unit2)
	}
	return result
}

// formatSingle formats a single value with pluralization
func formatSingle(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
