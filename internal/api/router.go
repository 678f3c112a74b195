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
package api

import (
	"net/http"

	"greylog/internal/api/handlers"
	"greylog/internal/lookup"
	"greylog/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Dashboard *handlers.DashboardHandler
	Settings  *handlers.SettingsHandler
	System    *handlers.SystemHandler
	Realtime  *handlers.RealtimeHandler
	Profiling *handlers.ProfilingHandler
}

// NewRouter builds the gin engine with all routes and the reputation
// middleware mounted
func NewRouter(h *Handlers, pipeline *lookup.Pipeline, collector *realtime.ActivityCollector, logger *pterm.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ReputationMiddleware(pipeline, collector, logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/summary", h.Dashboard.GetSummary)
		v1.GET("/widget", h.Dashboard.GetWidgetData)

		v1.GET("/logs", h.Dashboard.GetLogs)
		v1.DELETE("/logs/:ip", h.Dashboard.DeleteLog)
		v1.POST("/logs/delete", h.Dashboard.DeleteLogs)

		v1.GET("/settings", h.Settings.GetSettings)
		v1.PUT("/settings", h.Settings.UpdateSettings)

		v1.GET("/activity", h.Realtime.GetActivity)

		v1.GET("/system/stats", h.System.GetSystemStats)
		v1.POST("/system/purge", h.System.TriggerPurge)
	}

	if h.Profiling != nil && h.Profiling.IsEnabled() {
		debug := router.Group("/debug/profile")
		{
			debug.GET("/cpu", h.Profiling.CPUProfile)
			debug.GET("/heap", h.Profiling.HeapProfile)
			debug.GET("/goroutine", h.Profiling.GoroutineProfile)
			debug.GET("/memory", h.Profiling.MemoryStats)
		}
	}

	return router
}
