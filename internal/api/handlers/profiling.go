package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// maxCPUProfileDuration caps synchronous CPU profile captures
const maxCPUProfileDuration = 60 * time.Second

// ProfilingHandler exposes pprof captures for debugging. Disabled unless
// explicitly enabled in the configuration.
type ProfilingHandler struct {
	logger  *pterm.Logger
	enabled bool
}

// NewProfilingHandler creates a new profiling handler
func NewProfilingHandler(enabled bool, logger *pterm.Logger) *ProfilingHandler {
	return &ProfilingHandler{logger: logger, enabled: enabled}
}

// IsEnabled returns true if profiling is enabled
func (h *ProfilingHandler) IsEnabled() bool {
	return h.enabled
}

// CPUProfile captures a CPU profile for the requested duration and returns
// it as a pprof download. The request blocks while the profile runs.
func (h *ProfilingHandler) CPUProfile(c *gin.Context) {
	durationStr := c.DefaultQuery("duration", "30s")
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Invalid duration: %v", err),
		})
		return
	}
	if duration > maxCPUProfileDuration {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Maximum profiling duration is %s", maxCPUProfileDuration),
		})
		return
	}

	var buf bytes.Buffer
	if err := pprof.StartCPUProfile(&buf); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	time.Sleep(duration)
	pprof.StopCPUProfile()

	h.logger.Info("CPU profile captured", h.logger.Args("duration", duration))
	h.sendProfile(c, "cpu", buf.Bytes())
}

// HeapProfile captures and returns a heap profile
func (h *ProfilingHandler) HeapProfile(c *gin.Context) {
	var buf bytes.Buffer
	if err := pprof.WriteHeapProfile(&buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Failed to capture heap profile: %v", err),
		})
		return
	}

	h.sendProfile(c, "heap", buf.Bytes())
}

// GoroutineProfile captures and returns a goroutine profile
func (h *ProfilingHandler) GoroutineProfile(c *gin.Context) {
	profile := pprof.Lookup("goroutine")
	if profile == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get goroutine profile",
		})
		return
	}

	var buf bytes.Buffer
	if err := profile.WriteTo(&buf, 1); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Failed to write goroutine profile: %v", err),
		})
		return
	}

	h.sendProfile(c, "goroutine", buf.Bytes())
}

// MemoryStats returns current memory statistics
func (h *ProfilingHandler) MemoryStats(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, gin.H{
		"alloc":           m.Alloc,
		"total_alloc":     m.TotalAlloc,
		"sys":             m.Sys,
		"heap_alloc":      m.HeapAlloc,
		"heap_sys":        m.HeapSys,
		"heap_in_use":     m.HeapInuse,
		"heap_objects":    m.HeapObjects,
		"next_gc":         m.NextGC,
		"num_gc":          m.NumGC,
		"gc_cpu_fraction": m.GCCPUFraction,
		"num_goroutines":  runtime.NumGoroutine(),
	})
}

func (h *ProfilingHandler) sendProfile(c *gin.Context, kind string, data []byte) {
	filename := fmt.Sprintf("%s_%s.pprof", kind, time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/octet-stream", data)
}
