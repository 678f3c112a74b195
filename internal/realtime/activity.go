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
package realtime

import (
	"sync"
	"time"

	"greylog/internal/lookup"

	"github.com/pterm/pterm"
)

const (
	// BufferDuration is how much recent activity is kept in memory
	BufferDuration = 60 * time.Second
	// MaxRecentEvents caps the number of events returned in a snapshot
	MaxRecentEvents = 50
)

// Event is one pipeline invocation as seen by the live activity feed
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	Outcome   string    `json:"outcome"`
}

// ActivitySnapshot is the current view of pipeline activity
type ActivitySnapshot struct {
	LookupRate float64          `json:"lookup_rate"`
	Totals     map[string]int64 `json:"totals"`
	Recent     []Event          `json:"recent"`
	Timestamp  time.Time        `json:"timestamp"`
}

// ActivityCollector keeps a short in-memory window of pipeline results for
// the live activity endpoint. It never touches the database.
type ActivityCollector struct {
	logger *pterm.Logger

	bufferMu sync.Mutex
	buffer   []Event

	mu       sync.RWMutex
	totals   map[string]int64
	stopChan chan struct{}
	stopped  bool
}

// NewActivityCollector creates a collector with an empty window
func NewActivityCollector(logger *pterm.Logger) *ActivityCollector {
	return &ActivityCollector{
		logger:   logger,
		buffer:   make([]Event, 0, 256),
		totals:   make(map[string]int64),
		stopChan: make(chan struct{}),
	}
}

// Record adds one pipeline result to the window. Results are appended in
// arrival order; the window only needs rough chronology.
func (c *ActivityCollector) Record(result lookup.Result) {
	event := Event{
		Timestamp: time.Now(),
		IP:        result.IP,
		Outcome:   result.Outcome.String(),
	}

	c.bufferMu.Lock()
	c.buffer = append(c.buffer, event)
	c.bufferMu.Unlock()

	c.mu.Lock()
	c.totals[event.Outcome]++
	c.mu.Unlock()
}

// Start begins pruning the window at regular intervals
func (c *ActivityCollector) Start(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.prune(time.Now())
			case <-c.stopChan:
				c.logger.Info("Activity collector stopped")
				return
			}
		}
	}()
	c.logger.Info("Activity collector started", c.logger.Args("interval", interval.String()))
}

// Stop shuts the collector down
func (c *ActivityCollector) Stop() {
	c.mu.Lock()
	if !c.stopped {
		c.stopped = true
		close(c.stopChan)
	}
	c.mu.Unlock()
}

// prune drops events older than the buffer duration
func (c *ActivityCollector) prune(now time.Time) {
	cutoff := now.Add(-BufferDuration)

	c.bufferMu.Lock()
	defer c.bufferMu.Unlock()

	firstValid := len(c.buffer)
	for i, event := range c.buffer {
		if event.Timestamp.After(cutoff) {
			firstValid = i
			break
		}
	}

	if firstValid > 0 {
		// Reallocate so the old backing array can be collected
		kept := make([]Event, len(c.buffer)-firstValid)
		copy(kept, c.buffer[firstValid:])
		c.buffer = kept
	}
}

// Snapshot computes the current activity view from the window
func (c *ActivityCollector) Snapshot() *ActivitySnapshot {
	now := time.Now()
	c.prune(now)

	c.bufferMu.Lock()
	windowed := make([]Event, len(c.buffer))
	copy(windowed, c.buffer)
	c.bufferMu.Unlock()

	rate := float64(len(windowed)) / BufferDuration.Seconds()

	recent := windowed
	if len(recent) > MaxRecentEvents {
		recent = recent[len(recent)-MaxRecentEvents:]
	}
	// Newest first for display
	reversed := make([]Event, len(recent))
	for i, event := range recent {
		reversed[len(recent)-1-i] = event
	}

	c.mu.RLock()
	totals := make(map[string]int64, len(c.totals))
	for outcome, count := range c.totals {
		totals[outcome] = count
	}
	c.mu.RUnlock()

	return &ActivitySnapshot{
		LookupRate: rate,
		Totals:     totals,
		Recent:     reversed,
		Timestamp:  now,
	}
}
