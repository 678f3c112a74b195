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
	"context"
	"strings"
	"time"

	"greylog/internal/lookup"
	"greylog/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// lookupDeadline bounds one background pipeline invocation. Slightly above
// the API client timeout so the client gives up first.
const lookupDeadline = 35 * time.Second

// skippedPrefixes are request paths that never trigger a reputation lookup
var skippedPrefixes = []string{"/api/", "/debug/", "/health"}

// ReputationMiddleware runs the lookup pipeline for every incoming request.
// The pipeline runs in the background with its own deadline; request
// handling never waits on the reputation service or the database.
func ReputationMiddleware(pipeline *lookup.Pipeline, collector *realtime.ActivityCollector, logger *pterm.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range skippedPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		// Resolve the address before the handler runs; the request
		// object must not be touched from the goroutine
		ip, proxy := lookup.ClientAddress(c.Request)

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), lookupDeadline)
			defer cancel()

			result := pipeline.Process(ctx, ip, proxy)
			if collector != nil {
				collector.Record(result)
			}
			if result.Outcome == lookup.OutcomeStorageError {
				logger.WithCaller().Error("Lookup pipeline storage failure",
					logger.Args("ip", result.IP, "error", result.Err))
			}
		}()

		c.Next()
	}
}
