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
package lookup

import (
	"net"
	"net/http"
	"strings"
)

// OverrideParam is the query parameter that forces a specific IP to be
// looked up, taking precedence over headers and the connection peer.
// Useful for testing against known addresses.
const OverrideParam = "gl_ip"

// forwardHeaders are checked in precedence order; the first present header
// wins and marks the address as proxy-derived. Each header is read from its
// own value.
var forwardHeaders = []string{
	"X-Forwarded-For",
	"X-Forwarded",
	"Forwarded-For",
	"Forwarded",
}

// ClientAddress resolves the visiting client's IP for a request and reports
// whether it came from a forwarding header rather than the connection peer.
func ClientAddress(r *http.Request) (ip string, proxy bool) {
	if override := r.URL.Query().Get(OverrideParam); override != "" {
		return override, false
	}

	for _, header := range forwardHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}

		// A multi-hop chain lists the originating client first
		if idx := strings.IndexByte(value, ','); idx >= 0 {
			value = value[:idx]
		}

		return strings.TrimSpace(value), true
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port, use it as-is
		return r.RemoteAddr, false
	}

	return host, false
}
