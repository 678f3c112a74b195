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
package greynoise

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/pterm/pterm"
)

const (
	// DefaultBaseURL is the GreyNoise API base URL
	DefaultBaseURL = "https://api.greynoise.io"

	// ClassificationUnseen is the sentinel classification assigned to IPs the
	// API has never observed, regardless of what the response body contains
	ClassificationUnseen = "unseen"

	// ClassificationMalicious marks IPs the purge sweep must never delete
	ClassificationMalicious = "malicious"

	requestTimeout = 30 * time.Second
	maxRedirects   = 10
)

// Verdict is the normalized result of one IP context lookup
type Verdict struct {
	Seen           bool
	Classification string
	CVE            []string
	Country        string
	Org            string

	// RawBody and Parsed are retained for audit regardless of content
	RawBody string
	Parsed  map[string]interface{}
}

// APIError reports a failed lookup: a non-200 status, or a transport-level
// error (DNS, TLS, connection refused, timeout)
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("greynoise: HTTP %d", e.Status)
	}
	return fmt.Sprintf("greynoise: %s", e.Message)
}

// contextResponse mirrors the shape of the IP context endpoint body
type contextResponse struct {
	Seen           bool     `json:"seen"`
	Classification string   `json:"classification"`
	CVE            []string `json:"cve"`
	Metadata       struct {
		Country      string `json:"country"`
		Organization string `json:"organization"`
	} `json:"metadata"`
}

// Client performs IP context lookups against the GreyNoise API
type Client struct {
	baseURL    string
	keyFunc    func() string
	httpClient *http.Client
	logger     *pterm.Logger
}

// NewClient creates a GreyNoise API client for a fixed credential.
// Requests use HTTP/1.1, a fixed 30 second timeout and follow at most
// 10 redirects. No retries are attempted; retry policy belongs to callers.
func NewClient(baseURL string, apiKey string, logger *pterm.Logger) *Client {
	return NewClientWithKeyFunc(baseURL, func() string { return apiKey }, logger)
}

// NewClientWithKeyFunc creates a client that reads the credential on every
// request. Used when the key can change at runtime through the settings store.
func NewClientWithKeyFunc(baseURL string, keyFunc func() string, logger *pterm.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		keyFunc: keyFunc,
		httpClient: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				// Empty TLSNextProto disables HTTP/2 negotiation
				TLSNextProto:      map[string]func(string, *tls.Conn) http.RoundTripper{},
				ForceAttemptHTTP2: false,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		logger: logger,
	}
}

// Lookup queries the IP context endpoint for the given dotted address and
// normalizes the body into a Verdict. Success is exactly HTTP 200 with no
// transport error; anything else returns an *APIError.
func (c *Client) Lookup(ctx context.Context, ip string) (*Verdict, error) {
	url := fmt.Sprintf("%s/v2/noise/context/%s", c.baseURL, ip)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("key", c.keyFunc())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("GreyNoise request failed", c.logger.Args("ip", ip, "error", err))
		return nil, &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("GreyNoise non-200 response",
			c.logger.Args("ip", ip, "status", resp.StatusCode))
		return nil, &APIError{Status: resp.StatusCode, Message: string(body)}
	}

	return normalizeVerdict(body, c.logger)
}

// normalizeVerdict parses the response body into a Verdict. The classification
// is only meaningful when the IP has been seen; unseen IPs are forced to the
// "unseen" sentinel no matter what the body says.
func normalizeVerdict(body []byte, logger *pterm.Logger) (*Verdict, error) {
	var parsed contextResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		logger.Debug("GreyNoise body parse failed", logger.Args("error", err))
		return nil, &APIError{Status: http.StatusOK, Message: err.Error()}
	}

	verdict := &Verdict{
		Seen:           parsed.Seen,
		Classification: parsed.Classification,
		CVE:            parsed.CVE,
		Country:        parsed.Metadata.Country,
		Org:            parsed.Metadata.Organization,
		RawBody:        string(body),
	}

	if !parsed.Seen {
		verdict.Classification = ClassificationUnseen
	}

	// Keep the loosely typed view of the body for audit/debugging
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err == nil {
		verdict.Parsed = raw
	}

	return verdict, nil
}
