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
	"context"
	"net/http"
	"strings"

	"greylog/internal/database/models"
	"greylog/internal/database/repositories"
	"greylog/internal/greynoise"
	"greylog/internal/ipaddr"

	"github.com/pterm/pterm"
)

const loopbackAddress = "127.0.0.1"

// Outcome classifies what one pipeline invocation did. No error ever crosses
// the pipeline boundary; callers inspect the outcome and decide verbosity.
type Outcome int

const (
	// OutcomeDisabled means the feature flag is off or no validated
	// credential is present; no side effects
	OutcomeDisabled Outcome = iota
	// OutcomeSkippedLoopback means the client IP was empty or loopback
	OutcomeSkippedLoopback
	// OutcomeSkippedInvalidIP means the address failed IPv4 encoding
	OutcomeSkippedInvalidIP
	// OutcomeHit means the IP already had a log row; its hit counter was
	// incremented
	OutcomeHit
	// OutcomeLogged means the reputation service was consulted and a new
	// row was written
	OutcomeLogged
	// OutcomeAPIError means the reputation lookup failed; nothing was
	// written
	OutcomeAPIError
	// OutcomeStorageError means the log table could not be read or written
	OutcomeStorageError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDisabled:
		return "disabled"
	case OutcomeSkippedLoopback:
		return "skipped_loopback"
	case OutcomeSkippedInvalidIP:
		return "skipped_invalid_ip"
	case OutcomeHit:
		return "hit"
	case OutcomeLogged:
		return "logged"
	case OutcomeAPIError:
		return "api_error"
	case OutcomeStorageError:
		return "storage_error"
	default:
		return "unknown"
	}
}

// Logged reports whether the invocation left a side effect on the log table
func (o Outcome) Logged() bool {
	return o == OutcomeHit || o == OutcomeLogged
}

// Result is the observable output of one pipeline invocation
type Result struct {
	Outcome Outcome
	IP      string
	Err     error
}

// ReputationClient is the slice of the API client the pipeline needs
type ReputationClient interface {
	Lookup(ctx context.Context, ip string) (*greynoise.Verdict, error)
}

// Settings is the read-only view of the admin settings the pipeline consumes
type Settings interface {
	Running() bool
	APIKey() string
}

// Enricher fills verdict metadata from a local source when the API left it
// empty. Optional.
type Enricher interface {
	Enrich(verdict *greynoise.Verdict, ip string)
}

// Pipeline decides, for each incoming request, whether to consult the
// reputation service and how to persist the outcome
type Pipeline struct {
	repo     repositories.IPLogRepository
	client   ReputationClient
	settings Settings
	enricher Enricher
	logger   *pterm.Logger
	strict   bool
}

// NewPipeline creates a lookup pipeline. enricher may be nil. strict selects
// range-checked IPv4 encoding instead of the lenient inherited behavior.
func NewPipeline(
	repo repositories.IPLogRepository,
	client ReputationClient,
	settings Settings,
	enricher Enricher,
	logger *pterm.Logger,
	strict bool,
) *Pipeline {
	return &Pipeline{
		repo:     repo,
		client:   client,
		settings: settings,
		enricher: enricher,
		logger:   logger,
		strict:   strict,
	}
}

// ProcessRequest resolves the client address from the request and runs the
// pipeline on it
func (p *Pipeline) ProcessRequest(ctx context.Context, r *http.Request) Result {
	ip, proxy := ClientAddress(r)
	return p.Process(ctx, ip, proxy)
}

// Process runs one invocation of the lookup-and-log pipeline for a resolved
// client address
func (p *Pipeline) Process(ctx context.Context, clientIP string, isProxy bool) Result {
	if !p.settings.Running() {
		return Result{Outcome: OutcomeDisabled, IP: clientIP}
	}

	if clientIP == "" || clientIP == loopbackAddress {
		return Result{Outcome: OutcomeSkippedLoopback, IP: clientIP}
	}

	key, err := p.encode(clientIP)
	if err != nil {
		// Malformed / non-IPv4 input is dropped, not surfaced
		p.logger.Trace("Skipping unencodable client address", p.logger.Args("ip", clientIP))
		return Result{Outcome: OutcomeSkippedInvalidIP, IP: clientIP}
	}

	exists, err := p.repo.Exists(key)
	if err != nil {
		return Result{Outcome: OutcomeStorageError, IP: clientIP, Err: err}
	}

	if exists {
		if err := p.repo.IncrementHit(key); err != nil {
			return Result{Outcome: OutcomeStorageError, IP: clientIP, Err: err}
		}
		p.logger.Trace("Repeat visit", p.logger.Args("ip", clientIP))
		return Result{Outcome: OutcomeHit, IP: clientIP}
	}

	verdict, err := p.client.Lookup(ctx, clientIP)
	if err != nil {
		p.logger.Debug("Reputation lookup failed",
			p.logger.Args("ip", clientIP, "error", err))
		return Result{Outcome: OutcomeAPIError, IP: clientIP, Err: err}
	}

	if p.enricher != nil {
		p.enricher.Enrich(verdict, clientIP)
	}

	entry := buildLogEntry(key, clientIP, isProxy, verdict)
	if err := p.repo.Insert(entry); err != nil {
		return Result{Outcome: OutcomeStorageError, IP: clientIP, Err: err}
	}

	p.logger.Debug("Logged new visitor",
		p.logger.Args("ip", clientIP, "classification", entry.Classification, "proxy", isProxy))
	return Result{Outcome: OutcomeLogged, IP: clientIP}
}

func (p *Pipeline) encode(ip string) (uint64, error) {
	if p.strict {
		return ipaddr.EncodeStrict(ip)
	}
	return ipaddr.Encode(ip)
}

// buildLogEntry merges the verdict into a fresh log row. The CVE list is
// flattened to a comma-joined string for storage.
func buildLogEntry(key uint64, ip string, isProxy bool, verdict *greynoise.Verdict) *models.IPLog {
	return &models.IPLog{
		ID:             key,
		IPAddress:      ip,
		IsProxyAddress: isProxy,
		Seen:           verdict.Seen,
		Classification: verdict.Classification,
		CVE:            strings.Join(verdict.CVE, ","),
		Country:        verdict.Country,
		Org:            verdict.Org,
		RawResponse:    verdict.RawBody,
		Hits:           1,
	}
}
