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

	"github.com/pterm/pterm"
)

// ValidateIPAddress is the well-known public IP used to probe the API when
// checking a candidate credential
const ValidateIPAddress = "8.8.8.8"

// KeyValidator checks whether an API credential is accepted before it is
// persisted
type KeyValidator struct {
	baseURL string
	logger  *pterm.Logger
}

// NewKeyValidator creates a validator against the given API base URL
func NewKeyValidator(baseURL string, logger *pterm.Logger) *KeyValidator {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &KeyValidator{baseURL: baseURL, logger: logger}
}

// Validate performs one lookup of a known-benign IP with the candidate
// credential. Only reachability and authentication matter; the content of the
// response is irrelevant.
func (v *KeyValidator) Validate(ctx context.Context, apiKey string) bool {
	if apiKey == "" {
		return false
	}

	client := NewClient(v.baseURL, apiKey, v.logger)
	if _, err := client.Lookup(ctx, ValidateIPAddress); err != nil {
		v.logger.Debug("API key validation failed", v.logger.Args("error", err))
		return false
	}

	return true
}
