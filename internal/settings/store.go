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
package settings

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"greylog/internal/database/repositories"

	"github.com/pterm/pterm"
)

// Setting names as persisted in the settings table
const (
	KeyAPIKey      = "api_key"
	KeyEnabled     = "is_enabled"
	KeyPurgeDays   = "purge_days"
	KeyValidatedAt = "api_key_validated_at"
)

// DefaultPurgeDays is the fallback when an invalid purge-day value is saved
const DefaultPurgeDays = 7

// validPurgeDays is the fixed set of allowed purge-age values
var validPurgeDays = []int{7, 14, 21, 30}

// ErrCredentialInvalid is returned when a candidate API key is rejected by
// the reputation service. The stored credential reverts to unset.
var ErrCredentialInvalid = errors.New("API key rejected by the reputation service")

// Validator checks a candidate API credential against the reputation service
type Validator interface {
	Validate(ctx context.Context, apiKey string) bool
}

// Store holds the admin-controlled settings, persisted through the settings
// repository and cached in memory. Every credential change is re-validated
// before it is accepted; there is no process-lifetime credential cache.
type Store struct {
	repo      repositories.SettingsRepository
	validator Validator
	logger    *pterm.Logger

	mu          sync.RWMutex
	apiKey      string
	enabled     bool
	purgeDays   int
	validatedAt time.Time
}

// NewStore creates a settings store and loads the persisted values
func NewStore(repo repositories.SettingsRepository, validator Validator, logger *pterm.Logger) (*Store, error) {
	s := &Store{
		repo:      repo,
		validator: validator,
		logger:    logger,
		purgeDays: DefaultPurgeDays,
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) load() error {
	apiKey, err := s.repo.Get(KeyAPIKey)
	if err != nil {
		return err
	}

	enabledRaw, err := s.repo.Get(KeyEnabled)
	if err != nil {
		return err
	}

	purgeDaysRaw, err := s.repo.Get(KeyPurgeDays)
	if err != nil {
		return err
	}

	validatedAtRaw, err := s.repo.Get(KeyValidatedAt)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.apiKey = apiKey
	s.enabled = enabledRaw == "1"
	s.purgeDays = sanitizePurgeDays(purgeDaysRaw)
	if validatedAtRaw != "" {
		if ts, err := time.Parse(time.RFC3339, validatedAtRaw); err == nil {
			s.validatedAt = ts
		}
	}

	s.logger.Debug("Settings loaded",
		s.logger.Args("enabled", s.enabled, "purge_days", s.purgeDays, "has_api_key", s.apiKey != ""))
	return nil
}

// SetAPIKey validates the candidate credential and persists it if accepted.
// A rejected credential clears the stored key and returns ErrCredentialInvalid.
func (s *Store) SetAPIKey(ctx context.Context, apiKey string) error {
	if !s.validator.Validate(ctx, apiKey) {
		s.logger.Warn("API key rejected, clearing stored credential")

		if err := s.repo.Set(KeyAPIKey, ""); err != nil {
			return err
		}

		s.mu.Lock()
		s.apiKey = ""
		s.validatedAt = time.Time{}
		s.mu.Unlock()

		return ErrCredentialInvalid
	}

	now := time.Now()
	if err := s.repo.Set(KeyAPIKey, apiKey); err != nil {
		return err
	}
	if err := s.repo.Set(KeyValidatedAt, now.Format(time.RFC3339)); err != nil {
		return err
	}

	s.mu.Lock()
	s.apiKey = apiKey
	s.validatedAt = now
	s.mu.Unlock()

	s.logger.Info("API key validated and saved")
	return nil
}

// SetEnabled switches the lookup pipeline on or off
func (s *Store) SetEnabled(enabled bool) error {
	value := "0"
	if enabled {
		value = "1"
	}
	if err := s.repo.Set(KeyEnabled, value); err != nil {
		return err
	}

	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()

	s.logger.Info("Logging toggled", s.logger.Args("enabled", enabled))
	return nil
}

// SetPurgeDays persists the purge-age setting. Values outside the allowed
// set fall back silently to the default rather than rejecting the save.
func (s *Store) SetPurgeDays(days int) error {
	clean := DefaultPurgeDays
	for _, valid := range validPurgeDays {
		if days == valid {
			clean = days
			break
		}
	}

	if err := s.repo.Set(KeyPurgeDays, strconv.Itoa(clean)); err != nil {
		return err
	}

	s.mu.Lock()
	s.purgeDays = clean
	s.mu.Unlock()

	return nil
}

// APIKey returns the currently stored (validated) credential, or ""
func (s *Store) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiKey
}

// Enabled returns the state of the enable flag
func (s *Store) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// Running reports whether the pipeline should do any work: the feature is
// enabled and a validated credential is present
func (s *Store) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled && s.apiKey != ""
}

// PurgeDays returns the configured purge age in days
func (s *Store) PurgeDays() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.purgeDays
}

// ValidatedAt returns when the stored credential last passed validation
func (s *Store) ValidatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validatedAt
}

func sanitizePurgeDays(raw string) int {
	days, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultPurgeDays
	}
	for _, valid := range validPurgeDays {
		if days == valid {
			return days
		}
	}
	return DefaultPurgeDays
}
