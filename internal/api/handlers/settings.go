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
	"errors"
	"net/http"
	"time"

	"greylog/internal/settings"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// SettingsHandler serves the admin settings endpoints
type SettingsHandler struct {
	store  *settings.Store
	logger *pterm.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(store *settings.Store, logger *pterm.Logger) *SettingsHandler {
	return &SettingsHandler{store: store, logger: logger}
}

// GetSettings returns the current settings. The credential itself is never
// echoed back, only whether one is stored and when it last validated.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	response := gin.H{
		"enabled":     h.store.Enabled(),
		"running":     h.store.Running(),
		"purge_days":  h.store.PurgeDays(),
		"has_api_key": h.store.APIKey() != "",
	}

	if validatedAt := h.store.ValidatedAt(); !validatedAt.IsZero() {
		response["api_key_validated_at"] = validatedAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, response)
}

// UpdateSettings applies a partial settings update. Each field is optional;
// absent fields are left untouched. A rejected API key clears the stored
// credential and fails the request.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var payload struct {
		APIKey    *string `json:"api_key"`
		Enabled   *bool   `json:"enabled"`
		PurgeDays *int    `json:"purge_days"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if payload.APIKey != nil {
		err := h.store.SetAPIKey(c.Request.Context(), *payload.APIKey)
		if errors.Is(err, settings.ErrCredentialInvalid) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "API key rejected by the reputation service",
			})
			return
		}
		if err != nil {
			h.logger.WithCaller().Error("Failed to save API key", h.logger.Args("error", err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save API key"})
			return
		}
	}

	if payload.Enabled != nil {
		if err := h.store.SetEnabled(*payload.Enabled); err != nil {
			h.logger.WithCaller().Error("Failed to save enable flag", h.logger.Args("error", err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
			return
		}
	}

	if payload.PurgeDays != nil {
		if err := h.store.SetPurgeDays(*payload.PurgeDays); err != nil {
			h.logger.WithCaller().Error("Failed to save purge days", h.logger.Args("error", err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
			return
		}
	}

	h.GetSettings(c)
}
