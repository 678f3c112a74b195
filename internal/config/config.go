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
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pterm/pterm"
)

// Config holds all process-level configuration, read from the environment
type Config struct {
	// Server
	ListenAddr string

	// Database
	DBPath       string
	MaxOpenConns int
	MaxIdleConns int
	ConnMaxLife  time.Duration

	// Reputation API
	APIBaseURL string

	// Lookup behavior
	StrictIPv4 bool

	// Purge sweep
	PurgeTime     string
	PurgeInterval time.Duration

	// Optional GeoIP fallback databases
	GeoIPCountryDBPath string
	GeoIPASNDBPath     string

	// Debugging
	ProfilingEnabled bool

	// Logging
	LogLevel pterm.LogLevel
}

// Load reads configuration from environment variables, applying defaults for
// anything unset
func Load() *Config {
	return &Config{
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		DBPath:             getEnv("DB_PATH", "greylog.db"),
		MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
		ConnMaxLife:        getEnvDuration("DB_CONN_MAX_LIFE", time.Hour),
		APIBaseURL:         getEnv("GREYNOISE_BASE_URL", ""),
		StrictIPv4:         getEnvBool("STRICT_IPV4", false),
		PurgeTime:          getEnv("PURGE_TIME", "02:00"),
		PurgeInterval:      getEnvDuration("PURGE_CHECK_INTERVAL", time.Hour),
		GeoIPCountryDBPath: getEnv("GEOIP_COUNTRY_DB", ""),
		GeoIPASNDBPath:     getEnv("GEOIP_ASN_DB", ""),
		ProfilingEnabled:   getEnvBool("ENABLE_PROFILING", false),
		LogLevel:           parseLogLevel(getEnv("LOG_LEVEL", "info")),
	}
}

func getEnv(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func parseLogLevel(level string) pterm.LogLevel {
	switch level {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "info":
		return pterm.LogLevelInfo
	case "warn":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	default:
		return pterm.LogLevelInfo
	}
}
