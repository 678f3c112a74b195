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
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"greylog/internal/api"
	"greylog/internal/api/handlers"
	"greylog/internal/banner"
	"greylog/internal/config"
	"greylog/internal/database"
	"greylog/internal/database/repositories"
	"greylog/internal/enrichment"
	"greylog/internal/greynoise"
	"greylog/internal/lookup"
	"greylog/internal/realtime"
	"greylog/internal/settings"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
)

func main() {
	// Missing .env is fine, the environment may be set by the supervisor
	_ = godotenv.Load()

	banner.Print()

	cfg := config.Load()

	logger := pterm.DefaultLogger.WithLevel(cfg.LogLevel)

	db, err := database.NewConnection(&database.Config{
		Path:         cfg.DBPath,
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
		ConnMaxLife:  cfg.ConnMaxLife,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open database", logger.Args("path", cfg.DBPath, "error", err))
	}

	ipLogRepo := repositories.NewIPLogRepository(db, logger)
	settingsRepo := repositories.NewSettingsRepository(db)

	validator := greynoise.NewKeyValidator(cfg.APIBaseURL, logger)
	store, err := settings.NewStore(settingsRepo, validator, logger)
	if err != nil {
		logger.Fatal("Failed to load settings", logger.Args("error", err))
	}

	client := greynoise.NewClientWithKeyFunc(cfg.APIBaseURL, store.APIKey, logger)

	enricher, err := enrichment.NewGeoIPEnricher(cfg.GeoIPCountryDBPath, cfg.GeoIPASNDBPath, logger)
	if err != nil {
		logger.Fatal("Failed to load GeoIP databases", logger.Args("error", err))
	}
	defer enricher.Close()

	pipeline := lookup.NewPipeline(ipLogRepo, client, store, enricher, logger, cfg.StrictIPv4)

	collector := realtime.NewActivityCollector(logger)
	collector.Start(10 * time.Second)
	defer collector.Stop()

	purgeService := database.NewPurgeService(ipLogRepo, store, logger, cfg.PurgeTime, cfg.PurgeInterval)
	purgeService.Start()
	defer purgeService.Stop()

	router := api.NewRouter(&api.Handlers{
		Dashboard: handlers.NewDashboardHandler(ipLogRepo, logger),
		Settings:  handlers.NewSettingsHandler(store, logger),
		System:    handlers.NewSystemHandler(ipLogRepo, purgeService, store, logger, cfg.DBPath),
		Realtime:  handlers.NewRealtimeHandler(collector, logger),
		Profiling: handlers.NewProfilingHandler(cfg.ProfilingEnabled, logger),
	}, pipeline, collector, logger)

	go func() {
		logger.Info("Server listening", logger.Args("addr", cfg.ListenAddr))
		if err := router.Run(cfg.ListenAddr); err != nil {
			logger.Fatal("Server failed", logger.Args("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
}
