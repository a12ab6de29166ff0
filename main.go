package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LexiconIndonesia/property-scraper-service/common"
	"github.com/LexiconIndonesia/property-scraper-service/common/config"
	"github.com/LexiconIndonesia/property-scraper-service/common/db"
	"github.com/LexiconIndonesia/property-scraper-service/common/logger"
	"github.com/LexiconIndonesia/property-scraper-service/common/messaging"
	"github.com/LexiconIndonesia/property-scraper-service/common/services"
	"github.com/LexiconIndonesia/property-scraper-service/common/storage"
	"github.com/LexiconIndonesia/property-scraper-service/common/work"
	"github.com/LexiconIndonesia/property-scraper-service/crawlers"
	"github.com/LexiconIndonesia/property-scraper-service/crawlers/fincaraiz"

	"github.com/rs/zerolog/log"

	"github.com/joho/godotenv"

	_ "github.com/LexiconIndonesia/property-scraper-service/docs"
)

// @title          Property Scraper Service API
// @version        1.0
// @description    Scrapes fincaraiz.com.co listings and serves the stored properties and scrape task status.

// @host     localhost:8080
// @BasePath /v1
// @schemes  http https

func main() {
	// INITIATE CONFIGURATION
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("Error loading .env file, using environment variables")
	}

	cfg := config.DefaultConfig()
	cfg.LoadFromEnv()

	logger.InitializeLogging(cfg)

	// Create a base context with cancel for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// INITIATE DATABASES
	dbConn, err := db.SetupDatabase(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to setup database")
	}
	defer dbConn.Close()

	if err := dbConn.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// INITIATE NATS
	var events messaging.TaskEventPublisher = messaging.NopPublisher{}
	if cfg.Nats.Enabled {
		broker, err := messaging.SetupNatsBroker(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to setup NATS broker")
		}
		defer broker.Close()

		if err := messaging.EnsureTaskStream(ctx, broker); err != nil {
			log.Fatal().Err(err).Msg("Failed to create task event stream")
		}
		events = messaging.NewTaskEventPublisher(broker)
	}

	// gcs
	var archive storage.PageArchive = storage.NopArchive{}
	if cfg.Scraper.ArchivePages && cfg.GCS.Enabled() {
		gcsStorage, err := storage.NewGCSStorage(ctx, cfg.GCS)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to setup GCS storage")
		}
		defer gcsStorage.Close()
		archive = storage.NewPageArchive(gcsStorage, cfg.GCS.Bucket, common.SourceName)
		log.Info().Str("bucket", cfg.GCS.Bucket).Msg("Archiving result pages")
	}

	var guard work.RunGuard = work.NewMemoryGuard()
	if dbConn.Redis != nil {
		guard = work.NewRedisGuard(dbConn.Redis)
	}

	// INITIATE SCRAPER
	logs := logger.NewRingBuffer(int(cfg.Scraper.LogCapacity))
	tracker := services.NewTaskTracker(dbConn.Queries, logs, events)
	properties := services.NewPropertyStore(services.NewPgxTxBeginner(dbConn.Pool), dbConn.Queries)

	orchestrator, err := crawlers.NewOrchestrator(tracker, properties, fincaraiz.ConfigFrom(cfg.Scraper),
		crawlers.WithPageArchive(archive),
		crawlers.WithRunGuard(guard),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scrape orchestrator")
	}

	pool, err := work.NewWorkerPool[struct{}](int(cfg.Scraper.Workers), int(cfg.Scraper.QueueSize))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create worker pool")
	}
	dispatcher := crawlers.NewDispatcher(orchestrator, pool)
	dispatcher.Start(ctx)

	// INITIATE SERVER
	server, err := NewAppHttpServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create the server")
	}

	// Inject dependencies
	server.SetDB(dbConn)
	server.SetScraper(dispatcher, tracker)
	server.SetPropertyStore(properties)

	// Setup routes
	server.setupRoute()

	// Start server in a goroutine
	go func() {
		if err := server.start(); err != nil {
			log.Error().Err(err).Msg("Server error")
			shutdown <- syscall.SIGTERM
		}
	}()

	log.Info().Str("address", cfg.Listen.Addr()).Msg("Server started successfully")
	log.Info().Str("swagger", fmt.Sprintf("http://%s/swagger/index.html", cfg.Listen.Addr())).Msg("Swagger documentation available at")

	// Wait for shutdown signal
	<-shutdown
	log.Info().Msg("Shutdown signal received")

	// Create a timeout context for graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	dispatcher.Stop()

	log.Info().Msg("Server gracefully stopped")
}
