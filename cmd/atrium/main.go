package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atriumhq/atrium/internal/ai"
	"github.com/atriumhq/atrium/internal/api"
	"github.com/atriumhq/atrium/internal/autosave"
	"github.com/atriumhq/atrium/internal/cache"
	"github.com/atriumhq/atrium/internal/config"
	"github.com/atriumhq/atrium/internal/content"
	"github.com/atriumhq/atrium/internal/directory"
	"github.com/atriumhq/atrium/internal/events"
	"github.com/atriumhq/atrium/internal/health"
	"github.com/atriumhq/atrium/internal/indexer"
	"github.com/atriumhq/atrium/internal/search"
	"github.com/atriumhq/atrium/internal/settings"
	"github.com/atriumhq/atrium/internal/store"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	var (
		configFile  = flag.String("config", "config/config.yaml", "Configuration file path")
		showVersion = flag.Bool("version", false, "Show version information")
		help        = flag.Bool("help", false, "Show help information")
	)
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if *showVersion {
		fmt.Printf("Atrium version %s\nCommit: %s\nBuilt: %s\n", version, commit, date)
		return
	}

	log.Printf("Starting Atrium v%s (commit: %s, built: %s)", version, commit, date)

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Document store
	db, err := store.Open(cfg.Database, cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// AI settings and providers
	settingsService := settings.NewService(db)
	aiService := ai.NewService(settingsService, ai.Credentials{
		OpenAIAPIKey:  cfg.Secrets.OpenAIAPIKey,
		MistralAPIKey: cfg.Secrets.MistralAPIKey,
	})

	// Event bus
	var bus events.Publisher = events.NopPublisher{}
	var kafkaBus *events.KafkaBus
	if cfg.Events.Enabled {
		kafkaBus, err = events.NewKafkaBus(cfg.Events)
		if err != nil {
			log.Fatalf("Failed to initialize event bus: %v", err)
		}
		defer kafkaBus.Close()
		bus = kafkaBus
	}

	// Embedding pipeline
	processor := indexer.NewEmbedProcessor(db, aiService, bus)
	queue := indexer.NewQueue(processor, bus, cfg.Indexer.JobDelay, cfg.Indexer.MaxRetries)
	reindexer := indexer.NewReindexer(db, processor)

	// Content and autosave
	contentService := content.NewService(db, queue, bus)
	autosaveManager := autosave.NewManager(db, content.Persister{Service: contentService}, autosave.Config{
		SaveDebounce:     cfg.Autosave.SaveDebounce,
		VersionDebounce:  cfg.Autosave.VersionDebounce,
		MinVersionLength: cfg.Autosave.MinVersionLength,
	})
	defer autosaveManager.Shutdown()

	// Search
	retriever := search.NewRetriever(db, aiService)

	// Org directory with optional Redis read-through cache
	var directoryService *directory.Service
	if cfg.Directory.Enabled {
		neo4jStore, err := directory.NewNeo4jStore(cfg.Directory, cfg.Secrets.Neo4jPassword)
		if err != nil {
			log.Fatalf("Failed to initialize org directory: %v", err)
		}
		defer neo4jStore.Close(context.Background())

		var directoryCache directory.Cache = directory.NopCache{}
		if cfg.Redis.Enabled {
			redisCache := cache.NewRedisCache(cfg.Redis, cfg.Secrets.RedisPassword)
			defer redisCache.Close()
			directoryCache = redisCache
		}
		directoryService = directory.NewService(neo4jStore, directoryCache)
	}

	// Health checks
	healthChecker := health.NewHealthChecker()
	healthChecker.Register(health.NewPingCheck("database", db, 200*time.Millisecond))
	if kafkaBus != nil {
		healthChecker.Register(health.NewPingCheck("kafka", kafkaBus, time.Second))
	}

	gateway := api.NewGateway(cfg.API, cfg.Secrets.JWTSecret, api.Deps{
		Store:     db,
		Content:   contentService,
		Retriever: retriever,
		Chat:      aiService,
		Queue:     queue,
		Reindexer: reindexer,
		Autosave:  autosaveManager,
		Directory: directoryService,
		Settings:  settingsService,
		Providers: aiService,
		Health:    healthChecker,
		Events:    bus,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- gateway.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, shutting down", sig)
	case err := <-errCh:
		log.Printf("Gateway stopped: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := gateway.Stop(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}

	queue.Clear()
	log.Printf("Shutdown complete")
}

func printHelp() {
	fmt.Printf(`Atrium - Intranet knowledge base and helpdesk backend

Usage:
  atrium [flags]

Flags:
  -config string
        Configuration file path (default "config/config.yaml")
  -version
        Show version information
  -help
        Show this help message

Examples:
  atrium                                    # Start with default config
  atrium -config config/production.yaml     # Start with production config
`)
}
