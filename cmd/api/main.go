package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/obikoya/care-triage-routing/internal/adapters/cache"
	"github.com/obikoya/care-triage-routing/internal/adapters/database"
	"github.com/obikoya/care-triage-routing/internal/adapters/events"
	"github.com/obikoya/care-triage-routing/internal/api/handlers"
	"github.com/obikoya/care-triage-routing/internal/api/routes"
	"github.com/obikoya/care-triage-routing/internal/application/services"
	"github.com/obikoya/care-triage-routing/internal/domain/providers"
	"github.com/obikoya/care-triage-routing/internal/domain/repositories"
	"github.com/obikoya/care-triage-routing/internal/infrastructure/clients/postgres"
	"github.com/obikoya/care-triage-routing/internal/infrastructure/clients/redis"
	"github.com/obikoya/care-triage-routing/internal/infrastructure/observability"
	"github.com/obikoya/care-triage-routing/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()

	// Initialize Redis client; the service degrades to uncached reads without it
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Redis unavailable, running without cache: %v", err)
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Redis cache and event bus initialized successfully")
	}

	// Initialize repositories
	queueRepo := database.NewQueueAdapter(pgClient)
	var providerRepo repositories.ProviderRepository = database.NewProviderAdapter(pgClient)
	if cacheProvider != nil {
		providerRepo = database.NewCachedProviderAdapter(providerRepo, cacheProvider)
	}

	// Initialize services
	queueService := services.NewValidationQueueService(queueRepo, cfg.Queue)
	queueService.SetMetrics(metrics)

	capacityService := services.NewCapacityService(providerRepo, cfg.Capacity)
	capacityService.SetMetrics(metrics)
	if eventBus != nil {
		capacityService.SetEventBus(eventBus)
	}

	rankingService := services.NewRankingService()
	rankingService.SetMetrics(metrics)

	// Initialize capacity invalidation service
	var invalidationService *services.CapacityInvalidationService
	if cacheProvider != nil && eventBus != nil {
		invalidationService = services.NewCapacityInvalidationService(cacheProvider, eventBus)
		if err := invalidationService.Start(); err != nil {
			log.Printf("Warning: Failed to start capacity invalidation service: %v", err)
		}
	}

	// Set up router
	router := routes.NewRouter(
		handlers.NewQueueHandler(queueService),
		handlers.NewCapacityHandler(capacityService),
		handlers.NewRankingHandler(rankingService, providerRepo),
		metrics,
	)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}
	if invalidationService != nil {
		invalidationService.Stop()
	}

	log.Println("Server stopped")
}
