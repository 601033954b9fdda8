package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"coverly-core-importer-layer/internal/application"
	"coverly-core-importer-layer/internal/application/event_handlers"
	apiinfra "coverly-core-importer-layer/internal/infrastructure/api"
	"coverly-core-importer-layer/internal/infrastructure/browser"
	"coverly-core-importer-layer/internal/infrastructure/cache"
	"coverly-core-importer-layer/internal/infrastructure/metrics"
	"coverly-core-importer-layer/internal/infrastructure/pubsub"
	"coverly-core-importer-layer/internal/infrastructure/repository"
	"coverly-core-importer-layer/internal/infrastructure/scraper"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	securitymiddleware "coverly-core-importer-layer/internal/infrastructure/middleware"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	// Get configuration from environment
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	// Connect to MongoDB
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(os.Getenv("MONGODB_DATABASE"))

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Initialize metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	importMetrics := metrics.New(registry)

	// Initialize repositories
	productRepo := repository.NewMongoProductRepository(db)
	connectionRepo := repository.NewMongoConnectionRepository(db)

	// Initialize import lock and dedup cache
	importCache := cache.NewRedisImportCache(redisClient, logger)

	// Initialize browser session manager
	browserCfg := browser.DefaultConfig()
	if bin := os.Getenv("BROWSER_BIN"); bin != "" {
		browserCfg.Bin = bin
	}
	if headless := os.Getenv("SCRAPER_HEADLESS"); headless != "" {
		if v, err := strconv.ParseBool(headless); err == nil {
			browserCfg.Headless = v
		}
	}
	sessionManager := browser.NewSessionManager(browserCfg, logger)

	// Initialize retailer drivers
	driverRegistry := scraper.NewRegistry(
		scraper.NewWalmartDriver(logger),
	)

	// Initialize event dispatcher and register handlers
	eventDispatcher := application.NewImportEventDispatcher(logger)
	eventDispatcher.RegisterHandler(event_handlers.NewAuditHandler(logger))
	eventDispatcher.RegisterHandler(event_handlers.NewMetricsHandler(importMetrics, logger))

	// Initialize pub/sub for live event streaming
	importPubSub := pubsub.NewImportPubSub(logger)

	// Initialize application services
	importService := application.NewImportService(
		driverRegistry,
		sessionManager,
		productRepo,
		connectionRepo,
		importCache,
		importCache,
		eventDispatcher,
		importPubSub,
		logger,
	)

	connectionService := application.NewConnectionService(connectionRepo, logger)

	// Initialize HTTP handlers
	importHandler := apiinfra.NewImportHandler(importService, logger)
	connectionHandler := apiinfra.NewConnectionHandler(connectionService, logger)
	eventsHandler := apiinfra.NewEventsHandler(importPubSub, logger)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(securitymiddleware.SecurityHeadersMiddleware())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Identity middleware skips public routes like /health, /metrics and /swagger/*
	r.Use(securitymiddleware.UserIdentityMiddleware(logger))

	// Public routes (no user identity required)
	// Health check - must be public for monitoring
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Prometheus metrics - public
	r.Get("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP)

	// Swagger documentation - public
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), // The URL pointing to API definition
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// Routes requiring user identity
	r.Post("/api/import/credentialed-scrape", importHandler.HandleCredentialedScrape)
	r.Get("/api/import/events", eventsHandler.HandleStream)
	r.Get("/api/connections", connectionHandler.HandleList)
	r.Delete("/api/connections/{retailer}", connectionHandler.HandleDelete)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info().Str("port", port).Msg("Starting API server")
	logger.Info().Msg("Swagger documentation available at http://localhost:" + port + "/swagger/index.html")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}
