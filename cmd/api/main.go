package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drivehub/drivehub-backend/internal/adapters/cache"
	"github.com/drivehub/drivehub-backend/internal/adapters/database"
	"github.com/drivehub/drivehub-backend/internal/adapters/search"
	"github.com/drivehub/drivehub-backend/internal/api/handlers"
	"github.com/drivehub/drivehub-backend/internal/api/middleware"
	"github.com/drivehub/drivehub-backend/internal/api/routes"
	"github.com/drivehub/drivehub-backend/internal/application/services"
	"github.com/drivehub/drivehub-backend/internal/domain/providers"
	"github.com/drivehub/drivehub-backend/internal/domain/repositories"
	"github.com/drivehub/drivehub-backend/internal/infrastructure/auth"
	"github.com/drivehub/drivehub-backend/internal/infrastructure/clients/postgres"
	"github.com/drivehub/drivehub-backend/internal/infrastructure/clients/redis"
	"github.com/drivehub/drivehub-backend/internal/infrastructure/clients/typesense"
	"github.com/drivehub/drivehub-backend/internal/infrastructure/notifications"
	"github.com/drivehub/drivehub-backend/internal/infrastructure/observability"
	"github.com/drivehub/drivehub-backend/pkg/config"
	"github.com/drivehub/drivehub-backend/pkg/secrets"
)

func main() {
	// Hydrate the environment from Vault before configuration is read
	vaultCtx, vaultCancel := context.WithTimeout(context.Background(), 10*time.Second)
	vaultResult, err := secrets.ApplyVaultSecrets(vaultCtx, secrets.LoadVaultConfigFromEnv())
	vaultCancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load secrets from vault: %v\n", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)
	logger := *observability.GetLogger()

	if vaultResult.Enabled {
		logger.Info().
			Str("path", vaultResult.Path).
			Int("loaded", vaultResult.Loaded).
			Int("skipped", vaultResult.Skipped).
			Msg("vault secrets applied")
	}

	if cfg.JWT.Secret == "" {
		logger.Fatal().Msg("JWT_SECRET must be set")
	}

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
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client and apply migrations
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	if err := pgClient.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply database migrations")
	}
	logger.Info().Msg("PostgreSQL client initialized")

	// Initialize Redis client; the API works without caching
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
		logger.Info().Msg("Redis client initialized")
	}

	// Initialize Typesense client; discovery falls back to PostgreSQL
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize Typesense client, search disabled")
		typesenseClient = nil
	} else {
		logger.Info().Msg("Typesense client initialized")
	}

	// Initialize adapters
	userAdapter := database.NewUserAdapter(pgClient)
	bookingAdapter := database.NewBookingAdapter(pgClient)
	reviewAdapter := database.NewReviewAdapter(pgClient)

	var searchRepo repositories.InstructorSearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.InitSchema(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to init Typesense schema")
		}
		searchRepo = adapter
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	var emailSender providers.EmailSender
	if cfg.Mail.APIURL != "" && cfg.Mail.APIKey != "" {
		sender, err := notifications.NewHTTPEmailSender(&cfg.Mail)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialize email sender, logging emails instead")
			emailSender = notifications.NewLogEmailSender()
		} else {
			emailSender = sender
		}
	} else {
		logger.Info().Msg("mail API not configured, logging emails instead")
		emailSender = notifications.NewLogEmailSender()
	}

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TokenTTL)

	// Initialize services
	notificationService := services.NewNotificationService(emailSender, userAdapter)
	instructorService := services.NewInstructorService(userAdapter, searchRepo)
	availabilityService := services.NewAvailabilityService(bookingAdapter, userAdapter)
	bookingService := services.NewBookingService(bookingAdapter, userAdapter, notificationService, metrics)
	reviewService := services.NewReviewService(reviewAdapter, bookingAdapter, userAdapter, instructorService)
	authService := services.NewAuthService(userAdapter, tokens, emailSender, instructorService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	instructorHandler := handlers.NewInstructorHandler(instructorService, availabilityService, reviewService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	reviewHandler := handlers.NewReviewHandler(reviewService)

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
		logger.Info().Msg("cache middleware initialized")
	}

	// Set up router
	router := routes.NewRouter(
		authHandler,
		instructorHandler,
		bookingHandler,
		reviewHandler,
		tokens,
		cacheMiddleware,
		metrics,
		logger,
		cfg.Server.AllowedOrigins,
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
		logger.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}

	logger.Info().Msg("server stopped")
}
