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

	"github.com/yourorg/earnings-tracker/internal/client"
	"github.com/yourorg/earnings-tracker/internal/config"
	"github.com/yourorg/earnings-tracker/internal/handler"
	"github.com/yourorg/earnings-tracker/internal/kafka"
	"github.com/yourorg/earnings-tracker/internal/middleware"
	"github.com/yourorg/earnings-tracker/internal/repository"
	"github.com/yourorg/earnings-tracker/internal/service"
	"github.com/yourorg/earnings-tracker/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := connectToDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Connect to Redis (sessions + response cache)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Initialize repositories
	earningsRepo := repository.NewEarningsRepository(db, logger)
	watchlistRepo := repository.NewWatchlistRepository(db, logger)
	sessionStore := repository.NewSessionStore(redisClient, cfg.Auth.SessionPrefix)

	// Initialize clients and producers
	feedClient := client.NewNasdaqClient(
		cfg.Upstream.BaseURL,
		cfg.Upstream.Timeout,
		cfg.Upstream.MaxRetries,
		logger,
	)
	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ClientID, logger)
	defer producer.Close()

	// Initialize services
	ingestService := service.NewIngestService(
		earningsRepo,
		feedClient,
		producer,
		service.IngestConfig{
			Cooldown:           cfg.Upstream.FetchCooldown,
			HorizonMonths:      cfg.Upstream.HorizonMonths,
			EasternOffsetHours: cfg.Upstream.EasternOffsetHours,
			EventTopic:         cfg.Kafka.Topics["ingestionEvents"],
		},
		logger,
	)
	earningsService := service.NewEarningsService(earningsRepo, cfg.Upstream.EasternOffsetHours, logger)
	watchlistService := service.NewWatchlistService(watchlistRepo, logger)

	// Initialize handlers
	earningsHandler := handler.NewEarningsHandler(ingestService, earningsService, logger)
	watchlistHandler := handler.NewWatchlistHandler(watchlistService, logger)

	// Register request field validators
	if err := validator.RegisterCustomValidations(); err != nil {
		logger.Fatal("Failed to register validations", zap.Error(err))
	}

	// Set up HTTP server with Gin
	router := setupRouter(
		earningsHandler,
		watchlistHandler,
		sessionStore,
		redisClient,
		logger,
		cfg,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
}

func createLogger(level string) (*zap.Logger, error) {
	// Parse log level
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	// Create logger config
	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

func connectToDB(dbConfig config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName,
		dbConfig.SSLMode,
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	return db, nil
}

func setupRouter(
	earningsHandler *handler.EarningsHandler,
	watchlistHandler *handler.WatchlistHandler,
	sessionStore *repository.SessionStore,
	redisClient *redis.Client,
	logger *zap.Logger,
	cfg *config.Config,
) *gin.Engine {
	router := gin.New()

	// Use middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		// Earnings routes
		earnings := v1.Group("/earnings")
		earnings.Use(middleware.RateLimit(60, 10))
		{
			// Cached read-only listing
			earnings.GET("", middleware.RedisCache(redisClient, middleware.CacheConfig{
				Enabled:         cfg.Cache.Enabled,
				DefaultDuration: cfg.Cache.Duration,
				PrefixKey:       cfg.Cache.Prefix,
			}, logger), earningsHandler.ListEarnings)

			// Ingestion entry point; the pipeline's fetch cooldown guards
			// the upstream feed on top of the per-IP limit.
			earnings.GET("/fetch", earningsHandler.FetchEarnings)
		}

		// Watchlist routes (authenticated)
		watchlist := v1.Group("/watchlist")
		watchlist.Use(middleware.AuthMiddleware(sessionStore, cfg.Auth.JWTSecret, logger))
		{
			watchlist.GET("", watchlistHandler.GetWatchlist)
			watchlist.POST("", watchlistHandler.UpdateWatchlist)
		}
	}

	return router
}
