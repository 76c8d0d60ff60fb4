package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	analyticsapp "github.com/pricing/backend/internal/application/analytics"
	catalogapp "github.com/pricing/backend/internal/application/catalog"
	pricingapp "github.com/pricing/backend/internal/application/pricing"
	"github.com/pricing/backend/internal/domain/shared"
	"github.com/pricing/backend/internal/infrastructure/cache"
	"github.com/pricing/backend/internal/infrastructure/competitor"
	"github.com/pricing/backend/internal/infrastructure/config"
	"github.com/pricing/backend/internal/infrastructure/logger"
	"github.com/pricing/backend/internal/infrastructure/mlstore"
	"github.com/pricing/backend/internal/infrastructure/persistence"
	"github.com/pricing/backend/internal/interfaces/http/handler"
	"github.com/pricing/backend/internal/interfaces/http/middleware"
	"github.com/pricing/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting pricing engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	ledgerRepo := persistence.NewGormPriceChangeRepository(db.DB)
	priceUnit := persistence.NewGormPriceUpdateUnit(db.DB)

	// Competitor quote cache: Redis with an in-memory fallback so the
	// engine stays usable when Redis is down
	cacheFactory := cache.NewQuoteCacheFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	)
	quoteCache, err := cacheFactory.CreateCache()
	if err != nil {
		log.Fatal("Failed to create quote cache", zap.Error(err))
	}

	// Model artifact store
	var artifactStore pricingapp.ArtifactStore
	switch cfg.Model.StorageBackend {
	case "s3":
		artifactStore, err = mlstore.NewS3ArtifactStore(cfg.Model, mlstore.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create S3 artifact store", zap.Error(err))
		}
	default:
		artifactStore, err = mlstore.NewFilesystemArtifactStore(cfg.Model.ArtifactDir)
		if err != nil {
			log.Fatal("Failed to create artifact store", zap.Error(err))
		}
	}

	// Pricing components
	extractor := pricingapp.NewFeatureExtractor(pricingapp.SystemClock{})
	oracle := pricingapp.NewPriceOracle(extractor, artifactStore, log)
	quoteClient := competitor.NewHTTPQuoteClient(cfg.Competitor)
	competitorProvider := pricingapp.NewCompetitorPriceProvider(quoteCache, quoteClient, pricingapp.SystemClock{}, log)

	// Application services
	productService := catalogapp.NewProductService(productRepo, saleRepo, log)
	pricingService := pricingapp.NewService(productRepo, ledgerRepo, priceUnit, oracle, competitorProvider, log)
	analyticsService := analyticsapp.NewService(productRepo, saleRepo, ledgerRepo, log)

	// Restore a previously trained model if one exists
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	if err := oracle.LoadArtifact(startupCtx); err != nil {
		if errors.Is(err, shared.ErrModelUnavailable) {
			log.Info("No stored model artifact, price suggestions use heuristics until trained")
		} else {
			log.Warn("Failed to load model artifact", zap.Error(err))
		}
	} else {
		log.Info("Model artifact loaded")
	}
	if cfg.Model.TrainOnStartup && !oracle.Trained() {
		if _, err := pricingService.Train(startupCtx); err != nil {
			log.Warn("Startup training skipped", zap.Error(err))
		}
	}
	cancelStartup()

	// HTTP handlers
	productHandler := handler.NewProductHandler(productService)
	pricingHandler := handler.NewPricingHandler(pricingService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	// Register API routes
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(productHandler).
		Register(pricingHandler).
		Register(analyticsHandler).
		Register(systemHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
