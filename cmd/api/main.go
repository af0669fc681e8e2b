package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/distriventas/dv_api/internal/cache"
	"github.com/distriventas/dv_api/internal/config"
	"github.com/distriventas/dv_api/internal/database"
	"github.com/distriventas/dv_api/internal/handler"
	"github.com/distriventas/dv_api/internal/jobs"
	"github.com/distriventas/dv_api/internal/middleware"
	"github.com/distriventas/dv_api/internal/repository"
	"github.com/distriventas/dv_api/internal/service"
	"github.com/distriventas/dv_api/internal/worker"
)

// main is the application entrypoint for the Distriventas API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting distriventas api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis. The API stays up without it: the recommendation
	// cache degrades to a no-op and background jobs are disabled.
	var redisClient *cache.RedisClient
	var recCache cache.RecommendationCache = cache.NoopRecommendationCache{}
	var queue jobs.Queue
	var redisQueue *jobs.RedisQueue
	redisClient, err = cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis connection failed - caching and background jobs disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
		recCache = cache.NewRedisRecommendationCache(redisClient)
		redisQueue = jobs.NewRedisQueue(redisClient)
		queue = redisQueue
		log.Info().Msg("redis connected successfully")
	}

	// 4. Initialize repositories
	saleRepo := repository.NewSaleRepository(db)
	productRepo := repository.NewProductRepository(db)
	distributorRepo := repository.NewDistributorRepository(db)
	assistantConfigRepo := repository.NewAssistantConfigRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)

	// 5. Initialize services
	authSvc := service.NewAuthService(distributorRepo)
	adminAuthSvc := service.NewAdminAuthService(adminRepo)
	distributorSvc := service.NewDistributorService(distributorRepo)
	rankingSvc := service.NewRankingService(saleRepo, cfg.Ranking)
	assistantConfigSvc := service.NewAssistantConfigService(assistantConfigRepo, recCache, cfg.Assistant.ConfigCacheTTL)
	assistantSvc := service.NewAssistantService(saleRepo, productRepo)
	recSvc := service.NewRecommendationService(assistantSvc, assistantConfigSvc, recCache)
	saleSvc := service.NewSaleService(saleRepo, productRepo, distributorRepo, rankingSvc, recCache)

	// 6. Initialize handlers
	handlers := &Handlers{
		Health:          handler.NewHealthHandler(db, redisClient),
		Auth:            handler.NewAuthHandler(adminAuthSvc),
		Sale:            handler.NewSaleHandler(saleSvc),
		Ranking:         handler.NewRankingHandler(rankingSvc, cfg.Ranking),
		Product:         handler.NewProductHandler(productRepo),
		Distributor:     handler.NewDistributorHandler(distributorSvc),
		Recommendation:  handler.NewRecommendationHandler(recSvc, queue),
		AssistantConfig: handler.NewAssistantConfigHandler(assistantConfigSvc),
	}

	// 7. Initialize middleware
	authMw := middleware.NewAuthMiddleware(authSvc)
	jwtMw := middleware.NewJWTMiddleware()

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, authMw, jwtMw)

	// 9. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 10. Start workers
	if redisQueue != nil {
		go worker.NewRecommendationWorker(redisQueue, recSvc, cfg.Worker.JobPollInterval).Start(ctx)
	}

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Cancel context to stop workers
	cancel()

	// 14. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health          *handler.HealthHandler
	Auth            *handler.AuthHandler
	Sale            *handler.SaleHandler
	Ranking         *handler.RankingHandler
	Product         *handler.ProductHandler
	Distributor     *handler.DistributorHandler
	Recommendation  *handler.RecommendationHandler
	AssistantConfig *handler.AssistantConfigHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, authMiddleware *middleware.AuthMiddleware, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.Health)
	router.POST("/v1/auth/login", handlers.Auth.Login)

	// Distributor routes (protected with distributor API key)
	dist := router.Group("/v1")
	dist.Use(authMiddleware.Handle())
	{
		dist.POST("/sales", handlers.Sale.CreateSale)
		dist.GET("/sales", handlers.Sale.ListSales)
		dist.GET("/sales/:id", handlers.Sale.GetSale)
		dist.GET("/ranking", handlers.Ranking.GetRanking)
		dist.GET("/products", handlers.Product.GetProducts)
		dist.GET("/products/categories", handlers.Product.GetCategories)
		dist.GET("/products/:id", handlers.Product.GetProduct)
	}

	// Business assistant routes (admin JWT)
	assistant := router.Group("/v1")
	assistant.Use(jwtMiddleware.Handle())
	{
		assistant.GET("/recommendations", handlers.Recommendation.GetRecommendations)
		assistant.POST("/recommendations/jobs", handlers.Recommendation.CreateJob)
		assistant.GET("/recommendations/jobs/:id", handlers.Recommendation.GetJob)
		assistant.GET("/business-assistant/config", handlers.AssistantConfig.GetConfig)
		assistant.PUT("/business-assistant/config", handlers.AssistantConfig.UpdateConfig)
	}

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.Use(jwtMiddleware.Handle())
	{
		// Distributor Management
		admin.POST("/distributors", handlers.Distributor.CreateDistributor)
		admin.GET("/distributors", handlers.Distributor.ListDistributors)
		admin.GET("/distributors/:id", handlers.Distributor.GetDistributor)
		admin.POST("/distributors/:id/regenerate-key", handlers.Distributor.RegenerateKey)

		// Sales Ledger
		admin.POST("/sales", handlers.Sale.CreateAdminSale)
		admin.GET("/sales", handlers.Sale.ListSales)
		admin.GET("/sales/integrity", handlers.Sale.VerifyIntegrity)
		admin.GET("/sales/:id", handlers.Sale.GetSale)
		admin.POST("/sales/:id/recompute", handlers.Sale.RecomputeSale)

		// Ranking
		admin.GET("/ranking", handlers.Ranking.GetRanking)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
