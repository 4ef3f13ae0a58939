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

	"github.com/stocklens/catalog-api/internal/cache"
	"github.com/stocklens/catalog-api/internal/config"
	"github.com/stocklens/catalog-api/internal/database"
	"github.com/stocklens/catalog-api/internal/handler"
	"github.com/stocklens/catalog-api/internal/middleware"
	"github.com/stocklens/catalog-api/internal/models"
	"github.com/stocklens/catalog-api/internal/repository"
	"github.com/stocklens/catalog-api/internal/service"
	"github.com/stocklens/catalog-api/internal/sse"
	"github.com/stocklens/catalog-api/internal/utils"
	"github.com/stocklens/catalog-api/internal/worker"
)

// main is the application entrypoint for the catalog API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting catalog api")

	utils.SetJWTSecret(cfg.JWTSecret)

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

	// 3b. Connect to Redis. The taxonomy cache degrades to
	// pass-through when Redis is unreachable, so this is non-fatal.
	var redisClient *cache.RedisClient
	if rc, err := cache.NewRedisClient(&cfg.Redis); err != nil {
		log.Warn().Err(err).Msg("redis connection failed - taxonomy cache disabled")
	} else {
		redisClient = rc
		defer redisClient.Close()
		log.Info().Msg("redis connected successfully")
	}
	taxonomyCache := cache.NewTaxonomyCache(redisClient)

	// 4. Initialize repositories
	taxonomyRepo := repository.NewTaxonomyRepository(db)
	productRepo := repository.NewProductRepository(db)
	draftRepo := repository.NewDraftRepository(db)
	featureRepo := repository.NewFeatureRepository(db)
	specRepo := repository.NewSpecificationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)

	// 5. Initialize SSE hub for the live admin review feed
	hub := sse.NewHub()
	reviewNotifier := sse.NewHubNotifier(hub)

	// 6. Initialize services
	taxonomySvc := service.NewTaxonomyService(taxonomyRepo, taxonomyCache)
	draftSvc := service.NewDraftService(draftRepo)
	notificationSvc := service.NewNotificationService(notificationRepo)
	approvalSvc := service.NewApprovalService(
		draftRepo, productRepo, featureRepo, specRepo,
		taxonomySvc, notificationSvc, reviewNotifier,
	)
	productSvc := service.NewProductService(productRepo, featureRepo, specRepo, taxonomySvc)
	authSvc := service.NewAuthService(userRepo)

	if cfg.Admin.Email != "" {
		if err := authSvc.EnsureAdmin(context.Background(), cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
			log.Fatal().Err(err).Msg("Failed to bootstrap admin account")
		}
	}

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:       handler.NewHealthHandler(db, redisClient),
		Auth:         handler.NewAuthHandler(authSvc, middleware.NewInvalidAuthRateLimiter()),
		Draft:        handler.NewDraftHandler(draftSvc, approvalSvc),
		Notification: handler.NewNotificationHandler(notificationSvc),
		Product:      handler.NewProductHandler(productSvc),
		Category:     handler.NewTaxonomyHandler(taxonomySvc, models.KindCategory),
		Brand:        handler.NewTaxonomyHandler(taxonomySvc, models.KindBrand),
		ProductLine:  handler.NewTaxonomyHandler(taxonomySvc, models.KindProductLine),
		SSE:          handler.NewSSEHandler(hub),
	}

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware()

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	setupRoutes(router, handlers, jwtMw)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start workers
	go worker.NewDraftCleanupWorker(draftSvc, cfg.Worker.DraftCleanupInterval, cfg.Worker.DraftCleanupMaxAge).Start(ctx)

	// 12. Start HTTP server
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

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	Draft        *handler.DraftHandler
	Notification *handler.NotificationHandler
	Product      *handler.ProductHandler
	Category     *handler.TaxonomyHandler
	Brand        *handler.TaxonomyHandler
	ProductLine  *handler.TaxonomyHandler
	SSE          *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)
	router.GET("/metrics", middleware.MetricsHandler())

	router.POST("/v1/auth/login", handlers.Auth.Login)
	router.POST("/v1/auth/register", handlers.Auth.Register)

	// SSE authenticates via token query param inside the handler
	router.GET("/v1/admin/reviews/stream", handlers.SSE.Stream)

	v1 := router.Group("/v1")
	v1.Use(jwtMiddleware.Handle())
	{
		// Draft lifecycle
		v1.POST("/drafts", handlers.Draft.Save)
		v1.POST("/drafts/submit", handlers.Draft.Submit)
		v1.GET("/drafts/fetch", handlers.Draft.Fetch)
		v1.GET("/drafts/employee/:id", handlers.Draft.ListByEmployee)
		v1.PUT("/drafts/:draftId", handlers.Draft.Update)
		v1.DELETE("/drafts/:draftId", handlers.Draft.Delete)

		// Review workflow (admin)
		v1.GET("/drafts/admin/pending", jwtMiddleware.RequireAdmin(), handlers.Draft.ListPending)
		v1.PUT("/drafts/:draftId/approve", jwtMiddleware.RequireAdmin(), handlers.Draft.Approve)
		v1.PUT("/drafts/:draftId/reject", jwtMiddleware.RequireAdmin(), handlers.Draft.Reject)

		// Account approval (admin only)
		v1.GET("/admin/users/pending", jwtMiddleware.RequireAdmin(), handlers.Auth.PendingUsers)
		v1.PUT("/admin/users/:userId/approve", jwtMiddleware.RequireAdmin(), handlers.Auth.ApproveUser)
		v1.DELETE("/admin/users/:userId", jwtMiddleware.RequireAdmin(), handlers.Auth.RejectUser)

		// Notifications
		v1.POST("/notification", handlers.Notification.Create)
		v1.GET("/notification", handlers.Notification.ListByType)
		v1.DELETE("/notification", handlers.Notification.DeleteMatching)
		v1.PUT("/notification/:id/read", handlers.Notification.MarkRead)
		v1.GET("/approvalNotify", handlers.Notification.ApprovalNotify)

		// Catalog reads
		v1.GET("/products", handlers.Product.List)
		v1.GET("/products/by-category/:categoryId", handlers.Product.ByCategory)
		v1.GET("/products/by-product-line/:productLineId", handlers.Product.ByProductLine)
		v1.POST("/products/fetchByBarcode", handlers.Product.FetchByBarcode)
		v1.GET("/products/:productId", handlers.Product.Detail)
		v1.GET("/products/:productId/enriched", handlers.Product.Enriched)

		// Direct admin edits
		v1.PUT("/adminEdit/:id", jwtMiddleware.RequireAdmin(), handlers.Product.AdminEdit)
		v1.DELETE("/adminEdit/:id", jwtMiddleware.RequireAdmin(), handlers.Product.SoftDelete)
		v1.PUT("/adminEdit/:id/restore", jwtMiddleware.RequireAdmin(), handlers.Product.Restore)

		// Taxonomy
		registerTaxonomyRoutes(v1.Group("/categories"), handlers.Category, jwtMiddleware)
		registerTaxonomyRoutes(v1.Group("/brands"), handlers.Brand, jwtMiddleware)
		registerTaxonomyRoutes(v1.Group("/product-lines"), handlers.ProductLine, jwtMiddleware)
	}
}

func registerTaxonomyRoutes(g *gin.RouterGroup, h *handler.TaxonomyHandler, jwtMiddleware *middleware.JWTMiddleware) {
	g.GET("", h.List)
	g.GET("/search", h.Search)
	g.GET("/:code", h.Get)
	g.POST("", h.Create)
	g.PUT("/:code", jwtMiddleware.RequireAdmin(), h.Rename)
}

// setupLogger configures zerolog output for the environment.
func setupLogger(env string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
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
