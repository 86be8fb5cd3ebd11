package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slcgroup/costing-api/docs"
	"github.com/slcgroup/costing-api/internal/auth"
	"github.com/slcgroup/costing-api/internal/config"
	"github.com/slcgroup/costing-api/internal/database"
	"github.com/slcgroup/costing-api/internal/datawarehouse"
	"github.com/slcgroup/costing-api/internal/http/handler"
	"github.com/slcgroup/costing-api/internal/http/middleware"
	"github.com/slcgroup/costing-api/internal/http/router"
	"github.com/slcgroup/costing-api/internal/jobs"
	"github.com/slcgroup/costing-api/internal/logger"
	"github.com/slcgroup/costing-api/internal/repository"
	"github.com/slcgroup/costing-api/internal/service"
	"github.com/slcgroup/costing-api/internal/storage"
	"go.uber.org/zap"
)

// quoteExpiryCron sweeps sent quotes every day shortly after midnight
const quoteExpiryCron = "0 10 0 * * *"

// @title SLC Group Costing API
// @version 1.0
// @description Project costing and quoting backend for materials, equipment, labour and client quotes
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@slcgroup.com.au

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "costing-staging.slcgroup.com.au"
	case "production":
		docs.SwaggerInfo.Host = "costing.slcgroup.com.au"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database with retry logic
	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize storage for bulk export artifacts
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize data warehouse connection (optional - for price sync)
	// This connection is read-only and the app continues without it if not configured
	var dwClient *datawarehouse.Client
	if cfg.DataWarehouse.Enabled {
		dwClient, err = datawarehouse.NewClient(&cfg.DataWarehouse, log)
		if err != nil {
			// Log error but don't fail - data warehouse is optional
			log.Warn("Data warehouse connection failed, continuing without it",
				zap.Error(err),
			)
		} else if dwClient != nil {
			log.Info("Data warehouse connected successfully",
				zap.Int("max_open_conns", cfg.DataWarehouse.MaxOpenConns),
				zap.Int("query_timeout_seconds", cfg.DataWarehouse.QueryTimeout),
			)
		}
	} else {
		log.Info("Data warehouse not configured, skipping",
			zap.Bool("enabled", cfg.DataWarehouse.Enabled),
		)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	componentRepo := repository.NewProjectComponentRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	labourRateRepo := repository.NewLabourRateRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	quoteItemRepo := repository.NewQuoteItemRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)
	priceChangeRepo := repository.NewPriceChangeRepository(db)
	configRepo := repository.NewSystemConfigRepository(db)

	// Initialize services
	tokenManager := auth.NewTokenManager(&cfg.Jwt)
	authService := service.NewAuthService(userRepo, tokenManager, log)
	projectService := service.NewProjectService(projectRepo, notificationRepo, log)
	componentService := service.NewProjectComponentService(componentRepo, projectRepo, materialRepo, equipmentRepo, labourRateRepo, notificationRepo, log)
	materialService := service.NewMaterialService(materialRepo, priceChangeRepo, log)
	equipmentService := service.NewEquipmentService(equipmentRepo, priceChangeRepo, log)
	labourRateService := service.NewLabourRateService(labourRateRepo, log)
	quoteService := service.NewQuoteService(quoteRepo, quoteItemRepo, projectRepo, notificationRepo, log)
	calculatorService := service.NewCalculatorService(&cfg.Calculator, log)
	notificationService := service.NewNotificationService(notificationRepo, log)
	auditLogService := service.NewAuditLogService(auditLogRepo, log)
	configService := service.NewSystemConfigService(configRepo, log)
	priceChangeService := service.NewPriceChangeService(priceChangeRepo, log)
	priceSyncService := service.NewPriceSyncService(dwClient, materialRepo, equipmentRepo, priceChangeRepo, notificationRepo, log)
	dashboardService := service.NewDashboardService(projectRepo, quoteRepo, materialRepo, equipmentRepo, notificationRepo, log)
	bulkService := service.NewBulkService(materialRepo, equipmentRepo, labourRateRepo, priceChangeRepo, notificationRepo, fileStorage, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	auditMiddleware := middleware.NewAuditMiddleware(auditLogService, nil, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, log)
	projectHandler := handler.NewProjectHandler(projectService, componentService, log)
	materialHandler := handler.NewMaterialHandler(materialService, priceChangeService, log)
	equipmentHandler := handler.NewEquipmentHandler(equipmentService, priceChangeService, log)
	labourRateHandler := handler.NewLabourRateHandler(labourRateService, log)
	quoteHandler := handler.NewQuoteHandler(quoteService, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)
	calculatorHandler := handler.NewCalculatorHandler(calculatorService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)
	adminHandler := handler.NewAdminHandler(configService, auditLogService, priceChangeService, priceSyncService, log)
	bulkHandler := handler.NewBulkHandler(bulkService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		auditMiddleware,
		authHandler,
		projectHandler,
		materialHandler,
		equipmentHandler,
		labourRateHandler,
		quoteHandler,
		notificationHandler,
		calculatorHandler,
		dashboardHandler,
		adminHandler,
		bulkHandler,
	)

	// Initialize and start scheduler for background jobs
	scheduler := jobs.NewScheduler(log)

	if err := jobs.RegisterQuoteExpiryJob(scheduler, quoteService, log, quoteExpiryCron, 5*time.Minute); err != nil {
		log.Error("Failed to register quote expiry job", zap.Error(err))
	}

	if cfg.DataWarehouse.Enabled && cfg.DataWarehouse.PriceSyncEnabled && dwClient != nil {
		if err := jobs.RegisterPriceSyncJob(
			scheduler,
			priceSyncService,
			log,
			cfg.DataWarehouse.PriceSyncCron,
			cfg.DataWarehouse.PriceSyncTimeoutDuration(),
		); err != nil {
			log.Error("Failed to register price sync job", zap.Error(err))
		} else {
			log.Info("Price sync job registered",
				zap.String("cron_expr", cfg.DataWarehouse.PriceSyncCron),
				zap.Duration("timeout", cfg.DataWarehouse.PriceSyncTimeoutDuration()),
			)
		}
	} else {
		log.Info("Warehouse price sync disabled",
			zap.Bool("dw_enabled", cfg.DataWarehouse.Enabled),
			zap.Bool("price_sync_enabled", cfg.DataWarehouse.PriceSyncEnabled),
			zap.Bool("dw_client_available", dwClient != nil),
		)
	}

	scheduler.Start()

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler; running jobs complete
		schedulerCtx := scheduler.Stop()
		<-schedulerCtx.Done()
		log.Info("Scheduler stopped")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Close data warehouse connection if initialized
		if dwClient != nil {
			if err := dwClient.Close(); err != nil {
				log.Warn("Error closing data warehouse connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
