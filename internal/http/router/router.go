package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/slcgroup/costing-api/internal/auth"
	"github.com/slcgroup/costing-api/internal/config"
	"github.com/slcgroup/costing-api/internal/database"
	"github.com/slcgroup/costing-api/internal/http/handler"
	"github.com/slcgroup/costing-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/slcgroup/costing-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                 *config.Config
	logger              *zap.Logger
	db                  *gorm.DB
	authMiddleware      *auth.Middleware
	rateLimiter         *middleware.RateLimiter
	auditMiddleware     *middleware.AuditMiddleware
	authHandler         *handler.AuthHandler
	projectHandler      *handler.ProjectHandler
	materialHandler     *handler.MaterialHandler
	equipmentHandler    *handler.EquipmentHandler
	labourRateHandler   *handler.LabourRateHandler
	quoteHandler        *handler.QuoteHandler
	notificationHandler *handler.NotificationHandler
	calculatorHandler   *handler.CalculatorHandler
	dashboardHandler    *handler.DashboardHandler
	adminHandler        *handler.AdminHandler
	bulkHandler         *handler.BulkHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	auditMiddleware *middleware.AuditMiddleware,
	authHandler *handler.AuthHandler,
	projectHandler *handler.ProjectHandler,
	materialHandler *handler.MaterialHandler,
	equipmentHandler *handler.EquipmentHandler,
	labourRateHandler *handler.LabourRateHandler,
	quoteHandler *handler.QuoteHandler,
	notificationHandler *handler.NotificationHandler,
	calculatorHandler *handler.CalculatorHandler,
	dashboardHandler *handler.DashboardHandler,
	adminHandler *handler.AdminHandler,
	bulkHandler *handler.BulkHandler,
) *Router {
	return &Router{
		cfg:                 cfg,
		logger:              logger,
		db:                  db,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		auditMiddleware:     auditMiddleware,
		authHandler:         authHandler,
		projectHandler:      projectHandler,
		materialHandler:     materialHandler,
		equipmentHandler:    equipmentHandler,
		labourRateHandler:   labourRateHandler,
		quoteHandler:        quoteHandler,
		notificationHandler: notificationHandler,
		calculatorHandler:   calculatorHandler,
		dashboardHandler:    dashboardHandler,
		adminHandler:        adminHandler,
		bulkHandler:         bulkHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP) // Apply IP-based rate limiting globally

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(r.Context(), rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats":   stats,
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		// Check database
		if err := database.HealthCheck(r.Context(), rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Post("/auth/register", rt.authHandler.Register)
		r.Post("/auth/login", rt.authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.auditMiddleware.Audit) // Audit all modifications

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)

			// Projects and their cost components
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", rt.projectHandler.List)
				r.With(rt.authMiddleware.RequireWrite).Post("/", rt.projectHandler.Create)
				r.Get("/recent", rt.projectHandler.Recent)
				r.Get("/{id}", rt.projectHandler.GetByID)
				r.With(rt.authMiddleware.RequireWrite).Patch("/{id}", rt.projectHandler.Update)
				r.With(rt.authMiddleware.RequireWrite).Delete("/{id}", rt.projectHandler.Delete)
				r.Get("/{id}/totals", rt.projectHandler.Totals)

				r.Get("/{id}/materials", rt.projectHandler.ListMaterials)
				r.With(rt.authMiddleware.RequireWrite).Post("/{id}/materials", rt.projectHandler.AddMaterial)
				r.With(rt.authMiddleware.RequireWrite).Patch("/{id}/materials/{lineId}", rt.projectHandler.UpdateMaterial)
				r.With(rt.authMiddleware.RequireWrite).Delete("/{id}/materials/{lineId}", rt.projectHandler.DeleteMaterial)

				r.Get("/{id}/equipment", rt.projectHandler.ListEquipment)
				r.With(rt.authMiddleware.RequireWrite).Post("/{id}/equipment", rt.projectHandler.AddEquipment)
				r.With(rt.authMiddleware.RequireWrite).Patch("/{id}/equipment/{lineId}", rt.projectHandler.UpdateEquipment)
				r.With(rt.authMiddleware.RequireWrite).Delete("/{id}/equipment/{lineId}", rt.projectHandler.DeleteEquipment)

				r.Get("/{id}/labour", rt.projectHandler.ListLabour)
				r.With(rt.authMiddleware.RequireWrite).Post("/{id}/labour", rt.projectHandler.AddLabour)
				r.With(rt.authMiddleware.RequireWrite).Patch("/{id}/labour/{lineId}", rt.projectHandler.UpdateLabour)
				r.With(rt.authMiddleware.RequireWrite).Delete("/{id}/labour/{lineId}", rt.projectHandler.DeleteLabour)

				r.Get("/{id}/tasks", rt.projectHandler.ListTasks)
				r.With(rt.authMiddleware.RequireWrite).Post("/{id}/tasks", rt.projectHandler.CreateTask)
				r.With(rt.authMiddleware.RequireWrite).Patch("/{id}/tasks/{taskId}", rt.projectHandler.UpdateTask)
				r.With(rt.authMiddleware.RequireWrite).Delete("/{id}/tasks/{taskId}", rt.projectHandler.DeleteTask)

				r.Get("/{id}/external-costs", rt.projectHandler.ListExternalCosts)
				r.With(rt.authMiddleware.RequireWrite).Post("/{id}/external-costs", rt.projectHandler.CreateExternalCost)
				r.With(rt.authMiddleware.RequireWrite).Patch("/{id}/external-costs/{costId}", rt.projectHandler.UpdateExternalCost)
				r.With(rt.authMiddleware.RequireWrite).Delete("/{id}/external-costs/{costId}", rt.projectHandler.DeleteExternalCost)
			})

			// Material catalog
			r.Route("/materials", func(r chi.Router) {
				r.Get("/", rt.materialHandler.List)
				r.With(rt.authMiddleware.RequireWrite).Post("/", rt.materialHandler.Create)
				r.Get("/stats", rt.materialHandler.Stats)
				r.Get("/{ref}/price-history", rt.materialHandler.PriceHistory)
				r.Get("/{id}", rt.materialHandler.GetByID)
				r.With(rt.authMiddleware.RequireWrite).Patch("/{id}", rt.materialHandler.Update)
				r.With(rt.authMiddleware.RequireWrite).Delete("/{id}", rt.materialHandler.Delete)
			})

			// Equipment catalog
			r.Route("/equipment", func(r chi.Router) {
				r.Get("/", rt.equipmentHandler.List)
				r.With(rt.authMiddleware.RequireWrite).Post("/", rt.equipmentHandler.Create)
				r.Get("/stats", rt.equipmentHandler.Stats)
				r.Get("/{ref}/price-history", rt.equipmentHandler.PriceHistory)
				r.Get("/{id}", rt.equipmentHandler.GetByID)
				r.With(rt.authMiddleware.RequireWrite).Patch("/{id}", rt.equipmentHandler.Update)
				r.With(rt.authMiddleware.RequireWrite).Delete("/{id}", rt.equipmentHandler.Delete)
			})

			// Labour rates
			r.Route("/labour-rates", func(r chi.Router) {
				r.Get("/", rt.labourRateHandler.List)
				r.With(rt.authMiddleware.RequireWrite).Post("/", rt.labourRateHandler.Create)
				r.Get("/resolve", rt.labourRateHandler.Resolve)
				r.Get("/{id}", rt.labourRateHandler.GetByID)
				r.With(rt.authMiddleware.RequireWrite).Patch("/{id}", rt.labourRateHandler.Update)
				r.With(rt.authMiddleware.RequireWrite).Delete("/{id}", rt.labourRateHandler.Delete)
			})

			// Quotes
			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", rt.quoteHandler.List)
				r.With(rt.authMiddleware.RequireWrite).Post("/", rt.quoteHandler.Create)
				r.Get("/{id}", rt.quoteHandler.GetByID)
				r.With(rt.authMiddleware.RequireWrite).Patch("/{id}", rt.quoteHandler.Update)
				r.With(rt.authMiddleware.RequireWrite).Delete("/{id}", rt.quoteHandler.Delete)
				r.With(rt.authMiddleware.RequireWrite).Post("/{id}/recalculate", rt.quoteHandler.Recalculate)

				r.Get("/{id}/items", rt.quoteHandler.ListItems)
				r.With(rt.authMiddleware.RequireWrite).Post("/{id}/items", rt.quoteHandler.AddItem)
				r.With(rt.authMiddleware.RequireWrite).Patch("/{id}/items/{itemId}", rt.quoteHandler.UpdateItem)
				r.With(rt.authMiddleware.RequireWrite).Delete("/{id}/items/{itemId}", rt.quoteHandler.DeleteItem)
			})

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", rt.notificationHandler.List)
				r.Get("/unread-count", rt.notificationHandler.UnreadCount)
				r.Post("/read-all", rt.notificationHandler.MarkAllAsRead)
				r.Get("/{id}", rt.notificationHandler.GetByID)
				r.Post("/{id}/read", rt.notificationHandler.MarkAsRead)
				r.Delete("/{id}", rt.notificationHandler.Delete)
			})

			// Calculator, dashboard and search
			r.Post("/calculator/rate-card", rt.calculatorHandler.RateCard)
			r.Get("/dashboard/stats", rt.dashboardHandler.Stats)
			r.Get("/search", rt.dashboardHandler.Search)

			// Admin surface
			r.Route("/admin", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)

				r.Get("/config", rt.adminHandler.ListConfig)
				r.Put("/config", rt.adminHandler.SetConfig)
				r.Get("/config/{key}", rt.adminHandler.GetConfig)
				r.Delete("/config/{key}", rt.adminHandler.DeleteConfig)

				r.Get("/audit-logs", rt.adminHandler.ListAuditLogs)
				r.Get("/audit-logs/summary", rt.adminHandler.ActivitySummary)
				r.Get("/audit-logs/entity/{entityType}/{entityId}", rt.adminHandler.EntityAuditTrail)
				r.Get("/audit-logs/{id}", rt.adminHandler.GetAuditLog)

				r.Get("/price-changes", rt.adminHandler.ListPriceChanges)
				r.Post("/price-sync", rt.adminHandler.TriggerPriceSync)

				r.Post("/bulk/import/{entity}", rt.bulkHandler.Import)
				r.Post("/bulk/export/{entity}", rt.bulkHandler.Export)
				r.Get("/bulk/export/download", rt.bulkHandler.Download)
			})
		})
	})

	return r
}
