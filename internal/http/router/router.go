package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/veridian-estates/pipeline-api/internal/auth"
	"github.com/veridian-estates/pipeline-api/internal/config"
	"github.com/veridian-estates/pipeline-api/internal/database"
	"github.com/veridian-estates/pipeline-api/internal/http/handler"
	"github.com/veridian-estates/pipeline-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/veridian-estates/pipeline-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                 *config.Config
	logger              *zap.Logger
	db                  *gorm.DB
	authMiddleware      *auth.Middleware
	rateLimiter         *middleware.RateLimiter
	leadHandler         *handler.LeadHandler
	webhookHandler      *handler.WebhookHandler
	agentHandler        *handler.AgentHandler
	referenceHandler    *handler.ReferenceHandler
	notificationHandler *handler.NotificationHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	leadHandler *handler.LeadHandler,
	webhookHandler *handler.WebhookHandler,
	agentHandler *handler.AgentHandler,
	referenceHandler *handler.ReferenceHandler,
	notificationHandler *handler.NotificationHandler,
) *Router {
	return &Router{
		cfg:                 cfg,
		logger:              logger,
		db:                  db,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		leadHandler:         leadHandler,
		webhookHandler:      webhookHandler,
		agentHandler:        agentHandler,
		referenceHandler:    referenceHandler,
		notificationHandler: notificationHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with pool stats)
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

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

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
		status := "healthy"
		code := http.StatusOK
		if !allHealthy {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// Webhook intake, API key only
	r.Route("/webhooks", func(r chi.Router) {
		r.Use(rt.rateLimiter.LimitByIP)
		r.Use(rt.authMiddleware.RequireAPIKey)
		r.Post("/leads", rt.webhookHandler.CreateLead)
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.rateLimiter.Limit)

		// Leads and workflow
		r.Route("/leads", func(r chi.Router) {
			r.Get("/", rt.leadHandler.List)
			r.Post("/", rt.leadHandler.Create)
			r.Get("/unassigned", rt.leadHandler.ListUnassigned)
			r.With(rt.authMiddleware.RequireManager).Post("/import", rt.leadHandler.Import)
			r.Get("/{id}", rt.leadHandler.Get)
			r.With(rt.authMiddleware.RequireManager).Delete("/{id}", rt.leadHandler.Archive)
			r.Get("/{id}/workflow", rt.leadHandler.GetWorkflowStatus)
			r.Post("/{id}/qualify", rt.leadHandler.Qualify)
			r.Post("/{id}/call-outcomes", rt.leadHandler.RecordCallOutcome)
			r.Post("/{id}/language-comfort", rt.leadHandler.EvaluateLanguageComfort)
		})

		// Agents
		r.Route("/agents", func(r chi.Router) {
			r.Get("/", rt.agentHandler.List)
			r.Get("/{id}", rt.agentHandler.Get)
			r.With(rt.authMiddleware.RequireManager).Patch("/{id}/active", rt.agentHandler.SetActive)
		})

		// Reference data
		r.Get("/centres", rt.referenceHandler.ListCentres)
		r.Get("/languages", rt.referenceHandler.ListLanguages)
		r.Get("/lead-sources", rt.referenceHandler.ListLeadSources)
		r.Get("/statuses", rt.referenceHandler.ListStatuses)

		// Notifications
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", rt.notificationHandler.List)
			r.Get("/unread-count", rt.notificationHandler.UnreadCount)
			r.Post("/read-all", rt.notificationHandler.MarkAllAsRead)
			r.Post("/{id}/read", rt.notificationHandler.MarkAsRead)
		})
	})

	return r
}
