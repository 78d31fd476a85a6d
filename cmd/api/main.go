package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veridian-estates/pipeline-api/docs"
	"github.com/veridian-estates/pipeline-api/internal/auth"
	"github.com/veridian-estates/pipeline-api/internal/config"
	"github.com/veridian-estates/pipeline-api/internal/database"
	"github.com/veridian-estates/pipeline-api/internal/http/handler"
	"github.com/veridian-estates/pipeline-api/internal/http/middleware"
	"github.com/veridian-estates/pipeline-api/internal/http/router"
	"github.com/veridian-estates/pipeline-api/internal/jobs"
	"github.com/veridian-estates/pipeline-api/internal/legacycrm"
	"github.com/veridian-estates/pipeline-api/internal/logger"
	"github.com/veridian-estates/pipeline-api/internal/repository"
	"github.com/veridian-estates/pipeline-api/internal/service"
	"github.com/veridian-estates/pipeline-api/internal/storage"
	"go.uber.org/zap"
)

// @title Veridian Pipeline API
// @version 1.0
// @description Sales pipeline backend for lead assignment, call workflow and qualification handoff
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@veridianestates.com

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
		docs.SwaggerInfo.Host = "pipeline-staging.veridianestates.com"
	case "production":
		docs.SwaggerInfo.Host = "pipeline.veridianestates.com"
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

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize legacy CRM connection (optional - duplicate lookup only)
	// This connection is read-only and the app continues without it
	var crmClient *legacycrm.Client
	if cfg.LegacyCRM.Enabled {
		crmClient, err = legacycrm.NewClient(&cfg.LegacyCRM, log)
		if err != nil {
			log.Warn("Legacy CRM connection failed, continuing without it",
				zap.Error(err),
			)
		}
	}

	// Initialize repositories
	leadRepo := repository.NewLeadRepository(db)
	agentRepo := repository.NewAgentRepository(db)
	callLogRepo := repository.NewCallLogRepository(db)
	activityRepo := repository.NewLeadActivityRepository(db)
	referenceRepo := repository.NewReferenceRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)
	importJobRepo := repository.NewImportJobRepository(db)

	// Initialize services
	assignmentService := service.NewAssignmentService(agentRepo, log)
	activityRecorder := service.NewActivityRecorder(activityRepo, log)
	leadNumberService := service.NewLeadNumberService(numberSequenceRepo, log)
	notificationService := service.NewNotificationService(notificationRepo, log)
	agentService := service.NewAgentService(agentRepo, log)
	referenceService := service.NewReferenceService(referenceRepo)
	followUpService := service.NewFollowUpService(leadRepo, notificationRepo, log)

	workflowService := service.NewWorkflowService(
		leadRepo,
		agentRepo,
		callLogRepo,
		referenceRepo,
		assignmentService,
		activityRecorder,
		leadNumberService,
		notificationService,
		log,
		db,
	)
	if crmClient != nil && crmClient.IsEnabled() {
		workflowService.SetLegacyCRMClient(crmClient)
	}

	importService := service.NewImportService(workflowService, referenceRepo, importJobRepo, fileStorage, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	leadHandler := handler.NewLeadHandler(workflowService, importService, cfg.Storage.MaxUploadSizeMB, log)
	webhookHandler := handler.NewWebhookHandler(workflowService, log)
	agentHandler := handler.NewAgentHandler(agentService, log)
	referenceHandler := handler.NewReferenceHandler(referenceService, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		leadHandler,
		webhookHandler,
		agentHandler,
		referenceHandler,
		notificationHandler,
	)

	// Initialize and start the background scheduler
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)
		followUpJob := jobs.NewFollowUpJob(followUpService, log, jobs.DefaultFollowUpTimeout, cfg.Jobs.FollowUpBatchSize)
		if err := scheduler.AddJob(jobs.FollowUpJobName, cfg.Jobs.FollowUpSchedule, followUpJob.Run); err != nil {
			log.Error("Failed to register follow-up job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with follow-up job",
				zap.String("cron_expr", cfg.Jobs.FollowUpSchedule),
			)
		}
	} else {
		log.Info("Background jobs disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if crmClient != nil {
			if err := crmClient.Close(); err != nil {
				log.Warn("Error closing legacy CRM connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
