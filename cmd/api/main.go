package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pipelinecrm/crm-api/docs"
	"github.com/pipelinecrm/crm-api/internal/config"
	"github.com/pipelinecrm/crm-api/internal/database"
	"github.com/pipelinecrm/crm-api/internal/http/handler"
	"github.com/pipelinecrm/crm-api/internal/http/middleware"
	"github.com/pipelinecrm/crm-api/internal/http/router"
	"github.com/pipelinecrm/crm-api/internal/jobs"
	"github.com/pipelinecrm/crm-api/internal/logger"
	"github.com/pipelinecrm/crm-api/internal/repository"
	"github.com/pipelinecrm/crm-api/internal/service"
	"go.uber.org/zap"
)

// @title Pipeline CRM API
// @version 1.0
// @description Accounts, contacts, leads, opportunities, orders and the stage pipeline.

// @host localhost:8080
// @BasePath /api

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.App.Port)

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate || cfg.Database.IsInMemory() {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Info("Database schema migrated", zap.Bool("in_memory", cfg.Database.IsInMemory()))
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	contactRepo := repository.NewContactRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	productRepo := repository.NewProductRepository(db)
	oppRepo := repository.NewOpportunityRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	orderItemRepo := repository.NewOrderItemRepository(db)
	stageLogRepo := repository.NewStageChangeLogRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)

	// Services. Opportunity and order writes share one lock set.
	locks := service.NewOpportunityLocks()
	numberSequenceService := service.NewNumberSequenceService(numberSequenceRepo, orderRepo, log)

	userService := service.NewUserService(userRepo, log)
	accountService := service.NewAccountService(accountRepo, userRepo, log)
	contactService := service.NewContactService(contactRepo, accountRepo, userRepo, log)
	leadService := service.NewLeadService(leadRepo, oppRepo, accountRepo, contactRepo, activityRepo, userRepo, log, db)
	productService := service.NewProductService(productRepo, orderItemRepo, log)
	opportunityService := service.NewOpportunityService(oppRepo, orderRepo, stageLogRepo, activityRepo, accountRepo, contactRepo, leadRepo, userRepo, locks, log, db)
	orderService := service.NewOrderService(orderRepo, orderItemRepo, productRepo, oppRepo, numberSequenceService, locks, log, db)
	activityService := service.NewActivityService(activityRepo, oppRepo, leadRepo, userRepo, log)
	noteService := service.NewNoteService(noteRepo, userRepo, log)
	dashboardService := service.NewDashboardService(accountRepo, contactRepo, leadRepo, oppRepo, log)

	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		rateLimiter,
		handler.NewAccountHandler(accountService, log),
		handler.NewContactHandler(contactService, log),
		handler.NewLeadHandler(leadService, log),
		handler.NewOpportunityHandler(opportunityService, log),
		handler.NewOrderHandler(orderService, log),
		handler.NewActivityHandler(activityService, log),
		handler.NewProductHandler(productService, log),
		handler.NewNoteHandler(noteService, log),
		handler.NewDashboardHandler(dashboardService, log),
		handler.NewUserHandler(userService, log),
	)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)
		if err := jobs.RegisterReconcileJob(
			scheduler,
			orderService,
			log,
			cfg.Jobs.ReconcileCron,
			cfg.Jobs.ReconcileTimeoutDuration(),
		); err != nil {
			return fmt.Errorf("failed to register reconcile job: %w", err)
		}
		scheduler.Start()
	} else {
		log.Info("Background jobs disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      http.TimeoutHandler(rt.Setup(), cfg.Server.RequestTimeoutDuration(), `{"type":"internal_error","title":"Service Unavailable","status":503,"detail":"request timed out"}`),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Warn("Error closing database", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
