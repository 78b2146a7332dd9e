package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pipelinecrm/crm-api/internal/config"
	"github.com/pipelinecrm/crm-api/internal/database"
	"github.com/pipelinecrm/crm-api/internal/http/handler"
	"github.com/pipelinecrm/crm-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/pipelinecrm/crm-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                *config.Config
	logger             *zap.Logger
	db                 *gorm.DB
	rateLimiter        *middleware.RateLimiter
	accountHandler     *handler.AccountHandler
	contactHandler     *handler.ContactHandler
	leadHandler        *handler.LeadHandler
	opportunityHandler *handler.OpportunityHandler
	orderHandler       *handler.OrderHandler
	activityHandler    *handler.ActivityHandler
	productHandler     *handler.ProductHandler
	noteHandler        *handler.NoteHandler
	dashboardHandler   *handler.DashboardHandler
	userHandler        *handler.UserHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	rateLimiter *middleware.RateLimiter,
	accountHandler *handler.AccountHandler,
	contactHandler *handler.ContactHandler,
	leadHandler *handler.LeadHandler,
	opportunityHandler *handler.OpportunityHandler,
	orderHandler *handler.OrderHandler,
	activityHandler *handler.ActivityHandler,
	productHandler *handler.ProductHandler,
	noteHandler *handler.NoteHandler,
	dashboardHandler *handler.DashboardHandler,
	userHandler *handler.UserHandler,
) *Router {
	return &Router{
		cfg:                cfg,
		logger:             logger,
		db:                 db,
		rateLimiter:        rateLimiter,
		accountHandler:     accountHandler,
		contactHandler:     contactHandler,
		leadHandler:        leadHandler,
		opportunityHandler: opportunityHandler,
		orderHandler:       orderHandler,
		activityHandler:    activityHandler,
		productHandler:     productHandler,
		noteHandler:        noteHandler,
		dashboardHandler:   dashboardHandler,
		userHandler:        userHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Actor)
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)

	// Liveness
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Database health with pool stats
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(r.Context(), rt.db)
		if err != nil {
			rt.logger.Error("database health check failed", zap.Error(err))
			writeHealth(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		writeHealth(w, http.StatusOK, map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats":   stats,
		})
	})

	// Readiness across dependencies
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		status := http.StatusOK

		if err := database.HealthCheck(r.Context(), rt.db); err != nil {
			rt.logger.Error("database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			status = http.StatusServiceUnavailable
		} else {
			checks["database"] = map[string]interface{}{"status": "healthy"}
		}

		overall := "healthy"
		if status != http.StatusOK {
			overall = "unhealthy"
		}
		writeHealth(w, status, map[string]interface{}{
			"status": overall,
			"checks": checks,
		})
	})

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", rt.accountHandler.List)
			r.Post("/", rt.accountHandler.Create)
			r.Get("/{id}", rt.accountHandler.GetByID)
			r.Patch("/{id}", rt.accountHandler.Update)
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", rt.contactHandler.List)
			r.Post("/", rt.contactHandler.Create)
			r.Get("/{id}", rt.contactHandler.GetByID)
			r.Patch("/{id}", rt.contactHandler.Update)
		})

		r.Route("/leads", func(r chi.Router) {
			r.Get("/", rt.leadHandler.List)
			r.Post("/", rt.leadHandler.Create)
			r.Get("/{id}", rt.leadHandler.GetByID)
			r.Patch("/{id}", rt.leadHandler.Update)
			r.Post("/{id}/convert", rt.leadHandler.Convert)
		})

		r.Route("/opportunities", func(r chi.Router) {
			r.Get("/", rt.opportunityHandler.List)
			r.Post("/", rt.opportunityHandler.Create)
			r.Get("/{id}", rt.opportunityHandler.GetByID)
			r.Patch("/{id}", rt.opportunityHandler.Update)
			r.Get("/{id}/with-relations", rt.opportunityHandler.GetWithRelations)
			r.Post("/{id}/stage", rt.opportunityHandler.TransitionStage)
			r.Get("/{id}/stage-logs", rt.opportunityHandler.GetStageLogs)
			r.Post("/{id}/recompute", rt.opportunityHandler.Recompute)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", rt.orderHandler.List)
			r.Post("/", rt.orderHandler.Create)
			r.Get("/{id}", rt.orderHandler.GetByID)
			r.Patch("/{id}", rt.orderHandler.Update)
			r.Delete("/{id}", rt.orderHandler.Delete)
		})

		r.Route("/order-items", func(r chi.Router) {
			r.Post("/", rt.orderHandler.AddItem)
			r.Patch("/{id}", rt.orderHandler.UpdateItem)
			r.Delete("/{id}", rt.orderHandler.DeleteItem)
		})

		r.Route("/activities", func(r chi.Router) {
			r.Get("/", rt.activityHandler.List)
			r.Post("/", rt.activityHandler.Create)
			r.Get("/{id}", rt.activityHandler.GetByID)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", rt.productHandler.List)
			r.Post("/", rt.productHandler.Create)
			r.Get("/{id}", rt.productHandler.GetByID)
			r.Patch("/{id}", rt.productHandler.Update)
			r.Delete("/{id}", rt.productHandler.Delete)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", rt.noteHandler.List)
			r.Post("/", rt.noteHandler.Create)
			r.Get("/{id}", rt.noteHandler.GetByID)
			r.Patch("/{id}", rt.noteHandler.Update)
			r.Delete("/{id}", rt.noteHandler.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", rt.userHandler.List)
			r.Post("/", rt.userHandler.Create)
			r.Get("/{id}", rt.userHandler.GetByID)
		})

		r.Get("/dashboard/metrics", rt.dashboardHandler.GetMetrics)
	})

	return r
}

func writeHealth(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
