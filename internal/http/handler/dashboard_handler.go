package handler

import (
	"net/http"

	"github.com/pipelinecrm/crm-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// @Summary Get dashboard metrics
// @Description Returns pipeline metrics over all opportunities.
// @Description
// @Description **Counts:** accounts, contacts, leads (total and by status), open opportunities
// @Description
// @Description **Pipeline:**
// @Description - `pipelineValue`: sum of value over non-closed opportunities
// @Description - `weightedPipelineValue`: sum of value * probability / 100 over non-closed opportunities
// @Description - `stages`: per-stage count, value and weighted value with display order 1-6
// @Description
// @Description **Win rate:** `wonCount * 100 / (wonCount + lostCount)`, 0 when nothing is closed
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DashboardMetricsDTO
// @Router /dashboard/metrics [get]
func (h *DashboardHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.dashboardService.GetMetrics(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get dashboard metrics")
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}
