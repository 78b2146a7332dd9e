package handler

import (
	"net/http"
	"strconv"

	"github.com/pipelinecrm/crm-api/internal/domain"
	"github.com/pipelinecrm/crm-api/internal/repository"
	"github.com/pipelinecrm/crm-api/internal/service"
	"go.uber.org/zap"
)

type ActivityHandler struct {
	activityService *service.ActivityService
	logger          *zap.Logger
}

func NewActivityHandler(activityService *service.ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		logger:          logger,
	}
}

// @Summary List activities
// @Description Newest first
// @Tags Activities
// @Produce json
// @Param opportunityId query string false "Filter by opportunity ID"
// @Param leadId query string false "Filter by lead ID"
// @Param accountId query string false "Filter by account ID"
// @Param contactId query string false "Filter by contact ID"
// @Param type query string false "Filter by type (call, email, meeting, task, note, stage_change)"
// @Param limit query int false "Maximum number of activities" default(50)
// @Success 200 {array} domain.ActivityDTO
// @Router /activities [get]
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	var filters repository.ActivityFilters
	var ok bool
	if filters.OpportunityID, ok = queryUUID(w, r, "opportunityId"); !ok {
		return
	}
	if filters.LeadID, ok = queryUUID(w, r, "leadId"); !ok {
		return
	}
	if filters.AccountID, ok = queryUUID(w, r, "accountId"); !ok {
		return
	}
	if filters.ContactID, ok = queryUUID(w, r, "contactId"); !ok {
		return
	}
	if t := r.URL.Query().Get("type"); t != "" {
		activityType := domain.ActivityType(t)
		if !activityType.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid type filter")
			return
		}
		filters.Type = &activityType
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	activities, err := h.activityService.List(r.Context(), filters, limit)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list activities")
		return
	}

	respondJSON(w, http.StatusOK, activities)
}

// @Summary Create activity
// @Description Records an activity. Stage changes are recorded by the stage endpoint;
// @Description a stage_change activity posted here is stored as a plain record.
// @Tags Activities
// @Accept json
// @Produce json
// @Param X-User-ID header string false "Acting user ID"
// @Param request body domain.CreateActivityRequest true "Activity data"
// @Success 201 {object} domain.ActivityDTO
// @Failure 400 {object} domain.APIError
// @Router /activities [post]
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateActivityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	activity, err := h.activityService.Create(r.Context(), &req, actorID(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create activity")
		return
	}

	respondJSON(w, http.StatusCreated, activity)
}

// @Summary Get activity
// @Tags Activities
// @Produce json
// @Param id path string true "Activity ID"
// @Success 200 {object} domain.ActivityDTO
// @Failure 404 {object} domain.APIError
// @Router /activities/{id} [get]
func (h *ActivityHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "activity")
	if !ok {
		return
	}

	activity, err := h.activityService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get activity")
		return
	}

	respondJSON(w, http.StatusOK, activity)
}
