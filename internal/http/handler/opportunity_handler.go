package handler

import (
	"net/http"

	"github.com/pipelinecrm/crm-api/internal/domain"
	"github.com/pipelinecrm/crm-api/internal/repository"
	"github.com/pipelinecrm/crm-api/internal/service"
	"go.uber.org/zap"
)

type OpportunityHandler struct {
	opportunityService *service.OpportunityService
	logger             *zap.Logger
}

func NewOpportunityHandler(opportunityService *service.OpportunityService, logger *zap.Logger) *OpportunityHandler {
	return &OpportunityHandler{
		opportunityService: opportunityService,
		logger:             logger,
	}
}

// @Summary List opportunities
// @Description List opportunities with optional filters. weightedValue is derived on read.
// @Tags Opportunities
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param stage query string false "Filter by stage (prospecting, qualification, proposal, negotiation, closed-won, closed-lost)"
// @Param accountId query string false "Filter by account ID"
// @Param contactId query string false "Filter by contact ID"
// @Param leadId query string false "Filter by originating lead ID"
// @Param ownerId query string false "Filter by owner ID"
// @Param open query bool false "Only non-closed opportunities"
// @Param search query string false "Search by name"
// @Param sortBy query string false "Sort field (createdAt, updatedAt, name, value, probability, closeDate, stage)"
// @Param sortOrder query string false "Sort order (asc, desc)" default(desc)
// @Success 200 {object} domain.PaginatedResponse
// @Router /opportunities [get]
func (h *OpportunityHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	q := r.URL.Query()

	filters := repository.OpportunityFilters{Search: q.Get("search")}

	var ok bool
	if filters.AccountID, ok = queryUUID(w, r, "accountId"); !ok {
		return
	}
	if filters.ContactID, ok = queryUUID(w, r, "contactId"); !ok {
		return
	}
	if filters.LeadID, ok = queryUUID(w, r, "leadId"); !ok {
		return
	}
	if filters.OwnerID, ok = queryUUID(w, r, "ownerId"); !ok {
		return
	}
	if s := q.Get("stage"); s != "" {
		stage := domain.OpportunityStage(s)
		if !stage.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid stage filter")
			return
		}
		filters.Stage = &stage
	}
	if open := queryBool(r, "open"); open != nil {
		filters.OpenOnly = *open
	}

	sort := repository.DefaultSortConfig()
	if f := q.Get("sortBy"); f != "" {
		sort.Field = f
	}
	if o := q.Get("sortOrder"); o != "" {
		sort.Order = repository.ParseSortOrder(o)
	}

	result, err := h.opportunityService.List(r.Context(), page, pageSize, filters, sort)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list opportunities")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary Create opportunity
// @Description Stage defaults to prospecting and probability to the stage default.
// @Description A supplied value/grossProfit is stored as a manual figure until orders recompute it.
// @Tags Opportunities
// @Accept json
// @Produce json
// @Param X-User-ID header string false "Acting user ID"
// @Param request body domain.CreateOpportunityRequest true "Opportunity data"
// @Success 201 {object} domain.OpportunityDTO
// @Failure 400 {object} domain.APIError
// @Router /opportunities [post]
func (h *OpportunityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOpportunityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	opp, err := h.opportunityService.Create(r.Context(), &req, actorID(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create opportunity")
		return
	}

	w.Header().Set("Location", "/api/opportunities/"+opp.ID.String())
	respondJSON(w, http.StatusCreated, opp)
}

// @Summary Get opportunity
// @Tags Opportunities
// @Produce json
// @Param id path string true "Opportunity ID"
// @Success 200 {object} domain.OpportunityDTO
// @Failure 404 {object} domain.APIError
// @Router /opportunities/{id} [get]
func (h *OpportunityHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "opportunity")
	if !ok {
		return
	}

	opp, err := h.opportunityService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get opportunity")
		return
	}

	respondJSON(w, http.StatusOK, opp)
}

// @Summary Get opportunity with relations
// @Description Embeds account, contact, owner, orders with items and products, stage logs with users, and activities.
// @Tags Opportunities
// @Produce json
// @Param id path string true "Opportunity ID"
// @Success 200 {object} domain.OpportunityWithRelationsDTO
// @Failure 404 {object} domain.APIError
// @Router /opportunities/{id}/with-relations [get]
func (h *OpportunityHandler) GetWithRelations(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "opportunity")
	if !ok {
		return
	}

	opp, err := h.opportunityService.GetWithRelations(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get opportunity")
		return
	}

	respondJSON(w, http.StatusOK, opp)
}

// @Summary Update opportunity
// @Description Partial update. A different stage performs a full stage transition and requires reason.
// @Description Closed opportunities are read-only (409 invalid_state).
// @Tags Opportunities
// @Accept json
// @Produce json
// @Param id path string true "Opportunity ID"
// @Param X-User-ID header string false "Acting user ID"
// @Param request body domain.UpdateOpportunityRequest true "Fields to change"
// @Success 200 {object} domain.OpportunityDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /opportunities/{id} [patch]
func (h *OpportunityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "opportunity")
	if !ok {
		return
	}

	var req domain.UpdateOpportunityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	opp, err := h.opportunityService.Update(r.Context(), id, &req, actorID(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update opportunity")
		return
	}

	respondJSON(w, http.StatusOK, opp)
}

// @Summary Change opportunity stage
// @Description Atomically moves the opportunity to a new stage, appends a stage change log
// @Description and records a stage_change activity. Closed stages are final.
// @Tags Opportunities
// @Accept json
// @Produce json
// @Param id path string true "Opportunity ID"
// @Param X-User-ID header string false "Acting user ID"
// @Param request body domain.TransitionStageRequest true "Target stage and reason"
// @Success 200 {object} domain.StageTransitionDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /opportunities/{id}/stage [post]
func (h *OpportunityHandler) TransitionStage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "opportunity")
	if !ok {
		return
	}

	var req domain.TransitionStageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.opportunityService.TransitionStage(r.Context(), id, &req, actorID(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to change stage")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary List stage change logs
// @Tags Opportunities
// @Produce json
// @Param id path string true "Opportunity ID"
// @Success 200 {array} domain.StageChangeLogDTO
// @Failure 404 {object} domain.APIError
// @Router /opportunities/{id}/stage-logs [get]
func (h *OpportunityHandler) GetStageLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "opportunity")
	if !ok {
		return
	}

	logs, err := h.opportunityService.GetStageLogs(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list stage logs")
		return
	}

	respondJSON(w, http.StatusOK, logs)
}

// @Summary Recompute opportunity financials
// @Description Re-derives value and gross profit from orders, discarding any manual figures.
// @Tags Opportunities
// @Produce json
// @Param id path string true "Opportunity ID"
// @Param X-User-ID header string false "Acting user ID"
// @Success 200 {object} domain.OpportunityDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /opportunities/{id}/recompute [post]
func (h *OpportunityHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "opportunity")
	if !ok {
		return
	}

	opp, err := h.opportunityService.Recompute(r.Context(), id, actorID(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to recompute opportunity")
		return
	}

	respondJSON(w, http.StatusOK, opp)
}
