package handler

import (
	"net/http"

	"github.com/pipelinecrm/crm-api/internal/domain"
	"github.com/pipelinecrm/crm-api/internal/repository"
	"github.com/pipelinecrm/crm-api/internal/service"
	"go.uber.org/zap"
)

type NoteHandler struct {
	noteService *service.NoteService
	logger      *zap.Logger
}

func NewNoteHandler(noteService *service.NoteService, logger *zap.Logger) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		logger:      logger,
	}
}

// @Summary List notes
// @Tags Notes
// @Produce json
// @Param leadId query string false "Filter by lead ID"
// @Param opportunityId query string false "Filter by opportunity ID"
// @Param accountId query string false "Filter by account ID"
// @Param contactId query string false "Filter by contact ID"
// @Success 200 {array} domain.NoteDTO
// @Router /notes [get]
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	var filters repository.NoteFilters
	var ok bool
	if filters.LeadID, ok = queryUUID(w, r, "leadId"); !ok {
		return
	}
	if filters.OpportunityID, ok = queryUUID(w, r, "opportunityId"); !ok {
		return
	}
	if filters.AccountID, ok = queryUUID(w, r, "accountId"); !ok {
		return
	}
	if filters.ContactID, ok = queryUUID(w, r, "contactId"); !ok {
		return
	}

	notes, err := h.noteService.List(r.Context(), filters)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list notes")
		return
	}

	respondJSON(w, http.StatusOK, notes)
}

// @Summary Create note
// @Tags Notes
// @Accept json
// @Produce json
// @Param X-User-ID header string false "Acting user ID"
// @Param request body domain.CreateNoteRequest true "Note data"
// @Success 201 {object} domain.NoteDTO
// @Failure 400 {object} domain.APIError
// @Router /notes [post]
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	note, err := h.noteService.Create(r.Context(), &req, actorID(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create note")
		return
	}

	w.Header().Set("Location", "/api/notes/"+note.ID.String())
	respondJSON(w, http.StatusCreated, note)
}

// @Summary Get note
// @Tags Notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} domain.NoteDTO
// @Failure 404 {object} domain.APIError
// @Router /notes/{id} [get]
func (h *NoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "note")
	if !ok {
		return
	}

	note, err := h.noteService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get note")
		return
	}

	respondJSON(w, http.StatusOK, note)
}

// @Summary Update note
// @Tags Notes
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param request body domain.UpdateNoteRequest true "Fields to change"
// @Success 200 {object} domain.NoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /notes/{id} [patch]
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "note")
	if !ok {
		return
	}

	var req domain.UpdateNoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	note, err := h.noteService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update note")
		return
	}

	respondJSON(w, http.StatusOK, note)
}

// @Summary Delete note
// @Tags Notes
// @Param id path string true "Note ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Router /notes/{id} [delete]
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "note")
	if !ok {
		return
	}

	if err := h.noteService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete note")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
