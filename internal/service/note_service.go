package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pipelinecrm/crm-api/internal/domain"
	"github.com/pipelinecrm/crm-api/internal/mapper"
	"github.com/pipelinecrm/crm-api/internal/repository"
	"go.uber.org/zap"
)

type NoteService struct {
	noteRepo *repository.NoteRepository
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

func NewNoteService(
	noteRepo *repository.NoteRepository,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
) *NoteService {
	return &NoteService{
		noteRepo: noteRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *NoteService) Create(ctx context.Context, req *domain.CreateNoteRequest, actorID *uuid.UUID) (*domain.NoteDTO, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, domain.NewValidationError("content", "must not be blank")
	}

	createdBy := actorID
	if req.CreatedBy != nil {
		createdBy = req.CreatedBy
	}
	if err := resolveActor(ctx, s.userRepo, "createdBy", createdBy); err != nil {
		return nil, err
	}

	note := &domain.Note{
		Content:       content,
		LeadID:        req.LeadID,
		OpportunityID: req.OpportunityID,
		AccountID:     req.AccountID,
		ContactID:     req.ContactID,
		CreatedByID:   createdBy,
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	dto := mapper.ToNoteDTO(note)
	return &dto, nil
}

func (s *NoteService) GetByID(ctx context.Context, id uuid.UUID) (*domain.NoteDTO, error) {
	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrNoteNotFound, "note")
	}

	dto := mapper.ToNoteDTO(note)
	return &dto, nil
}

func (s *NoteService) List(ctx context.Context, filters repository.NoteFilters) ([]domain.NoteDTO, error) {
	notes, err := s.noteRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	dtos := make([]domain.NoteDTO, len(notes))
	for i := range notes {
		dtos[i] = mapper.ToNoteDTO(&notes[i])
	}
	return dtos, nil
}

func (s *NoteService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateNoteRequest) (*domain.NoteDTO, error) {
	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrNoteNotFound, "note")
	}

	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			return nil, domain.NewValidationError("content", "must not be blank")
		}
		note.Content = content
	}

	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	dto := mapper.ToNoteDTO(note)
	return &dto, nil
}

func (s *NoteService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.noteRepo.GetByID(ctx, id); err != nil {
		return lookupError(err, ErrNoteNotFound, "note")
	}
	if err := s.noteRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}
