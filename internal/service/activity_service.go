package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pipelinecrm/crm-api/internal/domain"
	"github.com/pipelinecrm/crm-api/internal/mapper"
	"github.com/pipelinecrm/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ActivityService records calls, meetings, tasks and notes against CRM entities.
// A stage_change activity posted here is only recorded; stage transitions
// go through OpportunityService.TransitionStage, which logs its own activity.
type ActivityService struct {
	activityRepo *repository.ActivityRepository
	oppRepo      *repository.OpportunityRepository
	leadRepo     *repository.LeadRepository
	userRepo     *repository.UserRepository
	logger       *zap.Logger
}

func NewActivityService(
	activityRepo *repository.ActivityRepository,
	oppRepo *repository.OpportunityRepository,
	leadRepo *repository.LeadRepository,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		oppRepo:      oppRepo,
		leadRepo:     leadRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
}

func (s *ActivityService) Create(ctx context.Context, req *domain.CreateActivityRequest, actorID *uuid.UUID) (*domain.ActivityDTO, error) {
	if !req.Type.IsValid() {
		return nil, domain.NewValidationError("type", "unknown activity type")
	}
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, domain.NewValidationError("subject", "must not be blank")
	}

	dueDate, err := domain.ParseDate("dueDate", req.DueDate)
	if err != nil {
		return nil, err
	}

	if req.OpportunityID != nil {
		if _, err := s.oppRepo.GetByID(ctx, *req.OpportunityID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.NewValidationError("opportunityId", "opportunity not found")
			}
			return nil, fmt.Errorf("failed to get opportunity: %w", err)
		}
	}
	if req.LeadID != nil {
		if _, err := s.leadRepo.GetByID(ctx, *req.LeadID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.NewValidationError("leadId", "lead not found")
			}
			return nil, fmt.Errorf("failed to get lead: %w", err)
		}
	}

	createdBy := actorID
	if req.CreatedBy != nil {
		createdBy = req.CreatedBy
	}
	if err := resolveActor(ctx, s.userRepo, "createdBy", createdBy); err != nil {
		return nil, err
	}

	activity := &domain.Activity{
		Type:          req.Type,
		Subject:       subject,
		Description:   req.Description,
		OpportunityID: req.OpportunityID,
		LeadID:        req.LeadID,
		AccountID:     req.AccountID,
		ContactID:     req.ContactID,
		DueDate:       dueDate,
		Completed:     req.Completed,
		CreatedByID:   createdBy,
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	s.logger.Info("activity created",
		zap.String("activity_id", activity.ID.String()),
		zap.String("type", string(activity.Type)))

	dto := mapper.ToActivityDTO(activity)
	return &dto, nil
}

func (s *ActivityService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ActivityDTO, error) {
	activity, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrActivityNotFound, "activity")
	}

	dto := mapper.ToActivityDTO(activity)
	return &dto, nil
}

func (s *ActivityService) List(ctx context.Context, filters repository.ActivityFilters, limit int) ([]domain.ActivityDTO, error) {
	activities, err := s.activityRepo.List(ctx, filters, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	dtos := make([]domain.ActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = mapper.ToActivityDTO(&activities[i])
	}
	return dtos, nil
}
