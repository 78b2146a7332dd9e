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

type OpportunityService struct {
	oppRepo      *repository.OpportunityRepository
	orderRepo    *repository.OrderRepository
	logRepo      *repository.StageChangeLogRepository
	activityRepo *repository.ActivityRepository
	accountRepo  *repository.AccountRepository
	contactRepo  *repository.ContactRepository
	leadRepo     *repository.LeadRepository
	userRepo     *repository.UserRepository
	locks        *OpportunityLocks
	logger       *zap.Logger
	db           *gorm.DB
}

func NewOpportunityService(
	oppRepo *repository.OpportunityRepository,
	orderRepo *repository.OrderRepository,
	logRepo *repository.StageChangeLogRepository,
	activityRepo *repository.ActivityRepository,
	accountRepo *repository.AccountRepository,
	contactRepo *repository.ContactRepository,
	leadRepo *repository.LeadRepository,
	userRepo *repository.UserRepository,
	locks *OpportunityLocks,
	logger *zap.Logger,
	db *gorm.DB,
) *OpportunityService {
	return &OpportunityService{
		oppRepo:      oppRepo,
		orderRepo:    orderRepo,
		logRepo:      logRepo,
		activityRepo: activityRepo,
		accountRepo:  accountRepo,
		contactRepo:  contactRepo,
		leadRepo:     leadRepo,
		userRepo:     userRepo,
		locks:        locks,
		logger:       logger,
		db:           db,
	}
}

func (s *OpportunityService) Create(ctx context.Context, req *domain.CreateOpportunityRequest, actorID *uuid.UUID) (*domain.OpportunityDTO, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, domain.NewValidationError("name", "must not be blank")
	}

	stage := req.Stage
	if stage == "" {
		stage = domain.StageProspecting
	}
	if !stage.IsValid() {
		return nil, domain.NewValidationError("stage", "unknown stage")
	}

	if err := domain.ValidateProbability(req.Probability); err != nil {
		return nil, err
	}
	probability := domain.DefaultStageProbabilities[stage]
	if req.Probability != nil {
		probability = *req.Probability
	}

	closeDate, err := domain.ParseDate("closeDate", req.CloseDate)
	if err != nil {
		return nil, err
	}

	if err := s.checkReferences(ctx, s.db, req.AccountID, req.ContactID, req.OwnerID); err != nil {
		return nil, err
	}

	leadSource := req.LeadSource
	if req.LeadID != nil {
		lead, err := s.leadRepo.GetByID(ctx, *req.LeadID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.NewValidationError("leadId", "lead not found")
			}
			return nil, fmt.Errorf("failed to get lead: %w", err)
		}
		if leadSource == "" {
			leadSource = lead.Source
		}
	}

	opp := &domain.Opportunity{
		AccountID:   req.AccountID,
		ContactID:   req.ContactID,
		LeadID:      req.LeadID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Stage:       stage,
		Probability: probability,
		CloseDate:   closeDate,
		LeadSource:  leadSource,
		OwnerID:     req.OwnerID,
	}
	opp.SetManualFinancials(req.Value, req.GrossProfit)

	if err := s.oppRepo.Create(ctx, opp); err != nil {
		return nil, fmt.Errorf("failed to create opportunity: %w", err)
	}

	s.logger.Info("opportunity created",
		zap.String("opportunity_id", opp.ID.String()),
		zap.String("stage", string(opp.Stage)),
		zap.Stringp("actor_id", uuidString(actorID)))

	dto := mapper.ToOpportunityDTO(opp)
	return &dto, nil
}

func (s *OpportunityService) GetByID(ctx context.Context, id uuid.UUID) (*domain.OpportunityDTO, error) {
	opp, err := s.oppRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrOpportunityNotFound, "opportunity")
	}

	dto := mapper.ToOpportunityDTO(opp)
	return &dto, nil
}

// GetWithRelations returns the opportunity with account, contact, owner,
// orders with items and products, stage logs with users, and activities
func (s *OpportunityService) GetWithRelations(ctx context.Context, id uuid.UUID) (*domain.OpportunityWithRelationsDTO, error) {
	opp, err := s.oppRepo.GetWithRelations(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrOpportunityNotFound, "opportunity")
	}

	activities, err := s.activityRepo.List(ctx, repository.ActivityFilters{OpportunityID: &id}, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	dto := mapper.ToOpportunityWithRelationsDTO(opp, activities)
	return &dto, nil
}

func (s *OpportunityService) List(ctx context.Context, page, pageSize int, filters repository.OpportunityFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	opps, total, err := s.oppRepo.List(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}

	dtos := make([]domain.OpportunityDTO, len(opps))
	for i := range opps {
		dtos[i] = mapper.ToOpportunityDTO(&opps[i])
	}

	return paginated(dtos, total, page, pageSize), nil
}

// Update applies a partial edit. A stage different from the current one is
// performed as a full stage transition in the same transaction. Closed
// opportunities reject every edit.
func (s *OpportunityService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateOpportunityRequest, actorID *uuid.UUID) (*domain.OpportunityDTO, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	actor := actorID
	if req.ChangedBy != nil {
		actor = req.ChangedBy
	}

	var result *domain.Opportunity
	var stageLog *domain.StageChangeLog

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		opp, err := s.oppRepo.WithTx(tx).GetByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, ErrOpportunityNotFound, "opportunity")
		}

		stageChange := req.Stage != nil && *req.Stage != opp.Stage
		if stageChange {
			if err := domain.ValidateStageTransition(opp.Stage, *req.Stage, req.Reason); err != nil {
				return err
			}
		} else if err := opp.EnsureMutable(); err != nil {
			return err
		}

		if err := s.applyUpdate(ctx, tx, opp, req); err != nil {
			return err
		}

		if stageChange {
			stageLog, err = s.transition(ctx, tx, opp, *req.Stage, req.Reason, req.Probability, actor)
			if err != nil {
				return err
			}
		} else if err := s.oppRepo.WithTx(tx).Update(ctx, opp); err != nil {
			return fmt.Errorf("failed to update opportunity: %w", err)
		}

		result = opp
		return nil
	})
	if err != nil {
		return nil, err
	}

	if stageLog != nil {
		s.logStageChange(stageLog)
	}

	dto := mapper.ToOpportunityDTO(result)
	return &dto, nil
}

func (s *OpportunityService) applyUpdate(ctx context.Context, tx *gorm.DB, opp *domain.Opportunity, req *domain.UpdateOpportunityRequest) error {
	if err := s.checkReferences(ctx, tx, req.AccountID, req.ContactID, req.OwnerID); err != nil {
		return err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.NewValidationError("name", "must not be blank")
		}
		opp.Name = name
	}
	if req.AccountID != nil {
		opp.AccountID = req.AccountID
	}
	if req.ContactID != nil {
		opp.ContactID = req.ContactID
	}
	if req.Description != nil {
		opp.Description = *req.Description
	}
	if err := domain.ValidateProbability(req.Probability); err != nil {
		return err
	}
	if req.Probability != nil {
		opp.Probability = *req.Probability
	}
	if req.CloseDate != nil {
		closeDate, err := domain.ParseDate("closeDate", *req.CloseDate)
		if err != nil {
			return err
		}
		opp.CloseDate = closeDate
	}
	if req.LeadSource != nil {
		opp.LeadSource = *req.LeadSource
	}
	if req.OwnerID != nil {
		opp.OwnerID = req.OwnerID
	}
	if req.Value != nil || req.GrossProfit != nil {
		opp.SetManualFinancials(req.Value, req.GrossProfit)
	}
	return nil
}

// TransitionStage moves the opportunity to another stage. The stage update,
// the stage change log entry and the stage_change activity commit together.
func (s *OpportunityService) TransitionStage(ctx context.Context, id uuid.UUID, req *domain.TransitionStageRequest, actorID *uuid.UUID) (*domain.StageTransitionDTO, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	actor := actorID
	if req.ChangedBy != nil {
		actor = req.ChangedBy
	}

	var opp *domain.Opportunity
	var stageLog *domain.StageChangeLog

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		opp, err = s.oppRepo.WithTx(tx).GetByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, ErrOpportunityNotFound, "opportunity")
		}

		stageLog, err = s.transition(ctx, tx, opp, req.Stage, req.Reason, req.Probability, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logStageChange(stageLog)

	return &domain.StageTransitionDTO{
		Opportunity: mapper.ToOpportunityDTO(opp),
		StageLog:    mapper.ToStageChangeLogDTO(stageLog),
	}, nil
}

// transition validates and applies a stage change on a row-locked opportunity
func (s *OpportunityService) transition(ctx context.Context, tx *gorm.DB, opp *domain.Opportunity, to domain.OpportunityStage, reason string, probability *int, actor *uuid.UUID) (*domain.StageChangeLog, error) {
	if err := domain.ValidateStageTransition(opp.Stage, to, reason); err != nil {
		return nil, err
	}
	if err := domain.ValidateProbability(probability); err != nil {
		return nil, err
	}
	if err := resolveActor(ctx, s.userRepo.WithTx(tx), "changedBy", actor); err != nil {
		return nil, err
	}

	from := opp.Stage
	opp.Stage = to
	if probability != nil {
		opp.Probability = *probability
	} else {
		opp.Probability = domain.DefaultStageProbabilities[to]
	}

	if err := s.oppRepo.WithTx(tx).Update(ctx, opp); err != nil {
		return nil, fmt.Errorf("failed to update opportunity stage: %w", err)
	}

	reason = strings.TrimSpace(reason)
	stageLog := &domain.StageChangeLog{
		OpportunityID: opp.ID,
		FromStage:     &from,
		ToStage:       to,
		ChangedByID:   actor,
		Reason:        reason,
	}
	if err := s.logRepo.WithTx(tx).Create(ctx, stageLog); err != nil {
		return nil, fmt.Errorf("failed to record stage change: %w", err)
	}

	activity := &domain.Activity{
		Type:          domain.ActivityTypeStageChange,
		Subject:       fmt.Sprintf("%s → %s", from, to),
		Description:   reason,
		OpportunityID: &opp.ID,
		AccountID:     opp.AccountID,
		ContactID:     opp.ContactID,
		CreatedByID:   actor,
	}
	if err := s.activityRepo.WithTx(tx).Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to record stage change activity: %w", err)
	}

	return stageLog, nil
}

func (s *OpportunityService) logStageChange(log *domain.StageChangeLog) {
	from := ""
	if log.FromStage != nil {
		from = string(*log.FromStage)
	}
	s.logger.Info("opportunity stage changed",
		zap.String("opportunity_id", log.OpportunityID.String()),
		zap.String("from_stage", from),
		zap.String("to_stage", string(log.ToStage)),
		zap.Stringp("actor_id", uuidString(log.ChangedByID)))
}

// Recompute re-derives value and gross profit from the opportunity's orders,
// discarding any manual override
func (s *OpportunityService) Recompute(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) (*domain.OpportunityDTO, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	var opp *domain.Opportunity
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		opp, err = s.oppRepo.WithTx(tx).GetByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, ErrOpportunityNotFound, "opportunity")
		}
		if err := opp.EnsureMutable(); err != nil {
			return err
		}
		return recomputeFinancials(ctx, tx, s.oppRepo, s.orderRepo, opp)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("opportunity financials recomputed",
		zap.String("opportunity_id", id.String()),
		zap.Float64("value", opp.Value),
		zap.Float64("gross_profit", opp.GrossProfit),
		zap.Stringp("actor_id", uuidString(actorID)))

	dto := mapper.ToOpportunityDTO(opp)
	return &dto, nil
}

// GetStageLogs returns the stage history of an opportunity, oldest first
func (s *OpportunityService) GetStageLogs(ctx context.Context, id uuid.UUID) ([]domain.StageChangeLogDTO, error) {
	if _, err := s.oppRepo.GetByID(ctx, id); err != nil {
		return nil, lookupError(err, ErrOpportunityNotFound, "opportunity")
	}

	logs, err := s.logRepo.ListByOpportunityID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage logs: %w", err)
	}

	dtos := make([]domain.StageChangeLogDTO, len(logs))
	for i := range logs {
		dtos[i] = mapper.ToStageChangeLogDTO(&logs[i])
	}
	return dtos, nil
}

// checkReferences verifies optional account, contact and owner ids using db,
// which may be a transaction
func (s *OpportunityService) checkReferences(ctx context.Context, db *gorm.DB, accountID, contactID, ownerID *uuid.UUID) error {
	if accountID != nil {
		if _, err := s.accountRepo.WithTx(db).GetByID(ctx, *accountID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewValidationError("accountId", "account not found")
			}
			return fmt.Errorf("failed to get account: %w", err)
		}
	}
	if contactID != nil {
		if _, err := s.contactRepo.WithTx(db).GetByID(ctx, *contactID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewValidationError("contactId", "contact not found")
			}
			return fmt.Errorf("failed to get contact: %w", err)
		}
	}
	return resolveActor(ctx, s.userRepo.WithTx(db), "ownerId", ownerID)
}

// recomputeFinancials rolls the opportunity's orders up into its stored
// value, gross profit and margin. It must run inside the mutating transaction.
func recomputeFinancials(ctx context.Context, tx *gorm.DB, oppRepo *repository.OpportunityRepository, orderRepo *repository.OrderRepository, opp *domain.Opportunity) error {
	orders, err := orderRepo.WithTx(tx).ListByOpportunityID(ctx, opp.ID)
	if err != nil {
		return fmt.Errorf("failed to list orders: %w", err)
	}

	f := domain.RecomputeOpportunityFinancials(opp, orders)
	if err := oppRepo.WithTx(tx).UpdateFinancials(ctx, opp.ID, f); err != nil {
		return fmt.Errorf("failed to update opportunity financials: %w", err)
	}
	opp.ApplyFinancials(f)
	return nil
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
