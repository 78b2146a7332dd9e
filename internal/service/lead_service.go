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

type LeadService struct {
	leadRepo     *repository.LeadRepository
	oppRepo      *repository.OpportunityRepository
	accountRepo  *repository.AccountRepository
	contactRepo  *repository.ContactRepository
	activityRepo *repository.ActivityRepository
	userRepo     *repository.UserRepository
	logger       *zap.Logger
	db           *gorm.DB
}

func NewLeadService(
	leadRepo *repository.LeadRepository,
	oppRepo *repository.OpportunityRepository,
	accountRepo *repository.AccountRepository,
	contactRepo *repository.ContactRepository,
	activityRepo *repository.ActivityRepository,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
	db *gorm.DB,
) *LeadService {
	return &LeadService{
		leadRepo:     leadRepo,
		oppRepo:      oppRepo,
		accountRepo:  accountRepo,
		contactRepo:  contactRepo,
		activityRepo: activityRepo,
		userRepo:     userRepo,
		logger:       logger,
		db:           db,
	}
}

func (s *LeadService) Create(ctx context.Context, req *domain.CreateLeadRequest) (*domain.LeadDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.leadRepo.EmailExists(ctx, email, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check lead email: %w", err)
	}
	if exists {
		return nil, ErrDuplicateLeadEmail
	}

	if err := resolveActor(ctx, s.userRepo, "ownerId", req.OwnerID); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = domain.LeadStatusNew
	}

	lead := &domain.Lead{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     email,
		Phone:     req.Phone,
		Company:   req.Company,
		Title:     req.Title,
		Source:    req.Source,
		Status:    status,
		OwnerID:   req.OwnerID,
	}

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.logger.Info("lead created", zap.String("lead_id", lead.ID.String()))

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

func (s *LeadService) GetByID(ctx context.Context, id uuid.UUID) (*domain.LeadDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrLeadNotFound, "lead")
	}

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

func (s *LeadService) List(ctx context.Context, page, pageSize int, filters repository.LeadFilters) (*domain.PaginatedResponse, error) {
	leads, total, err := s.leadRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	dtos := make([]domain.LeadDTO, len(leads))
	for i := range leads {
		dtos[i] = mapper.ToLeadDTO(&leads[i])
	}

	return paginated(dtos, total, page, pageSize), nil
}

func (s *LeadService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateLeadRequest) (*domain.LeadDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrLeadNotFound, "lead")
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != lead.Email {
			exists, err := s.leadRepo.EmailExists(ctx, email, &id)
			if err != nil {
				return nil, fmt.Errorf("failed to check lead email: %w", err)
			}
			if exists {
				return nil, ErrDuplicateLeadEmail
			}
			lead.Email = email
		}
	}

	if err := resolveActor(ctx, s.userRepo, "ownerId", req.OwnerID); err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		lead.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		lead.LastName = *req.LastName
	}
	if req.Phone != nil {
		lead.Phone = *req.Phone
	}
	if req.Company != nil {
		lead.Company = *req.Company
	}
	if req.Title != nil {
		lead.Title = *req.Title
	}
	if req.Source != nil {
		lead.Source = *req.Source
	}
	if req.Status != nil {
		lead.Status = *req.Status
	}
	if req.OwnerID != nil {
		lead.OwnerID = req.OwnerID
	}

	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

// Convert creates a new opportunity from a lead. The lead itself is never
// modified, so a lead can be converted any number of times. When an account
// is chosen without a contact, a contact is created from the lead's details
// unless CreateContact is false; an existing contact with the lead's email
// is linked instead of creating a duplicate.
func (s *LeadService) Convert(ctx context.Context, leadID uuid.UUID, req *domain.ConvertLeadRequest, actorID *uuid.UUID) (*domain.LeadConversionDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, leadID)
	if err != nil {
		return nil, lookupError(err, ErrLeadNotFound, "lead")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
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

	ownerID := lead.OwnerID
	if req.OwnerID != nil {
		ownerID = req.OwnerID
	}

	var opp *domain.Opportunity
	var contact *domain.Contact
	contactCreated := false

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.AccountID != nil {
			if _, err := s.accountRepo.WithTx(tx).GetByID(ctx, *req.AccountID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.NewValidationError("accountId", "account not found")
				}
				return fmt.Errorf("failed to get account: %w", err)
			}
		}

		if err := resolveActor(ctx, s.userRepo.WithTx(tx), "ownerId", ownerID); err != nil {
			return err
		}
		if err := resolveActor(ctx, s.userRepo.WithTx(tx), "createdBy", actorID); err != nil {
			return err
		}

		switch {
		case req.ContactID != nil:
			existing, err := s.contactRepo.WithTx(tx).GetByID(ctx, *req.ContactID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.NewValidationError("contactId", "contact not found")
				}
				return fmt.Errorf("failed to get contact: %w", err)
			}
			contact = existing
		case req.AccountID != nil && (req.CreateContact == nil || *req.CreateContact):
			var err error
			contact, contactCreated, err = s.contactForLead(ctx, tx, lead, *req.AccountID)
			if err != nil {
				return err
			}
		}

		opp = &domain.Opportunity{
			AccountID:   req.AccountID,
			LeadID:      &lead.ID,
			Name:        name,
			Description: req.Description,
			Stage:       stage,
			Probability: probability,
			CloseDate:   closeDate,
			LeadSource:  lead.Source,
			OwnerID:     ownerID,
		}
		if contact != nil {
			opp.ContactID = &contact.ID
		}
		opp.SetManualFinancials(req.Value, nil)

		if err := s.oppRepo.WithTx(tx).Create(ctx, opp); err != nil {
			return fmt.Errorf("failed to create opportunity: %w", err)
		}

		activity := &domain.Activity{
			Type:          domain.ActivityTypeNote,
			Subject:       "Converted from lead",
			Description:   fmt.Sprintf("Opportunity '%s' created from lead %s %s", opp.Name, lead.FirstName, lead.LastName),
			OpportunityID: &opp.ID,
			LeadID:        &lead.ID,
			AccountID:     opp.AccountID,
			ContactID:     opp.ContactID,
			CreatedByID:   actorID,
		}
		if err := s.activityRepo.WithTx(tx).Create(ctx, activity); err != nil {
			return fmt.Errorf("failed to record conversion activity: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lead converted",
		zap.String("lead_id", lead.ID.String()),
		zap.String("opportunity_id", opp.ID.String()),
		zap.Bool("contact_created", contactCreated),
		zap.Stringp("actor_id", uuidString(actorID)))

	result := &domain.LeadConversionDTO{
		Opportunity:    mapper.ToOpportunityDTO(opp),
		ContactCreated: contactCreated,
	}
	if contact != nil {
		dto := mapper.ToContactDTO(contact)
		result.Contact = &dto
	}
	return result, nil
}

// contactForLead links the contact carrying the lead's email or creates one
// under the account from the lead's details
func (s *LeadService) contactForLead(ctx context.Context, tx *gorm.DB, lead *domain.Lead, accountID uuid.UUID) (*domain.Contact, bool, error) {
	contacts := s.contactRepo.WithTx(tx)

	if lead.Email != "" {
		existing, err := contacts.GetByEmail(ctx, lead.Email)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("failed to look up contact: %w", err)
		}
	}

	contact := &domain.Contact{
		AccountID: &accountID,
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Title:     lead.Title,
		OwnerID:   lead.OwnerID,
	}
	if err := contacts.Create(ctx, contact); err != nil {
		return nil, false, fmt.Errorf("failed to create contact: %w", err)
	}
	return contact, true, nil
}
