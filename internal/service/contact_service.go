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

type ContactService struct {
	contactRepo *repository.ContactRepository
	accountRepo *repository.AccountRepository
	userRepo    *repository.UserRepository
	logger      *zap.Logger
}

func NewContactService(
	contactRepo *repository.ContactRepository,
	accountRepo *repository.AccountRepository,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		accountRepo: accountRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

func (s *ContactService) Create(ctx context.Context, req *domain.CreateContactRequest) (*domain.ContactDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.ensureEmailFree(ctx, email, nil); err != nil {
		return nil, err
	}
	if err := s.checkAccount(ctx, req.AccountID); err != nil {
		return nil, err
	}
	if err := resolveActor(ctx, s.userRepo, "ownerId", req.OwnerID); err != nil {
		return nil, err
	}

	contact := &domain.Contact{
		AccountID: req.AccountID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     email,
		Phone:     req.Phone,
		Title:     req.Title,
		OwnerID:   req.OwnerID,
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	s.logger.Info("contact created", zap.String("contact_id", contact.ID.String()))

	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

func (s *ContactService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContactDTO, error) {
	contact, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrContactNotFound, "contact")
	}

	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

func (s *ContactService) List(ctx context.Context, page, pageSize int, filters repository.ContactFilters) (*domain.PaginatedResponse, error) {
	contacts, total, err := s.contactRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	dtos := make([]domain.ContactDTO, len(contacts))
	for i := range contacts {
		dtos[i] = mapper.ToContactDTO(&contacts[i])
	}

	return paginated(dtos, total, page, pageSize), nil
}

func (s *ContactService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateContactRequest) (*domain.ContactDTO, error) {
	contact, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrContactNotFound, "contact")
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != contact.Email {
			if err := s.ensureEmailFree(ctx, email, &id); err != nil {
				return nil, err
			}
			contact.Email = email
		}
	}
	if err := s.checkAccount(ctx, req.AccountID); err != nil {
		return nil, err
	}
	if err := resolveActor(ctx, s.userRepo, "ownerId", req.OwnerID); err != nil {
		return nil, err
	}

	if req.AccountID != nil {
		contact.AccountID = req.AccountID
		contact.Account = nil
	}
	if req.FirstName != nil {
		contact.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		contact.LastName = *req.LastName
	}
	if req.Phone != nil {
		contact.Phone = *req.Phone
	}
	if req.Title != nil {
		contact.Title = *req.Title
	}
	if req.OwnerID != nil {
		contact.OwnerID = req.OwnerID
	}

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	return s.GetByID(ctx, id)
}

// ensureEmailFree rejects a non-empty email already used by another contact
func (s *ContactService) ensureEmailFree(ctx context.Context, email string, excludeID *uuid.UUID) error {
	if email == "" {
		return nil
	}
	existing, err := s.contactRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check contact email: %w", err)
	}
	if excludeID != nil && existing.ID == *excludeID {
		return nil
	}
	return ErrDuplicateContactEmail
}

func (s *ContactService) checkAccount(ctx context.Context, accountID *uuid.UUID) error {
	if accountID == nil {
		return nil
	}
	if _, err := s.accountRepo.GetByID(ctx, *accountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewValidationError("accountId", "account not found")
		}
		return fmt.Errorf("failed to get account: %w", err)
	}
	return nil
}
