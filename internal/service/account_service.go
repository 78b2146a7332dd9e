package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pipelinecrm/crm-api/internal/domain"
	"github.com/pipelinecrm/crm-api/internal/mapper"
	"github.com/pipelinecrm/crm-api/internal/repository"
	"go.uber.org/zap"
)

type AccountService struct {
	accountRepo *repository.AccountRepository
	userRepo    *repository.UserRepository
	logger      *zap.Logger
}

func NewAccountService(
	accountRepo *repository.AccountRepository,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

func (s *AccountService) Create(ctx context.Context, req *domain.CreateAccountRequest) (*domain.AccountDTO, error) {
	if err := resolveActor(ctx, s.userRepo, "ownerId", req.OwnerID); err != nil {
		return nil, err
	}

	account := &domain.Account{
		Name:     req.Name,
		Industry: req.Industry,
		Website:  req.Website,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		City:     req.City,
		Country:  req.Country,
		OwnerID:  req.OwnerID,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("account created",
		zap.String("account_id", account.ID.String()),
		zap.String("name", account.Name))

	dto := mapper.ToAccountDTO(account)
	return &dto, nil
}

func (s *AccountService) GetByID(ctx context.Context, id uuid.UUID) (*domain.AccountDTO, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrAccountNotFound, "account")
	}

	dto := mapper.ToAccountDTO(account)
	return &dto, nil
}

func (s *AccountService) List(ctx context.Context, page, pageSize int, search string) (*domain.PaginatedResponse, error) {
	accounts, total, err := s.accountRepo.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	dtos := make([]domain.AccountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = mapper.ToAccountDTO(&accounts[i])
	}

	return paginated(dtos, total, page, pageSize), nil
}

func (s *AccountService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateAccountRequest) (*domain.AccountDTO, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrAccountNotFound, "account")
	}

	if err := resolveActor(ctx, s.userRepo, "ownerId", req.OwnerID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Industry != nil {
		account.Industry = *req.Industry
	}
	if req.Website != nil {
		account.Website = *req.Website
	}
	if req.Phone != nil {
		account.Phone = *req.Phone
	}
	if req.Email != nil {
		account.Email = *req.Email
	}
	if req.Address != nil {
		account.Address = *req.Address
	}
	if req.City != nil {
		account.City = *req.City
	}
	if req.Country != nil {
		account.Country = *req.Country
	}
	if req.OwnerID != nil {
		account.OwnerID = req.OwnerID
	}

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	dto := mapper.ToAccountDTO(account)
	return &dto, nil
}
