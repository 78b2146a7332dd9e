package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pipelinecrm/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	orderNumberScope       = "order"
	orderNumberMaxAttempts = 5
)

// NumberSequenceService generates order numbers from a per-year counter.
//
// Format: ORD-{YEAR}-{SEQUENCE}
// Example: ORD-2026-00042
type NumberSequenceService struct {
	repo      *repository.NumberSequenceRepository
	orderRepo *repository.OrderRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewNumberSequenceService creates a new NumberSequenceService
func NewNumberSequenceService(
	repo *repository.NumberSequenceRepository,
	orderRepo *repository.OrderRepository,
	logger *zap.Logger,
) *NumberSequenceService {
	return &NumberSequenceService{
		repo:      repo,
		orderRepo: orderRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// GenerateOrderNumber reserves the next free order number inside tx. Numbers
// already taken by imported orders are skipped; after a bounded number of
// collisions ErrOrderNumberExhausted is returned.
func (s *NumberSequenceService) GenerateOrderNumber(ctx context.Context, tx *gorm.DB) (string, error) {
	year := s.now().Year()
	seqRepo := s.repo.WithTx(tx)
	orderRepo := s.orderRepo.WithTx(tx)

	for attempt := 0; attempt < orderNumberMaxAttempts; attempt++ {
		nextSeq, err := seqRepo.GetNextNumber(ctx, orderNumberScope, year)
		if err != nil {
			s.logger.Error("failed to get next sequence number",
				zap.String("scope", orderNumberScope),
				zap.Int("year", year),
				zap.Error(err))
			return "", fmt.Errorf("failed to generate order number: %w", err)
		}

		number := fmt.Sprintf("ORD-%d-%05d", year, nextSeq)

		exists, err := orderRepo.OrderNumberExists(ctx, number)
		if err != nil {
			return "", fmt.Errorf("failed to check order number: %w", err)
		}
		if !exists {
			s.logger.Debug("generated order number", zap.String("order_number", number))
			return number, nil
		}

		s.logger.Warn("order number already taken, retrying",
			zap.String("order_number", number),
			zap.Int("attempt", attempt+1))
	}

	return "", ErrOrderNumberExhausted
}

// CurrentSequence returns the last issued order sequence of the current year
func (s *NumberSequenceService) CurrentSequence(ctx context.Context) (int, error) {
	return s.repo.GetCurrentSequence(ctx, orderNumberScope, s.now().Year())
}
