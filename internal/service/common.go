package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pipelinecrm/crm-api/internal/domain"
	"github.com/pipelinecrm/crm-api/internal/repository"
	"gorm.io/gorm"
)

// lookupError maps a missing record to the entity's not found error and
// wraps anything else
func lookupError(err error, notFound error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return fmt.Errorf("failed to get %s: %w", entity, err)
}

// resolveActor checks that a caller-supplied actor id refers to a user.
// A nil actor is allowed.
func resolveActor(ctx context.Context, users *repository.UserRepository, field string, actorID *uuid.UUID) error {
	if actorID == nil {
		return nil
	}
	if _, err := users.GetByID(ctx, *actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewValidationError(field, "unknown user")
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	return nil
}

func paginated(data interface{}, total int64, page, pageSize int) *domain.PaginatedResponse {
	page, pageSize = repository.NormalizePagination(page, pageSize)
	return &domain.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}
