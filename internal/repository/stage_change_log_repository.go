package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pipelinecrm/crm-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StageChangeLogRepository stores the append-only stage audit trail. It has
// no update or delete methods.
type StageChangeLogRepository struct {
	db *gorm.DB
}

func NewStageChangeLogRepository(db *gorm.DB) *StageChangeLogRepository {
	return &StageChangeLogRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *StageChangeLogRepository) WithTx(tx *gorm.DB) *StageChangeLogRepository {
	return &StageChangeLogRepository{db: tx}
}

// Create records a new stage transition
func (r *StageChangeLogRepository) Create(ctx context.Context, log *domain.StageChangeLog) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(log).Error
}

// ListByOpportunityID returns the stage history of an opportunity, oldest first
func (r *StageChangeLogRepository) ListByOpportunityID(ctx context.Context, opportunityID uuid.UUID) ([]domain.StageChangeLog, error) {
	var logs []domain.StageChangeLog
	err := r.db.WithContext(ctx).
		Preload("ChangedBy").
		Where("opportunity_id = ?", opportunityID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}

// CountByOpportunityID returns the number of transitions recorded for an opportunity
func (r *StageChangeLogRepository) CountByOpportunityID(ctx context.Context, opportunityID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.StageChangeLog{}).
		Where("opportunity_id = ?", opportunityID).
		Count(&count).Error
	return count, err
}
