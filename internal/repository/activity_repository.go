package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pipelinecrm/crm-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActivityFilters selects activities attached to a given entity
type ActivityFilters struct {
	OpportunityID *uuid.UUID
	LeadID        *uuid.UUID
	AccountID     *uuid.UUID
	ContactID     *uuid.UUID
	Type          *domain.ActivityType
}

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *ActivityRepository) WithTx(tx *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: tx}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(activity).Error
}

func (r *ActivityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	var activity domain.Activity
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&activity).Error
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

// List returns activities newest first
func (r *ActivityRepository) List(ctx context.Context, filters ActivityFilters, limit int) ([]domain.Activity, error) {
	var activities []domain.Activity

	query := r.db.WithContext(ctx).Model(&domain.Activity{})
	if filters.OpportunityID != nil {
		query = query.Where("opportunity_id = ?", *filters.OpportunityID)
	}
	if filters.LeadID != nil {
		query = query.Where("lead_id = ?", *filters.LeadID)
	}
	if filters.AccountID != nil {
		query = query.Where("account_id = ?", *filters.AccountID)
	}
	if filters.ContactID != nil {
		query = query.Where("contact_id = ?", *filters.ContactID)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Order("created_at DESC").Find(&activities).Error
	return activities, err
}
