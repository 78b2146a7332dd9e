package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pipelinecrm/crm-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OpportunityFilters contains all filter options for listing opportunities
type OpportunityFilters struct {
	Stage     *domain.OpportunityStage
	AccountID *uuid.UUID
	ContactID *uuid.UUID
	LeadID    *uuid.UUID
	OwnerID   *uuid.UUID
	OpenOnly  bool
	Search    string
}

var opportunitySortFields = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"name":        "name",
	"value":       "value",
	"probability": "probability",
	"closeDate":   "close_date",
}

type OpportunityRepository struct {
	db *gorm.DB
}

func NewOpportunityRepository(db *gorm.DB) *OpportunityRepository {
	return &OpportunityRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *OpportunityRepository) WithTx(tx *gorm.DB) *OpportunityRepository {
	return &OpportunityRepository{db: tx}
}

func (r *OpportunityRepository) Create(ctx context.Context, opp *domain.Opportunity) error {
	// Omit associations to avoid GORM trying to upsert related records
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(opp).Error
}

func (r *OpportunityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Opportunity, error) {
	var opp domain.Opportunity
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&opp).Error
	if err != nil {
		return nil, err
	}
	return &opp, nil
}

// GetByIDForUpdate loads the opportunity with a row lock. It must be called
// on a repository bound to a transaction.
func (r *OpportunityRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Opportunity, error) {
	var opp domain.Opportunity
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&opp).Error
	if err != nil {
		return nil, err
	}
	return &opp, nil
}

// GetWithRelations loads the opportunity and its full aggregate for detail views
func (r *OpportunityRepository) GetWithRelations(ctx context.Context, id uuid.UUID) (*domain.Opportunity, error) {
	var opp domain.Opportunity
	err := r.db.WithContext(ctx).
		Preload("Account").
		Preload("Contact").
		Preload("Owner").
		Preload("Orders", func(db *gorm.DB) *gorm.DB {
			return db.Order("orders.created_at ASC")
		}).
		Preload("Orders.Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.created_at ASC")
		}).
		Preload("Orders.Items.Product").
		Preload("StageLogs", func(db *gorm.DB) *gorm.DB {
			return db.Order("stage_change_logs.created_at ASC")
		}).
		Preload("StageLogs.ChangedBy").
		Where("id = ?", id).
		First(&opp).Error
	if err != nil {
		return nil, err
	}
	return &opp, nil
}

func (r *OpportunityRepository) Update(ctx context.Context, opp *domain.Opportunity) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(opp).Error
}

// UpdateFinancials writes the stored roll-up fields
func (r *OpportunityRepository) UpdateFinancials(ctx context.Context, id uuid.UUID, f domain.OpportunityFinancials) error {
	return r.db.WithContext(ctx).Model(&domain.Opportunity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"value":               f.Value,
			"gross_profit":        f.GrossProfit,
			"gross_profit_margin": f.GrossProfitMargin,
		}).Error
}

func (r *OpportunityRepository) List(ctx context.Context, page, pageSize int, filters OpportunityFilters, sort SortConfig) ([]domain.Opportunity, int64, error) {
	var opps []domain.Opportunity
	var total int64

	query := r.applyFilters(r.db.WithContext(ctx).Model(&domain.Opportunity{}), filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(BuildOrderClause(sort, opportunitySortFields, "created_at"))
	err := paginate(query, page, pageSize).Find(&opps).Error
	return opps, total, err
}

func (r *OpportunityRepository) applyFilters(query *gorm.DB, filters OpportunityFilters) *gorm.DB {
	if filters.Stage != nil {
		query = query.Where("stage = ?", *filters.Stage)
	}
	if filters.AccountID != nil {
		query = query.Where("account_id = ?", *filters.AccountID)
	}
	if filters.ContactID != nil {
		query = query.Where("contact_id = ?", *filters.ContactID)
	}
	if filters.LeadID != nil {
		query = query.Where("lead_id = ?", *filters.LeadID)
	}
	if filters.OwnerID != nil {
		query = query.Where("owner_id = ?", *filters.OwnerID)
	}
	if filters.OpenOnly {
		query = query.Where("stage NOT IN ?", []domain.OpportunityStage{domain.StageClosedWon, domain.StageClosedLost})
	}
	if filters.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(filters.Search))
	}
	return query
}

// StageAggregate is the count and value of opportunities in one stage
type StageAggregate struct {
	Stage         domain.OpportunityStage
	Count         int64
	Value         float64
	WeightedValue float64
}

// AggregateByStage groups opportunities by stage. Weighted value is computed
// from the stored value and probability.
func (r *OpportunityRepository) AggregateByStage(ctx context.Context) ([]StageAggregate, error) {
	var results []StageAggregate
	err := r.db.WithContext(ctx).Model(&domain.Opportunity{}).
		Select("stage, COUNT(*) as count, COALESCE(SUM(value), 0) as value, COALESCE(SUM(value * probability / 100.0), 0) as weighted_value").
		Group("stage").
		Scan(&results).Error
	return results, err
}
