package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pipelinecrm/crm-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderFilters contains filter options for listing orders
type OrderFilters struct {
	OpportunityID *uuid.UUID
	Status        *domain.OrderStatus
}

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

// GetByID loads the order with its items and their products
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.created_at ASC")
		}).
		Preload("Items.Product").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByOpportunityID returns all orders of an opportunity with their items
func (r *OrderRepository) ListByOpportunityID(ctx context.Context, opportunityID uuid.UUID) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("opportunity_id = ?", opportunityID).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *OrderRepository) List(ctx context.Context, page, pageSize int, filters OrderFilters) ([]domain.Order, int64, error) {
	var orders []domain.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Order{})
	if filters.OpportunityID != nil {
		query = query.Where("opportunity_id = ?", *filters.OpportunityID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Preload("Items").Preload("Items.Product").Order("created_at DESC")
	err := paginate(query, page, pageSize).Find(&orders).Error
	return orders, total, err
}

// UpdateFields updates status and order date without touching stored totals
func (r *OrderRepository) UpdateFields(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"status":     order.Status,
			"order_date": order.OrderDate,
		}).Error
}

// UpdateTotalAmount persists the order's stored total
func (r *OrderRepository) UpdateTotalAmount(ctx context.Context, id uuid.UUID, total float64) error {
	return r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", id).
		Update("total_amount", total).Error
}

func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Order{}, "id = ?", id).Error
}

// OrderNumberExists reports whether an order number is already taken
func (r *OrderRepository) OrderNumberExists(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error
	return count > 0, err
}

// ListIDsForOpenOpportunities returns ids of orders whose opportunity is not closed
func (r *OrderRepository) ListIDsForOpenOpportunities(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Joins("JOIN opportunities ON opportunities.id = orders.opportunity_id").
		Where("opportunities.stage NOT IN ?", []domain.OpportunityStage{domain.StageClosedWon, domain.StageClosedLost}).
		Order("orders.created_at ASC").
		Pluck("orders.id", &ids).Error
	return ids, err
}
