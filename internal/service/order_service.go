package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pipelinecrm/crm-api/internal/domain"
	"github.com/pipelinecrm/crm-api/internal/mapper"
	"github.com/pipelinecrm/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderService struct {
	orderRepo     *repository.OrderRepository
	itemRepo      *repository.OrderItemRepository
	productRepo   *repository.ProductRepository
	oppRepo       *repository.OpportunityRepository
	numberService *NumberSequenceService
	locks         *OpportunityLocks
	logger        *zap.Logger
	db            *gorm.DB
}

func NewOrderService(
	orderRepo *repository.OrderRepository,
	itemRepo *repository.OrderItemRepository,
	productRepo *repository.ProductRepository,
	oppRepo *repository.OpportunityRepository,
	numberService *NumberSequenceService,
	locks *OpportunityLocks,
	logger *zap.Logger,
	db *gorm.DB,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		itemRepo:      itemRepo,
		productRepo:   productRepo,
		oppRepo:       oppRepo,
		numberService: numberService,
		locks:         locks,
		logger:        logger,
		db:            db,
	}
}

// Create adds an order with its items to an open opportunity. The order
// total and the opportunity financials are updated in the same transaction.
func (s *OrderService) Create(ctx context.Context, req *domain.CreateOrderRequest, actorID *uuid.UUID) (*domain.OrderDTO, error) {
	status := req.Status
	if status == "" {
		status = domain.OrderStatusDraft
	}
	if !status.IsValid() {
		return nil, domain.NewValidationError("status", "unknown order status")
	}

	orderDate, err := domain.ParseDate("orderDate", req.OrderDate)
	if err != nil {
		return nil, err
	}
	if orderDate == nil {
		now := time.Now().UTC()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		orderDate = &today
	}

	if _, err := s.oppRepo.GetByID(ctx, req.OpportunityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewValidationError("opportunityId", "opportunity not found")
		}
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}

	var order *domain.Order
	err = s.withOpenOpportunity(ctx, req.OpportunityID, func(tx *gorm.DB, opp *domain.Opportunity) error {
		items := make([]*domain.OrderItem, len(req.Items))
		for i := range req.Items {
			item, err := s.prepareItem(ctx, tx, req.Items[i], fmt.Sprintf("items[%d].", i))
			if err != nil {
				return err
			}
			items[i] = item
		}

		number, err := s.numberService.GenerateOrderNumber(ctx, tx)
		if err != nil {
			return err
		}

		order = &domain.Order{
			OpportunityID: opp.ID,
			OrderNumber:   number,
			Status:        status,
			OrderDate:     *orderDate,
		}
		if err := s.orderRepo.WithTx(tx).Create(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, item := range items {
			item.OrderID = order.ID
			if err := s.itemRepo.WithTx(tx).Create(ctx, item); err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}

		return s.refreshOrderTotal(ctx, tx, order.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("opportunity_id", order.OpportunityID.String()),
		zap.Int("items", len(req.Items)),
		zap.Stringp("actor_id", uuidString(actorID)))

	return s.GetByID(ctx, order.ID)
}

func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*domain.OrderDTO, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrOrderNotFound, "order")
	}

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

func (s *OrderService) List(ctx context.Context, page, pageSize int, filters repository.OrderFilters) (*domain.PaginatedResponse, error) {
	orders, total, err := s.orderRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	dtos := make([]domain.OrderDTO, len(orders))
	for i := range orders {
		dtos[i] = mapper.ToOrderDTO(&orders[i])
	}

	return paginated(dtos, total, page, pageSize), nil
}

// Update changes the status or order date. Stored totals are untouched.
func (s *OrderService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateOrderRequest, actorID *uuid.UUID) (*domain.OrderDTO, error) {
	existing, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrOrderNotFound, "order")
	}

	err = s.withOpenOpportunity(ctx, existing.OpportunityID, func(tx *gorm.DB, _ *domain.Opportunity) error {
		order, err := s.orderRepo.WithTx(tx).GetByID(ctx, id)
		if err != nil {
			return lookupError(err, ErrOrderNotFound, "order")
		}

		if req.Status != nil {
			if !req.Status.IsValid() {
				return domain.NewValidationError("status", "unknown order status")
			}
			order.Status = *req.Status
		}
		if req.OrderDate != nil {
			orderDate, err := domain.ParseDate("orderDate", *req.OrderDate)
			if err != nil {
				return err
			}
			if orderDate == nil {
				return domain.NewValidationError("orderDate", "must not be empty")
			}
			order.OrderDate = *orderDate
		}

		if err := s.orderRepo.WithTx(tx).UpdateFields(ctx, order); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order updated",
		zap.String("order_id", id.String()),
		zap.Stringp("actor_id", uuidString(actorID)))

	return s.GetByID(ctx, id)
}

// Delete removes an order and its items and recomputes the opportunity
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error {
	existing, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return lookupError(err, ErrOrderNotFound, "order")
	}

	err = s.withOpenOpportunity(ctx, existing.OpportunityID, func(tx *gorm.DB, _ *domain.Opportunity) error {
		if _, err := s.orderRepo.WithTx(tx).GetByID(ctx, id); err != nil {
			return lookupError(err, ErrOrderNotFound, "order")
		}
		if err := s.itemRepo.WithTx(tx).DeleteByOrderID(ctx, id); err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}
		if err := s.orderRepo.WithTx(tx).Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("order deleted",
		zap.String("order_id", id.String()),
		zap.String("order_number", existing.OrderNumber),
		zap.Stringp("actor_id", uuidString(actorID)))
	return nil
}

// AddItem prices a new item and appends it to an order
func (s *OrderService) AddItem(ctx context.Context, req *domain.CreateOrderItemRequest, actorID *uuid.UUID) (*domain.OrderItemDTO, error) {
	order, err := s.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewValidationError("orderId", "order not found")
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	var item *domain.OrderItem
	err = s.withOpenOpportunity(ctx, order.OpportunityID, func(tx *gorm.DB, _ *domain.Opportunity) error {
		if _, err := s.orderRepo.WithTx(tx).GetByID(ctx, order.ID); err != nil {
			return lookupError(err, ErrOrderNotFound, "order")
		}

		item, err = s.prepareItem(ctx, tx, req.OrderItemInput, "")
		if err != nil {
			return err
		}
		item.OrderID = order.ID

		if err := s.itemRepo.WithTx(tx).Create(ctx, item); err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
		return s.refreshOrderTotal(ctx, tx, order.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order item added",
		zap.String("order_item_id", item.ID.String()),
		zap.String("order_id", order.ID.String()),
		zap.Float64("total_proposal", item.TotalProposal),
		zap.Stringp("actor_id", uuidString(actorID)))

	dto := mapper.ToOrderItemDTO(item)
	return &dto, nil
}

// UpdateItem applies a partial edit and re-prices the item
func (s *OrderService) UpdateItem(ctx context.Context, id uuid.UUID, req *domain.UpdateOrderItemRequest, actorID *uuid.UUID) (*domain.OrderItemDTO, error) {
	oppID, err := s.opportunityIDForItem(ctx, id)
	if err != nil {
		return nil, err
	}

	var item *domain.OrderItem
	err = s.withOpenOpportunity(ctx, oppID, func(tx *gorm.DB, _ *domain.Opportunity) error {
		var err error
		item, err = s.itemRepo.WithTx(tx).GetByID(ctx, id)
		if err != nil {
			return lookupError(err, ErrOrderItemNotFound, "order item")
		}

		product := item.Product
		if req.ProductID != nil && *req.ProductID != item.ProductID {
			product, err = s.activeProduct(ctx, tx, *req.ProductID, "productId")
			if err != nil {
				return err
			}
			item.ProductID = product.ID
			item.Product = product
		}
		if product == nil {
			return fmt.Errorf("order item %s has no product", id)
		}

		if req.Quantity != nil {
			item.Quantity = *req.Quantity
		}
		if req.CostValue != nil {
			item.CostValue = *req.CostValue
		}
		if req.ProposalValue != nil {
			item.ProposalValue = *req.ProposalValue
		}
		if req.Discount != nil {
			item.Discount = *req.Discount
		}
		if req.StartDate != nil {
			if item.StartDate, err = domain.ParseDate("startDate", *req.StartDate); err != nil {
				return err
			}
		}
		if req.EndDate != nil {
			if item.EndDate, err = domain.ParseDate("endDate", *req.EndDate); err != nil {
				return err
			}
		}

		if err := priceItem(product.Type, item); err != nil {
			return err
		}

		if err := s.itemRepo.WithTx(tx).Update(ctx, item); err != nil {
			return fmt.Errorf("failed to update order item: %w", err)
		}
		return s.refreshOrderTotal(ctx, tx, item.OrderID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order item updated",
		zap.String("order_item_id", id.String()),
		zap.Float64("total_proposal", item.TotalProposal),
		zap.Stringp("actor_id", uuidString(actorID)))

	dto := mapper.ToOrderItemDTO(item)
	return &dto, nil
}

func (s *OrderService) DeleteItem(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error {
	oppID, err := s.opportunityIDForItem(ctx, id)
	if err != nil {
		return err
	}

	err = s.withOpenOpportunity(ctx, oppID, func(tx *gorm.DB, _ *domain.Opportunity) error {
		item, err := s.itemRepo.WithTx(tx).GetByID(ctx, id)
		if err != nil {
			return lookupError(err, ErrOrderItemNotFound, "order item")
		}
		if err := s.itemRepo.WithTx(tx).Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete order item: %w", err)
		}
		return s.refreshOrderTotal(ctx, tx, item.OrderID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("order item deleted",
		zap.String("order_item_id", id.String()),
		zap.Stringp("actor_id", uuidString(actorID)))
	return nil
}

// ReconcileTotals re-derives the stored total of every order that belongs
// to an open opportunity and repairs any drift. It returns how many orders
// were repaired.
func (s *OrderService) ReconcileTotals(ctx context.Context) (int, error) {
	ids, err := s.orderRepo.ListIDsForOpenOpportunities(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list orders: %w", err)
	}

	repaired := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return repaired, err
		}

		fixed, err := s.reconcileOrder(ctx, id)
		if err != nil {
			if errors.Is(err, ErrOrderNotFound) || errors.Is(err, domain.ErrInvalidState) {
				continue
			}
			return repaired, err
		}
		if fixed {
			repaired++
		}
	}

	return repaired, nil
}

func (s *OrderService) reconcileOrder(ctx context.Context, id uuid.UUID) (bool, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return false, lookupError(err, ErrOrderNotFound, "order")
	}

	unlock := s.locks.Lock(order.OpportunityID)
	defer unlock()

	fixed := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		opp, err := s.oppRepo.WithTx(tx).GetByIDForUpdate(ctx, order.OpportunityID)
		if err != nil {
			return lookupError(err, ErrOpportunityNotFound, "opportunity")
		}
		if err := opp.EnsureMutable(); err != nil {
			return err
		}

		current, err := s.orderRepo.WithTx(tx).GetByID(ctx, id)
		if err != nil {
			return lookupError(err, ErrOrderNotFound, "order")
		}

		total := domain.OrderTotal(current.Items)
		if amountsEqual(total, current.TotalAmount) {
			return nil
		}

		s.logger.Warn("order total drifted, repairing",
			zap.String("order_id", id.String()),
			zap.Float64("stored", current.TotalAmount),
			zap.Float64("computed", total))

		if err := s.orderRepo.WithTx(tx).UpdateTotalAmount(ctx, id, total); err != nil {
			return fmt.Errorf("failed to update order total: %w", err)
		}
		fixed = true
		return recomputeFinancials(ctx, tx, s.oppRepo, s.orderRepo, opp)
	})
	return fixed, err
}

// withOpenOpportunity runs fn under the opportunity's lock inside a
// transaction holding its row lock, then recomputes its financials.
// Closed opportunities are rejected before fn runs.
func (s *OrderService) withOpenOpportunity(ctx context.Context, oppID uuid.UUID, fn func(tx *gorm.DB, opp *domain.Opportunity) error) error {
	unlock := s.locks.Lock(oppID)
	defer unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		opp, err := s.oppRepo.WithTx(tx).GetByIDForUpdate(ctx, oppID)
		if err != nil {
			return lookupError(err, ErrOpportunityNotFound, "opportunity")
		}
		if err := opp.EnsureMutable(); err != nil {
			return err
		}

		if err := fn(tx, opp); err != nil {
			return err
		}

		return recomputeFinancials(ctx, tx, s.oppRepo, s.orderRepo, opp)
	})
}

func (s *OrderService) opportunityIDForItem(ctx context.Context, itemID uuid.UUID) (uuid.UUID, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return uuid.Nil, lookupError(err, ErrOrderItemNotFound, "order item")
	}
	order, err := s.orderRepo.GetByID(ctx, item.OrderID)
	if err != nil {
		return uuid.Nil, lookupError(err, ErrOrderNotFound, "order")
	}
	return order.OpportunityID, nil
}

// prepareItem resolves the product and prices a new item. Validation error
// keys are prefixed with prefix.
func (s *OrderService) prepareItem(ctx context.Context, tx *gorm.DB, in domain.OrderItemInput, prefix string) (*domain.OrderItem, error) {
	product, err := s.activeProduct(ctx, tx, in.ProductID, "productId")
	if err != nil {
		return nil, prefixValidation(err, prefix)
	}

	startDate, err := domain.ParseDate("startDate", in.StartDate)
	if err != nil {
		return nil, prefixValidation(err, prefix)
	}
	endDate, err := domain.ParseDate("endDate", in.EndDate)
	if err != nil {
		return nil, prefixValidation(err, prefix)
	}

	proposal := product.Price
	if in.ProposalValue != nil {
		proposal = *in.ProposalValue
	}

	item := &domain.OrderItem{
		ProductID:     product.ID,
		Product:       product,
		Quantity:      in.Quantity,
		CostValue:     in.CostValue,
		ProposalValue: proposal,
		Discount:      in.Discount,
		StartDate:     startDate,
		EndDate:       endDate,
	}
	if err := priceItem(product.Type, item); err != nil {
		return nil, prefixValidation(err, prefix)
	}
	return item, nil
}

func (s *OrderService) activeProduct(ctx context.Context, tx *gorm.DB, id uuid.UUID, field string) (*domain.Product, error) {
	product, err := s.productRepo.WithTx(tx).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewValidationError(field, "product not found")
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if !product.IsActive {
		return nil, domain.NewValidationError(field, "product is inactive")
	}
	return product, nil
}

// refreshOrderTotal stores the sum of the order's item proposal totals
func (s *OrderService) refreshOrderTotal(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	items, err := s.itemRepo.WithTx(tx).ListByOrderID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to list order items: %w", err)
	}
	if err := s.orderRepo.WithTx(tx).UpdateTotalAmount(ctx, orderID, domain.OrderTotal(items)); err != nil {
		return fmt.Errorf("failed to update order total: %w", err)
	}
	return nil
}

// priceItem runs the pricing engine and stores the totals on the item. Only
// subscriptions validate their date range.
func priceItem(productType domain.ProductType, item *domain.OrderItem) error {
	totals, err := domain.ComputeItemTotals(productType, domain.PricingInput{
		Quantity:        item.Quantity,
		CostValue:       item.CostValue,
		ProposalValue:   item.ProposalValue,
		DiscountPercent: item.Discount,
	}, item.StartDate, item.EndDate)
	if err != nil {
		return err
	}

	item.TotalCost = totals.TotalCost
	item.TotalProposal = totals.TotalProposal
	return nil
}

func prefixValidation(err error, prefix string) error {
	var verr *domain.ValidationError
	if prefix == "" || !errors.As(err, &verr) {
		return err
	}

	prefixed := &domain.ValidationError{}
	for field, msg := range verr.Errors {
		prefixed.Add(prefix+field, msg)
	}
	if cause := verr.Unwrap(); cause != nil {
		prefixed.WithCause(cause)
	}
	return prefixed
}

func amountsEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}
