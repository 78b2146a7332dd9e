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

type ProductService struct {
	productRepo *repository.ProductRepository
	itemRepo    *repository.OrderItemRepository
	logger      *zap.Logger
}

func NewProductService(
	productRepo *repository.ProductRepository,
	itemRepo *repository.OrderItemRepository,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		itemRepo:    itemRepo,
		logger:      logger,
	}
}

func (s *ProductService) Create(ctx context.Context, req *domain.CreateProductRequest) (*domain.ProductDTO, error) {
	if !req.Type.IsValid() {
		return nil, domain.NewValidationError("type", "must be one of onetime, subscription, service-based")
	}

	product := &domain.Product{
		Name:        req.Name,
		Type:        req.Type,
		Price:       req.Price,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("type", string(product.Type)))

	dto := mapper.ToProductDTO(product)
	return &dto, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProductDTO, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrProductNotFound, "product")
	}

	dto := mapper.ToProductDTO(product)
	return &dto, nil
}

func (s *ProductService) List(ctx context.Context, filters repository.ProductFilters) ([]domain.ProductDTO, error) {
	products, err := s.productRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	dtos := make([]domain.ProductDTO, len(products))
	for i := range products {
		dtos[i] = mapper.ToProductDTO(&products[i])
	}
	return dtos, nil
}

// Update edits catalog fields. Stored item totals are not re-priced; the
// type of a referenced product is fixed.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProductRequest) (*domain.ProductDTO, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrProductNotFound, "product")
	}

	if req.Type != nil && *req.Type != product.Type {
		if !req.Type.IsValid() {
			return nil, domain.NewValidationError("type", "must be one of onetime, subscription, service-based")
		}
		refs, err := s.itemRepo.CountByProductID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to count order items: %w", err)
		}
		if refs > 0 {
			return nil, ErrProductTypeLocked
		}
		product.Type = *req.Type
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	dto := mapper.ToProductDTO(product)
	return &dto, nil
}

// Delete removes a product that no order item references. Referenced
// products should be deactivated instead.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.GetByID(ctx, id); err != nil {
		return lookupError(err, ErrProductNotFound, "product")
	}

	refs, err := s.itemRepo.CountByProductID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count order items: %w", err)
	}
	if refs > 0 {
		return ErrProductInUse
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info("product deleted", zap.String("product_id", id.String()))
	return nil
}
