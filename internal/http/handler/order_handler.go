package handler

import (
	"net/http"

	"github.com/pipelinecrm/crm-api/internal/domain"
	"github.com/pipelinecrm/crm-api/internal/repository"
	"github.com/pipelinecrm/crm-api/internal/service"
	"go.uber.org/zap"
)

// OrderHandler serves orders and their items. Every write is rejected with
// 409 invalid_state when the parent opportunity is closed.
type OrderHandler struct {
	orderService *service.OrderService
	logger       *zap.Logger
}

func NewOrderHandler(orderService *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// @Summary List orders
// @Tags Orders
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param opportunityId query string false "Filter by opportunity ID"
// @Param status query string false "Filter by status (draft, pending, confirmed, shipped, delivered, cancelled)"
// @Success 200 {object} domain.PaginatedResponse
// @Router /orders [get]
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)

	oppID, ok := queryUUID(w, r, "opportunityId")
	if !ok {
		return
	}

	filters := repository.OrderFilters{OpportunityID: oppID}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.OrderStatus(s)
		if !status.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		filters.Status = &status
	}

	result, err := h.orderService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list orders")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary Create order
// @Description Creates an order with zero or more items. Item totals, the order total and the
// @Description opportunity financials are computed in the same transaction.
// @Tags Orders
// @Accept json
// @Produce json
// @Param X-User-ID header string false "Acting user ID"
// @Param request body domain.CreateOrderRequest true "Order data"
// @Success 201 {object} domain.OrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /orders [post]
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	order, err := h.orderService.Create(r.Context(), &req, actorID(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create order")
		return
	}

	w.Header().Set("Location", "/api/orders/"+order.ID.String())
	respondJSON(w, http.StatusCreated, order)
}

// @Summary Get order
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.OrderDTO
// @Failure 404 {object} domain.APIError
// @Router /orders/{id} [get]
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get order")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// @Summary Update order
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param X-User-ID header string false "Acting user ID"
// @Param request body domain.UpdateOrderRequest true "Fields to change"
// @Success 200 {object} domain.OrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /orders/{id} [patch]
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "order")
	if !ok {
		return
	}

	var req domain.UpdateOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	order, err := h.orderService.Update(r.Context(), id, &req, actorID(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update order")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// @Summary Delete order
// @Description Deletes the order and its items, then recomputes the opportunity financials.
// @Tags Orders
// @Param id path string true "Order ID"
// @Param X-User-ID header string false "Acting user ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /orders/{id} [delete]
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "order")
	if !ok {
		return
	}

	if err := h.orderService.Delete(r.Context(), id, actorID(r)); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete order")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Add order item
// @Tags Order Items
// @Accept json
// @Produce json
// @Param X-User-ID header string false "Acting user ID"
// @Param request body domain.CreateOrderItemRequest true "Item data"
// @Success 201 {object} domain.OrderItemDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /order-items [post]
func (h *OrderHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOrderItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.orderService.AddItem(r.Context(), &req, actorID(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to add order item")
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// @Summary Update order item
// @Description Partial update; totals are recomputed from the merged fields.
// @Tags Order Items
// @Accept json
// @Produce json
// @Param id path string true "Order item ID"
// @Param X-User-ID header string false "Acting user ID"
// @Param request body domain.UpdateOrderItemRequest true "Fields to change"
// @Success 200 {object} domain.OrderItemDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /order-items/{id} [patch]
func (h *OrderHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "order item")
	if !ok {
		return
	}

	var req domain.UpdateOrderItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.orderService.UpdateItem(r.Context(), id, &req, actorID(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update order item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// @Summary Delete order item
// @Tags Order Items
// @Param id path string true "Order item ID"
// @Param X-User-ID header string false "Acting user ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /order-items/{id} [delete]
func (h *OrderHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "order item")
	if !ok {
		return
	}

	if err := h.orderService.DeleteItem(r.Context(), id, actorID(r)); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete order item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
