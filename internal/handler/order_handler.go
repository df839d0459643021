package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"foodhub/internal/model"
	"foodhub/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// OrderLineResponse is one settled line of an order.
type OrderLineResponse struct {
	ID         uuid.UUID `json:"id"`
	MenuItemID uuid.UUID `json:"menuItemId"`
	Quantity   int       `json:"quantity"`
	UnitPrice  string    `json:"unitPrice"`
	LineTotal  string    `json:"lineTotal"`
}

// OrderResponse renders an order with two-decimal amounts.
type OrderResponse struct {
	ID           uuid.UUID           `json:"id"`
	Number       string              `json:"orderNumber"`
	CustomerID   uuid.UUID           `json:"customerId"`
	RestaurantID uuid.UUID           `json:"restaurantId"`
	Status       model.OrderStatus   `json:"status"`
	CouponCode   *string             `json:"couponCode,omitempty"`
	TotalAmount  string              `json:"totalAmount"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
	Lines        []OrderLineResponse `json:"lines"`
}

// OrderListResponse is returned by the order history listings.
type OrderListResponse struct {
	Success  bool            `json:"success"`
	Orders   []OrderResponse `json:"orders"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
	Total    int             `json:"total"`
	Pages    int             `json:"pages"`
}

func newOrderResponse(o *model.Order) OrderResponse {
	resp := OrderResponse{
		ID:           o.ID,
		Number:       o.Number,
		CustomerID:   o.CustomerID,
		RestaurantID: o.RestaurantID,
		Status:       o.Status,
		CouponCode:   o.CouponCode,
		TotalAmount:  money(o.TotalAmount),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		Lines:        make([]OrderLineResponse, len(o.Lines)),
	}
	for i, l := range o.Lines {
		resp.Lines[i] = OrderLineResponse{
			ID:         l.ID,
			MenuItemID: l.MenuItemID,
			Quantity:   l.Quantity,
			UnitPrice:  money(l.UnitPrice),
			LineTotal:  money(l.Subtotal()),
		}
	}
	return resp
}

func newOrderListResponse(page *model.OrderPage) OrderListResponse {
	resp := OrderListResponse{
		Success:  true,
		Orders:   make([]OrderResponse, len(page.Orders)),
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    page.Total,
		Pages:    page.Pages,
	}
	for i := range page.Orders {
		resp.Orders[i] = newOrderResponse(&page.Orders[i])
	}
	return resp
}

// listOrdersRequest reads the listing query parameters. A missing or
// malformed page means the first page.
func listOrdersRequest(r *http.Request) model.ListOrdersRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	return model.ListOrdersRequest{
		Status: q.Get("status"),
		Search: q.Get("search"),
		Page:   page,
	}
}

// PlaceOrder handles POST /api/orders requests.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	sess, ok := customerSession(w, r, h.logger)
	if !ok {
		return
	}

	orders, err := h.service.PlaceOrder(r.Context(), sess)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	resp := model.PlaceOrderResponse{
		Success:      true,
		Message:      "Order placed successfully",
		OrderNumbers: make([]string, len(orders)),
	}
	for i, o := range orders {
		resp.OrderNumbers[i] = o.Number
	}
	if len(orders) > 0 {
		resp.OrderNumber = orders[0].Number
	}
	if len(orders) > 1 {
		resp.Message = fmt.Sprintf("%d orders placed successfully", len(orders))
	}

	writeJSON(w, http.StatusCreated, resp)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r, h.logger)
	if !ok {
		return
	}
	orderID, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), p.UserID, orderID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, newOrderResponse(order))
}

// ListCustomerOrders handles GET /api/orders requests.
func (h *OrderHandler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r, h.logger)
	if !ok {
		return
	}

	req := listOrdersRequest(r)
	page, err := h.service.ListCustomerOrders(r.Context(), p.UserID, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, newOrderListResponse(page))
}

// ListRestaurantOrders handles GET /api/owner/orders requests.
func (h *OrderHandler) ListRestaurantOrders(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r, h.logger)
	if !ok {
		return
	}

	req := listOrdersRequest(r)
	page, err := h.service.ListRestaurantOrders(r.Context(), p.UserID, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, newOrderListResponse(page))
}

// UpdateStatus handles POST /api/orders/status requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r, h.logger)
	if !ok {
		return
	}

	var req model.UpdateOrderStatusRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.UpdateOrderStatus(r.Context(), p.UserID, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Success: true,
		Message: fmt.Sprintf("Order %s is now %s", order.Number, order.Status),
	})
}
