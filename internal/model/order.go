package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is a step of the order lifecycle.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists the lifecycle in order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseOrderStatus returns the lifecycle value named by s.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Terminal reports whether no further status change is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Order is a finalised purchase from exactly one restaurant.
type Order struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Number       string          `json:"orderNumber" db:"number"`
	CustomerID   uuid.UUID       `json:"customerId" db:"customer_id"`
	RestaurantID uuid.UUID       `json:"restaurantId" db:"restaurant_id"`
	Status       OrderStatus     `json:"status" db:"status"`
	CouponCode   *string         `json:"couponCode,omitempty" db:"coupon_code"`
	TotalAmount  decimal.Decimal `json:"totalAmount" db:"total_amount"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`

	Lines []OrderLine `json:"lines,omitempty"`
}

// OrderLine is one menu item of an order with the unit price frozen at
// settlement, after any coupon discount.
type OrderLine struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	OrderID    uuid.UUID       `json:"-" db:"order_id"`
	MenuItemID uuid.UUID       `json:"menuItemId" db:"menu_item_id"`
	Quantity   int             `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice" db:"unit_price"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
}

// Subtotal returns UnitPrice × Quantity.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderPageSize is the number of orders on one listing page.
const OrderPageSize = 10

// ListOrdersRequest carries the query parameters of an order listing.
type ListOrdersRequest struct {
	Status string // empty lists every status
	Search string // substring of the order number
	Page   int    // 1-based; values below 1 mean the first page
}

// OrderFilter is a validated ListOrdersRequest.
type OrderFilter struct {
	Status OrderStatus
	Search string
	Page   int
}

// Offset returns the number of rows before the filter's page.
func (f OrderFilter) Offset() int {
	return (f.Page - 1) * OrderPageSize
}

// OrderPage is one page of orders, newest first.
type OrderPage struct {
	Orders   []Order `json:"orders"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
	Total    int     `json:"total"`
	Pages    int     `json:"pages"`
}

// UpdateOrderStatusRequest represents the request payload for update-order-status.
type UpdateOrderStatusRequest struct {
	OrderID uuid.UUID `json:"orderId"`
	Status  string    `json:"status"`
}

// PlaceOrderResponse represents the response payload for place-order.
type PlaceOrderResponse struct {
	Success      bool     `json:"success"`
	Message      string   `json:"message"`
	OrderNumber  string   `json:"orderNumber"`
	OrderNumbers []string `json:"orderNumbers"`
}
