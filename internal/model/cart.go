package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session is the request-scoped state of a customer: who is acting and which
// coupon, if any, is currently applied to their cart.
type Session struct {
	CustomerID uuid.UUID
	CouponCode string
}

// CartLine is a pending selection of one menu item by one customer.
type CartLine struct {
	ID         uuid.UUID `json:"id" db:"id"`
	CustomerID uuid.UUID `json:"-" db:"customer_id"`
	MenuItemID uuid.UUID `json:"menuItemId" db:"menu_item_id"`
	Quantity   int       `json:"quantity" db:"quantity"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`

	// Item is the catalogue snapshot joined when the line was read.
	Item MenuItem `json:"item"`
}

// CartLineView is a cart line with its coupon-aware pricing.
type CartLineView struct {
	CartLine
	UnitPrice           decimal.Decimal `json:"unitPrice"`
	DiscountedUnitPrice decimal.Decimal `json:"discountedUnitPrice"`
	LineTotal           decimal.Decimal `json:"lineTotal"`
	Discounted          bool            `json:"discounted"`
}

// CartSummary is the priced view of a customer's cart.
type CartSummary struct {
	Lines      []CartLineView  `json:"lines"`
	CouponCode string          `json:"couponCode,omitempty"`
	CartCount  int             `json:"cartCount"`
	LineCount  int             `json:"lineCount"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
}

// Line returns the priced line with the given id.
func (s *CartSummary) Line(id uuid.UUID) (CartLineView, bool) {
	for _, l := range s.Lines {
		if l.ID == id {
			return l, true
		}
	}
	return CartLineView{}, false
}

// CartCounts is the badge information shown after a cart mutation.
type CartCounts struct {
	LineCount int `json:"lineCount"`
	CartCount int `json:"cartCount"`
}

// AddToCartRequest represents the request payload for add-to-cart.
type AddToCartRequest struct {
	MenuItemID uuid.UUID `json:"menuItemId"`
	Quantity   int       `json:"quantity"`
}

// UpdateQuantityRequest represents the request payload for update-cart-quantity.
type UpdateQuantityRequest struct {
	CartLineID uuid.UUID `json:"cartLineId"`
	Quantity   int       `json:"quantity"`
}

// RemoveFromCartRequest represents the request payload for remove-from-cart.
type RemoveFromCartRequest struct {
	CartLineID uuid.UUID `json:"cartLineId"`
}

// ApplyCouponRequest represents the request payload for apply-coupon.
type ApplyCouponRequest struct {
	Code string `json:"code"`
}

// QuantityUpdate is the result of changing one line's quantity.
type QuantityUpdate struct {
	Summary       *CartSummary
	LineUnitPrice decimal.Decimal
	LineTotal     decimal.Decimal
}
