package service

import (
	"context"

	"foodhub/internal/model"

	"github.com/google/uuid"
)

// CartService defines the cart ledger operations of a customer session.
type CartService interface {
	// AddItem adds quantity of a menu item to the cart, merging with an
	// existing line for the same item.
	AddItem(ctx context.Context, sess model.Session, req *model.AddToCartRequest) (*model.CartCounts, error)

	// UpdateQuantity sets the quantity of one cart line and returns the
	// repriced line and cart.
	UpdateQuantity(ctx context.Context, sess model.Session, req *model.UpdateQuantityRequest) (*model.QuantityUpdate, error)

	// RemoveItem deletes one cart line. Removing a missing line succeeds.
	RemoveItem(ctx context.Context, sess model.Session, req *model.RemoveFromCartRequest) (*model.CartSummary, error)

	// GetSummary prices the cart under the session coupon.
	GetSummary(ctx context.Context, sess model.Session) (*model.CartSummary, error)

	// ApplyCoupon stores code in the session (an empty code clears it) and
	// returns the repriced cart.
	ApplyCoupon(ctx context.Context, sess model.Session, code string) (*model.CartSummary, error)
}

// OrderService defines order settlement and lifecycle operations.
type OrderService interface {
	// PlaceOrder settles the session's cart into one order per restaurant.
	PlaceOrder(ctx context.Context, sess model.Session) ([]model.Order, error)

	// UpdateOrderStatus moves an order to a new status on behalf of the
	// owner of its restaurant.
	UpdateOrderStatus(ctx context.Context, ownerID uuid.UUID, req *model.UpdateOrderStatusRequest) (*model.Order, error)

	// GetOrder returns an order visible to the ordering customer or the
	// restaurant owner.
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error)

	// ListCustomerOrders pages through the customer's order history.
	ListCustomerOrders(ctx context.Context, customerID uuid.UUID, req *model.ListOrdersRequest) (*model.OrderPage, error)

	// ListRestaurantOrders pages through the orders of every restaurant the
	// owner owns.
	ListRestaurantOrders(ctx context.Context, ownerID uuid.UUID, req *model.ListOrdersRequest) (*model.OrderPage, error)
}

// ReviewService defines restaurant review operations.
type ReviewService interface {
	SubmitReview(ctx context.Context, customerID uuid.UUID, req *model.ReviewRequest) (*model.RatingSummary, error)
}

// CatalogService defines menu item and restaurant operations.
type CatalogService interface {
	GetMenuItem(ctx context.Context, id uuid.UUID) (*model.MenuItemView, error)

	// IsMostlyOrdered reports whether the item appears in more than ten
	// order lines of orders created today (UTC).
	IsMostlyOrdered(ctx context.Context, id uuid.UUID) (bool, error)

	UpdateMenuItem(ctx context.Context, ownerID, id uuid.UUID, update *model.MenuItemUpdate) (*model.MenuItem, error)

	DeleteRestaurant(ctx context.Context, ownerID, id uuid.UUID) error
}
