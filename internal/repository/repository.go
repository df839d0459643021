package repository

import (
	"context"
	"time"

	"foodhub/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Transactor starts database transactions.
type Transactor interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// CartRepository defines the interface for cart line data access.
// Mutations run inside a transaction that holds the customer lock.
type CartRepository interface {
	Transactor

	// LockCustomer takes a transaction-scoped advisory lock serialising all
	// cart mutations and settlements of one customer.
	LockCustomer(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) error

	// LockLines returns the customer's cart lines, joined with their menu
	// items, locking the cart rows until the transaction ends.
	LockLines(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) ([]model.CartLine, error)

	// ListLines returns the customer's cart lines without locking.
	ListLines(ctx context.Context, customerID uuid.UUID) ([]model.CartLine, error)

	// Upsert inserts a line or adds its quantity to the existing line for the same item.
	Upsert(ctx context.Context, tx pgx.Tx, line *model.CartLine) error

	// UpdateQuantity sets the quantity of one of the customer's lines.
	// It reports false when no such line exists.
	UpdateQuantity(ctx context.Context, tx pgx.Tx, customerID, lineID uuid.UUID, quantity int) (bool, error)

	// Delete removes one of the customer's lines. Missing lines are not an error.
	Delete(ctx context.Context, tx pgx.Tx, customerID, lineID uuid.UUID) error

	// DeleteAll empties the customer's cart and returns the number of lines removed.
	DeleteAll(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) (int64, error)

	// Counts returns the distinct line count and aggregate quantity.
	Counts(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) (model.CartCounts, error)
}

// CatalogRepository defines the interface for restaurant and menu item data access.
type CatalogRepository interface {
	Transactor

	// GetMenuItem retrieves a menu item, or nil when it does not exist.
	GetMenuItem(ctx context.Context, id uuid.UUID) (*model.MenuItem, error)

	// GetRestaurant retrieves a restaurant, or nil when it does not exist.
	GetRestaurant(ctx context.Context, id uuid.UUID) (*model.Restaurant, error)

	// LockRestaurant reads a restaurant FOR NO KEY UPDATE, or nil when it does
	// not exist. It serialises owner edits and reviews of one restaurant but
	// does not block inserts of rows that reference it.
	LockRestaurant(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Restaurant, error)

	// LockRestaurantForDelete reads a restaurant FOR UPDATE, or nil when it
	// does not exist. It excludes every other lock on the row, including the
	// key-share locks settlements hold.
	LockRestaurantForDelete(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Restaurant, error)

	// ShareCartRestaurants takes FOR KEY SHARE, in id order, on every
	// restaurant the customer's cart lines point to.
	ShareCartRestaurants(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) error

	// LockMenuItems reads the given menu items FOR UPDATE in id order.
	// Items that do not exist are absent from the result.
	LockMenuItems(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.MenuItem, error)

	// IncrementOrderCounts adds the ordered quantity to each item's order_count.
	IncrementOrderCounts(ctx context.Context, tx pgx.Tx, quantities map[uuid.UUID]int) error

	// CountOrderLinesBetween counts order lines of an item whose order was
	// created in [from, to).
	CountOrderLinesBetween(ctx context.Context, menuItemID uuid.UUID, from, to time.Time) (int, error)

	// UpdateMenuItem writes the editable fields of item.
	UpdateMenuItem(ctx context.Context, tx pgx.Tx, item *model.MenuItem) error

	// DeleteRestaurant removes a restaurant and everything that references it.
	DeleteRestaurant(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	Transactor

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderLines inserts multiple order lines within the provided transaction.
	CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error

	// GetByID retrieves an order with its lines, or nil when it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByCustomer returns one page of a customer's orders with their
	// lines, newest first, and the total number of matching orders.
	ListByCustomer(ctx context.Context, customerID uuid.UUID, filter model.OrderFilter) ([]model.Order, int, error)

	// ListByOwner is ListByCustomer over the orders of every restaurant the
	// owner owns.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, filter model.OrderFilter) ([]model.Order, int, error)

	// UpdateStatus moves an order from one status to another. It reports
	// false when the order is no longer in status from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus, at time.Time) (bool, error)
}

// ReviewRepository defines the interface for review data access operations.
type ReviewRepository interface {
	Transactor

	// HasDeliveredOrder reports whether the customer has a delivered order
	// from the restaurant.
	HasDeliveredOrder(ctx context.Context, tx pgx.Tx, customerID, restaurantID uuid.UUID) (bool, error)

	// Create inserts a review within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, review *model.Review) error

	// RecomputeRating sets the restaurant's rating and total_reviews from
	// its full review set and returns the new values.
	RecomputeRating(ctx context.Context, tx pgx.Tx, restaurantID uuid.UUID) (model.RatingSummary, error)
}
