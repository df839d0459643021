package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Restaurant is a tenant of the marketplace, owned by one restaurant owner.
type Restaurant struct {
	ID           uuid.UUID `json:"id" db:"id"`
	OwnerID      uuid.UUID `json:"ownerId" db:"owner_id"`
	Name         string    `json:"name" db:"name"`
	CuisineType  string    `json:"cuisineType" db:"cuisine_type"`
	Rating       float64   `json:"rating" db:"rating"`
	TotalReviews int       `json:"totalReviews" db:"total_reviews"`
	IsActive     bool      `json:"isActive" db:"is_active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// MenuItem is the catalogue view of a dish. Price is the current price and is
// only ever copied into an order line at settlement time.
type MenuItem struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	RestaurantID uuid.UUID       `json:"restaurantId" db:"restaurant_id"`
	Name         string          `json:"name" db:"name"`
	Category     string          `json:"category" db:"category"`
	CuisineType  string          `json:"cuisineType" db:"cuisine_type"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Available    bool            `json:"available" db:"is_available"`
	OrderCount   int             `json:"orderCount" db:"order_count"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
}

// MenuItemUpdate carries the owner-editable fields; nil fields are left unchanged.
type MenuItemUpdate struct {
	Name        *string          `json:"name,omitempty"`
	Category    *string          `json:"category,omitempty"`
	CuisineType *string          `json:"cuisineType,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Available   *bool            `json:"available,omitempty"`
}

// Apply copies the non-nil fields onto item.
func (u MenuItemUpdate) Apply(item *MenuItem) {
	if u.Name != nil {
		item.Name = *u.Name
	}
	if u.Category != nil {
		item.Category = *u.Category
	}
	if u.CuisineType != nil {
		item.CuisineType = *u.CuisineType
	}
	if u.Price != nil {
		item.Price = *u.Price
	}
	if u.Available != nil {
		item.Available = *u.Available
	}
}

// MenuItemView is the read model returned to clients.
type MenuItemView struct {
	Item          MenuItem `json:"item"`
	MostlyOrdered bool     `json:"mostlyOrdered"`
}
