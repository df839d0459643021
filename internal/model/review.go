package model

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer's rating of a restaurant.
type Review struct {
	ID           uuid.UUID `json:"id" db:"id"`
	CustomerID   uuid.UUID `json:"customerId" db:"customer_id"`
	RestaurantID uuid.UUID `json:"restaurantId" db:"restaurant_id"`
	Rating       int       `json:"rating" db:"rating"`
	Comment      string    `json:"comment" db:"comment"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// ReviewRequest represents the request payload for submitting a review.
type ReviewRequest struct {
	RestaurantID uuid.UUID `json:"restaurantId"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
}

// RatingSummary is a restaurant's aggregate after a review is recorded.
type RatingSummary struct {
	RestaurantID uuid.UUID `json:"restaurantId"`
	Rating       float64   `json:"rating"`
	TotalReviews int       `json:"totalReviews"`
}
