package repository

import (
	"context"
	"time"

	"foodhub/internal/model"

	"github.com/google/uuid"
)

func (s *RepositorySuite) TestReview_HasDeliveredOrder() {
	ctx := context.Background()
	customer := s.createUser("customer")
	rest := s.createRestaurant(s.createUser("restaurant_owner"), "R1")
	s.createOrder(customer, rest, model.OrderStatusReady, time.Now())

	tx, err := s.reviews.BeginTx(ctx)
	s.Require().NoError(err)
	ok, err := s.reviews.HasDeliveredOrder(ctx, tx, customer, rest)
	s.Require().NoError(err)
	s.False(ok)
	s.Require().NoError(tx.Rollback(ctx))

	s.createOrder(customer, rest, model.OrderStatusDelivered, time.Now())

	tx, err = s.reviews.BeginTx(ctx)
	s.Require().NoError(err)
	defer tx.Rollback(ctx)
	ok, err = s.reviews.HasDeliveredOrder(ctx, tx, customer, rest)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RepositorySuite) TestReview_RecomputeRating() {
	ctx := context.Background()
	rest := s.createRestaurant(s.createUser("restaurant_owner"), "R1")

	var summary model.RatingSummary
	for _, rating := range []int{5, 4, 2} {
		tx, err := s.reviews.BeginTx(ctx)
		s.Require().NoError(err)
		s.Require().NoError(s.reviews.Create(ctx, tx, &model.Review{
			ID:           uuid.New(),
			CustomerID:   s.createUser("customer"),
			RestaurantID: rest,
			Rating:       rating,
			Comment:      "ok",
			CreatedAt:    time.Now(),
		}))
		summary, err = s.reviews.RecomputeRating(ctx, tx, rest)
		s.Require().NoError(err)
		s.Require().NoError(tx.Commit(ctx))
	}

	s.Equal(3, summary.TotalReviews)
	s.InDelta(11.0/3.0, summary.Rating, 1e-9)

	got, err := s.catalog.GetRestaurant(ctx, rest)
	s.Require().NoError(err)
	s.Equal(3, got.TotalReviews)
	s.InDelta(11.0/3.0, got.Rating, 1e-9)
}
