package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodhub/internal/model"
	"foodhub/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// reviewService implements ReviewService.
type reviewService struct {
	reviewRepo  repository.ReviewRepository
	catalogRepo repository.CatalogRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewReviewService creates a new review service.
func NewReviewService(reviewRepo repository.ReviewRepository, catalogRepo repository.CatalogRepository, logger zerolog.Logger) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		catalogRepo: catalogRepo,
		logger:      logger.With().Str("service", "review").Logger(),
		now:         time.Now,
	}
}

// SubmitReview records a review and refreshes the restaurant's rating.
// Only customers with a delivered order from the restaurant may review it.
func (s *reviewService) SubmitReview(ctx context.Context, customerID uuid.UUID, req *model.ReviewRequest) (summary *model.RatingSummary, err error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, model.Detail(model.ErrValidation, "Rating must be between 1 and 5")
	}
	comment := strings.TrimSpace(req.Comment)
	if comment == "" {
		return nil, model.Detail(model.ErrValidation, "Comment is required")
	}

	tx, err := s.reviewRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err, s.logger)

	// Serialises reviews of one restaurant so each recompute sees the others.
	restaurant, err := s.catalogRepo.LockRestaurant(ctx, tx, req.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}
	if restaurant == nil {
		return nil, model.Detail(model.ErrNotFound, "Restaurant not found")
	}

	eligible, err := s.reviewRepo.HasDeliveredOrder(ctx, tx, customerID, req.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}
	if !eligible {
		s.logger.Debug().
			Str("customer_id", customerID.String()).
			Str("restaurant_id", req.RestaurantID.String()).
			Msg("review without delivered order")
		return nil, model.ErrNotEligible
	}

	review := &model.Review{
		ID:           uuid.New(),
		CustomerID:   customerID,
		RestaurantID: req.RestaurantID,
		Rating:       req.Rating,
		Comment:      comment,
		CreatedAt:    s.now().UTC(),
	}
	if err = s.reviewRepo.Create(ctx, tx, review); err != nil {
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}

	rating, err := s.reviewRepo.RecomputeRating(ctx, tx, req.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}

	s.logger.Info().
		Str("restaurant_id", req.RestaurantID.String()).
		Int("rating", req.Rating).
		Float64("average", rating.Rating).
		Int("total_reviews", rating.TotalReviews).
		Msg("review submitted")

	return &rating, nil
}
