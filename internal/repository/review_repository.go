package repository

import (
	"context"
	"fmt"

	"foodhub/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type reviewRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReviewRepository {
	return &reviewRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "review").Logger(),
	}
}

func (r *reviewRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return beginTx(ctx, r.pool, r.logger)
}

func (r *reviewRepository) HasDeliveredOrder(ctx context.Context, tx pgx.Tx, customerID, restaurantID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE customer_id = $1 AND restaurant_id = $2 AND status = $3
		)
	`

	var ok bool
	if err := tx.QueryRow(ctx, query, customerID, restaurantID, string(model.OrderStatusDelivered)).Scan(&ok); err != nil {
		r.logger.Error().Err(err).Msg("failed to check delivered orders")
		return false, fmt.Errorf("failed to check delivered orders: %w", err)
	}
	return ok, nil
}

func (r *reviewRepository) Create(ctx context.Context, tx pgx.Tx, review *model.Review) error {
	query := `
		INSERT INTO reviews (id, customer_id, restaurant_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, query, review.ID, review.CustomerID, review.RestaurantID, review.Rating, review.Comment, review.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("restaurant_id", review.RestaurantID.String()).Msg("failed to create review")
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) RecomputeRating(ctx context.Context, tx pgx.Tx, restaurantID uuid.UUID) (model.RatingSummary, error) {
	query := `
		UPDATE restaurants
		SET rating = agg.avg_rating, total_reviews = agg.total
		FROM (
			SELECT COALESCE(AVG(rating), 0)::double precision AS avg_rating, COUNT(*)::int AS total
			FROM reviews
			WHERE restaurant_id = $1
		) agg
		WHERE restaurants.id = $1
		RETURNING restaurants.rating, restaurants.total_reviews
	`

	summary := model.RatingSummary{RestaurantID: restaurantID}
	if err := tx.QueryRow(ctx, query, restaurantID).Scan(&summary.Rating, &summary.TotalReviews); err != nil {
		r.logger.Error().Err(err).Str("restaurant_id", restaurantID.String()).Msg("failed to recompute rating")
		return model.RatingSummary{}, fmt.Errorf("failed to recompute rating: %w", err)
	}
	return summary, nil
}
