package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"foodhub/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// catalogRepository implements the CatalogRepository interface using PostgreSQL.
type catalogRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool *pgxpool.Pool, logger zerolog.Logger) CatalogRepository {
	return &catalogRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "catalog").Logger(),
	}
}

func (r *catalogRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return beginTx(ctx, r.pool, r.logger)
}

const menuItemColumns = `id, restaurant_id, name, category, cuisine_type, price, is_available, order_count, created_at`

func scanMenuItem(row pgx.Row, item *model.MenuItem) error {
	return row.Scan(
		&item.ID, &item.RestaurantID, &item.Name, &item.Category, &item.CuisineType,
		&item.Price, &item.Available, &item.OrderCount, &item.CreatedAt,
	)
}

const restaurantColumns = `id, owner_id, name, cuisine_type, rating, total_reviews, is_active, created_at`

func scanRestaurant(row pgx.Row, rest *model.Restaurant) error {
	return row.Scan(
		&rest.ID, &rest.OwnerID, &rest.Name, &rest.CuisineType,
		&rest.Rating, &rest.TotalReviews, &rest.IsActive, &rest.CreatedAt,
	)
}

func (r *catalogRepository) GetMenuItem(ctx context.Context, id uuid.UUID) (*model.MenuItem, error) {
	var item model.MenuItem
	err := scanMenuItem(r.pool.QueryRow(ctx, `SELECT `+menuItemColumns+` FROM menu_items WHERE id = $1`, id), &item)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("menu_item_id", id.String()).Msg("menu item not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("menu_item_id", id.String()).Msg("failed to query menu item")
		return nil, fmt.Errorf("failed to query menu item: %w", err)
	}
	return &item, nil
}

func (r *catalogRepository) GetRestaurant(ctx context.Context, id uuid.UUID) (*model.Restaurant, error) {
	return r.getRestaurant(ctx, r.pool.QueryRow(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id), id)
}

// LockRestaurant takes FOR NO KEY UPDATE so that orders and cart lines
// referencing the restaurant (which take FOR KEY SHARE through their foreign
// keys) are not blocked by an owner edit or a review.
func (r *catalogRepository) LockRestaurant(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Restaurant, error) {
	return r.getRestaurant(ctx, tx.QueryRow(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1 FOR NO KEY UPDATE`, id), id)
}

func (r *catalogRepository) LockRestaurantForDelete(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Restaurant, error) {
	return r.getRestaurant(ctx, tx.QueryRow(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1 FOR UPDATE`, id), id)
}

func (r *catalogRepository) ShareCartRestaurants(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) error {
	query := `
		SELECT r.id
		FROM restaurants r
		WHERE r.id IN (
			SELECT mi.restaurant_id
			FROM cart_lines cl
			JOIN menu_items mi ON mi.id = cl.menu_item_id
			WHERE cl.customer_id = $1
		)
		ORDER BY r.id
		FOR KEY SHARE
	`

	if _, err := tx.Exec(ctx, query, customerID); err != nil {
		r.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to share-lock cart restaurants")
		return fmt.Errorf("failed to share-lock cart restaurants: %w", err)
	}
	return nil
}

func (r *catalogRepository) getRestaurant(ctx context.Context, row pgx.Row, id uuid.UUID) (*model.Restaurant, error) {
	var rest model.Restaurant
	if err := scanRestaurant(row, &rest); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("restaurant_id", id.String()).Msg("restaurant not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("restaurant_id", id.String()).Msg("failed to query restaurant")
		return nil, fmt.Errorf("failed to query restaurant: %w", err)
	}
	return &rest, nil
}

func (r *catalogRepository) LockMenuItems(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.MenuItem, error) {
	if len(ids) == 0 {
		return []model.MenuItem{}, nil
	}

	query := `SELECT ` + menuItemColumns + `
		FROM menu_items
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to lock menu items")
		return nil, fmt.Errorf("failed to lock menu items: %w", err)
	}
	defer rows.Close()

	items := make([]model.MenuItem, 0, len(ids))
	for rows.Next() {
		var item model.MenuItem
		if err := scanMenuItem(rows, &item); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan menu item row")
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating menu item rows")
		return nil, fmt.Errorf("error iterating menu items: %w", err)
	}

	return items, nil
}

func (r *catalogRepository) IncrementOrderCounts(ctx context.Context, tx pgx.Tx, quantities map[uuid.UUID]int) error {
	if len(quantities) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	batch := &pgx.Batch{}
	for _, id := range ids {
		batch.Queue(`UPDATE menu_items SET order_count = order_count + $2 WHERE id = $1`, id, quantities[id])
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for _, id := range ids {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().Err(err).Str("menu_item_id", id.String()).Msg("failed to increment order count")
			return fmt.Errorf("failed to increment order count: %w", err)
		}
	}

	return nil
}

func (r *catalogRepository) CountOrderLinesBetween(ctx context.Context, menuItemID uuid.UUID, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM order_lines ol
		JOIN orders o ON o.id = ol.order_id
		WHERE ol.menu_item_id = $1
		  AND o.created_at >= $2
		  AND o.created_at < $3
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, menuItemID, from, to).Scan(&count); err != nil {
		r.logger.Error().Err(err).Str("menu_item_id", menuItemID.String()).Msg("failed to count order lines")
		return 0, fmt.Errorf("failed to count order lines: %w", err)
	}
	return count, nil
}

func (r *catalogRepository) UpdateMenuItem(ctx context.Context, tx pgx.Tx, item *model.MenuItem) error {
	query := `
		UPDATE menu_items
		SET name = $2, category = $3, cuisine_type = $4, price = $5, is_available = $6
		WHERE id = $1
	`

	_, err := tx.Exec(ctx, query, item.ID, item.Name, item.Category, item.CuisineType, item.Price, item.Available)
	if err != nil {
		r.logger.Error().Err(err).Str("menu_item_id", item.ID.String()).Msg("failed to update menu item")
		return fmt.Errorf("failed to update menu item: %w", err)
	}
	return nil
}

// restaurantDeletes lists the dependent rows of a restaurant in the order
// they must be removed. The menu items are locked first, in the same id order
// settlement uses, before any cart line they are referenced by is touched.
var restaurantDeletes = []string{
	`SELECT id FROM menu_items WHERE restaurant_id = $1 ORDER BY id FOR UPDATE`,
	`DELETE FROM reviews WHERE restaurant_id = $1`,
	`DELETE FROM cart_lines WHERE menu_item_id IN (SELECT id FROM menu_items WHERE restaurant_id = $1)`,
	`DELETE FROM order_lines WHERE menu_item_id IN (SELECT id FROM menu_items WHERE restaurant_id = $1)`,
	`DELETE FROM order_lines WHERE order_id IN (SELECT id FROM orders WHERE restaurant_id = $1)`,
	`DELETE FROM orders WHERE restaurant_id = $1`,
	`DELETE FROM menu_items WHERE restaurant_id = $1`,
	`DELETE FROM restaurants WHERE id = $1`,
}

func (r *catalogRepository) DeleteRestaurant(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	batch := &pgx.Batch{}
	for _, q := range restaurantDeletes {
		batch.Queue(q, id)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for _, q := range restaurantDeletes {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().Err(err).Str("restaurant_id", id.String()).Str("statement", q).Msg("failed to delete restaurant")
			return fmt.Errorf("failed to delete restaurant: %w", err)
		}
	}

	r.logger.Info().Str("restaurant_id", id.String()).Msg("restaurant deleted")
	return nil
}
