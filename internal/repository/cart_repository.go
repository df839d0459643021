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

// queryer is satisfied by both *pgxpool.Pool and pgx.Tx.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

func (r *cartRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return beginTx(ctx, r.pool, r.logger)
}

func (r *cartRepository) LockCustomer(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, customerID.String())
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to lock customer")
		return fmt.Errorf("failed to lock customer: %w", err)
	}
	return nil
}

const cartLineColumns = `
	c.id, c.customer_id, c.menu_item_id, c.quantity, c.created_at,
	m.id, m.restaurant_id, m.name, m.category, m.cuisine_type, m.price, m.is_available, m.order_count, m.created_at
`

func (r *cartRepository) LockLines(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) ([]model.CartLine, error) {
	query := `SELECT ` + cartLineColumns + `
		FROM cart_lines c
		JOIN menu_items m ON m.id = c.menu_item_id
		WHERE c.customer_id = $1
		ORDER BY c.created_at, c.id
		FOR UPDATE OF c
	`
	return r.queryLines(ctx, tx, query, customerID)
}

func (r *cartRepository) ListLines(ctx context.Context, customerID uuid.UUID) ([]model.CartLine, error) {
	query := `SELECT ` + cartLineColumns + `
		FROM cart_lines c
		JOIN menu_items m ON m.id = c.menu_item_id
		WHERE c.customer_id = $1
		ORDER BY c.created_at, c.id
	`
	return r.queryLines(ctx, r.pool, query, customerID)
}

func (r *cartRepository) queryLines(ctx context.Context, q queryer, query string, customerID uuid.UUID) ([]model.CartLine, error) {
	rows, err := q.Query(ctx, query, customerID)
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to query cart lines")
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()

	lines := make([]model.CartLine, 0)
	for rows.Next() {
		var l model.CartLine
		err := rows.Scan(
			&l.ID, &l.CustomerID, &l.MenuItemID, &l.Quantity, &l.CreatedAt,
			&l.Item.ID, &l.Item.RestaurantID, &l.Item.Name, &l.Item.Category, &l.Item.CuisineType,
			&l.Item.Price, &l.Item.Available, &l.Item.OrderCount, &l.Item.CreatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart line row")
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart line rows")
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}

	return lines, nil
}

func (r *cartRepository) Upsert(ctx context.Context, tx pgx.Tx, line *model.CartLine) error {
	query := `
		INSERT INTO cart_lines (id, customer_id, menu_item_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (customer_id, menu_item_id)
		DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity
		RETURNING id, quantity, created_at
	`

	err := tx.QueryRow(ctx, query, line.ID, line.CustomerID, line.MenuItemID, line.Quantity, line.CreatedAt).
		Scan(&line.ID, &line.Quantity, &line.CreatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("customer_id", line.CustomerID.String()).
			Str("menu_item_id", line.MenuItemID.String()).
			Msg("failed to upsert cart line")
		return fmt.Errorf("failed to upsert cart line: %w", err)
	}

	r.logger.Debug().
		Str("cart_line_id", line.ID.String()).
		Int("quantity", line.Quantity).
		Msg("cart line upserted")

	return nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, tx pgx.Tx, customerID, lineID uuid.UUID, quantity int) (bool, error) {
	tag, err := tx.Exec(ctx,
		`UPDATE cart_lines SET quantity = $3 WHERE id = $1 AND customer_id = $2`,
		lineID, customerID, quantity)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_line_id", lineID.String()).Msg("failed to update cart quantity")
		return false, fmt.Errorf("failed to update cart quantity: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *cartRepository) Delete(ctx context.Context, tx pgx.Tx, customerID, lineID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE id = $1 AND customer_id = $2`, lineID, customerID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_line_id", lineID.String()).Msg("failed to delete cart line")
		return fmt.Errorf("failed to delete cart line: %w", err)
	}
	return nil
}

func (r *cartRepository) DeleteAll(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) (int64, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE customer_id = $1`, customerID)
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to clear cart")
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *cartRepository) Counts(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) (model.CartCounts, error) {
	var counts model.CartCounts
	err := tx.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(quantity), 0) FROM cart_lines WHERE customer_id = $1`,
		customerID).Scan(&counts.LineCount, &counts.CartCount)
	if err != nil {
		return model.CartCounts{}, fmt.Errorf("failed to count cart lines: %w", err)
	}
	return counts, nil
}
