package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodhub/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return beginTx(ctx, r.pool, r.logger)
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, number, customer_id, restaurant_id, status, coupon_code, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.Number, order.CustomerID, order.RestaurantID, string(order.Status),
		order.CouponCode, order.TotalAmount, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_number", order.Number).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.Number).
		Msg("order created successfully")

	return nil
}

// CreateOrderLines inserts multiple order lines within the provided transaction.
func (r *orderRepository) CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_lines (id, order_id, menu_item_id, quantity, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(query, l.ID, l.OrderID, l.MenuItemID, l.Quantity, l.UnitPrice, l.CreatedAt)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(lines); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", lines[i].OrderID.String()).
				Str("menu_item_id", lines[i].MenuItemID.String()).
				Msg("failed to create order line")
			return fmt.Errorf("failed to create order line: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(lines)).
		Msg("order lines created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its lines.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	orderQuery := `
		SELECT id, number, customer_id, restaurant_id, status, coupon_code, total_amount, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var order model.Order
	var status string
	err := r.pool.QueryRow(ctx, orderQuery, id).Scan(
		&order.ID,
		&order.Number,
		&order.CustomerID,
		&order.RestaurantID,
		&status,
		&order.CouponCode,
		&order.TotalAmount,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	order.Status = model.OrderStatus(status)

	linesQuery := `
		SELECT id, order_id, menu_item_id, quantity, unit_price, created_at
		FROM order_lines
		WHERE order_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, linesQuery, id)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Msg("failed to query order lines")
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l model.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.MenuItemID, &l.Quantity, &l.UnitPrice, &l.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order line row")
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		order.Lines = append(order.Lines, l)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order line rows")
		return nil, fmt.Errorf("error iterating order lines: %w", err)
	}

	return &order, nil
}

// UpdateStatus is a compare-and-set on the order status.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
		id, string(from), string(to), at)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

const orderColumns = `o.id, o.number, o.customer_id, o.restaurant_id, o.status, o.coupon_code, o.total_amount, o.created_at, o.updated_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListByCustomer returns one page of the customer's orders, newest first,
// and the number of orders matching filter.
func (r *orderRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, filter model.OrderFilter) ([]model.Order, int, error) {
	return r.list(ctx, `FROM orders o WHERE o.customer_id = $1`, customerID, filter)
}

// ListByOwner returns one page of the orders of every restaurant ownerID
// owns, newest first, and the number of orders matching filter.
func (r *orderRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, filter model.OrderFilter) ([]model.Order, int, error) {
	return r.list(ctx, `FROM orders o JOIN restaurants r ON r.id = o.restaurant_id WHERE r.owner_id = $1`, ownerID, filter)
}

// list runs a filtered page query over from, whose only parameter is $1.
// Status and search predicates are appended only when set.
func (r *orderRepository) list(ctx context.Context, from string, id uuid.UUID, filter model.OrderFilter) ([]model.Order, int, error) {
	log := r.logger.With().Str("user_id", id.String()).Str("status", string(filter.Status)).Int("page", filter.Page).Logger()

	where := from
	args := []any{id}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += fmt.Sprintf(` AND o.status = $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(filter.Search)+"%")
		where += fmt.Sprintf(` AND o.number ILIKE $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) `+where, args...).Scan(&total); err != nil {
		log.Error().Err(err).Msg("failed to count orders")
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}
	if total == 0 || filter.Offset() >= total {
		return []model.Order{}, total, nil
	}

	query := `SELECT ` + orderColumns + ` ` + where +
		fmt.Sprintf(` ORDER BY o.created_at DESC, o.id DESC LIMIT %d OFFSET %d`, model.OrderPageSize, filter.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		log.Error().Err(err).Msg("failed to list orders")
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0, model.OrderPageSize)
	index := make(map[uuid.UUID]int, model.OrderPageSize)
	for rows.Next() {
		var o model.Order
		var status string
		if err := rows.Scan(&o.ID, &o.Number, &o.CustomerID, &o.RestaurantID, &status,
			&o.CouponCode, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt); err != nil {
			log.Error().Err(err).Msg("failed to scan order row")
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		o.Status = model.OrderStatus(status)
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("error iterating order rows")
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	if err := r.attachLines(ctx, orders, index); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// attachLines loads the lines of all orders in one query.
func (r *orderRepository) attachLines(ctx context.Context, orders []model.Order, index map[uuid.UUID]int) error {
	ids := make([]uuid.UUID, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, menu_item_id, quantity, unit_price, created_at
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY created_at, id
	`, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("orders", len(ids)).Msg("failed to query order lines")
		return fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l model.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.MenuItemID, &l.Quantity, &l.UnitPrice, &l.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order line row")
			return fmt.Errorf("failed to scan order line: %w", err)
		}
		i := index[l.OrderID]
		orders[i].Lines = append(orders[i].Lines, l)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order line rows")
		return fmt.Errorf("error iterating order lines: %w", err)
	}
	return nil
}
