package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodhub/internal/coupon"
	"foodhub/internal/events"
	"foodhub/internal/model"
	"foodhub/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	catalogRepo repository.CatalogRepository
	evaluator   coupon.Evaluator
	publisher   events.Publisher
	logger      zerolog.Logger

	now       func() time.Time
	newNumber func(time.Time) string
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	catalogRepo repository.CatalogRepository,
	evaluator coupon.Evaluator,
	publisher events.Publisher,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		catalogRepo: catalogRepo,
		evaluator:   evaluator,
		publisher:   publisher,
		logger:      logger.With().Str("service", "order").Logger(),
		now:         time.Now,
		newNumber:   NewOrderNumber,
	}
}

// NewOrderNumber returns ORD<yyyyMMddHHmmss>-<8 upper-case hex> for the UTC time at.
func NewOrderNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "ORD" + at.UTC().Format("20060102150405") + "-" + suffix
}

// PlaceOrder settles the customer's cart. Everything happens in one
// transaction: either every order is created, order counts are bumped and
// the cart is emptied, or nothing changes.
func (s *orderService) PlaceOrder(ctx context.Context, sess model.Session) (orders []model.Order, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err, s.logger)

	if err = s.cartRepo.LockCustomer(ctx, tx, sess.CustomerID); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	// Restaurants before cart rows before menu items, the order owner edits
	// and restaurant deletion follow too.
	if err = s.catalogRepo.ShareCartRestaurants(ctx, tx, sess.CustomerID); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	lines, err := s.cartRepo.LockLines(ctx, tx, sess.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	items, err := s.catalogRepo.LockMenuItems(ctx, tx, menuItemIDs(lines))
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	current := make(map[uuid.UUID]model.MenuItem, len(items))
	for _, it := range items {
		current[it.ID] = it
	}

	var stale []string
	for i := range lines {
		it, ok := current[lines[i].MenuItemID]
		if !ok || !it.Available {
			stale = append(stale, lines[i].Item.Name)
			continue
		}
		lines[i].Item = it
	}
	if len(stale) > 0 {
		s.logger.Info().
			Str("customer_id", sess.CustomerID.String()).
			Strs("items", stale).
			Msg("cart references unavailable items")
		return nil, model.Detail(model.ErrStaleCart,
			"Some items in your cart are no longer available: %s", strings.Join(stale, ", "))
	}

	code := coupon.NormalizeCode(sess.CouponCode)
	if code != "" {
		if _, err = s.evaluator.Lookup(code); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	quantities := make(map[uuid.UUID]int)

	for _, part := range PartitionByRestaurant(lines) {
		var order model.Order
		order, err = s.buildOrder(sess.CustomerID, code, part, now)
		if err != nil {
			return nil, err
		}

		if err = s.orderRepo.CreateOrder(ctx, tx, &order); err != nil {
			return nil, fmt.Errorf("failed to place order: %w", err)
		}
		if err = s.orderRepo.CreateOrderLines(ctx, tx, order.Lines); err != nil {
			return nil, fmt.Errorf("failed to place order: %w", err)
		}

		for _, l := range order.Lines {
			quantities[l.MenuItemID] += l.Quantity
		}
		orders = append(orders, order)
	}

	if err = s.catalogRepo.IncrementOrderCounts(ctx, tx, quantities); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	if _, err = s.cartRepo.DeleteAll(ctx, tx, sess.CustomerID); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("customer_id", sess.CustomerID.String()).Msg("failed to commit settlement")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	numbers := make([]string, len(orders))
	placed := make([]events.Event, len(orders))
	for i := range orders {
		numbers[i] = orders[i].Number
		placed[i] = events.NewOrderEvent(events.OrderPlaced, &orders[i], now)
	}

	s.logger.Info().
		Str("customer_id", sess.CustomerID.String()).
		Strs("order_numbers", numbers).
		Str("coupon_code", code).
		Msg("cart settled")

	s.publish(ctx, placed...)

	return orders, nil
}

// buildOrder prices one partition into an order with frozen line prices.
func (s *orderService) buildOrder(customerID uuid.UUID, code string, part Partition, now time.Time) (model.Order, error) {
	order := model.Order{
		ID:           uuid.New(),
		Number:       s.newNumber(now),
		CustomerID:   customerID,
		RestaurantID: part.RestaurantID,
		Status:       model.OrderStatusPending,
		TotalAmount:  decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
		Lines:        make([]model.OrderLine, 0, len(part.Lines)),
	}

	discounted := false
	for _, l := range part.Lines {
		p, err := s.evaluator.Evaluate(code, couponLine(l.Item, l.Quantity))
		if err != nil {
			return model.Order{}, err
		}

		order.Lines = append(order.Lines, model.OrderLine{
			ID:         uuid.New(),
			OrderID:    order.ID,
			MenuItemID: l.MenuItemID,
			Quantity:   l.Quantity,
			UnitPrice:  p.DiscountedUnitPrice,
			CreatedAt:  now,
		})
		order.TotalAmount = order.TotalAmount.Add(p.Total)
		discounted = discounted || p.Applied
	}

	if discounted {
		c := code
		order.CouponCode = &c
	}

	return order, nil
}

// UpdateOrderStatus changes an order's status. Delivered and cancelled
// orders are final.
func (s *orderService) UpdateOrderStatus(ctx context.Context, ownerID uuid.UUID, req *model.UpdateOrderStatusRequest) (*model.Order, error) {
	status, ok := model.ParseOrderStatus(req.Status)
	if !ok {
		return nil, model.Detail(model.ErrInvalidTransition, "Invalid order status %q", req.Status)
	}

	order, err := s.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if order == nil {
		return nil, model.Detail(model.ErrNotFound, "Order not found")
	}

	restaurant, err := s.catalogRepo.GetRestaurant(ctx, order.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if restaurant == nil || restaurant.OwnerID != ownerID {
		s.logger.Warn().
			Str("order_id", order.ID.String()).
			Str("user_id", ownerID.String()).
			Msg("status update by non-owner")
		return nil, model.ErrForbidden
	}

	if status == order.Status {
		return order, nil
	}
	if order.Status.Terminal() {
		return nil, model.Detail(model.ErrInvalidTransition, "Order is already %s", order.Status)
	}

	now := s.now().UTC()
	updated, err := s.orderRepo.UpdateStatus(ctx, order.ID, order.Status, status, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !updated {
		return nil, model.Detail(model.ErrInvalidTransition, "Order status changed concurrently, reload and retry")
	}

	s.logger.Info().
		Str("order_number", order.Number).
		Str("from", string(order.Status)).
		Str("to", string(status)).
		Msg("order status updated")

	order.Status = status
	order.UpdatedAt = now

	s.publish(ctx, events.NewOrderEvent(events.OrderStatusChanged, order, now))

	return order, nil
}

// GetOrder returns an order to its customer or its restaurant's owner.
func (s *orderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.Detail(model.ErrNotFound, "Order not found")
	}
	if order.CustomerID == userID {
		return order, nil
	}

	restaurant, err := s.catalogRepo.GetRestaurant(ctx, order.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if restaurant != nil && restaurant.OwnerID == userID {
		return order, nil
	}
	return nil, model.ErrForbidden
}

// ListCustomerOrders returns one page of the customer's orders.
func (s *orderService) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, req *model.ListOrdersRequest) (*model.OrderPage, error) {
	filter, err := orderFilter(req)
	if err != nil {
		return nil, err
	}

	orders, total, err := s.orderRepo.ListByCustomer(ctx, customerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer orders: %w", err)
	}
	return newOrderPage(orders, total, filter), nil
}

// ListRestaurantOrders returns one page of the orders placed with any of the
// owner's restaurants.
func (s *orderService) ListRestaurantOrders(ctx context.Context, ownerID uuid.UUID, req *model.ListOrdersRequest) (*model.OrderPage, error) {
	filter, err := orderFilter(req)
	if err != nil {
		return nil, err
	}

	orders, total, err := s.orderRepo.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurant orders: %w", err)
	}
	return newOrderPage(orders, total, filter), nil
}

func orderFilter(req *model.ListOrdersRequest) (model.OrderFilter, error) {
	filter := model.OrderFilter{Page: 1}
	if req == nil {
		return filter, nil
	}

	if req.Page > 1 {
		filter.Page = req.Page
	}
	filter.Search = strings.TrimSpace(req.Search)

	if status := strings.TrimSpace(req.Status); status != "" {
		st, ok := model.ParseOrderStatus(status)
		if !ok {
			return model.OrderFilter{}, model.Detail(model.ErrValidation, "Unknown order status %q", status)
		}
		filter.Status = st
	}
	return filter, nil
}

func newOrderPage(orders []model.Order, total int, filter model.OrderFilter) *model.OrderPage {
	if orders == nil {
		orders = []model.Order{}
	}
	return &model.OrderPage{
		Orders:   orders,
		Page:     filter.Page,
		PageSize: model.OrderPageSize,
		Total:    total,
		Pages:    (total + model.OrderPageSize - 1) / model.OrderPageSize,
	}
}

func (s *orderService) publish(ctx context.Context, evts ...events.Event) {
	if s.publisher == nil || len(evts) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, evts...); err != nil {
		s.logger.Warn().Err(err).Int("count", len(evts)).Msg("failed to publish order events")
	}
}

func menuItemIDs(lines []model.CartLine) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if !seen[l.MenuItemID] {
			seen[l.MenuItemID] = true
			ids = append(ids, l.MenuItemID)
		}
	}
	return ids
}
