package repository

import (
	"context"
	"time"

	"foodhub/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

func (s *RepositorySuite) TestCatalog_GetMenuItemMissing() {
	item, err := s.catalog.GetMenuItem(context.Background(), uuid.New())
	s.Require().NoError(err)
	s.Nil(item)

	rest, err := s.catalog.GetRestaurant(context.Background(), uuid.New())
	s.Require().NoError(err)
	s.Nil(rest)
}

func (s *RepositorySuite) TestCatalog_LockMenuItemsSkipsMissing() {
	ctx := context.Background()
	rest := s.createRestaurant(s.createUser("restaurant_owner"), "R1")
	a := s.createMenuItem(rest, "A", "1.00")
	b := s.createMenuItem(rest, "B", "2.50")

	tx, err := s.catalog.BeginTx(ctx)
	s.Require().NoError(err)
	defer tx.Rollback(ctx)

	items, err := s.catalog.LockMenuItems(ctx, tx, []uuid.UUID{a, uuid.New(), b})
	s.Require().NoError(err)
	s.Len(items, 2)

	byID := map[uuid.UUID]model.MenuItem{}
	for _, it := range items {
		byID[it.ID] = it
	}
	s.True(byID[b].Price.Equal(decimal.RequireFromString("2.50")))
	s.True(byID[a].Available)
}

func (s *RepositorySuite) TestCatalog_IncrementOrderCounts() {
	ctx := context.Background()
	rest := s.createRestaurant(s.createUser("restaurant_owner"), "R1")
	a := s.createMenuItem(rest, "A", "1.00")
	b := s.createMenuItem(rest, "B", "2.00")

	for i := 0; i < 2; i++ {
		tx, err := s.catalog.BeginTx(ctx)
		s.Require().NoError(err)
		s.Require().NoError(s.catalog.IncrementOrderCounts(ctx, tx, map[uuid.UUID]int{a: 2, b: 1}))
		s.Require().NoError(tx.Commit(ctx))
	}

	itemA, err := s.catalog.GetMenuItem(ctx, a)
	s.Require().NoError(err)
	itemB, err := s.catalog.GetMenuItem(ctx, b)
	s.Require().NoError(err)
	s.Equal(4, itemA.OrderCount)
	s.Equal(2, itemB.OrderCount)
}

func (s *RepositorySuite) TestCatalog_CountOrderLinesBetween() {
	ctx := context.Background()
	customer := s.createUser("customer")
	rest := s.createRestaurant(s.createUser("restaurant_owner"), "R1")
	item := s.createMenuItem(rest, "A", "1.00")

	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	line := func() model.OrderLine {
		return model.OrderLine{MenuItemID: item, Quantity: 1, UnitPrice: decimal.RequireFromString("1.00")}
	}

	s.createOrder(customer, rest, model.OrderStatusPending, day.Add(-time.Second), line())
	s.createOrder(customer, rest, model.OrderStatusPending, day, line(), line())
	s.createOrder(customer, rest, model.OrderStatusPending, day.Add(23*time.Hour), line())
	s.createOrder(customer, rest, model.OrderStatusPending, day.Add(24*time.Hour), line())

	n, err := s.catalog.CountOrderLinesBetween(ctx, item, day, day.Add(24*time.Hour))
	s.Require().NoError(err)
	s.Equal(3, n)
}

func (s *RepositorySuite) TestCatalog_UpdateMenuItem() {
	ctx := context.Background()
	rest := s.createRestaurant(s.createUser("restaurant_owner"), "R1")
	id := s.createMenuItem(rest, "A", "1.00")

	item, err := s.catalog.GetMenuItem(ctx, id)
	s.Require().NoError(err)
	item.Price = decimal.RequireFromString("3.75")
	item.Available = false
	item.Name = "A2"

	tx, err := s.catalog.BeginTx(ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.catalog.UpdateMenuItem(ctx, tx, item))
	s.Require().NoError(tx.Commit(ctx))

	got, err := s.catalog.GetMenuItem(ctx, id)
	s.Require().NoError(err)
	s.Equal("A2", got.Name)
	s.False(got.Available)
	s.True(got.Price.Equal(decimal.RequireFromString("3.75")))
}

func (s *RepositorySuite) TestCatalog_DeleteRestaurantCascades() {
	ctx := context.Background()
	owner := s.createUser("restaurant_owner")
	customer := s.createUser("customer")
	doomed := s.createRestaurant(owner, "Doomed")
	kept := s.createRestaurant(owner, "Kept")
	doomedItem := s.createMenuItem(doomed, "A", "1.00")
	keptItem := s.createMenuItem(kept, "B", "2.00")

	s.addToCart(customer, doomedItem, 1)
	s.addToCart(customer, keptItem, 1)
	s.createOrder(customer, doomed, model.OrderStatusDelivered, time.Now(),
		model.OrderLine{MenuItemID: doomedItem, Quantity: 1, UnitPrice: decimal.RequireFromString("1.00")})
	s.createOrder(customer, kept, model.OrderStatusPending, time.Now(),
		model.OrderLine{MenuItemID: keptItem, Quantity: 1, UnitPrice: decimal.RequireFromString("2.00")})
	_, err := s.pool.Exec(ctx,
		`INSERT INTO reviews (id, customer_id, restaurant_id, rating, comment) VALUES ($1, $2, $3, 5, 'great')`,
		uuid.New(), customer, doomed)
	s.Require().NoError(err)

	tx, err := s.catalog.BeginTx(ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.catalog.DeleteRestaurant(ctx, tx, doomed))
	s.Require().NoError(tx.Commit(ctx))

	gone, err := s.catalog.GetRestaurant(ctx, doomed)
	s.Require().NoError(err)
	s.Nil(gone)

	s.Equal(1, s.count("restaurants"))
	s.Equal(1, s.count("menu_items"))
	s.Equal(1, s.count("cart_lines"))
	s.Equal(1, s.count("orders"))
	s.Equal(1, s.count("order_lines"))
	s.Equal(0, s.count("reviews"))
}

// insertOrderWithin tries to insert an order for restaurantID in its own
// transaction, giving up after d.
func (s *RepositorySuite) insertOrderWithin(d time.Duration, customerID, restaurantID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	tx, err := s.orders.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(context.Background())

	now := time.Now()
	return s.orders.CreateOrder(ctx, tx, &model.Order{
		ID:           uuid.New(),
		Number:       "ORD-" + uuid.NewString()[:8],
		CustomerID:   customerID,
		RestaurantID: restaurantID,
		Status:       model.OrderStatusPending,
		TotalAmount:  decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *RepositorySuite) TestCatalog_LockRestaurantDoesNotBlockOrderInserts() {
	ctx := context.Background()
	customer := s.createUser("customer")
	rest := s.createRestaurant(s.createUser("restaurant_owner"), "R1")

	tx, err := s.catalog.BeginTx(ctx)
	s.Require().NoError(err)
	defer tx.Rollback(ctx)

	locked, err := s.catalog.LockRestaurant(ctx, tx, rest)
	s.Require().NoError(err)
	s.Require().NotNil(locked)

	s.NoError(s.insertOrderWithin(2*time.Second, customer, rest))
}

func (s *RepositorySuite) TestCatalog_LockRestaurantForDeleteBlocksOrderInserts() {
	ctx := context.Background()
	customer := s.createUser("customer")
	rest := s.createRestaurant(s.createUser("restaurant_owner"), "R1")

	tx, err := s.catalog.BeginTx(ctx)
	s.Require().NoError(err)
	defer tx.Rollback(ctx)

	locked, err := s.catalog.LockRestaurantForDelete(ctx, tx, rest)
	s.Require().NoError(err)
	s.Require().NotNil(locked)

	s.Error(s.insertOrderWithin(300*time.Millisecond, customer, rest))
}

func (s *RepositorySuite) TestCatalog_ShareCartRestaurants() {
	ctx := context.Background()
	customer := s.createUser("customer")
	owner := s.createUser("restaurant_owner")
	inCart := s.createRestaurant(owner, "In cart")
	other := s.createRestaurant(owner, "Other")
	s.addToCart(customer, s.createMenuItem(inCart, "A", "1.00"), 1)

	tx, err := s.catalog.BeginTx(ctx)
	s.Require().NoError(err)
	defer tx.Rollback(ctx)
	s.Require().NoError(s.catalog.ShareCartRestaurants(ctx, tx, customer))

	tryLock := func(lock func(context.Context, pgx.Tx, uuid.UUID) (*model.Restaurant, error), id uuid.UUID) error {
		lockCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		competing, err := s.catalog.BeginTx(lockCtx)
		if err != nil {
			return err
		}
		defer competing.Rollback(ctx)
		_, err = lock(lockCtx, competing, id)
		return err
	}

	s.NoError(tryLock(s.catalog.LockRestaurant, inCart), "owner edits proceed alongside a settlement")
	s.Error(tryLock(s.catalog.LockRestaurantForDelete, inCart), "deletion waits for the settlement")
	s.NoError(tryLock(s.catalog.LockRestaurantForDelete, other))
}
