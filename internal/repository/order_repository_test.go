package repository

import (
	"context"
	"strings"
	"time"

	"foodhub/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (s *RepositorySuite) TestOrder_CreateAndGetByID() {
	ctx := context.Background()
	customer := s.createUser("customer")
	rest := s.createRestaurant(s.createUser("restaurant_owner"), "R1")
	a := s.createMenuItem(rest, "A", "10.00")
	b := s.createMenuItem(rest, "B", "3.00")

	created := s.createOrder(customer, rest, model.OrderStatusPending, time.Now().UTC(),
		model.OrderLine{MenuItemID: a, Quantity: 2, UnitPrice: decimal.RequireFromString("5.00")},
		model.OrderLine{MenuItemID: b, Quantity: 1, UnitPrice: decimal.RequireFromString("3.00")},
	)

	got, err := s.orders.GetByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(created.Number, got.Number)
	s.Equal(model.OrderStatusPending, got.Status)
	s.Nil(got.CouponCode)
	s.True(got.TotalAmount.Equal(decimal.RequireFromString("13.00")))
	s.Len(got.Lines, 2)

	sum := decimal.Zero
	for _, l := range got.Lines {
		sum = sum.Add(l.Subtotal())
	}
	s.True(sum.Equal(got.TotalAmount))
}

func (s *RepositorySuite) TestOrder_GetByIDMissing() {
	got, err := s.orders.GetByID(context.Background(), uuid.New())
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *RepositorySuite) TestOrder_NumberIsUnique() {
	ctx := context.Background()
	customer := s.createUser("customer")
	rest := s.createRestaurant(s.createUser("restaurant_owner"), "R1")
	first := s.createOrder(customer, rest, model.OrderStatusPending, time.Now())

	dup := &model.Order{
		ID:           uuid.New(),
		Number:       first.Number,
		CustomerID:   customer,
		RestaurantID: rest,
		Status:       model.OrderStatusPending,
		TotalAmount:  decimal.Zero,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	tx, err := s.orders.BeginTx(ctx)
	s.Require().NoError(err)
	defer tx.Rollback(ctx)
	s.Error(s.orders.CreateOrder(ctx, tx, dup))
}

func (s *RepositorySuite) TestOrder_UpdateStatusGuarded() {
	ctx := context.Background()
	customer := s.createUser("customer")
	rest := s.createRestaurant(s.createUser("restaurant_owner"), "R1")
	order := s.createOrder(customer, rest, model.OrderStatusPending, time.Now())

	ok, err := s.orders.UpdateStatus(ctx, order.ID, model.OrderStatusPending, model.OrderStatusConfirmed, time.Now())
	s.Require().NoError(err)
	s.True(ok)

	// A second writer that still believes the order is pending loses.
	ok, err = s.orders.UpdateStatus(ctx, order.ID, model.OrderStatusPending, model.OrderStatusCancelled, time.Now())
	s.Require().NoError(err)
	s.False(ok)

	got, err := s.orders.GetByID(ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(model.OrderStatusConfirmed, got.Status)
}

func (s *RepositorySuite) TestOrder_ListByCustomerPagesNewestFirst() {
	ctx := context.Background()
	customer := s.createUser("customer")
	other := s.createUser("customer")
	rest := s.createRestaurant(s.createUser("restaurant_owner"), "R1")
	item := s.createMenuItem(rest, "A", "2.00")

	base := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	var newest *model.Order
	for i := 0; i < 12; i++ {
		newest = s.createOrder(customer, rest, model.OrderStatusPending, base.Add(time.Duration(i)*time.Minute),
			model.OrderLine{MenuItemID: item, Quantity: 1, UnitPrice: decimal.RequireFromString("2.00")})
	}
	s.createOrder(other, rest, model.OrderStatusPending, base.Add(time.Hour))

	first, total, err := s.orders.ListByCustomer(ctx, customer, model.OrderFilter{Page: 1})
	s.Require().NoError(err)
	s.Equal(12, total)
	s.Require().Len(first, model.OrderPageSize)
	s.Equal(newest.ID, first[0].ID)
	s.Len(first[0].Lines, 1)
	for i := 1; i < len(first); i++ {
		s.True(first[i-1].CreatedAt.After(first[i].CreatedAt))
	}

	second, total, err := s.orders.ListByCustomer(ctx, customer, model.OrderFilter{Page: 2})
	s.Require().NoError(err)
	s.Equal(12, total)
	s.Len(second, 2)

	beyond, total, err := s.orders.ListByCustomer(ctx, customer, model.OrderFilter{Page: 3})
	s.Require().NoError(err)
	s.Equal(12, total)
	s.Empty(beyond)
}

func (s *RepositorySuite) TestOrder_ListByCustomerFilters() {
	ctx := context.Background()
	customer := s.createUser("customer")
	rest := s.createRestaurant(s.createUser("restaurant_owner"), "R1")

	delivered := s.createOrder(customer, rest, model.OrderStatusDelivered, time.Now().Add(-time.Hour))
	pending := s.createOrder(customer, rest, model.OrderStatusPending, time.Now())

	got, total, err := s.orders.ListByCustomer(ctx, customer, model.OrderFilter{Status: model.OrderStatusDelivered, Page: 1})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Require().Len(got, 1)
	s.Equal(delivered.ID, got[0].ID)

	fragment := strings.ToLower(pending.Number[4:10])
	got, total, err = s.orders.ListByCustomer(ctx, customer, model.OrderFilter{Search: fragment, Page: 1})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Require().Len(got, 1)
	s.Equal(pending.ID, got[0].ID)

	got, total, err = s.orders.ListByCustomer(ctx, customer, model.OrderFilter{Search: "%", Page: 1})
	s.Require().NoError(err)
	s.Zero(total, "wildcards in the search are literal")
	s.Empty(got)
}

func (s *RepositorySuite) TestOrder_ListByOwnerAcrossRestaurants() {
	ctx := context.Background()
	customer := s.createUser("customer")
	owner := s.createUser("restaurant_owner")
	first := s.createRestaurant(owner, "First")
	second := s.createRestaurant(owner, "Second")
	foreign := s.createRestaurant(s.createUser("restaurant_owner"), "Foreign")

	s.createOrder(customer, first, model.OrderStatusPending, time.Now().Add(-2*time.Minute))
	s.createOrder(customer, second, model.OrderStatusReady, time.Now().Add(-time.Minute))
	s.createOrder(customer, foreign, model.OrderStatusPending, time.Now())

	got, total, err := s.orders.ListByOwner(ctx, owner, model.OrderFilter{Page: 1})
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Require().Len(got, 2)
	s.Equal(second, got[0].RestaurantID)
	s.Equal(first, got[1].RestaurantID)

	got, total, err = s.orders.ListByOwner(ctx, owner, model.OrderFilter{Status: model.OrderStatusPending, Page: 1})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Require().Len(got, 1)
	s.Equal(first, got[0].RestaurantID)

	got, total, err = s.orders.ListByOwner(ctx, s.createUser("restaurant_owner"), model.OrderFilter{Page: 1})
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(got)
}
