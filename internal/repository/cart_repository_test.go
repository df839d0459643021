package repository

import (
	"context"
	"time"

	"foodhub/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (s *RepositorySuite) addToCart(customerID, menuItemID uuid.UUID, qty int) *model.CartLine {
	ctx := context.Background()
	line := &model.CartLine{
		ID:         uuid.New(),
		CustomerID: customerID,
		MenuItemID: menuItemID,
		Quantity:   qty,
		CreatedAt:  time.Now().UTC(),
	}

	tx, err := s.cart.BeginTx(ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.cart.LockCustomer(ctx, tx, customerID))
	s.Require().NoError(s.cart.Upsert(ctx, tx, line))
	s.Require().NoError(tx.Commit(ctx))
	return line
}

func (s *RepositorySuite) TestCart_UpsertIncrementsExistingLine() {
	ctx := context.Background()
	customer := s.createUser("customer")
	rest := s.createRestaurant(s.createUser("restaurant_owner"), "R1")
	item := s.createMenuItem(rest, "Margherita", "10.00")

	first := s.addToCart(customer, item, 2)
	second := s.addToCart(customer, item, 3)

	s.Equal(first.ID, second.ID, "repeat add keeps the original line")
	s.Equal(5, second.Quantity)

	lines, err := s.cart.ListLines(ctx, customer)
	s.Require().NoError(err)
	s.Require().Len(lines, 1)
	s.Equal(5, lines[0].Quantity)
	s.Equal("Margherita", lines[0].Item.Name)
	s.True(lines[0].Item.Price.Equal(decimal.RequireFromString("10.00")))
}

func (s *RepositorySuite) TestCart_LockLinesInInsertionOrder() {
	ctx := context.Background()
	customer := s.createUser("customer")
	rest := s.createRestaurant(s.createUser("restaurant_owner"), "R1")
	a := s.createMenuItem(rest, "A", "1.00")
	b := s.createMenuItem(rest, "B", "2.00")

	s.addToCart(customer, b, 1)
	time.Sleep(5 * time.Millisecond)
	s.addToCart(customer, a, 1)

	tx, err := s.cart.BeginTx(ctx)
	s.Require().NoError(err)
	defer tx.Rollback(ctx)

	lines, err := s.cart.LockLines(ctx, tx, customer)
	s.Require().NoError(err)
	s.Require().Len(lines, 2)
	s.Equal(b, lines[0].MenuItemID)
	s.Equal(a, lines[1].MenuItemID)
}

func (s *RepositorySuite) TestCart_UpdateQuantityScopedToCustomer() {
	ctx := context.Background()
	customer := s.createUser("customer")
	other := s.createUser("customer")
	rest := s.createRestaurant(s.createUser("restaurant_owner"), "R1")
	line := s.addToCart(customer, s.createMenuItem(rest, "A", "1.00"), 1)

	tx, err := s.cart.BeginTx(ctx)
	s.Require().NoError(err)

	found, err := s.cart.UpdateQuantity(ctx, tx, other, line.ID, 4)
	s.Require().NoError(err)
	s.False(found)

	found, err = s.cart.UpdateQuantity(ctx, tx, customer, line.ID, 4)
	s.Require().NoError(err)
	s.True(found)

	counts, err := s.cart.Counts(ctx, tx, customer)
	s.Require().NoError(err)
	s.Equal(model.CartCounts{LineCount: 1, CartCount: 4}, counts)
	s.Require().NoError(tx.Commit(ctx))
}

func (s *RepositorySuite) TestCart_DeleteIsIdempotent() {
	ctx := context.Background()
	customer := s.createUser("customer")
	rest := s.createRestaurant(s.createUser("restaurant_owner"), "R1")
	line := s.addToCart(customer, s.createMenuItem(rest, "A", "1.00"), 1)

	for i := 0; i < 2; i++ {
		tx, err := s.cart.BeginTx(ctx)
		s.Require().NoError(err)
		s.Require().NoError(s.cart.Delete(ctx, tx, customer, line.ID))
		s.Require().NoError(tx.Commit(ctx))
	}

	s.Equal(0, s.count("cart_lines"))
}

func (s *RepositorySuite) TestCart_DeleteAll() {
	ctx := context.Background()
	customer := s.createUser("customer")
	other := s.createUser("customer")
	rest := s.createRestaurant(s.createUser("restaurant_owner"), "R1")
	a := s.createMenuItem(rest, "A", "1.00")
	b := s.createMenuItem(rest, "B", "2.00")
	s.addToCart(customer, a, 1)
	s.addToCart(customer, b, 2)
	s.addToCart(other, a, 1)

	tx, err := s.cart.BeginTx(ctx)
	s.Require().NoError(err)
	n, err := s.cart.DeleteAll(ctx, tx, customer)
	s.Require().NoError(err)
	s.Require().NoError(tx.Commit(ctx))

	s.EqualValues(2, n)
	s.Equal(1, s.count("cart_lines"))
}

func (s *RepositorySuite) TestCart_LockCustomerSerialises() {
	ctx := context.Background()
	customer := s.createUser("customer")

	first, err := s.cart.BeginTx(ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.cart.LockCustomer(ctx, first, customer))

	acquired := make(chan struct{})
	go func() {
		second, err := s.cart.BeginTx(ctx)
		if err != nil {
			return
		}
		defer second.Rollback(ctx)
		if err := s.cart.LockCustomer(ctx, second, customer); err == nil {
			close(acquired)
		}
	}()

	select {
	case <-acquired:
		s.Fail("second transaction acquired the lock while the first held it")
	case <-time.After(200 * time.Millisecond):
	}

	s.Require().NoError(first.Commit(ctx))

	select {
	case <-acquired:
	case <-time.After(5 * time.Second):
		s.Fail("second transaction never acquired the lock")
	}
}
