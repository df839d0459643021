package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"foodhub/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and
// the migrated schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromURL(ctx, connStr, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Fixture holds the ids of the seeded marketplace.
type Fixture struct {
	Customer uuid.UUID
	Other    uuid.UUID // second customer
	Owner1   uuid.UUID
	Owner2   uuid.UUID

	Restaurant1 uuid.UUID // Italian, owned by Owner1
	Restaurant2 uuid.UUID // Indian, owned by Owner2

	Pizza   uuid.UUID // R1, 8.00
	Pasta   uuid.UUID // R1, 12.00
	Biryani uuid.UUID // R2, 5.00
	Lassi   uuid.UUID // R2, 3.00, unavailable
}

// SeedMarketplace inserts two customers and two restaurants with menus.
func SeedMarketplace(t *testing.T, pool *pgxpool.Pool) Fixture {
	t.Helper()

	f := Fixture{
		Customer: SeedUser(t, pool, "customer"),
		Other:    SeedUser(t, pool, "customer"),
		Owner1:   SeedUser(t, pool, "restaurant_owner"),
		Owner2:   SeedUser(t, pool, "restaurant_owner"),
	}
	f.Restaurant1 = SeedRestaurant(t, pool, f.Owner1, "Luigi's", "Italian")
	f.Restaurant2 = SeedRestaurant(t, pool, f.Owner2, "Spice Route", "Indian")

	f.Pizza = SeedMenuItem(t, pool, f.Restaurant1, "Margherita Pizza", "Pizza", "Italian", "8.00", true)
	f.Pasta = SeedMenuItem(t, pool, f.Restaurant1, "Penne Arrabbiata", "Pasta", "Italian", "12.00", true)
	f.Biryani = SeedMenuItem(t, pool, f.Restaurant2, "Chicken Biryani", "Biryani", "Indian", "5.00", true)
	f.Lassi = SeedMenuItem(t, pool, f.Restaurant2, "Mango Lassi", "Drinks", "Indian", "3.00", false)
	return f
}

// SeedUser inserts a user with the given role.
func SeedUser(t *testing.T, pool *pgxpool.Pool, role string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		"INSERT INTO users (id, email, role) VALUES ($1, $2, $3)",
		id, fmt.Sprintf("%s@example.com", id), role,
	)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return id
}

// SeedRestaurant inserts an active restaurant.
func SeedRestaurant(t *testing.T, pool *pgxpool.Pool, ownerID uuid.UUID, name, cuisine string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		"INSERT INTO restaurants (id, owner_id, name, cuisine_type) VALUES ($1, $2, $3, $4)",
		id, ownerID, name, cuisine,
	)
	if err != nil {
		t.Fatalf("failed to seed restaurant %s: %v", name, err)
	}
	return id
}

// SeedMenuItem inserts a menu item.
func SeedMenuItem(t *testing.T, pool *pgxpool.Pool, restaurantID uuid.UUID, name, category, cuisine, price string, available bool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO menu_items (id, restaurant_id, name, category, cuisine_type, price, is_available)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, restaurantID, name, category, cuisine, decimal.RequireFromString(price), available,
	)
	if err != nil {
		t.Fatalf("failed to seed menu item %s: %v", name, err)
	}
	return id
}

// CountRows returns the number of rows in table matching the optional where clause.
func CountRows(t *testing.T, pool *pgxpool.Pool, table, where string, args ...any) int {
	t.Helper()

	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	var n int
	if err := pool.QueryRow(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

// OrderCount returns the popularity counter of a menu item.
func OrderCount(t *testing.T, pool *pgxpool.Pool, menuItemID uuid.UUID) int {
	t.Helper()

	var n int
	err := pool.QueryRow(context.Background(),
		"SELECT order_count FROM menu_items WHERE id = $1", menuItemID,
	).Scan(&n)
	if err != nil {
		t.Fatalf("failed to read order count: %v", err)
	}
	return n
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		"TRUNCATE reviews, order_lines, orders, cart_lines, menu_items, restaurants, users",
	)
	if err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}
}
