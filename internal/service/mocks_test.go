package service

import (
	"context"
	"time"

	"foodhub/internal/events"
	"foodhub/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

func beginTx(m *mock.Mock, ctx context.Context) (pgx.Tx, error) {
	args := m.MethodCalled("BeginTx", ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockCartRepository is a mock implementation of CartRepository.
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return beginTx(&m.Mock, ctx)
}

func (m *MockCartRepository) LockCustomer(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) error {
	args := m.Called(ctx, tx, customerID)
	return args.Error(0)
}

func (m *MockCartRepository) LockLines(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) ([]model.CartLine, error) {
	args := m.Called(ctx, tx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartLine), args.Error(1)
}

func (m *MockCartRepository) ListLines(ctx context.Context, customerID uuid.UUID) ([]model.CartLine, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartLine), args.Error(1)
}

func (m *MockCartRepository) Upsert(ctx context.Context, tx pgx.Tx, line *model.CartLine) error {
	args := m.Called(ctx, tx, line)
	return args.Error(0)
}

func (m *MockCartRepository) UpdateQuantity(ctx context.Context, tx pgx.Tx, customerID, lineID uuid.UUID, quantity int) (bool, error) {
	args := m.Called(ctx, tx, customerID, lineID, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) Delete(ctx context.Context, tx pgx.Tx, customerID, lineID uuid.UUID) error {
	args := m.Called(ctx, tx, customerID, lineID)
	return args.Error(0)
}

func (m *MockCartRepository) DeleteAll(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCartRepository) Counts(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) (model.CartCounts, error) {
	args := m.Called(ctx, tx, customerID)
	return args.Get(0).(model.CartCounts), args.Error(1)
}

// MockCatalogRepository is a mock implementation of CatalogRepository.
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return beginTx(&m.Mock, ctx)
}

func (m *MockCatalogRepository) GetMenuItem(ctx context.Context, id uuid.UUID) (*model.MenuItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuItem), args.Error(1)
}

func (m *MockCatalogRepository) GetRestaurant(ctx context.Context, id uuid.UUID) (*model.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Restaurant), args.Error(1)
}

func (m *MockCatalogRepository) LockRestaurant(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Restaurant, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Restaurant), args.Error(1)
}

func (m *MockCatalogRepository) LockRestaurantForDelete(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Restaurant, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Restaurant), args.Error(1)
}

func (m *MockCatalogRepository) ShareCartRestaurants(ctx context.Context, tx pgx.Tx, customerID uuid.UUID) error {
	args := m.Called(ctx, tx, customerID)
	return args.Error(0)
}

func (m *MockCatalogRepository) LockMenuItems(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.MenuItem, error) {
	args := m.Called(ctx, tx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuItem), args.Error(1)
}

func (m *MockCatalogRepository) IncrementOrderCounts(ctx context.Context, tx pgx.Tx, quantities map[uuid.UUID]int) error {
	args := m.Called(ctx, tx, quantities)
	return args.Error(0)
}

func (m *MockCatalogRepository) CountOrderLinesBetween(ctx context.Context, menuItemID uuid.UUID, from, to time.Time) (int, error) {
	args := m.Called(ctx, menuItemID, from, to)
	return args.Int(0), args.Error(1)
}

func (m *MockCatalogRepository) UpdateMenuItem(ctx context.Context, tx pgx.Tx, item *model.MenuItem) error {
	args := m.Called(ctx, tx, item)
	return args.Error(0)
}

func (m *MockCatalogRepository) DeleteRestaurant(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return beginTx(&m.Mock, ctx)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error {
	args := m.Called(ctx, tx, lines)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, filter model.OrderFilter) ([]model.Order, int, error) {
	args := m.Called(ctx, customerID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.Order), args.Int(1), args.Error(2)
}

func (m *MockOrderRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, filter model.OrderFilter) ([]model.Order, int, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.Order), args.Int(1), args.Error(2)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus, at time.Time) (bool, error) {
	args := m.Called(ctx, id, from, to, at)
	return args.Bool(0), args.Error(1)
}

// MockReviewRepository is a mock implementation of ReviewRepository.
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return beginTx(&m.Mock, ctx)
}

func (m *MockReviewRepository) HasDeliveredOrder(ctx context.Context, tx pgx.Tx, customerID, restaurantID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tx, customerID, restaurantID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) Create(ctx context.Context, tx pgx.Tx, review *model.Review) error {
	args := m.Called(ctx, tx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) RecomputeRating(ctx context.Context, tx pgx.Tx, restaurantID uuid.UUID) (model.RatingSummary, error) {
	args := m.Called(ctx, tx, restaurantID)
	return args.Get(0).(model.RatingSummary), args.Error(1)
}

// MockStore is a mock implementation of session.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Coupon(ctx context.Context, customerID uuid.UUID) (string, error) {
	args := m.Called(ctx, customerID)
	return args.String(0), args.Error(1)
}

func (m *MockStore) SetCoupon(ctx context.Context, customerID uuid.UUID, code string) error {
	args := m.Called(ctx, customerID, code)
	return args.Error(0)
}

func (m *MockStore) ClearCoupon(ctx context.Context, customerID uuid.UUID) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, evts ...events.Event) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
