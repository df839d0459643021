package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"foodhub/internal/middleware"
	"foodhub/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) AddItem(ctx context.Context, sess model.Session, req *model.AddToCartRequest) (*model.CartCounts, error) {
	args := m.Called(ctx, sess, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartCounts), args.Error(1)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, sess model.Session, req *model.UpdateQuantityRequest) (*model.QuantityUpdate, error) {
	args := m.Called(ctx, sess, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuantityUpdate), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, sess model.Session, req *model.RemoveFromCartRequest) (*model.CartSummary, error) {
	args := m.Called(ctx, sess, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartSummary), args.Error(1)
}

func (m *MockCartService) GetSummary(ctx context.Context, sess model.Session) (*model.CartSummary, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartSummary), args.Error(1)
}

func (m *MockCartService) ApplyCoupon(ctx context.Context, sess model.Session, code string) (*model.CartSummary, error) {
	args := m.Called(ctx, sess, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartSummary), args.Error(1)
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, sess model.Session) ([]model.Order, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, ownerID uuid.UUID, req *model.UpdateOrderStatusRequest) (*model.Order, error) {
	args := m.Called(ctx, ownerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, req *model.ListOrdersRequest) (*model.OrderPage, error) {
	args := m.Called(ctx, customerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderPage), args.Error(1)
}

func (m *MockOrderService) ListRestaurantOrders(ctx context.Context, ownerID uuid.UUID, req *model.ListOrdersRequest) (*model.OrderPage, error) {
	args := m.Called(ctx, ownerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderPage), args.Error(1)
}

// MockReviewService is a mock implementation of ReviewService.
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) SubmitReview(ctx context.Context, customerID uuid.UUID, req *model.ReviewRequest) (*model.RatingSummary, error) {
	args := m.Called(ctx, customerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RatingSummary), args.Error(1)
}

// MockCatalogService is a mock implementation of CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) GetMenuItem(ctx context.Context, id uuid.UUID) (*model.MenuItemView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuItemView), args.Error(1)
}

func (m *MockCatalogService) IsMostlyOrdered(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCatalogService) UpdateMenuItem(ctx context.Context, ownerID, id uuid.UUID, update *model.MenuItemUpdate) (*model.MenuItem, error) {
	args := m.Called(ctx, ownerID, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuItem), args.Error(1)
}

func (m *MockCatalogService) DeleteRestaurant(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

// testRequest builds a request as it would arrive after the auth and
// session middleware, with an optional {id} route parameter.
type testRequest struct {
	method string
	path   string
	body   any
	raw    string
	user   *middleware.Principal
	coupon string
	id     string
}

func (tr testRequest) build(t *testing.T) *http.Request {
	t.Helper()

	var body io.Reader = http.NoBody
	switch {
	case tr.raw != "":
		body = bytes.NewBufferString(tr.raw)
	case tr.body != nil:
		b, err := json.Marshal(tr.body)
		require.NoError(t, err)
		body = bytes.NewBuffer(b)
	}

	req := httptest.NewRequest(tr.method, tr.path, body)
	ctx := req.Context()
	if tr.user != nil {
		ctx = middleware.WithPrincipal(ctx, *tr.user)
		ctx = middleware.WithSession(ctx, model.Session{CustomerID: tr.user.UserID, CouponCode: tr.coupon})
	}
	if tr.id != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", tr.id)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func customer() *middleware.Principal {
	return &middleware.Principal{UserID: uuid.New(), Role: middleware.RoleCustomer}
}

func owner() *middleware.Principal {
	return &middleware.Principal{UserID: uuid.New(), Role: middleware.RoleRestaurantOwner}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
