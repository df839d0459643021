package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodhub/internal/coupon"
	"foodhub/internal/model"
	"foodhub/internal/repository"
	"foodhub/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	catalogRepo repository.CatalogRepository
	evaluator   coupon.Evaluator
	sessions    session.Store
	logger      zerolog.Logger
	now         func() time.Time
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	catalogRepo repository.CatalogRepository,
	evaluator coupon.Evaluator,
	sessions session.Store,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		catalogRepo: catalogRepo,
		evaluator:   evaluator,
		sessions:    sessions,
		logger:      logger.With().Str("service", "cart").Logger(),
		now:         time.Now,
	}
}

var errQuantityTooLow = model.Detail(model.ErrValidation, "Quantity must be at least 1")

// AddItem adds a menu item to the customer's cart.
func (s *cartService) AddItem(ctx context.Context, sess model.Session, req *model.AddToCartRequest) (counts *model.CartCounts, err error) {
	if req.Quantity < 1 {
		return nil, errQuantityTooLow
	}

	item, err := s.catalogRepo.GetMenuItem(ctx, req.MenuItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}
	if item == nil || !item.Available {
		s.logger.Debug().
			Str("menu_item_id", req.MenuItemID.String()).
			Msg("menu item missing or unavailable")
		return nil, model.Detail(model.ErrNotFound, "Menu item not found or unavailable")
	}

	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err, s.logger)

	if err = s.cartRepo.LockCustomer(ctx, tx, sess.CustomerID); err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	line := &model.CartLine{
		ID:         uuid.New(),
		CustomerID: sess.CustomerID,
		MenuItemID: req.MenuItemID,
		Quantity:   req.Quantity,
		CreatedAt:  s.now().UTC(),
	}
	if err = s.cartRepo.Upsert(ctx, tx, line); err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	c, err := s.cartRepo.Counts(ctx, tx, sess.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	s.logger.Info().
		Str("customer_id", sess.CustomerID.String()).
		Str("menu_item_id", req.MenuItemID.String()).
		Int("quantity", line.Quantity).
		Msg("item added to cart")

	return &c, nil
}

// UpdateQuantity changes the quantity of one of the customer's cart lines.
func (s *cartService) UpdateQuantity(ctx context.Context, sess model.Session, req *model.UpdateQuantityRequest) (update *model.QuantityUpdate, err error) {
	if req.Quantity < 1 {
		return nil, errQuantityTooLow
	}

	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err, s.logger)

	if err = s.cartRepo.LockCustomer(ctx, tx, sess.CustomerID); err != nil {
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}

	found, err := s.cartRepo.UpdateQuantity(ctx, tx, sess.CustomerID, req.CartLineID, req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}
	if !found {
		return nil, model.Detail(model.ErrNotFound, "Cart item not found")
	}

	lines, err := s.cartRepo.LockLines(ctx, tx, sess.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}

	summary, err := s.summarize(sess, lines)
	if err != nil {
		return nil, err
	}

	update = &model.QuantityUpdate{Summary: summary}
	if line, ok := summary.Line(req.CartLineID); ok {
		update.LineUnitPrice = line.DiscountedUnitPrice
		update.LineTotal = line.LineTotal
	}
	return update, nil
}

// RemoveItem deletes one of the customer's cart lines.
func (s *cartService) RemoveItem(ctx context.Context, sess model.Session, req *model.RemoveFromCartRequest) (summary *model.CartSummary, err error) {
	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to remove from cart: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err, s.logger)

	if err = s.cartRepo.LockCustomer(ctx, tx, sess.CustomerID); err != nil {
		return nil, fmt.Errorf("failed to remove from cart: %w", err)
	}
	if err = s.cartRepo.Delete(ctx, tx, sess.CustomerID, req.CartLineID); err != nil {
		return nil, fmt.Errorf("failed to remove from cart: %w", err)
	}

	lines, err := s.cartRepo.LockLines(ctx, tx, sess.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove from cart: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to remove from cart: %w", err)
	}

	return s.summarize(sess, lines)
}

// GetSummary returns the priced cart without changing it.
func (s *cartService) GetSummary(ctx context.Context, sess model.Session) (*model.CartSummary, error) {
	lines, err := s.cartRepo.ListLines(ctx, sess.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return s.summarize(sess, lines)
}

// ApplyCoupon validates code and stores it in the customer's session.
func (s *cartService) ApplyCoupon(ctx context.Context, sess model.Session, code string) (*model.CartSummary, error) {
	code = coupon.NormalizeCode(code)

	if code == "" {
		if err := s.sessions.ClearCoupon(ctx, sess.CustomerID); err != nil {
			return nil, fmt.Errorf("failed to clear coupon: %w", err)
		}
	} else {
		if _, err := s.evaluator.Lookup(code); err != nil {
			s.logger.Debug().Str("coupon_code", code).Msg("rejected coupon code")
			return nil, err
		}
		if err := s.sessions.SetCoupon(ctx, sess.CustomerID, code); err != nil {
			return nil, fmt.Errorf("failed to apply coupon: %w", err)
		}
	}

	sess.CouponCode = code
	return s.GetSummary(ctx, sess)
}

// summarize prices lines under the session coupon. A stored code that no
// longer names a rule is dropped from the view rather than failing it.
func (s *cartService) summarize(sess model.Session, lines []model.CartLine) (*model.CartSummary, error) {
	code := coupon.NormalizeCode(sess.CouponCode)
	if code != "" {
		if _, err := s.evaluator.Lookup(code); err != nil {
			if !errors.Is(err, model.ErrInvalidCoupon) {
				return nil, err
			}
			s.logger.Warn().
				Str("customer_id", sess.CustomerID.String()).
				Str("coupon_code", code).
				Msg("session coupon no longer exists, pricing without it")
			code = ""
		}
	}
	return priceCart(s.evaluator, code, lines)
}
