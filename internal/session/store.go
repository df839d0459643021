// Package session keeps per-customer session state that outlives a single
// request, currently the applied coupon code.
package session

import (
	"context"

	"github.com/google/uuid"
)

// Store persists the coupon code a customer has applied to their cart.
type Store interface {
	// Coupon returns the applied code, or "" when none is set.
	Coupon(ctx context.Context, customerID uuid.UUID) (string, error)
	SetCoupon(ctx context.Context, customerID uuid.UUID, code string) error
	ClearCoupon(ctx context.Context, customerID uuid.UUID) error
}
