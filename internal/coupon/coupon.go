package coupon

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Evaluator prices cart lines under a coupon code.
type Evaluator interface {
	// Lookup returns the rule for a code. Codes are matched case-insensitively
	// after trimming; unknown codes yield model.ErrInvalidCoupon.
	Lookup(code string) (Rule, error)

	// Evaluate prices one line. An empty code means no coupon. The result
	// depends only on (code, line).
	Evaluate(code string, line Line) (Pricing, error)
}

// RuleSet represents the set of coupon rules for fast lookup.
type RuleSet interface {
	// Get returns the rule for a normalised code.
	Get(code string) (Rule, bool)

	// Size returns the number of rules in the set.
	Size() int
}

// Loader defines the interface for loading coupon rule files.
type Loader interface {
	// Load reads a YAML rule file, gzipped when its name ends in ".gz".
	Load(ctx context.Context, filePath string) (RuleSet, error)
}

// Line is the part of a cart line a coupon rule can see.
type Line struct {
	RestaurantID uuid.UUID
	Cuisine      string
	Category     string
	Name         string
	UnitPrice    decimal.Decimal
	Quantity     int
}

// Pricing is the outcome of evaluating one line.
type Pricing struct {
	UnitPrice           decimal.Decimal
	DiscountedUnitPrice decimal.Decimal
	Subtotal            decimal.Decimal // UnitPrice × Quantity
	Total               decimal.Decimal // DiscountedUnitPrice × Quantity
	Discount            decimal.Decimal // Subtotal − Total
	Applied             bool
}
