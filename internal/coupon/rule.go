package coupon

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Scope selects which cart lines a rule applies to.
type Scope string

const (
	ScopeGlobal     Scope = "global"
	ScopeRestaurant Scope = "restaurant"
	ScopeCuisine    Scope = "cuisine"
)

// Rule is a fixed percentage-off discount.
type Rule struct {
	Code         string
	Percent      decimal.Decimal // fraction in (0, 1]
	Scope        Scope
	RestaurantID uuid.UUID // ScopeRestaurant only
	Cuisine      string    // ScopeCuisine only
	// Keywords, when present, further restrict matching lines to those whose
	// "category name" contains at least one keyword.
	Keywords []string
}

// NormalizeCode trims and upper-cases a user-supplied coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks the rule is well formed.
func (r Rule) Validate() error {
	if r.Code == "" {
		return fmt.Errorf("coupon code is required")
	}
	if r.Code != NormalizeCode(r.Code) {
		return fmt.Errorf("coupon %s: code must be upper-case without surrounding spaces", r.Code)
	}
	if !r.Percent.IsPositive() || r.Percent.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("coupon %s: percent must be in (0, 1]", r.Code)
	}

	switch r.Scope {
	case ScopeGlobal:
	case ScopeRestaurant:
		if r.RestaurantID == uuid.Nil {
			return fmt.Errorf("coupon %s: restaurant scope requires a restaurant id", r.Code)
		}
	case ScopeCuisine:
		if strings.TrimSpace(r.Cuisine) == "" {
			return fmt.Errorf("coupon %s: cuisine scope requires a cuisine", r.Code)
		}
	default:
		return fmt.Errorf("coupon %s: unknown scope %q", r.Code, r.Scope)
	}

	return nil
}

// Matches reports whether the rule applies to line.
func (r Rule) Matches(line Line) bool {
	switch r.Scope {
	case ScopeRestaurant:
		if line.RestaurantID != r.RestaurantID {
			return false
		}
	case ScopeCuisine:
		if !strings.EqualFold(strings.TrimSpace(line.Cuisine), strings.TrimSpace(r.Cuisine)) {
			return false
		}
	case ScopeGlobal:
	default:
		return false
	}

	if len(r.Keywords) == 0 {
		return true
	}

	text := strings.ToLower(line.Category + " " + line.Name)
	for _, k := range r.Keywords {
		if k != "" && strings.Contains(text, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// DiscountedPrice returns price × (1 − Percent) rounded to cents.
func (r Rule) DiscountedPrice(price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(1).Sub(r.Percent)).Round(2)
}

// DefaultRules are the coupons offered when no rule file is configured.
func DefaultRules() []Rule {
	return []Rule{
		{Code: "PIZZA50", Percent: decimal.RequireFromString("0.50"), Scope: ScopeGlobal, Keywords: []string{"pizza"}},
		{Code: "BIRYANI30", Percent: decimal.RequireFromString("0.30"), Scope: ScopeGlobal, Keywords: []string{"biryani"}},
		{Code: "HEALTHY40", Percent: decimal.RequireFromString("0.40"), Scope: ScopeGlobal, Keywords: []string{"bowl", "healthy"}},
		{Code: "SUSHI25", Percent: decimal.RequireFromString("0.25"), Scope: ScopeGlobal, Keywords: []string{"sushi"}},
	}
}
