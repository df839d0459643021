package service

import (
	"foodhub/internal/coupon"
	"foodhub/internal/model"

	"github.com/shopspring/decimal"
)

func couponLine(item model.MenuItem, quantity int) coupon.Line {
	return coupon.Line{
		RestaurantID: item.RestaurantID,
		Cuisine:      item.CuisineType,
		Category:     item.Category,
		Name:         item.Name,
		UnitPrice:    item.Price,
		Quantity:     quantity,
	}
}

// priceCart prices every line under code. The code must be known to the
// evaluator or empty.
func priceCart(ev coupon.Evaluator, code string, lines []model.CartLine) (*model.CartSummary, error) {
	summary := &model.CartSummary{
		Lines:      make([]model.CartLineView, 0, len(lines)),
		CouponCode: code,
		Subtotal:   decimal.Zero,
		Discount:   decimal.Zero,
		Total:      decimal.Zero,
	}

	for _, l := range lines {
		p, err := ev.Evaluate(code, couponLine(l.Item, l.Quantity))
		if err != nil {
			return nil, err
		}

		summary.Lines = append(summary.Lines, model.CartLineView{
			CartLine:            l,
			UnitPrice:           p.UnitPrice,
			DiscountedUnitPrice: p.DiscountedUnitPrice,
			LineTotal:           p.Total,
			Discounted:          p.Applied,
		})
		summary.LineCount++
		summary.CartCount += l.Quantity
		summary.Subtotal = summary.Subtotal.Add(p.Subtotal)
		summary.Discount = summary.Discount.Add(p.Discount)
		summary.Total = summary.Total.Add(p.Total)
	}

	return summary, nil
}
