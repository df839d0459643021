package handler

import (
	"fmt"
	"net/http"

	"foodhub/internal/model"
	"foodhub/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CartHandler handles cart-related HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// AddItemResponse is returned by add-to-cart.
type AddItemResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	CartCount int    `json:"cartCount"`
	LineCount int    `json:"lineCount"`
}

// UpdateQuantityResponse is returned by update-cart-quantity.
type UpdateQuantityResponse struct {
	Success       bool   `json:"success"`
	CartCount     int    `json:"cartCount"`
	LineUnitPrice string `json:"lineUnitPrice"`
	LineTotal     string `json:"lineTotal"`
	Subtotal      string `json:"subtotal"`
	Discount      string `json:"discount"`
	Total         string `json:"total"`
}

// RemoveItemResponse is returned by remove-from-cart.
type RemoveItemResponse struct {
	Success   bool   `json:"success"`
	CartCount int    `json:"cartCount"`
	Subtotal  string `json:"subtotal"`
	Discount  string `json:"discount"`
	Total     string `json:"total"`
}

// ApplyCouponResponse is returned by apply-coupon.
type ApplyCouponResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Total    string `json:"total"`
}

// CartLineResponse is one priced line of GET /api/cart.
type CartLineResponse struct {
	ID                  uuid.UUID `json:"id"`
	MenuItemID          uuid.UUID `json:"menuItemId"`
	RestaurantID        uuid.UUID `json:"restaurantId"`
	Name                string    `json:"name"`
	Quantity            int       `json:"quantity"`
	UnitPrice           string    `json:"unitPrice"`
	DiscountedUnitPrice string    `json:"discountedUnitPrice"`
	LineTotal           string    `json:"lineTotal"`
	Discounted          bool      `json:"discounted"`
}

// CartSummaryResponse is returned by GET /api/cart.
type CartSummaryResponse struct {
	Success    bool               `json:"success"`
	Lines      []CartLineResponse `json:"lines"`
	CouponCode string             `json:"couponCode,omitempty"`
	CartCount  int                `json:"cartCount"`
	LineCount  int                `json:"lineCount"`
	Subtotal   string             `json:"subtotal"`
	Discount   string             `json:"discount"`
	Total      string             `json:"total"`
}

func newCartSummaryResponse(summary *model.CartSummary) CartSummaryResponse {
	resp := CartSummaryResponse{
		Success:    true,
		Lines:      make([]CartLineResponse, len(summary.Lines)),
		CouponCode: summary.CouponCode,
		CartCount:  summary.CartCount,
		LineCount:  summary.LineCount,
		Subtotal:   money(summary.Subtotal),
		Discount:   money(summary.Discount),
		Total:      money(summary.Total),
	}
	for i, l := range summary.Lines {
		resp.Lines[i] = CartLineResponse{
			ID:                  l.ID,
			MenuItemID:          l.MenuItemID,
			RestaurantID:        l.Item.RestaurantID,
			Name:                l.Item.Name,
			Quantity:            l.Quantity,
			UnitPrice:           money(l.UnitPrice),
			DiscountedUnitPrice: money(l.DiscountedUnitPrice),
			LineTotal:           money(l.LineTotal),
			Discounted:          l.Discounted,
		}
	}
	return resp
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := customerSession(w, r, h.logger)
	if !ok {
		return
	}

	var req model.AddToCartRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	counts, err := h.service.AddItem(r.Context(), sess, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, AddItemResponse{
		Success:   true,
		Message:   "Item added to cart",
		CartCount: counts.CartCount,
		LineCount: counts.LineCount,
	})
}

// UpdateQuantity handles POST /api/cart/quantity requests.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sess, ok := customerSession(w, r, h.logger)
	if !ok {
		return
	}

	var req model.UpdateQuantityRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	update, err := h.service.UpdateQuantity(r.Context(), sess, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, UpdateQuantityResponse{
		Success:       true,
		CartCount:     update.Summary.CartCount,
		LineUnitPrice: money(update.LineUnitPrice),
		LineTotal:     money(update.LineTotal),
		Subtotal:      money(update.Summary.Subtotal),
		Discount:      money(update.Summary.Discount),
		Total:         money(update.Summary.Total),
	})
}

// RemoveItem handles POST /api/cart/remove requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := customerSession(w, r, h.logger)
	if !ok {
		return
	}

	var req model.RemoveFromCartRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	summary, err := h.service.RemoveItem(r.Context(), sess, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, RemoveItemResponse{
		Success:   true,
		CartCount: summary.CartCount,
		Subtotal:  money(summary.Subtotal),
		Discount:  money(summary.Discount),
		Total:     money(summary.Total),
	})
}

// GetSummary handles GET /api/cart requests.
func (h *CartHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := customerSession(w, r, h.logger)
	if !ok {
		return
	}

	summary, err := h.service.GetSummary(r.Context(), sess)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, newCartSummaryResponse(summary))
}

// ApplyCoupon handles POST /api/cart/coupon requests.
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	sess, ok := customerSession(w, r, h.logger)
	if !ok {
		return
	}

	var req model.ApplyCouponRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	summary, err := h.service.ApplyCoupon(r.Context(), sess, req.Code)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	message := "Coupon removed"
	if summary.CouponCode != "" {
		message = fmt.Sprintf("Coupon %s applied", summary.CouponCode)
	}

	writeJSON(w, http.StatusOK, ApplyCouponResponse{
		Success:  true,
		Message:  message,
		Subtotal: money(summary.Subtotal),
		Discount: money(summary.Discount),
		Total:    money(summary.Total),
	})
}
