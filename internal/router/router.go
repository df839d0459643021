package router

import (
	"net/http"

	"foodhub/internal/handler"
	"foodhub/internal/middleware"
	"foodhub/internal/session"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served under /api.
type Handlers struct {
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Review  *handler.ReviewHandler
	Catalog *handler.CatalogHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, sessions session.Store, jwtSecret string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> RequestID -> Logging -> CORS
	r.Use(middleware.Recovery(logger))
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret, logger))

		r.Get("/menu-items/{id}", h.Catalog.GetMenuItem)
		r.Get("/orders/{id}", h.Order.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(middleware.RoleCustomer))
			r.Use(middleware.Session(sessions, logger))

			r.Get("/cart", h.Cart.GetSummary)
			r.Post("/cart/items", h.Cart.AddItem)
			r.Post("/cart/quantity", h.Cart.UpdateQuantity)
			r.Post("/cart/remove", h.Cart.RemoveItem)
			r.Post("/cart/coupon", h.Cart.ApplyCoupon)
			r.Get("/orders", h.Order.ListCustomerOrders)
			r.Post("/orders", h.Order.PlaceOrder)
			r.Post("/reviews", h.Review.Submit)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(middleware.RoleRestaurantOwner))

			r.Get("/owner/orders", h.Order.ListRestaurantOrders)
			r.Post("/orders/status", h.Order.UpdateStatus)
			r.Patch("/menu-items/{id}", h.Catalog.UpdateMenuItem)
			r.Delete("/restaurants/{id}", h.Catalog.DeleteRestaurant)
		})
	})

	return r
}
