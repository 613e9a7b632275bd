package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouterConfig struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

func NewRouter(cfg RouterConfig, logger *zap.Logger, products *ProductHandler, cart *CartHandler, checkout *CheckoutHandler) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.RequestSize(cfg.MaxRequestBodySize))
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", products.Get)
		r.Get("/ingredients", products.Ingredients)

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cart.GetCart)
				r.Delete("/", cart.ClearCart)
				r.Post("/items", cart.AddItem)
				r.Put("/items/{product_id}", cart.UpdateQuantity)
				r.Delete("/items/{product_id}", cart.RemoveItem)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", checkout.GetDraft)
				r.Put("/", checkout.UpdateDraft)
				r.Post("/delivery", checkout.ToggleDelivery)
				r.Get("/payment-methods", checkout.PaymentMethods)
				r.Post("/submit", checkout.Submit)
			})
		})
	})

	return r
}
