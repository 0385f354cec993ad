package router

import (
	"net/http"

	"promokiosk/internal/auth"
	"promokiosk/internal/handler"
	"promokiosk/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	storeHandler *handler.StoreHandler,
	couponHandler *handler.CouponHandler,
	adminHandler *handler.AdminHandler,
	promotionHandler *handler.PromotionHandler,
	statsHandler *handler.StatsHandler,
	tokens *auth.TokenIssuer,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		// Shopper-facing endpoints
		r.Get("/stores", storeHandler.List)
		r.Get("/stores/{id}", storeHandler.Get)

		r.Route("/users/{externalID}", func(r chi.Router) {
			r.Get("/store", storeHandler.AssignedStore)
			r.Post("/store", storeHandler.SetAssignedStore)
			r.Get("/coupons", couponHandler.ListActive)
		})

		r.Post("/coupons", couponHandler.Issue)
		r.Post("/redemptions", couponHandler.Redeem)

		// Admin endpoints
		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", adminHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminAuth(tokens, logger))

				// Any admin, scoped to their store inside the handlers
				r.Post("/promotions", promotionHandler.Create)
				r.Get("/promotions", promotionHandler.List)
				r.Delete("/promotions/{id}", promotionHandler.Delete)
				r.Get("/stats/stores/{id}", statsHandler.Store)

				// Master admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireMaster(logger))

					r.Post("/stores", storeHandler.Create)
					r.Delete("/stores/{id}", storeHandler.Delete)
					r.Post("/admins", adminHandler.Create)
					r.Get("/stats", statsHandler.Overview)
					r.Get("/stats/stores", statsHandler.Stores)
					r.Post("/stats/export", statsHandler.Export)
				})
			})
		})
	})

	return r
}
