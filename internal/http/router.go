package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewRouter mounts the cart operation surface.
func NewRouter(h *CartHandler, logger zerolog.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(chimw.Compress(5))
	r.Use(WithRequestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(BearerAuthMiddleware)
		r.Post("/", h.MergeCart)
		r.Get("/", h.GetCart)
		r.Delete("/", h.EmptyCart)
		r.Post("/coupon", h.ApplyCoupon)
		r.Delete("/{productID}", h.RemoveItem)
	})

	return otelhttp.NewHandler(r, "cart-service")
}
