package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/config"
)

// NewCORS returns CORS middleware for cfg. The API is read-mostly and carries
// no credentials, so cookies are not allowed cross-origin. Clients may read
// Retry-After to back off from a timed-out valuation.
func NewCORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Retry-After", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
