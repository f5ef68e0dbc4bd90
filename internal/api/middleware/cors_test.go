package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/api/middleware"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/config"
)

// TestNewCORS tests preflight handling for configured and foreign origins.
//
// WHY: The chart frontend runs on a different origin. A foreign origin must
// not be echoed back, and Retry-After must be readable by the allowed one.
func TestNewCORS(t *testing.T) {
	handler := middleware.NewCORS(config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}})(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusServiceUnavailable)
		}),
	)

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/benchmark", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("Expected origin to be allowed, got %q", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
			t.Errorf("Expected credentials not to be allowed, got %q", got)
		}
	})

	t.Run("simple request exposes Retry-After", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Expose-Headers"); got == "" {
			t.Error("Expected exposed headers to be set")
		}
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/benchmark", nil)
		req.Header.Set("Origin", "http://evil.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Expected foreign origin to be rejected, got %q", got)
		}
	})
}
