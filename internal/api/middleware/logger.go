package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/phuslu/log"
)

// sanitize strips CR/LF from user-supplied values before logging.
var sanitize = strings.NewReplacer("\n", "", "\r", "").Replace

// Logger is a middleware that logs HTTP requests as structured events.
// 5xx responses are logged at error level, 4xx at warn, the rest at info.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		// Call the next handler
		next.ServeHTTP(wrapped, r)

		var entry *log.Entry
		switch {
		case wrapped.statusCode >= http.StatusInternalServerError:
			entry = log.Error()
		case wrapped.statusCode >= http.StatusBadRequest:
			entry = log.Warn()
		default:
			entry = log.Info()
		}
		entry.
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", sanitize(r.Method)).
			Str("path", sanitize(r.URL.Path)).
			Int("status", wrapped.statusCode).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("http request")
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
