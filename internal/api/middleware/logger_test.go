package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phuslu/log"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/api/middleware"
)

// TestLogger tests the request logging middleware.
//
// WHY: Request logs are the only record of failed API calls. Each must carry
// the captured status and no raw newlines from the path.
func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := log.DefaultLogger
	log.DefaultLogger = log.Logger{Level: log.InfoLevel, Writer: &log.IOWriter{Writer: &buf}}
	t.Cleanup(func() { log.DefaultLogger = prev })

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/x%0Ainjected", nil)
	w := httptest.NewRecorder()
	middleware.Logger(next).ServeHTTP(w, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected one JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["status"] != float64(http.StatusTeapot) {
		t.Errorf("Expected status 418, got %v", entry["status"])
	}
	if entry["level"] != "warn" {
		t.Errorf("Expected warn level for 4xx, got %v", entry["level"])
	}
	if entry["path"] != "/api/xinjected" {
		t.Errorf("Expected sanitized path, got %v", entry["path"])
	}
}
