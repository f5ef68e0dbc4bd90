package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/api/handlers"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/testutil"
)

// TestPortfolioHandler_Portfolios tests the GET /api/portfolio endpoint.
//
// WHY: This is the primary endpoint for retrieving portfolios. The frontend
// depends on this returning correct data with proper HTTP status codes and
// JSON formatting. Testing ensures API contract stability.
func TestPortfolioHandler_Portfolios(t *testing.T) {
	t.Run("GET /api/portfolio returns 200 with empty array", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		handler := handlers.NewPortfolioHandler(testutil.NewTestPortfolioService(t, db))

		// Create HTTP request
		req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
		w := httptest.NewRecorder()

		// Execute
		handler.Portfolios(w, req)

		// Assert HTTP status
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}

		// Assert Content-Type
		contentType := w.Header().Get("Content-Type")
		if contentType != "application/json" {
			t.Errorf("Expected Content-Type 'application/json', got '%s'", contentType)
		}

		// Assert response body
		var response []handlers.PortfoliosResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(response) != 0 {
			t.Errorf("Expected empty array, got %d items", len(response))
		}
	})

	t.Run("GET /api/portfolio returns all portfolios", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewPortfolioHandler(testutil.NewTestPortfolioService(t, db))
		testutil.CreatePortfolio(t, db, "Portfolio One")
		testutil.CreatePortfolio(t, db, "Portfolio Two")

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
		w := httptest.NewRecorder()

		handler.Portfolios(w, req)

		var response []handlers.PortfoliosResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(response) != 2 {
			t.Errorf("Expected 2 portfolios, got %d", len(response))
		}
	})

	t.Run("GET /api/portfolio returns 500 on database error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewPortfolioHandler(testutil.NewTestPortfolioService(t, db))
		db.Close()

		w := httptest.NewRecorder()
		handler.Portfolios(w, httptest.NewRequest(http.MethodGet, "/api/portfolio", nil))

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", w.Code)
		}
	})
}

// TestPortfolioHandler_CreateAndGet tests POST /api/portfolio and GET /api/portfolio/{uuid}.
//
// WHY: A portfolio must exist before orders can be attached. Bad input must be
// rejected with field-level details, and unknown IDs must be a 404.
func TestPortfolioHandler_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := handlers.NewPortfolioHandler(testutil.NewTestPortfolioService(t, db))

	w := httptest.NewRecorder()
	handler.CreatePortfolio(w, testutil.NewJSONRequestWithURLParams(http.MethodPost, "/api/portfolio",
		`{"name": "Growth", "description": "tech heavy"}`, nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var created handlers.PortfoliosResponse
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	w = httptest.NewRecorder()
	handler.GetPortfolio(w, testutil.NewRequestWithURLParams(http.MethodGet, "/api/portfolio/"+created.ID,
		map[string]string{"uuid": created.ID}))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"Growth"`) {
		t.Errorf("Expected the created portfolio, got %d: %s", w.Code, w.Body.String())
	}

	t.Run("missing name", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.CreatePortfolio(w, testutil.NewJSONRequestWithURLParams(http.MethodPost, "/api/portfolio", `{"description": "x"}`, nil))
		if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "name is required") {
			t.Errorf("Expected 400 with field detail, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.CreatePortfolio(w, testutil.NewJSONRequestWithURLParams(http.MethodPost, "/api/portfolio", `{"name": "x", "archived": true}`, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("unknown portfolio", func(t *testing.T) {
		id := testutil.MakeID()
		w := httptest.NewRecorder()
		handler.GetPortfolio(w, testutil.NewRequestWithURLParams(http.MethodGet, "/api/portfolio/"+id, map[string]string{"uuid": id}))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}

// TestPortfolioHandler_Orders tests POST and GET /api/portfolio/{uuid}/orders.
//
// WHY: The upload accepts the order file format with numbers as JSON numbers or
// strings. A batch with one bad order must be rejected as a whole with 400.
func TestPortfolioHandler_Orders(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := handlers.NewPortfolioHandler(testutil.NewTestPortfolioService(t, db))
	p := testutil.NewPortfolio().Build(t, db)
	params := map[string]string{"uuid": p.ID}
	path := "/api/portfolio/" + p.ID + "/orders"

	w := httptest.NewRecorder()
	handler.AddOrders(w, testutil.NewJSONRequestWithURLParams(http.MethodPost, path, `{"orders": [
		{"date": "2025-01-06", "type": "SELL", "ticker": "AAPL", "shares": "2", "price_per_share": 160.5},
		{"date": "2025-01-02", "type": "buy", "ticker": "AAPL", "shares": 10, "price_per_share": "150"}
	]}`, params))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	handler.Orders(w, testutil.NewRequestWithURLParams(http.MethodGet, path, params))
	var orders []handlers.OrderResponse
	if err := json.NewDecoder(w.Body).Decode(&orders); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("Expected 2 orders, got %d", len(orders))
	}
	if orders[0].Date != "2025-01-02" || orders[0].Type != "BUY" || orders[0].Shares != 10 {
		t.Errorf("Expected the buy first, got %+v", orders[0])
	}
	if orders[1].Type != "SELL" || orders[1].PricePerShare != 160.5 {
		t.Errorf("Unexpected sell %+v", orders[1])
	}

	tests := []struct {
		name string
		body string
	}{
		{"missing shares", `{"orders": [{"date": "2025-01-02", "type": "BUY", "ticker": "AAPL", "price_per_share": 1}]}`},
		{"unknown type", `{"orders": [{"date": "2025-01-02", "type": "SHORT", "ticker": "AAPL", "shares": 1, "price_per_share": 1}]}`},
		{"zero price", `{"orders": [{"date": "2025-01-02", "type": "BUY", "ticker": "AAPL", "shares": 1, "price_per_share": 0}]}`},
		{"empty", `{"orders": []}`},
		{"not json", `orders`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.AddOrders(w, testutil.NewJSONRequestWithURLParams(http.MethodPost, path, tt.body, params))
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
	testutil.AssertRowCount(t, db, "portfolio_order", 2)
}
