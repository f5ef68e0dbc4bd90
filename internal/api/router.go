package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Portfolio-Valuation-Backend/internal/api/middleware"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/service"
)

// Services groups the services the router exposes.
type Services struct {
	System    *service.SystemService
	Portfolio *service.PortfolioService
	Valuation *service.ValuationService
	Price     *service.PriceService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(custommiddleware.NewCORS(cfg.CORS))

	systemHandler := handlers.NewSystemHandler(svc.System)
	portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolio)
	valuationHandler := handlers.NewValuationHandler(svc.Valuation)
	priceHandler := handlers.NewPriceHandler(svc.Price, cfg.Refresh.LookbackDays)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/", portfolioHandler.Portfolios)
			r.Post("/", portfolioHandler.CreatePortfolio)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", portfolioHandler.GetPortfolio)
				r.Get("/orders", portfolioHandler.Orders)
				r.Post("/orders", portfolioHandler.AddOrders)
				r.Get("/valuation", valuationHandler.Valuation)
				r.Post("/benchmark", valuationHandler.PortfolioBenchmark)
			})
		})

		r.Post("/benchmark", valuationHandler.Benchmark)
		r.Post("/allocation/normalize", valuationHandler.NormalizeAllocation)

		r.Route("/prices/{symbol}", func(r chi.Router) {
			r.Use(custommiddleware.ValidateSymbolMiddleware)
			r.Get("/", priceHandler.Prices)
			r.Post("/refresh", priceHandler.RefreshPrices)
		})
	})

	return r
}
