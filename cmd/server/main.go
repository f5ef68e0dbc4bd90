package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/phuslu/log"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/api"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/database"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/logging"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/version"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/yahoo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Setup(cfg.Log)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("failed to create database directory")
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	log.Info().Str("path", cfg.Database.Path).Str("version", version.Version).Msg("connected to database")

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	priceRepo := repository.NewPriceRepository(db)

	// Create services
	yahooClient := yahoo.NewFinanceClient(cfg.Yahoo.BaseURL, cfg.Yahoo.Timeout)
	systemService := service.NewSystemService(db, priceRepo, map[string]bool{
		"price_refresh": cfg.Refresh.Schedule != "",
	})
	portfolioService := service.NewPortfolioService(portfolioRepo, orderRepo)
	valuationService := service.NewValuationService(
		service.NewLedgerLoader(portfolioRepo, orderRepo),
		priceRepo,
		service.WithTimeout(cfg.Valuation.Timeout),
		service.WithLoadConcurrency(cfg.Valuation.LoadConcurrency),
	)
	priceService := service.NewPriceService(priceRepo, orderRepo, yahooClient, cfg.Refresh.LookbackDays)

	var scheduler *service.PriceScheduler
	if cfg.Refresh.Schedule != "" {
		scheduler, err = service.NewPriceScheduler(priceService, cfg.Refresh.Schedule, 30*time.Minute)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create price scheduler")
		}
		scheduler.Start()
	}

	// Create router
	router := api.NewRouter(api.Services{
		System:    systemService,
		Portfolio: portfolioService,
		Valuation: valuationService,
		Price:     priceService,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Valuation.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop(ctx)
	}
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
