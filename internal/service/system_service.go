package service

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"strconv"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/database"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/version"
)

// SystemService reports service health and build information.
type SystemService struct {
	db        *sql.DB
	priceRepo *repository.PriceRepository
	features  map[string]bool
}

// NewSystemService creates a new SystemService. features is reported by
// CheckVersion.
func NewSystemService(db *sql.DB, priceRepo *repository.PriceRepository, features map[string]bool) *SystemService {
	return &SystemService{
		db:        db,
		priceRepo: priceRepo,
		features:  features,
	}
}

// CheckHealth pings the database and summarizes stored price coverage.
// The returned status is always populated; err is non-nil when unhealthy.
func (s *SystemService) CheckHealth(ctx context.Context) (model.HealthStatus, error) {
	if err := database.HealthCheck(ctx, s.db); err != nil {
		return model.HealthStatus{Status: "unhealthy", Database: "disconnected", Error: err.Error()}, err
	}

	coverage, err := s.priceRepo.GetCoverage(ctx)
	if err != nil {
		return model.HealthStatus{Status: "unhealthy", Database: "connected", Error: err.Error()}, err
	}
	return model.HealthStatus{Status: "healthy", Database: "connected", Prices: &coverage}, nil
}

// CheckVersion reports the application version, the applied schema version and
// whether migrations are pending.
func (s *SystemService) CheckVersion(ctx context.Context) (model.VersionInfo, error) {
	current, pending, err := database.SchemaVersion(ctx, s.db)
	if err != nil {
		return model.VersionInfo{}, err
	}

	info := model.VersionInfo{
		AppVersion:          version.Version,
		DbVersion:           strconv.FormatInt(current, 10),
		MigrationNeeded:     pending,
		Features:            maps.Clone(s.features),
		BenchmarkInstrument: DefaultBenchmarkInstrument,
	}
	if info.Features == nil {
		info.Features = map[string]bool{}
	}
	if pending {
		msg := fmt.Sprintf("database schema at version %d has pending migrations", current)
		info.MigrationMessage = &msg
	}
	return info, nil
}
