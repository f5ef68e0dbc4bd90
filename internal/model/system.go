package model

// VersionInfo describes the running build, its schema and enabled features.
type VersionInfo struct {
	AppVersion          string          `json:"app_version"`
	DbVersion           string          `json:"db_version"`
	MigrationNeeded     bool            `json:"migration_needed"`
	MigrationMessage    *string         `json:"migration_message,omitempty"`
	Features            map[string]bool `json:"features"`
	BenchmarkInstrument string          `json:"benchmark_instrument"`
}

// PriceCoverage summarizes the stored price history.
type PriceCoverage struct {
	Instruments     int    `json:"instruments"`
	Closes          int    `json:"closes"`
	LatestPriceDate string `json:"latest_price_date,omitempty"`
}

// HealthStatus is the result of a health check. Prices is only set when the
// database is reachable.
type HealthStatus struct {
	Status   string         `json:"status"`
	Database string         `json:"database"`
	Prices   *PriceCoverage `json:"prices,omitempty"`
	Error    string         `json:"error,omitempty"`
}
