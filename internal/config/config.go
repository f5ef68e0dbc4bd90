package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Log       LogConfig
	Valuation ValuationConfig
	Yahoo     YahooConfig
	Refresh   RefreshConfig
	FlatFile  FlatFileConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig selects log level and output format ("console" or "json").
type LogConfig struct {
	Level  string
	Format string
}

// ValuationConfig bounds a single valuation or benchmark call.
type ValuationConfig struct {
	Timeout         time.Duration
	LoadConcurrency int
}

// YahooConfig configures the market data client.
type YahooConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RefreshConfig controls the scheduled price refresh. An empty Schedule disables it.
type RefreshConfig struct {
	Schedule     string
	LookbackDays int
}

// FlatFileConfig points at a directory of <TICKER>.csv price files.
type FlatFileConfig struct {
	StockDataDir string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio_valuation.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost",
			}),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "console")),
		},
		Yahoo: YahooConfig{
			BaseURL: getEnv("YAHOO_BASE_URL", "https://query2.finance.yahoo.com"),
		},
		Refresh: RefreshConfig{
			Schedule: os.Getenv("PRICE_REFRESH_SCHEDULE"),
		},
		FlatFile: FlatFileConfig{
			StockDataDir: getEnv("STOCK_DATA_DIR", "./stockdata"),
		},
	}

	var err error
	if config.Valuation.Timeout, err = getDuration("VALUATION_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if config.Valuation.LoadConcurrency, err = getInt("PRICE_LOAD_CONCURRENCY", 4, 1); err != nil {
		return nil, err
	}
	if config.Yahoo.Timeout, err = getDuration("YAHOO_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if config.Refresh.LookbackDays, err = getInt("PRICE_REFRESH_LOOKBACK_DAYS", 7, 0); err != nil {
		return nil, err
	}

	switch config.Log.Format {
	case "console", "json":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: must be console or json", config.Log.Format)
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getList splits a comma separated variable, dropping empty items.
func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, value)
	}
	return d, nil
}

func getInt(key string, defaultValue, minValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if n < minValue {
		return 0, fmt.Errorf("invalid %s %q: must be at least %d", key, value, minValue)
	}
	return n, nil
}
