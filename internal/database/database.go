package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/phuslu/log"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open opens a connection to the SQLite database
func Open(dbPath string) (*sql.DB, error) {
	// Pragmas in the DSN apply to every pooled connection
	dsn := dbPath
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=foreign_keys(1)"
	}

	// Open database connection
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := ApplyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// ApplyPragmas enables foreign keys and forces UTC on the connection.
func ApplyPragmas(db *sql.DB) error {
	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Set timezone to UTC
	if _, err := db.Exec("PRAGMA timezone = 'UTC'"); err != nil {
		return fmt.Errorf("failed to set timezone: %w", err)
	}
	return nil
}

func newProvider(db *sql.DB) (*goose.Provider, error) {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// Migrate applies all pending embedded migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	provider, err := newProvider(db)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		log.Info().Str("migration", r.Source.Path).Dur("duration", r.Duration).Msg("applied migration")
	}
	return nil
}

// SchemaVersion returns the applied migration version and whether embedded
// migrations are still pending.
func SchemaVersion(ctx context.Context, db *sql.DB) (int64, bool, error) {
	provider, err := newProvider(db)
	if err != nil {
		return 0, false, err
	}
	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	pending, err := provider.HasPending(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("failed to check pending migrations: %w", err)
	}
	return current, pending, nil
}

// HealthCheck performs a simple health check on the database
func HealthCheck(ctx context.Context, db *sql.DB) error {
	return db.PingContext(ctx)
}
