package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"

	"bookshelf/db"

	"github.com/pressly/goose/v3"
)

// Dialect names accepted by Migrate.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// MigrationsFS returns the embedded migrations for a dialect, rooted at the
// directory that holds the .sql files.
func MigrationsFS(dialect string) (fs.FS, goose.Dialect, error) {
	switch dialect {
	case DialectPostgres:
		sub, err := fs.Sub(db.Migrations, "migrations/postgres")
		return sub, goose.DialectPostgres, err
	case DialectSQLite:
		sub, err := fs.Sub(db.Migrations, "migrations/sqlite")
		return sub, goose.DialectSQLite3, err
	default:
		return nil, "", fmt.Errorf("unsupported dialect %q", dialect)
	}
}

// NewProvider returns a goose provider over the embedded migrations for dialect.
func NewProvider(conn *sql.DB, dialect string) (*goose.Provider, error) {
	fsys, gooseDialect, err := MigrationsFS(dialect)
	if err != nil {
		return nil, err
	}
	provider, err := goose.NewProvider(gooseDialect, conn, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return provider, nil
}

// Migrate applies every pending up migration.
func Migrate(ctx context.Context, conn *sql.DB, dialect string, logger *slog.Logger) error {
	provider, err := NewProvider(conn, dialect)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		logger.Info("migration applied", "source", r.Source.Path, "duration", r.Duration)
	}
	return nil
}
