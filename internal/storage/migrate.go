package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/frahmantamala/budget-story/internal"
	"github.com/frahmantamala/budget-story/internal/storage/migrations"
	"github.com/pressly/goose/v3"
)

const migrationsTable = "schema_migrations"

// Migrate applies ("up") or rolls back one step ("down") of the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB, driver, command string) error {
	dialect := "postgres"
	if driver == internal.DriverSQLite {
		dialect = "sqlite3"
	}

	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(migrationsTable)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	if err := goose.RunContext(ctx, command, db, "."); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
