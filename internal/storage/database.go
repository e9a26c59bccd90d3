package storage

import (
	"fmt"

	"github.com/frahmantamala/budget-story/internal"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SQLDriverName maps the configured driver onto the registered database/sql name.
func SQLDriverName(driver string) (string, error) {
	switch driver {
	case internal.DriverPostgres:
		return "pgx", nil
	case internal.DriverSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// OpenDB opens and pings the connection pool.
func OpenDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	driverName, err := SQLDriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(driverName, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	maxOpen, maxIdle := cfg.MaxOpenConns, cfg.MaxIdleConns
	if cfg.Driver == internal.DriverSQLite {
		// one writer; also keeps ":memory:" databases on a single connection
		maxOpen, maxIdle = 1, 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// OpenGorm wraps an already open pool so gorm, goose and the health check share it.
func OpenGorm(db *sqlx.DB, driver string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case internal.DriverPostgres:
		dialector = postgres.New(postgres.Config{Conn: db.DB})
	case internal.DriverSQLite:
		dialector = &sqlite.Dialector{DriverName: "sqlite3", Conn: db.DB}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return gdb, nil
}
