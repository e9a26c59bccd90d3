package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/budget-story/internal"
	"github.com/frahmantamala/budget-story/internal/category"
	"github.com/frahmantamala/budget-story/internal/core/events"
	"github.com/frahmantamala/budget-story/internal/ledger"
	"github.com/frahmantamala/budget-story/internal/storage"
	"github.com/frahmantamala/budget-story/internal/storage/memory"
	kvPostgres "github.com/frahmantamala/budget-story/internal/storage/postgres"
	"github.com/jmoiron/sqlx"
)

// storageHandle is the opened key-value backend. DB is nil for the memory
// backend.
type storageHandle struct {
	KV storage.KeyValueAPI
	DB *sqlx.DB
}

func (h *storageHandle) Close() error {
	if h.DB == nil {
		return nil
	}
	return h.DB.Close()
}

func openStorage(ctx context.Context, cfg *internal.Config, lg *slog.Logger) (*storageHandle, error) {
	if cfg.Storage.Backend == internal.BackendMemory {
		lg.Warn("using memory storage; the ledger will not survive a restart")
		return &storageHandle{KV: memory.NewStore()}, nil
	}

	db, err := storage.OpenDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := storage.Migrate(ctx, db.DB, cfg.Database.Driver, "up"); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	gdb, err := storage.OpenGorm(db, cfg.Database.Driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	lg.Info("storage ready", "driver", cfg.Database.Driver)
	return &storageHandle{KV: kvPostgres.NewKeyValueRepository(gdb), DB: db}, nil
}

// ledgerStack is the core wiring shared by the server and CLI commands.
type ledgerStack struct {
	Catalog  *category.Service
	Bus      *events.EventBus
	Snapshot *ledger.SnapshotAdapter
	Store    *ledger.Store
}

func newLedgerStack(cfg *internal.Config, kv storage.KeyValueAPI, lg *slog.Logger) (*ledgerStack, error) {
	catalog, err := category.NewService(category.FromConfig(cfg.Budget.Categories), lg)
	if err != nil {
		return nil, fmt.Errorf("failed to load category catalog: %w", err)
	}

	bus := events.NewEventBus(lg)
	snapshot := ledger.NewSnapshotAdapter(kv, cfg.Storage, lg)
	store := ledger.NewStore(snapshot, catalog, ledger.NewClockIDGenerator(nil), bus, lg)

	return &ledgerStack{
		Catalog:  catalog,
		Bus:      bus,
		Snapshot: snapshot,
		Store:    store,
	}, nil
}
