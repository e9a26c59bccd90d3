package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/budget-story/internal"
	"github.com/frahmantamala/budget-story/internal/storage"
	"github.com/frahmantamala/budget-story/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "Apply the embedded SQL migrations to the configured database",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Storage.Backend != internal.BackendDatabase {
		return errors.New("migrate needs storage.backend=database")
	}

	db, err := storage.OpenDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	command := "up"
	if migrateRollback {
		command = "down"
	}
	if err := storage.Migrate(ctx, db.DB, cfg.Database.Driver, command); err != nil {
		return err
	}

	logger.L().Info("migration finished", "command", command, "driver", cfg.Database.Driver)
	fmt.Fprintf(cmd.OutOrStdout(), "goose %s: done\n", command)
	return nil
}
