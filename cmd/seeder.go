package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/budget-story/internal/ledger"
	"github.com/frahmantamala/budget-story/pkg/logger"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Store the demo ledger as saved data",
	Long:  `Write the built-in demo ledger to storage. An existing snapshot is kept unless --clear is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		lg := logger.L()

		store, err := openStorage(ctx, cfg, lg)
		if err != nil {
			return err
		}
		defer store.Close()

		snapshots := ledger.NewSnapshotAdapter(store.KV, cfg.Storage, lg)

		_, err = snapshots.Load(ctx)
		switch {
		case err == nil && !clearData:
			fmt.Fprintln(cmd.OutOrStdout(), "ledger snapshot already exists; use --clear to overwrite")
			return nil
		case err == nil, errors.Is(err, ledger.ErrSnapshotNotFound), errors.Is(err, ledger.ErrSnapshotCorrupt):
		default:
			return err
		}

		if clearData {
			if err := snapshots.Forget(ctx); err != nil {
				return fmt.Errorf("failed to clear ledger snapshot: %w", err)
			}
		}

		if err := snapshots.Save(ctx, ledger.Demo()); err != nil {
			return fmt.Errorf("failed to seed ledger: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Seeded demo ledger:", len(ledger.Demo().Expenses), "expenses")
		return nil
	},
}
