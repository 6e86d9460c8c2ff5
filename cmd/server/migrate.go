package main

import (
	"errors"

	"github.com/eaglebank/ledger-service/internal/config"
	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/spf13/cobra"
)

func migrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "create the postgres schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.StorageBackend != config.BackendPostgres {
				return errors.New("migrate requires BANK_STORAGE_BACKEND=postgres")
			}
			ctx := cmd.Context()
			db, err := openPostgres(ctx, a.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repository.Migrate(ctx, db); err != nil {
				return err
			}
			a.logger.Info("schema up to date")
			return nil
		},
	}
}
