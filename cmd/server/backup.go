package main

import (
	"github.com/spf13/cobra"
)

func backupCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "write a snapshot of all accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openStore(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer s.Close()

			key, err := s.admin.CreateBackup(ctx)
			if err != nil {
				return err
			}
			a.logger.WithField("key", key).Info("backup written")
			return nil
		},
	}
}
