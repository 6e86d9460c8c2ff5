package main

import (
	"github.com/spf13/cobra"
)

func seedCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "load the demo accounts when storage is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openStore(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer s.Close()

			seeded, err := s.admin.InitializeDefaultData(ctx)
			if err != nil {
				return err
			}
			if !seeded {
				a.logger.Info("storage already holds accounts, nothing seeded")
				return nil
			}
			a.logger.Info("demo data loaded")
			return nil
		},
	}
}
