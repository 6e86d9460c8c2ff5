package main

import (
	"os"

	"github.com/eaglebank/ledger-service/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app is shared by every subcommand once the root pre-run has loaded config.
type app struct {
	cfg    *config.Config
	logger *logrus.Logger
}

func preRun(a *app) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger, err := cfg.NewLogger()
		if err != nil {
			return err
		}
		a.cfg = cfg
		a.logger = logger
		return nil
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "eaglebank",
		Short:         "Account ledger with loans and revolving credit",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentPreRunE = preRun(a)

	rootCmd.AddCommand(serveCommand(a))
	rootCmd.AddCommand(seedCommand(a))
	rootCmd.AddCommand(backupCommand(a))
	rootCmd.AddCommand(migrateCommand(a))

	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
